package cardid

import "errors"

// ErrInvalidIdentifier is returned when typed input cannot form a card identifier.
var ErrInvalidIdentifier = errors.New("invalid card identifier")
