package ocr

import "errors"

// ErrEmptyImage is returned when there are no pixels to recognize.
var ErrEmptyImage = errors.New("empty image")
