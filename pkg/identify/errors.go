package identify

import "errors"

var (
	ErrNoIdentification = errors.New("card could not be identified")
	ErrSuperseded       = errors.New("identification superseded by a newer request")
)
