package extract

import "errors"

// ErrInvalidSelector is returned when a profile selector cannot be compiled.
var ErrInvalidSelector = errors.New("invalid selector")
