package tensor

import "github.com/pkg/errors"

// Common errors.
var (
	ErrInvalidShape = errors.New("invalid shape")
	ErrDataLength   = errors.New("data length does not match shape")
)
