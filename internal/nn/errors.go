package nn

import (
	"github.com/pkg/errors"
)

// Common errors.
//
// Layers wrap these with the failing operation and the offending values, so callers
// match them with errors.Is.
var (
	ErrInvalidMode   = errors.New("invalid mode")
	ErrInvalidConfig = errors.New("invalid layer config")
	ErrShapeMismatch = errors.New("shape mismatch")
	ErrGeometry      = errors.New("output size is not integral")
	ErrLabelRange    = errors.New("label out of range")
)
