package kernel

import "errors"

// Sentinel kinds for kernel errors.
var (
	ErrUnknownKind        = errors.New("unknown kernel kind")
	ErrInvalidParameter   = errors.New("invalid kernel parameter")
	ErrDimensionMismatch  = errors.New("vector dimension mismatch")
	ErrNoReferences       = errors.New("no reference vectors")
	ErrDuplicateReference = errors.New("duplicate reference label")
)
