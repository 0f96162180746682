package model

import "errors"

// Sentinel kinds shared across layers so transports can map them without
// depending on the service package.
var (
	ErrNotFound     = errors.New("not found")
	ErrBackpressure = errors.New("prediction queue full")
)
