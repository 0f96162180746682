package repository

import "errors"

// Sentinel kinds for prediction store errors.
var (
	ErrNotFound      = errors.New("prediction not found")
	ErrInvalidRecord = errors.New("invalid prediction record")
)
