package service

import (
	"errors"

	"github.com/okian/quantumcrowd/internal/domain/model"
)

// Sentinel kinds for service errors.
var (
	ErrNotStarted   = errors.New("service not started")
	ErrNotFound     = model.ErrNotFound
	ErrBackpressure = model.ErrBackpressure
)
