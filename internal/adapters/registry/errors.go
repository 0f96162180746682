package registry

import "errors"

// Sentinel kinds for registry errors.
var (
	ErrNotFound     = errors.New("startup not found")
	ErrInvalidSeed  = errors.New("invalid registry seed")
	ErrDuplicateID  = errors.New("duplicate startup id")
	ErrLoadSeedFile = errors.New("load seed file failed")
)
