package config

import (
	"errors"
)

// Sentinel error kinds for this package, matchable with errors.Is.
// ErrLoadConfig covers file/env reading and decoding; ErrInvalidConfig
// covers values that decoded fine but fail validation.
var (
	ErrInvalidConfig = errors.New("invalid config")
	ErrLoadConfig    = errors.New("load config failed")
)
