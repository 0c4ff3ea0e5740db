package renderer

import "errors"

var (
	ErrNoCamera         = errors.New("scene has no camera")
	ErrNoIntegrator     = errors.New("scene has no integrator")
	ErrNoSampler        = errors.New("scene has no sampler")
	ErrInvalidBlockSize = errors.New("block size must be positive")
)
