package core

import (
	"errors"
)

var (
	// The graphics device was lost or removed. Unrecoverable; the run aborts.
	ErrDeviceLost = errors.New("graphics device lost")
	// A fence wait exceeded its bound. Escalated as fatal, since the only
	// safe alternative would be overwriting memory the GPU may still read.
	ErrFenceTimeout = errors.New("fence wait timed out")
	ErrUnknown      = errors.New("unknown")
)
