package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrConfig indicates host options that prevent construction.
	ErrConfig = errors.New("host configuration error")

	// ErrAlreadyRunning is returned by Run when the loop is already executing.
	ErrAlreadyRunning = errors.New("host is already running")

	// ErrDestroyed is returned by Run after Destroy.
	ErrDestroyed = errors.New("host has been destroyed")
)

func wrapConfig(err error) error {
	return fmt.Errorf("%w: %w", ErrConfig, err)
}
