package pump

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrInvalidTickRate is returned for tick rates that are not finite and positive.
	ErrInvalidTickRate = errors.New("tick rate must be a positive finite number")

	// ErrMissingCollaborator is returned when a scheduler or clock is nil.
	ErrMissingCollaborator = errors.New("frame pump requires both schedulers and a clock")

	// ErrTickStep wraps a failure of the tick-bound scheduler.
	ErrTickStep = errors.New("simulation tick")

	// ErrRenderStep wraps a failure of the render-bound scheduler.
	ErrRenderStep = errors.New("render frame")
)

// Config holds the pump's tunables.
type Config struct {
	// TicksPerSec is the fixed simulation rate.
	TicksPerSec float64
}

// DefaultConfig returns a Config running at DefaultTickRate.
func DefaultConfig() Config {
	return Config{TicksPerSec: DefaultTickRate}
}

// Validate checks that the tick rate is usable.
func (c Config) Validate() error {
	return validateRate(c.TicksPerSec)
}

func validateRate(rate float64) error {
	if rate <= 0 || math.IsNaN(rate) || math.IsInf(rate, 0) {
		return fmt.Errorf("%w: %v", ErrInvalidTickRate, rate)
	}
	return nil
}
