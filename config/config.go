// Package config loads the host's TOML configuration file.
//
// A missing section keeps its defaults, unknown keys are rejected, and every loaded
// configuration is validated before it is returned.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// ErrInvalidConfig indicates a configuration value that cannot be used.
var ErrInvalidConfig = errors.New("invalid config")

// Host configures the frame loop.
type Host struct {
	// TickRate is the fixed simulation rate in ticks per second.
	TickRate float64 `toml:"tick_rate"`

	// FixedSimulationStep routes built-in simulation work to the fixed-step task manager.
	FixedSimulationStep bool `toml:"fixed_simulation_step"`

	// Stepping runs a single frame per Run call.
	Stepping bool `toml:"stepping"`

	// FrameLimit caps frames per second; 0 is uncapped.
	FrameLimit float64 `toml:"frame_limit"`

	// Profiling logs frame and tick rates once per second.
	Profiling bool `toml:"profiling"`
}

// Log configures the zap logger.
type Log struct {
	// Level is one of debug, info, warn, error.
	Level string `toml:"level"`

	// Development switches to zap's human-readable development encoder.
	Development bool `toml:"development"`
}

// Window configures the GLFW window and presenter.
type Window struct {
	Title       string `toml:"title"`
	Width       int    `toml:"width"`
	Height      int    `toml:"height"`
	Headless    bool   `toml:"headless"`
	PresentMode string `toml:"present_mode"`
}

// Config is the root of the configuration file.
type Config struct {
	Host   Host   `toml:"host"`
	Log    Log    `toml:"log"`
	Window Window `toml:"window"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Host: Host{
			TickRate: 60,
		},
		Log: Log{
			Level: "info",
		},
		Window: Window{
			Title:       "oxy-host",
			Width:       1280,
			Height:      720,
			PresentMode: "vsync",
		},
	}
}

// Load reads and parses the file at path on top of Default.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes TOML data on top of Default and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()

	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return nil, fmt.Errorf("%w: %s", ErrInvalidConfig, strict.String())
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every value that has a restricted range.
func (c *Config) Validate() error {
	if c.Host.TickRate <= 0 || math.IsNaN(c.Host.TickRate) || math.IsInf(c.Host.TickRate, 0) {
		return fmt.Errorf("%w: host.tick_rate must be positive, got %v", ErrInvalidConfig, c.Host.TickRate)
	}
	if c.Host.FrameLimit < 0 {
		return fmt.Errorf("%w: host.frame_limit must not be negative, got %v", ErrInvalidConfig, c.Host.FrameLimit)
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: log.level: %w", ErrInvalidConfig, err)
	}
	if !c.Window.Headless && (c.Window.Width <= 0 || c.Window.Height <= 0) {
		return fmt.Errorf("%w: window size must be positive, got %dx%d", ErrInvalidConfig, c.Window.Width, c.Window.Height)
	}
	switch c.Window.PresentMode {
	case "", "vsync", "uncapped":
	default:
		return fmt.Errorf("%w: window.present_mode must be vsync or uncapped, got %q", ErrInvalidConfig, c.Window.PresentMode)
	}
	return nil
}
