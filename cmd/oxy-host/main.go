// Command oxy-host runs the fixed-step host loop with a damped spring demo.
//
// With a window it clears the surface to a colour driven by the interpolated spring position.
// Headless, it runs the same loop on the monotonic clock and only logs.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/Carmen-Shannon/oxy-host/config"
	"github.com/Carmen-Shannon/oxy-host/demo"
	"github.com/Carmen-Shannon/oxy-host/engine"
	"github.com/Carmen-Shannon/oxy-host/engine/renderer"
	"github.com/Carmen-Shannon/oxy-host/engine/task"
	"github.com/Carmen-Shannon/oxy-host/engine/window"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "oxy-host:", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to a TOML config file")
	headless := flag.Bool("headless", false, "run without a window")
	frames := flag.Uint64("frames", 0, "stop after this many frames (0 runs until interrupted)")
	tickRate := flag.Float64("tick-rate", 0, "override host.tick_rate")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if *headless {
		cfg.Window.Headless = true
	}
	if *tickRate != 0 {
		cfg.Host.TickRate = *tickRate
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := cfg.Log.NewLogger()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	opts := []engine.HostBuilderOption{
		engine.WithLogger(logger),
		engine.WithTickRate(cfg.Host.TickRate),
		engine.WithFixedSimulationStep(cfg.Host.FixedSimulationStep),
		engine.WithStepping(cfg.Host.Stepping),
		engine.WithFrameLimit(cfg.Host.FrameLimit),
		engine.WithProfiling(cfg.Host.Profiling),
	}

	var win window.Window
	var presenter renderer.Presenter
	if !cfg.Window.Headless {
		win, err = window.NewWindow(
			window.WithTitle(cfg.Window.Title),
			window.WithSize(cfg.Window.Width, cfg.Window.Height),
		)
		if err != nil {
			return err
		}
		mode, err := renderer.ParsePresentMode(cfg.Window.PresentMode)
		if err != nil {
			_ = win.Close()
			return err
		}
		presenter, err = renderer.NewPresenter(win, renderer.WithPresentMode(mode))
		if err != nil {
			_ = win.Close()
			return err
		}
		win.SetResizeCallback(presenter.Resize)
		opts = append(opts, engine.WithWindow(win))
	}

	h, err := engine.NewHost(opts...)
	if err != nil {
		if presenter != nil {
			presenter.Release()
			_ = win.Close()
		}
		return err
	}
	// The surface must be released before Destroy closes the window.
	defer func() {
		if presenter != nil {
			presenter.Release()
		}
		if err := h.Destroy(); err != nil {
			logger.Warn("destroy host", zap.Error(err))
		}
	}()

	osc := demo.NewOscillator(1, 4*4, 0.25)
	if _, err := h.SimulationTasks().Add("oscillator", osc.Task(h)); err != nil {
		return err
	}

	var colors demo.ColorSetter
	if presenter != nil {
		colors = presenter
	}
	if _, err := h.FrameTasks().Add("status", demo.StatusTask(h, osc, colors, logger, 1)); err != nil {
		return err
	}
	if presenter != nil {
		if _, err := h.FrameTasks().Add("present", presenter.Task(), task.WithSort(100)); err != nil {
			return err
		}
		win.SetKeyDownCallback(demo.KeyHandler(h, osc, logger))
	}

	if *frames > 0 {
		limit := *frames
		_, err := h.FrameTasks().Add("frame-limit", func(*task.Task) (task.Status, error) {
			if h.Clock().FrameCount()+1 >= limit {
				h.Stop()
				return task.StatusDone, nil
			}
			return task.StatusCont, nil
		}, task.WithSort(200))
		if err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger.Info("starting",
		zap.Float64("tick_rate", cfg.Host.TickRate),
		zap.Bool("headless", cfg.Window.Headless),
		zap.Uint64("frames", *frames))
	return h.Run(ctx)
}
