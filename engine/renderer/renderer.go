package renderer

import (
	"errors"
	"sync"

	"github.com/Carmen-Shannon/oxy-host/engine/task"
	"github.com/cogentcore/webgpu/wgpu"
)

// ErrNoSurface is returned when the window cannot provide a surface descriptor.
var ErrNoSurface = errors.New("window has no surface descriptor")

// Color is a linear RGBA colour with components in [0, 1].
type Color struct {
	R, G, B, A float64
}

// SurfaceSource supplies the platform surface a Presenter draws into. window.Window satisfies it.
type SurfaceSource interface {
	SurfaceDescriptor() *wgpu.SurfaceDescriptor
	Width() int
	Height() int
}

// Presenter clears the window surface to a colour and presents it once per render frame.
// It stands in for the full scene renderer so the host's render step has a real GPU consumer.
type Presenter interface {
	// SetClearColor sets the colour used by the next Present.
	//
	// Parameters:
	//   - c: the clear colour
	SetClearColor(c Color)

	// ClearColor returns the colour used by the next Present.
	//
	// Returns:
	//   - Color: the current clear colour
	ClearColor() Color

	// Resize reconfigures the surface for a new framebuffer size.
	//
	// Parameters:
	//   - width: the new width in pixels
	//   - height: the new height in pixels
	Resize(width, height int)

	// Present acquires the next surface texture, clears it and presents it.
	//
	// Returns:
	//   - error: error if the surface texture could not be acquired or encoded
	Present() error

	// Task returns a render-bound TaskFunc that calls Present every frame.
	//
	// Returns:
	//   - task.TaskFunc: the task body
	Task() task.TaskFunc

	// Release frees all GPU resources. Safe to call multiple times.
	Release()
}

// presenter implements the Presenter interface.
type presenter struct {
	mu      sync.Mutex
	clear   Color
	backend presenterBackend

	forceFallbackAdapter bool
	presentMode          PresentMode
	releaseOnce          sync.Once
}

var _ Presenter = &presenter{}

// NewPresenter creates a Presenter drawing into the surface of src.
//
// Parameters:
//   - src: the surface source, usually the host window
//   - options: functional options for present mode, adapter and clear colour
//
// Returns:
//   - Presenter: the configured presenter
//   - error: ErrNoSurface or a GPU initialisation error
func NewPresenter(src SurfaceSource, options ...PresenterBuilderOption) (Presenter, error) {
	p := &presenter{
		clear:       Color{R: 0.1, G: 0.1, B: 0.1, A: 1.0},
		presentMode: PresentModeVSync,
	}
	for _, opt := range options {
		opt(p)
	}

	desc := src.SurfaceDescriptor()
	if desc == nil {
		return nil, ErrNoSurface
	}
	b, err := newWGPUPresenterBackend(desc, p.forceFallbackAdapter, p.presentMode)
	if err != nil {
		return nil, err
	}
	b.configure(src.Width(), src.Height())
	p.backend = b
	return p, nil
}

func (p *presenter) SetClearColor(c Color) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.clear = c
}

func (p *presenter) ClearColor() Color {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.clear
}

func (p *presenter) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	p.backend.configure(width, height)
}

func (p *presenter) Present() error {
	return p.backend.present(p.ClearColor())
}

func (p *presenter) Task() task.TaskFunc {
	return func(*task.Task) (task.Status, error) {
		return task.StatusCont, p.Present()
	}
}

func (p *presenter) Release() {
	p.releaseOnce.Do(p.backend.release)
}
