package renderer

// PresenterBuilderOption is a functional option applied to a presenter during construction via NewPresenter.
type PresenterBuilderOption func(*presenter)

// WithPresentMode sets the surface present mode which controls how frames are delivered to the display.
//
// Parameters:
//   - mode: the PresentMode to use (VSync or Uncapped)
//
// Returns:
//   - PresenterBuilderOption: a function that applies the present mode option
func WithPresentMode(mode PresentMode) PresenterBuilderOption {
	return func(p *presenter) {
		p.presentMode = mode
	}
}

// WithClearColor sets the initial clear colour.
//
// Parameters:
//   - c: the clear colour
//
// Returns:
//   - PresenterBuilderOption: a function that applies the clear colour option
func WithClearColor(c Color) PresenterBuilderOption {
	return func(p *presenter) {
		p.clear = c
	}
}

// WithForceSoftwareRenderer forces WGPU to use a CPU/software fallback adapter instead of
// hardware GPU acceleration. This requires a software Vulkan ICD to be installed on the system
// (e.g. SwiftShader or lavapipe).
//
// Parameters:
//   - force: true to force the software fallback adapter, false to use hardware (default)
//
// Returns:
//   - PresenterBuilderOption: a function that applies the force software renderer option
func WithForceSoftwareRenderer(force bool) PresenterBuilderOption {
	return func(p *presenter) {
		p.forceFallbackAdapter = force
	}
}
