package engine

// FrameStatus tells the loop driving the host what to do after a frame.
type FrameStatus int

const (
	// FrameContinue means the frame completed and the loop should run another.
	FrameContinue FrameStatus = iota

	// FrameStop means the host was asked to stop: Stop was called, the window closed
	// or the context was cancelled.
	FrameStop

	// FrameFatal means the frame failed; FrameResult.Err holds the cause.
	FrameFatal
)

func (s FrameStatus) String() string {
	switch s {
	case FrameContinue:
		return "continue"
	case FrameStop:
		return "stop"
	case FrameFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// FrameResult is the outcome of a single Step.
type FrameResult struct {
	Status FrameStatus
	Err    error
}

func frameContinue() FrameResult {
	return FrameResult{Status: FrameContinue}
}

func frameStop() FrameResult {
	return FrameResult{Status: FrameStop}
}

func frameFatal(err error) FrameResult {
	return FrameResult{Status: FrameFatal, Err: err}
}
