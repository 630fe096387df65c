package playback

// Media is the handle the rendering layer lends the controller for one source.
// The controller issues commands through it but never creates or destroys
// the underlying element.
type Media interface {
	Duration() float64
	CurrentTime() float64
	SetCurrentTime(t float64)
	Paused() bool
	Ended() bool
	ReadyState() int
	BufferedEnd() (end float64, ok bool)
	Play()
	Pause()
}

// Fullscreen is the platform capability used by the fullscreen toggle.
// Implementations return an error when the capability is unavailable.
type Fullscreen interface {
	Request() error
	Exit() error
}

// PointerCapture registers pointer-move/pointer-up tracking for the duration
// of a drag. The returned release func detaches it and must be safe to call
// more than once.
type PointerCapture interface {
	Capture() (release func())
}

// Recorder receives counters for decisions the controller makes silently.
// *metrics.Metrics satisfies it; nil disables recording.
type Recorder interface {
	IncIgnored(reason string)
	IncDivergence()
}

// Hooks are optional callbacks for embedding applications.
type Hooks struct {
	// OnTogglePlayback is called after a play/pause fan-out with the
	// resulting paused flag of the shared transport.
	OnTogglePlayback func(paused bool)
	// OnPosition is called whenever the shared timeline position changes,
	// including scrub previews.
	OnPosition func(seconds float64)
}

// Reasons passed to Recorder.IncIgnored.
const (
	IgnoredPremature = "premature_command"
	IgnoredStale     = "stale_event"
	IgnoredInvalid   = "invalid_value"
	IgnoredPlatform  = "platform_unavailable"
)
