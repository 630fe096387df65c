package playback

// SourceName uniquely identifies a source within a playback session.
type SourceName string

// Generation identifies one incarnation of a session. It changes on every
// reset so events addressed to a torn-down playlist can be recognised.
type Generation uint64

// Source is the controller's record for one media element under coordination.
type Source struct {
	Name        SourceName
	ReadyState  int
	Duration    float64
	HasDuration bool

	// CurrentTime is the last time reported by the source itself. It is only
	// used for labels and drift detection, never for the shared timeline.
	CurrentTime float64
	Drift       float64

	media Media
}

// Ready reports whether the platform considers the source playable.
func (s *Source) Ready() bool {
	return s.ReadyState > 0
}

// State is the coarse session state derived from the controller fields.
type State string

const (
	StateEmpty   State = "empty"
	StateLoading State = "loading"
	StateReady   State = "ready"
	StatePlaying State = "playing"
	StatePaused  State = "paused"
	StateEnded   State = "ended"
)

// Direction selects a keyboard skip.
type Direction int

const (
	Forward Direction = iota + 1
	Backward
)

// BarLayout is the progress bar geometry at the moment of a pointer event.
type BarLayout struct {
	Left  float64 `json:"left"`
	Width float64 `json:"width"`
}

// SourceView is the per-source data the rendering layer displays.
type SourceView struct {
	Name        SourceName `json:"name"`
	Ready       bool       `json:"ready"`
	Duration    float64    `json:"duration"`
	CurrentTime float64    `json:"current_time"`
	Drift       float64    `json:"drift"`
	TimeLabel   string     `json:"time_label"`
}

// Snapshot is a read-only copy of the session's derived fields.
type Snapshot struct {
	Generation      Generation   `json:"generation"`
	State           State        `json:"state"`
	Ready           bool         `json:"ready"`
	Playing         bool         `json:"playing"`
	Primary         SourceName   `json:"primary,omitempty"`
	CurrentTime     float64      `json:"current_time"`
	Duration        float64      `json:"duration"`
	ProgressPercent float64      `json:"progress_percent"`
	BufferPercent   float64      `json:"buffer_percent"`
	Fullscreen      bool         `json:"fullscreen"`
	Dragging        bool         `json:"dragging"`
	RemainingLabel  string       `json:"remaining_label,omitempty"`
	Sources         []SourceView `json:"sources"`
}
