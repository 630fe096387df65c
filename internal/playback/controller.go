package playback

import (
	"log/slog"
	"math"
)

// Default skip magnitudes and drift tolerance, in seconds.
const (
	DefaultSkipForward    = 15.0
	DefaultSkipBackward   = 15.0
	DefaultDriftTolerance = 0.5
)

// Settings are the tunable policies of a controller.
type Settings struct {
	SkipForward    float64 `yaml:"skip_forward_seconds"`
	SkipBackward   float64 `yaml:"skip_backward_seconds"`
	DriftTolerance float64 `yaml:"drift_tolerance_seconds"`
}

// DefaultSettings returns the symmetric ±15s skip policy.
func DefaultSettings() Settings {
	return Settings{
		SkipForward:    DefaultSkipForward,
		SkipBackward:   DefaultSkipBackward,
		DriftTolerance: DefaultDriftTolerance,
	}
}

// withDefaults replaces non-positive values with their defaults.
func (s Settings) withDefaults() Settings {
	if s.SkipForward <= 0 {
		s.SkipForward = DefaultSkipForward
	}
	if s.SkipBackward <= 0 {
		s.SkipBackward = DefaultSkipBackward
	}
	if s.DriftTolerance <= 0 {
		s.DriftTolerance = DefaultDriftTolerance
	}
	return s
}

// Config wires a Controller to its collaborators. Every field is optional.
type Config struct {
	Settings   Settings
	Logger     *slog.Logger
	Recorder   Recorder
	Fullscreen Fullscreen
	Pointer    PointerCapture
	Hooks      Hooks
}

// Controller coordinates several media sources as one playback unit.
//
// It is not safe for concurrent use: every method is expected to run on the
// goroutine that delivers media and input events, one at a time.
type Controller struct {
	settings   Settings
	log        *slog.Logger
	recorder   Recorder
	fullscreen Fullscreen
	pointer    PointerCapture
	hooks      Hooks

	sources    *sourceTable
	expected   []SourceName
	expectSet  map[SourceName]struct{}
	generation Generation
	mounted    bool

	primary         SourceName
	ready           bool
	playing         bool
	started         bool
	ended           bool
	currentTime     float64
	progressPercent float64
	bufferPercent   float64
	fullscreenOn    bool
	dragging        bool
	release         func()
}

// New returns an unmounted controller in the Empty state.
func New(cfg Config) *Controller {
	log := cfg.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Controller{
		settings:   cfg.Settings.withDefaults(),
		log:        log,
		recorder:   cfg.Recorder,
		fullscreen: cfg.Fullscreen,
		pointer:    cfg.Pointer,
		hooks:      cfg.Hooks,
		sources:    newSourceTable(),
		expectSet:  make(map[SourceName]struct{}),
	}
}

// Settings returns the effective settings.
func (c *Controller) Settings() Settings {
	return c.settings
}

// Generation returns the current session generation.
func (c *Controller) Generation() Generation {
	return c.generation
}

// SetPlaylist declares the sources of the session. A playlist naming the same
// set of sources as the current one is a no-op. Any other playlist resets the
// session and starts a new generation; media handles of sources present in
// both playlists are kept and their current state is re-read. Empty names are
// dropped. The fullscreen flag survives the reset.
func (c *Controller) SetPlaylist(names []SourceName) Generation {
	next := dedupe(names)
	if c.mounted && sameSet(next, c.expectSet) {
		return c.generation
	}

	retained := make(map[SourceName]Media)
	for _, src := range c.sources.sorted() {
		if src.media != nil && contains(next, src.Name) {
			retained[src.Name] = src.media
		}
	}

	c.reset()
	c.mounted = true
	c.expected = next
	for _, name := range next {
		c.expectSet[name] = struct{}{}
	}

	c.log.Debug("playlist mounted",
		slog.Uint64("generation", uint64(c.generation)),
		slog.Int("expected", len(next)),
		slog.Int("retained", len(retained)))

	for _, name := range next {
		if m, ok := retained[name]; ok {
			c.Attach(name, m)
		}
	}
	return c.generation
}

// Attach records the media handle of a mounted source and folds in whatever
// readiness and duration it already reports. It returns false for names
// outside the current playlist.
func (c *Controller) Attach(name SourceName, m Media) bool {
	if !c.accept(name, "attach") {
		return false
	}
	src := c.sources.getOrCreate(name)
	src.media = m
	if m == nil {
		return true
	}
	if rs := m.ReadyState(); rs > 0 {
		c.OnCanPlay(name, rs)
	}
	if d := m.Duration(); validTime(d) && d > 0 {
		c.OnDurationChange(name, d)
	}
	return true
}

// Detach handles the unmount of a single source. Removing a source changes
// the playlist identity, so the session restarts without it.
func (c *Controller) Detach(name SourceName) {
	if !c.accept(name, "detach") {
		return
	}
	rest := make([]SourceName, 0, len(c.expected))
	for _, n := range c.expected {
		if n != name {
			rest = append(rest, n)
		}
	}
	if src, ok := c.sources.get(name); ok {
		src.media = nil
		c.sources.delete(name)
	}
	c.SetPlaylist(rest)
}

// Reset tears the session down to its initial empty form. Any in-flight drag
// releases its pointer capture, fullscreen is left through the platform, and
// every media reference is dropped.
func (c *Controller) Reset() {
	if c.fullscreenOn && c.fullscreen != nil {
		if err := c.fullscreen.Exit(); err != nil {
			c.ignore(IgnoredPlatform, "reset", slog.String("error", err.Error()))
		}
	}
	c.fullscreenOn = false
	c.reset()
}

// reset clears the session but leaves the fullscreen flag alone: a playlist
// change does not take the player out of fullscreen on the host.
func (c *Controller) reset() {
	c.endDrag()
	c.sources.clear()
	c.expected = nil
	c.expectSet = make(map[SourceName]struct{})
	c.generation++
	c.mounted = false

	c.primary = ""
	c.ready = false
	c.playing = false
	c.started = false
	c.ended = false
	c.currentTime = 0
	c.progressPercent = 0
	c.bufferPercent = 0
}

// State derives the coarse session state.
func (c *Controller) State() State {
	switch {
	case !c.mounted:
		return StateEmpty
	case !c.ready:
		return StateLoading
	case c.ended:
		return StateEnded
	case c.playing:
		return StatePlaying
	case !c.started:
		return StateReady
	default:
		return StatePaused
	}
}

// Ready reports whether every expected source can begin playback.
func (c *Controller) Ready() bool { return c.ready }

// Playing reports the shared play intent.
func (c *Controller) Playing() bool { return c.playing }

// Primary returns the elected reference source, or "" before election.
func (c *Controller) Primary() SourceName { return c.primary }

// Snapshot copies the derived fields for display.
func (c *Controller) Snapshot() Snapshot {
	snap := Snapshot{
		Generation:      c.generation,
		State:           c.State(),
		Ready:           c.ready,
		Playing:         c.playing,
		Primary:         c.primary,
		CurrentTime:     c.currentTime,
		Duration:        c.primaryDuration(),
		ProgressPercent: c.progressPercent,
		BufferPercent:   c.bufferPercent,
		Fullscreen:      c.fullscreenOn,
		Dragging:        c.dragging,
		Sources:         make([]SourceView, 0, len(c.expected)),
	}

	multi := len(c.expected) > 1
	for _, name := range c.expected {
		view := SourceView{Name: name}
		if src, ok := c.sources.get(name); ok {
			view.Ready = src.Ready()
			view.Duration = src.Duration
			view.CurrentTime = src.CurrentTime
			view.Drift = src.Drift
			if multi {
				view.TimeLabel = TimeLabel(c.currentTime, src.Duration, src.HasDuration)
			}
		} else if multi {
			view.TimeLabel = FormatClock(0)
		}
		snap.Sources = append(snap.Sources, view)
	}

	if !multi && c.primary != "" {
		if src, ok := c.sources.get(c.primary); ok && src.HasDuration {
			snap.RemainingLabel = FormatClock(src.Duration - c.currentTime)
		}
	}
	return snap
}

// accept filters out events for sources outside the current playlist.
func (c *Controller) accept(name SourceName, op string) bool {
	if _, ok := c.expectSet[name]; ok {
		return true
	}
	c.ignore(IgnoredStale, op, slog.String("source", string(name)))
	return false
}

// gate drops commands issued before every source is ready.
func (c *Controller) gate(op string) bool {
	if c.ready {
		return true
	}
	c.ignore(IgnoredPremature, op)
	return false
}

func (c *Controller) ignore(reason, op string, attrs ...any) {
	if c.recorder != nil {
		c.recorder.IncIgnored(reason)
	}
	args := append([]any{slog.String("reason", reason), slog.String("op", op)}, attrs...)
	c.log.Debug("ignored", args...)
}

func (c *Controller) primarySource() (*Source, bool) {
	if c.primary == "" {
		return nil, false
	}
	return c.sources.get(c.primary)
}

func (c *Controller) primaryDuration() float64 {
	if src, ok := c.primarySource(); ok && src.HasDuration {
		return src.Duration
	}
	return 0
}

// setPosition updates the shared timeline fields from a primary-relative time.
func (c *Controller) setPosition(t float64) {
	d := c.primaryDuration()
	if d > 0 && t > d {
		t = d
	}
	c.currentTime = t
	if d > 0 {
		c.progressPercent = t / d * 100
	} else {
		c.progressPercent = 0
	}
	if c.hooks.OnPosition != nil {
		c.hooks.OnPosition(t)
	}
}

func validTime(t float64) bool {
	return !math.IsNaN(t) && !math.IsInf(t, 0)
}

// dedupe drops repeated and empty names, keeping first-seen order.
func dedupe(names []SourceName) []SourceName {
	seen := make(map[SourceName]struct{}, len(names))
	out := make([]SourceName, 0, len(names))
	for _, n := range names {
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}

func sameSet(names []SourceName, set map[SourceName]struct{}) bool {
	if len(names) != len(set) {
		return false
	}
	for _, n := range names {
		if _, ok := set[n]; !ok {
			return false
		}
	}
	return true
}

func contains(names []SourceName, name SourceName) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}
