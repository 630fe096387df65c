package playback

import (
	"log/slog"
	"math"
)

// Play sets the shared intent to playing and fans it out to every source.
func (c *Controller) Play() {
	if !c.gate("play") {
		return
	}
	c.setIntent(true)
}

// Pause sets the shared intent to paused and fans it out to every source.
func (c *Controller) Pause() {
	if !c.gate("pause") {
		return
	}
	c.setIntent(false)
}

// Toggle flips the shared intent.
func (c *Controller) Toggle() {
	if !c.gate("toggle") {
		return
	}
	c.setIntent(!c.playing)
}

// setIntent applies a play/pause intent. A source whose own time already
// reached its own duration is clamped there and paused instead of played.
func (c *Controller) setIntent(playing bool) {
	c.started = true
	c.ended = false
	c.playing = playing

	clamped, running := 0, 0
	for _, src := range c.sources.sorted() {
		m := src.media
		if m == nil {
			continue
		}
		if src.HasDuration && m.CurrentTime() >= src.Duration {
			m.SetCurrentTime(src.Duration)
			m.Pause()
			clamped++
			continue
		}
		if playing {
			m.Play()
			running++
		} else {
			m.Pause()
		}
	}
	if playing && clamped > 0 && running == 0 {
		c.playing = false
	}

	if c.hooks.OnTogglePlayback != nil {
		c.hooks.OnTogglePlayback(!c.playing)
	}
}

// SeekTo moves every source to t. Sources shorter than t are clamped to their
// own duration and paused; the others move to t and resume if the shared
// intent is playing.
func (c *Controller) SeekTo(t float64) {
	if !c.gate("seek") {
		return
	}
	if math.IsNaN(t) {
		c.ignore(IgnoredInvalid, "seek")
		return
	}
	if t < 0 {
		t = 0
	}
	c.started = true

	clamped, running := 0, 0
	for _, src := range c.sources.sorted() {
		m := src.media
		if m == nil {
			continue
		}
		if src.HasDuration && t >= src.Duration {
			m.SetCurrentTime(src.Duration)
			m.Pause()
			clamped++
			continue
		}
		m.SetCurrentTime(t)
		if c.playing {
			m.Play()
			running++
		}
	}
	if c.playing && clamped > 0 && running == 0 {
		c.playing = false
	}

	d := c.primaryDuration()
	c.ended = d > 0 && t >= d
	c.setPosition(t)
}

// Restart seeks every source to the beginning and plays.
func (c *Controller) Restart() {
	if !c.gate("restart") {
		return
	}
	c.SeekTo(0)
	c.Play()
}

// KeyboardSkip seeks relative to the primary's last reported time.
func (c *Controller) KeyboardSkip(delta float64) {
	if !c.gate("skip") {
		return
	}
	c.SeekTo(c.currentTime + delta)
}

// Skip applies the configured skip magnitude in the given direction.
func (c *Controller) Skip(dir Direction) {
	switch dir {
	case Forward:
		c.KeyboardSkip(c.settings.SkipForward)
	case Backward:
		c.KeyboardSkip(-c.settings.SkipBackward)
	default:
		c.ignore(IgnoredInvalid, "skip", slog.Int("direction", int(dir)))
	}
}

// OnTimeUpdate handles a time-update event. Only the primary drives the
// shared timeline; other sources are checked for drift against it.
func (c *Controller) OnTimeUpdate(name SourceName, t float64) {
	if !c.accept(name, "time_update") {
		return
	}
	if !validTime(t) {
		c.ignore(IgnoredInvalid, "time_update", slog.String("source", string(name)))
		return
	}
	src, ok := c.sources.get(name)
	if !ok {
		return
	}
	src.CurrentTime = t

	if c.primary == "" {
		return
	}
	if name != c.primary {
		c.checkDrift(src)
		return
	}
	if c.dragging {
		return
	}

	c.setPosition(t)
	if d := c.primaryDuration(); d > 0 {
		c.ended = t >= d
	}
}

// checkDrift compares a non-primary source's own time against the shared
// timeline while it should be running alongside the primary.
func (c *Controller) checkDrift(src *Source) {
	if !c.playing || c.dragging || !c.ready {
		src.Drift = 0
		return
	}
	if src.HasDuration && c.currentTime >= src.Duration {
		src.Drift = 0
		return
	}
	src.Drift = src.CurrentTime - c.currentTime
	if math.Abs(src.Drift) <= c.settings.DriftTolerance {
		return
	}
	if c.recorder != nil {
		c.recorder.IncDivergence()
	}
	c.log.Debug("source diverged from primary",
		slog.String("source", string(src.Name)),
		slog.String("primary", string(c.primary)),
		slog.Float64("drift", src.Drift))
}

// OnProgress handles a buffering update. bufferedEnd is the end of the last
// buffered range; a non-positive value means no range exists yet.
func (c *Controller) OnProgress(name SourceName, bufferedEnd float64) {
	if !c.accept(name, "progress") {
		return
	}
	if name != c.primary {
		return
	}
	if !validTime(bufferedEnd) || bufferedEnd <= 0 {
		return
	}
	d := c.primaryDuration()
	if d <= 0 {
		return
	}
	c.bufferPercent = math.Min(bufferedEnd/d*100, 100)
}

// OnPlaying handles a playing event. Only the primary may flip the shared
// indicator, and only once the session is ready.
func (c *Controller) OnPlaying(name SourceName) {
	c.onPlayState(name, true, "playing")
}

// OnPaused handles a pause event; see OnPlaying.
func (c *Controller) OnPaused(name SourceName) {
	c.onPlayState(name, false, "pause")
}

func (c *Controller) onPlayState(name SourceName, playing bool, op string) {
	if !c.accept(name, op) {
		return
	}
	if !c.ready || name != c.primary {
		return
	}
	c.started = true
	c.playing = playing
}
