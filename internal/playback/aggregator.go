package playback

import "log/slog"

// OnDurationChange records the duration reported by a source. Applying the
// same event twice, or before the source's can-play event, yields the same
// record.
func (c *Controller) OnDurationChange(name SourceName, duration float64) {
	if !c.accept(name, "duration_change") {
		return
	}
	if !validTime(duration) || duration < 0 {
		c.ignore(IgnoredInvalid, "duration_change",
			slog.String("source", string(name)),
			slog.Float64("duration", duration))
		return
	}

	src := c.sources.getOrCreate(name)
	src.Duration = duration
	src.HasDuration = true
	c.recompute(true)
}

// OnCanPlay records the readiness level reported by a source.
func (c *Controller) OnCanPlay(name SourceName, readyState int) {
	if !c.accept(name, "can_play") {
		return
	}

	src := c.sources.getOrCreate(name)
	src.ReadyState = readyState
	c.recompute(false)
}

// recompute derives the aggregate flags once every expected source has a
// record. durationRound marks a recompute triggered by a duration change;
// multi-source election happens only on such a round.
func (c *Controller) recompute(durationRound bool) {
	n := len(c.expected)
	if !c.mounted || n == 0 || c.sources.len() != n {
		return
	}

	srcs := c.sources.sorted()
	if c.primary == "" {
		switch {
		case n == 1:
			c.primary = srcs[0].Name
		case durationRound && allDurations(srcs):
			c.primary = SelectPrimary(srcs)
		}
		if c.primary != "" {
			c.log.Debug("primary elected",
				slog.String("primary", string(c.primary)),
				slog.Uint64("generation", uint64(c.generation)))
		}
	}

	allReady := true
	for _, s := range srcs {
		if !s.Ready() {
			allReady = false
			break
		}
	}

	wasReady := c.ready
	if n == 1 {
		c.ready = allReady
	} else {
		c.ready = allReady && c.primary != ""
	}
	if c.ready != wasReady {
		c.log.Debug("readiness changed",
			slog.Bool("ready", c.ready),
			slog.Uint64("generation", uint64(c.generation)))
	}
}

func allDurations(srcs []*Source) bool {
	for _, s := range srcs {
		if !s.HasDuration {
			return false
		}
	}
	return true
}
