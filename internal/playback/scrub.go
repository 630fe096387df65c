package playback

import "log/slog"

// DragStart begins a scrub: the transport pauses and pointer tracking is
// acquired until the drag ends, is cancelled, or the session resets.
func (c *Controller) DragStart() {
	if !c.gate("drag_start") {
		return
	}
	if c.dragging {
		return
	}
	c.Pause()
	c.dragging = true
	if c.pointer != nil {
		c.release = c.pointer.Capture()
	}
}

// DragMove updates only the preview position. No source is touched.
func (c *Controller) DragMove(x float64, bar BarLayout) {
	if !c.gate("drag_move") {
		return
	}
	if !c.dragging {
		return
	}
	t, ok := c.timeAt(x, bar)
	if !ok {
		return
	}
	c.setPosition(t)
}

// DragEnd commits the scrub: every source seeks to the pointer time and
// playback resumes. An unusable pointer position skips the seek but still
// resumes. Without a preceding DragStart it behaves as a click on the
// progress bar.
func (c *Controller) DragEnd(x float64, bar BarLayout) {
	if !c.ready {
		c.endDrag()
		c.ignore(IgnoredPremature, "drag_end")
		return
	}
	if t, ok := c.timeAt(x, bar); ok {
		c.SeekTo(t)
	}
	c.Play()
	c.endDrag()
}

// Click is a direct click on the progress bar.
func (c *Controller) Click(x float64, bar BarLayout) {
	c.DragEnd(x, bar)
}

// CancelDrag abandons an in-flight drag without seeking.
func (c *Controller) CancelDrag() {
	c.endDrag()
}

// Dragging reports whether a scrub is in progress.
func (c *Controller) Dragging() bool { return c.dragging }

func (c *Controller) endDrag() {
	c.dragging = false
	if c.release != nil {
		release := c.release
		c.release = nil
		release()
	}
}

// timeAt converts a pointer x coordinate into a primary-relative time.
func (c *Controller) timeAt(x float64, bar BarLayout) (float64, bool) {
	d := c.primaryDuration()
	if bar.Width <= 0 || d <= 0 || !validTime(x) || !validTime(bar.Left) || !validTime(bar.Width) {
		c.ignore(IgnoredInvalid, "pointer",
			slog.Float64("x", x),
			slog.Float64("width", bar.Width))
		return 0, false
	}
	frac := (x - bar.Left) / bar.Width
	switch {
	case frac < 0:
		frac = 0
	case frac > 1:
		frac = 1
	}
	return frac * d, true
}
