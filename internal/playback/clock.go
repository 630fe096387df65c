package playback

import (
	"fmt"
	"math"
)

// FormatClock renders seconds as mm:ss. Minutes are not wrapped into hours.
func FormatClock(secs float64) string {
	if !validTime(secs) || secs < 0 {
		secs = 0
	}
	mins := int(math.Floor(secs / 60))
	rest := int(math.Floor(math.Mod(secs, 60)))
	return fmt.Sprintf("%02d:%02d", mins, rest)
}

// TimeLabel renders "elapsed / duration" for one source of a multi-source
// session, with the shared time clamped to the source's own duration.
func TimeLabel(shared, duration float64, hasDuration bool) string {
	if !hasDuration {
		return FormatClock(0)
	}
	if shared > duration {
		shared = duration
	}
	return FormatClock(shared) + " / " + FormatClock(duration)
}
