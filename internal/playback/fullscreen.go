package playback

import "log/slog"

// ToggleFullscreen flips the fullscreen flag through the platform. When the
// platform is missing or refuses, the flag stays as it was.
func (c *Controller) ToggleFullscreen() {
	if !c.gate("toggle_fullscreen") {
		return
	}
	if c.fullscreen == nil {
		c.ignore(IgnoredPlatform, "toggle_fullscreen")
		return
	}

	var err error
	if c.fullscreenOn {
		err = c.fullscreen.Exit()
	} else {
		err = c.fullscreen.Request()
	}
	if err != nil {
		c.ignore(IgnoredPlatform, "toggle_fullscreen", slog.String("error", err.Error()))
		return
	}
	c.fullscreenOn = !c.fullscreenOn
}

// Fullscreen reports the fullscreen flag.
func (c *Controller) Fullscreen() bool { return c.fullscreenOn }
