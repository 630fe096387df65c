package session

import (
	"errors"

	"syncplayer/internal/playback"
)

// ErrUnsupported is returned by platform capabilities the client lacks.
var ErrUnsupported = errors.New("capability not supported by client")

// Outbox collects commands for the client in issue order.
type Outbox struct {
	cmds []Command
}

func (o *Outbox) push(c Command) {
	o.cmds = append(o.cmds, c)
}

// Drain returns the queued commands and empties the outbox.
// The result is never nil.
func (o *Outbox) Drain() []Command {
	out := o.cmds
	o.cmds = nil
	if out == nil {
		out = []Command{}
	}
	return out
}

// RemoteMedia is a media handle for an element living in the client. Reads
// return the last state the client reported; writes update that mirror
// immediately and queue the matching command.
type RemoteMedia struct {
	name   playback.SourceName
	outbox *Outbox

	duration    float64
	currentTime float64
	paused      bool
	readyState  int
	bufferedEnd float64
}

// NewRemoteMedia returns a paused, not-ready handle for name.
func NewRemoteMedia(name playback.SourceName, outbox *Outbox) *RemoteMedia {
	return &RemoteMedia{name: name, outbox: outbox, paused: true}
}

func (m *RemoteMedia) Duration() float64    { return m.duration }
func (m *RemoteMedia) CurrentTime() float64 { return m.currentTime }
func (m *RemoteMedia) Paused() bool         { return m.paused }
func (m *RemoteMedia) ReadyState() int      { return m.readyState }

func (m *RemoteMedia) Ended() bool {
	return m.duration > 0 && m.currentTime >= m.duration
}

func (m *RemoteMedia) BufferedEnd() (float64, bool) {
	return m.bufferedEnd, m.bufferedEnd > 0
}

func (m *RemoteMedia) SetCurrentTime(t float64) {
	m.currentTime = t
	m.outbox.push(Command{Source: m.name, Op: OpSeek, Time: t})
}

func (m *RemoteMedia) Play() {
	m.paused = false
	m.outbox.push(Command{Source: m.name, Op: OpPlay, Time: m.currentTime})
}

func (m *RemoteMedia) Pause() {
	m.paused = true
	m.outbox.push(Command{Source: m.name, Op: OpPause, Time: m.currentTime})
}

// observe folds a client event into the mirrored state.
func (m *RemoteMedia) observe(ev Event) {
	switch ev.Type {
	case EventCanPlay:
		m.readyState = ev.ReadyState
	case EventDurationChange:
		m.duration = ev.Duration
	case EventTimeUpdate:
		m.currentTime = ev.CurrentTime
	case EventPlaying:
		m.paused = false
	case EventPause:
		m.paused = true
	case EventProgress:
		m.bufferedEnd = ev.BufferedEnd
	}
}

// RemoteFullscreen asks the client to enter or leave fullscreen.
type RemoteFullscreen struct {
	supported bool
	outbox    *Outbox
}

func (f *RemoteFullscreen) Request() error {
	if !f.supported {
		return ErrUnsupported
	}
	f.outbox.push(Command{Op: OpRequestFullscreen})
	return nil
}

func (f *RemoteFullscreen) Exit() error {
	if !f.supported {
		return ErrUnsupported
	}
	f.outbox.push(Command{Op: OpExitFullscreen})
	return nil
}

// RemotePointer asks the client to track pointer movement for a drag.
type RemotePointer struct {
	outbox *Outbox
}

func (p *RemotePointer) Capture() func() {
	p.outbox.push(Command{Op: OpCapturePointer})
	released := false
	return func() {
		if released {
			return
		}
		released = true
		p.outbox.push(Command{Op: OpReleasePointer})
	}
}
