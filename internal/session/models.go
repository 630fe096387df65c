package session

import (
	"time"

	"syncplayer/internal/playback"
)

// SessionID uniquely identifies a playback session.
type SessionID string

// EventType names a media lifecycle event reported by the client.
type EventType string

const (
	EventCanPlay        EventType = "can_play"
	EventDurationChange EventType = "duration_change"
	EventTimeUpdate     EventType = "time_update"
	EventPlaying        EventType = "playing"
	EventPause          EventType = "pause"
	EventProgress       EventType = "progress"
)

func (t EventType) valid() bool {
	switch t {
	case EventCanPlay, EventDurationChange, EventTimeUpdate, EventPlaying, EventPause, EventProgress:
		return true
	}
	return false
}

// Event is one media lifecycle event for one source.
// This also matches the JSON payload of POST /sessions/{id}/events.
type Event struct {
	Generation  playback.Generation `json:"generation"`
	Source      playback.SourceName `json:"source"`
	Type        EventType           `json:"type"`
	ReadyState  int                 `json:"ready_state"`
	Duration    float64             `json:"duration"`
	CurrentTime float64             `json:"current_time"`
	BufferedEnd float64             `json:"buffered_end"`
}

// CommandType names a user transport action.
type CommandType string

const (
	CommandPlay             CommandType = "play"
	CommandPause            CommandType = "pause"
	CommandToggle           CommandType = "toggle"
	CommandSeek             CommandType = "seek"
	CommandRestart          CommandType = "restart"
	CommandSkip             CommandType = "skip"
	CommandDragStart        CommandType = "drag_start"
	CommandDragMove         CommandType = "drag_move"
	CommandDragEnd          CommandType = "drag_end"
	CommandDragCancel       CommandType = "drag_cancel"
	CommandProgressClick    CommandType = "progress_click"
	CommandToggleFullscreen CommandType = "toggle_fullscreen"
)

// CommandRequest is the JSON payload of POST /sessions/{id}/commands.
type CommandRequest struct {
	Type      CommandType        `json:"type"`
	Time      float64            `json:"time"`
	Direction string             `json:"direction"`
	ClientX   float64            `json:"client_x"`
	Bar       playback.BarLayout `json:"bar"`
}

// Op is an instruction the client must apply to its media elements.
type Op string

const (
	OpSeek              Op = "seek"
	OpPlay              Op = "play"
	OpPause             Op = "pause"
	OpRequestFullscreen Op = "request_fullscreen"
	OpExitFullscreen    Op = "exit_fullscreen"
	OpCapturePointer    Op = "capture_pointer"
	OpReleasePointer    Op = "release_pointer"
)

// Command is one queued client instruction. Source is empty for
// player-level operations such as fullscreen and pointer capture.
type Command struct {
	Source playback.SourceName `json:"source,omitempty"`
	Op     Op                  `json:"op"`
	Time   float64             `json:"time"`
}

// Result is returned by every session operation: the derived state plus the
// commands queued while handling it.
type Result struct {
	ID       SessionID         `json:"id"`
	Ignored  bool              `json:"ignored,omitempty"`
	State    playback.Snapshot `json:"state"`
	Commands []Command         `json:"commands"`
}

// Session is the server-side state of one mounted player.
type Session struct {
	ID         SessionID
	Controller *playback.Controller
	Media      map[playback.SourceName]*RemoteMedia
	Outbox     *Outbox
	CreatedAt  time.Time
}
