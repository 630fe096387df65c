package session

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"syncplayer/internal/platform/metrics"
	"syncplayer/internal/playback"
)

var (
	// ErrUnknownEvent is returned for event types the service does not handle.
	ErrUnknownEvent = errors.New("unknown event type")

	// ErrUnknownCommand is returned for malformed or unknown commands.
	ErrUnknownCommand = errors.New("unknown command")

	// ErrInvalidPlaylist is returned for playlists naming an empty source.
	ErrInvalidPlaylist = errors.New("invalid playlist")
)

// Service owns the lifecycle of playback sessions and translates client
// events and commands into controller calls.
type Service struct {
	repo     Repository
	settings playback.Settings
	log      *slog.Logger
	metrics  *metrics.Metrics
}

// NewService returns a Service storing sessions in repo. Metrics may be nil.
func NewService(repo Repository, settings playback.Settings, log *slog.Logger, m *metrics.Metrics) *Service {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Service{repo: repo, settings: settings, log: log, metrics: m}
}

// Create mounts a new session for the given playlist. fullscreen declares
// whether the client can honour fullscreen requests.
func (s *Service) Create(playlist []playback.SourceName, fullscreen bool) (Result, error) {
	if err := validatePlaylist(playlist); err != nil {
		return Result{}, err
	}
	id := SessionID(uuid.NewString())
	outbox := &Outbox{}

	cfg := playback.Config{
		Settings:   s.settings,
		Logger:     s.log.With(slog.String("session_id", string(id))),
		Fullscreen: &RemoteFullscreen{supported: fullscreen, outbox: outbox},
		Pointer:    &RemotePointer{outbox: outbox},
	}
	if s.metrics != nil {
		cfg.Recorder = s.metrics
		cfg.Hooks.OnTogglePlayback = s.metrics.IncToggle
	}

	sess := &Session{
		ID:         id,
		Controller: playback.New(cfg),
		Media:      make(map[playback.SourceName]*RemoteMedia),
		Outbox:     outbox,
		CreatedAt:  time.Now().UTC(),
	}
	mountPlaylist(sess, playlist)

	if err := s.repo.Create(sess); err != nil {
		return Result{}, fmt.Errorf("create session: %w", err)
	}
	s.updateActive()

	s.log.Info("session created",
		slog.String("session_id", string(id)),
		slog.Int("sources", len(sess.Controller.Snapshot().Sources)))
	return result(sess, false), nil
}

// SetPlaylist replaces the session's playlist. A different set of sources
// restarts the session under a new generation.
func (s *Service) SetPlaylist(id SessionID, playlist []playback.SourceName) (Result, error) {
	if err := validatePlaylist(playlist); err != nil {
		return Result{}, err
	}
	var res Result
	err := s.repo.Update(id, func(sess *Session) error {
		before := sess.Controller.Generation()
		mountPlaylist(sess, playlist)
		if gen := sess.Controller.Generation(); gen != before {
			s.log.Info("playlist replaced",
				slog.String("session_id", string(id)),
				slog.Uint64("generation", uint64(gen)))
		}
		res = result(sess, false)
		return nil
	})
	return res, err
}

// HandleEvent applies a client media event. Events addressed to another
// generation or to a source outside the playlist are ignored, not rejected.
func (s *Service) HandleEvent(id SessionID, ev Event) (Result, error) {
	if !ev.Type.valid() {
		return Result{}, fmt.Errorf("%w: %q", ErrUnknownEvent, ev.Type)
	}
	var res Result
	err := s.repo.Update(id, func(sess *Session) error {
		ctrl := sess.Controller
		media, known := sess.Media[ev.Source]
		if ev.Generation != ctrl.Generation() || !known {
			if s.metrics != nil {
				s.metrics.IncIgnored(playback.IgnoredStale)
			}
			s.log.Debug("stale event ignored",
				slog.String("session_id", string(id)),
				slog.String("source", string(ev.Source)),
				slog.String("type", string(ev.Type)),
				slog.Uint64("generation", uint64(ev.Generation)))
			res = result(sess, true)
			return nil
		}

		switch ev.Type {
		case EventCanPlay:
			media.observe(ev)
			ctrl.OnCanPlay(ev.Source, ev.ReadyState)
		case EventDurationChange:
			media.observe(ev)
			ctrl.OnDurationChange(ev.Source, ev.Duration)
		case EventTimeUpdate:
			media.observe(ev)
			ctrl.OnTimeUpdate(ev.Source, ev.CurrentTime)
		case EventPlaying:
			media.observe(ev)
			ctrl.OnPlaying(ev.Source)
		case EventPause:
			media.observe(ev)
			ctrl.OnPaused(ev.Source)
		case EventProgress:
			media.observe(ev)
			ctrl.OnProgress(ev.Source, ev.BufferedEnd)
		default:
			return fmt.Errorf("%w: %q", ErrUnknownEvent, ev.Type)
		}

		if s.metrics != nil {
			s.metrics.IncEvent(string(ev.Type))
		}
		res = result(sess, false)
		return nil
	})
	return res, err
}

// HandleCommand applies a user action. Commands issued before the session is
// ready are dropped by the controller and reported as a normal result.
func (s *Service) HandleCommand(id SessionID, cmd CommandRequest) (Result, error) {
	var res Result
	err := s.repo.Update(id, func(sess *Session) error {
		ctrl := sess.Controller
		switch cmd.Type {
		case CommandPlay:
			ctrl.Play()
		case CommandPause:
			ctrl.Pause()
		case CommandToggle:
			ctrl.Toggle()
		case CommandSeek:
			ctrl.SeekTo(cmd.Time)
		case CommandRestart:
			ctrl.Restart()
		case CommandSkip:
			dir, err := parseDirection(cmd.Direction)
			if err != nil {
				return err
			}
			ctrl.Skip(dir)
		case CommandDragStart:
			ctrl.DragStart()
		case CommandDragMove:
			ctrl.DragMove(cmd.ClientX, cmd.Bar)
		case CommandDragEnd:
			ctrl.DragEnd(cmd.ClientX, cmd.Bar)
		case CommandDragCancel:
			ctrl.CancelDrag()
		case CommandProgressClick:
			ctrl.Click(cmd.ClientX, cmd.Bar)
		case CommandToggleFullscreen:
			ctrl.ToggleFullscreen()
		default:
			return fmt.Errorf("%w: %q", ErrUnknownCommand, cmd.Type)
		}

		if s.metrics != nil {
			s.metrics.IncCommand(string(cmd.Type))
		}
		res = result(sess, false)
		return nil
	})
	return res, err
}

// Snapshot returns the current state without draining queued commands.
func (s *Service) Snapshot(id SessionID) (playback.Snapshot, error) {
	var snap playback.Snapshot
	err := s.repo.View(id, func(sess *Session) {
		snap = sess.Controller.Snapshot()
	})
	return snap, err
}

// Close tears the session down. Closing an unknown session returns
// ErrSessionNotFound.
func (s *Service) Close(id SessionID) error {
	sess, err := s.repo.Delete(id)
	if err != nil {
		return err
	}
	sess.Controller.Reset()
	sess.Media = nil
	s.updateActive()

	s.log.Info("session closed",
		slog.String("session_id", string(id)),
		slog.Duration("lifetime", time.Since(sess.CreatedAt)))
	return nil
}

// ActiveCount returns the number of open sessions.
func (s *Service) ActiveCount() int {
	return s.repo.ActiveSessionCount()
}

func (s *Service) updateActive() {
	if s.metrics != nil {
		s.metrics.SetActiveSessions(s.repo.ActiveSessionCount())
	}
}

// mountPlaylist applies playlist to the controller and keeps the remote media
// table in step: handles of removed sources are dropped, new sources get a
// fresh handle attached to the controller.
func mountPlaylist(sess *Session, playlist []playback.SourceName) {
	sess.Controller.SetPlaylist(playlist)

	keep := make(map[playback.SourceName]struct{}, len(playlist))
	for _, name := range playlist {
		keep[name] = struct{}{}
	}
	for name := range sess.Media {
		if _, ok := keep[name]; !ok {
			delete(sess.Media, name)
		}
	}
	for _, name := range playlist {
		if _, ok := sess.Media[name]; ok {
			continue
		}
		m := NewRemoteMedia(name, sess.Outbox)
		sess.Media[name] = m
		sess.Controller.Attach(name, m)
	}
}

func result(sess *Session, ignored bool) Result {
	return Result{
		ID:       sess.ID,
		Ignored:  ignored,
		State:    sess.Controller.Snapshot(),
		Commands: sess.Outbox.Drain(),
	}
}

func validatePlaylist(playlist []playback.SourceName) error {
	for i, name := range playlist {
		if name == "" {
			return fmt.Errorf("%w: empty source name at index %d", ErrInvalidPlaylist, i)
		}
	}
	return nil
}

func parseDirection(s string) (playback.Direction, error) {
	switch s {
	case "forward":
		return playback.Forward, nil
	case "backward":
		return playback.Backward, nil
	default:
		return 0, fmt.Errorf("%w: skip direction %q", ErrUnknownCommand, s)
	}
}
