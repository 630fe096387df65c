package session

import (
	"errors"
	"reflect"
	"testing"

	"syncplayer/internal/platform/metrics"
	"syncplayer/internal/playback"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	return NewService(NewInMemoryRepository(), playback.DefaultSettings(), nil, nil)
}

// readySession creates a session and reports can-play and duration for every
// source in durations, in the given order.
func readySession(t *testing.T, svc *Service, names []playback.SourceName, durations []float64) Result {
	t.Helper()
	res, err := svc.Create(names, true)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	gen := res.State.Generation
	for i, n := range names {
		if _, err := svc.HandleEvent(res.ID, Event{Generation: gen, Source: n, Type: EventCanPlay, ReadyState: 4}); err != nil {
			t.Fatalf("can_play %s: %v", n, err)
		}
		res, err = svc.HandleEvent(res.ID, Event{Generation: gen, Source: n, Type: EventDurationChange, Duration: durations[i]})
		if err != nil {
			t.Fatalf("duration_change %s: %v", n, err)
		}
	}
	if !res.State.Ready {
		t.Fatalf("session not ready after all sources reported: %+v", res.State)
	}
	return res
}

func TestService_Create(t *testing.T) {
	svc := newTestService(t)

	res, err := svc.Create([]playback.SourceName{"front", "side"}, false)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if res.ID == "" {
		t.Error("expected a session id")
	}
	if res.State.State != playback.StateLoading {
		t.Errorf("expected loading, got %s", res.State.State)
	}
	if len(res.State.Sources) != 2 {
		t.Errorf("expected 2 sources, got %d", len(res.State.Sources))
	}
	if res.Commands == nil || len(res.Commands) != 0 {
		t.Errorf("expected empty command list, got %v", res.Commands)
	}
	if svc.ActiveCount() != 1 {
		t.Errorf("expected 1 active session, got %d", svc.ActiveCount())
	}
}

func TestService_two_source_seek_commands(t *testing.T) {
	svc := newTestService(t)
	res := readySession(t, svc, []playback.SourceName{"a", "b"}, []float64{60, 90})
	if res.State.Primary != "b" {
		t.Fatalf("expected primary b, got %q", res.State.Primary)
	}

	play, err := svc.HandleCommand(res.ID, CommandRequest{Type: CommandPlay})
	if err != nil {
		t.Fatalf("play: %v", err)
	}
	wantPlay := []Command{
		{Source: "a", Op: OpPlay, Time: 0},
		{Source: "b", Op: OpPlay, Time: 0},
	}
	if !reflect.DeepEqual(play.Commands, wantPlay) {
		t.Errorf("play commands: got %v want %v", play.Commands, wantPlay)
	}

	seek, err := svc.HandleCommand(res.ID, CommandRequest{Type: CommandSeek, Time: 75})
	if err != nil {
		t.Fatalf("seek: %v", err)
	}
	wantSeek := []Command{
		{Source: "a", Op: OpSeek, Time: 60},
		{Source: "a", Op: OpPause, Time: 60},
		{Source: "b", Op: OpSeek, Time: 75},
		{Source: "b", Op: OpPlay, Time: 75},
	}
	if !reflect.DeepEqual(seek.Commands, wantSeek) {
		t.Errorf("seek commands: got %v want %v", seek.Commands, wantSeek)
	}
	if seek.State.CurrentTime != 75 || !seek.State.Playing {
		t.Errorf("unexpected state after seek: %+v", seek.State)
	}

	skip, err := svc.HandleCommand(res.ID, CommandRequest{Type: CommandSkip, Direction: "forward"})
	if err != nil {
		t.Fatalf("skip: %v", err)
	}
	if skip.State.State != playback.StateEnded || skip.State.Playing {
		t.Errorf("expected ended and not playing after skip to 90: %+v", skip.State)
	}
}

func TestService_premature_command_is_not_an_error(t *testing.T) {
	svc := newTestService(t)
	res, _ := svc.Create([]playback.SourceName{"a"}, true)

	out, err := svc.HandleCommand(res.ID, CommandRequest{Type: CommandPlay})
	if err != nil {
		t.Fatalf("premature play should not fail: %v", err)
	}
	if out.State.Playing || len(out.Commands) != 0 {
		t.Errorf("premature play must be dropped: %+v", out)
	}
}

func TestService_stale_events_are_ignored(t *testing.T) {
	svc := newTestService(t)
	res := readySession(t, svc, []playback.SourceName{"a", "b"}, []float64{60, 90})
	gen := res.State.Generation

	out, err := svc.HandleEvent(res.ID, Event{Generation: gen + 1, Source: "b", Type: EventTimeUpdate, CurrentTime: 30})
	if err != nil {
		t.Fatalf("HandleEvent: %v", err)
	}
	if !out.Ignored || out.State.CurrentTime != 0 {
		t.Errorf("wrong-generation event should be ignored: %+v", out)
	}

	out, _ = svc.HandleEvent(res.ID, Event{Generation: gen, Source: "ghost", Type: EventCanPlay, ReadyState: 4})
	if !out.Ignored {
		t.Error("event for unknown source should be ignored")
	}
}

func TestService_playlist_replacement(t *testing.T) {
	svc := newTestService(t)
	res := readySession(t, svc, []playback.SourceName{"a", "b"}, []float64{60, 90})
	oldGen := res.State.Generation

	out, err := svc.SetPlaylist(res.ID, []playback.SourceName{"a", "c"})
	if err != nil {
		t.Fatalf("SetPlaylist: %v", err)
	}
	newGen := out.State.Generation
	if newGen == oldGen {
		t.Fatal("expected a new generation")
	}
	if out.State.State != playback.StateLoading {
		t.Errorf("expected loading after replacement, got %s", out.State.State)
	}

	stale, _ := svc.HandleEvent(res.ID, Event{Generation: oldGen, Source: "b", Type: EventPlaying})
	if !stale.Ignored {
		t.Error("event from removed source should be ignored")
	}

	_, _ = svc.HandleEvent(res.ID, Event{Generation: newGen, Source: "c", Type: EventCanPlay, ReadyState: 4})
	ready, _ := svc.HandleEvent(res.ID, Event{Generation: newGen, Source: "c", Type: EventDurationChange, Duration: 30})
	if !ready.State.Ready {
		t.Errorf("retained source a should not need to report again: %+v", ready.State)
	}
	if ready.State.Primary != "a" {
		t.Errorf("expected primary a (60s), got %q", ready.State.Primary)
	}
}

func TestService_same_playlist_keeps_generation(t *testing.T) {
	svc := newTestService(t)
	res := readySession(t, svc, []playback.SourceName{"a", "b"}, []float64{60, 90})

	out, err := svc.SetPlaylist(res.ID, []playback.SourceName{"b", "a"})
	if err != nil {
		t.Fatalf("SetPlaylist: %v", err)
	}
	if out.State.Generation != res.State.Generation || !out.State.Ready {
		t.Errorf("same playlist must not reset: %+v", out.State)
	}
}

func TestService_drag_queues_pointer_capture(t *testing.T) {
	svc := newTestService(t)
	res := readySession(t, svc, []playback.SourceName{"a"}, []float64{100})

	start, _ := svc.HandleCommand(res.ID, CommandRequest{Type: CommandDragStart})
	if !hasOp(start.Commands, OpCapturePointer) {
		t.Errorf("drag_start should capture the pointer: %v", start.Commands)
	}

	move, _ := svc.HandleCommand(res.ID, CommandRequest{Type: CommandDragMove, ClientX: 50, Bar: playback.BarLayout{Left: 0, Width: 200}})
	if len(move.Commands) != 0 {
		t.Errorf("drag_move must not command media: %v", move.Commands)
	}
	if move.State.CurrentTime != 25 {
		t.Errorf("expected preview at 25s, got %v", move.State.CurrentTime)
	}

	end, _ := svc.HandleCommand(res.ID, CommandRequest{Type: CommandDragEnd, ClientX: 100, Bar: playback.BarLayout{Left: 0, Width: 200}})
	want := []Command{
		{Source: "a", Op: OpSeek, Time: 50},
		{Source: "a", Op: OpPlay, Time: 50},
		{Op: OpReleasePointer},
	}
	if !reflect.DeepEqual(end.Commands, want) {
		t.Errorf("drag_end commands: got %v want %v", end.Commands, want)
	}
}

func TestService_fullscreen(t *testing.T) {
	svc := newTestService(t)

	supported := readySession(t, svc, []playback.SourceName{"a"}, []float64{10})
	out, _ := svc.HandleCommand(supported.ID, CommandRequest{Type: CommandToggleFullscreen})
	if !out.State.Fullscreen || !hasOp(out.Commands, OpRequestFullscreen) {
		t.Errorf("expected fullscreen request: %+v", out)
	}

	res, _ := svc.Create([]playback.SourceName{"a"}, false)
	_, _ = svc.HandleEvent(res.ID, Event{Generation: res.State.Generation, Source: "a", Type: EventCanPlay, ReadyState: 4})
	out, _ = svc.HandleCommand(res.ID, CommandRequest{Type: CommandToggleFullscreen})
	if out.State.Fullscreen || len(out.Commands) != 0 {
		t.Errorf("unsupported fullscreen should be a silent no-op: %+v", out)
	}
}

func TestService_unknown_event_and_command(t *testing.T) {
	svc := newTestService(t)
	res, _ := svc.Create([]playback.SourceName{"a"}, false)

	_, err := svc.HandleEvent(res.ID, Event{Generation: res.State.Generation, Source: "a", Type: "seeked"})
	if !errors.Is(err, ErrUnknownEvent) {
		t.Errorf("expected ErrUnknownEvent, got %v", err)
	}
	_, err = svc.HandleCommand(res.ID, CommandRequest{Type: "rewind"})
	if !errors.Is(err, ErrUnknownCommand) {
		t.Errorf("expected ErrUnknownCommand, got %v", err)
	}
	_, err = svc.HandleCommand(res.ID, CommandRequest{Type: CommandSkip, Direction: "sideways"})
	if !errors.Is(err, ErrUnknownCommand) {
		t.Errorf("expected ErrUnknownCommand for bad direction, got %v", err)
	}
}

func TestService_empty_source_name_is_rejected(t *testing.T) {
	svc := newTestService(t)

	if _, err := svc.Create([]playback.SourceName{"a", ""}, false); !errors.Is(err, ErrInvalidPlaylist) {
		t.Errorf("Create: expected ErrInvalidPlaylist, got %v", err)
	}
	if svc.ActiveCount() != 0 {
		t.Errorf("rejected playlist must not open a session, got %d", svc.ActiveCount())
	}

	res, _ := svc.Create([]playback.SourceName{"a"}, false)
	if _, err := svc.SetPlaylist(res.ID, []playback.SourceName{""}); !errors.Is(err, ErrInvalidPlaylist) {
		t.Errorf("SetPlaylist: expected ErrInvalidPlaylist, got %v", err)
	}
	snap, _ := svc.Snapshot(res.ID)
	if snap.Generation != res.State.Generation {
		t.Error("rejected playlist must not reset the session")
	}
}

func TestService_unknown_event_with_old_generation(t *testing.T) {
	svc := newTestService(t)
	res, _ := svc.Create([]playback.SourceName{"a"}, false)

	_, err := svc.HandleEvent(res.ID, Event{Generation: res.State.Generation + 1, Source: "a", Type: "seeked"})
	if !errors.Is(err, ErrUnknownEvent) {
		t.Errorf("expected ErrUnknownEvent before the stale check, got %v", err)
	}
}

func TestService_Close(t *testing.T) {
	svc := NewService(NewInMemoryRepository(), playback.DefaultSettings(), nil, metrics.New())
	res := readySession(t, svc, []playback.SourceName{"a"}, []float64{10})
	_, _ = svc.HandleCommand(res.ID, CommandRequest{Type: CommandDragStart})

	if err := svc.Close(res.ID); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := svc.Snapshot(res.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound after close, got %v", err)
	}
	if err := svc.Close(res.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("second close: expected ErrSessionNotFound, got %v", err)
	}
	if svc.ActiveCount() != 0 {
		t.Errorf("expected 0 active sessions, got %d", svc.ActiveCount())
	}
}

func TestService_unknown_session(t *testing.T) {
	svc := newTestService(t)
	if _, err := svc.HandleEvent("missing", Event{Type: EventCanPlay}); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound, got %v", err)
	}
	if _, err := svc.HandleCommand("missing", CommandRequest{Type: CommandPlay}); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound, got %v", err)
	}
}

func hasOp(cmds []Command, op Op) bool {
	for _, c := range cmds {
		if c.Op == op {
			return true
		}
	}
	return false
}
