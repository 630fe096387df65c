package playback

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeMedia struct {
	duration   float64
	current    float64
	paused     bool
	readyState int
	buffered   float64

	plays  int
	pauses int
	seeks  int
}

func newFakeMedia() *fakeMedia {
	return &fakeMedia{paused: true}
}

func (f *fakeMedia) Duration() float64        { return f.duration }
func (f *fakeMedia) CurrentTime() float64     { return f.current }
func (f *fakeMedia) SetCurrentTime(t float64) { f.current = t; f.seeks++ }
func (f *fakeMedia) Paused() bool             { return f.paused }
func (f *fakeMedia) Ended() bool              { return f.duration > 0 && f.current >= f.duration }
func (f *fakeMedia) ReadyState() int          { return f.readyState }
func (f *fakeMedia) BufferedEnd() (float64, bool) {
	return f.buffered, f.buffered > 0
}
func (f *fakeMedia) Play()  { f.paused = false; f.plays++ }
func (f *fakeMedia) Pause() { f.paused = true; f.pauses++ }

type fakeRecorder struct {
	ignored    map[string]int
	divergence int
}

func newFakeRecorder() *fakeRecorder {
	return &fakeRecorder{ignored: make(map[string]int)}
}

func (r *fakeRecorder) IncIgnored(reason string) { r.ignored[reason]++ }
func (r *fakeRecorder) IncDivergence()           { r.divergence++ }

type fakePointer struct {
	captures int
	releases int
}

func (p *fakePointer) Capture() func() {
	p.captures++
	released := false
	return func() {
		if released {
			return
		}
		released = true
		p.releases++
	}
}

type fakeFullscreen struct {
	err      error
	requests int
	exits    int
}

func (f *fakeFullscreen) Request() error {
	if f.err != nil {
		return f.err
	}
	f.requests++
	return nil
}

func (f *fakeFullscreen) Exit() error {
	if f.err != nil {
		return f.err
	}
	f.exits++
	return nil
}

// readyController mounts one fake per entry, reports can-play and duration
// for each, and asserts the session became ready.
func readyController(t *testing.T, cfg Config, durations map[SourceName]float64) (*Controller, map[SourceName]*fakeMedia) {
	t.Helper()

	names := make([]SourceName, 0, len(durations))
	for n := range durations {
		names = append(names, n)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })

	c := New(cfg)
	c.SetPlaylist(names)

	media := make(map[SourceName]*fakeMedia, len(names))
	for _, n := range names {
		m := newFakeMedia()
		media[n] = m
		require.True(t, c.Attach(n, m))
	}
	for _, n := range names {
		media[n].readyState = 4
		media[n].duration = durations[n]
		c.OnCanPlay(n, 4)
		c.OnDurationChange(n, durations[n])
	}

	require.True(t, c.Ready(), "controller should be ready after all sources reported")
	return c, media
}
