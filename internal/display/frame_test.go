package display

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"classclock/internal/schedule"
)

// 2026-08-31 is a Monday.
func monday(hour, min int) time.Time {
	return time.Date(2026, time.August, 31, hour, min, 0, 0, time.UTC)
}

func stateFrom(t *testing.T, body string) *schedule.State {
	t.Helper()
	doc, err := schedule.ParseDocument([]byte(body))
	require.NoError(t, err)
	return &schedule.State{Doc: doc}
}

func TestCompute_BasicScenario(t *testing.T) {
	state := stateFrom(t, `{"Monday": [{"time": "08:00", "event": "A1"}], "metadata": {}}`)

	frame, err := Compute(state, monday(7, 0), false)
	require.NoError(t, err)

	assert.Equal(t, "1:00:00", frame.PrimaryText)
	assert.Equal(t, "Left A1", frame.PrimarySubLabel)
	assert.Equal(t, "1:00:00", frame.TitleText)
	assert.Equal(t, "Monday", frame.BannerText)
	assert.True(t, frame.ShowTimeline)
	assert.Empty(t, frame.SecondaryText)
}

func TestCompute_TitlePrefixes(t *testing.T) {
	state := stateFrom(t, `{"Monday": [{"time": "08:00", "event": "End of Transition (A)"}]}`)
	frame, err := Compute(state, monday(7, 55), false)
	require.NoError(t, err)
	assert.Equal(t, "Transition: 05:00", frame.TitleText)

	state = stateFrom(t, `{"Monday": [{"time": "08:00", "event": "End of Check"}]}`)
	frame, err = Compute(state, monday(7, 55), false)
	require.NoError(t, err)
	assert.Equal(t, "Check: 05:00", frame.TitleText)
}

func TestCompute_DegradedWithoutSchedule(t *testing.T) {
	frame, err := Compute(nil, monday(7, 0), false)
	assert.ErrorIs(t, err, schedule.ErrNoSchedule)

	// The frame is still renderable: banner only, everything else empty.
	assert.Equal(t, "Monday", frame.BannerText)
	assert.Empty(t, frame.PrimaryText)
	assert.Empty(t, frame.SecondaryText)
	assert.Empty(t, frame.TitleText)
}

func TestCompute_SecondaryFromEngine(t *testing.T) {
	state := stateFrom(t, `{"Monday": [{"time": "08:45", "event": "of A2 Lab"}]}`)

	frame, err := Compute(state, monday(8, 0), false)
	require.NoError(t, err)
	assert.Equal(t, "05:00", frame.SecondaryText)
	assert.Equal(t, "Left of A2 only", frame.SecondarySubLabel)
}

type recordingSink struct {
	frames []Frame
	titles []string
}

func (r *recordingSink) Render(f Frame)    { r.frames = append(r.frames, f) }
func (r *recordingSink) SetTitle(s string) { r.titles = append(r.titles, s) }

type fixedStates struct{ state *schedule.State }

func (f *fixedStates) Current() *schedule.State { return f.state }

func TestTicker_DedupesTitleWrites(t *testing.T) {
	state := stateFrom(t, `{"Monday": [{"time": "08:00", "event": "A1"}]}`)
	sink := &recordingSink{}
	ticker := NewTicker(&fixedStates{state}, sink, NewPrefs(false), time.Second)

	now := monday(7, 0)
	ticker.Tick(now)                             // 1:00:00
	ticker.Tick(now.Add(300 * time.Millisecond)) // 59:59
	ticker.Tick(now.Add(time.Second))            // still 59:59

	// Every tick renders, but the title only changes twice.
	assert.Len(t, sink.frames, 3)
	require.Len(t, sink.titles, 2)
	assert.Equal(t, "1:00:00", sink.titles[0])
	assert.Equal(t, "59:59", sink.titles[1])
}

func TestTicker_SurvivesDegradedState(t *testing.T) {
	sink := &recordingSink{}
	ticker := NewTicker(&fixedStates{nil}, sink, NewPrefs(false), time.Second)

	frame := ticker.Tick(monday(7, 0))
	assert.Empty(t, frame.PrimaryText)
	assert.Len(t, sink.frames, 1)
}

func TestHolder_KeepsLatestFrame(t *testing.T) {
	h := &Holder{}
	h.Render(Frame{PrimaryText: "1:00:00"})
	h.Render(Frame{PrimaryText: "59:59"})
	assert.Equal(t, "59:59", h.Latest().PrimaryText)
}
