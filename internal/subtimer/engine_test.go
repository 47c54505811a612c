package subtimer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"classclock/internal/schedule"
)

// 2026-09-02 is a Wednesday.
func wednesday(hour, min int) time.Time {
	return time.Date(2026, time.September, 2, hour, min, 0, 0, time.UTC)
}

func eventAt(at time.Time, name string) schedule.ResolvedEvent {
	return schedule.ResolvedEvent{Date: at, Name: name, Label: schedule.ParseLabel(name)}
}

func plainState() *schedule.State {
	return &schedule.State{Doc: &schedule.Document{}}
}

func TestEvaluate_None(t *testing.T) {
	now := wednesday(10, 0)
	d := Evaluate(eventAt(wednesday(10, 30), "of C3"), now, plainState(), false)
	assert.Equal(t, None, d.Kind)
	assert.Empty(t, d.Countdown)
	assert.Empty(t, d.SubLabel)
}

func TestEvaluate_LabAfterMain(t *testing.T) {
	now := wednesday(10, 0)
	// 45 minutes remain, gap = 90-50 = 40: lab remainder fires.
	d := Evaluate(eventAt(wednesday(10, 45), "of A2 Lab"), now, plainState(), false)

	require.Equal(t, LabAfterMain, d.Kind)
	assert.Equal(t, "05:00", d.Countdown) // 45m - 40m
	assert.Equal(t, "Left of A2 only", d.SubLabel)
}

func TestEvaluate_LabAfterMain_BelowGapInactive(t *testing.T) {
	now := wednesday(10, 0)
	// 39 minutes remain, below the 40-minute gap.
	d := Evaluate(eventAt(wednesday(10, 39), "of A2 Lab"), now, plainState(), false)
	assert.Equal(t, None, d.Kind)
}

func TestEvaluate_LabAfterMain_CustomBlocks(t *testing.T) {
	reg, lab := 40, 70
	state := plainState()
	state.Doc.Metadata = schedule.Metadata{RegBlock: &reg, LabBlock: &lab}

	now := wednesday(10, 0)
	d := Evaluate(eventAt(wednesday(10, 45), "of A2 Lab"), now, state, false)

	require.Equal(t, LabAfterMain, d.Kind)
	assert.Equal(t, "15:00", d.Countdown) // 45m - (70-40)m
}

func TestEvaluate_LunchThenLab_Qualifiers(t *testing.T) {
	// Wednesday maps to E3.
	now := wednesday(11, 50)
	d := Evaluate(eventAt(wednesday(12, 20), "Lunch"), now, plainState(), false)

	require.Equal(t, LunchThenLab, d.Kind)
	assert.Equal(t, "1:10:00", d.Countdown) // 30m remaining + 40m gap
	assert.Equal(t, "Left of Lunch for E3 only", d.SubLabel)
}

func TestEvaluate_LunchThenLab_UnmappedDayShowsNothing(t *testing.T) {
	// 2026-09-05 is a Saturday: the rule still wins selection but has no
	// qualifier, so the display is empty.
	now := time.Date(2026, time.September, 5, 11, 50, 0, 0, time.UTC)
	next := eventAt(now.Add(30*time.Minute), "Lunch")

	d := Evaluate(next, now, plainState(), false)
	require.Equal(t, LunchThenLab, d.Kind)
	assert.Empty(t, d.Countdown)
	assert.Empty(t, d.SubLabel)
}

func TestEvaluate_LunchThenLab_SuppressedInOverrideMode(t *testing.T) {
	state := plainState()
	state.Override = true

	now := wednesday(11, 50)
	d := Evaluate(eventAt(wednesday(12, 20), "Lunch"), now, state, false)
	assert.Equal(t, None, d.Kind)
}

func TestEvaluate_LabBeforeMain(t *testing.T) {
	now := wednesday(12, 30)
	// Label spells "Lab" at offsets 6-9 without the trailing-"Lab" form.
	next := eventAt(wednesday(13, 25), "of B3 Lab end")

	d := Evaluate(next, now, plainState(), false)
	require.Equal(t, LabBeforeMain, d.Kind)
	assert.Equal(t, "05:00", d.Countdown) // 55m - 50m regBlock
	assert.Equal(t, "Left of Lunch for B3 only", d.SubLabel)
}

func TestEvaluate_LabBeforeMain_BelowRegInactive(t *testing.T) {
	now := wednesday(12, 30)
	next := eventAt(wednesday(13, 10), "of B3 Lab end") // 40m < 50m
	d := Evaluate(next, now, plainState(), false)
	assert.Equal(t, None, d.Kind)
}

func TestEvaluate_BeforeCheckOffsets(t *testing.T) {
	now := wednesday(9, 0)
	next := func(name string) schedule.ResolvedEvent {
		return eventAt(wednesday(9, 10), name) // 10 minutes remain
	}

	for _, tc := range []struct {
		label string
		want  string
	}{
		{"Start before H1", "3:55:00"},          // +3h45m
		{"End of H2", "2:15:00"},                // +2h5m
		{"End of Transition (H3)", "2:05:00"},   // +1h55m
		{"End of I1", "25:00"},                  // +15m
	} {
		d := Evaluate(next(tc.label), now, plainState(), false)
		require.Equal(t, BeforeCheck, d.Kind, tc.label)
		assert.Equal(t, tc.want, d.Countdown, tc.label)
		assert.Equal(t, "Left before Check", d.SubLabel, tc.label)
	}
}

func TestEvaluate_SpecialEventOverridesEverything(t *testing.T) {
	now := wednesday(10, 0)

	enabled := true
	state := plainState()
	state.Doc.Metadata = schedule.Metadata{
		SpecialSubTimer: &enabled,
		SpecialEvent: &schedule.SpecialEvent{
			Date:        "2026-09-02T12:00:00Z",
			Description: "Pep Rally",
		},
	}

	// The next event would match LabAfterMain, but the special event wins.
	d := Evaluate(eventAt(wednesday(10, 45), "of A2 Lab"), now, state, false)

	require.Equal(t, SpecialEvent, d.Kind)
	assert.Equal(t, "2:00:00", d.Countdown)
	assert.Equal(t, "Left before Pep Rally", d.SubLabel)
}

func TestEvaluate_SpecialEventExpired(t *testing.T) {
	enabled := true
	state := plainState()
	state.Doc.Metadata = schedule.Metadata{
		SpecialSubTimer: &enabled,
		SpecialEvent:    &schedule.SpecialEvent{Date: "2026-09-01T12:00:00Z"},
	}

	now := wednesday(10, 0)
	d := Evaluate(eventAt(wednesday(10, 45), "of A2 Lab"), now, state, false)

	// Past timestamp: the rule is inactive and selection falls through.
	assert.Equal(t, LabAfterMain, d.Kind)
}

func TestEvaluate_SelectionOrderIsDeterministic(t *testing.T) {
	now := wednesday(10, 0)
	// "of A2 Lab" matches both the after-main (trailing "Lab") and the
	// before-main (offsets 6-9) forms; the higher-priority rule wins.
	d := Evaluate(eventAt(wednesday(11, 0), "of A2 Lab"), now, plainState(), false)
	assert.Equal(t, LabAfterMain, d.Kind)
}

func TestEvaluate_CompactFlagReachesFormatter(t *testing.T) {
	now := wednesday(10, 0)
	d := Evaluate(eventAt(wednesday(11, 0), "of A2 Lab"), now, plainState(), true)

	require.Equal(t, LabAfterMain, d.Kind)
	assert.Equal(t, "0:20", d.Countdown) // 60m - 40m, compact form
}
