// Package subtimer selects and renders the secondary countdown shown below
// the primary one: lab-block remainders, lunch-to-lab projections, pre-check
// windows, and the special-event override.
package subtimer

import (
	"strings"
	"time"

	"classclock/internal/countdown"
	"classclock/internal/schedule"
)

// Kind identifies which sub-timer rule selected the display.
type Kind int

const (
	None Kind = iota
	SpecialEvent
	LabAfterMain
	LunchThenLab
	LabBeforeMain
	BeforeCheck
)

// Display is the rendered secondary countdown. Countdown and SubLabel are
// both empty for None — and also for a LunchThenLab selection on a day
// without a lunch qualifier, which still consumes the rule slot.
type Display struct {
	Kind      Kind
	Countdown string
	SubLabel  string
}

// lunchQualifiers maps weekdays to the block that eats late on that day.
var lunchQualifiers = map[time.Weekday]string{
	time.Tuesday:   "G2",
	time.Wednesday: "E3",
	time.Thursday:  "F4",
}

// checkOffset is one entry of the pre-check projection table: labels
// containing Substr get the fixed Offset added to the remaining time to
// reach the later "Check" checkpoint.
type checkOffset struct {
	Substr string
	Offset time.Duration
}

// checkOffsets is consulted in order; the first match wins. A label that
// triggered the rule without matching any entry falls through to the final
// "of I" offset.
var checkOffsets = []checkOffset{
	{"before H", 3*time.Hour + 45*time.Minute},
	{"of H", 2*time.Hour + 5*time.Minute},
	{"of Transition (H", 1*time.Hour + 55*time.Minute},
}

const defaultCheckOffset = 15 * time.Minute

// checkTriggers are the substrings that activate the pre-check rule at all.
var checkTriggers = []string{"before H", "of H", "Transition (H", "of I"}

// Evaluate is a total function from the next event and the current instant
// to the secondary display. Selection order (first match wins):
//
//  1. SpecialEvent — metadata sub-timer enabled and the configured
//     timestamp still ahead; counts down to that fixed timestamp
//     regardless of the next event.
//  2. LabAfterMain — the next event ends a "... Lab" block and at least
//     (labBlock − regBlock) minutes remain; counts down the shared main
//     block's end (remaining minus the lab-only tail).
//  3. LunchThenLab — the next event is a Lunch boundary in non-override
//     mode; projects forward into the following lab block.
//  4. LabBeforeMain — a lab taken before its paired main block with at
//     least regBlock minutes remaining; remaining minus regBlock.
//  5. BeforeCheck — label matches the fixed check-trigger table; remaining
//     plus the matched offset.
//  6. None.
//
// All countdowns reuse the primary formatter's tiering.
func Evaluate(next schedule.ResolvedEvent, now time.Time, state *schedule.State, compact bool) Display {
	meta := state.Meta()

	// Component arithmetic below mirrors the display: whole seconds only.
	remaining := next.Date.Sub(now).Truncate(time.Second)

	reg := time.Duration(meta.RegBlockMinutes()) * time.Minute
	lab := time.Duration(meta.LabBlockMinutes()) * time.Minute
	gap := lab - reg

	// 1. Special event overrides everything else.
	if meta.SpecialSubTimerEnabled() {
		if at := meta.SpecialEventTime(); !at.IsZero() && !at.Before(now) {
			return Display{
				Kind:      SpecialEvent,
				Countdown: countdown.Format(at.Sub(now), compact),
				SubLabel:  "Left before " + meta.SpecialEventDescription(),
			}
		}
	}

	// Gating compares whole minutes, matching the displayed components.
	wholeMinutes := remaining / time.Minute * time.Minute

	// 2. Lab block after the shared main block.
	if wholeMinutes >= gap && next.Label.LabAfterMain {
		return Display{
			Kind:      LabAfterMain,
			Countdown: countdown.Format(remaining-gap, compact),
			SubLabel:  "Left of " + next.Label.Block + " only",
		}
	}

	// 3. Lunch countdown projecting into the after-lunch lab.
	if strings.Contains(next.Name, "Lunch") && !state.Override {
		q, ok := lunchQualifiers[now.Weekday()]
		if !ok {
			// The rule still wins selection; there is just nothing to show.
			return Display{Kind: LunchThenLab}
		}
		return Display{
			Kind:      LunchThenLab,
			Countdown: countdown.Format(remaining+gap, compact),
			SubLabel:  "Left of Lunch for " + q + " only",
		}
	}

	// 4. Lab block before its paired main block (afternoon slot).
	if wholeMinutes >= reg && next.Label.LabBeforeMain {
		return Display{
			Kind:      LabBeforeMain,
			Countdown: countdown.Format(remaining-reg, compact),
			SubLabel:  "Left of Lunch for " + next.Label.Block + " only",
		}
	}

	// 5. Countdown to the later Check checkpoint.
	if containsAny(next.Name, checkTriggers) {
		offset := defaultCheckOffset
		for _, co := range checkOffsets {
			if strings.Contains(next.Name, co.Substr) {
				offset = co.Offset
				break
			}
		}
		return Display{
			Kind:      BeforeCheck,
			Countdown: countdown.Format(remaining+offset, compact),
			SubLabel:  "Left before Check",
		}
	}

	return Display{Kind: None}
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
