package schedule

import (
	"errors"
	"time"
)

var (
	// ErrNoSchedule is returned when no document is loaded (both load
	// tiers failed); callers degrade to an empty display.
	ErrNoSchedule = errors.New("schedule: no schedule loaded")

	// ErrNoUpcomingEvent is returned when no future event exists within
	// the next seven days.
	ErrNoUpcomingEvent = errors.New("schedule: no upcoming event")
)

// maxLookaheadDays bounds the exhausted-day roll-forward to one full week.
const maxLookaheadDays = 7

// NextEvent returns the next upcoming event at now.
//
// Today's list is resolved against now and scanned for the first event
// strictly after now. When today's list is exhausted (or empty) the scan
// rolls forward day by day, resolving each day against its own date, so a
// late-evening query naturally lands on tomorrow's first event with a
// correct future timestamp. ErrNoUpcomingEvent is returned when a full
// week yields nothing.
func NextEvent(state *State, now time.Time) (ResolvedEvent, error) {
	if state == nil || state.Doc == nil {
		return ResolvedEvent{}, ErrNoSchedule
	}

	for offset := 0; offset < maxLookaheadDays; offset++ {
		at := now.AddDate(0, 0, offset)
		dayName := at.Weekday().String()
		for _, ev := range ResolveDay(state.Doc, dayName, at) {
			if ev.Date.After(now) {
				return ev, nil
			}
		}
	}

	return ResolvedEvent{}, ErrNoUpcomingEvent
}

// Banner projects the banner text for now. In override mode a day-specific
// banner annotation wins over the document-level one, both rendered as
// "Day (text)"; without either, and always in non-override mode, the bare
// day name is shown. This is a read-only projection of schedule state.
func Banner(state *State, now time.Time) string {
	dayName := now.Weekday().String()
	if state == nil || state.Doc == nil || !state.Override {
		return dayName
	}

	if ds, ok := state.Doc.Days[dayName]; ok && ds.BannerText != "" {
		return dayName + " (" + ds.BannerText + ")"
	}
	if b := state.Doc.Metadata.BannerText; b != "" {
		return dayName + " (" + b + ")"
	}
	return dayName
}
