package schedule

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	appLog "classclock/internal/log"
)

// ResolvedEvent is a RawEvent bound to a concrete timestamp and a parsed
// label.
type ResolvedEvent struct {
	Date  time.Time
	Name  string
	Label Label
}

// ResolveDay resolves a single day's authored events against at's
// year/month/day. Malformed events are skipped; the rest survive.
//
// The same document serves every day of the week by re-deriving concrete
// dates relative to "today" rather than storing absolute dates, so callers
// re-resolve whenever "today" may have changed — in practice on every
// next-event query.
func ResolveDay(doc *Document, dayName string, at time.Time) []ResolvedEvent {
	ds, ok := doc.Days[dayName]
	if !ok {
		return nil
	}
	return resolveEvents(ds.Events, at)
}

func resolveEvents(events []RawEvent, at time.Time) []ResolvedEvent {
	out := make([]ResolvedEvent, 0, len(events))

	for _, ev := range events {
		hour, min, dayOffset, err := parseEventTime(ev.Time)
		if err != nil {
			// Skip this single event, keep the rest of the day.
			appLog.Error("schedule: malformed event time", err, "time", ev.Time, "event", ev.Event)
			continue
		}
		date := time.Date(at.Year(), at.Month(), at.Day()+dayOffset, hour, min, 0, 0, at.Location())
		out = append(out, ResolvedEvent{
			Date:  date,
			Name:  ev.Event,
			Label: ParseLabel(ev.Event),
		})
	}

	// Authored order is supposed to be chronological; enforce it rather
	// than trust it.
	sort.SliceStable(out, func(a, b int) bool {
		return out[a].Date.Before(out[b].Date)
	})

	return out
}

// parseEventTime parses "HH:MM" with an optional "+1" next-day suffix.
func parseEventTime(s string) (hour, min, dayOffset int, err error) {
	t := s
	if strings.HasSuffix(t, "+1") {
		dayOffset = 1
		t = strings.TrimSuffix(t, "+1")
	}

	parts := strings.Split(t, ":")
	if len(parts) != 2 {
		return 0, 0, 0, fmt.Errorf("time %q is not HH:MM", s)
	}

	hour, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, 0, fmt.Errorf("time %q: bad hour: %w", s, err)
	}
	min, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, 0, fmt.Errorf("time %q: bad minute: %w", s, err)
	}
	if hour < 0 || hour > 23 || min < 0 || min > 59 {
		return 0, 0, 0, errors.New("time " + strconv.Quote(s) + " is out of range")
	}

	return hour, min, dayOffset, nil
}
