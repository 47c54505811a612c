package ics

import (
	"sort"
	"time"

	"github.com/teambition/rrule-go"

	appLog "classclock/internal/log"
	"classclock/internal/schedule"
	"classclock/internal/source"
)

// projectionHorizonDays bounds how far forward occurrences are expanded.
const projectionHorizonDays = 56

// Occurrence is one concrete future instance of a weekly event.
type Occurrence struct {
	Name  string    `json:"name"`
	Start time.Time `json:"start"`
}

// ProjectUpcoming expands every weekly event forward from now and returns
// the next count occurrences across the whole schedule, soonest first.
// Each event is treated as a WEEKLY recurrence anchored at its resolved
// time within the current week.
func ProjectUpcoming(state *schedule.State, now time.Time, count int) ([]Occurrence, error) {
	if state == nil || state.Doc == nil {
		return nil, schedule.ErrNoSchedule
	}
	if count <= 0 {
		count = 10
	}

	weekStart := source.WeekStart(now)
	horizon := now.AddDate(0, 0, projectionHorizonDays)

	occurrences := make([]Occurrence, 0, count)

	for offset := 0; offset < 7; offset++ {
		at := weekStart.AddDate(0, 0, offset)
		dayName := at.Weekday().String()

		for _, ev := range schedule.ResolveDay(state.Doc, dayName, at) {
			r, err := rrule.NewRRule(rrule.ROption{
				Freq:    rrule.WEEKLY,
				Dtstart: ev.Date,
			})
			if err != nil {
				appLog.Error("ics: rrule build failed", err, "event", ev.Name)
				continue
			}
			for _, start := range r.Between(now, horizon, false) {
				occurrences = append(occurrences, Occurrence{
					Name:  ev.Name,
					Start: start,
				})
			}
		}
	}

	sort.Slice(occurrences, func(a, b int) bool {
		return occurrences[a].Start.Before(occurrences[b].Start)
	})
	if len(occurrences) > count {
		occurrences = occurrences[:count]
	}

	return occurrences, nil
}
