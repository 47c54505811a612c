// Package ics renders the resolved weekly schedule as an iCalendar feed
// and projects upcoming occurrences of the recurring week.
package ics

import (
	"fmt"
	"time"

	ical "github.com/arran4/golang-ical"

	"classclock/internal/schedule"
	"classclock/internal/source"
)

// WeekCalendar builds a VCALENDAR for the week containing now.
//
// Each resolved event becomes a VEVENT whose DTEND is the following event
// on the same day (the entries mark block boundaries); the last entry of a
// day gets the regular block length. Events of the normal (non-override)
// schedule carry a weekly recurrence so subscribers see the pattern roll
// forward; a week-dated override is emitted as single instances.
func WeekCalendar(state *schedule.State, now time.Time) (*ical.Calendar, error) {
	if state == nil || state.Doc == nil {
		return nil, schedule.ErrNoSchedule
	}

	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId("-//classclock//schedule//EN")

	reg := time.Duration(state.Meta().RegBlockMinutes()) * time.Minute
	weekStart := source.WeekStart(now)

	for offset := 0; offset < 7; offset++ {
		at := weekStart.AddDate(0, 0, offset)
		dayName := at.Weekday().String()

		events := schedule.ResolveDay(state.Doc, dayName, at)
		for i, ev := range events {
			uid := fmt.Sprintf("%s-%02d@classclock", at.Format("20060102"), i)

			ve := cal.AddEvent(uid)
			ve.SetDtStampTime(now)
			ve.SetStartAt(ev.Date)
			ve.SetSummary(ev.Name)

			if i+1 < len(events) {
				ve.SetEndAt(events[i+1].Date)
			} else {
				ve.SetEndAt(ev.Date.Add(reg))
			}

			if !state.Override {
				ve.AddRrule("FREQ=WEEKLY")
			}
		}
	}

	return cal, nil
}
