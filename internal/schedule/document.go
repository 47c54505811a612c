package schedule

import (
	"encoding/json"
	"errors"
	"time"

	appLog "classclock/internal/log"
)

// metadataKey is the one top-level key that is not a weekday.
const metadataKey = "metadata"

// RawEvent is a single authored schedule entry. Time is "HH:MM" or
// "HH:MM+1"; the +1 suffix places the event on the calendar day after the
// day key it is listed under (for schedules spanning midnight).
type RawEvent struct {
	Time  string `json:"time"`
	Event string `json:"event"`
}

// DaySchedule is one day's authored event list. The document may express a
// day either as a bare array of events or as an object carrying the events
// plus a day-specific banner text.
type DaySchedule struct {
	Events     []RawEvent
	BannerText string
}

// UnmarshalJSON accepts both day shapes:
//
//	"Monday": [ {...}, {...} ]
//	"Monday": { "events": [ {...} ], "bannerText": "Late Start" }
func (d *DaySchedule) UnmarshalJSON(data []byte) error {
	var events []RawEvent
	if err := json.Unmarshal(data, &events); err == nil {
		d.Events = events
		d.BannerText = ""
		return nil
	}

	var obj struct {
		Events     []RawEvent `json:"events"`
		BannerText string     `json:"bannerText"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	d.Events = obj.Events
	d.BannerText = obj.BannerText
	return nil
}

// SpecialEvent is an optional fixed-timestamp event configured in metadata,
// displayed as a secondary countdown overriding all other sub-timer rules.
type SpecialEvent struct {
	Date        string `json:"date"`
	Description string `json:"description"`
}

// Metadata holds document-level settings. All fields are optional; pointer
// fields distinguish "absent" from an explicit zero value, and the accessor
// methods below apply the fixed defaults. Presence always overrides the
// default, never merges partially.
type Metadata struct {
	ShowTimeline    *bool         `json:"showTimeline,omitempty"`
	SpecialSubTimer *bool         `json:"specialSubTimer,omitempty"`
	RegBlock        *int          `json:"regBlock,omitempty"`
	LabBlock        *int          `json:"labBlock,omitempty"`
	SpecialEvent    *SpecialEvent `json:"specialEvent,omitempty"`
	BannerText      string        `json:"bannerText,omitempty"`
}

// RegBlockMinutes returns the standard block length in minutes (default 50).
func (m Metadata) RegBlockMinutes() int {
	if m.RegBlock != nil {
		return *m.RegBlock
	}
	return 50
}

// LabBlockMinutes returns the extended lab block length in minutes
// (default 90).
func (m Metadata) LabBlockMinutes() int {
	if m.LabBlock != nil {
		return *m.LabBlock
	}
	return 90
}

// ShowTimelineEnabled defaults to true.
func (m Metadata) ShowTimelineEnabled() bool {
	if m.ShowTimeline != nil {
		return *m.ShowTimeline
	}
	return true
}

// SpecialSubTimerEnabled defaults to false.
func (m Metadata) SpecialSubTimerEnabled() bool {
	if m.SpecialSubTimer != nil {
		return *m.SpecialSubTimer
	}
	return false
}

// SpecialEventTime parses the configured special-event timestamp
// (RFC 3339). The zero time is returned when unset or unparseable.
func (m Metadata) SpecialEventTime() time.Time {
	if m.SpecialEvent == nil || m.SpecialEvent.Date == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, m.SpecialEvent.Date)
	if err != nil {
		appLog.Error("schedule: bad specialEvent date", err, "date", m.SpecialEvent.Date)
		return time.Time{}
	}
	return t
}

// SpecialEventDescription defaults to "Special Event".
func (m Metadata) SpecialEventDescription() string {
	if m.SpecialEvent != nil && m.SpecialEvent.Description != "" {
		return m.SpecialEvent.Description
	}
	return "Special Event"
}

// Document is a parsed weekly schedule: per-weekday event lists plus
// optional metadata. Keys other than the seven weekday names and "metadata"
// are ignored silently.
type Document struct {
	Days     map[string]DaySchedule
	Metadata Metadata
}

func (d *Document) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	d.Days = make(map[string]DaySchedule, 7)

	for key, val := range raw {
		if key == metadataKey {
			if err := json.Unmarshal(val, &d.Metadata); err != nil {
				return err
			}
			continue
		}
		if !IsWeekday(key) {
			appLog.Debug("schedule: ignoring unknown day key", "key", key)
			continue
		}
		var ds DaySchedule
		if err := json.Unmarshal(val, &ds); err != nil {
			return err
		}
		d.Days[key] = ds
	}

	return nil
}

// ParseDocument decodes a schedule document from JSON.
func ParseDocument(data []byte) (*Document, error) {
	if len(data) == 0 {
		return nil, errors.New("schedule: empty document")
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// IsWeekday reports whether name is one of the seven calendar weekday names.
func IsWeekday(name string) bool {
	switch name {
	case "Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday":
		return true
	}
	return false
}

// State is the immutable per-load schedule value passed into every resolver
// call. Override reports whether the document came from a week-dated
// override rather than the normal default.
type State struct {
	Doc      *Document
	Override bool
	LoadedAt time.Time
}

// Meta returns the document metadata, or the zero Metadata (all defaults)
// when no document is loaded.
func (s *State) Meta() Metadata {
	if s == nil || s.Doc == nil {
		return Metadata{}
	}
	return s.Doc.Metadata
}
