// Package display turns the resolved schedule into per-tick display frames
// and drives the tick loop.
package display

import (
	"strings"
	"sync/atomic"
	"time"

	"classclock/internal/countdown"
	"classclock/internal/schedule"
	"classclock/internal/subtimer"
)

// Frame is one complete display state, pushed to the sink once per tick.
// A degraded (no-schedule) frame carries only the banner.
type Frame struct {
	PrimaryText       string    `json:"primary_text"`
	PrimarySubLabel   string    `json:"primary_sub_label"`
	SecondaryText     string    `json:"secondary_text"`
	SecondarySubLabel string    `json:"secondary_sub_label"`
	BannerText        string    `json:"banner_text"`
	TitleText         string    `json:"title_text"`
	ShowTimeline      bool      `json:"show_timeline"`
	EventName         string    `json:"event_name,omitempty"`
	EventAt           time.Time `json:"event_at,omitzero"`
	At                time.Time `json:"at"`
}

// Compute builds the frame for now from an immutable schedule state. The
// error is ErrNoSchedule / ErrNoUpcomingEvent for degraded frames; the
// returned frame is still valid to render (neutral/empty).
func Compute(state *schedule.State, now time.Time, compact bool) (Frame, error) {
	frame := Frame{
		At:           now,
		BannerText:   schedule.Banner(state, now),
		ShowTimeline: state.Meta().ShowTimelineEnabled(),
	}

	next, err := schedule.NextEvent(state, now)
	if err != nil {
		return frame, err
	}

	frame.EventName = next.Name
	frame.EventAt = next.Date
	frame.PrimaryText = countdown.Format(next.Date.Sub(now), compact)
	frame.PrimarySubLabel = "Left " + next.Name

	sub := subtimer.Evaluate(next, now, state, compact)
	frame.SecondaryText = sub.Countdown
	frame.SecondarySubLabel = sub.SubLabel

	frame.TitleText = titleFor(next.Name, frame.PrimaryText)

	return frame, nil
}

// titleFor prefixes the tab title for transition and check periods.
func titleFor(eventName, primary string) string {
	switch {
	case strings.Contains(eventName, "Transition"):
		return "Transition: " + primary
	case strings.Contains(eventName, "of Check"):
		return "Check: " + primary
	default:
		return primary
	}
}

// Prefs is the external control surface read once per tick. Currently a
// single boolean: the compact display toggle.
type Prefs struct {
	compact atomic.Bool
}

func NewPrefs(compact bool) *Prefs {
	p := &Prefs{}
	p.compact.Store(compact)
	return p
}

func (p *Prefs) Compact() bool { return p.compact.Load() }

func (p *Prefs) SetCompact(v bool) { p.compact.Store(v) }
