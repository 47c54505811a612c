// Package countdown renders durations into the display's clock strings.
package countdown

import (
	"fmt"
	"time"
)

// compactThreshold is the remaining time above which the compact form may
// drop seconds.
const compactThreshold = 300 * time.Second

// Format renders a non-negative duration using the three-tier policy:
//
//  1. ≥ 24h: "D:HH:MM:SS" — seconds are never suppressed once a day
//     overflow is present.
//  2. compact and ≥ 5 minutes: "H:MM" (seconds omitted; zero hours are
//     rendered as "0:MM").
//  3. otherwise: "[H:]MM:SS" — the hour segment and its separator are
//     omitted entirely when hours are zero, never padded to "0:".
//
// Sub-second fractions are floored away; negative inputs clamp to zero.
func Format(d time.Duration, compact bool) string {
	if d < 0 {
		d = 0
	}

	total := int(d / time.Second)
	seconds := total % 60
	minutes := (total / 60) % 60
	hours := total / 3600

	if hours >= 24 {
		days := hours / 24
		hours %= 24
		return fmt.Sprintf("%d:%02d:%02d:%02d", days, hours, minutes, seconds)
	}

	if compact && d >= compactThreshold {
		return fmt.Sprintf("%d:%02d", hours, minutes)
	}

	if hours == 0 {
		return fmt.Sprintf("%02d:%02d", minutes, seconds)
	}
	return fmt.Sprintf("%d:%02d:%02d", hours, minutes, seconds)
}
