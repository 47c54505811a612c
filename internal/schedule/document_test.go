package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDocument_BareArrayDay(t *testing.T) {
	doc, err := ParseDocument([]byte(`{
		"Monday": [
			{"time": "08:00", "event": "A1"},
			{"time": "08:50", "event": "of A1"}
		]
	}`))
	require.NoError(t, err)

	ds, ok := doc.Days["Monday"]
	require.True(t, ok)
	require.Len(t, ds.Events, 2)
	assert.Equal(t, "A1", ds.Events[0].Event)
	assert.Empty(t, ds.BannerText)
}

func TestParseDocument_ObjectDayWithBanner(t *testing.T) {
	doc, err := ParseDocument([]byte(`{
		"Tuesday": {
			"events": [{"time": "09:30", "event": "B2"}],
			"bannerText": "Late Start"
		}
	}`))
	require.NoError(t, err)

	ds := doc.Days["Tuesday"]
	require.Len(t, ds.Events, 1)
	assert.Equal(t, "Late Start", ds.BannerText)
}

func TestParseDocument_IgnoresUnknownKeys(t *testing.T) {
	doc, err := ParseDocument([]byte(`{
		"Monday": [{"time": "08:00", "event": "A1"}],
		"Funday": [{"time": "08:00", "event": "nope"}],
		"notes": {"whatever": true}
	}`))
	require.NoError(t, err)

	assert.Len(t, doc.Days, 1)
	_, ok := doc.Days["Funday"]
	assert.False(t, ok)
}

func TestParseDocument_EmptyBody(t *testing.T) {
	_, err := ParseDocument(nil)
	require.Error(t, err)
}

func TestMetadata_Defaults(t *testing.T) {
	var m Metadata
	assert.Equal(t, 50, m.RegBlockMinutes())
	assert.Equal(t, 90, m.LabBlockMinutes())
	assert.True(t, m.ShowTimelineEnabled())
	assert.False(t, m.SpecialSubTimerEnabled())
	assert.True(t, m.SpecialEventTime().IsZero())
	assert.Equal(t, "Special Event", m.SpecialEventDescription())
}

func TestMetadata_PresenceOverridesDefaults(t *testing.T) {
	doc, err := ParseDocument([]byte(`{
		"metadata": {
			"showTimeline": false,
			"specialSubTimer": true,
			"regBlock": 45,
			"labBlock": 80,
			"specialEvent": {"date": "2026-09-04T17:00:00-04:00", "description": "Homecoming"}
		}
	}`))
	require.NoError(t, err)

	m := doc.Metadata
	assert.False(t, m.ShowTimelineEnabled())
	assert.True(t, m.SpecialSubTimerEnabled())
	assert.Equal(t, 45, m.RegBlockMinutes())
	assert.Equal(t, 80, m.LabBlockMinutes())
	assert.Equal(t, "Homecoming", m.SpecialEventDescription())
	assert.False(t, m.SpecialEventTime().IsZero())
}

func TestMetadata_BadSpecialEventDate(t *testing.T) {
	m := Metadata{SpecialEvent: &SpecialEvent{Date: "next friday"}}
	assert.True(t, m.SpecialEventTime().IsZero())
}

func TestParseLabel(t *testing.T) {
	l := ParseLabel("of A2 Lab")
	assert.Equal(t, "A2", l.Block)
	assert.True(t, l.LabAfterMain)
	assert.True(t, l.LabBeforeMain) // offsets 6-9 spell "Lab" here too

	l = ParseLabel("of G3")
	assert.Equal(t, "G3", l.Block)
	assert.False(t, l.LabAfterMain)
	assert.False(t, l.LabBeforeMain)

	// Long labels without the "of " prefix are outside the convention and
	// must not have a block sliced out of them.
	l = ParseLabel("Lunch")
	assert.Empty(t, l.Block)
	assert.False(t, l.LabAfterMain)
	assert.False(t, l.LabBeforeMain)

	l = ParseLabel("End of Transition (A)")
	assert.Empty(t, l.Block)
	assert.False(t, l.LabBeforeMain)

	// Short labels outside the convention stay inert.
	l = ParseLabel("A1")
	assert.Empty(t, l.Block)
	assert.False(t, l.LabAfterMain)
	assert.False(t, l.LabBeforeMain)
}
