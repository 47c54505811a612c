package schedule

import "strings"

// Label is the structured form of an event name, parsed once at ingestion.
//
// The schedule convention names block-end events "of A2 Lab", "of G3", and
// so on: after the "of " prefix the block qualifier sits at character
// offsets 3–5 and a trailing "Lab" marks a block with an attached lab. A
// lab taken before its paired main block shows up as "Lab" at offsets 6–9
// instead ("of A2 Lab <main>" style afternoon entries). Labels outside the
// convention leave Block empty and the lab flags false.
type Label struct {
	Raw string

	// Block is the conventional short block qualifier ("A2" in "of A2 Lab").
	Block string

	// LabAfterMain marks a block whose lab follows the shared main block
	// (the name ends in "Lab").
	LabAfterMain bool

	// LabBeforeMain marks a lab block taken before its paired main block
	// (offsets 6–9 spell "Lab"), only meaningful in an afternoon slot.
	LabBeforeMain bool
}

// ParseLabel derives the structured label from a raw event name. Names not
// carrying the "of " prefix are outside the convention and parse inert.
func ParseLabel(raw string) Label {
	l := Label{Raw: raw}

	if !strings.HasPrefix(raw, "of ") || len(raw) < 5 {
		return l
	}

	l.Block = raw[3:5]
	l.LabAfterMain = strings.HasSuffix(raw, "Lab")
	l.LabBeforeMain = len(raw) >= 9 && raw[6:9] == "Lab"

	return l
}
