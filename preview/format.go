// Package preview renders the read-only view of a record shown before
// submission. Nothing in this package modifies the record it is given.
package preview

import (
	"strings"
	"time"

	"formwizard-go/models"
)

// NotProvided is shown for every empty, missing or unparseable value.
const NotProvided = "Not provided"

// DefaultDisplayLayout matches the en-US short date, e.g. 1/31/2020.
const DefaultDisplayLayout = "1/2/2006"

// InputLayouts are the date shapes accepted from the wizard, tried in order.
var InputLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
	"01/02/2006",
	"02-01-2006",
	"January 2, 2006",
	"Jan 2, 2006",
}

type Formatter struct {
	display string
	layouts []string
}

// NewFormatter returns a formatter that prints dates with displayLayout, or
// DefaultDisplayLayout when it is empty.
func NewFormatter(displayLayout string) *Formatter {
	if displayLayout == "" {
		displayLayout = DefaultDisplayLayout
	}
	return &Formatter{display: displayLayout, layouts: InputLayouts}
}

// Date formats value, or returns NotProvided when it is empty or not a date.
func (f *Formatter) Date(value string) string {
	t, ok := f.parse(value)
	if !ok {
		return NotProvided
	}
	return t.Format(f.display)
}

func (f *Formatter) parse(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range f.layouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// PeriodKind tags how a period is displayed.
type PeriodKind int

const (
	PeriodUnset PeriodKind = iota
	PeriodRaw
	PeriodRange
)

// PeriodValue is a period reduced to the one form that will be displayed.
type PeriodValue struct {
	Kind  PeriodKind
	Raw   string
	Start string
	End   string
}

// ResolvePeriod picks the display form of p: raw text when set, otherwise the
// start/end pair when both are set, otherwise unset. Start and end are never
// consulted once raw is present.
func ResolvePeriod(p *models.Period) PeriodValue {
	switch {
	case p == nil:
		return PeriodValue{Kind: PeriodUnset}
	case p.Raw != "":
		return PeriodValue{Kind: PeriodRaw, Raw: p.Raw}
	case p.Start != "" && p.End != "":
		return PeriodValue{Kind: PeriodRange, Start: p.Start, End: p.End}
	}
	return PeriodValue{Kind: PeriodUnset}
}

func (f *Formatter) Period(p *models.Period) string {
	return f.PeriodValue(ResolvePeriod(p))
}

func (f *Formatter) PeriodValue(v PeriodValue) string {
	switch v.Kind {
	case PeriodRaw:
		return v.Raw
	case PeriodRange:
		return f.Date(v.Start) + " - " + f.Date(v.End)
	}
	return NotProvided
}

// Text returns value or NotProvided when it is empty.
func Text(value string) string {
	if value == "" {
		return NotProvided
	}
	return value
}

func ShowReferences(rec *models.PersonRecord) bool {
	return rec != nil && len(rec.References) > 0
}

func ShowGaps(rec *models.PersonRecord) bool {
	return rec != nil && (rec.Gaps.Reason != "" || rec.Gaps.AddressDuringGap != "")
}

func ShowEPF(rec *models.PersonRecord) bool {
	return rec != nil && rec.EPFAndGratuity.PFAccountNo != ""
}
