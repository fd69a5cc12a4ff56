// eventstatus/eventstatus.go - effective status of scheduled events
package eventstatus

import (
	"regexp"
	"strings"
	"time"
)

// Status is an event status. The stored values are Upcoming, Completed and
// Cancelled; Today only ever appears as an effective status.
type Status string

const (
	Upcoming  Status = "upcoming"
	Completed Status = "completed"
	Cancelled Status = "cancelled"
	Today     Status = "today"
)

// StoredStatuses lists the values an admin may persist on an event.
var StoredStatuses = []Status{Upcoming, Completed, Cancelled}

// IsStored reports whether s may be persisted on an event.
func IsStored(s string) bool {
	for _, v := range StoredStatuses {
		if string(v) == s {
			return true
		}
	}
	return false
}

// IsSticky reports whether s is a manual terminal status that the clock
// never overrides.
func IsSticky(s Status) bool {
	return s == Completed || s == Cancelled
}

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// FixedClock always returns the same instant.
type FixedClock time.Time

func (f FixedClock) Now() time.Time { return time.Time(f) }

// StartOfDay truncates t to midnight in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// Resolve computes the effective status of an event from its stored status
// and its human date string ("March 15"). The year is assumed to be now's
// year. Completed and cancelled are returned unchanged. If the date cannot
// be parsed the stored status is returned unchanged.
func Resolve(stored Status, date string, now time.Time) Status {
	if IsSticky(stored) {
		return stored
	}
	day, ok := ParseEventDate(date, now)
	if !ok {
		return stored
	}
	return compare(day, now)
}

// ResolveEvent is Resolve with an optional explicit ISO date (2006-01-02).
// When isoDate parses it is used instead of the year-less date string.
func ResolveEvent(stored Status, isoDate, date string, now time.Time) Status {
	if IsSticky(stored) {
		return stored
	}
	if isoDate != "" {
		if day, err := time.ParseInLocation(ISODateLayout, strings.TrimSpace(isoDate), now.Location()); err == nil {
			return compare(day, now)
		}
	}
	return Resolve(stored, date, now)
}

func compare(day, now time.Time) Status {
	today := StartOfDay(now)
	day = StartOfDay(day)
	switch {
	case day.Before(today):
		return Completed
	case day.Equal(today):
		return Today
	default:
		return Upcoming
	}
}

// ISODateLayout is the layout of Event.ISODate.
const ISODateLayout = "2006-01-02"

// layouts that already carry a year
var fullLayouts = []string{
	"January 2 2006",
	"Jan 2 2006",
	"Monday January 2 2006",
	"Mon Jan 2 2006",
	"1/2/2006",
	ISODateLayout,
}

// layouts for year-less dates; the current year is appended before parsing
var yearlessLayouts = []string{
	"January 2 2006",
	"Jan 2 2006",
	"Monday January 2 2006",
	"Mon Jan 2 2006",
	"1/2 2006",
}

var (
	ordinalSuffix = regexp.MustCompile(`(?i)\b(\d{1,2})(st|nd|rd|th)\b`)
	spaces        = regexp.MustCompile(`\s+`)
)

func normalize(s string) string {
	s = strings.ReplaceAll(s, ",", " ")
	s = strings.ReplaceAll(s, ".", " ")
	s = ordinalSuffix.ReplaceAllString(s, "$1")
	return strings.TrimSpace(spaces.ReplaceAllString(s, " "))
}

// ParseEventDate parses a human event date in now's location. Dates without
// a year take now's year.
func ParseEventDate(date string, now time.Time) (time.Time, bool) {
	s := normalize(date)
	if s == "" {
		return time.Time{}, false
	}
	loc := now.Location()
	for _, layout := range fullLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}
	withYear := s + " " + now.Format("2006")
	for _, layout := range yearlessLayouts {
		if t, err := time.ParseInLocation(layout, withYear, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ColorToken is a semantic display category.
type ColorToken string

const (
	ColorSuccess ColorToken = "success"
	ColorWarning ColorToken = "warning"
	ColorInfo    ColorToken = "info"
	ColorDanger  ColorToken = "danger"
	ColorNeutral ColorToken = "neutral"
)

// Label is display metadata for an effective status.
type Label struct {
	Text  string     `json:"text"`
	Color ColorToken `json:"color"`
}

// DisplayLabel maps an effective status to its label. Unknown statuses are
// shown verbatim with the neutral color.
func DisplayLabel(s Status) Label {
	switch s {
	case Completed:
		return Label{Text: "Completed", Color: ColorSuccess}
	case Today:
		return Label{Text: "Today", Color: ColorWarning}
	case Upcoming:
		return Label{Text: "Upcoming", Color: ColorInfo}
	case Cancelled:
		return Label{Text: "Cancelled", Color: ColorDanger}
	default:
		return Label{Text: string(s), Color: ColorNeutral}
	}
}
