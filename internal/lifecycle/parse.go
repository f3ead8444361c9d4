package lifecycle

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/jinzhu/now"
)

// dayMonthYear matches D/M/YYYY and D-M-YYYY with one or two digit day and month.
var dayMonthYear = regexp.MustCompile(`^(\d{1,2})[/-](\d{1,2})[/-](\d{4})$`)

// Date-only forms are anchored at noon UTC so the calendar day survives
// conversion into any zone within +/-12h.
var dateOnlyLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"Jan 2 2006",
	"Jan 2, 2006",
	"January 2 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"2 January 2006",
	"Mon Jan 2 2006",
	"Mon, Jan 2 2006",
}

// Layouts carrying their own offset.
var instantLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05Z0700",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05 -0700 MST",
	time.RFC1123Z,
	time.RFC1123,
	time.RFC822Z,
	time.RFC850,
	time.UnixDate,
}

// Layouts without an offset; read as wall time in the reference zone.
var wallLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	time.ANSIC,
}

// fallbackFormats are handed to jinzhu/now. Every entry carries a full date
// so the result never depends on the current time.
var fallbackFormats = []string{
	"2006-1-2",
	"2006-1-2 15:4",
	"2006-1-2 15:4:5",
	"2006/1/2",
	"2006/1/2 15:4",
	"2006/1/2 15:4:5",
	"2006.1.2",
	"2006.1.2 15:4:5",
	"Jan 2 2006 15:04",
	"Jan 2, 2006 15:04",
	"2 Jan 2006 15:04",
}

// Parsed is the result of parsing a date input. OK is false when the input
// could not be turned into a valid instant.
type Parsed struct {
	Instant time.Time
	OK      bool
}

func valid(t time.Time) Parsed { return Parsed{Instant: t, OK: true} }

// ParseInput parses v with zone-less date-times read as UTC wall time.
func ParseInput(v any) Parsed {
	return ParseInputIn(v, time.UTC)
}

// ParseInputIn converts a date input into an instant. Accepted inputs are
// nil, string, *string, time.Time and *time.Time; anything else is invalid.
// Zone-less date-times are read as wall time in loc. It never panics.
func ParseInputIn(v any, loc *time.Location) Parsed {
	if loc == nil {
		loc = time.UTC
	}
	switch x := v.(type) {
	case nil:
		return Parsed{}
	case time.Time:
		return parseTime(x)
	case *time.Time:
		if x == nil {
			return Parsed{}
		}
		return parseTime(*x)
	case string:
		return parseString(x, loc)
	case *string:
		if x == nil {
			return Parsed{}
		}
		return parseString(*x, loc)
	default:
		return Parsed{}
	}
}

// The zero time stands in for an invalid date object.
func parseTime(t time.Time) Parsed {
	if t.IsZero() {
		return Parsed{}
	}
	return valid(t)
}

func parseString(raw string, loc *time.Location) Parsed {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Parsed{}
	}

	if m := dayMonthYear.FindStringSubmatch(s); m != nil {
		return parseDayMonthYear(m[1], m[2], m[3])
	}

	for _, layout := range dateOnlyLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return valid(noonUTC(t.Year(), t.Month(), t.Day()))
		}
	}
	for _, layout := range instantLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return valid(t)
		}
	}
	for _, layout := range wallLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return valid(t)
		}
	}

	cfg := &now.Config{
		WeekStartDay: time.Monday,
		TimeLocation: loc,
		TimeFormats:  fallbackFormats,
	}
	if t, err := cfg.Parse(s); err == nil && !t.IsZero() {
		return valid(t)
	}
	return Parsed{}
}

// parseDayMonthYear rejects dates that do not exist on the calendar
// (31/02/2025, 00/10/2025, 12/13/2025).
func parseDayMonthYear(ds, ms, ys string) Parsed {
	day, err := strconv.Atoi(ds)
	if err != nil {
		return Parsed{}
	}
	month, err := strconv.Atoi(ms)
	if err != nil {
		return Parsed{}
	}
	year, err := strconv.Atoi(ys)
	if err != nil {
		return Parsed{}
	}
	if month < 1 || month > 12 || day < 1 {
		return Parsed{}
	}
	t := noonUTC(year, time.Month(month), day)
	if t.Day() != day || t.Month() != time.Month(month) {
		return Parsed{}
	}
	return valid(t)
}

func noonUTC(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 12, 0, 0, 0, time.UTC)
}
