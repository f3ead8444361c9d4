package lifecycle

import (
	"fmt"
	"time"
)

// DefaultTimezone is the reference zone for calendar-day comparisons.
const DefaultTimezone = "Asia/Kolkata"

// istOffset is used when the host has no tzdata for DefaultTimezone.
// Asia/Kolkata has had no DST since 1945.
const istOffset = 5*60*60 + 30*60

// CalendarDay encodes a date as year*10000 + month*100 + day.
// Values are only ever compared with each other.
type CalendarDay int

// DayOf returns the calendar day of t as observed in loc. A nil loc means UTC.
func DayOf(t time.Time, loc *time.Location) CalendarDay {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := t.In(loc).Date()
	return CalendarDay(y*10000 + int(m)*100 + d)
}

func (d CalendarDay) Year() int         { return int(d) / 10000 }
func (d CalendarDay) Month() time.Month { return time.Month(int(d) / 100 % 100) }
func (d CalendarDay) Day() int          { return int(d) % 100 }

// String renders the day as YYYY-MM-DD.
func (d CalendarDay) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year(), int(d.Month()), d.Day())
}

// Normalizer maps instants to calendar days in a single fixed zone.
type Normalizer struct {
	Location *time.Location
}

func (n Normalizer) Day(t time.Time) CalendarDay {
	return DayOf(t, n.Location)
}

// LoadLocation resolves an IANA zone name. An empty name selects
// DefaultTimezone. If tzdata is unavailable for DefaultTimezone, a fixed
// +05:30 zone is returned instead of an error.
func LoadLocation(name string) (*time.Location, error) {
	if name == "" {
		name = DefaultTimezone
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		if name == DefaultTimezone {
			return time.FixedZone("IST", istOffset), nil
		}
		return nil, fmt.Errorf("load timezone %q: %w", name, err)
	}
	return loc, nil
}

func defaultLocation() *time.Location {
	loc, _ := LoadLocation(DefaultTimezone)
	return loc
}
