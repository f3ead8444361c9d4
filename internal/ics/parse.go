package ics

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	appLog "eventdesk/internal/log"
)

// ParsedEvent is a VEVENT before recurrence expansion.
type ParsedEvent struct {
	Source Source

	UID      string
	Summary  string
	Location string
	Category string

	Start  time.Time
	End    time.Time
	AllDay bool

	// Status is the upper-cased STATUS property (TENTATIVE, CONFIRMED, CANCELLED).
	Status string

	RawRRule string
	ExDates  []time.Time

	// RecurrenceID is set on a VEVENT that replaces one instance of the
	// recurring event with the same UID.
	RecurrenceID *time.Time
}

// IsOverride reports whether e replaces a single recurring instance.
func (e ParsedEvent) IsOverride() bool { return e.RecurrenceID != nil }

// Tentative events are unpublished drafts.
func (e ParsedEvent) Tentative() bool { return e.Status == "TENTATIVE" }

// Cancelled events end up in the trash.
func (e ParsedEvent) Cancelled() bool { return e.Status == "CANCELLED" }

// ParseFeed parses one ICS payload. Broken VEVENTs are logged and skipped;
// only an unreadable calendar is an error. Date-only values and floating
// date-times are read in loc.
func ParseFeed(src Source, body []byte, loc *time.Location) ([]ParsedEvent, error) {
	if len(body) == 0 {
		return nil, errors.New("empty ICS body")
	}
	if loc == nil {
		loc = time.UTC
	}

	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", src.ID, err)
	}

	events := make([]ParsedEvent, 0)
	for _, comp := range cal.Events() {
		ev, perr := parseVEvent(src, comp, loc)
		if perr != nil {
			appLog.Warn("skipping vevent", "id", src.ID, "url", redactURL(src.URL), "reason", perr)
			continue
		}
		events = append(events, ev)
	}

	appLog.Debug("feed parsed", "id", src.ID, "event_count", len(events))
	return events, nil
}

func parseVEvent(src Source, ve *ical.VEvent, loc *time.Location) (ParsedEvent, error) {
	out := ParsedEvent{Source: src}

	uidProp := ve.GetProperty(ical.ComponentPropertyUniqueId)
	if uidProp == nil || uidProp.Value == "" {
		return out, errors.New("missing UID")
	}
	out.UID = uidProp.Value

	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
		out.Summary = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertyLocation); p != nil {
		out.Location = p.Value
	}
	if p := ve.GetProperty("CATEGORIES"); p != nil {
		first, _, _ := strings.Cut(p.Value, ",")
		out.Category = strings.TrimSpace(first)
	}
	if p := ve.GetProperty("STATUS"); p != nil {
		out.Status = strings.ToUpper(strings.TrimSpace(p.Value))
	}

	dtStart := ve.GetProperty(ical.ComponentPropertyDtStart)
	if dtStart == nil || dtStart.Value == "" {
		return out, errors.New("missing DTSTART")
	}
	out.AllDay = isDateValue(dtStart)

	if out.AllDay {
		start, err := parseICSTime(dtStart.Value, loc)
		if err != nil {
			return out, fmt.Errorf("DTSTART: %w", err)
		}
		out.Start = start
		out.End = start.AddDate(0, 0, 1)
		if dtEnd := ve.GetProperty(ical.ComponentPropertyDtEnd); dtEnd != nil {
			if end, err := parseICSTime(dtEnd.Value, loc); err == nil && end.After(start) {
				out.End = end
			}
		}
	} else {
		// The library resolves TZID/VTIMEZONE for date-times.
		start, err := ve.GetStartAt()
		if err != nil {
			return out, fmt.Errorf("DTSTART: %w", err)
		}
		out.Start = start
		out.End = start
		if end, err := ve.GetEndAt(); err == nil && !end.Before(start) {
			out.End = end
		}
	}

	if p := ve.GetProperty(ical.ComponentPropertyRrule); p != nil {
		out.RawRRule = p.Value
	}

	for _, p := range ve.GetProperties(ical.ComponentPropertyExdate) {
		for _, part := range strings.Split(p.Value, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			if t, err := parseICSTime(part, loc); err == nil {
				out.ExDates = append(out.ExDates, t)
			}
		}
	}

	if p := ve.GetProperty(ical.ComponentPropertyRecurrenceId); p != nil && p.Value != "" {
		rid, err := parseICSTime(p.Value, propLocation(p, loc))
		if err != nil {
			return out, fmt.Errorf("RECURRENCE-ID: %w", err)
		}
		out.RecurrenceID = &rid
	}

	return out, nil
}

// propLocation returns the zone named by the property's TZID, or loc.
func propLocation(p *ical.IANAProperty, loc *time.Location) *time.Location {
	vs, ok := p.ICalParameters[string(ical.ParameterTzid)]
	if !ok || len(vs) == 0 {
		return loc
	}
	if tz, err := time.LoadLocation(vs[0]); err == nil {
		return tz
	}
	return loc
}

// isDateValue reports VALUE=DATE or a value without a time part.
func isDateValue(p *ical.IANAProperty) bool {
	if vs, ok := p.ICalParameters["VALUE"]; ok && len(vs) > 0 && strings.EqualFold(vs[0], "DATE") {
		return true
	}
	return !strings.Contains(p.Value, "T")
}

// parseICSTime parses the basic DATE / DATE-TIME / UTC forms.
func parseICSTime(v string, loc *time.Location) (time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, errors.New("empty time value")
	}
	switch {
	case strings.HasSuffix(v, "Z"):
		return time.Parse("20060102T150405Z", v)
	case strings.Contains(v, "T"):
		return time.ParseInLocation("20060102T150405", v, loc)
	default:
		return time.ParseInLocation("20060102", v, loc)
	}
}
