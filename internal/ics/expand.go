package ics

import (
	"errors"
	"sort"
	"time"

	"github.com/teambition/rrule-go"

	appLog "eventdesk/internal/log"
	"eventdesk/internal/model"
)

const (
	defaultMaxOccurrencesPerEvent = 500

	// isoDate is the format of StartDate/EndDate on feed events.
	isoDate = "2006-01-02"
)

// ExpandConfig controls how feed events become event records.
type ExpandConfig struct {
	// Location is the reference zone for timed events. Nil means UTC.
	Location *time.Location

	// RangeStart / RangeEnd bound recurring occurrences (inclusive).
	// Non-recurring events are always kept so finished events stay listed.
	RangeStart time.Time
	RangeEnd   time.Time

	// MaxOccurrencesPerEvent caps a single RRULE. Zero means 500.
	MaxOccurrencesPerEvent int
}

// ExpandResult wraps the records and the UIDs that hit the cap.
type ExpandResult struct {
	Events          []model.Event
	TruncatedEvents []string
}

// Expand turns parsed feed events into event records, one per occurrence.
// Output is sorted by start date, then ID.
func Expand(events []ParsedEvent, cfg ExpandConfig) (ExpandResult, error) {
	var result ExpandResult

	if cfg.RangeEnd.Before(cfg.RangeStart) {
		return result, errors.New("expand: RangeEnd is before RangeStart")
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.MaxOccurrencesPerEvent <= 0 {
		cfg.MaxOccurrencesPerEvent = defaultMaxOccurrencesPerEvent
	}

	// Overrides are grouped by UID and applied in place of the instance
	// their RECURRENCE-ID names.
	bases := make([]ParsedEvent, 0, len(events))
	overridesByUID := make(map[string][]ParsedEvent)
	for _, ev := range events {
		if ev.IsOverride() {
			overridesByUID[ev.UID] = append(overridesByUID[ev.UID], ev)
		} else {
			bases = append(bases, ev)
		}
	}

	hasBase := make(map[string]bool, len(bases))
	for _, ev := range bases {
		hasBase[ev.UID] = true
		overrides := overridesByUID[ev.UID]
		if ev.RawRRule == "" {
			if o, ok := findOverride(overrides, ev.Start); ok {
				result.Events = append(result.Events, makeEvent(o, o.Start, o.End, cfg.Location, nil))
				continue
			}
			result.Events = append(result.Events, makeEvent(ev, ev.Start, ev.End, cfg.Location, nil))
			continue
		}
		occ, hitCap := expandRecurring(ev, overrides, cfg)
		result.Events = append(result.Events, occ...)
		if hitCap {
			result.TruncatedEvents = append(result.TruncatedEvents, ev.UID)
			appLog.Warn("expand: occurrence cap reached", "uid", ev.UID, "cap", cfg.MaxOccurrencesPerEvent)
		}
	}

	// Overrides whose series is not in the feed still describe a real event.
	for uid, overrides := range overridesByUID {
		if hasBase[uid] {
			continue
		}
		for _, o := range overrides {
			rid := *o.RecurrenceID
			result.Events = append(result.Events, makeEvent(o, o.Start, o.End, cfg.Location, &rid))
		}
	}

	sort.SliceStable(result.Events, func(i, j int) bool {
		a, b := result.Events[i], result.Events[j]
		if a.StartDate != b.StartDate {
			return a.StartDate < b.StartDate
		}
		return a.ID < b.ID
	})
	return result, nil
}

func expandRecurring(ev ParsedEvent, overrides []ParsedEvent, cfg ExpandConfig) ([]model.Event, bool) {
	r, err := rrule.StrToRRule(ev.RawRRule)
	if err != nil {
		appLog.Error("expand: failed to parse RRULE", err, "uid", ev.UID, "rrule", ev.RawRRule)
		return []model.Event{makeEvent(ev, ev.Start, ev.End, cfg.Location, nil)}, false
	}
	r.DTStart(ev.Start)

	var set rrule.Set
	set.RRule(r)
	for _, ex := range ev.ExDates {
		set.ExDate(ex.In(ev.Start.Location()))
	}

	rangeStart := cfg.RangeStart.In(ev.Start.Location())
	rangeEnd := cfg.RangeEnd.In(ev.Start.Location())
	starts := set.Between(rangeStart, rangeEnd, true)

	hitCap := false
	if len(starts) > cfg.MaxOccurrencesPerEvent {
		starts = starts[:cfg.MaxOccurrencesPerEvent]
		hitCap = true
	}

	dur := ev.End.Sub(ev.Start)
	out := make([]model.Event, 0, len(starts))
	for _, s := range starts {
		key := s
		if o, ok := findOverride(overrides, s); ok {
			out = append(out, makeEvent(o, o.Start, o.End, cfg.Location, &key))
			continue
		}
		out = append(out, makeEvent(ev, s, s.Add(dur), cfg.Location, &key))
	}
	return out, hitCap
}

// findOverride returns the override whose RECURRENCE-ID is the instant start.
func findOverride(overrides []ParsedEvent, start time.Time) (ParsedEvent, bool) {
	for _, o := range overrides {
		if o.RecurrenceID != nil && o.RecurrenceID.Equal(start) {
			return o, true
		}
	}
	return ParsedEvent{}, false
}

// instanceKey identifies one occurrence of a series. All-day instances are
// keyed by date, timed ones by their UTC start so sub-daily rules stay unique.
func instanceKey(at time.Time, allDay bool) string {
	if allDay {
		return at.Format("20060102")
	}
	return at.UTC().Format("20060102T150405Z")
}

// makeEvent renders one occurrence. Timed events are dated in loc; all-day
// events keep their calendar date. iCalendar ends are exclusive, so the
// last day is the one containing the instant just before End. A non-nil
// instance is the series start the record replaces and goes into the ID.
func makeEvent(ev ParsedEvent, start, end time.Time, loc *time.Location, instance *time.Time) model.Event {
	if !ev.AllDay {
		start = start.In(loc)
		end = end.In(loc)
	}
	last := start
	if end.After(start) {
		last = end.Add(-time.Nanosecond)
	}

	id := ev.Source.ID + ":" + ev.UID
	if instance != nil {
		id += "@" + instanceKey(*instance, ev.AllDay)
	}

	return model.Event{
		ID:        id,
		Name:      ev.Summary,
		ShortName: model.ShortName(ev.Summary, start.Year()),
		Venue:     ev.Location,
		Category:  ev.Category,
		StartDate: start.Format(isoDate),
		EndDate:   last.Format(isoDate),
		Draft:     ev.Tentative(),
		Trashed:   ev.Cancelled(),
		SourceID:  ev.Source.ID,
		UID:       ev.UID,
	}
}
