package lifecycle

import "time"

// Clock supplies the current instant. Tests pass FixedClock.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

// SystemClock reads the wall clock.
var SystemClock Clock = ClockFunc(time.Now)

// FixedClock always reports t.
func FixedClock(t time.Time) Clock {
	return ClockFunc(func() time.Time { return t })
}

// Classifier computes lifecycle states against a clock and a reference zone.
// It holds no mutable state and may be shared between goroutines.
type Classifier struct {
	clock Clock
	norm  Normalizer
}

// NewClassifier returns a Classifier. A nil loc selects DefaultTimezone and a
// nil clock selects SystemClock.
func NewClassifier(loc *time.Location, clock Clock) Classifier {
	if loc == nil {
		loc = defaultLocation()
	}
	if clock == nil {
		clock = SystemClock
	}
	return Classifier{clock: clock, norm: Normalizer{Location: loc}}
}

// withDefaults makes the zero Classifier usable.
func (c Classifier) withDefaults() Classifier {
	if c.norm.Location == nil || c.clock == nil {
		return NewClassifier(c.norm.Location, c.clock)
	}
	return c
}

func (c Classifier) Location() *time.Location { return c.withDefaults().norm.Location }

// Today is the current calendar day in the reference zone.
func (c Classifier) Today() CalendarDay {
	c = c.withDefaults()
	return c.norm.Day(c.clock.Now())
}

// At returns a copy of c whose clock is fixed at t.
func (c Classifier) At(t time.Time) Classifier {
	c.clock = FixedClock(t)
	return c
}

// Classify returns the state of an event running from start to end.
// A local draft is always Draft and its dates are not looked at. Inputs
// that do not parse also yield Draft; no error is ever reported.
func (c Classifier) Classify(start, end any, isLocalDraft bool) State {
	if isLocalDraft {
		return Draft
	}
	c = c.withDefaults()
	s := ParseInputIn(start, c.norm.Location)
	e := ParseInputIn(end, c.norm.Location)
	if !s.OK || !e.OK {
		return Draft
	}
	return ClassifyDays(c.norm.Day(s.Instant), c.norm.Day(e.Instant), c.Today())
}

// ClassifyDays compares already normalised days. Live is strictly before the
// start day; both the start and end days are Running.
func ClassifyDays(start, end, today CalendarDay) State {
	switch {
	case today < start:
		return Live
	case today <= end:
		return Running
	default:
		return Past
	}
}

// Classify uses DefaultTimezone with "now" supplied by the caller.
func Classify(start, end any, isLocalDraft bool, now time.Time) State {
	return NewClassifier(nil, FixedClock(now)).Classify(start, end, isLocalDraft)
}
