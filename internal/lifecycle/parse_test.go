package lifecycle

import (
	"testing"
	"time"
)

func TestParseInputInvalid(t *testing.T) {
	var nilTime *time.Time
	var nilString *string
	cases := []struct {
		name string
		in   any
	}{
		{"nil", nil},
		{"empty", ""},
		{"blank", "   "},
		{"garbage", "next tuesday-ish"},
		{"zero time", time.Time{}},
		{"nil time pointer", nilTime},
		{"nil string pointer", nilString},
		{"unsupported type", 20250815},
		{"feb 31", "31/02/2025"},
		{"month 13", "12/13/2025"},
		{"day zero", "00/10/2025"},
		{"two digit year", "15/08/25"},
		{"five digit year", "15/08/20250"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if p := ParseInput(tc.in); p.OK {
				t.Fatalf("ParseInput(%#v) = %v, want invalid", tc.in, p.Instant)
			}
		})
	}
}

func TestParseInputDayMonthYear(t *testing.T) {
	cases := []struct {
		in   string
		want time.Time
	}{
		{"15/08/2025", time.Date(2025, 8, 15, 12, 0, 0, 0, time.UTC)},
		{"5/8/2025", time.Date(2025, 8, 5, 12, 0, 0, 0, time.UTC)},
		{"05/08/2025", time.Date(2025, 8, 5, 12, 0, 0, 0, time.UTC)},
		{"05-08-2025", time.Date(2025, 8, 5, 12, 0, 0, 0, time.UTC)},
		{" 29/02/2024 ", time.Date(2024, 2, 29, 12, 0, 0, 0, time.UTC)},
		{"1/12/2025", time.Date(2025, 12, 1, 12, 0, 0, 0, time.UTC)},
	}
	for _, tc := range cases {
		p := ParseInput(tc.in)
		if !p.OK {
			t.Errorf("ParseInput(%q) invalid", tc.in)
			continue
		}
		if !p.Instant.Equal(tc.want) {
			t.Errorf("ParseInput(%q) = %v, want %v", tc.in, p.Instant, tc.want)
		}
	}
}

func TestParseInputPassesTimeThrough(t *testing.T) {
	in := time.Date(2025, 8, 15, 3, 4, 5, 0, time.FixedZone("X", -7*3600))
	p := ParseInput(in)
	if !p.OK || !p.Instant.Equal(in) || p.Instant.Location() != in.Location() {
		t.Fatalf("time.Time not passed through: %+v", p)
	}
	p = ParseInput(&in)
	if !p.OK || !p.Instant.Equal(in) {
		t.Fatalf("*time.Time not passed through: %+v", p)
	}
	s := "15/08/2025"
	if p := ParseInput(&s); !p.OK {
		t.Fatal("*string not parsed")
	}
}

// Every accepted spelling of the same date lands on the same calendar day.
func TestParseFormatsAgreeOnCalendarDay(t *testing.T) {
	loc := ist(t)
	inputs := []any{
		"15/08/2025",
		"15-08-2025",
		"2025-08-15",
		"2025/08/15",
		"2025-8-15",
		"Aug 15 2025",
		"August 15, 2025",
		"15 Aug 2025",
		"2025-08-15T10:30:00+05:30",
		"2025-08-15T10:30:00Z",
		"2025-08-15T10:30",
		"2025-08-15 10:30:00",
		"Fri, 15 Aug 2025 10:30:00 +0530",
		time.Date(2025, 8, 15, 0, 0, 0, 0, loc),
	}
	for _, in := range inputs {
		p := ParseInputIn(in, loc)
		if !p.OK {
			t.Errorf("ParseInputIn(%v) invalid", in)
			continue
		}
		if got := DayOf(p.Instant, loc); got != 20250815 {
			t.Errorf("DayOf(ParseInputIn(%v)) = %d, want 20250815", in, got)
		}
	}
}

func TestParseWallTimeUsesLocation(t *testing.T) {
	loc := ist(t)
	p := ParseInputIn("2025-08-15T23:30", loc)
	if !p.OK {
		t.Fatal("invalid")
	}
	if got := DayOf(p.Instant, loc); got != 20250815 {
		t.Fatalf("in reference zone: got %d", got)
	}
	// Read as UTC the same wall time is already the 16th in Kolkata.
	p = ParseInput("2025-08-15T23:30")
	if got := DayOf(p.Instant, loc); got != 20250816 {
		t.Fatalf("as UTC: got %d", got)
	}
}
