package model

// Event is a single event record as listed by the dashboard.
//
// StartDate and EndDate are kept as delivered by the source: DD/MM/YYYY for
// the hand-maintained events file, ISO dates for feed occurrences. They are
// classified on every read and never stored as a state.
type Event struct {
	ID        string `yaml:"id" json:"id"`
	Name      string `yaml:"name" json:"name"`
	ShortName string `yaml:"short_name" json:"short_name"`
	Code      string `yaml:"code,omitempty" json:"code,omitempty"`

	Organizer  string `yaml:"organizer,omitempty" json:"organizer,omitempty"`
	Department string `yaml:"department,omitempty" json:"department,omitempty"`
	Venue      string `yaml:"venue,omitempty" json:"venue,omitempty"`
	City       string `yaml:"city,omitempty" json:"city,omitempty"`
	Category   string `yaml:"category,omitempty" json:"category,omitempty"`

	StartDate string `yaml:"start_date" json:"start_date"`
	EndDate   string `yaml:"end_date" json:"end_date"`

	// Draft marks a record that has not been published yet.
	Draft bool `yaml:"draft,omitempty" json:"draft,omitempty"`
	// Trashed records only show up in the Trash tab.
	Trashed bool `yaml:"trashed,omitempty" json:"trashed,omitempty"`

	// SourceID is the feed ID, or "file" for the events file.
	SourceID string `yaml:"-" json:"source_id"`
	// UID is the iCalendar UID for feed events.
	UID string `yaml:"-" json:"uid,omitempty"`
}
