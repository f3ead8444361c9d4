package catalog

import (
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"eventdesk/internal/lifecycle"
	"eventdesk/internal/model"
)

// FileSourceID is the source ID of events loaded from the events file.
const FileSourceID = "file"

// eventsNamespace seeds the name-based IDs of file events without an id.
var eventsNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("eventdesk/events"))

type eventsFile struct {
	Events []model.Event `yaml:"events"`
}

// LoadFile reads a YAML events file:
//
//	events:
//	  - name: International Cardiology Conference
//	    start_date: 15/08/2025
//	    end_date: 17/08/2025
//
// Records without an id get a stable name-based UUID; records without a
// short name get one generated from the name and the start year (or
// fallbackYear when the start date does not parse).
func LoadFile(path string, fallbackYear int) ([]model.Event, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read events file: %w", err)
	}

	var f eventsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse events file %s: %w", path, err)
	}

	seen := make(map[string]int, len(f.Events))
	out := make([]model.Event, 0, len(f.Events))
	for i, ev := range f.Events {
		ev.Name = strings.TrimSpace(ev.Name)
		if ev.ID == "" {
			key := ev.Name + "|" + ev.StartDate + "|" + ev.EndDate
			ev.ID = uuid.NewSHA1(eventsNamespace, []byte(key)).String()
		}
		if prev, dup := seen[ev.ID]; dup {
			return nil, fmt.Errorf("events file %s: entries %d and %d share id %q", path, prev, i, ev.ID)
		}
		seen[ev.ID] = i

		if ev.ShortName == "" {
			year := fallbackYear
			if p := lifecycle.ParseInput(ev.StartDate); p.OK {
				year = p.Instant.Year()
			}
			ev.ShortName = model.ShortName(ev.Name, year)
		}
		ev.SourceID = FileSourceID
		out = append(out, ev)
	}
	return out, nil
}
