// Package catalog keeps the current set of event records and answers the
// dashboard's tabbed listing queries, classifying every event at read time.
package catalog

import (
	"errors"
	"sort"
	"strings"
	"sync"

	"eventdesk/internal/lifecycle"
	"eventdesk/internal/model"
)

// ErrNotFound is returned by Get for unknown IDs.
var ErrNotFound = errors.New("event not found")

// Catalog is a concurrency-safe set of events grouped by source.
type Catalog struct {
	mu       sync.RWMutex
	bySource map[string][]model.Event
	byID     map[string]model.Event
}

func New() *Catalog {
	return &Catalog{
		bySource: make(map[string][]model.Event),
		byID:     make(map[string]model.Event),
	}
}

// Replace swaps every event of source for events. An empty slice removes
// the source.
func (c *Catalog) Replace(source string, events []model.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, old := range c.bySource[source] {
		delete(c.byID, old.ID)
	}
	if len(events) == 0 {
		delete(c.bySource, source)
		return
	}

	cp := make([]model.Event, len(events))
	for i, ev := range events {
		ev.SourceID = source
		cp[i] = ev
		c.byID[ev.ID] = ev
	}
	c.bySource[source] = cp
}

func (c *Catalog) Get(id string) (model.Event, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ev, ok := c.byID[id]
	if !ok {
		return model.Event{}, ErrNotFound
	}
	return ev, nil
}

// All returns a snapshot ordered by source, then source order.
func (c *Catalog) All() []model.Event {
	c.mu.RLock()
	defer c.mu.RUnlock()

	sources := make([]string, 0, len(c.bySource))
	for s := range c.bySource {
		sources = append(sources, s)
	}
	sort.Strings(sources)

	out := make([]model.Event, 0, len(c.byID))
	for _, s := range sources {
		out = append(out, c.bySource[s]...)
	}
	return out
}

func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.byID)
}

// Classified is an event with its state as of the query.
type Classified struct {
	model.Event
	State lifecycle.State `json:"state"`
	Label string          `json:"label"`
}

// List classifies the catalog with cl and applies q.
func (c *Catalog) List(q Query, cl lifecycle.Classifier) Page {
	q = q.normalized()
	search := strings.ToLower(strings.TrimSpace(q.Search))

	page := Page{
		Tab:    q.Tab,
		Page:   q.Page,
		Counts: make(map[Tab]int),
		Today:  cl.Today().String(),
	}

	matched := make([]Classified, 0)
	for _, ev := range c.All() {
		state := cl.Classify(ev.StartDate, ev.EndDate, ev.Draft)
		tabs := tabsFor(ev, state)
		for _, t := range tabs {
			page.Counts[t]++
		}
		if !contains(tabs, q.Tab) {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(ev.Name), search) {
			continue
		}
		matched = append(matched, Classified{Event: ev, State: state, Label: state.Label()})
	}

	page.Total = len(matched)
	page.PageSize = q.PageSize
	page.TotalPages = (page.Total + q.PageSize - 1) / q.PageSize

	from := (q.Page - 1) * q.PageSize
	if from > len(matched) {
		from = len(matched)
	}
	to := min(from+q.PageSize, len(matched))
	page.Events = matched[from:to]
	return page
}

// tabsFor lists every tab an event appears under.
func tabsFor(ev model.Event, state lifecycle.State) []Tab {
	if ev.Trashed {
		return []Tab{TabTrash}
	}
	return []Tab{TabAll, Tab(state)}
}

func contains(tabs []Tab, t Tab) bool {
	for _, x := range tabs {
		if x == t {
			return true
		}
	}
	return false
}
