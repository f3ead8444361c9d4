package catalog

import (
	"fmt"
	"strings"

	"eventdesk/internal/lifecycle"
)

// Tab is a listing filter. The lifecycle states double as tabs.
type Tab string

const (
	TabRunning Tab = Tab(lifecycle.Running)
	TabLive    Tab = Tab(lifecycle.Live)
	TabPast    Tab = Tab(lifecycle.Past)
	TabDraft   Tab = Tab(lifecycle.Draft)
	TabAll     Tab = "All"
	TabTrash   Tab = "Trash"

	// DefaultTab is the tab the dashboard opens on.
	DefaultTab = TabLive
	// DefaultPageSize matches the dashboard's list length.
	DefaultPageSize = 10
	maxPageSize     = 200
)

// ParseTab resolves a tab name case-insensitively. Empty means DefaultTab.
func ParseTab(s string) (Tab, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return DefaultTab, nil
	case "all":
		return TabAll, nil
	case "trash":
		return TabTrash, nil
	}
	st, err := lifecycle.ParseState(s)
	if err != nil {
		return "", fmt.Errorf("unknown tab %q", s)
	}
	return Tab(st), nil
}

// Query selects a page of a tab, optionally filtered by a name substring.
type Query struct {
	Tab      Tab
	Search   string
	Page     int // 1-based
	PageSize int
}

func (q Query) normalized() Query {
	if q.Tab == "" {
		q.Tab = DefaultTab
	}
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize <= 0 {
		q.PageSize = DefaultPageSize
	}
	if q.PageSize > maxPageSize {
		q.PageSize = maxPageSize
	}
	return q
}

// Page is one page of a listing plus per-tab counts over the whole catalog.
type Page struct {
	Tab        Tab          `json:"tab"`
	Page       int          `json:"page"`
	PageSize   int          `json:"page_size"`
	Total      int          `json:"total"`
	TotalPages int          `json:"total_pages"`
	Today      string       `json:"today"`
	Counts     map[Tab]int  `json:"counts"`
	Events     []Classified `json:"events"`
}
