package catalog

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"eventdesk/internal/lifecycle"
	"eventdesk/internal/model"
)

func fixedClassifier(t *testing.T, dmy string) lifecycle.Classifier {
	t.Helper()
	p := lifecycle.ParseInput(dmy)
	if !p.OK {
		t.Fatalf("bad fixture %q", dmy)
	}
	loc, _ := lifecycle.LoadLocation("")
	return lifecycle.NewClassifier(loc, lifecycle.FixedClock(p.Instant))
}

func fixtureEvents() []model.Event {
	return []model.Event{
		{ID: "past", Name: "Hepatology Update", StartDate: "01/08/2025", EndDate: "03/08/2025"},
		{ID: "running", Name: "Cardiology Conference", StartDate: "15/08/2025", EndDate: "20/08/2025"},
		{ID: "live", Name: "Endoscopy Workshop", StartDate: "2025-09-01", EndDate: "2025-09-02"},
		{ID: "draft", Name: "Nursing Summit", StartDate: "10/10/2025", EndDate: "11/10/2025", Draft: true},
		{ID: "undated", Name: "Cardiology Webinar", StartDate: "", EndDate: ""},
		{ID: "trash", Name: "Old Cardiology Meet", StartDate: "15/08/2025", EndDate: "16/08/2025", Trashed: true},
	}
}

func ids(evs []Classified) []string {
	out := make([]string, len(evs))
	for i, e := range evs {
		out[i] = e.ID
	}
	return out
}

func TestListTabs(t *testing.T) {
	cat := New()
	cat.Replace(FileSourceID, fixtureEvents())
	cl := fixedClassifier(t, "16/08/2025")

	cases := []struct {
		tab  Tab
		want []string
	}{
		{TabRunning, []string{"running"}},
		{TabLive, []string{"live"}},
		{TabPast, []string{"past"}},
		{TabDraft, []string{"draft", "undated"}},
		{TabAll, []string{"past", "running", "live", "draft", "undated"}},
		{TabTrash, []string{"trash"}},
	}
	for _, tc := range cases {
		page := cat.List(Query{Tab: tc.tab}, cl)
		if got := ids(page.Events); fmt.Sprint(got) != fmt.Sprint(tc.want) {
			t.Errorf("tab %s: got %v, want %v", tc.tab, got, tc.want)
		}
	}

	page := cat.List(Query{}, cl)
	if page.Tab != TabLive {
		t.Fatalf("default tab = %s", page.Tab)
	}
	wantCounts := map[Tab]int{TabAll: 5, TabRunning: 1, TabLive: 1, TabPast: 1, TabDraft: 2, TabTrash: 1}
	for tab, n := range wantCounts {
		if page.Counts[tab] != n {
			t.Errorf("count[%s] = %d, want %d", tab, page.Counts[tab], n)
		}
	}
	if page.Today != "2025-08-16" {
		t.Fatalf("today = %q", page.Today)
	}
}

func TestListLabelsPastAsCompleted(t *testing.T) {
	cat := New()
	cat.Replace(FileSourceID, fixtureEvents())
	page := cat.List(Query{Tab: TabPast}, fixedClassifier(t, "16/08/2025"))
	if len(page.Events) != 1 || page.Events[0].State != lifecycle.Past || page.Events[0].Label != "Completed" {
		t.Fatalf("unexpected page: %+v", page.Events)
	}
}

func TestListSearchAndPaging(t *testing.T) {
	cat := New()
	var evs []model.Event
	for i := 0; i < 23; i++ {
		evs = append(evs, model.Event{
			ID:        fmt.Sprintf("e%02d", i),
			Name:      fmt.Sprintf("Cardiology Session %d", i),
			StartDate: "01/09/2025",
			EndDate:   "02/09/2025",
		})
	}
	evs = append(evs, model.Event{ID: "other", Name: "Radiology", StartDate: "01/09/2025", EndDate: "02/09/2025"})
	cat.Replace(FileSourceID, evs)
	cl := fixedClassifier(t, "16/08/2025")

	page := cat.List(Query{Tab: TabLive, Search: "CARDIO", Page: 3}, cl)
	if page.Total != 23 || page.TotalPages != 3 || len(page.Events) != 3 {
		t.Fatalf("page 3: total=%d pages=%d len=%d", page.Total, page.TotalPages, len(page.Events))
	}
	if page.Events[0].ID != "e20" {
		t.Fatalf("first on page 3 = %s", page.Events[0].ID)
	}

	beyond := cat.List(Query{Tab: TabLive, Page: 9, PageSize: 5}, cl)
	if len(beyond.Events) != 0 || beyond.Total != 24 || beyond.TotalPages != 5 {
		t.Fatalf("beyond last page: %+v", beyond)
	}
}

func TestReplaceAndGet(t *testing.T) {
	cat := New()
	cat.Replace("a", []model.Event{{ID: "a1"}, {ID: "a2"}})
	cat.Replace("b", []model.Event{{ID: "b1"}})

	ev, err := cat.Get("a2")
	if err != nil || ev.SourceID != "a" {
		t.Fatalf("Get(a2) = %+v, %v", ev, err)
	}

	cat.Replace("a", []model.Event{{ID: "a3"}})
	if _, err := cat.Get("a1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("a1 should be gone, err=%v", err)
	}
	if cat.Len() != 2 {
		t.Fatalf("Len = %d", cat.Len())
	}

	cat.Replace("b", nil)
	all := cat.All()
	if len(all) != 1 || all[0].ID != "a3" {
		t.Fatalf("All = %+v", all)
	}
}

func TestParseTab(t *testing.T) {
	cases := []struct {
		in      string
		want    Tab
		wantErr bool
	}{
		{"", TabLive, false},
		{"running", TabRunning, false},
		{"Completed", TabPast, false},
		{"ALL", TabAll, false},
		{"trash", TabTrash, false},
		{"archive", "", true},
	}
	for _, tc := range cases {
		got, err := ParseTab(tc.in)
		if (err != nil) != tc.wantErr || got != tc.want {
			t.Errorf("ParseTab(%q) = %q, %v", tc.in, got, err)
		}
	}
}

func TestListIsStableAcrossDays(t *testing.T) {
	cat := New()
	cat.Replace(FileSourceID, fixtureEvents())
	loc, _ := lifecycle.LoadLocation("")
	cl := lifecycle.NewClassifier(loc, lifecycle.FixedClock(time.Date(2025, 8, 21, 12, 0, 0, 0, time.UTC)))
	page := cat.List(Query{Tab: TabPast}, cl)
	if got := ids(page.Events); fmt.Sprint(got) != "[past running]" {
		t.Fatalf("past after end = %v", got)
	}
}
