package main

import (
	"bytes"
	"strings"
	"testing"

	"eventdesk/internal/catalog"
	"eventdesk/internal/lifecycle"
	"eventdesk/internal/model"
)

func TestRunClassify(t *testing.T) {
	cases := []struct {
		flags flagConfig
		want  string
	}{
		{flagConfig{classify: "15/08/2025,15/08/2025", today: "10/08/2025"}, "Live"},
		{flagConfig{classify: "15/08/2025, 20/08/2025", today: "15/08/2025"}, "Running"},
		{flagConfig{classify: "15/08/2025,20/08/2025", today: "21/08/2025"}, "Past"},
		{flagConfig{classify: ",20/08/2025", today: "10/08/2025"}, "Draft"},
		{flagConfig{classify: "15/08/2025,20/08/2025", today: "10/08/2025", draft: true}, "Draft"},
	}
	for _, tc := range cases {
		var buf bytes.Buffer
		if err := runClassify(&buf, tc.flags); err != nil {
			t.Fatalf("%+v: %v", tc.flags, err)
		}
		if got := strings.TrimSpace(buf.String()); got != tc.want {
			t.Errorf("%+v: got %q, want %q", tc.flags, got, tc.want)
		}
	}
}

func TestRunClassifyErrors(t *testing.T) {
	bad := []flagConfig{
		{classify: "15/08/2025"},
		{classify: "15/08/2025,20/08/2025", today: "whenever"},
		{classify: "15/08/2025,20/08/2025", timezone: "Nowhere/Town"},
	}
	for _, f := range bad {
		if err := runClassify(&bytes.Buffer{}, f); err == nil {
			t.Errorf("%+v: expected error", f)
		}
	}
}

func TestPrintListing(t *testing.T) {
	cat := catalog.New()
	cat.Replace(catalog.FileSourceID, []model.Event{
		{ID: "a", Name: "Hepatology Update", ShortName: "aighu2025", StartDate: "01/08/2025", EndDate: "03/08/2025"},
		{ID: "b", Name: "Binned", StartDate: "01/08/2025", EndDate: "03/08/2025", Trashed: true},
	})
	clock, err := clockFor("16/08/2025", nil)
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	printListing(&buf, cat, lifecycle.NewClassifier(nil, clock))
	out := buf.String()
	if !strings.Contains(out, "Completed") || !strings.Contains(out, "aighu2025") || !strings.Contains(out, "Trash") {
		t.Fatalf("unexpected listing:\n%s", out)
	}
}
