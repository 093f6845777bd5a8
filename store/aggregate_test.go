package store

import (
	"testing"

	"github.com/safetycenter/safetycenter/data"
)

func testConfig() Config {
	return Config{
		Groups: []GroupConfig{
			{
				ID:    "device",
				Title: "Device safety",
				Sources: []SourceConfig{
					{ID: "lock", Title: "Screen lock", Summary: "No data yet"},
					{ID: "update", Title: "Security update"},
				},
			},
		},
		Static: []StaticConfig{
			{Title: "About", Summary: "Device safety status"},
		},
	}
}

func TestAggregateNoData(t *testing.T) {
	cd := buildCenterData(testConfig(), nil, nil, data.RefreshIdle)

	if cd.Status.Severity != data.OverallUnknown {
		t.Error("Expected unknown severity, got: ", cd.Status.Severity)
	}

	if len(cd.Groups) != 1 || len(cd.Groups[0].Entries) != 2 {
		t.Fatal("Expected entries for every configured source")
	}

	e := cd.Groups[0].Entries[0]
	if e.SourceID != "lock" || e.Title != "Screen lock" ||
		e.Summary != "No data yet" || !e.Enabled {
		t.Error("Entry should fall back to config values: ", e)
	}

	if e.Severity != data.SeverityUnspecified {
		t.Error("Entry with no data should be unspecified")
	}

	if len(cd.StaticEntries) != 1 || cd.StaticEntries[0].Title != "About" {
		t.Error("Static entries missing")
	}
}

func TestAggregateAllInformational(t *testing.T) {
	sd := map[string]data.SourceData{
		"lock": {Status: &data.SourceStatus{Title: "Lock on",
			Severity: data.SeverityInformation, Enabled: true}},
	}

	cd := buildCenterData(testConfig(), sd, nil, data.RefreshIdle)

	// information never raises the overall level above OK
	if cd.Status.Severity != data.OverallOK {
		t.Error("Expected OK, got: ", cd.Status.Severity)
	}

	e, ok := cd.FindEntry("lock")
	if !ok || e.Title != "Lock on" {
		t.Error("Entry should come from source status")
	}
}

func TestAggregateIssueSeverity(t *testing.T) {
	sd := map[string]data.SourceData{
		"lock": {
			Status: &data.SourceStatus{Title: "Lock off",
				Severity: data.SeverityRecommendation, Enabled: true},
			Issues: []data.SourceIssue{
				{ID: "set-lock", Title: "Set a screen lock",
					Severity: data.SeverityRecommendation, Dismissible: true},
			},
		},
		"update": {
			Issues: []data.SourceIssue{
				{ID: "malware", Title: "Harmful app found",
					Severity: data.SeverityCritical},
			},
		},
	}

	cd := buildCenterData(testConfig(), sd, nil, data.RefreshIdle)

	if cd.Status.Severity != data.OverallCritical {
		t.Error("Expected critical, got: ", cd.Status.Severity)
	}

	if len(cd.Issues) != 2 {
		t.Fatal("Expected 2 issues, got: ", len(cd.Issues))
	}

	// sorted by severity, critical first
	if cd.Issues[0].ID != "malware" || cd.Issues[0].SourceID != "update" {
		t.Error("Issues not sorted by severity: ", cd.Issues)
	}

	if cd.Groups[0].Severity != data.SeverityCritical {
		t.Error("Group severity should be max of entries")
	}

	if cd.Status.Summary != "2 issues found" {
		t.Error("Unexpected summary: ", cd.Status.Summary)
	}
}

func TestAggregateDismissed(t *testing.T) {
	sd := map[string]data.SourceData{
		"lock": {
			Issues: []data.SourceIssue{
				{ID: "set-lock", Title: "Set a screen lock",
					Severity: data.SeverityRecommendation, Dismissible: true},
			},
		},
	}

	dismissed := map[string]bool{"lock:set-lock": true}

	cd := buildCenterData(testConfig(), sd, dismissed, data.RefreshIdle)

	if len(cd.Issues) != 0 {
		t.Fatal("Dismissed issue still visible")
	}

	// dismissed issues do not count against the overall severity
	if cd.Status.Severity != data.OverallOK {
		t.Error("Expected OK, got: ", cd.Status.Severity)
	}
}

func TestAggregateRefreshing(t *testing.T) {
	cd := buildCenterData(testConfig(), nil, nil, data.RefreshFullRescan)

	if cd.Status.Refreshing != data.RefreshFullRescan {
		t.Error("Refresh status not carried: ", cd.Status.Refreshing)
	}
}

func TestAggregateDisabledEntry(t *testing.T) {
	sd := map[string]data.SourceData{
		"lock": {Status: &data.SourceStatus{Title: "Lock control off",
			Severity: data.SeverityUnspecified, Enabled: false}},
	}

	cd := buildCenterData(testConfig(), sd, nil, data.RefreshIdle)

	e, _ := cd.FindEntry("lock")
	if e.Enabled {
		t.Error("Entry should report the source disabled state")
	}
}
