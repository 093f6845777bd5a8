package data

import "testing"

func validSourceData() SourceData {
	return SourceData{
		Status: &SourceStatus{
			Title:    "Screen lock on",
			Summary:  "PIN is set",
			Severity: SeverityInformation,
			Enabled:  true,
		},
		Issues: []SourceIssue{
			{
				ID:          "no-biometrics",
				Title:       "Add fingerprint unlock",
				Severity:    SeverityRecommendation,
				Category:    "lockscreen",
				Dismissible: true,
				Actions: []IssueAction{
					{ID: "enroll", Label: "Set up", Resolving: true},
				},
			},
		},
	}
}

func TestSourceDataValidate(t *testing.T) {
	if err := validSourceData().Validate(); err != nil {
		t.Fatal("Expected valid: ", err)
	}

	// no status at all is fine, the source just has no self-state yet
	if err := (SourceData{}).Validate(); err != nil {
		t.Fatal("Expected empty data valid: ", err)
	}

	cases := []struct {
		desc string
		mod  func(*SourceData)
	}{
		{"status without title", func(sd *SourceData) {
			sd.Status.Title = ""
		}},
		{"status with bad severity", func(sd *SourceData) {
			sd.Status.Severity = 123
		}},
		{"issue without ID", func(sd *SourceData) {
			sd.Issues[0].ID = ""
		}},
		{"issue without title", func(sd *SourceData) {
			sd.Issues[0].Title = ""
		}},
		{"issue with unspecified severity", func(sd *SourceData) {
			sd.Issues[0].Severity = SeverityUnspecified
		}},
		{"action without label", func(sd *SourceData) {
			sd.Issues[0].Actions[0].Label = ""
		}},
		{"duplicate issue IDs", func(sd *SourceData) {
			sd.Issues = append(sd.Issues, sd.Issues[0])
		}},
	}

	for _, c := range cases {
		sd := validSourceData()
		c.mod(&sd)
		if err := sd.Validate(); err == nil {
			t.Error("Expected error: ", c.desc)
		}
	}
}

func TestSourceDataMaxSeverity(t *testing.T) {
	if (SourceData{}).MaxSeverity() != SeverityUnspecified {
		t.Error("Empty data should be unspecified")
	}

	sd := validSourceData()

	if sd.MaxSeverity() != SeverityRecommendation {
		t.Error("Expected recommendation, got: ", sd.MaxSeverity())
	}

	sd.Issues = append(sd.Issues, SourceIssue{
		ID:       "malware",
		Title:    "Harmful app found",
		Severity: SeverityCritical,
	})

	if sd.MaxSeverity() != SeverityCritical {
		t.Error("Expected critical, got: ", sd.MaxSeverity())
	}
}

func TestEventValidate(t *testing.T) {
	good := []Event{
		{Type: EventSourceStateChanged},
		{Type: EventRefreshRequested, RefreshID: "abc"},
		{Type: EventResolveSucceeded, IssueID: "i", ActionID: "a"},
		{Type: EventResolveFailed, IssueID: "i", ActionID: "a"},
		{Type: EventLocaleChanged},
		{Type: EventRebooted},
	}

	for _, e := range good {
		if err := e.Validate(); err != nil {
			t.Errorf("%v: expected valid: %v", e, err)
		}
	}

	bad := []Event{
		{},
		{Type: 123},
		{Type: EventRefreshRequested},
		{Type: EventResolveSucceeded, IssueID: "i"},
		{Type: EventResolveFailed, ActionID: "a"},
	}

	for _, e := range bad {
		if err := e.Validate(); err == nil {
			t.Errorf("%v: expected error", e)
		}
	}
}
