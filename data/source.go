package data

import (
	"fmt"
	"hash/crc32"
)

// SourceStatus is the top-line status a safety source reports for itself
type SourceStatus struct {
	Title    string        `json:"title"`
	Summary  string        `json:"summary,omitempty"`
	Severity SeverityLevel `json:"severity"`
	Enabled  bool          `json:"enabled"`
}

func (s SourceStatus) String() string {
	return fmt.Sprintf("S:%v T:%v", s.Severity, s.Title)
}

// Validate checks a status for values the center will reject
func (s SourceStatus) Validate() error {
	if s.Title == "" {
		return fmt.Errorf("status title must be set")
	}

	if !s.Severity.Valid() {
		return fmt.Errorf("status severity invalid: %v", int(s.Severity))
	}

	return nil
}

// IssueAction is an action a user can take to address an issue. Resolving
// actions are expected to fix the issue at the source and report back with a
// resolve event.
type IssueAction struct {
	ID             string `json:"id"`
	Label          string `json:"label"`
	Resolving      bool   `json:"resolving,omitempty"`
	SuccessMessage string `json:"successMessage,omitempty"`
}

// Validate checks an action for values the center will reject
func (a IssueAction) Validate() error {
	if a.ID == "" {
		return fmt.Errorf("action ID must be set")
	}

	if a.Label == "" {
		return fmt.Errorf("action label must be set")
	}

	return nil
}

// SourceIssue is a single problem a source wants surfaced to the user.
// ID must be stable for the lifetime of the problem -- dismissal state is
// keyed on it.
type SourceIssue struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Summary     string        `json:"summary,omitempty"`
	Severity    SeverityLevel `json:"severity"`
	Category    string        `json:"category,omitempty"`
	Dismissible bool          `json:"dismissible,omitempty"`
	Actions     []IssueAction `json:"actions,omitempty"`
}

func (i SourceIssue) String() string {
	return fmt.Sprintf("I:%v S:%v T:%v", i.ID, i.Severity, i.Title)
}

// Validate checks an issue for values the center will reject
func (i SourceIssue) Validate() error {
	if i.ID == "" {
		return fmt.Errorf("issue ID must be set")
	}

	if i.Title == "" {
		return fmt.Errorf("issue title must be set")
	}

	if !i.Severity.Valid() {
		return fmt.Errorf("issue %v severity invalid: %v", i.ID, int(i.Severity))
	}

	if i.Severity == SeverityUnspecified {
		return fmt.Errorf("issue %v severity must not be unspecified", i.ID)
	}

	for _, a := range i.Actions {
		if err := a.Validate(); err != nil {
			return fmt.Errorf("issue %v: %w", i.ID, err)
		}
	}

	return nil
}

// SourceData is everything a safety source reports in one push: an optional
// status plus any number of issues. A nil Status means the source has nothing
// to say about its own state yet (the center shows its entry as unspecified).
type SourceData struct {
	Status *SourceStatus `json:"status,omitempty"`
	Issues []SourceIssue `json:"issues,omitempty"`
}

func (sd SourceData) String() string {
	ret := ""

	if sd.Status != nil {
		ret += sd.Status.String() + " "
	}

	ret += fmt.Sprintf("issues:%v", len(sd.Issues))

	for _, i := range sd.Issues {
		ret += "\n  " + i.String()
	}

	return ret
}

// Validate checks source data for values the center will reject. Issue IDs
// must be unique within one push.
func (sd SourceData) Validate() error {
	if sd.Status != nil {
		if err := sd.Status.Validate(); err != nil {
			return err
		}
	}

	seen := make(map[string]bool)

	for _, i := range sd.Issues {
		if err := i.Validate(); err != nil {
			return err
		}

		if seen[i.ID] {
			return fmt.Errorf("duplicate issue ID: %v", i.ID)
		}

		seen[i.ID] = true
	}

	return nil
}

// MaxSeverity returns the highest severity found in the data, considering
// both the status and all issues
func (sd SourceData) MaxSeverity() SeverityLevel {
	ret := SeverityUnspecified

	if sd.Status != nil && sd.Status.Severity > ret {
		ret = sd.Status.Severity
	}

	for _, i := range sd.Issues {
		if i.Severity > ret {
			ret = i.Severity
		}
	}

	return ret
}

// Hash returns a CRC of the canonical wire encoding. Deeply equal values
// always hash the same.
func (sd SourceData) Hash() uint32 {
	return crc32.ChecksumIEEE(sd.ToPb())
}
