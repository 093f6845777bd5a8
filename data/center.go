package data

import (
	"fmt"
	"hash/crc32"
)

// RefreshStatus describes whether the center is currently waiting on sources
type RefreshStatus int

// Valid refresh statuses
const (
	RefreshIdle       RefreshStatus = 0
	RefreshDataFetch  RefreshStatus = 1
	RefreshFullRescan RefreshStatus = 2
)

func (r RefreshStatus) String() string {
	switch r {
	case RefreshIdle:
		return "idle"
	case RefreshDataFetch:
		return "data-fetch"
	case RefreshFullRescan:
		return "full-rescan"
	}

	return fmt.Sprintf("invalid(%v)", int(r))
}

// CenterStatus is the aggregated top-line status of the center
type CenterStatus struct {
	Title      string          `json:"title"`
	Summary    string          `json:"summary,omitempty"`
	Severity   OverallSeverity `json:"severity"`
	Refreshing RefreshStatus   `json:"refreshing,omitempty"`
}

func (s CenterStatus) String() string {
	ret := fmt.Sprintf("S:%v T:%v", s.Severity, s.Title)

	if s.Refreshing != RefreshIdle {
		ret += " R:" + s.Refreshing.String()
	}

	return ret
}

// Entry is one source's row in the aggregated view. An entry exists for
// every configured source whether or not it has reported yet.
type Entry struct {
	SourceID string        `json:"sourceId"`
	Title    string        `json:"title"`
	Summary  string        `json:"summary,omitempty"`
	Severity SeverityLevel `json:"severity"`
	Enabled  bool          `json:"enabled"`
}

func (e Entry) String() string {
	return fmt.Sprintf("E:%v S:%v", e.SourceID, e.Severity)
}

// EntryGroup is a titled collection of entries. Group severity is the max of
// its member entries.
type EntryGroup struct {
	ID       string        `json:"id"`
	Title    string        `json:"title"`
	Summary  string        `json:"summary,omitempty"`
	Severity SeverityLevel `json:"severity"`
	Entries  []Entry       `json:"entries,omitempty"`
}

// StaticEntry is an informational row that never carries a severity
type StaticEntry struct {
	Title   string `json:"title"`
	Summary string `json:"summary,omitempty"`
}

// CenterIssue is a source issue as presented by the center -- same content,
// plus the owning source so actions can be routed back.
type CenterIssue struct {
	ID          string        `json:"id"`
	SourceID    string        `json:"sourceId"`
	Title       string        `json:"title"`
	Summary     string        `json:"summary,omitempty"`
	Severity    SeverityLevel `json:"severity"`
	Dismissible bool          `json:"dismissible,omitempty"`
	Actions     []IssueAction `json:"actions,omitempty"`
}

func (i CenterIssue) String() string {
	return fmt.Sprintf("I:%v/%v S:%v T:%v", i.SourceID, i.ID, i.Severity, i.Title)
}

// Key returns the dismissal key for the issue. Dismissal state is keyed on
// source plus issue ID so two sources can use the same issue ID.
func (i CenterIssue) Key() string {
	return i.SourceID + ":" + i.ID
}

// CenterData is the complete aggregated view: status, live issues, grouped
// entries, and static entries
type CenterData struct {
	Status        CenterStatus  `json:"status"`
	Issues        []CenterIssue `json:"issues,omitempty"`
	Groups        []EntryGroup  `json:"groups,omitempty"`
	StaticEntries []StaticEntry `json:"staticEntries,omitempty"`
}

func (cd CenterData) String() string {
	ret := cd.Status.String()
	ret += fmt.Sprintf(" issues:%v groups:%v", len(cd.Issues), len(cd.Groups))

	for _, i := range cd.Issues {
		ret += "\n  " + i.String()
	}

	return ret
}

// Hash returns a CRC of the canonical wire encoding
func (cd CenterData) Hash() uint32 {
	return crc32.ChecksumIEEE(cd.ToPb())
}

// FindIssue looks up an issue by source and ID
func (cd CenterData) FindIssue(sourceID, issueID string) (CenterIssue, bool) {
	for _, i := range cd.Issues {
		if i.SourceID == sourceID && i.ID == issueID {
			return i, true
		}
	}

	return CenterIssue{}, false
}

// FindEntry looks up the entry for a source
func (cd CenterData) FindEntry(sourceID string) (Entry, bool) {
	for _, g := range cd.Groups {
		for _, e := range g.Entries {
			if e.SourceID == sourceID {
				return e, true
			}
		}
	}

	return Entry{}, false
}
