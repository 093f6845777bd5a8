package store

import (
	"fmt"

	"golang.org/x/exp/slices"

	"github.com/safetycenter/safetycenter/data"
)

// buildCenterData computes the aggregated center view from the configured
// sources, the latest data each source has pushed, and the set of dismissed
// issue keys. Dismissed issues are excluded from both the issue list and the
// overall severity.
func buildCenterData(config Config, sourceData map[string]data.SourceData,
	dismissed map[string]bool, refreshing data.RefreshStatus) data.CenterData {

	var ret data.CenterData

	overall := data.OverallUnknown
	reported := false

	// stable source ordering comes from the config
	order := make(map[string]int)

	for _, g := range config.Groups {
		group := data.EntryGroup{
			ID:       g.ID,
			Title:    g.Title,
			Summary:  g.Summary,
			Severity: data.SeverityUnspecified,
		}

		for _, s := range g.Sources {
			order[s.ID] = len(order)

			entry := data.Entry{
				SourceID: s.ID,
				Title:    s.Title,
				Summary:  s.Summary,
				Severity: data.SeverityUnspecified,
				Enabled:  true,
			}

			sd, ok := sourceData[s.ID]
			if ok {
				reported = true
				if sd.Status != nil {
					entry.Title = sd.Status.Title
					entry.Summary = sd.Status.Summary
					entry.Severity = sd.Status.Severity
					entry.Enabled = sd.Status.Enabled
					if o := sd.Status.Severity.Overall(); o > overall {
						overall = o
					}
				}

				for _, issue := range sd.Issues {
					ci := data.CenterIssue{
						ID:          issue.ID,
						SourceID:    s.ID,
						Title:       issue.Title,
						Summary:     issue.Summary,
						Severity:    issue.Severity,
						Dismissible: issue.Dismissible,
						Actions:     issue.Actions,
					}

					if dismissed[ci.Key()] {
						continue
					}

					ret.Issues = append(ret.Issues, ci)

					if issue.Severity > entry.Severity {
						entry.Severity = issue.Severity
					}

					if o := issue.Severity.Overall(); o > overall {
						overall = o
					}
				}
			}

			if entry.Severity > group.Severity {
				group.Severity = entry.Severity
			}

			group.Entries = append(group.Entries, entry)
		}

		ret.Groups = append(ret.Groups, group)
	}

	if reported && overall < data.OverallOK {
		overall = data.OverallOK
	}

	// severity first, then registry order
	slices.SortStableFunc(ret.Issues, func(a, b data.CenterIssue) int {
		if a.Severity != b.Severity {
			return int(b.Severity) - int(a.Severity)
		}
		return order[a.SourceID] - order[b.SourceID]
	})

	for _, s := range config.Static {
		ret.StaticEntries = append(ret.StaticEntries,
			data.StaticEntry{Title: s.Title, Summary: s.Summary})
	}

	ret.Status = overallStatus(overall, len(ret.Issues))
	ret.Status.Refreshing = refreshing

	return ret
}

// overallStatus fills in the user facing title and summary for the top-line
// severity.
func overallStatus(overall data.OverallSeverity, openIssues int) data.CenterStatus {
	ret := data.CenterStatus{Severity: overall}

	switch overall {
	case data.OverallOK:
		ret.Title = "Looks good"
		ret.Summary = "No problems found"
	case data.OverallRecommendation:
		ret.Title = "You may be at risk"
		ret.Summary = issueCountSummary(openIssues)
	case data.OverallCritical:
		ret.Title = "You are at risk"
		ret.Summary = issueCountSummary(openIssues)
	default:
		ret.Title = "Status unknown"
		ret.Summary = "Waiting for safety sources to report"
	}

	return ret
}

func issueCountSummary(n int) string {
	if n == 1 {
		return "1 issue found"
	}
	return fmt.Sprintf("%v issues found", n)
}
