package data

import (
	"fmt"
	"time"
)

// TelemetryKind names the kinds of telemetry records the store emits
type TelemetryKind string

// Valid telemetry kinds
const (
	// TelemetrySourceState is recorded on every source data push
	TelemetrySourceState TelemetryKind = "source_state_collected"
	// TelemetrySystemEvent is recorded when a refresh starts, each source
	// responds, and the refresh completes or times out
	TelemetrySystemEvent TelemetryKind = "system_event"
	// TelemetryInteraction is recorded on user-driven operations like
	// dismissing an issue or executing an action
	TelemetryInteraction TelemetryKind = "interaction"
)

// Telemetry results
const (
	ResultSuccess = "success"
	ResultTimeout = "timeout"
	ResultError   = "error"
)

// Telemetry is one structured telemetry record. Which fields are populated
// depends on Kind.
type Telemetry struct {
	Time            time.Time     `json:"time"`
	Kind            TelemetryKind `json:"kind"`
	Source          string        `json:"source,omitempty"`
	EventType       EventType     `json:"eventType,omitempty"`
	Reason          RefreshReason `json:"reason,omitempty"`
	Result          string        `json:"result,omitempty"`
	Severity        SeverityLevel `json:"severity,omitempty"`
	OpenIssues      int           `json:"openIssues,omitempty"`
	DismissedIssues int           `json:"dismissedIssues,omitempty"`
	DataChanged     bool          `json:"dataChanged,omitempty"`
	Duration        time.Duration `json:"duration,omitempty"`
}

// Telemetries is an array of Telemetry
type Telemetries []Telemetry

// TelemetryQuery selects telemetry records. An empty Kind matches all
// kinds; a zero Since matches all time.
type TelemetryQuery struct {
	Kind  TelemetryKind `json:"kind,omitempty"`
	Since time.Time     `json:"since,omitempty"`
}

func (t Telemetry) String() string {
	ret := fmt.Sprintf("TM:%v", t.Kind)

	if t.Source != "" {
		ret += " src:" + t.Source
	}

	if t.Result != "" {
		ret += " res:" + t.Result
	}

	if t.DataChanged {
		ret += " changed"
	}

	return ret
}
