package data

import "fmt"

// EventType describes why a source is pushing data. Note, these values are
// part of the wire format and should never change.
type EventType int

// Valid event types
const (
	// EventSourceStateChanged is an unsolicited push because something
	// changed at the source
	EventSourceStateChanged EventType = 100
	// EventRefreshRequested is a response to a refresh broadcast and must
	// carry the RefreshID from the request
	EventRefreshRequested EventType = 200
	// EventResolveSucceeded reports a resolving action completed and must
	// carry IssueID and ActionID
	EventResolveSucceeded EventType = 300
	// EventResolveFailed reports a resolving action failed and must carry
	// IssueID and ActionID
	EventResolveFailed EventType = 400
	// EventLocaleChanged is a push triggered by a locale change
	EventLocaleChanged EventType = 500
	// EventRebooted is a push triggered by a reboot
	EventRebooted EventType = 600
)

// Valid returns true if t is a defined event type
func (t EventType) Valid() bool {
	switch t {
	case EventSourceStateChanged, EventRefreshRequested,
		EventResolveSucceeded, EventResolveFailed,
		EventLocaleChanged, EventRebooted:
		return true
	}

	return false
}

func (t EventType) String() string {
	switch t {
	case EventSourceStateChanged:
		return "source-state-changed"
	case EventRefreshRequested:
		return "refresh-requested"
	case EventResolveSucceeded:
		return "resolve-succeeded"
	case EventResolveFailed:
		return "resolve-failed"
	case EventLocaleChanged:
		return "locale-changed"
	case EventRebooted:
		return "rebooted"
	}

	return fmt.Sprintf("invalid(%v)", int(t))
}

// Event describes why a source data push is happening. Every push carries
// one.
type Event struct {
	Type      EventType `json:"type"`
	RefreshID string    `json:"refreshId,omitempty"`
	IssueID   string    `json:"issueId,omitempty"`
	ActionID  string    `json:"actionId,omitempty"`
}

func (e Event) String() string {
	ret := "EV:" + e.Type.String()

	if e.RefreshID != "" {
		ret += " R:" + e.RefreshID
	}

	if e.IssueID != "" {
		ret += " I:" + e.IssueID
	}

	return ret
}

// Validate checks an event for values the center will reject
func (e Event) Validate() error {
	if !e.Type.Valid() {
		return fmt.Errorf("event type invalid: %v", int(e.Type))
	}

	if e.Type == EventRefreshRequested && e.RefreshID == "" {
		return fmt.Errorf("refresh-requested event must carry a refresh ID")
	}

	if e.Type == EventResolveSucceeded || e.Type == EventResolveFailed {
		if e.IssueID == "" || e.ActionID == "" {
			return fmt.Errorf("resolve event must carry issue and action IDs")
		}
	}

	return nil
}
