package data

import (
	"fmt"
	"time"
)

// RefreshReason describes what triggered a refresh. Note, these values are
// part of the wire format and should never change.
type RefreshReason int

// Valid refresh reasons
const (
	ReasonPageOpen      RefreshReason = 100
	ReasonRescanButton  RefreshReason = 200
	ReasonDeviceReboot  RefreshReason = 300
	ReasonLocaleChange  RefreshReason = 400
	ReasonCenterEnabled RefreshReason = 500
	ReasonOther         RefreshReason = 600
	ReasonPeriodic      RefreshReason = 700
)

// Valid returns true if r is a defined refresh reason
func (r RefreshReason) Valid() bool {
	switch r {
	case ReasonPageOpen, ReasonRescanButton, ReasonDeviceReboot,
		ReasonLocaleChange, ReasonCenterEnabled, ReasonOther,
		ReasonPeriodic:
		return true
	}

	return false
}

func (r RefreshReason) String() string {
	switch r {
	case ReasonPageOpen:
		return "page-open"
	case ReasonRescanButton:
		return "rescan-button"
	case ReasonDeviceReboot:
		return "device-reboot"
	case ReasonLocaleChange:
		return "locale-change"
	case ReasonCenterEnabled:
		return "center-enabled"
	case ReasonOther:
		return "other"
	case ReasonPeriodic:
		return "periodic"
	}

	return fmt.Sprintf("invalid(%v)", int(r))
}

// RequestType tells a source how hard to work on a refresh. GetData allows
// cached data; FetchFreshData requires the source to rescan.
type RequestType int

// Valid request types
const (
	RequestGetData        RequestType = 0
	RequestFetchFreshData RequestType = 1
)

func (t RequestType) String() string {
	if t == RequestFetchFreshData {
		return "fetch-fresh-data"
	}

	return "get-data"
}

// RequestType returns the request type the reason maps to. Only an explicit
// rescan forces sources to refetch.
func (r RefreshReason) RequestType() RequestType {
	if r == ReasonRescanButton {
		return RequestFetchFreshData
	}

	return RequestGetData
}

// RefreshRequest is broadcast to every configured source when a refresh
// starts. Sources must push data with an EventRefreshRequested carrying ID
// before Deadline.
type RefreshRequest struct {
	ID       string        `json:"id"`
	Type     RequestType   `json:"type"`
	Reason   RefreshReason `json:"reason"`
	Deadline time.Time     `json:"deadline"`
}

func (r RefreshRequest) String() string {
	return fmt.Sprintf("RF:%v %v %v", r.ID, r.Type, r.Reason)
}

// Validate checks a refresh request for values sources would reject
func (r RefreshRequest) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("refresh ID must be set")
	}

	if !r.Reason.Valid() {
		return fmt.Errorf("refresh reason invalid: %v", int(r.Reason))
	}

	return nil
}
