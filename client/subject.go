package client

import "fmt"

// create subject strings for the various types of messages

// SubjectSourcePush constructs the subject a source pushes data on
func SubjectSourcePush(sourceID string) string {
	return fmt.Sprintf("src.%v", sourceID)
}

// SubjectSourceGet constructs the subject for reading back source data
func SubjectSourceGet(sourceID string) string {
	return fmt.Sprintf("src.%v.get", sourceID)
}

// SubjectAllSourcePush provides the subject for pushes from any source
func SubjectAllSourcePush() string {
	return "src.*"
}

// SubjectAllSourceGet provides the subject for get requests for any source
func SubjectAllSourceGet() string {
	return "src.*.get"
}

// SubjectRefresh constructs the subject a source receives refresh
// broadcasts on
func SubjectRefresh(sourceID string) string {
	return fmt.Sprintf("refresh.%v", sourceID)
}

// SubjectAction constructs the subject a source receives action executions on
func SubjectAction(sourceID string) string {
	return fmt.Sprintf("action.%v", sourceID)
}

// SubjectTelemetry constructs the subject telemetry records are published on
func SubjectTelemetry(kind string) string {
	return fmt.Sprintf("t.%v", kind)
}

// Fixed center subjects
const (
	SubjectCenterData      = "center.data"
	SubjectCenterUpdated   = "center.updated"
	SubjectCenterError     = "center.error"
	SubjectCenterRefresh   = "center.refresh"
	SubjectCenterDismiss   = "center.dismiss"
	SubjectCenterExecute   = "center.execute"
	SubjectCenterEnabled   = "center.ctl.enabled"
	SubjectCenterSupported = "center.ctl.supported"
	SubjectCenterInstance  = "center.ctl.instance"
	SubjectCenterSetState  = "center.ctl.set"
	SubjectTelemetryQuery  = "t.query"
)
