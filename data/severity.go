package data

import "fmt"

// SeverityLevel describes how severe a source considers its current status or
// an issue it is reporting. Note, these values are part of the wire format
// and should never change.
type SeverityLevel int

// Valid source severity levels
const (
	SeverityUnspecified    SeverityLevel = 100
	SeverityInformation    SeverityLevel = 200
	SeverityRecommendation SeverityLevel = 300
	SeverityCritical       SeverityLevel = 400
)

// Valid returns true if l is a defined severity level
func (l SeverityLevel) Valid() bool {
	switch l {
	case SeverityUnspecified, SeverityInformation,
		SeverityRecommendation, SeverityCritical:
		return true
	}

	return false
}

func (l SeverityLevel) String() string {
	switch l {
	case SeverityUnspecified:
		return "unspecified"
	case SeverityInformation:
		return "information"
	case SeverityRecommendation:
		return "recommendation"
	case SeverityCritical:
		return "critical"
	}

	return fmt.Sprintf("invalid(%v)", int(l))
}

// OverallSeverity is the severity of the aggregated center status. It lives
// in a separate value space from source severity so the two are never mixed
// up on the wire.
type OverallSeverity int

// Valid overall severity levels
const (
	OverallUnknown        OverallSeverity = 1000
	OverallOK             OverallSeverity = 1100
	OverallRecommendation OverallSeverity = 1200
	OverallCritical       OverallSeverity = 1300
)

// Valid returns true if o is a defined overall severity level
func (o OverallSeverity) Valid() bool {
	switch o {
	case OverallUnknown, OverallOK, OverallRecommendation, OverallCritical:
		return true
	}

	return false
}

func (o OverallSeverity) String() string {
	switch o {
	case OverallUnknown:
		return "unknown"
	case OverallOK:
		return "ok"
	case OverallRecommendation:
		return "recommendation"
	case OverallCritical:
		return "critical"
	}

	return fmt.Sprintf("invalid(%v)", int(o))
}

// Overall maps a source severity to the overall severity it contributes to
// the aggregated status. Unspecified and Information never raise the overall
// level above OK.
func (l SeverityLevel) Overall() OverallSeverity {
	switch l {
	case SeverityRecommendation:
		return OverallRecommendation
	case SeverityCritical:
		return OverallCritical
	}

	return OverallOK
}
