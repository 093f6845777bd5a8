package data

import "fmt"

// SourceUpdate is the envelope a source sends on every push: which source it
// is, the data, and the event explaining why
type SourceUpdate struct {
	Source string     `json:"source"`
	Data   SourceData `json:"data"`
	Event  Event      `json:"event"`
}

func (u SourceUpdate) String() string {
	return fmt.Sprintf("U:%v %v\n%v", u.Source, u.Event, u.Data)
}

// Validate checks the update envelope and everything in it
func (u SourceUpdate) Validate() error {
	if u.Source == "" {
		return fmt.Errorf("update source must be set")
	}

	if err := u.Event.Validate(); err != nil {
		return err
	}

	return u.Data.Validate()
}

// ErrorDetail is published to error listeners when the center hits a problem
// it wants to surface: a refresh timeout, a rejected push, etc.
type ErrorDetail struct {
	Message   string `json:"message"`
	Source    string `json:"source,omitempty"`
	RefreshID string `json:"refreshId,omitempty"`
}

func (e ErrorDetail) String() string {
	ret := "ERR:" + e.Message

	if e.Source != "" {
		ret += " src:" + e.Source
	}

	return ret
}
