package client

import (
	"fmt"

	"github.com/nats-io/nats.go"
	"github.com/safetycenter/safetycenter/data"
)

// SendSourceData pushes safety data for a source to the center. The event
// explains why the push is happening; refresh responses must carry the
// refresh ID from the broadcast. The caller keeps ownership of sd -- the
// center stores its own copy.
// Requires a send credential scoped to sourceID (or unscoped).
func SendSourceData(nc *nats.Conn, creds, sourceID string, sd data.SourceData, ev data.Event) error {
	up := data.SourceUpdate{Source: sourceID, Data: sd, Event: ev}

	if err := up.Validate(); err != nil {
		return err
	}

	_, err := request(nc, SubjectSourcePush(sourceID), creds, up.ToPb())
	if err != nil {
		return fmt.Errorf("send source data: %w", err)
	}

	return nil
}

// GetSourceData reads back the last data the center stored for a source.
// Returns data.ErrNotFound if the source has never reported.
// Requires a send credential.
func GetSourceData(nc *nats.Conn, creds, sourceID string) (data.SourceData, error) {
	resp, err := request(nc, SubjectSourceGet(sourceID), creds, nil)
	if err != nil {
		return data.SourceData{}, err
	}

	return data.PbDecodeSourceData(resp)
}
