package client

import (
	"fmt"
	"log"

	"github.com/nats-io/nats.go"
	"github.com/safetycenter/safetycenter/data"
)

// RefreshSources asks the center to broadcast a refresh request to every
// configured source and returns the refresh ID. The reason is validated
// before anything is sent; an invalid reason never reaches the store.
// Requires a manage credential.
func RefreshSources(nc *nats.Conn, creds string, reason data.RefreshReason) (string, error) {
	if !reason.Valid() {
		return "", fmt.Errorf("refresh reason invalid: %v", int(reason))
	}

	resp, err := request(nc, SubjectCenterRefresh, creds,
		[]byte(fmt.Sprintf("%v", int(reason))))
	if err != nil {
		return "", err
	}

	return string(resp), nil
}

// SubscribeRefresh registers a handler for refresh broadcasts aimed at a
// source. Most sources should use SourceRunner instead, which also takes
// care of pushing the response.
func SubscribeRefresh(nc *nats.Conn, sourceID string, callback func(data.RefreshRequest)) (stop func(), err error) {
	sub, err := nc.Subscribe(SubjectRefresh(sourceID), func(msg *nats.Msg) {
		req, err := data.PbDecodeRefreshRequest(msg.Data)
		if err != nil {
			log.Println("Error decoding refresh request: ", err)
			return
		}

		callback(req)
	})

	if err != nil {
		return nil, err
	}

	return func() {
		_ = sub.Unsubscribe()
	}, nil
}
