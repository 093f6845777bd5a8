package client

import (
	"log"

	"github.com/nats-io/nats.go"
	"github.com/safetycenter/safetycenter/data"
)

// QueryTelemetry reads back telemetry records the store has collected.
// Kind and Since in the query narrow the result; zero values match
// everything. Requires a manage credential.
func QueryTelemetry(nc *nats.Conn, creds string, q data.TelemetryQuery) (data.Telemetries, error) {
	resp, err := request(nc, SubjectTelemetryQuery, creds, q.ToPb())
	if err != nil {
		return nil, err
	}

	return data.PbDecodeTelemetries(resp)
}

// SubscribeTelemetry registers a listener for telemetry records as they are
// emitted. kind may be a data.TelemetryKind or "*" for all kinds.
func SubscribeTelemetry(nc *nats.Conn, kind string, callback func(data.Telemetry)) (stop func(), err error) {
	sub, err := nc.Subscribe(SubjectTelemetry(kind), func(msg *nats.Msg) {
		t, err := data.PbDecodeTelemetry(msg.Data)
		if err != nil {
			log.Println("Error decoding telemetry: ", err)
			return
		}

		callback(t)
	})

	if err != nil {
		return nil, err
	}

	return func() {
		_ = sub.Unsubscribe()
	}, nil
}
