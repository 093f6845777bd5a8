package client

import (
	"fmt"
	"log"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/safetycenter/safetycenter/data"
)

// SubjectPoints constructs the subject trending points travel on for a
// stream (typically a source ID)
func SubjectPoints(streamID string) string {
	return fmt.Sprintf("p.%v", streamID)
}

// SubjectAllPoints provides the subject for points from any stream
func SubjectAllPoints() string {
	return "p.*"
}

// SendPoints publishes points to the specified subject. Points with a zero
// time are stamped with the current time.
func SendPoints(nc *nats.Conn, subject string, points data.Points) error {
	for i := range points {
		if points[i].Time.IsZero() {
			points[i].Time = time.Now()
		}
	}

	return nc.Publish(subject, points.ToPb())
}

// SubscribePoints subscribes to point updates for a stream and executes a
// callback when new points arrive. stop() cleans up the subscription.
func SubscribePoints(nc *nats.Conn, streamID string, callback func(points data.Points)) (stop func(), err error) {
	sub, err := nc.Subscribe(SubjectPoints(streamID), func(msg *nats.Msg) {
		points, err := data.PbDecodePoints(msg.Data)
		if err != nil {
			log.Println("Error decoding points: ", err)
			return
		}

		callback(points)
	})

	if err != nil {
		return nil, err
	}

	return func() {
		_ = sub.Unsubscribe()
	}, nil
}
