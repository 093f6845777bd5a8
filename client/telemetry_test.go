package client_test

import (
	"errors"
	"testing"
	"time"

	"github.com/safetycenter/safetycenter/client"
	"github.com/safetycenter/safetycenter/data"
	"github.com/safetycenter/safetycenter/test"
)

func TestTelemetrySourceState(t *testing.T) {
	nc, creds, stop, err := test.Server(test.TwoSourceConfig())
	if err != nil {
		t.Fatal("Error starting test server: ", err)
	}
	defer stop()

	err = client.SendSourceData(nc, creds.Send, "lock", lockData(), stateChanged())
	if err != nil {
		t.Fatal("Error sending source data: ", err)
	}

	// identical second push is recorded too, but flagged unchanged
	err = client.SendSourceData(nc, creds.Send, "lock", lockData(), stateChanged())
	if err != nil {
		t.Fatal("Error sending source data: ", err)
	}

	ts, err := client.QueryTelemetry(nc, creds.Manage, data.TelemetryQuery{
		Kind: data.TelemetrySourceState})
	if err != nil {
		t.Fatal("Error querying telemetry: ", err)
	}

	if len(ts) != 2 {
		t.Fatal("Expected 2 records, got: ", len(ts))
	}

	first := ts[0]
	if first.Source != "lock" ||
		first.EventType != data.EventSourceStateChanged ||
		first.Severity != data.SeverityRecommendation ||
		first.OpenIssues != 1 ||
		first.Result != data.ResultSuccess ||
		!first.DataChanged {
		t.Fatal("First record wrong: ", first)
	}

	if ts[1].DataChanged {
		t.Fatal("Second identical push flagged as changed")
	}

	if first.Time.IsZero() {
		t.Fatal("Record has no timestamp")
	}
}

func TestTelemetryDismissCounts(t *testing.T) {
	nc, creds, stop, err := test.Server(test.TwoSourceConfig())
	if err != nil {
		t.Fatal("Error starting test server: ", err)
	}
	defer stop()

	err = client.SendSourceData(nc, creds.Send, "lock", lockData(), stateChanged())
	if err != nil {
		t.Fatal("Error sending source data: ", err)
	}

	err = client.DismissIssue(nc, creds.Manage, "lock", "no-biometrics")
	if err != nil {
		t.Fatal("Error dismissing issue: ", err)
	}

	// the dismissal itself is an interaction record
	is, err := client.QueryTelemetry(nc, creds.Manage, data.TelemetryQuery{
		Kind: data.TelemetryInteraction})
	if err != nil {
		t.Fatal("Error querying telemetry: ", err)
	}

	if len(is) != 1 || is[0].Source != "lock" {
		t.Fatal("Expected one interaction record: ", is)
	}

	// the next push counts the issue as dismissed
	err = client.SendSourceData(nc, creds.Send, "lock", lockData(), stateChanged())
	if err != nil {
		t.Fatal("Error sending source data: ", err)
	}

	ts, err := client.QueryTelemetry(nc, creds.Manage, data.TelemetryQuery{
		Kind: data.TelemetrySourceState})
	if err != nil {
		t.Fatal("Error querying telemetry: ", err)
	}

	last := ts[len(ts)-1]
	if last.OpenIssues != 0 || last.DismissedIssues != 1 {
		t.Fatal("Dismissed counts wrong: ", last)
	}
}

func TestTelemetryLive(t *testing.T) {
	nc, creds, stop, err := test.Server(test.TwoSourceConfig())
	if err != nil {
		t.Fatal("Error starting test server: ", err)
	}
	defer stop()

	chTel := make(chan data.Telemetry, 10)

	stopSub, err := client.SubscribeTelemetry(nc,
		string(data.TelemetrySourceState), func(tm data.Telemetry) {
			chTel <- tm
		})
	if err != nil {
		t.Fatal("Error subscribing: ", err)
	}
	defer stopSub()

	err = client.SendSourceData(nc, creds.Send, "lock", lockData(), stateChanged())
	if err != nil {
		t.Fatal("Error sending source data: ", err)
	}

	tm, err := test.Recv(chTel, time.Second)
	if err != nil {
		t.Fatal("No live telemetry: ", err)
	}

	if tm.Source != "lock" || tm.Kind != data.TelemetrySourceState {
		t.Fatal("Live record wrong: ", tm)
	}
}

func TestTelemetryPermission(t *testing.T) {
	nc, creds, stop, err := test.Server(test.TwoSourceConfig())
	if err != nil {
		t.Fatal("Error starting test server: ", err)
	}
	defer stop()

	_, err = client.QueryTelemetry(nc, creds.Send, data.TelemetryQuery{})
	if !errors.Is(err, data.ErrPermission) {
		t.Fatal("Expected permission error, got: ", err)
	}
}
