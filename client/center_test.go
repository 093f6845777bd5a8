package client_test

import (
	"errors"
	"testing"
	"time"

	"github.com/safetycenter/safetycenter/client"
	"github.com/safetycenter/safetycenter/data"
	"github.com/safetycenter/safetycenter/test"
)

func TestCenterAggregation(t *testing.T) {
	nc, creds, stop, err := test.Server(test.TwoSourceConfig())
	if err != nil {
		t.Fatal("Error starting test server: ", err)
	}
	defer stop()

	// before any source reports the status is unknown
	cd, err := client.GetCenterData(nc, creds.Manage)
	if err != nil {
		t.Fatal("Error getting center data: ", err)
	}

	if cd.Status.Severity != data.OverallUnknown {
		t.Fatal("Expected unknown status, got: ", cd.Status.Severity)
	}

	if len(cd.Groups) != 1 || len(cd.Groups[0].Entries) != 2 {
		t.Fatal("Expected entries for both configured sources")
	}

	// the lock source reports an informational status plus a
	// recommendation issue, which drives the top line
	err = client.SendSourceData(nc, creds.Send, "lock", lockData(), stateChanged())
	if err != nil {
		t.Fatal("Error sending source data: ", err)
	}

	cd, err = client.GetCenterData(nc, creds.Manage)
	if err != nil {
		t.Fatal("Error getting center data: ", err)
	}

	if cd.Status.Severity != data.OverallRecommendation {
		t.Fatal("Expected recommendation, got: ", cd.Status.Severity)
	}

	issue, ok := cd.FindIssue("lock", "no-biometrics")
	if !ok {
		t.Fatal("Issue missing from center data")
	}

	if issue.Title != "Add fingerprint unlock" || !issue.Dismissible {
		t.Fatal("Issue content wrong: ", issue)
	}

	entry, ok := cd.FindEntry("lock")
	if !ok || entry.Title != "Screen lock on" {
		t.Fatal("Entry should reflect source status: ", entry)
	}

	// critical issue from the second source takes over the top line
	err = client.SendSourceData(nc, creds.Send, "update", data.SourceData{
		Issues: []data.SourceIssue{
			{ID: "malware", Title: "Harmful app found",
				Severity: data.SeverityCritical},
		},
	}, stateChanged())
	if err != nil {
		t.Fatal("Error sending source data: ", err)
	}

	cd, err = client.GetCenterData(nc, creds.Manage)
	if err != nil {
		t.Fatal("Error getting center data: ", err)
	}

	if cd.Status.Severity != data.OverallCritical {
		t.Fatal("Expected critical, got: ", cd.Status.Severity)
	}

	if len(cd.Issues) != 2 || cd.Issues[0].ID != "malware" {
		t.Fatal("Issues should be sorted critical first: ", cd.Issues)
	}
}

func TestDismissIssue(t *testing.T) {
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

	cd, err := client.GetCenterData(nc, creds.Manage)
	if err != nil {
		t.Fatal("Error getting center data: ", err)
	}

	if _, ok := cd.FindIssue("lock", "no-biometrics"); ok {
		t.Fatal("Dismissed issue still visible")
	}

	if cd.Status.Severity != data.OverallOK {
		t.Fatal("Dismissed issue still drives severity: ", cd.Status.Severity)
	}

	// dismissing again is fine
	err = client.DismissIssue(nc, creds.Manage, "lock", "no-biometrics")
	if err != nil {
		t.Fatal("Dismiss should be idempotent: ", err)
	}

	// the source re-reporting the issue does not resurface it
	err = client.SendSourceData(nc, creds.Send, "lock", lockData(), stateChanged())
	if err != nil {
		t.Fatal("Error sending source data: ", err)
	}

	cd, err = client.GetCenterData(nc, creds.Manage)
	if err != nil {
		t.Fatal("Error getting center data: ", err)
	}

	if _, ok := cd.FindIssue("lock", "no-biometrics"); ok {
		t.Fatal("Dismissed issue resurfaced after re-report")
	}

	// dismissal needs the manage role
	err = client.DismissIssue(nc, creds.Send, "lock", "no-biometrics")
	if !errors.Is(err, data.ErrPermission) {
		t.Fatal("Expected permission error, got: ", err)
	}
}

func TestCenterListener(t *testing.T) {
	nc, creds, stop, err := test.Server(test.TwoSourceConfig())
	if err != nil {
		t.Fatal("Error starting test server: ", err)
	}
	defer stop()

	chUpdate := make(chan data.CenterData, 10)

	stopSub, err := client.SubscribeCenterData(nc, func(cd data.CenterData) {
		chUpdate <- cd
	})
	if err != nil {
		t.Fatal("Error subscribing: ", err)
	}
	defer stopSub()

	err = client.SendSourceData(nc, creds.Send, "lock", lockData(), stateChanged())
	if err != nil {
		t.Fatal("Error sending source data: ", err)
	}

	cd, err := test.Recv(chUpdate, time.Second)
	if err != nil {
		t.Fatal("No update after push: ", err)
	}

	if _, ok := cd.FindIssue("lock", "no-biometrics"); !ok {
		t.Fatal("Update missing pushed issue")
	}

	// pushing identical data must not produce another update
	err = client.SendSourceData(nc, creds.Send, "lock", lockData(), stateChanged())
	if err != nil {
		t.Fatal("Error sending source data: ", err)
	}

	if _, err := test.Recv(chUpdate, 300*time.Millisecond); err == nil {
		t.Fatal("Got update for unchanged data")
	}

	// a dismissal changes the view, so it notifies
	err = client.DismissIssue(nc, creds.Manage, "lock", "no-biometrics")
	if err != nil {
		t.Fatal("Error dismissing issue: ", err)
	}

	cd, err = test.Recv(chUpdate, time.Second)
	if err != nil {
		t.Fatal("No update after dismissal: ", err)
	}

	if _, ok := cd.FindIssue("lock", "no-biometrics"); ok {
		t.Fatal("Update still contains dismissed issue")
	}
}

func TestCenterDataWatcher(t *testing.T) {
	nc, creds, stop, err := test.Server(test.TwoSourceConfig())
	if err != nil {
		t.Fatal("Error starting test server: ", err)
	}
	defer stop()

	get, stopWatch, err := client.CenterDataWatcher(nc, creds.Manage)
	if err != nil {
		t.Fatal("Error starting watcher: ", err)
	}
	defer stopWatch()

	if get().Status.Severity != data.OverallUnknown {
		t.Fatal("Watcher should start with a snapshot")
	}

	err = client.SendSourceData(nc, creds.Send, "update", data.SourceData{
		Issues: []data.SourceIssue{
			{ID: "malware", Title: "Harmful app found",
				Severity: data.SeverityCritical},
		},
	}, stateChanged())
	if err != nil {
		t.Fatal("Error sending source data: ", err)
	}

	err = test.WaitFor(time.Second, func() bool {
		return get().Status.Severity == data.OverallCritical
	})
	if err != nil {
		t.Fatal("Watcher never saw the update: ", err)
	}
}

func TestExecuteAction(t *testing.T) {
	nc, creds, stop, err := test.Server(test.TwoSourceConfig())
	if err != nil {
		t.Fatal("Error starting test server: ", err)
	}
	defer stop()

	err = client.SendSourceData(nc, creds.Send, "lock", lockData(), stateChanged())
	if err != nil {
		t.Fatal("Error sending source data: ", err)
	}

	// source that fixes the issue when the action runs
	runner := client.NewSourceRunner(nc, client.SourceConfig{
		ID:    "lock",
		Creds: creds.Send,
		Provide: func(req data.RefreshRequest) (data.SourceData, error) {
			return lockData(), nil
		},
		Execute: func(issueID, actionID string) (data.SourceData, error) {
			if issueID != "no-biometrics" || actionID != "enroll" {
				t.Error("Unexpected action: ", issueID, actionID)
			}
			fixed := lockData()
			fixed.Issues = nil
			return fixed, nil
		},
	})

	go func() { _ = runner.Run() }()
	defer runner.Stop(nil)

	err = client.ExecuteAction(nc, creds.Manage, "lock", "no-biometrics", "enroll")
	if err != nil {
		t.Fatal("Error executing action: ", err)
	}

	err = test.WaitFor(time.Second, func() bool {
		cd, err := client.GetCenterData(nc, creds.Manage)
		if err != nil {
			return false
		}
		_, ok := cd.FindIssue("lock", "no-biometrics")
		return !ok
	})
	if err != nil {
		t.Fatal("Issue never resolved: ", err)
	}

	// unknown issue or action is rejected
	err = client.ExecuteAction(nc, creds.Manage, "lock", "bogus", "enroll")
	if !errors.Is(err, data.ErrNotFound) {
		t.Fatal("Expected not found for unknown issue, got: ", err)
	}
}

func TestExecuteActionFails(t *testing.T) {
	nc, creds, stop, err := test.Server(test.TwoSourceConfig())
	if err != nil {
		t.Fatal("Error starting test server: ", err)
	}
	defer stop()

	err = client.SendSourceData(nc, creds.Send, "lock", lockData(), stateChanged())
	if err != nil {
		t.Fatal("Error sending source data: ", err)
	}

	chErr := make(chan data.ErrorDetail, 10)

	stopSub, err := client.SubscribeCenterErrors(nc, func(ed data.ErrorDetail) {
		chErr <- ed
	})
	if err != nil {
		t.Fatal("Error subscribing: ", err)
	}
	defer stopSub()

	runner := client.NewSourceRunner(nc, client.SourceConfig{
		ID:    "lock",
		Creds: creds.Send,
		Provide: func(req data.RefreshRequest) (data.SourceData, error) {
			return lockData(), nil
		},
		Execute: func(issueID, actionID string) (data.SourceData, error) {
			return data.SourceData{}, errors.New("enrollment hardware busy")
		},
	})

	go func() { _ = runner.Run() }()
	defer runner.Stop(nil)

	err = client.ExecuteAction(nc, creds.Manage, "lock", "no-biometrics", "enroll")
	if err != nil {
		t.Fatal("Error executing action: ", err)
	}

	ed, err := test.Recv(chErr, time.Second)
	if err != nil {
		t.Fatal("No error detail after failed resolve: ", err)
	}

	if ed.Source != "lock" {
		t.Fatal("Error detail has wrong source: ", ed)
	}

	// the stored data must be untouched by the failed resolve
	cd, err := client.GetCenterData(nc, creds.Manage)
	if err != nil {
		t.Fatal("Error getting center data: ", err)
	}

	if _, ok := cd.FindIssue("lock", "no-biometrics"); !ok {
		t.Fatal("Issue lost after failed resolve")
	}
}
