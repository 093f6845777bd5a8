package client_test

import (
	"sync"
	"testing"
	"time"

	"github.com/safetycenter/safetycenter/client"
	"github.com/safetycenter/safetycenter/data"
	"github.com/safetycenter/safetycenter/test"
	"github.com/safetycenter/safetycenter/testutil"
)

// fakeMessenger captures messages instead of sending them
type fakeMessenger struct {
	lock sync.Mutex
	sent []string
}

func (f *fakeMessenger) SendSMS(to, msg string) error {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.sent = append(f.sent, to+": "+msg)
	return nil
}

func (f *fakeMessenger) count() int {
	f.lock.Lock()
	defer f.lock.Unlock()
	return len(f.sent)
}

func centerUpdate(severity data.SeverityLevel, issueID string) data.CenterData {
	return data.CenterData{
		Status: data.CenterStatus{Title: "t", Severity: severity.Overall()},
		Issues: []data.CenterIssue{
			{ID: issueID, SourceID: "lock", Title: "Harmful app found",
				Summary: "Remove it", Severity: severity},
		},
	}
}

func TestNotifier(t *testing.T) {
	// the notifier only needs the message bus, not a full center
	nc, err := testutil.TestNats()
	if err != nil {
		t.Fatal("Error starting test nats: ", err)
	}
	defer nc.Close()

	fake := &fakeMessenger{}

	n := client.NewNotifierClient(nc, fake, client.NotifierConfig{
		To: "+15555550100",
	})

	go func() { _ = n.Run() }()
	defer n.Stop(nil)

	time.Sleep(100 * time.Millisecond)

	// below the critical default, no message
	err = nc.Publish(client.SubjectCenterUpdated,
		centerUpdate(data.SeverityRecommendation, "set-lock").ToPb())
	if err != nil {
		t.Fatal("Error publishing: ", err)
	}

	// critical issue notifies
	err = nc.Publish(client.SubjectCenterUpdated,
		centerUpdate(data.SeverityCritical, "malware").ToPb())
	if err != nil {
		t.Fatal("Error publishing: ", err)
	}

	err = test.WaitFor(time.Second, func() bool {
		return fake.count() == 1
	})
	if err != nil {
		t.Fatal("Notification never sent: ", err)
	}

	fake.lock.Lock()
	sent := fake.sent[0]
	fake.lock.Unlock()

	if sent != "+15555550100: Safety center: Harmful app found -- Remove it" {
		t.Fatal("Message wrong: ", sent)
	}

	// the same issue appearing again must not notify twice
	err = nc.Publish(client.SubjectCenterUpdated,
		centerUpdate(data.SeverityCritical, "malware").ToPb())
	if err != nil {
		t.Fatal("Error publishing: ", err)
	}

	time.Sleep(300 * time.Millisecond)

	if fake.count() != 1 {
		t.Fatal("Issue notified twice")
	}

	// a different critical issue does notify
	err = nc.Publish(client.SubjectCenterUpdated,
		centerUpdate(data.SeverityCritical, "malware2").ToPb())
	if err != nil {
		t.Fatal("Error publishing: ", err)
	}

	err = test.WaitFor(time.Second, func() bool {
		return fake.count() == 2
	})
	if err != nil {
		t.Fatal("Second issue never notified: ", err)
	}
}
