package client_test

import (
	"strings"
	"testing"

	"github.com/nats-io/nats.go"

	"github.com/safetycenter/safetycenter/client"
	"github.com/safetycenter/safetycenter/data"
)

func TestMessageString(t *testing.T) {
	req := data.RefreshRequest{ID: "r1", Type: data.RequestGetData,
		Reason: data.ReasonPageOpen}

	s, err := client.String(&nats.Msg{
		Subject: client.SubjectRefresh("lock"),
		Data:    req.ToPb(),
	})
	if err != nil {
		t.Fatal("Error formatting refresh: ", err)
	}

	if !strings.Contains(s, "lock") {
		t.Fatal("Refresh string missing source: ", s)
	}

	// bare one-token subjects from unrelated clients must be ignored, not
	// crash the firehose
	for _, subject := range []string{"refresh", "p", "src", "action"} {
		s, err := client.String(&nats.Msg{Subject: subject})
		if err != nil {
			t.Fatalf("Error on subject %v: %v", subject, err)
		}
		if s != "" {
			t.Fatalf("Expected subject %v ignored, got %q", subject, s)
		}
	}
}
