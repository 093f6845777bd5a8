package client

import (
	"fmt"
	"log"

	"github.com/nats-io/nats.go"
	"github.com/safetycenter/safetycenter/data"
)

// Messenger delivers a notification to a person. msg.Twilio implements this
// over SMS.
type Messenger interface {
	SendSMS(to, msg string) error
}

// NotifierConfig configures a NotifierClient
type NotifierConfig struct {
	// To is the phone number notified
	To string

	// MinSeverity is the lowest severity that triggers a notification;
	// defaults to critical
	MinSeverity data.SeverityLevel
}

// NotifierClient watches center updates and sends a message when a new
// issue at or above the configured severity appears. An issue is only
// notified once; dismissed issues never notify.
type NotifierClient struct {
	nc        *nats.Conn
	config    NotifierConfig
	messenger Messenger
	stop      chan struct{}
	chUpdate  chan data.CenterData
	notified  map[string]bool
}

// NewNotifierClient creates a new notifier
func NewNotifierClient(nc *nats.Conn, messenger Messenger, config NotifierConfig) *NotifierClient {
	if config.MinSeverity == 0 {
		config.MinSeverity = data.SeverityCritical
	}

	return &NotifierClient{
		nc:        nc,
		config:    config,
		messenger: messenger,
		stop:      make(chan struct{}),
		chUpdate:  make(chan data.CenterData, 5),
		notified:  make(map[string]bool),
	}
}

// Run the notifier. Blocks until Stop is called.
func (n *NotifierClient) Run() error {
	stopSub, err := SubscribeCenterData(n.nc, func(cd data.CenterData) {
		n.chUpdate <- cd
	})
	if err != nil {
		return fmt.Errorf("notifier: subscribe: %w", err)
	}
	defer stopSub()

done:
	for {
		select {
		case <-n.stop:
			break done

		case cd := <-n.chUpdate:
			n.process(cd)
		}
	}

	return nil
}

// Stop the notifier
func (n *NotifierClient) Stop(_ error) {
	close(n.stop)
}

func (n *NotifierClient) process(cd data.CenterData) {
	for _, i := range cd.Issues {
		if i.Severity < n.config.MinSeverity {
			continue
		}

		if n.notified[i.Key()] {
			continue
		}

		n.notified[i.Key()] = true

		text := fmt.Sprintf("Safety center: %v -- %v", i.Title, i.Summary)

		if err := n.messenger.SendSMS(n.config.To, text); err != nil {
			log.Println("Notifier: send error: ", err)
		}
	}
}
