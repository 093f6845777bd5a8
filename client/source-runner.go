package client

import (
	"fmt"
	"log"
	"strings"

	"github.com/nats-io/nats.go"
	"github.com/safetycenter/safetycenter/data"
)

// SourceConfig configures a SourceRunner
type SourceConfig struct {
	// ID of the safety source, must match the center config
	ID string

	// Creds is a send credential for this source
	Creds string

	// Provide returns the source's current data. Called for every refresh
	// broadcast; for FetchFreshData requests the source should rescan
	// rather than answer from cache.
	Provide func(req data.RefreshRequest) (data.SourceData, error)

	// Execute runs an issue action and returns the source's data after the
	// action. Optional; sources with no actions can leave it nil.
	Execute func(issueID, actionID string) (data.SourceData, error)
}

// SourceRunner is the client a safety source runs to participate in the
// refresh protocol: it listens for refresh broadcasts and action executions
// and answers them by pushing data back to the center.
type SourceRunner struct {
	nc        *nats.Conn
	config    SourceConfig
	stop      chan struct{}
	chRefresh chan data.RefreshRequest
	chAction  chan string
}

// NewSourceRunner creates a new source runner
func NewSourceRunner(nc *nats.Conn, config SourceConfig) *SourceRunner {
	return &SourceRunner{
		nc:        nc,
		config:    config,
		stop:      make(chan struct{}),
		chRefresh: make(chan data.RefreshRequest, 5),
		chAction:  make(chan string, 5),
	}
}

// Run the source runner. Blocks until Stop is called.
func (sr *SourceRunner) Run() error {
	if sr.config.Provide == nil {
		return fmt.Errorf("source %v: Provide must be set", sr.config.ID)
	}

	stopRefresh, err := SubscribeRefresh(sr.nc, sr.config.ID, func(req data.RefreshRequest) {
		sr.chRefresh <- req
	})
	if err != nil {
		return fmt.Errorf("source %v: subscribe refresh: %w", sr.config.ID, err)
	}
	defer stopRefresh()

	subAction, err := sr.nc.Subscribe(SubjectAction(sr.config.ID), func(msg *nats.Msg) {
		sr.chAction <- string(msg.Data)
	})
	if err != nil {
		return fmt.Errorf("source %v: subscribe action: %w", sr.config.ID, err)
	}
	defer func() { _ = subAction.Unsubscribe() }()

done:
	for {
		select {
		case <-sr.stop:
			break done

		case req := <-sr.chRefresh:
			sd, err := sr.config.Provide(req)
			if err != nil {
				log.Printf("Source %v: provide error: %v\n", sr.config.ID, err)
				continue
			}

			err = SendSourceData(sr.nc, sr.config.Creds, sr.config.ID, sd,
				data.Event{Type: data.EventRefreshRequested, RefreshID: req.ID})
			if err != nil {
				log.Printf("Source %v: refresh response error: %v\n", sr.config.ID, err)
			}

		case a := <-sr.chAction:
			sr.runAction(a)
		}
	}

	return nil
}

// Stop the source runner
func (sr *SourceRunner) Stop(_ error) {
	close(sr.stop)
}

// Push sends unsolicited data because something changed at the source
func (sr *SourceRunner) Push(sd data.SourceData) error {
	return SendSourceData(sr.nc, sr.config.Creds, sr.config.ID, sd,
		data.Event{Type: data.EventSourceStateChanged})
}

func (sr *SourceRunner) runAction(payload string) {
	chunks := strings.SplitN(payload, ":", 2)
	if len(chunks) != 2 {
		log.Printf("Source %v: malformed action payload: %v\n", sr.config.ID, payload)
		return
	}

	issueID, actionID := chunks[0], chunks[1]

	evType := data.EventResolveSucceeded

	var sd data.SourceData

	if sr.config.Execute == nil {
		log.Printf("Source %v: no action handler for %v\n", sr.config.ID, actionID)
		return
	}

	sd, err := sr.config.Execute(issueID, actionID)
	if err != nil {
		log.Printf("Source %v: action %v failed: %v\n", sr.config.ID, actionID, err)
		evType = data.EventResolveFailed
	}

	err = SendSourceData(sr.nc, sr.config.Creds, sr.config.ID, sd, data.Event{
		Type:     evType,
		IssueID:  issueID,
		ActionID: actionID,
	})
	if err != nil {
		log.Printf("Source %v: resolve push error: %v\n", sr.config.ID, err)
	}
}
