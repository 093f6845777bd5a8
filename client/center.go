package client

import (
	"log"
	"sync"

	"github.com/nats-io/nats.go"
	"github.com/safetycenter/safetycenter/data"
)

// GetCenterData fetches the current aggregated view.
// Requires a manage credential.
func GetCenterData(nc *nats.Conn, creds string) (data.CenterData, error) {
	resp, err := request(nc, SubjectCenterData, creds, nil)
	if err != nil {
		return data.CenterData{}, err
	}

	return data.PbDecodeCenterData(resp)
}

// DismissIssue dismisses an issue. Dismissal is persistent and idempotent:
// the issue stays hidden even if the source keeps reporting it.
// Requires a manage credential.
func DismissIssue(nc *nats.Conn, creds, sourceID, issueID string) error {
	_, err := request(nc, SubjectCenterDismiss, creds,
		[]byte(sourceID+":"+issueID))
	return err
}

// ExecuteAction asks the source that owns an issue to run one of its
// actions. The source reports the outcome by pushing data with a resolve
// event. Requires a manage credential.
func ExecuteAction(nc *nats.Conn, creds, sourceID, issueID, actionID string) error {
	_, err := request(nc, SubjectCenterExecute, creds,
		[]byte(sourceID+":"+issueID+":"+actionID))
	return err
}

// SubscribeCenterData registers a listener that is called with fresh
// aggregated data every time it changes. stop() cleans up the subscription.
func SubscribeCenterData(nc *nats.Conn, callback func(data.CenterData)) (stop func(), err error) {
	sub, err := nc.Subscribe(SubjectCenterUpdated, func(msg *nats.Msg) {
		cd, err := data.PbDecodeCenterData(msg.Data)
		if err != nil {
			log.Println("Error decoding center data: ", err)
			return
		}

		callback(cd)
	})

	if err != nil {
		return nil, err
	}

	return func() {
		_ = sub.Unsubscribe()
	}, nil
}

// SubscribeCenterErrors registers a listener for error details the center
// publishes (refresh timeouts, rejected pushes)
func SubscribeCenterErrors(nc *nats.Conn, callback func(data.ErrorDetail)) (stop func(), err error) {
	sub, err := nc.Subscribe(SubjectCenterError, func(msg *nats.Msg) {
		ed, err := data.PbDecodeErrorDetail(msg.Data)
		if err != nil {
			log.Println("Error decoding error detail: ", err)
			return
		}

		callback(ed)
	})

	if err != nil {
		return nil, err
	}

	return func() {
		_ = sub.Unsubscribe()
	}, nil
}

// CenterDataWatcher subscribes to center updates and caches the latest
// value. get() returns the last seen data, fetching a snapshot first so the
// watcher is useful immediately.
func CenterDataWatcher(nc *nats.Conn, creds string) (get func() data.CenterData, stop func(), err error) {
	var lock sync.Mutex
	var current data.CenterData

	stop, err = SubscribeCenterData(nc, func(cd data.CenterData) {
		lock.Lock()
		current = cd
		lock.Unlock()
	})

	if err != nil {
		return nil, nil, err
	}

	cd, err := GetCenterData(nc, creds)
	if err != nil {
		stop()
		return nil, nil, err
	}

	lock.Lock()
	current = cd
	lock.Unlock()

	get = func() data.CenterData {
		lock.Lock()
		defer lock.Unlock()
		return current
	}

	return get, stop, nil
}
