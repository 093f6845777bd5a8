package store

import (
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/safetycenter/safetycenter/client"
	"github.com/safetycenter/safetycenter/data"
)

// defaultRefreshTimeout bounds how long the center waits for sources to
// respond to a refresh broadcast
const defaultRefreshTimeout = 10 * time.Second

// refreshTrack is the in-flight refresh. At most one refresh is tracked at a
// time; starting a new one supersedes it.
type refreshTrack struct {
	id      string
	reason  data.RefreshReason
	reqType data.RequestType
	start   time.Time
	pending map[string]bool
	timer   *time.Timer
}

// startRefresh broadcasts a refresh request to every configured source and
// starts the timeout clock. Must be called with the store lock held.
func (st *Store) startRefresh(reason data.RefreshReason) (string, error) {
	if st.refresh != nil {
		// a new refresh supersedes whatever is in flight
		st.finishRefresh(data.ResultError)
	}

	timeout := st.params.RefreshTimeout
	if timeout <= 0 {
		timeout = defaultRefreshTimeout
	}

	req := data.RefreshRequest{
		ID:       uuid.New().String(),
		Type:     reason.RequestType(),
		Reason:   reason,
		Deadline: time.Now().Add(timeout),
	}

	track := &refreshTrack{
		id:      req.ID,
		reason:  reason,
		reqType: req.Type,
		start:   time.Now(),
		pending: make(map[string]bool),
	}

	for _, s := range st.params.Config.Sources() {
		track.pending[s.ID] = true

		err := st.nc.Publish(client.SubjectRefresh(s.ID), req.ToPb())
		if err != nil {
			return "", err
		}
	}

	if len(track.pending) == 0 {
		// nothing to wait for
		st.record(data.Telemetry{
			Kind:   data.TelemetrySystemEvent,
			Reason: reason,
			Result: data.ResultSuccess,
		})
		return req.ID, nil
	}

	track.timer = time.AfterFunc(timeout, func() { st.refreshTimedOut(req.ID) })
	st.refresh = track
	st.publishUpdate()

	return req.ID, nil
}

// noteRefreshResponse records that a source answered the in-flight refresh.
// Stale or unknown refresh IDs are ignored; the push itself has already been
// stored. Must be called with the store lock held.
func (st *Store) noteRefreshResponse(source, refreshID string, dataChanged bool) {
	r := st.refresh
	if r == nil || r.id != refreshID || !r.pending[source] {
		return
	}

	delete(r.pending, source)

	st.record(data.Telemetry{
		Kind:        data.TelemetrySystemEvent,
		Source:      source,
		EventType:   data.EventRefreshRequested,
		Reason:      r.reason,
		Result:      data.ResultSuccess,
		DataChanged: dataChanged,
		Duration:    time.Since(r.start),
	})

	if len(r.pending) == 0 {
		st.finishRefresh(data.ResultSuccess)
	}
}

// finishRefresh closes out the in-flight refresh with the given result.
// Must be called with the store lock held.
func (st *Store) finishRefresh(result string) {
	r := st.refresh
	if r == nil {
		return
	}

	if r.timer != nil {
		r.timer.Stop()
	}

	st.refresh = nil

	st.record(data.Telemetry{
		Kind:     data.TelemetrySystemEvent,
		Reason:   r.reason,
		Result:   result,
		Duration: time.Since(r.start),
	})

	st.publishUpdate()
}

// refreshTimedOut fires when the deadline passes with sources still pending
func (st *Store) refreshTimedOut(id string) {
	st.lock.Lock()
	defer st.lock.Unlock()

	r := st.refresh
	if r == nil || r.id != id {
		return
	}

	for source := range r.pending {
		st.publishError(data.ErrorDetail{
			Message:   "refresh timed out",
			Source:    source,
			RefreshID: id,
		})
	}

	log.Printf("store: refresh %v timed out waiting on %v source(s)", id, len(r.pending))

	st.finishRefresh(data.ResultTimeout)
}

// refreshStatus returns the status to report in aggregated data. Must be
// called with the store lock held.
func (st *Store) refreshStatus() data.RefreshStatus {
	if st.refresh == nil {
		return data.RefreshIdle
	}

	if st.refresh.reqType == data.RequestFetchFreshData {
		return data.RefreshFullRescan
	}

	return data.RefreshDataFetch
}
