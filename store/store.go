package store

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/safetycenter/safetycenter/auth"
	"github.com/safetycenter/safetycenter/client"
	"github.com/safetycenter/safetycenter/data"
)

var reportMetricsPeriod = time.Minute

const pointTypeCyclePush = "cyclePush"

// Store implements the safety center NATS API: it accepts pushes from
// sources, aggregates them, answers reads, runs refreshes, and records
// telemetry.
type Store struct {
	params        Params
	nc            *nats.Conn
	subscriptions map[string]*nats.Subscription
	db            *DbSqlite

	lock       sync.Mutex
	sourceData map[string]data.SourceData
	dismissed  map[string]bool
	enabled    bool
	refresh    *refreshTrack
	lastHash   uint32

	// cycle metrics track how long it takes to handle a push
	metricCyclePush *client.Metric

	chStop      chan struct{}
	chWaitStart chan struct{}
}

// Params are used to configure a store
type Params struct {
	// File is the sqlite database path
	File   string
	Nc     *nats.Conn
	Config Config
	// RefreshTimeout bounds how long a refresh waits for sources.
	// Zero means the default.
	RefreshTimeout time.Duration
}

// NewStore creates a new store for handling safety center requests
func NewStore(p Params) (*Store, error) {
	db, err := NewDbSqlite(p.File)
	if err != nil {
		return nil, fmt.Errorf("error opening db: %v", err)
	}

	sourceData, err := db.allSourceData()
	if err != nil {
		return nil, fmt.Errorf("error loading source data: %v", err)
	}

	dismissed, err := db.dismissedKeys()
	if err != nil {
		return nil, fmt.Errorf("error loading dismissed issues: %v", err)
	}

	enabled, err := db.enabled()
	if err != nil {
		return nil, fmt.Errorf("error loading enabled state: %v", err)
	}

	return &Store{
		params:        p,
		nc:            p.Nc,
		db:            db,
		sourceData:    sourceData,
		dismissed:     dismissed,
		enabled:       enabled,
		subscriptions: make(map[string]*nats.Subscription),
		chStop:        make(chan struct{}),
		chWaitStart:   make(chan struct{}),
		metricCyclePush: client.NewMetric(p.Nc, db.InstanceID(),
			pointTypeCyclePush, reportMetricsPeriod),
	}, nil
}

// AuthKey returns the key used to mint and verify permission tokens
func (st *Store) AuthKey() auth.Key {
	return st.db.AuthKey()
}

// InstanceID returns the persistent ID of this safety center instance
func (st *Store) InstanceID() string {
	return st.db.InstanceID()
}

// HasSource reports whether the source registry includes id
func (st *Store) HasSource(id string) bool {
	st.lock.Lock()
	defer st.lock.Unlock()

	_, ok := st.params.Config.Source(id)
	return ok
}

// SetConfig swaps in a new source registry, typically after the config file
// changed on disk, and asks all sources for fresh data so newly configured
// ones report in. Data already pushed by sources that are no longer
// configured stays in the database but drops out of the aggregated view.
func (st *Store) SetConfig(c Config) error {
	if err := c.Validate(); err != nil {
		return err
	}

	st.lock.Lock()
	defer st.lock.Unlock()

	st.params.Config = c
	st.publishUpdate()

	if st.enabled {
		if _, err := st.startRefresh(data.ReasonOther); err != nil {
			log.Println("Error starting refresh after config change: ", err)
		}
	}

	return nil
}

// Run subscribes to the safety center subjects and blocks until Stop is
// called
func (st *Store) Run() error {
	nc := st.nc

	subs := []struct {
		name    string
		subject string
		handler nats.MsgHandler
	}{
		{"sourcePush", client.SubjectAllSourcePush(), st.handleSourcePush},
		{"sourceGet", client.SubjectAllSourceGet(), st.handleSourceGet},
		{"centerData", client.SubjectCenterData, st.handleCenterData},
		{"centerRefresh", client.SubjectCenterRefresh, st.handleRefresh},
		{"centerDismiss", client.SubjectCenterDismiss, st.handleDismiss},
		{"centerExecute", client.SubjectCenterExecute, st.handleExecute},
		{"ctlEnabled", client.SubjectCenterEnabled, st.handleEnabled},
		{"ctlSupported", client.SubjectCenterSupported, st.handleSupported},
		{"ctlInstance", client.SubjectCenterInstance, st.handleInstance},
		{"ctlSetState", client.SubjectCenterSetState, st.handleSetState},
		{"telemetryQuery", client.SubjectTelemetryQuery, st.handleTelemetryQuery},
	}

	for _, s := range subs {
		sub, err := nc.Subscribe(s.subject, s.handler)
		if err != nil {
			return fmt.Errorf("subscribe %v error: %w", s.name, err)
		}
		st.subscriptions[s.name] = sub
	}

done:
	for {
		select {
		case <-st.chWaitStart:
			// don't need to do anything as simply reading this
			// channel will unblock the caller
		case <-st.chStop:
			log.Println("Store stopped")
			break done
		}
	}

	st.lock.Lock()
	if st.refresh != nil && st.refresh.timer != nil {
		st.refresh.timer.Stop()
	}
	st.lock.Unlock()

	for k := range st.subscriptions {
		err := st.subscriptions[k].Unsubscribe()
		if err != nil {
			log.Printf("Error unsubscribing from %v: %v\n", k, err)
		}
	}

	st.db.Close()

	return nil
}

// Stop the store
func (st *Store) Stop(_ error) {
	close(st.chStop)
}

// WaitStart waits for store to start
func (st *Store) WaitStart(ctx context.Context) error {
	waitDone := make(chan struct{})

	go func() {
		// the following will block until the main store select
		// loop starts
		st.chWaitStart <- struct{}{}
		close(waitDone)
	}()

	select {
	case <-ctx.Done():
		return errors.New("Store wait timeout or canceled")
	case <-waitDone:
		// all is well
		return nil
	}
}

// reply ACKs or NAKs a request. Errors travel in a reply header so the
// payload stays free for data.
func (st *Store) reply(msg *nats.Msg, payload []byte, err error) {
	if msg.Reply == "" {
		if err != nil {
			log.Printf("store: error handling %v: %v", msg.Subject, err)
		}
		return
	}

	resp := nats.NewMsg(msg.Reply)
	resp.Data = payload

	if err != nil {
		resp.Header.Set(client.ErrorHeader, err.Error())
		resp.Data = nil
	}

	if pErr := st.nc.PublishMsg(resp); pErr != nil {
		log.Printf("store: error replying on %v: %v", msg.Subject, pErr)
	}
}

// authorize verifies the request token grants the required role. For
// RoleSend, a token scoped to a source only works for that source.
// Verification fails closed.
func (st *Store) authorize(msg *nats.Msg, role auth.Role, source string) error {
	r, scope, err := st.db.AuthKey().Verify(msg.Header.Get(auth.HeaderName))
	if err != nil {
		return data.ErrPermission
	}

	if r != role {
		return data.ErrPermission
	}

	if role == auth.RoleSend && scope != "" && scope != source {
		return data.ErrPermission
	}

	return nil
}

// record logs a telemetry record and publishes it to live listeners
func (st *Store) record(t data.Telemetry) {
	if t.Time.IsZero() {
		t.Time = time.Now()
	}

	if err := st.db.telemetryAdd(t); err != nil {
		log.Println("store: telemetry log error:", err)
	}

	err := st.nc.Publish(client.SubjectTelemetry(string(t.Kind)), t.ToPb())
	if err != nil {
		log.Println("store: telemetry publish error:", err)
	}
}

func (st *Store) publishError(e data.ErrorDetail) {
	if err := st.nc.Publish(client.SubjectCenterError, e.ToPb()); err != nil {
		log.Println("store: error publish error:", err)
	}
}

// aggregate builds the current center view. Must be called with the store
// lock held.
func (st *Store) aggregate() data.CenterData {
	return buildCenterData(st.params.Config, st.sourceData, st.dismissed,
		st.refreshStatus())
}

// publishUpdate pushes the aggregated view to listeners if it changed since
// the last publish. Must be called with the store lock held.
func (st *Store) publishUpdate() {
	cd := st.aggregate()

	h := cd.Hash()
	if h == st.lastHash {
		return
	}
	st.lastHash = h

	if err := st.nc.Publish(client.SubjectCenterUpdated, cd.ToPb()); err != nil {
		log.Println("store: update publish error:", err)
	}
}

// issueCounts returns how many of the source's current issues are open vs
// dismissed. Must be called with the store lock held.
func (st *Store) issueCounts(source string) (open, dismissed int) {
	for _, i := range st.sourceData[source].Issues {
		if st.dismissed[source+":"+i.ID] {
			dismissed++
		} else {
			open++
		}
	}

	return open, dismissed
}

func (st *Store) handleSourcePush(msg *nats.Msg) {
	start := time.Now()
	defer func() {
		err := st.metricCyclePush.AddSample(float64(time.Since(start).Milliseconds()))
		if err != nil {
			log.Println("store: cycle metric error:", err)
		}
	}()

	source := strings.TrimPrefix(msg.Subject, "src.")

	if err := st.authorize(msg, auth.RoleSend, source); err != nil {
		st.reply(msg, nil, err)
		return
	}

	st.lock.Lock()
	defer st.lock.Unlock()

	if !st.enabled {
		st.reply(msg, nil, data.ErrDisabled)
		return
	}

	if _, ok := st.params.Config.Source(source); !ok {
		st.reply(msg, nil, data.ErrUnknownSource)
		return
	}

	update, err := data.PbDecodeSourceUpdate(msg.Data)
	if err != nil {
		st.reply(msg, nil, fmt.Errorf("decoding update: %w", err))
		return
	}

	if update.Source != source {
		st.reply(msg, nil, fmt.Errorf("update source %v does not match subject %v",
			update.Source, source))
		return
	}

	if err := update.Validate(); err != nil {
		st.reply(msg, nil, err)
		return
	}

	prev, have := st.sourceData[source]
	dataChanged := !have || prev.Hash() != update.Data.Hash()

	result := data.ResultSuccess

	if update.Event.Type == data.EventResolveFailed {
		// the source could not resolve the issue -- keep the stored
		// data and surface the failure
		result = data.ResultError
		dataChanged = false

		st.publishError(data.ErrorDetail{
			Message: fmt.Sprintf("action %v on issue %v failed",
				update.Event.ActionID, update.Event.IssueID),
			Source: source,
		})
	} else {
		if err := st.db.setSourceData(source, update.Data); err != nil {
			st.reply(msg, nil, fmt.Errorf("storing data: %w", err))
			return
		}
		st.sourceData[source] = update.Data
	}

	open, dismissedCount := st.issueCounts(source)

	st.record(data.Telemetry{
		Kind:            data.TelemetrySourceState,
		Source:          source,
		EventType:       update.Event.Type,
		Severity:        update.Data.MaxSeverity(),
		OpenIssues:      open,
		DismissedIssues: dismissedCount,
		DataChanged:     dataChanged,
		Result:          result,
	})

	if update.Event.Type == data.EventRefreshRequested {
		st.noteRefreshResponse(source, update.Event.RefreshID, dataChanged)
	}

	st.publishUpdate()
	st.reply(msg, nil, nil)
}

func (st *Store) handleSourceGet(msg *nats.Msg) {
	chunks := strings.Split(msg.Subject, ".")
	if len(chunks) != 3 {
		st.reply(msg, nil, fmt.Errorf("invalid get subject: %v", msg.Subject))
		return
	}
	source := chunks[1]

	if err := st.authorize(msg, auth.RoleSend, source); err != nil {
		st.reply(msg, nil, err)
		return
	}

	st.lock.Lock()
	defer st.lock.Unlock()

	if !st.enabled {
		st.reply(msg, nil, data.ErrDisabled)
		return
	}

	sd, ok := st.sourceData[source]
	if !ok {
		st.reply(msg, nil, data.ErrNotFound)
		return
	}

	st.reply(msg, sd.ToPb(), nil)
}

func (st *Store) handleCenterData(msg *nats.Msg) {
	if err := st.authorize(msg, auth.RoleManage, ""); err != nil {
		st.reply(msg, nil, err)
		return
	}

	st.lock.Lock()
	defer st.lock.Unlock()

	if !st.enabled {
		st.reply(msg, nil, data.ErrDisabled)
		return
	}

	st.reply(msg, st.aggregate().ToPb(), nil)
}

func (st *Store) handleRefresh(msg *nats.Msg) {
	if err := st.authorize(msg, auth.RoleManage, ""); err != nil {
		st.reply(msg, nil, err)
		return
	}

	reasonInt, err := strconv.Atoi(string(msg.Data))
	if err != nil {
		st.reply(msg, nil, fmt.Errorf("parsing refresh reason: %w", err))
		return
	}

	reason := data.RefreshReason(reasonInt)
	if !reason.Valid() {
		st.reply(msg, nil, fmt.Errorf("refresh reason invalid: %v", reasonInt))
		return
	}

	st.lock.Lock()
	defer st.lock.Unlock()

	if !st.enabled {
		st.reply(msg, nil, data.ErrDisabled)
		return
	}

	id, err := st.startRefresh(reason)
	if err != nil {
		st.reply(msg, nil, err)
		return
	}

	st.reply(msg, []byte(id), nil)
}

func (st *Store) handleDismiss(msg *nats.Msg) {
	if err := st.authorize(msg, auth.RoleManage, ""); err != nil {
		st.reply(msg, nil, err)
		return
	}

	key := string(msg.Data)
	chunks := strings.SplitN(key, ":", 2)
	if len(chunks) != 2 || chunks[0] == "" || chunks[1] == "" {
		st.reply(msg, nil, fmt.Errorf("invalid issue key: %v", key))
		return
	}

	st.lock.Lock()
	defer st.lock.Unlock()

	if !st.enabled {
		st.reply(msg, nil, data.ErrDisabled)
		return
	}

	if st.dismissed[key] {
		// already dismissed, nothing to do
		st.reply(msg, nil, nil)
		return
	}

	if err := st.db.dismiss(key); err != nil {
		st.reply(msg, nil, fmt.Errorf("storing dismissal: %w", err))
		return
	}
	st.dismissed[key] = true

	st.record(data.Telemetry{
		Kind:   data.TelemetryInteraction,
		Source: chunks[0],
		Result: data.ResultSuccess,
	})

	st.publishUpdate()
	st.reply(msg, nil, nil)
}

func (st *Store) handleExecute(msg *nats.Msg) {
	if err := st.authorize(msg, auth.RoleManage, ""); err != nil {
		st.reply(msg, nil, err)
		return
	}

	chunks := strings.SplitN(string(msg.Data), ":", 3)
	if len(chunks) != 3 || chunks[0] == "" || chunks[1] == "" || chunks[2] == "" {
		st.reply(msg, nil, fmt.Errorf("invalid action key: %v", string(msg.Data)))
		return
	}
	source, issueID, actionID := chunks[0], chunks[1], chunks[2]

	st.lock.Lock()
	defer st.lock.Unlock()

	if !st.enabled {
		st.reply(msg, nil, data.ErrDisabled)
		return
	}

	issue, ok := st.aggregate().FindIssue(source, issueID)
	if !ok {
		st.reply(msg, nil, data.ErrNotFound)
		return
	}

	found := false
	for _, a := range issue.Actions {
		if a.ID == actionID {
			found = true
			break
		}
	}
	if !found {
		st.reply(msg, nil, data.ErrNotFound)
		return
	}

	err := st.nc.Publish(client.SubjectAction(source), []byte(issueID+":"+actionID))
	if err != nil {
		st.reply(msg, nil, err)
		return
	}

	st.record(data.Telemetry{
		Kind:   data.TelemetryInteraction,
		Source: source,
		Result: data.ResultSuccess,
	})

	st.reply(msg, nil, nil)
}

func (st *Store) handleEnabled(msg *nats.Msg) {
	st.lock.Lock()
	enabled := st.enabled
	st.lock.Unlock()

	st.reply(msg, []byte(strconv.FormatBool(enabled)), nil)
}

func (st *Store) handleSupported(msg *nats.Msg) {
	st.reply(msg, []byte("true"), nil)
}

func (st *Store) handleInstance(msg *nats.Msg) {
	st.reply(msg, []byte(st.db.InstanceID()), nil)
}

func (st *Store) handleSetState(msg *nats.Msg) {
	if err := st.authorize(msg, auth.RoleManage, ""); err != nil {
		st.reply(msg, nil, err)
		return
	}

	enabled, err := strconv.ParseBool(string(msg.Data))
	if err != nil {
		st.reply(msg, nil, fmt.Errorf("parsing enabled state: %w", err))
		return
	}

	st.lock.Lock()
	defer st.lock.Unlock()

	if enabled == st.enabled {
		st.reply(msg, nil, nil)
		return
	}

	if err := st.db.setEnabled(enabled); err != nil {
		st.reply(msg, nil, fmt.Errorf("storing enabled state: %w", err))
		return
	}
	st.enabled = enabled

	log.Println("store: safety center enabled:", enabled)

	st.record(data.Telemetry{
		Kind:   data.TelemetryInteraction,
		Result: data.ResultSuccess,
	})

	if enabled {
		// sources may have drifted while we were off
		if _, err := st.startRefresh(data.ReasonCenterEnabled); err != nil {
			log.Println("store: enable refresh error:", err)
		}
	}

	st.publishUpdate()
	st.reply(msg, nil, nil)
}

func (st *Store) handleTelemetryQuery(msg *nats.Msg) {
	if err := st.authorize(msg, auth.RoleManage, ""); err != nil {
		st.reply(msg, nil, err)
		return
	}

	q, err := data.PbDecodeTelemetryQuery(msg.Data)
	if err != nil {
		st.reply(msg, nil, fmt.Errorf("decoding query: %w", err))
		return
	}

	ts, err := st.db.telemetryQuery(q)
	if err != nil {
		st.reply(msg, nil, err)
		return
	}

	st.reply(msg, ts.ToPb(), nil)
}
