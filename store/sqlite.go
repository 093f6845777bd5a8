package store

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/safetycenter/safetycenter/auth"
	"github.com/safetycenter/safetycenter/data"
)

// DbSqlite is the persistence layer for the safety center store. It
// holds the instance metadata, the latest blob pushed by each source,
// dismissed issue keys, and the telemetry log.
type DbSqlite struct {
	db         *sql.DB
	instanceID string
	authKey    auth.Key
}

// NewDbSqlite opens the database at the given path, creating and
// initializing it if needed.
func NewDbSqlite(dbFile string) (*DbSqlite, error) {
	ret := &DbSqlite{}

	pragmas := "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(1)"

	db, err := sql.Open("sqlite", dbFile+pragmas)
	if err != nil {
		return nil, err
	}
	ret.db = db

	err = ret.initMeta()
	if err != nil {
		return nil, fmt.Errorf("initializing db: %w", err)
	}

	return ret, nil
}

func (sdb *DbSqlite) initMeta() error {
	_, err := sdb.db.Exec(`CREATE TABLE IF NOT EXISTS meta (
		id INTEGER PRIMARY KEY NOT NULL CHECK (id = 0),
		version INTEGER,
		instance_id TEXT,
		auth_key BLOB,
		enabled INTEGER)`)
	if err != nil {
		return fmt.Errorf("creating meta table: %w", err)
	}

	_, err = sdb.db.Exec(`CREATE TABLE IF NOT EXISTS source_data (
		source TEXT PRIMARY KEY NOT NULL,
		data BLOB,
		updated INTEGER)`)
	if err != nil {
		return fmt.Errorf("creating source_data table: %w", err)
	}

	_, err = sdb.db.Exec(`CREATE TABLE IF NOT EXISTS dismissed (
		key TEXT PRIMARY KEY NOT NULL,
		time INTEGER)`)
	if err != nil {
		return fmt.Errorf("creating dismissed table: %w", err)
	}

	_, err = sdb.db.Exec(`CREATE TABLE IF NOT EXISTS telemetry (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		time INTEGER,
		kind TEXT,
		record BLOB)`)
	if err != nil {
		return fmt.Errorf("creating telemetry table: %w", err)
	}

	rows, err := sdb.db.Query("SELECT instance_id, auth_key, enabled FROM meta WHERE id = 0")
	if err != nil {
		return fmt.Errorf("querying meta: %w", err)
	}
	defer rows.Close()

	if rows.Next() {
		var keyBytes []byte
		var enabled int
		err = rows.Scan(&sdb.instanceID, &keyBytes, &enabled)
		if err != nil {
			return err
		}
		sdb.authKey = auth.KeyFromBytes(keyBytes)
		return nil
	}
	if err := rows.Err(); err != nil {
		return err
	}

	// new database, generate identity and signing key
	sdb.instanceID = uuid.New().String()
	key, err := auth.NewKey(32)
	if err != nil {
		return err
	}
	sdb.authKey = key

	log.Println("store: new database, instance ID:", sdb.instanceID)

	_, err = sdb.db.Exec("INSERT INTO meta (id, version, instance_id, auth_key, enabled) VALUES (0, 1, ?, ?, 1)",
		sdb.instanceID, key.Bytes())
	return err
}

// Close closes the database.
func (sdb *DbSqlite) Close() error {
	return sdb.db.Close()
}

// InstanceID returns the persistent ID of this safety center instance.
func (sdb *DbSqlite) InstanceID() string {
	return sdb.instanceID
}

// AuthKey returns the token signing key for this instance.
func (sdb *DbSqlite) AuthKey() auth.Key {
	return sdb.authKey
}

func (sdb *DbSqlite) enabled() (bool, error) {
	var enabled int
	err := sdb.db.QueryRow("SELECT enabled FROM meta WHERE id = 0").Scan(&enabled)
	if err != nil {
		return false, err
	}
	return enabled != 0, nil
}

func (sdb *DbSqlite) setEnabled(enabled bool) error {
	v := 0
	if enabled {
		v = 1
	}
	_, err := sdb.db.Exec("UPDATE meta SET enabled = ? WHERE id = 0", v)
	return err
}

func (sdb *DbSqlite) setSourceData(source string, sd data.SourceData) error {
	_, err := sdb.db.Exec(`INSERT INTO source_data (source, data, updated) VALUES (?, ?, ?)
		ON CONFLICT(source) DO UPDATE SET data = excluded.data, updated = excluded.updated`,
		source, sd.ToPb(), time.Now().UnixNano())
	return err
}

func (sdb *DbSqlite) sourceData(source string) (data.SourceData, error) {
	var b []byte
	err := sdb.db.QueryRow("SELECT data FROM source_data WHERE source = ?", source).Scan(&b)
	if errors.Is(err, sql.ErrNoRows) {
		return data.SourceData{}, data.ErrNotFound
	}
	if err != nil {
		return data.SourceData{}, err
	}
	return data.PbDecodeSourceData(b)
}

// allSourceData loads the latest data for every source that has pushed.
func (sdb *DbSqlite) allSourceData() (map[string]data.SourceData, error) {
	rows, err := sdb.db.Query("SELECT source, data FROM source_data")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ret := make(map[string]data.SourceData)
	for rows.Next() {
		var source string
		var b []byte
		err = rows.Scan(&source, &b)
		if err != nil {
			return nil, err
		}
		sd, err := data.PbDecodeSourceData(b)
		if err != nil {
			return nil, fmt.Errorf("decoding data for %v: %w", source, err)
		}
		ret[source] = sd
	}
	return ret, rows.Err()
}

func (sdb *DbSqlite) dismiss(key string) error {
	_, err := sdb.db.Exec(`INSERT INTO dismissed (key, time) VALUES (?, ?)
		ON CONFLICT(key) DO NOTHING`, key, time.Now().UnixNano())
	return err
}

func (sdb *DbSqlite) dismissedKeys() (map[string]bool, error) {
	rows, err := sdb.db.Query("SELECT key FROM dismissed")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ret := make(map[string]bool)
	for rows.Next() {
		var key string
		err = rows.Scan(&key)
		if err != nil {
			return nil, err
		}
		ret[key] = true
	}
	return ret, rows.Err()
}

func (sdb *DbSqlite) telemetryAdd(t data.Telemetry) error {
	_, err := sdb.db.Exec("INSERT INTO telemetry (time, kind, record) VALUES (?, ?, ?)",
		t.Time.UnixNano(), string(t.Kind), t.ToPb())
	return err
}

func (sdb *DbSqlite) telemetryQuery(q data.TelemetryQuery) (data.Telemetries, error) {
	query := "SELECT record FROM telemetry WHERE time >= ?"
	args := []any{q.Since.UnixNano()}
	if q.Kind != "" {
		query += " AND kind = ?"
		args = append(args, string(q.Kind))
	}
	query += " ORDER BY id"

	rows, err := sdb.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ret data.Telemetries
	for rows.Next() {
		var b []byte
		err = rows.Scan(&b)
		if err != nil {
			return nil, err
		}
		t, err := data.PbDecodeTelemetry(b)
		if err != nil {
			return nil, err
		}
		ret = append(ret, t)
	}
	return ret, rows.Err()
}
