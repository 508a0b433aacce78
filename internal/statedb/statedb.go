// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package statedb reads and writes the sqlite database the charm
// framework keeps under the charm root. The framework stores two
// things there between runs: snapshots, keyed by handle path, and
// notices, the queue of deferred observer calls. Reproducing the
// database lets a test hand a charm the deferred events and stored
// state a previous run would have left behind, and inspect what the
// run under test leaves in turn.
package statedb

import (
	"context"
	"database/sql"
	"regexp"

	"github.com/juju/errors"
	_ "github.com/mattn/go-sqlite3"
	"gopkg.in/yaml.v3"

	"github.com/canonical/scenario/state"
)

// Filename is the database's name inside the charm root.
const Filename = ".unit-state.db"

// Snapshot handles for events look like "MyCharm/on/update_status[4]";
// any other handle carrying an index is a stored state blob, e.g.
// "MyCharm/StoredStateData[_stored]".
var (
	eventPathRegexp   = regexp.MustCompile(`^(|.*/)on/[a-zA-Z_]+\[\d+\]$`)
	storedStateRegexp = regexp.MustCompile(`^(?:(.*)/)?(\D+)\[(.*)\]$`)
)

const schemaDDL = `
CREATE TABLE IF NOT EXISTS snapshot (
    handle TEXT PRIMARY KEY,
    data BLOB
);

CREATE TABLE IF NOT EXISTS notice (
    sequence INTEGER PRIMARY KEY AUTOINCREMENT,
    event_path TEXT,
    observer_path TEXT,
    method_name TEXT
);
`

// DB is an open unit state database.
type DB struct {
	db *sql.DB
}

// Open opens the unit state database at path, creating the file and
// the schema as needed.
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.Trace(err)
	}
	if _, err := db.Exec(schemaDDL); err != nil {
		_ = db.Close()
		return nil, errors.Annotate(err, "creating unit state schema")
	}
	return &DB{db: db}, nil
}

// Close closes the database.
func (d *DB) Close() error {
	return errors.Trace(d.db.Close())
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// SaveSnapshot stores data under the given handle path, replacing any
// previous snapshot held there.
func (d *DB) SaveSnapshot(ctx context.Context, handle string, data map[string]interface{}) error {
	return saveSnapshot(ctx, d.db, handle, data)
}

func saveSnapshot(ctx context.Context, e execer, handle string, data map[string]interface{}) error {
	blob, err := yaml.Marshal(data)
	if err != nil {
		return errors.Annotatef(err, "marshalling snapshot for %q", handle)
	}
	_, err = e.ExecContext(ctx,
		"REPLACE INTO snapshot (handle, data) VALUES (?, ?)", handle, blob)
	return errors.Trace(err)
}

// LoadSnapshot returns the snapshot stored under the given handle
// path, or a NotFound error when there is none.
func (d *DB) LoadSnapshot(ctx context.Context, handle string) (map[string]interface{}, error) {
	var blob []byte
	err := d.db.QueryRowContext(ctx,
		"SELECT data FROM snapshot WHERE handle = ?", handle).Scan(&blob)
	if err == sql.ErrNoRows {
		return nil, errors.NotFoundf("snapshot for %q", handle)
	} else if err != nil {
		return nil, errors.Trace(err)
	}
	data := map[string]interface{}{}
	if err := yaml.Unmarshal(blob, &data); err != nil {
		return nil, errors.Annotatef(err, "unmarshalling snapshot for %q", handle)
	}
	return data, nil
}

// ListSnapshots returns every stored handle path.
func (d *DB) ListSnapshots(ctx context.Context) ([]string, error) {
	rows, err := d.db.QueryContext(ctx, "SELECT handle FROM snapshot")
	if err != nil {
		return nil, errors.Trace(err)
	}
	defer func() { _ = rows.Close() }()

	var handles []string
	for rows.Next() {
		var handle string
		if err := rows.Scan(&handle); err != nil {
			return nil, errors.Trace(err)
		}
		handles = append(handles, handle)
	}
	return handles, errors.Trace(rows.Err())
}

// SaveNotice appends a notice to the queue.
func (d *DB) SaveNotice(ctx context.Context, eventPath, observerPath, methodName string) error {
	_, err := d.db.ExecContext(ctx,
		"INSERT INTO notice (event_path, observer_path, method_name) VALUES (?, ?, ?)",
		eventPath, observerPath, methodName)
	return errors.Trace(err)
}

// Notice is one queued observer call.
type Notice struct {
	EventPath    string
	ObserverPath string
	MethodName   string
}

// Notices returns the queued notices in insertion order. A non-empty
// eventPath restricts the result to that event's notices.
func (d *DB) Notices(ctx context.Context, eventPath string) ([]Notice, error) {
	query := "SELECT event_path, observer_path, method_name FROM notice ORDER BY sequence"
	var args []interface{}
	if eventPath != "" {
		query = "SELECT event_path, observer_path, method_name FROM notice WHERE event_path = ? ORDER BY sequence"
		args = append(args, eventPath)
	}
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Trace(err)
	}
	defer func() { _ = rows.Close() }()

	var notices []Notice
	for rows.Next() {
		var notice Notice
		if err := rows.Scan(&notice.EventPath, &notice.ObserverPath, &notice.MethodName); err != nil {
			return nil, errors.Trace(err)
		}
		notices = append(notices, notice)
	}
	return notices, errors.Trace(rows.Err())
}

// ApplyState writes the state's deferred events and stored state
// blobs into the database, the way the framework would have left them
// after a previous run.
func (d *DB) ApplyState(ctx context.Context, st *state.State) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Trace(err)
	}
	abort := func(err error) error {
		_ = tx.Rollback()
		return errors.Trace(err)
	}
	for _, deferred := range st.Deferred {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO notice (event_path, observer_path, method_name) VALUES (?, ?, ?)",
			deferred.HandlePath, deferred.Owner, deferred.Observer); err != nil {
			return abort(err)
		}
		if err := saveSnapshot(ctx, tx, deferred.HandlePath, deferred.SnapshotData); err != nil {
			return abort(err)
		}
	}
	for _, stored := range st.StoredStates {
		if err := saveSnapshot(ctx, tx, stored.HandlePath(), stored.Content); err != nil {
			return abort(err)
		}
	}
	return errors.Trace(tx.Commit())
}

// DeferredEvents reconstructs the deferred events recorded in the
// database: one per notice whose handle names an event, carrying the
// event's snapshot when one was stored.
func (d *DB) DeferredEvents(ctx context.Context) ([]*state.DeferredEvent, error) {
	handles, err := d.ListSnapshots(ctx)
	if err != nil {
		return nil, errors.Trace(err)
	}
	var deferred []*state.DeferredEvent
	for _, handle := range handles {
		if !eventPathRegexp.MatchString(handle) {
			continue
		}
		notices, err := d.Notices(ctx, handle)
		if err != nil {
			return nil, errors.Trace(err)
		}
		for _, notice := range notices {
			snapshot, err := d.LoadSnapshot(ctx, notice.EventPath)
			if errors.Is(err, errors.NotFound) {
				snapshot = map[string]interface{}{}
			} else if err != nil {
				return nil, errors.Trace(err)
			}
			deferred = append(deferred, &state.DeferredEvent{
				HandlePath:   notice.EventPath,
				Owner:        notice.ObserverPath,
				Observer:     notice.MethodName,
				SnapshotData: snapshot,
			})
		}
	}
	return deferred, nil
}

// StoredStates reconstructs the stored state blobs recorded in the
// database: every snapshot whose handle is not an event's.
func (d *DB) StoredStates(ctx context.Context) ([]*state.StoredState, error) {
	handles, err := d.ListSnapshots(ctx)
	if err != nil {
		return nil, errors.Trace(err)
	}
	var stored []*state.StoredState
	for _, handle := range handles {
		if eventPathRegexp.MatchString(handle) {
			continue
		}
		match := storedStateRegexp.FindStringSubmatch(handle)
		if match == nil {
			continue
		}
		content, err := d.LoadSnapshot(ctx, handle)
		if err != nil {
			return nil, errors.Trace(err)
		}
		stored = append(stored, &state.StoredState{
			OwnerPath:    match[1],
			Name:         match[3],
			Content:      content,
			DataTypeName: match[2],
		})
	}
	return stored, nil
}
