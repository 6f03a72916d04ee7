// Copyright (c) 2025 The Granary developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package eventdb persists the domain events of the staking ledger in
// sqlite, for audit queries over pools, accounts and time ranges.
package eventdb

import (
	"context"
	"database/sql"
	"math/big"

	sqlite3 "github.com/mattn/go-sqlite3"

	"github.com/granarylabs/granary/builtin/farm"
	"github.com/granarylabs/granary/granary"
)

const eventTableSchema = `CREATE TABLE IF NOT EXISTS event (
	seq INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	pool INTEGER NOT NULL,
	account BLOB(20) NOT NULL,
	amount BLOB NOT NULL,
	time INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS event_pool_account ON event(pool, account);
CREATE INDEX IF NOT EXISTS event_time ON event(time);`

type EventDB struct {
	path          string
	db            *sql.DB
	driverVersion string
}

// New create or open event db at given path.
func New(path string) (eventDB *EventDB, err error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if eventDB == nil {
			db.Close()
		}
	}()
	if _, err := db.Exec(eventTableSchema); err != nil {
		return nil, err
	}

	driverVer, _, _ := sqlite3.Version()
	return &EventDB{
		path,
		db,
		driverVer,
	}, nil
}

// NewMem create an event db in ram.
func NewMem() (*EventDB, error) {
	return New(":memory:")
}

// Close close the event db.
func (db *EventDB) Close() {
	db.db.Close()
}

func (db *EventDB) Path() string {
	return db.path
}

// Record implements farm.Recorder.
func (db *EventDB) Record(ev *farm.Event) error {
	_, err := db.db.Exec(
		"INSERT INTO event(name, pool, account, amount, time) VALUES(?,?,?,?,?)",
		ev.Name,
		ev.Pool,
		ev.Account.Bytes(),
		ev.Amount.Bytes(),
		ev.Time,
	)
	return err
}

// Order of filtered results by time.
type Order string

const (
	ASC  Order = "asc"
	DESC Order = "desc"
)

// Options paginate filtered results.
type Options struct {
	Offset uint64
	Limit  uint64
}

// Filter selects events. Nil criteria match everything; To == 0 leaves
// the range open-ended.
type Filter struct {
	Name    string
	Pool    *uint32
	Account *granary.Address
	From    uint64
	To      uint64
	Order   Order
	Options *Options
}

// FilterEvents queries stored events.
func (db *EventDB) FilterEvents(ctx context.Context, filter *Filter) ([]*farm.Event, error) {
	if filter == nil {
		return db.queryEvents(ctx, "SELECT name, pool, account, amount, time FROM event ORDER BY seq ASC")
	}
	var args []interface{}
	stmt := "SELECT name, pool, account, amount, time FROM event WHERE 1"
	if filter.Name != "" {
		args = append(args, filter.Name)
		stmt += " AND name = ?"
	}
	if filter.Pool != nil {
		args = append(args, *filter.Pool)
		stmt += " AND pool = ?"
	}
	if filter.Account != nil {
		args = append(args, filter.Account.Bytes())
		stmt += " AND account = ?"
	}
	if filter.From > 0 {
		args = append(args, filter.From)
		stmt += " AND time >= ?"
	}
	if filter.To > 0 {
		args = append(args, filter.To)
		stmt += " AND time <= ?"
	}

	if filter.Order == DESC {
		stmt += " ORDER BY seq DESC"
	} else {
		stmt += " ORDER BY seq ASC"
	}

	if filter.Options != nil {
		stmt += " LIMIT ?, ?"
		args = append(args, filter.Options.Offset, filter.Options.Limit)
	}
	return db.queryEvents(ctx, stmt, args...)
}

func (db *EventDB) queryEvents(ctx context.Context, stmt string, args ...interface{}) ([]*farm.Event, error) {
	rows, err := db.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*farm.Event
	for rows.Next() {
		var (
			name    string
			pool    uint32
			account []byte
			amount  []byte
			time    uint64
		)
		if err := rows.Scan(&name, &pool, &account, &amount, &time); err != nil {
			return nil, err
		}
		events = append(events, &farm.Event{
			Name:    name,
			Pool:    pool,
			Account: granary.BytesToAddress(account),
			Amount:  new(big.Int).SetBytes(amount),
			Time:    time,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}
