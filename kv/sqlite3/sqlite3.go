// Package sqlite3 implements a Sqlite-based metadata store.
package sqlite3

import (
	"context"
	"database/sql"
	stderrs "errors"

	"github.com/bobg/sqlutil"
	_ "github.com/mattn/go-sqlite3" // register the sqlite3 type for sql.Open
	"github.com/pkg/errors"

	"github.com/bobg/hub/kv"
)

var _ kv.Store = &Store{}

// Store is a Sqlite-based metadata store.
type Store struct {
	db *sql.DB
}

// Schema is the SQL that New executes.
// It creates the `kv` table if it does not exist.
// (If it does exist, it must have the columns and constraints described here.)
// Keys are TEXT compared with Sqlite's default BINARY collation,
// so range scans follow byte order.
const Schema = `
CREATE TABLE IF NOT EXISTS kv (
  k TEXT PRIMARY KEY NOT NULL,
  v BLOB NOT NULL
);
`

// New produces a new Store using `db` for storage.
func New(ctx context.Context, db *sql.DB) (*Store, error) {
	_, err := db.ExecContext(ctx, Schema)
	return &Store{db: db}, errors.Wrap(err, "creating schema")
}

// Get gets the value at key.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	const q = `SELECT v FROM kv WHERE k = $1`

	var v []byte
	err := s.db.QueryRowContext(ctx, q, key).Scan(&v)
	if stderrs.Is(err, sql.ErrNoRows) {
		return nil, kv.ErrNotFound
	}
	if v == nil && err == nil {
		v = []byte{}
	}
	return v, errors.Wrapf(err, "getting %s", key)
}

// Exists tells whether key is present.
func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	const q = `SELECT COUNT(*) FROM kv WHERE k = $1`

	var n int
	err := s.db.QueryRowContext(ctx, q, key).Scan(&n)
	return n > 0, errors.Wrapf(err, "checking %s", key)
}

const putQuery = `INSERT INTO kv (k, v) VALUES ($1, $2) ON CONFLICT (k) DO UPDATE SET v = excluded.v`

// Put stores value at key.
func (s *Store) Put(ctx context.Context, key string, value []byte) error {
	if value == nil {
		value = []byte{}
	}
	_, err := s.db.ExecContext(ctx, putQuery, key, value)
	return errors.Wrapf(err, "putting %s", key)
}

const deleteQuery = `DELETE FROM kv WHERE k = $1`

// Delete removes key.
func (s *Store) Delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, deleteQuery, key)
	return errors.Wrapf(err, "deleting %s", key)
}

// Range produces the selected keys in order.
// Rows are read in full before f is first called,
// so f may call back into the store.
func (s *Store) Range(ctx context.Context, r kv.Range, f func(string, []byte) error) error {
	lo, hi := r.Bounds()

	q := `SELECT k, v FROM kv WHERE k >= $1`
	if r.KeysOnly {
		q = `SELECT k, NULL FROM kv WHERE k >= $1`
	}
	args := []interface{}{lo}
	if hi != "" {
		q += ` AND k < $2`
		args = append(args, hi)
	}
	q += ` ORDER BY k`
	if r.Reverse {
		q += ` DESC`
	}

	type pair struct {
		k string
		v []byte
	}
	var pairs []pair
	args = append(args, func(k string, v []byte) {
		pairs = append(pairs, pair{k: k, v: v})
	})
	err := sqlutil.ForQueryRows(ctx, s.db, q, args...)
	if err != nil {
		return errors.Wrapf(err, "scanning range [%s, %s)", lo, hi)
	}

	for _, p := range pairs {
		if err := f(p.k, p.v); err != nil {
			return err
		}
	}
	return nil
}

// Write commits a batch.
// Atomic batches run in a single transaction.
func (s *Store) Write(ctx context.Context, b *kv.Batch) error {
	if !b.Atomic {
		for _, op := range b.Ops {
			if err := s.apply(ctx, s.db, op); err != nil {
				return err
			}
		}
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}
	for _, op := range b.Ops {
		if err := s.apply(ctx, tx, op); err != nil {
			tx.Rollback()
			return err
		}
	}
	return errors.Wrap(tx.Commit(), "committing transaction")
}

type execer interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
}

func (s *Store) apply(ctx context.Context, db execer, op kv.Op) error {
	if op.Delete() {
		_, err := db.ExecContext(ctx, deleteQuery, op.Key)
		return errors.Wrapf(err, "deleting %s", op.Key)
	}
	_, err := db.ExecContext(ctx, putQuery, op.Key, op.Value)
	return errors.Wrapf(err, "putting %s", op.Key)
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func init() {
	kv.Register("sqlite3", func(ctx context.Context, conf map[string]interface{}) (kv.Store, error) {
		conn, ok := conf["conn"].(string)
		if !ok {
			return nil, errors.New(`missing "conn" parameter`)
		}
		db, err := sql.Open("sqlite3", conn)
		if err != nil {
			return nil, errors.Wrap(err, "opening db")
		}

		// Sqlite permits one writer at a time.
		db.SetMaxOpenConns(1)

		return New(ctx, db)
	})
}
