// Package pg implements a metadata store in a Postgresql relational database.
package pg

import (
	"context"
	"database/sql"
	stderrs "errors"
	"fmt"

	"github.com/bobg/sqlutil"
	_ "github.com/lib/pq" // register the postgres type for sql.Open
	"github.com/pkg/errors"

	"github.com/bobg/hub/kv"
)

var _ kv.Store = &Store{}

// Store is a Postgresql-based implementation of kv.Store.
type Store struct {
	db *sql.DB
}

// Schema is the SQL that New executes.
// Keys use the "C" collation so that range scans follow byte order.
const Schema = `
CREATE TABLE IF NOT EXISTS kv (
  k TEXT COLLATE "C" PRIMARY KEY NOT NULL,
  v BYTEA NOT NULL
);
`

// New produces a new Store using `db` for storage.
// It expects to create the table `kv`,
// or for that table already to exist with the correct schema.
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
	const q = `SELECT EXISTS (SELECT 1 FROM kv WHERE k = $1)`

	var ok bool
	err := s.db.QueryRowContext(ctx, q, key).Scan(&ok)
	return ok, errors.Wrapf(err, "checking %s", key)
}

const (
	putQuery    = `INSERT INTO kv (k, v) VALUES ($1, $2) ON CONFLICT (k) DO UPDATE SET v = EXCLUDED.v`
	deleteQuery = `DELETE FROM kv WHERE k = $1`
)

// Put stores value at key.
func (s *Store) Put(ctx context.Context, key string, value []byte) error {
	if value == nil {
		value = []byte{}
	}
	_, err := s.db.ExecContext(ctx, putQuery, key, value)
	return errors.Wrapf(err, "putting %s", key)
}

// Delete removes key.
func (s *Store) Delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, deleteQuery, key)
	return errors.Wrapf(err, "deleting %s", key)
}

// Range produces the selected keys in order.
func (s *Store) Range(ctx context.Context, r kv.Range, f func(string, []byte) error) error {
	lo, hi := r.Bounds()

	cols := "k, v"
	if r.KeysOnly {
		cols = "k, NULL::BYTEA"
	}
	q := fmt.Sprintf(`SELECT %s FROM kv WHERE k >= $1`, cols)
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
	if err := sqlutil.ForQueryRows(ctx, s.db, q, args...); err != nil {
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
func (s *Store) Write(ctx context.Context, b *kv.Batch) (err error) {
	var tx *sql.Tx
	if b.Atomic {
		tx, err = s.db.BeginTx(ctx, nil)
		if err != nil {
			return errors.Wrap(err, "beginning transaction")
		}
		defer func() {
			if err != nil {
				tx.Rollback()
			}
		}()
	}

	for _, op := range b.Ops {
		q, args := putQuery, []interface{}{op.Key, op.Value}
		if op.Delete() {
			q, args = deleteQuery, []interface{}{op.Key}
		}
		if tx != nil {
			_, err = tx.ExecContext(ctx, q, args...)
		} else {
			_, err = s.db.ExecContext(ctx, q, args...)
		}
		if err != nil {
			return errors.Wrapf(err, "writing %s", op.Key)
		}
	}

	if tx != nil {
		err = errors.Wrap(tx.Commit(), "committing transaction")
	}
	return err
}

func init() {
	kv.Register("pg", func(ctx context.Context, conf map[string]interface{}) (kv.Store, error) {
		conn, ok := conf["conn"].(string)
		if !ok {
			return nil, errors.New(`missing "conn" parameter`)
		}
		db, err := sql.Open("postgres", conn)
		if err != nil {
			return nil, errors.Wrap(err, "opening db")
		}
		return New(ctx, db)
	})
}
