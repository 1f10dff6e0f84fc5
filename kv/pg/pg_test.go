package pg

import (
	"context"
	"database/sql"
	"os"
	"testing"

	"github.com/bobg/hub/kv/kvtest"
)

func TestStore(t *testing.T) {
	withStore(t, func(ctx context.Context, store *Store) {
		kvtest.Store(ctx, t, store)
	})
}

const connVar = "HUB_PG_CONN"

func withStore(t *testing.T, f func(context.Context, *Store)) {
	connstr := os.Getenv(connVar)
	if connstr == "" {
		t.Skipf("to run %s, set %s to a valid Postgresql connection string", t.Name(), connVar)
	}

	db, err := sql.Open("postgres", connstr)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	ctx := context.Background()
	if _, err = db.ExecContext(ctx, `DROP TABLE IF EXISTS kv`); err != nil {
		t.Fatal(err)
	}
	store, err := New(ctx, db)
	if err != nil {
		t.Fatal(err)
	}

	f(ctx, store)
}
