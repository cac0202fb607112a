// Package testutil provides shared helpers for integration tests.
// Helpers in this package skip automatically when TEST_DATABASE_URL is not
// set, so the unit-test suite runs without a database.
package testutil

import (
	"context"
	"database/sql"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver for database/sql
)

// TripsDB bundles a pgx pool with assertions against the bookaway_trips table.
type TripsDB struct {
	Pool *pgxpool.Pool
}

// NewTripsDB opens a pool against the TEST_DATABASE_URL database and empties
// bookaway_trips both before the test (in case an earlier run crashed) and
// after it, so tests never see each other's rows. ReplaceAll commits its own
// transactions, which rules out the rollback-isolation trick — cleanup has to
// be explicit.
func NewTripsDB(t *testing.T) *TripsDB {
	t.Helper()

	pool := NewPool(t)
	db := &TripsDB{Pool: pool}

	db.truncate(t)
	t.Cleanup(func() { db.truncate(t) })

	return db
}

// CountTrips returns the number of rows currently in bookaway_trips.
func (db *TripsDB) CountTrips(t *testing.T) int {
	t.Helper()
	var n int
	err := db.Pool.QueryRow(context.Background(), `SELECT count(*) FROM bookaway_trips`).Scan(&n)
	if err != nil {
		t.Fatalf("testutil.TripsDB.CountTrips: %v", err)
	}
	return n
}

func (db *TripsDB) truncate(t *testing.T) {
	t.Helper()
	_, err := db.Pool.Exec(context.Background(), `TRUNCATE TABLE bookaway_trips RESTART IDENTITY`)
	if err != nil {
		t.Fatalf("testutil.TripsDB.truncate: %v", err)
	}
}

// NewPool opens a *pgxpool.Pool for the database named by TEST_DATABASE_URL,
// skipping the test when the variable is not set. The pool is closed when the
// test and its subtests finish.
func NewPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	dsn := requireDSN(t)

	pool, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		t.Fatalf("testutil.NewPool: open pool: %v", err)
	}
	if err := pool.Ping(context.Background()); err != nil {
		pool.Close()
		t.Fatalf("testutil.NewPool: ping: %v", err)
	}

	t.Cleanup(pool.Close)
	return pool
}

// NewSQLDB opens a *sql.DB for TEST_DATABASE_URL via the pgx stdlib driver.
// Needed where database/sql is required, e.g. driving goose in tests.
func NewSQLDB(t *testing.T) *sql.DB {
	t.Helper()

	dsn := requireDSN(t)

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Fatalf("testutil.NewSQLDB: open: %v", err)
	}
	if err := db.PingContext(context.Background()); err != nil {
		db.Close()
		t.Fatalf("testutil.NewSQLDB: ping: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}

// MustOpenSQLDB opens a *sql.DB for the given DSN and panics on failure.
// For TestMain functions, which have no *testing.T. Callers close it.
func MustOpenSQLDB(dsn string) *sql.DB {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		panic("testutil.MustOpenSQLDB: open: " + err.Error())
	}
	if err := db.PingContext(context.Background()); err != nil {
		db.Close()
		panic("testutil.MustOpenSQLDB: ping: " + err.Error())
	}
	return db
}

// requireDSN returns TEST_DATABASE_URL, skipping the test when unset.
func requireDSN(t *testing.T) string {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set; skipping integration test")
	}
	return dsn
}
