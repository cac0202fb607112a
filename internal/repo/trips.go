// Package repo contains all database access for the scraper.
// No business logic lives here — only SQL and type mapping.
package repo

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/farepoint/bookaway-scraper/internal/domain"
)

// DefaultChunkSize is the number of rows written per insert/commit when the
// caller does not configure one.
const DefaultChunkSize = 400

// TripStore defines the persistence contract for scraped trips.
// The orchestrator depends on this interface, not the Postgres implementation.
type TripStore interface {
	// ReplaceAll destructively replaces the contents of bookaway_trips with
	// the given records: existing rows and the identity sequence are cleared,
	// then the records are written in fixed-size chunks, each committed as it
	// succeeds. Returns the number of rows written. A failure mid-load leaves
	// the chunks committed so far in place.
	//
	// Records without a positive price are filtered out defensively; if
	// nothing remains, ReplaceAll returns domain.ErrNoRecords without
	// touching the table.
	ReplaceAll(ctx context.Context, trips []domain.TripRecord) (int, error)
}

// pgTripStore is the Postgres implementation of TripStore.
type pgTripStore struct {
	pool      *pgxpool.Pool
	chunkSize int
	log       *slog.Logger
}

// NewTripStore constructs a TripStore writing through the provided pool in
// chunks of chunkSize rows (DefaultChunkSize when <= 0).
func NewTripStore(pool *pgxpool.Pool, chunkSize int, logger *slog.Logger) TripStore {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &pgTripStore{pool: pool, chunkSize: chunkSize, log: logger}
}

func (s *pgTripStore) ReplaceAll(ctx context.Context, trips []domain.TripRecord) (int, error) {
	// Re-validate the price rule at load time. Normalization already enforces
	// it, so in practice nothing is dropped here.
	accepted := make([]domain.TripRecord, 0, len(trips))
	for _, t := range trips {
		if t.Price > 0 {
			accepted = append(accepted, t)
		}
	}
	if len(accepted) == 0 {
		// Guarded before the truncate: a run that scraped nothing must not
		// wipe the previous run's data.
		return 0, fmt.Errorf("repo.TripStore.ReplaceAll: %w", domain.ErrNoRecords)
	}

	// One connection for the whole load, released on every exit path.
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return 0, fmt.Errorf("repo.TripStore.ReplaceAll: acquire connection: %w", err)
	}
	defer conn.Release()

	if err := s.reset(ctx, conn); err != nil {
		return 0, fmt.Errorf("repo.TripStore.ReplaceAll: %w", err)
	}
	s.log.Info("bookaway_trips truncated, identity sequence reset")

	written := 0
	for _, chunk := range chunks(accepted, s.chunkSize) {
		if err := s.insertChunk(ctx, conn, chunk); err != nil {
			// Earlier chunks are already committed; report how far we got.
			return written, fmt.Errorf("repo.TripStore.ReplaceAll: after %d rows: %w", written, err)
		}
		written += len(chunk)
		s.log.Info("chunk committed", "rows_total", written)
	}

	return written, nil
}

// reset clears the table and its identity counter in its own transaction,
// committed before any insert begins.
func (s *pgTripStore) reset(ctx context.Context, conn *pgxpool.Conn) error {
	tx, err := conn.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin reset: %w", err)
	}
	if _, err := tx.Exec(ctx, `TRUNCATE TABLE bookaway_trips RESTART IDENTITY`); err != nil {
		_ = tx.Rollback(ctx)
		return fmt.Errorf("truncate: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit reset: %w", err)
	}
	return nil
}

// insertChunk writes one chunk as a single multi-row insert in its own
// transaction, committed immediately on success.
func (s *pgTripStore) insertChunk(ctx context.Context, conn *pgxpool.Conn, chunk []domain.TripRecord) error {
	q, args := buildInsert(chunk)

	tx, err := conn.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin chunk: %w", err)
	}
	if _, err := tx.Exec(ctx, q, args...); err != nil {
		_ = tx.Rollback(ctx)
		return fmt.Errorf("insert chunk of %d: %w", len(chunk), err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit chunk: %w", err)
	}
	return nil
}

// insertColumns is the column order used by buildInsert; it matches the
// argument order appended per record.
const insertColumns = `route_url, origin, destination, departure_time, arrival_time, transport_type,
		duration_min, price, price_inr, currency, travel_date, operator_name, provider`

const columnsPerRow = 13

// buildInsert renders a multi-row INSERT statement with positional
// placeholders for the given chunk. Nullable numeric fields default to 0 to
// satisfy the table's NOT NULL columns; nullable text fields pass through as
// NULL.
func buildInsert(chunk []domain.TripRecord) (string, []any) {
	var sb strings.Builder
	sb.WriteString("INSERT INTO bookaway_trips (")
	sb.WriteString(insertColumns)
	sb.WriteString(") VALUES ")

	args := make([]any, 0, len(chunk)*columnsPerRow)
	for i, t := range chunk {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteByte('(')
		for j := 0; j < columnsPerRow; j++ {
			if j > 0 {
				sb.WriteString(", ")
			}
			fmt.Fprintf(&sb, "$%d", i*columnsPerRow+j+1)
		}
		sb.WriteByte(')')

		args = append(args,
			t.RouteURL,
			t.Origin,
			t.Destination,
			t.DepartureTime,
			t.ArrivalTime,
			t.TransportType,
			zeroIfNilInt(t.DurationMin),
			t.Price,
			zeroIfNilFloat(t.PriceINR),
			t.Currency,
			t.TravelDate,
			t.OperatorName,
			t.Provider,
		)
	}

	return sb.String(), args
}

// chunks partitions trips into consecutive slices of at most size records.
func chunks(trips []domain.TripRecord, size int) [][]domain.TripRecord {
	var out [][]domain.TripRecord
	for start := 0; start < len(trips); start += size {
		end := min(start+size, len(trips))
		out = append(out, trips[start:end])
	}
	return out
}

func zeroIfNilInt(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}

func zeroIfNilFloat(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
