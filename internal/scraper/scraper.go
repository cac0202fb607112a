// Package scraper drives the fetch phase: it expands the route catalog into
// (route, date) units, runs every unit's search under a bounded concurrency
// cap, normalizes the responses, and aggregates the surviving records.
//
// Failures stay local: a failed unit contributes zero records and a malformed
// entry is dropped on its own, so the run always completes a best-effort pass
// over every unit.
package scraper

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/farepoint/bookaway-scraper/internal/bookaway"
	"github.com/farepoint/bookaway-scraper/internal/domain"
)

// SearchClient is the outbound API surface the scraper depends on.
// *bookaway.Client satisfies it; tests inject fakes.
type SearchClient interface {
	Search(ctx context.Context, route domain.RouteSpec, date string) ([]json.RawMessage, error)
}

// UnitFailure records one unit that contributed nothing, with the reason.
// Failures are diagnostics, not errors: the run carries on without them.
type UnitFailure struct {
	Origin      string
	Destination string
	TravelDate  string
	Reason      string
}

// RunStats summarizes one fetch phase.
type RunStats struct {
	Units          int           // units generated (routes × days)
	FailedUnits    []UnitFailure // units that yielded nothing, with reasons
	SkippedEntries int           // entries dropped by the price rule or malformed
	Records        int           // normalized records accumulated
	Elapsed        time.Duration
}

// Scraper runs the bounded fetch-and-normalize phase.
type Scraper struct {
	client      SearchClient
	log         *slog.Logger
	days        int
	concurrency int
	now         func() time.Time
}

// New builds a Scraper. days is the horizon of future travel dates per route;
// concurrency caps the number of in-flight searches.
func New(client SearchClient, logger *slog.Logger, days, concurrency int) *Scraper {
	return &Scraper{
		client:      client,
		log:         logger,
		days:        days,
		concurrency: concurrency,
		now:         time.Now,
	}
}

// Run executes every unit and returns the aggregated records with run stats.
// All units are launched up front and jointly awaited; at most `concurrency`
// searches are in flight at any moment (the permit is held through
// normalization, which is cheap relative to the network call). Run never
// fails — per-unit outcomes are reported through RunStats.
func (s *Scraper) Run(ctx context.Context, routes []domain.RouteSpec) ([]domain.TripRecord, RunStats) {
	start := s.now()
	units := Units(routes, s.days, start)

	s.log.Info("fetch phase started",
		"routes", len(routes), "days", s.days, "units", len(units), "concurrency", s.concurrency)

	results := &resultSet{}

	var (
		mu       sync.Mutex
		failures []UnitFailure
		skipped  int
	)

	sem := make(chan struct{}, s.concurrency)
	var wg sync.WaitGroup
	for _, unit := range units {
		wg.Add(1)
		go func(u Unit) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			records, unitSkipped, err := s.fetchUnit(ctx, u)
			if err != nil {
				s.log.Warn("unit failed",
					"origin", u.Route.FromTitle, "destination", u.Route.ToTitle,
					"date", u.TravelDate, "error", err)
				mu.Lock()
				failures = append(failures, UnitFailure{
					Origin:      u.Route.FromTitle,
					Destination: u.Route.ToTitle,
					TravelDate:  u.TravelDate,
					Reason:      err.Error(),
				})
				mu.Unlock()
				return
			}

			mu.Lock()
			skipped += unitSkipped
			mu.Unlock()
			results.append(records...)
		}(unit)
	}
	wg.Wait()

	records := results.all()
	stats := RunStats{
		Units:          len(units),
		FailedUnits:    failures,
		SkippedEntries: skipped,
		Records:        len(records),
		Elapsed:        time.Since(start),
	}

	s.log.Info("fetch phase finished",
		"records", stats.Records, "failed_units", len(stats.FailedUnits),
		"skipped_entries", stats.SkippedEntries, "elapsed", stats.Elapsed.String())

	return records, stats
}

// fetchUnit runs one unit: a single best-effort search plus per-entry
// normalization. The returned skipped count covers both priceless and
// malformed entries; malformed ones are additionally logged with their cause.
func (s *Scraper) fetchUnit(ctx context.Context, u Unit) ([]domain.TripRecord, int, error) {
	entries, err := s.client.Search(ctx, u.Route, u.TravelDate)
	if err != nil {
		return nil, 0, err
	}

	var records []domain.TripRecord
	skipped := 0
	for _, raw := range entries {
		record, err := bookaway.Normalize(raw, u.Route, u.TravelDate)
		if err != nil {
			if !errors.Is(err, bookaway.ErrSkipped) {
				s.log.Warn("entry dropped",
					"origin", u.Route.FromTitle, "destination", u.Route.ToTitle,
					"date", u.TravelDate, "error", err)
			}
			skipped++
			continue
		}
		records = append(records, record)
	}

	return records, skipped, nil
}
