package scraper_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farepoint/bookaway-scraper/internal/bookaway"
	"github.com/farepoint/bookaway-scraper/internal/domain"
	"github.com/farepoint/bookaway-scraper/internal/scraper"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func route(from, to string) domain.RouteSpec {
	return domain.RouteSpec{
		FromTitle: from,
		ToTitle:   to,
		FromSlug:  from + "-slug",
		ToSlug:    to + "-slug",
	}
}

// searchPayload is the part of the request body the fake servers inspect.
type searchPayload struct {
	Date string `json:"date"`
	From struct {
		Slug string `json:"slug"`
	} `json:"from"`
}

func decodePayload(t *testing.T, r *http.Request) searchPayload {
	t.Helper()
	var p searchPayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		t.Errorf("decode search payload: %v", err)
	}
	return p
}

// newScraper builds a Scraper backed by a fake API server.
func newScraper(t *testing.T, handler http.HandlerFunc, days, concurrency int) *scraper.Scraper {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client := bookaway.NewClient(discardLogger(), 5*time.Second, bookaway.WithBaseURL(srv.URL))
	return scraper.New(client, discardLogger(), days, concurrency)
}

const oneValidEntry = `{"results": [{"price": {"value": 10, "currencyCode": "USD"}, "duration": "1h 30m"}]}`

func TestRun_concurrencyBound(t *testing.T) {
	const limit = 3

	var inflight, peak atomic.Int64
	handler := func(w http.ResponseWriter, r *http.Request) {
		cur := inflight.Add(1)
		defer inflight.Add(-1)
		for {
			p := peak.Load()
			if cur <= p || peak.CompareAndSwap(p, cur) {
				break
			}
		}
		time.Sleep(20 * time.Millisecond) // hold the slot so overlap is observable
		_, _ = w.Write([]byte(oneValidEntry))
	}

	s := newScraper(t, handler, 4, limit)
	routes := []domain.RouteSpec{route("A", "B"), route("C", "D"), route("E", "F")}

	records, stats := s.Run(context.Background(), routes)

	assert.Equal(t, 12, stats.Units, "3 routes x 4 days")
	assert.Len(t, records, 12)
	assert.LessOrEqual(t, peak.Load(), int64(limit),
		"no more than %d requests may be in flight at once", limit)
}

func TestRun_faultIsolation(t *testing.T) {
	// One unit (the second travel date) gets a 500; every other unit succeeds.
	badDate := time.Now().AddDate(0, 0, 1).Format("2006-01-02")

	handler := func(w http.ResponseWriter, r *http.Request) {
		if decodePayload(t, r).Date == badDate {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(oneValidEntry))
	}

	s := newScraper(t, handler, 5, 2)
	routes := []domain.RouteSpec{route("A", "B")}

	records, stats := s.Run(context.Background(), routes)

	assert.Equal(t, 5, stats.Units)
	assert.Len(t, records, 4, "the 4 healthy units must be unaffected")
	require.Len(t, stats.FailedUnits, 1)
	assert.Equal(t, badDate, stats.FailedUnits[0].TravelDate)
	assert.Contains(t, stats.FailedUnits[0].Reason, "status 500")
}

func TestRun_poisonedEntryIsolation(t *testing.T) {
	// One malformed entry inside an otherwise valid response: the sibling
	// entries survive and the unit does not count as failed.
	handler := func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"results": [
			{"price": "poison"},
			{"price": {"value": 25, "currencyCode": "EUR"}},
			{"price": {"value": 0}}
		]}`))
	}

	s := newScraper(t, handler, 1, 1)

	records, stats := s.Run(context.Background(), []domain.RouteSpec{route("A", "B")})

	require.Len(t, records, 1, "only the entry with a positive price survives")
	assert.Equal(t, 25.0, records[0].Price)
	assert.Empty(t, stats.FailedUnits)
	assert.Equal(t, 2, stats.SkippedEntries, "one malformed + one priced at zero")
}

func TestRun_allUnitsFail(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	}

	s := newScraper(t, handler, 3, 2)

	records, stats := s.Run(context.Background(), []domain.RouteSpec{route("A", "B"), route("C", "D")})

	assert.Empty(t, records)
	assert.Len(t, stats.FailedUnits, 6)
	assert.Equal(t, 0, stats.Records)
}

// TestRun_endToEndScenario covers the reference scenario: one route over two
// days with concurrency 2; day 0 returns one valid entry (price 10 USD,
// duration "1h 30m"), day 1 returns a 500. Exactly one record results, with
// the duration normalized to 90 minutes.
func TestRun_endToEndScenario(t *testing.T) {
	day0 := time.Now().Format("2006-01-02")

	handler := func(w http.ResponseWriter, r *http.Request) {
		if decodePayload(t, r).Date != day0 {
			http.Error(w, "no service", http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(oneValidEntry))
	}

	s := newScraper(t, handler, 2, 2)
	routes := []domain.RouteSpec{route("A", "B")}

	records, stats := s.Run(context.Background(), routes)

	require.Len(t, records, 1)
	rec := records[0]
	assert.Equal(t, 10.0, rec.Price)
	require.NotNil(t, rec.Currency)
	assert.Equal(t, "USD", *rec.Currency)
	require.NotNil(t, rec.DurationMin)
	assert.Equal(t, 90, *rec.DurationMin)
	assert.Equal(t, day0, rec.TravelDate)
	assert.Equal(t, "A", rec.Origin)
	assert.Equal(t, "B", rec.Destination)
	assert.Equal(t, "bookaway", rec.Provider)

	assert.Equal(t, 2, stats.Units)
	assert.Len(t, stats.FailedUnits, 1)
}

func TestUnits(t *testing.T) {
	now := time.Date(2025, 6, 1, 15, 4, 5, 0, time.UTC)
	routes := []domain.RouteSpec{route("A", "B"), route("C", "D")}

	units := scraper.Units(routes, 3, now)

	require.Len(t, units, 6, "2 routes x 3 days")

	// Route-major, date-minor ordering.
	assert.Equal(t, "A", units[0].Route.FromTitle)
	assert.Equal(t, "2025-06-01", units[0].TravelDate)
	assert.Equal(t, "2025-06-02", units[1].TravelDate)
	assert.Equal(t, "2025-06-03", units[2].TravelDate)
	assert.Equal(t, "C", units[3].Route.FromTitle)
	assert.Equal(t, "2025-06-01", units[3].TravelDate)
}

func TestUnits_monthBoundary(t *testing.T) {
	now := time.Date(2025, 1, 31, 23, 0, 0, 0, time.UTC)

	units := scraper.Units([]domain.RouteSpec{route("A", "B")}, 2, now)

	require.Len(t, units, 2)
	assert.Equal(t, "2025-01-31", units[0].TravelDate)
	assert.Equal(t, "2025-02-01", units[1].TravelDate)
}
