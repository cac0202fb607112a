package bookaway

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/farepoint/bookaway-scraper/internal/domain"
	"github.com/farepoint/bookaway-scraper/internal/parse"
)

// ErrSkipped marks an entry dropped by the price rule (price missing or ≤ 0).
// It is a classification, not a failure: the siblings of a skipped entry are
// unaffected and nothing is logged at error level.
var ErrSkipped = errors.New("entry skipped: no usable price")

// tripEntry is the subset of a raw search result the scraper cares about.
// Every field is optional on the wire; absent fields decode to zero values
// and the normalizer decides what that means per field.
type tripEntry struct {
	Price struct {
		Value        float64 `json:"value"`
		CurrencyCode string  `json:"currencyCode"`
	} `json:"price"`
	DepartureDate string `json:"departureDate"`
	ArrivalDate   string `json:"arrivalDate"`
	Duration      string `json:"duration"`
	Operator      struct {
		Name string `json:"name"`
	} `json:"operator"`
	TransportType string `json:"transportType"`
}

// Normalize maps one raw search result entry into a TripRecord.
//
// Entries without a positive price return ErrSkipped. Entries that fail to
// decode return a descriptive error. In both cases the caller skips just this
// entry — a single bad entry never discards the rest of its response.
func Normalize(raw json.RawMessage, route domain.RouteSpec, date string) (domain.TripRecord, error) {
	var e tripEntry
	if err := json.Unmarshal(raw, &e); err != nil {
		return domain.TripRecord{}, fmt.Errorf("bookaway.Normalize: decode entry: %w", err)
	}

	if e.Price.Value <= 0 {
		return domain.TripRecord{}, ErrSkipped
	}

	return domain.TripRecord{
		RouteURL:      RouteURL(route, date),
		Origin:        route.FromTitle,
		Destination:   route.ToTitle,
		TravelDate:    date,
		DepartureTime: parse.Timestamp(e.DepartureDate),
		ArrivalTime:   parse.Timestamp(e.ArrivalDate),
		TransportType: nullable(e.TransportType),
		DurationMin:   parse.DurationMinutes(e.Duration),
		Price:         e.Price.Value,
		Currency:      nullable(e.Price.CurrencyCode),
		OperatorName:  nullable(e.Operator.Name),
		Provider:      domain.Provider,
	}, nil
}

// RouteURL builds the public page URL for a route on a travel date. The path
// template is fixed regardless of which API host the client talks to.
func RouteURL(route domain.RouteSpec, date string) string {
	return fmt.Sprintf("%s/en/travel/%s/to/%s/on/%s", defaultBaseURL, route.FromSlug, route.ToSlug, date)
}

// nullable maps an absent (empty) provider string to a SQL NULL.
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
