// Package domain contains the core data types for the Bookaway scraper.
// This package has zero external dependencies and is imported by every other
// internal package (catalog, bookaway, scraper, repo).
package domain

import "time"

// Provider is the constant tag written into every scraped record, identifying
// the upstream source of the data.
const Provider = "bookaway"

// TripRecord is one normalized row destined for the bookaway_trips table.
// A TripRecord exists only if the upstream entry carried a price > 0; entries
// without a usable price are dropped during normalization and never reach
// this type.
type TripRecord struct {
	RouteURL    string
	Origin      string
	Destination string

	// TravelDate is the searched calendar day in YYYY-MM-DD form.
	TravelDate string

	DepartureTime *time.Time // nil when the provider omitted it
	ArrivalTime   *time.Time
	TransportType *string
	DurationMin   *int // total minutes; nil when unparseable

	Price float64

	// PriceINR is the converted price. Conversion happens upstream and is out
	// of scope here, so this stays nil and is written as 0.
	PriceINR *float64

	Currency     *string
	OperatorName *string
	Provider     string
}
