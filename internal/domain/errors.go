package domain

import "errors"

// ErrEmptyCatalog is returned by catalog.Load when the route file parses
// cleanly but contains no routes. A run without routes has nothing to do.
var ErrEmptyCatalog = errors.New("route catalog is empty")

// ErrNoRecords is returned by the trip store when asked to load an empty
// record set. The table is never truncated in that case — a run where every
// unit failed must not wipe the previous run's data.
var ErrNoRecords = errors.New("no records to import")
