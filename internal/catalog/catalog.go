// Package catalog loads the route catalog the scraper iterates over.
// The catalog is a JSON file of {from_title, to_title, from_slug, to_slug}
// objects supplied outside the repository; a missing or invalid file is a
// fatal startup condition.
package catalog

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"

	"github.com/farepoint/bookaway-scraper/internal/domain"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Load reads and validates the route catalog at path. Every entry must carry
// both titles and both slugs; the first invalid entry fails the whole load so
// a malformed catalog is caught before any network traffic.
func Load(path string) ([]domain.RouteSpec, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("catalog.Load: %w", err)
	}
	defer f.Close()

	var routes []domain.RouteSpec
	if err := json.NewDecoder(f).Decode(&routes); err != nil {
		return nil, fmt.Errorf("catalog.Load: decode %s: %w", path, err)
	}

	if len(routes) == 0 {
		return nil, fmt.Errorf("catalog.Load: %s: %w", path, domain.ErrEmptyCatalog)
	}

	for i, r := range routes {
		if err := validate.Struct(r); err != nil {
			return nil, fmt.Errorf("catalog.Load: entry %d (%q -> %q): %w", i, r.FromTitle, r.ToTitle, err)
		}
	}

	return routes, nil
}
