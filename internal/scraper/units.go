package scraper

import (
	"time"

	"github.com/farepoint/bookaway-scraper/internal/domain"
)

// dateLayout is the calendar-date format the search API expects.
const dateLayout = "2006-01-02"

// Unit is one independent (route, travel date) fetch-and-normalize work item.
// Units share no state and impose no ordering on each other.
type Unit struct {
	Route      domain.RouteSpec
	TravelDate string
}

// Units expands the route catalog across a horizon of days: for every route,
// one unit per day offset 0..days-1 starting from now. The result is
// route-major, date-minor and always exactly len(routes)*days long.
func Units(routes []domain.RouteSpec, days int, now time.Time) []Unit {
	units := make([]Unit, 0, len(routes)*days)
	for _, route := range routes {
		for offset := 0; offset < days; offset++ {
			units = append(units, Unit{
				Route:      route,
				TravelDate: now.AddDate(0, 0, offset).Format(dateLayout),
			})
		}
	}
	return units
}
