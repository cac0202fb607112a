package scraper

import (
	"sync"

	"github.com/farepoint/bookaway-scraper/internal/domain"
)

// resultSet is the append-only collection shared by all fetch workers.
// Append is the only mutation during the fetch phase and is serialized by the
// mutex; ordering across workers is unspecified and immaterial.
type resultSet struct {
	mu      sync.Mutex
	records []domain.TripRecord
}

func (rs *resultSet) append(records ...domain.TripRecord) {
	if len(records) == 0 {
		return
	}
	rs.mu.Lock()
	rs.records = append(rs.records, records...)
	rs.mu.Unlock()
}

// all returns the accumulated records. Call only after every worker has
// finished — the slice is handed out without copying.
func (rs *resultSet) all() []domain.TripRecord {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return rs.records
}
