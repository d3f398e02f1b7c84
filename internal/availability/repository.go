// Package availability exposes parsed incident history: storage, filtered
// queries and the HTTP surface serving them.
package availability

import (
	"context"
	"errors"
	"time"

	"github.com/statusgarden/availability/internal/domain"
)

// Domain errors.
var (
	ErrInvalidTimeRange = errors.New("end of time range precedes start")
)

// Filter narrows an incident listing. Zero values mean "no constraint".
type Filter struct {
	// Services restricts results to these service short names.
	Services []string
	// Regions restricts results to these regions ("global" included).
	Regions []string
	// Start and End bound the posting time of returned incidents.
	Start time.Time
	End   time.Time

	Limit  int
	Offset int
}

// Repository defines the interface for parsed incident storage.
type Repository interface {
	// Upsert stores an incident, replacing any previous parse of the same
	// service, region and posting time.
	Upsert(ctx context.Context, incident *domain.ParsedIncident) error
	// List returns incidents matching the filter, newest first.
	List(ctx context.Context, filter Filter) ([]*domain.ParsedIncident, error)
}
