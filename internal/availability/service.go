package availability

import (
	"context"
	"fmt"
	"strings"

	"github.com/statusgarden/availability/internal/domain"
)

// Service implements availability query logic on top of a Repository.
type Service struct {
	repo    Repository
	globals map[string]struct{}
}

// NewService creates a new availability service. globalServices lists the
// region-less service names used to resolve the "global" region in filters.
func NewService(repo Repository, globalServices []string) *Service {
	globals := make(map[string]struct{}, len(globalServices))
	for _, name := range globalServices {
		globals[strings.ToLower(name)] = struct{}{}
	}
	return &Service{repo: repo, globals: globals}
}

// IsGlobalService reports whether a service name is a known region-less one.
func (s *Service) IsGlobalService(name string) bool {
	_, ok := s.globals[strings.ToLower(name)]
	return ok
}

// Store persists a parsed incident.
func (s *Service) Store(ctx context.Context, incident *domain.ParsedIncident) error {
	if err := s.repo.Upsert(ctx, incident); err != nil {
		return fmt.Errorf("store incident %s: %w", incident.ID(), err)
	}
	return nil
}

// List returns incidents matching the filter. Service and region values are
// normalized to lower case; a filter whose end precedes its start is
// rejected with ErrInvalidTimeRange.
func (s *Service) List(ctx context.Context, filter Filter) ([]*domain.ParsedIncident, error) {
	if !filter.Start.IsZero() && !filter.End.IsZero() && filter.End.Before(filter.Start) {
		return nil, ErrInvalidTimeRange
	}

	filter.Services = normalizeTokens(filter.Services)
	filter.Regions = normalizeTokens(filter.Regions)

	incidents, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list incidents: %w", err)
	}
	return incidents, nil
}

// normalizeTokens lowercases and trims filter values, dropping empties.
func normalizeTokens(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
