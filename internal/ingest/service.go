package ingest

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/statusgarden/availability/internal/availability"
	"github.com/statusgarden/availability/internal/domain"
	"github.com/statusgarden/availability/internal/pkg/ctxlog"
	"github.com/statusgarden/availability/internal/timeline"
)

// maxReportedErrors caps the error samples carried in a run report.
const maxReportedErrors = 10

// FeedFetcher fetches the dashboard feed.
type FeedFetcher interface {
	Fetch(ctx context.Context) (*domain.Feed, error)
}

// FailureNotifier reports a run that finished with failures.
type FailureNotifier interface {
	NotifyRunFailures(ctx context.Context, report *RunReport) error
}

// RunReport summarizes one ingestion run.
type RunReport struct {
	RunID     string        `json:"run_id"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
	Total     int           `json:"total"`
	Stored    int           `json:"stored"`
	Failed    int           `json:"failed"`
	// Errors holds up to maxReportedErrors failure samples.
	Errors []string `json:"errors,omitempty"`
}

// Service runs feed ingestion: fetch, parse, store.
type Service struct {
	fetcher  FeedFetcher
	repo     availability.Repository
	parser   *timeline.Parser
	notifier FailureNotifier
	globals  map[string]struct{}
}

// NewService creates a new ingest service. notifier may be nil.
func NewService(fetcher FeedFetcher, repo availability.Repository, parser *timeline.Parser, notifier FailureNotifier, globalServices []string) *Service {
	globals := make(map[string]struct{}, len(globalServices))
	for _, name := range globalServices {
		globals[strings.ToLower(name)] = struct{}{}
	}
	return &Service{
		fetcher:  fetcher,
		repo:     repo,
		parser:   parser,
		notifier: notifier,
		globals:  globals,
	}
}

// Run executes one ingestion pass over the whole feed. A single incident
// that fails to parse or store is counted and logged but never aborts the
// batch; only a feed fetch failure is fatal. The returned report is also
// pushed to the failure notifier when anything failed.
func (s *Service) Run(ctx context.Context) (*RunReport, error) {
	report := &RunReport{
		RunID:     uuid.NewString(),
		StartedAt: time.Now().UTC(),
	}

	logger := ctxlog.FromContext(ctx).With("run_id", report.RunID)
	ctx = ctxlog.WithLogger(ctx, logger)

	feed, err := s.fetcher.Fetch(ctx)
	if err != nil {
		recordRun("fetch_error", time.Since(report.StartedAt))
		return nil, fmt.Errorf("fetch feed: %w", err)
	}

	incidents := feed.Incidents()
	report.Total = len(incidents)
	logger.Info("ingestion run started", "incidents", report.Total)

	for i := range incidents {
		raw := &incidents[i]

		parsed, err := s.parseIncident(ctx, raw)
		if err != nil {
			s.recordFailure(ctx, report, raw, err)
			continue
		}

		if err := s.repo.Upsert(ctx, parsed); err != nil {
			s.recordFailure(ctx, report, raw, err)
			continue
		}

		report.Stored++
		recordIncident("stored")
	}

	report.Duration = time.Since(report.StartedAt)

	outcome := "ok"
	if report.Failed > 0 {
		outcome = "partial"
	}
	recordRun(outcome, report.Duration)

	logger.Info("ingestion run finished",
		"stored", report.Stored,
		"failed", report.Failed,
		"duration_ms", report.Duration.Milliseconds(),
	)

	if report.Failed > 0 && s.notifier != nil {
		if err := s.notifier.NotifyRunFailures(ctx, report); err != nil {
			logger.Error("failed to send run failure report", "error", err)
		}
	}

	return report, nil
}

func (s *Service) recordFailure(ctx context.Context, report *RunReport, raw *domain.RawIncident, err error) {
	report.Failed++
	recordIncident("failed")

	ctxlog.FromContext(ctx).Warn("failed to ingest incident",
		"service", raw.Service,
		"summary", raw.Summary,
		"error", err,
	)

	if len(report.Errors) < maxReportedErrors {
		report.Errors = append(report.Errors, fmt.Sprintf("%s: %v", raw.Service, err))
	}
}

// parseIncident turns a raw feed entry into a stored ParsedIncident.
func (s *Service) parseIncident(ctx context.Context, raw *domain.RawIncident) (*domain.ParsedIncident, error) {
	postedAt := raw.PostedAt()
	if postedAt.IsZero() {
		return nil, fmt.Errorf("invalid posting date %q", raw.Date)
	}

	tl, err := s.parser.Timeline(ctx, postedAt, raw.Description)
	if err != nil {
		return nil, fmt.Errorf("extract timeline: %w", err)
	}

	return &domain.ParsedIncident{
		Service:     domain.ServiceShortName(raw.Service),
		Region:      domain.RegionWithGlobals(raw.Service, s.globals),
		PostedAt:    postedAt,
		Start:       tl.Start,
		End:         tl.End,
		Duration:    tl.Duration(),
		Summary:     raw.Summary,
		Description: tl.DescriptionText(),
		Status:      raw.StatusCode(),
		Timeline:    tl,
	}, nil
}
