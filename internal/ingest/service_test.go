package ingest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/statusgarden/availability/internal/availability"
	"github.com/statusgarden/availability/internal/domain"
	"github.com/statusgarden/availability/internal/timeline"
)

type fakeFetcher struct {
	feed *domain.Feed
	err  error
}

func (f *fakeFetcher) Fetch(context.Context) (*domain.Feed, error) {
	return f.feed, f.err
}

type fakeRepo struct {
	upserted []*domain.ParsedIncident
	failFor  map[string]error
}

func (f *fakeRepo) Upsert(_ context.Context, incident *domain.ParsedIncident) error {
	if err, ok := f.failFor[incident.Service]; ok {
		return err
	}
	f.upserted = append(f.upserted, incident)
	return nil
}

func (f *fakeRepo) List(context.Context, availability.Filter) ([]*domain.ParsedIncident, error) {
	return nil, nil
}

type fakeNotifier struct {
	reports []*RunReport
}

func (f *fakeNotifier) NotifyRunFailures(_ context.Context, report *RunReport) error {
	f.reports = append(f.reports, report)
	return nil
}

func newTestService(t *testing.T, fetcher FeedFetcher, repo *fakeRepo, notifier FailureNotifier) *Service {
	t.Helper()
	parser, err := timeline.NewParser(timeline.DefaultConfig())
	require.NoError(t, err)
	return NewService(fetcher, repo, parser, notifier, []string{"cloudfront"})
}

func rawIncident(service, date, description string) domain.RawIncident {
	return domain.RawIncident{
		Service:     service,
		ServiceName: service,
		Summary:     "Service issue",
		Date:        date,
		Status:      "1",
		Description: description,
	}
}

func TestService_Run_StoresParsedIncidents(t *testing.T) {
	// 2018-05-15 20:00 UTC
	description := `<div><span> 8:50 AM PDT</span> Between 5:27 AM and 8:17 AM PDT we experienced increased error rates. The issue has been resolved.</div>`
	fetcher := &fakeFetcher{feed: &domain.Feed{
		Current: []domain.RawIncident{rawIncident("ec2-us-east-1", "1526414400", description)},
	}}
	repo := &fakeRepo{}

	report, err := newTestService(t, fetcher, repo, nil).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, report.Total)
	assert.Equal(t, 1, report.Stored)
	assert.Equal(t, 0, report.Failed)
	assert.NotEmpty(t, report.RunID)

	require.Len(t, repo.upserted, 1)
	stored := repo.upserted[0]
	assert.Equal(t, "ec2", stored.Service)
	assert.Equal(t, "us-east-1", stored.Region)
	assert.Equal(t, time.Date(2018, 5, 15, 12, 27, 0, 0, time.UTC), stored.Start)
	assert.Equal(t, time.Date(2018, 5, 15, 15, 17, 0, 0, time.UTC), stored.End)
	assert.Equal(t, domain.StatusBlue, stored.Status)
}

func TestService_Run_FailedIncidentDoesNotAbortBatch(t *testing.T) {
	good := rawIncident("s3-us-west-2", "1526414400", `<div><span> 9:00 AM PDT</span> The issue has been resolved.</div>`)
	badDate := rawIncident("ec2-us-east-1", "not-a-date", "")
	malformed := rawIncident("rds-eu-west-1", "1526414400", "plain text with no update markup")

	fetcher := &fakeFetcher{feed: &domain.Feed{
		Archive: []domain.RawIncident{badDate, malformed},
		Current: []domain.RawIncident{good},
	}}
	repo := &fakeRepo{}
	notifier := &fakeNotifier{}

	report, err := newTestService(t, fetcher, repo, notifier).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, report.Total)
	assert.Equal(t, 1, report.Stored)
	assert.Equal(t, 2, report.Failed)
	assert.Len(t, report.Errors, 2)

	// Failures trigger the operator webhook.
	require.Len(t, notifier.reports, 1)
	assert.Equal(t, report, notifier.reports[0])
}

func TestService_Run_FetchErrorIsFatal(t *testing.T) {
	fetcher := &fakeFetcher{err: errors.New("connection refused")}

	_, err := newTestService(t, fetcher, &fakeRepo{}, nil).Run(context.Background())
	assert.Error(t, err)
}

func TestService_Run_StoreErrorCountsAsFailure(t *testing.T) {
	description := `<div><span> 9:00 AM PDT</span> The issue has been resolved.</div>`
	fetcher := &fakeFetcher{feed: &domain.Feed{
		Current: []domain.RawIncident{rawIncident("ec2-us-east-1", "1526414400", description)},
	}}
	repo := &fakeRepo{failFor: map[string]error{"ec2": errors.New("db down")}}

	report, err := newTestService(t, fetcher, repo, nil).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, report.Stored)
	assert.Equal(t, 1, report.Failed)
}

func TestService_ParseIncident_GlobalService(t *testing.T) {
	svc := newTestService(t, &fakeFetcher{}, &fakeRepo{}, nil)

	parsed, err := svc.parseIncident(context.Background(),
		&domain.RawIncident{
			Service:     "cloudfront",
			Date:        "1526414400",
			Description: `<div><span> 9:00 AM PDT</span> The issue has been resolved.</div>`,
		})
	require.NoError(t, err)

	assert.Equal(t, "cloudfront", parsed.Service)
	assert.Equal(t, domain.RegionGlobal, parsed.Region)
}
