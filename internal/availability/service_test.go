package availability

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/statusgarden/availability/internal/domain"
)

type fakeRepo struct {
	incidents  []*domain.ParsedIncident
	lastFilter Filter
	upserted   []*domain.ParsedIncident
	err        error
}

func (f *fakeRepo) Upsert(_ context.Context, incident *domain.ParsedIncident) error {
	if f.err != nil {
		return f.err
	}
	f.upserted = append(f.upserted, incident)
	return nil
}

func (f *fakeRepo) List(_ context.Context, filter Filter) ([]*domain.ParsedIncident, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.lastFilter = filter
	return f.incidents, nil
}

func TestService_List_InvalidRange(t *testing.T) {
	svc := NewService(&fakeRepo{}, nil)

	_, err := svc.List(context.Background(), Filter{
		Start: time.Date(2020, 11, 10, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2020, 11, 9, 0, 0, 0, 0, time.UTC),
	})
	assert.ErrorIs(t, err, ErrInvalidTimeRange)
}

func TestService_List_NormalizesFilterTokens(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewService(repo, nil)

	_, err := svc.List(context.Background(), Filter{
		Services: []string{" EC2 ", "s3", ""},
		Regions:  []string{"US-EAST-1"},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"ec2", "s3"}, repo.lastFilter.Services)
	assert.Equal(t, []string{"us-east-1"}, repo.lastFilter.Regions)
}

func TestService_IsGlobalService(t *testing.T) {
	svc := NewService(&fakeRepo{}, []string{"CloudFront", "route53"})

	assert.True(t, svc.IsGlobalService("cloudfront"))
	assert.True(t, svc.IsGlobalService("Route53"))
	assert.False(t, svc.IsGlobalService("ec2"))
}

func TestService_Store(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewService(repo, nil)

	incident := &domain.ParsedIncident{Service: "ec2", Region: "us-east-1"}
	require.NoError(t, svc.Store(context.Background(), incident))
	require.Len(t, repo.upserted, 1)
	assert.Same(t, incident, repo.upserted[0])
}
