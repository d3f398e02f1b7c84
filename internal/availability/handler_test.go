package availability

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/statusgarden/availability/internal/domain"
)

func testIncident() *domain.ParsedIncident {
	start := time.Date(2020, 11, 10, 18, 15, 0, 0, time.UTC)
	end := start.Add(2 * time.Hour)
	return &domain.ParsedIncident{
		Service:  "ec2",
		Region:   "us-east-1",
		PostedAt: end,
		Start:    start,
		End:      end,
		Duration: 7200,
		Summary:  "Increased API Error Rates",
		Status:   domain.StatusYellow,
		Timeline: &domain.EventTimeline{
			Start:                          start,
			End:                            end,
			Intervals:                      []domain.TimeInterval{{Start: start, End: end}},
			StartTimeWasFoundInDescription: true,
			EndTimeWasFoundInDescription:   true,
		},
	}
}

func newTestRouter(repo *fakeRepo) http.Handler {
	r := chi.NewRouter()
	NewHandler(NewService(repo, nil)).RegisterRoutes(r)
	return r
}

func TestHandler_List_JSON(t *testing.T) {
	repo := &fakeRepo{incidents: []*domain.ParsedIncident{testIncident()}}
	router := newTestRouter(repo)

	req := httptest.NewRequest(http.MethodGet, "/availability?services=ec2,s3&regions=us-east-1&start=2020-11-01T00:00:00Z&end=2020-12-01T00:00:00Z", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data []IncidentResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Data, 1)

	got := body.Data[0]
	assert.Equal(t, "ec2", got.Service)
	assert.Equal(t, "us-east-1", got.Region)
	assert.Equal(t, int64(7200), got.DurationSeconds)
	assert.Equal(t, "yellow", got.Status)
	assert.Equal(t, map[string]int64{"2020-11": 7200}, got.MonthlyDurations)

	assert.Equal(t, []string{"ec2", "s3"}, repo.lastFilter.Services)
	assert.Equal(t, []string{"us-east-1"}, repo.lastFilter.Regions)
	assert.Equal(t, time.Date(2020, 11, 1, 0, 0, 0, 0, time.UTC), repo.lastFilter.Start)
}

func TestHandler_List_EpochParams(t *testing.T) {
	repo := &fakeRepo{}
	router := newTestRouter(repo)

	req := httptest.NewRequest(http.MethodGet, "/availability?start=1604188800", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, time.Date(2020, 11, 1, 0, 0, 0, 0, time.UTC), repo.lastFilter.Start)
}

func TestHandler_List_CSV(t *testing.T) {
	repo := &fakeRepo{incidents: []*domain.ParsedIncident{testIncident()}}
	router := newTestRouter(repo)

	req := httptest.NewRequest(http.MethodGet, "/availability?output=csv", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "availability.csv")

	body := rec.Body.String()
	assert.Contains(t, body, "service,region,posted_at")
	assert.Contains(t, body, "ec2,us-east-1,2020-11-10T20:15:00Z,2020-11-10T18:15:00Z,2020-11-10T20:15:00Z,7200,yellow,Increased API Error Rates,2020-11=7200")
}

func TestHandler_List_InvalidParams(t *testing.T) {
	router := newTestRouter(&fakeRepo{})

	tests := []struct {
		name string
		url  string
	}{
		{"bad start", "/availability?start=yesterday"},
		{"bad limit", "/availability?limit=-5"},
		{"bad offset", "/availability?offset=x"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tc.url, nil)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestHandler_List_InvertedRange(t *testing.T) {
	router := newTestRouter(&fakeRepo{})

	req := httptest.NewRequest(http.MethodGet, "/availability?start=2020-12-01T00:00:00Z&end=2020-11-01T00:00:00Z", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
