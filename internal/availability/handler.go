package availability

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/statusgarden/availability/internal/domain"
	"github.com/statusgarden/availability/internal/pkg/httputil"
)

// Pagination constants.
const (
	DefaultListLimit = 100
	MaxListLimit     = 1000
)

// Handler handles HTTP requests for availability queries.
type Handler struct {
	service *Service
}

// NewHandler creates a new availability handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the availability routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/availability", h.List)
}

// IncidentResponse is the JSON shape of one parsed incident.
type IncidentResponse struct {
	Service          string                `json:"service"`
	Region           string                `json:"region"`
	PostedAt         time.Time             `json:"posted_at"`
	Start            time.Time             `json:"start"`
	End              time.Time             `json:"end"`
	DurationSeconds  int64                 `json:"duration_seconds"`
	MonthlyDurations map[string]int64      `json:"monthly_durations"`
	Summary          string                `json:"summary"`
	Status           string                `json:"status"`
	Description      string                `json:"description"`
	Timeline         *domain.EventTimeline `json:"timeline,omitempty"`
}

func toResponse(incident *domain.ParsedIncident) IncidentResponse {
	return IncidentResponse{
		Service:          incident.Service,
		Region:           incident.Region,
		PostedAt:         incident.PostedAt,
		Start:            incident.Start,
		End:              incident.End,
		DurationSeconds:  incident.Duration,
		MonthlyDurations: incident.MonthlyOutageDurations(),
		Summary:          incident.Summary,
		Status:           incident.Status.String(),
		Description:      incident.Description,
		Timeline:         incident.Timeline,
	}
}

// List handles GET /availability.
//
// Query parameters: services and regions as comma-separated lists, start and
// end as RFC 3339 timestamps or decimal epoch seconds, limit and offset for
// paging, and output=json|csv.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	filter, err := filterFromQuery(r)
	if err != nil {
		httputil.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	incidents, err := h.service.List(r.Context(), filter)
	if err != nil {
		httputil.HandleError(r.Context(), w, err, []httputil.ErrorMapping{
			{Error: ErrInvalidTimeRange, Status: http.StatusBadRequest},
		})
		return
	}

	if strings.EqualFold(r.URL.Query().Get("output"), "csv") {
		h.writeCSV(w, incidents)
		return
	}

	responses := make([]IncidentResponse, 0, len(incidents))
	for _, incident := range incidents {
		responses = append(responses, toResponse(incident))
	}
	httputil.Success(w, http.StatusOK, responses)
}

func filterFromQuery(r *http.Request) (Filter, error) {
	q := r.URL.Query()
	filter := Filter{Limit: DefaultListLimit}

	if v := q.Get("services"); v != "" {
		filter.Services = strings.Split(v, ",")
	}
	if v := q.Get("regions"); v != "" {
		filter.Regions = strings.Split(v, ",")
	}

	var err error
	if filter.Start, err = parseTimeParam(q.Get("start")); err != nil {
		return Filter{}, fmt.Errorf("invalid start: %w", err)
	}
	if filter.End, err = parseTimeParam(q.Get("end")); err != nil {
		return Filter{}, fmt.Errorf("invalid end: %w", err)
	}

	if v := q.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit <= 0 {
			return Filter{}, fmt.Errorf("invalid limit %q", v)
		}
		if limit > MaxListLimit {
			limit = MaxListLimit
		}
		filter.Limit = limit
	}
	if v := q.Get("offset"); v != "" {
		offset, err := strconv.Atoi(v)
		if err != nil || offset < 0 {
			return Filter{}, fmt.Errorf("invalid offset %q", v)
		}
		filter.Offset = offset
	}

	return filter, nil
}

// parseTimeParam accepts RFC 3339 timestamps and decimal epoch seconds.
func parseTimeParam(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	if secs, err := strconv.ParseInt(value, 10, 64); err == nil {
		return time.Unix(secs, 0).UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("expected RFC 3339 or epoch seconds, got %q", value)
	}
	return t.UTC(), nil
}

var csvHeader = []string{
	"service", "region", "posted_at", "start", "end",
	"duration_seconds", "status", "summary", "months",
}

func (h *Handler) writeCSV(w http.ResponseWriter, incidents []*domain.ParsedIncident) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="availability.csv"`)
	w.WriteHeader(http.StatusOK)

	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(csvHeader); err != nil {
		return
	}

	for _, incident := range incidents {
		record := []string{
			incident.Service,
			incident.Region,
			incident.PostedAt.UTC().Format(time.RFC3339),
			incident.Start.UTC().Format(time.RFC3339),
			incident.End.UTC().Format(time.RFC3339),
			strconv.FormatInt(incident.Duration, 10),
			incident.Status.String(),
			incident.Summary,
			formatMonths(incident.MonthlyOutageDurations()),
		}
		if err := cw.Write(record); err != nil {
			return
		}
	}
}

// formatMonths renders the monthly duration map as "2020-11=3600;2020-12=60"
// with stable key order.
func formatMonths(months map[string]int64) string {
	keys := make([]string, 0, len(months))
	for k := range months {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%d", k, months[k]))
	}
	return strings.Join(parts, ";")
}
