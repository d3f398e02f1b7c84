//go:build integration

package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/statusgarden/availability/internal/testutil"
)

// signIngestToken returns a bearer token accepted by the ingest endpoint.
func signIngestToken(t *testing.T) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "integration-tests",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(testJWTSecret))
	require.NoError(t, err)
	return signed
}

// resetIncidents empties the incident table so tests start from scratch.
func resetIncidents(t *testing.T) {
	t.Helper()
	_, err := testDB.Exec(context.Background(), "TRUNCATE parsed_incidents")
	require.NoError(t, err)
}

// setFeed replaces the document the stub dashboard serves.
func setFeed(t *testing.T, doc string) {
	t.Helper()
	require.True(t, json.Valid([]byte(doc)), "feed document must be valid JSON")
	feedDocument = []byte(doc)
}

// feedEntry renders one feed entry. The description is embedded as a JSON
// string, so it may carry markup freely.
func feedEntry(service, summary string, postedAt time.Time, status int, description string) string {
	desc, _ := json.Marshal(description)
	return fmt.Sprintf(
		`{"service_name":"%s","service":"%s","summary":"%s","date":"%d","status":"%d","details":"","description":%s}`,
		service, service, summary, postedAt.Unix(), status, desc,
	)
}

// updateBlock renders one dashboard update in the markup the parser splits on.
func updateBlock(label, body string) string {
	return fmt.Sprintf(`<div class="yellowfg"><span class="yellowfg"> %s</span> %s</div>`, label, body)
}

// runReport mirrors the ingest run report envelope.
type runReport struct {
	Data struct {
		RunID  string   `json:"run_id"`
		Total  int      `json:"total"`
		Stored int      `json:"stored"`
		Failed int      `json:"failed"`
		Errors []string `json:"errors"`
	} `json:"data"`
}

// triggerIngest runs one ingestion pass through the API and returns its report.
func triggerIngest(t *testing.T, client *testutil.Client) runReport {
	t.Helper()

	resp, err := client.WithToken(signIngestToken(t)).POST("/api/v1/ingest", nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var report runReport
	testutil.DecodeJSON(t, resp, &report)
	return report
}

// incidentResponse mirrors the availability list item shape.
type incidentResponse struct {
	Service          string           `json:"service"`
	Region           string           `json:"region"`
	PostedAt         time.Time        `json:"posted_at"`
	Start            time.Time        `json:"start"`
	End              time.Time        `json:"end"`
	DurationSeconds  int64            `json:"duration_seconds"`
	MonthlyDurations map[string]int64 `json:"monthly_durations"`
	Summary          string           `json:"summary"`
	Status           string           `json:"status"`
	Description      string           `json:"description"`
}

// listAvailability queries the availability endpoint and decodes the envelope.
func listAvailability(t *testing.T, client *testutil.Client, query string) []incidentResponse {
	t.Helper()

	resp, err := client.GET("/api/v1/availability" + query)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result struct {
		Data []incidentResponse `json:"data"`
	}
	testutil.DecodeJSON(t, resp, &result)
	return result.Data
}
