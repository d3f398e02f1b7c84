package domain

import (
	"fmt"
	"strconv"
	"time"
)

// IncidentStatus is the numeric status code a dashboard entry is posted with.
type IncidentStatus int

// Incident statuses.
const (
	StatusGreen  IncidentStatus = 0 // operating normally
	StatusBlue   IncidentStatus = 1 // informational message
	StatusYellow IncidentStatus = 2 // service degradation
	StatusRed    IncidentStatus = 3 // service disruption
)

// String returns the dashboard color name for the status code.
func (s IncidentStatus) String() string {
	switch s {
	case StatusGreen:
		return "green"
	case StatusBlue:
		return "blue"
	case StatusYellow:
		return "yellow"
	case StatusRed:
		return "red"
	default:
		return "unknown"
	}
}

// RawIncident is one entry of the dashboard feed, exactly as published.
// Field names and types mirror the upstream data.json document: the posting
// time arrives as a decimal string of epoch seconds and the status as a
// stringified small integer.
type RawIncident struct {
	ServiceName string `json:"service_name"`
	Summary     string `json:"summary"`
	Date        string `json:"date"`
	Status      string `json:"status"`
	Details     string `json:"details"`
	Description string `json:"description"`
	Service     string `json:"service"`
}

// PostedAt converts the Date attribute to a UTC instant.
// A malformed value yields the zero time.
func (r *RawIncident) PostedAt() time.Time {
	secs, err := strconv.ParseInt(r.Date, 10, 64)
	if err != nil {
		return time.Time{}
	}
	return time.Unix(secs, 0).UTC()
}

// StatusCode converts the Status attribute to an IncidentStatus.
// Unparseable values map to StatusGreen, matching the feed's habit of
// omitting the field for informational entries.
func (r *RawIncident) StatusCode() IncidentStatus {
	code, err := strconv.Atoi(r.Status)
	if err != nil {
		return StatusGreen
	}
	return IncidentStatus(code)
}

// Feed is the top-level shape of the dashboard data document.
type Feed struct {
	Current []RawIncident `json:"current"`
	Archive []RawIncident `json:"archive"`
}

// Incidents returns archive entries followed by current entries.
func (f *Feed) Incidents() []RawIncident {
	out := make([]RawIncident, 0, len(f.Archive)+len(f.Current))
	out = append(out, f.Archive...)
	out = append(out, f.Current...)
	return out
}

// ParsedIncident is a raw incident with the outage timeline extracted from
// its description. It is the unit of persistence and of API responses.
type ParsedIncident struct {
	Service     string         `json:"service"`
	Region      string         `json:"region"`
	PostedAt    time.Time      `json:"posted_at"`
	Start       time.Time      `json:"start"`
	End         time.Time      `json:"end"`
	Duration    int64          `json:"duration_seconds"`
	Summary     string         `json:"summary"`
	Description string         `json:"description"`
	Status      IncidentStatus `json:"status"`
	Timeline    *EventTimeline `json:"timeline"`
}

// ID is the storage partition key, combining service and region.
func (p *ParsedIncident) ID() string {
	return fmt.Sprintf("%s::%s", p.Service, p.Region)
}

// MonthlyOutageDurations splits the incident's start-to-end span into
// per-calendar-month buckets keyed YYYY-MM, in seconds. An outage crossing a
// month (or year) boundary contributes to every month it touches.
func (p *ParsedIncident) MonthlyOutageDurations() map[string]int64 {
	durations := make(map[string]int64)

	remaining := p.End.Sub(p.Start).Seconds()
	current := p.Start.UTC()

	for remaining > 0 {
		key := fmt.Sprintf("%d-%02d", current.Year(), int(current.Month()))

		nextMonth := time.Date(current.Year(), current.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)
		remainingInMonth := nextMonth.Sub(current).Seconds()

		if remainingInMonth > remaining {
			durations[key] = int64(remaining + 0.5)
		} else {
			durations[key] = int64(remainingInMonth + 0.5)
		}

		remaining -= remainingInMonth
		current = nextMonth
	}

	return durations
}
