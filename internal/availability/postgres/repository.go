// Package postgres provides the PostgreSQL implementation of the
// availability repository.
package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/statusgarden/availability/internal/availability"
	"github.com/statusgarden/availability/internal/domain"
)

// Repository implements availability.Repository using PostgreSQL.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL repository.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// Upsert stores a parsed incident, replacing any previous parse of the same
// service, region and posting time.
func (r *Repository) Upsert(ctx context.Context, incident *domain.ParsedIncident) error {
	timelineJSON, err := json.Marshal(incident.Timeline)
	if err != nil {
		return fmt.Errorf("marshal timeline: %w", err)
	}

	query := `
		INSERT INTO parsed_incidents (
			service, region, posted_at, started_at, ended_at,
			duration_seconds, summary, description, status, timeline
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (service, region, posted_at)
		DO UPDATE SET
			started_at = EXCLUDED.started_at,
			ended_at = EXCLUDED.ended_at,
			duration_seconds = EXCLUDED.duration_seconds,
			summary = EXCLUDED.summary,
			description = EXCLUDED.description,
			status = EXCLUDED.status,
			timeline = EXCLUDED.timeline,
			updated_at = NOW()
	`
	_, err = r.db.Exec(ctx, query,
		incident.Service,
		incident.Region,
		incident.PostedAt,
		incident.Start,
		incident.End,
		incident.Duration,
		incident.Summary,
		incident.Description,
		int(incident.Status),
		timelineJSON,
	)
	if err != nil {
		return fmt.Errorf("upsert incident: %w", err)
	}
	return nil
}

// List retrieves parsed incidents matching the filter, newest first.
func (r *Repository) List(ctx context.Context, filter availability.Filter) ([]*domain.ParsedIncident, error) {
	query := `
		SELECT
			service, region, posted_at, started_at, ended_at,
			duration_seconds, summary, description, status, timeline
		FROM parsed_incidents
		WHERE 1=1
	`
	args := []interface{}{}
	argNum := 1

	if len(filter.Services) > 0 {
		query += fmt.Sprintf(" AND service = ANY($%d)", argNum)
		args = append(args, filter.Services)
		argNum++
	}

	if len(filter.Regions) > 0 {
		query += fmt.Sprintf(" AND region = ANY($%d)", argNum)
		args = append(args, filter.Regions)
		argNum++
	}

	if !filter.Start.IsZero() {
		query += fmt.Sprintf(" AND posted_at >= $%d", argNum)
		args = append(args, filter.Start)
		argNum++
	}

	if !filter.End.IsZero() {
		query += fmt.Sprintf(" AND posted_at <= $%d", argNum)
		args = append(args, filter.End)
		argNum++
	}

	query += " ORDER BY posted_at DESC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argNum)
		args = append(args, filter.Limit)
		argNum++
	}

	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argNum)
		args = append(args, filter.Offset)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list incidents: %w", err)
	}
	defer rows.Close()

	incidents := make([]*domain.ParsedIncident, 0)
	for rows.Next() {
		var incident domain.ParsedIncident
		var status int
		var timelineJSON []byte

		err := rows.Scan(
			&incident.Service,
			&incident.Region,
			&incident.PostedAt,
			&incident.Start,
			&incident.End,
			&incident.Duration,
			&incident.Summary,
			&incident.Description,
			&status,
			&timelineJSON,
		)
		if err != nil {
			return nil, fmt.Errorf("scan incident: %w", err)
		}

		incident.Status = domain.IncidentStatus(status)
		if len(timelineJSON) > 0 {
			var tl domain.EventTimeline
			if err := json.Unmarshal(timelineJSON, &tl); err != nil {
				return nil, fmt.Errorf("unmarshal timeline for %s: %w", incident.ID(), err)
			}
			incident.Timeline = &tl
		}

		incidents = append(incidents, &incident)
	}

	return incidents, rows.Err()
}
