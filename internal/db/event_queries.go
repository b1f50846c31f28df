package db

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// InsertRawEventParams controls raw event inserts.
type InsertRawEventParams struct {
	Source      string
	ExternalID  string
	URL         *string
	Title       string
	Body        *string
	Metrics     json.RawMessage
	Language    *string
	PublishedAt *time.Time
	CapturedAt  time.Time
}

// UnmatchedEvent is one raw event pending entity matching.
type UnmatchedEvent struct {
	EventID int64
	Title   string
	Body    *string
}

// EventRow is one raw event row for API listings.
type EventRow struct {
	EventID           int64           `json:"event_id"`
	Source            string          `json:"source"`
	ExternalID        string          `json:"external_id"`
	URL               *string         `json:"url,omitempty"`
	Title             string          `json:"title"`
	Body              *string         `json:"body,omitempty"`
	Metrics           json.RawMessage `json:"metrics,omitempty"`
	Language          *string         `json:"language,omitempty"`
	PublishedAt       *time.Time      `json:"published_at,omitempty"`
	CapturedAt        time.Time       `json:"captured_at"`
	MatchedSteamAppID *int64          `json:"matched_steam_app_id,omitempty"`
	MatchConfidence   *float64        `json:"match_confidence,omitempty"`
	MatchReason       *string         `json:"match_reason,omitempty"`
}

// InsertRawEvent inserts the event if its (source, external_id) pair is new.
// A pre-existing pair reports inserted=false and is not an error.
func (p *Pool) InsertRawEvent(ctx context.Context, params InsertRawEventParams) (bool, error) {
	const q = `
INSERT INTO scout.raw_events
	(source, external_id, url, title, body, metrics, language, published_at, captured_at)
VALUES
	($1, $2, $3, $4, $5, $6::jsonb, $7, $8, $9)
ON CONFLICT (source, external_id) DO NOTHING
RETURNING event_id
`

	var metrics *string
	if len(params.Metrics) > 0 {
		s := string(params.Metrics)
		metrics = &s
	}

	var eventID int64
	err := p.QueryRow(
		ctx,
		q,
		params.Source,
		params.ExternalID,
		params.URL,
		params.Title,
		params.Body,
		metrics,
		params.Language,
		params.PublishedAt,
		params.CapturedAt,
	).Scan(&eventID)
	if err != nil {
		if IsNoRows(err) {
			return false, nil
		}
		return false, fmt.Errorf("insert raw event: %w", err)
	}
	return true, nil
}

func (p *Pool) ListUnmatchedEvents(ctx context.Context, limit int) ([]UnmatchedEvent, error) {
	q := `
SELECT event_id, title, body
FROM scout.raw_events
WHERE matched_steam_app_id IS NULL
ORDER BY event_id
`
	args := []any{}
	if limit > 0 {
		q += "LIMIT $1\n"
		args = append(args, limit)
	}

	rows, err := p.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query unmatched events: %w", err)
	}
	defer rows.Close()

	items := make([]UnmatchedEvent, 0, 128)
	for rows.Next() {
		var row UnmatchedEvent
		if err := rows.Scan(&row.EventID, &row.Title, &row.Body); err != nil {
			return nil, fmt.Errorf("scan unmatched event row: %w", err)
		}
		items = append(items, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate unmatched event rows: %w", err)
	}

	return items, nil
}

// SetEventMatch records a match decision. Re-matching overwrites the
// previous decision.
func (p *Pool) SetEventMatch(ctx context.Context, eventID, steamAppID int64, confidence float64, reason string) error {
	const q = `
UPDATE scout.raw_events
SET matched_steam_app_id = $2,
	match_confidence = $3,
	match_reason = $4
WHERE event_id = $1
`

	tag, err := p.Exec(ctx, q, eventID, steamAppID, confidence, reason)
	if err != nil {
		return fmt.Errorf("update event match: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("event %d not found", eventID)
	}
	return nil
}

func (p *Pool) ListEvents(ctx context.Context, matchedOnly bool, limit int) ([]EventRow, error) {
	q := `
SELECT
	event_id,
	source,
	external_id,
	url,
	title,
	body,
	metrics,
	language,
	published_at,
	captured_at,
	matched_steam_app_id,
	match_confidence,
	match_reason
FROM scout.raw_events
`
	if matchedOnly {
		q += "WHERE matched_steam_app_id IS NOT NULL\n"
	}
	q += "ORDER BY captured_at DESC, event_id DESC\n"

	args := []any{}
	if limit > 0 {
		q += "LIMIT $1\n"
		args = append(args, limit)
	}

	rows, err := p.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	items := make([]EventRow, 0, 64)
	for rows.Next() {
		var row EventRow
		var metrics *string
		if err := rows.Scan(
			&row.EventID,
			&row.Source,
			&row.ExternalID,
			&row.URL,
			&row.Title,
			&row.Body,
			&metrics,
			&row.Language,
			&row.PublishedAt,
			&row.CapturedAt,
			&row.MatchedSteamAppID,
			&row.MatchConfidence,
			&row.MatchReason,
		); err != nil {
			return nil, fmt.Errorf("scan event row: %w", err)
		}
		if metrics != nil {
			row.Metrics = json.RawMessage(*metrics)
		}
		items = append(items, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate event rows: %w", err)
	}

	return items, nil
}
