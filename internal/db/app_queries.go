package db

import (
	"context"
	"fmt"
)

// CatalogApp is one catalog row for alias generation.
type CatalogApp struct {
	SteamAppID int64
	Name       string
}

// MetricsSnapshot is one catalog row with the review metrics the emerging
// pipeline consumes.
type MetricsSnapshot struct {
	SteamAppID            int64
	Name                  string
	SteamURL              *string
	ReleaseDate           *string
	AllReviewsCount       *int64
	RecentReviewsCount30D *int64
	AllPositiveRatio      *float64
}

func (p *Pool) ListCatalogApps(ctx context.Context, limit int) ([]CatalogApp, error) {
	q := `
SELECT steam_app_id, name
FROM scout.steam_apps
WHERE name IS NOT NULL
  AND name != ''
  AND name != 'Unknown'
ORDER BY steam_app_id
`
	args := []any{}
	if limit > 0 {
		q += "LIMIT $1\n"
		args = append(args, limit)
	}

	rows, err := p.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query catalog apps: %w", err)
	}
	defer rows.Close()

	items := make([]CatalogApp, 0, 256)
	for rows.Next() {
		var row CatalogApp
		if err := rows.Scan(&row.SteamAppID, &row.Name); err != nil {
			return nil, fmt.Errorf("scan catalog app row: %w", err)
		}
		items = append(items, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate catalog app rows: %w", err)
	}

	return items, nil
}

func (p *Pool) ListSeedAppIDs(ctx context.Context, limit int) ([]int64, error) {
	q := `
SELECT DISTINCT steam_app_id
FROM scout.steam_apps
WHERE is_seed
ORDER BY steam_app_id
`
	args := []any{}
	if limit > 0 {
		q += "LIMIT $1\n"
		args = append(args, limit)
	}

	rows, err := p.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query seed app ids: %w", err)
	}
	defer rows.Close()

	ids := make([]int64, 0, 64)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan seed app id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate seed app ids: %w", err)
	}

	return ids, nil
}

func (p *Pool) ListMetricsSnapshots(ctx context.Context, limit int) ([]MetricsSnapshot, error) {
	q := `
SELECT
	steam_app_id,
	name,
	steam_url,
	release_date,
	all_reviews_count,
	recent_reviews_count_30d,
	all_positive_ratio
FROM scout.steam_apps
ORDER BY recent_reviews_count_30d DESC NULLS LAST, steam_app_id
`
	args := []any{}
	if limit > 0 {
		q += "LIMIT $1\n"
		args = append(args, limit)
	}

	rows, err := p.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query metrics snapshots: %w", err)
	}
	defer rows.Close()

	items := make([]MetricsSnapshot, 0, 256)
	for rows.Next() {
		var row MetricsSnapshot
		if err := rows.Scan(
			&row.SteamAppID,
			&row.Name,
			&row.SteamURL,
			&row.ReleaseDate,
			&row.AllReviewsCount,
			&row.RecentReviewsCount30D,
			&row.AllPositiveRatio,
		); err != nil {
			return nil, fmt.Errorf("scan metrics snapshot row: %w", err)
		}
		items = append(items, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate metrics snapshot rows: %w", err)
	}

	return items, nil
}
