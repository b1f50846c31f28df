package db

import (
	"context"
	"fmt"
	"time"
)

// UpsertAppAliasParams controls alias upserts.
type UpsertAppAliasParams struct {
	SteamAppID int64
	Alias      string
	AliasType  string
	Weight     int
}

// AliasTarget is one alias row loaded for matching, highest priority first.
type AliasTarget struct {
	SteamAppID int64
	Alias      string
	AliasType  string
	Weight     int
}

// AppAliasRow is one alias row for API listings.
type AppAliasRow struct {
	SteamAppID int64     `json:"steam_app_id"`
	Alias      string    `json:"alias"`
	AliasType  string    `json:"alias_type"`
	Weight     int       `json:"weight"`
	CreatedAt  time.Time `json:"created_at"`
}

// UpsertAppAlias inserts the (steam_app_id, alias) pair if absent. It reports
// whether a new row was created; an existing pair is a no-op, not an error.
func (p *Pool) UpsertAppAlias(ctx context.Context, params UpsertAppAliasParams) (bool, error) {
	const q = `
INSERT INTO scout.app_aliases (steam_app_id, alias, alias_type, weight, created_at)
VALUES ($1, $2, $3, $4, now())
ON CONFLICT (steam_app_id, alias) DO NOTHING
RETURNING alias_id
`

	var aliasID int64
	err := p.QueryRow(ctx, q, params.SteamAppID, params.Alias, params.AliasType, params.Weight).Scan(&aliasID)
	if err != nil {
		if IsNoRows(err) {
			return false, nil
		}
		return false, fmt.Errorf("insert app alias: %w", err)
	}
	return true, nil
}

// ListAliasTargets loads alias rows of at least minLength characters, ordered
// by weight then alias length so the first qualifying match wins.
func (p *Pool) ListAliasTargets(ctx context.Context, minLength int) ([]AliasTarget, error) {
	const q = `
SELECT steam_app_id, alias, alias_type, weight
FROM scout.app_aliases
WHERE LENGTH(alias) >= $1
ORDER BY weight DESC, LENGTH(alias) DESC, steam_app_id
`

	rows, err := p.Query(ctx, q, minLength)
	if err != nil {
		return nil, fmt.Errorf("query alias targets: %w", err)
	}
	defer rows.Close()

	items := make([]AliasTarget, 0, 512)
	for rows.Next() {
		var row AliasTarget
		if err := rows.Scan(&row.SteamAppID, &row.Alias, &row.AliasType, &row.Weight); err != nil {
			return nil, fmt.Errorf("scan alias target row: %w", err)
		}
		items = append(items, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate alias target rows: %w", err)
	}

	return items, nil
}

func (p *Pool) ListAppAliases(ctx context.Context, steamAppID int64) ([]AppAliasRow, error) {
	const q = `
SELECT steam_app_id, alias, alias_type, weight, created_at
FROM scout.app_aliases
WHERE steam_app_id = $1
ORDER BY weight DESC, alias
`

	rows, err := p.Query(ctx, q, steamAppID)
	if err != nil {
		return nil, fmt.Errorf("query app aliases: %w", err)
	}
	defer rows.Close()

	items := make([]AppAliasRow, 0, 8)
	for rows.Next() {
		var row AppAliasRow
		if err := rows.Scan(&row.SteamAppID, &row.Alias, &row.AliasType, &row.Weight, &row.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan app alias row: %w", err)
		}
		items = append(items, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate app alias rows: %w", err)
	}

	return items, nil
}
