package alias

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/ibchat/game-scout-sub001/internal/db"
)

// Store is the persistence surface the alias service needs.
type Store interface {
	ListCatalogApps(ctx context.Context, limit int) ([]db.CatalogApp, error)
	UpsertAppAlias(ctx context.Context, params db.UpsertAppAliasParams) (bool, error)
}

type Service struct {
	store  Store
	logger zerolog.Logger
}

// Result reports alias generation counters for one run.
type Result struct {
	AppsProcessed int `json:"apps_processed"`
	Inserted      int `json:"inserted"`
	Skipped       int `json:"skipped"`
	Errors        int `json:"errors"`
}

func NewService(pool *db.Pool, logger zerolog.Logger) *Service {
	return NewServiceWithStore(pool, logger)
}

func NewServiceWithStore(store Store, logger zerolog.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// GenerateAll regenerates aliases for every named catalog app. Re-running is
// idempotent: existing (app, alias) pairs count as skipped, never as errors.
// Failure to enumerate the catalog aborts the run before any write.
func (s *Service) GenerateAll(ctx context.Context, limit int) (Result, error) {
	if s == nil || s.store == nil {
		return Result{}, fmt.Errorf("alias service is not initialized")
	}

	apps, err := s.store.ListCatalogApps(ctx, limit)
	if err != nil {
		return Result{}, fmt.Errorf("list catalog apps: %w", err)
	}

	var result Result
	for _, app := range apps {
		result.AppsProcessed++

		appErrored := false
		for _, candidate := range Generate(app.Name) {
			if !Keep(candidate) {
				continue
			}

			inserted, err := s.store.UpsertAppAlias(ctx, db.UpsertAppAliasParams{
				SteamAppID: app.SteamAppID,
				Alias:      candidate.Alias,
				AliasType:  candidate.AliasType,
				Weight:     candidate.Weight,
			})
			if err != nil {
				s.logger.Warn().
					Err(err).
					Int64("steam_app_id", app.SteamAppID).
					Str("alias", candidate.Alias).
					Msg("alias upsert failed")
				appErrored = true
				break
			}
			if inserted {
				result.Inserted++
			} else {
				result.Skipped++
			}
		}
		if appErrored {
			result.Errors++
		}
	}

	s.logger.Info().
		Int("apps_processed", result.AppsProcessed).
		Int("inserted", result.Inserted).
		Int("skipped", result.Skipped).
		Int("errors", result.Errors).
		Msg("alias generation completed")

	return result, nil
}
