package ingest

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/ibchat/game-scout-sub001/internal/db"
	"github.com/ibchat/game-scout-sub001/internal/globaltime"
	"github.com/ibchat/game-scout-sub001/internal/langdetect"
)

// Store is the persistence surface the collector needs.
type Store interface {
	ListSeedAppIDs(ctx context.Context, limit int) ([]int64, error)
	InsertRawEvent(ctx context.Context, params db.InsertRawEventParams) (bool, error)
}

type Service struct {
	store   Store
	fetcher Fetcher
	logger  zerolog.Logger
}

// Options bounds one collection run.
type Options struct {
	AppIDs     []int64
	MaxPerApp  int
	DaysBack   int
	SeedLimit  int
	DetectLang bool
}

// Result reports collection counters for one run.
type Result struct {
	AppsProcessed int `json:"apps_processed"`
	Collected     int `json:"collected"`
	Inserted      int `json:"inserted"`
	Skipped       int `json:"skipped"`
	Errors        int `json:"errors"`
}

func NewService(pool *db.Pool, fetcher Fetcher, logger zerolog.Logger) *Service {
	return NewServiceWithStore(pool, fetcher, logger)
}

func NewServiceWithStore(store Store, fetcher Fetcher, logger zerolog.Logger) *Service {
	return &Service{store: store, fetcher: fetcher, logger: logger}
}

// CollectNews fetches recent news for each seed app and persists new events.
// Per-app failures are logged and counted without aborting the run; only a
// failure to enumerate the seed set aborts with a zero-progress result.
func (s *Service) CollectNews(ctx context.Context, opts Options) (Result, error) {
	if s == nil || s.store == nil || s.fetcher == nil {
		return Result{}, fmt.Errorf("ingest service is not initialized")
	}

	maxPerApp := opts.MaxPerApp
	if maxPerApp <= 0 {
		maxPerApp = 10
	}
	daysBack := opts.DaysBack
	if daysBack <= 0 {
		daysBack = 7
	}

	appIDs := opts.AppIDs
	if len(appIDs) == 0 {
		seeds, err := s.store.ListSeedAppIDs(ctx, opts.SeedLimit)
		if err != nil {
			return Result{}, fmt.Errorf("list seed apps: %w", err)
		}
		appIDs = seeds
	}

	cutoff := globaltime.UTC().AddDate(0, 0, -daysBack)

	var result Result
	for _, appID := range appIDs {
		result.AppsProcessed++

		items, err := s.fetcher.FetchNews(ctx, appID, maxPerApp)
		if err != nil {
			s.logger.Warn().
				Err(err).
				Int64("steam_app_id", appID).
				Msg("news fetch failed")
			result.Errors++
			continue
		}
		result.Collected += len(items)

		for _, item := range items {
			candidate, ok := normalizeNewsItem(item, appID)
			if !ok {
				continue
			}
			// An unknown publish time is not excludable by the cutoff.
			if candidate.PublishedAt != nil && candidate.PublishedAt.Before(cutoff) {
				continue
			}

			var language *string
			if opts.DetectLang {
				if code := langdetect.DetectEventLanguage(candidate.Title, derefString(candidate.Body)); code != "" {
					language = &code
				}
			}

			inserted, err := s.store.InsertRawEvent(ctx, db.InsertRawEventParams{
				Source:      candidate.Source,
				ExternalID:  candidate.ExternalID,
				URL:         candidate.URL,
				Title:       candidate.Title,
				Body:        candidate.Body,
				Metrics:     candidate.Metrics,
				Language:    language,
				PublishedAt: candidate.PublishedAt,
				CapturedAt:  globaltime.UTC(),
			})
			if err != nil {
				s.logger.Warn().
					Err(err).
					Int64("steam_app_id", appID).
					Str("external_id", candidate.ExternalID).
					Msg("event insert failed")
				result.Errors++
				continue
			}
			if inserted {
				result.Inserted++
			} else {
				result.Skipped++
			}
		}
	}

	s.logger.Info().
		Int("apps_processed", result.AppsProcessed).
		Int("collected", result.Collected).
		Int("inserted", result.Inserted).
		Int("skipped", result.Skipped).
		Int("errors", result.Errors).
		Msg("news collection completed")

	return result, nil
}

func derefString(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
