package match

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/ibchat/game-scout-sub001/internal/db"
)

const minAliasTargetLength = 4

// Store is the persistence surface the match pass needs.
type Store interface {
	ListAliasTargets(ctx context.Context, minLength int) ([]db.AliasTarget, error)
	ListUnmatchedEvents(ctx context.Context, limit int) ([]db.UnmatchedEvent, error)
	SetEventMatch(ctx context.Context, eventID, steamAppID int64, confidence float64, reason string) error
}

type Service struct {
	store  Store
	logger zerolog.Logger
}

// Result reports match counters for one pass.
type Result struct {
	EventsScanned int `json:"events_scanned"`
	Matched       int `json:"matched"`
	Unmatched     int `json:"unmatched"`
	Errors        int `json:"errors"`
}

func NewService(pool *db.Pool, logger zerolog.Logger) *Service {
	return NewServiceWithStore(pool, logger)
}

func NewServiceWithStore(store Store, logger zerolog.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// MatchPending resolves every unmatched event against the current alias
// table. Events that cannot be matched stay unmatched for a later pass with
// a richer alias table; a failed write is counted and does not abort.
func (s *Service) MatchPending(ctx context.Context, limit int) (Result, error) {
	if s == nil || s.store == nil {
		return Result{}, fmt.Errorf("match service is not initialized")
	}

	targets, err := s.store.ListAliasTargets(ctx, minAliasTargetLength)
	if err != nil {
		return Result{}, fmt.Errorf("list alias targets: %w", err)
	}
	events, err := s.store.ListUnmatchedEvents(ctx, limit)
	if err != nil {
		return Result{}, fmt.Errorf("list unmatched events: %w", err)
	}

	matcher := NewMatcher(targets)

	var result Result
	for _, event := range events {
		result.EventsScanned++

		matched, ok := matcher.MatchEvent(event.Title, event.Body)
		if !ok {
			result.Unmatched++
			continue
		}

		if err := s.store.SetEventMatch(ctx, event.EventID, matched.SteamAppID, matched.Confidence, matched.Reason); err != nil {
			s.logger.Warn().
				Err(err).
				Int64("event_id", event.EventID).
				Int64("steam_app_id", matched.SteamAppID).
				Msg("match write failed")
			result.Errors++
			continue
		}
		result.Matched++

		s.logger.Debug().
			Int64("event_id", event.EventID).
			Int64("steam_app_id", matched.SteamAppID).
			Float64("confidence", matched.Confidence).
			Str("reason", matched.Reason).
			Msg("event matched")
	}

	s.logger.Info().
		Int("events_scanned", result.EventsScanned).
		Int("matched", result.Matched).
		Int("unmatched", result.Unmatched).
		Int("errors", result.Errors).
		Msg("match pass completed")

	return result, nil
}
