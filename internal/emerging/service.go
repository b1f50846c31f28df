package emerging

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/ibchat/game-scout-sub001/internal/db"
	"github.com/ibchat/game-scout-sub001/internal/globaltime"
)

// Store is the persistence surface the scan needs.
type Store interface {
	ListMetricsSnapshots(ctx context.Context, limit int) ([]db.MetricsSnapshot, error)
}

type Service struct {
	store      Store
	thresholds Thresholds
	logger     zerolog.Logger
}

// ScanResult aggregates one scan over the catalog.
type ScanResult struct {
	AppsScanned int      `json:"apps_scanned"`
	Emerging    int      `json:"emerging"`
	Reports     []Report `json:"reports"`
}

func NewService(pool *db.Pool, thresholds Thresholds, logger zerolog.Logger) *Service {
	return NewServiceWithStore(pool, thresholds, logger)
}

func NewServiceWithStore(store Store, thresholds Thresholds, logger zerolog.Logger) *Service {
	return &Service{store: store, thresholds: thresholds, logger: logger}
}

// ScanAll recomputes the emerging verdict for every catalog app. When
// passedOnly is set, only apps that cleared every gate are reported.
func (s *Service) ScanAll(ctx context.Context, limit int, passedOnly bool) (ScanResult, error) {
	if s == nil || s.store == nil {
		return ScanResult{}, fmt.Errorf("emerging service is not initialized")
	}

	snapshots, err := s.store.ListMetricsSnapshots(ctx, limit)
	if err != nil {
		return ScanResult{}, fmt.Errorf("list metrics snapshots: %w", err)
	}

	now := globaltime.UTC()
	result := ScanResult{Reports: make([]Report, 0, len(snapshots))}
	for _, row := range snapshots {
		result.AppsScanned++

		report := Analyze(SnapshotFromRow(row), s.thresholds, now)
		if report.Passed {
			result.Emerging++
		}
		if passedOnly && !report.Passed {
			continue
		}
		result.Reports = append(result.Reports, report)
	}

	s.logger.Info().
		Int("apps_scanned", result.AppsScanned).
		Int("emerging", result.Emerging).
		Msg("emerging scan completed")

	return result, nil
}
