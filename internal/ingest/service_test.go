package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/ibchat/game-scout-sub001/internal/db"
	"github.com/ibchat/game-scout-sub001/internal/globaltime"
)

type stubEventStore struct {
	seedIDs  []int64
	seedsErr error
	inserted map[string]db.InsertRawEventParams
	calls    []db.InsertRawEventParams
}

func newStubEventStore(seedIDs ...int64) *stubEventStore {
	return &stubEventStore{
		seedIDs:  seedIDs,
		inserted: map[string]db.InsertRawEventParams{},
	}
}

func (s *stubEventStore) ListSeedAppIDs(_ context.Context, _ int) ([]int64, error) {
	if s.seedsErr != nil {
		return nil, s.seedsErr
	}
	return s.seedIDs, nil
}

func (s *stubEventStore) InsertRawEvent(_ context.Context, params db.InsertRawEventParams) (bool, error) {
	s.calls = append(s.calls, params)
	key := params.Source + "|" + params.ExternalID
	if _, exists := s.inserted[key]; exists {
		return false, nil
	}
	s.inserted[key] = params
	return true, nil
}

type stubFetcher struct {
	items map[int64][]NewsItem
	errs  map[int64]error
}

func (f *stubFetcher) FetchNews(_ context.Context, appID int64, _ int) ([]NewsItem, error) {
	if err := f.errs[appID]; err != nil {
		return nil, err
	}
	return f.items[appID], nil
}

func unixRaw(ts time.Time) json.RawMessage {
	return json.RawMessage(fmt.Sprintf("%d", ts.Unix()))
}

func TestCollectNews_InsertsAndDedups(t *testing.T) {
	globaltime.SetMockTime(time.Date(2025, 8, 23, 12, 0, 0, 0, time.UTC))
	defer globaltime.ResetTime()

	now := globaltime.UTC()
	store := newStubEventStore(440)
	fetcher := &stubFetcher{items: map[int64][]NewsItem{
		440: {
			{GID: "a1", Title: "Fresh patch", Date: unixRaw(now.AddDate(0, 0, -1))},
			{GID: "a1", Title: "Fresh patch repost", Date: unixRaw(now.AddDate(0, 0, -1))},
			{GID: "a2", Title: "Old announcement", Date: unixRaw(now.AddDate(0, 0, -30))},
			{GID: "a3", Title: "Undated devlog"},
		},
	}}
	svc := NewServiceWithStore(store, fetcher, zerolog.Nop())

	result, err := svc.CollectNews(context.Background(), Options{DaysBack: 7})
	if err != nil {
		t.Fatalf("collect news: %v", err)
	}
	if result.AppsProcessed != 1 || result.Collected != 4 {
		t.Fatalf("unexpected counters: %+v", result)
	}
	if result.Inserted != 2 {
		t.Fatalf("expected fresh and undated items to insert, got %+v", result)
	}
	if result.Skipped != 1 {
		t.Fatalf("expected duplicate external id to skip, got %+v", result)
	}

	if _, exists := store.inserted[SourceSteamNews+"|a2"]; exists {
		t.Fatalf("item older than the cutoff was inserted")
	}
	if _, exists := store.inserted[SourceSteamNews+"|a3"]; !exists {
		t.Fatalf("item with unknown publish time was excluded by the cutoff")
	}
}

func TestCollectNews_PerAppFailureContinues(t *testing.T) {
	globaltime.SetMockTime(time.Date(2025, 8, 23, 12, 0, 0, 0, time.UTC))
	defer globaltime.ResetTime()

	store := newStubEventStore(10, 20)
	fetcher := &stubFetcher{
		items: map[int64][]NewsItem{
			20: {{GID: "ok-1", Title: "Still works", Date: unixRaw(globaltime.UTC())}},
		},
		errs: map[int64]error{10: errors.New("upstream 503")},
	}
	svc := NewServiceWithStore(store, fetcher, zerolog.Nop())

	result, err := svc.CollectNews(context.Background(), Options{})
	if err != nil {
		t.Fatalf("collect news: %v", err)
	}
	if result.AppsProcessed != 2 || result.Errors != 1 || result.Inserted != 1 {
		t.Fatalf("unexpected counters: %+v", result)
	}
}

func TestCollectNews_SeedFailureAbortsBeforeWrites(t *testing.T) {
	t.Parallel()

	store := newStubEventStore()
	store.seedsErr = errors.New("connection refused")
	svc := NewServiceWithStore(store, &stubFetcher{}, zerolog.Nop())

	result, err := svc.CollectNews(context.Background(), Options{})
	if err == nil {
		t.Fatalf("expected error when seed enumeration fails")
	}
	if result != (Result{}) {
		t.Fatalf("expected zero-progress result, got %+v", result)
	}
	if len(store.calls) != 0 {
		t.Fatalf("expected no writes, got %d", len(store.calls))
	}
}

func TestCollectNews_ExplicitAppIDsSkipSeedLookup(t *testing.T) {
	globaltime.SetMockTime(time.Date(2025, 8, 23, 12, 0, 0, 0, time.UTC))
	defer globaltime.ResetTime()

	store := newStubEventStore()
	store.seedsErr = errors.New("should not be called")
	fetcher := &stubFetcher{items: map[int64][]NewsItem{
		730: {{GID: "x", Title: "Explicit app", Date: unixRaw(globaltime.UTC())}},
	}}
	svc := NewServiceWithStore(store, fetcher, zerolog.Nop())

	result, err := svc.CollectNews(context.Background(), Options{AppIDs: []int64{730}})
	if err != nil {
		t.Fatalf("collect news: %v", err)
	}
	if result.Inserted != 1 {
		t.Fatalf("unexpected counters: %+v", result)
	}
}
