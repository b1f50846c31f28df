package heartbeat

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

type stubKVStore struct {
	values  map[string]string
	setErr  error
	getErr  error
	setKeys []string
}

func newStubKVStore() *stubKVStore {
	return &stubKVStore{values: map[string]string{}}
}

func (s *stubKVStore) Set(_ context.Context, key string, value interface{}, _ time.Duration) *redis.StatusCmd {
	if s.setErr != nil {
		return redis.NewStatusResult("", s.setErr)
	}
	s.values[key] = value.(string)
	s.setKeys = append(s.setKeys, key)
	return redis.NewStatusResult("OK", nil)
}

func (s *stubKVStore) Get(_ context.Context, key string) *redis.StringCmd {
	if s.getErr != nil {
		return redis.NewStringResult("", s.getErr)
	}
	value, ok := s.values[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(value, nil)
}

func TestCheckLiveness_OKAfterRecord(t *testing.T) {
	t.Parallel()

	store := newStubKVStore()
	monitor := NewMonitorWithStore(store, zerolog.Nop())

	if err := monitor.RecordLiveness(context.Background(), "collector"); err != nil {
		t.Fatalf("record liveness: %v", err)
	}
	if got := monitor.CheckLiveness(context.Background(), "collector"); got != StatusOK {
		t.Fatalf("expected OK, got %q", got)
	}
	if len(store.setKeys) != 1 || store.setKeys[0] != keyPrefix+"collector" {
		t.Fatalf("unexpected keys written: %v", store.setKeys)
	}
}

func TestCheckLiveness_AbsentKeyIsDown(t *testing.T) {
	t.Parallel()

	monitor := NewMonitorWithStore(newStubKVStore(), zerolog.Nop())

	if got := monitor.CheckLiveness(context.Background(), "collector"); got != StatusDown {
		t.Fatalf("expected DOWN for an absent key, got %q", got)
	}
}

func TestCheckLiveness_StoreFailureIsUnknown(t *testing.T) {
	t.Parallel()

	store := newStubKVStore()
	store.getErr = errors.New("connection refused")
	monitor := NewMonitorWithStore(store, zerolog.Nop())

	if got := monitor.CheckLiveness(context.Background(), "collector"); got != StatusUnknown {
		t.Fatalf("expected UNKNOWN on store failure, got %q", got)
	}
}

func TestRecordLiveness_PropagatesWriteError(t *testing.T) {
	t.Parallel()

	store := newStubKVStore()
	store.setErr = errors.New("readonly replica")
	monitor := NewMonitorWithStore(store, zerolog.Nop())

	if err := monitor.RecordLiveness(context.Background(), "collector"); err == nil {
		t.Fatalf("expected error when the write fails")
	}
}
