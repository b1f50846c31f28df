package heartbeat

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/ibchat/game-scout-sub001/internal/globaltime"
)

// Status classifies a worker's liveness.
type Status string

const (
	// StatusOK means a fresh, unexpired heartbeat key exists.
	StatusOK Status = "ok"
	// StatusDown means the key is absent or expired.
	StatusDown Status = "down"
	// StatusUnknown means the backing store itself was unreachable.
	StatusUnknown Status = "unknown"
)

const (
	keyPrefix = "scout:heartbeat:"

	// KeyTTL is the heartbeat expiry; BeatInterval keeps the key alive with
	// several beats of slack before it lapses.
	KeyTTL       = 60 * time.Second
	BeatInterval = 12 * time.Second
)

// kvStore is the slice of the redis client the monitor needs.
type kvStore interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
}

// Monitor records and checks worker liveness against redis.
type Monitor struct {
	store  kvStore
	logger zerolog.Logger
}

// Options configures the redis connection behind a monitor.
type Options struct {
	Addr     string
	Password string
	DB       int
}

func NewMonitor(ctx context.Context, opts Options, logger zerolog.Logger) (*Monitor, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis at %s: %w", opts.Addr, err)
	}

	return NewMonitorWithStore(rdb, logger), nil
}

func NewMonitorWithStore(store kvStore, logger zerolog.Logger) *Monitor {
	return &Monitor{store: store, logger: logger}
}

// RecordLiveness refreshes the worker's heartbeat key for another KeyTTL.
func (m *Monitor) RecordLiveness(ctx context.Context, worker string) error {
	if m == nil || m.store == nil {
		return fmt.Errorf("heartbeat monitor is not initialized")
	}

	stamp := globaltime.UTC().Format(time.RFC3339)
	if err := m.store.Set(ctx, keyPrefix+worker, stamp, KeyTTL).Err(); err != nil {
		return fmt.Errorf("record liveness for %s: %w", worker, err)
	}
	return nil
}

// CheckLiveness classifies the worker. An absent or expired key is DOWN; a
// store failure is UNKNOWN, never conflated with DOWN.
func (m *Monitor) CheckLiveness(ctx context.Context, worker string) Status {
	if m == nil || m.store == nil {
		return StatusUnknown
	}

	err := m.store.Get(ctx, keyPrefix+worker).Err()
	switch {
	case err == nil:
		return StatusOK
	case errors.Is(err, redis.Nil):
		return StatusDown
	default:
		m.logger.Warn().Err(err).Str("worker", worker).Msg("heartbeat check failed")
		return StatusUnknown
	}
}

// Run beats every BeatInterval until the context ends. Beat failures are
// logged and retried on the next tick.
func (m *Monitor) Run(ctx context.Context, worker string) {
	if err := m.RecordLiveness(ctx, worker); err != nil {
		m.logger.Warn().Err(err).Str("worker", worker).Msg("heartbeat failed")
	}

	ticker := time.NewTicker(BeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := m.RecordLiveness(ctx, worker); err != nil {
				m.logger.Warn().Err(err).Str("worker", worker).Msg("heartbeat failed")
			}
		}
	}
}
