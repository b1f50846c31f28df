package app

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/ibchat/game-scout-sub001/internal/cli"
	"github.com/ibchat/game-scout-sub001/internal/config"
	"github.com/ibchat/game-scout-sub001/internal/db"
	"github.com/ibchat/game-scout-sub001/internal/logging"
)

// bootstrap loads the env file, config, and logger shared by every command.
func bootstrap(envLoader *cli.EnvLoader) (*config.Config, zerolog.Logger, error) {
	if envLoader != nil {
		if _, err := envLoader.Load(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, zerolog.Nop(), fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		return nil, zerolog.Nop(), fmt.Errorf("initialize logger: %w", err)
	}

	return cfg, logger, nil
}

// connectPool builds a command context and a database pool bound to it.
func connectPool(timeout time.Duration, cfg *config.Config) (context.Context, context.CancelFunc, *db.Pool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		cancel()
		return nil, nil, nil, fmt.Errorf("connect to database: %w", err)
	}

	return ctx, cancel, pool, nil
}

func printJSON(value any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(value)
}
