package app

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ibchat/game-scout-sub001/internal/cli"
	"github.com/ibchat/game-scout-sub001/internal/ingest"
)

func runCollect(args []string) int {
	fs := flag.NewFlagSet("collect", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	timeout := fs.Duration("timeout", 5*time.Minute, "Command timeout")
	apps := fs.String("apps", "", "Comma-separated Steam app ids (default: seed apps from the catalog)")
	seedLimit := fs.Int("seed-limit", 0, "Maximum seed apps to collect for (0 = all)")
	detectLang := fs.Bool("detect-lang", true, "Detect event language before insert")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	appIDs, err := parseAppIDList(*apps)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid --apps: %v\n", err)
		return 2
	}

	cfg, logger, err := bootstrap(envLoader)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to %v\n", err)
		return 1
	}

	ctx, cancel, pool, err := connectPool(*timeout, cfg)
	if err != nil {
		logger.Error().Err(err).Msg("database connection failed")
		fmt.Fprintf(os.Stderr, "Failed to connect to database: %v\n", err)
		return 1
	}
	defer cancel()
	defer pool.Close()

	fetcher := ingest.NewSteamClient(cfg.SteamAPIBaseURL)
	svc := ingest.NewService(pool, fetcher, logger)
	result, err := svc.CollectNews(ctx, ingest.Options{
		AppIDs:     appIDs,
		MaxPerApp:  cfg.SteamMaxNewsPerApp,
		DaysBack:   cfg.SteamNewsDaysBack,
		SeedLimit:  *seedLimit,
		DetectLang: *detectLang,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Collection failed: %v\n", err)
		return 1
	}

	fmt.Printf("apps=%d collected=%d inserted=%d skipped=%d errors=%d\n",
		result.AppsProcessed, result.Collected, result.Inserted, result.Skipped, result.Errors)
	return 0
}

func parseAppIDList(raw string) ([]int64, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, nil
	}

	parts := strings.Split(trimmed, ",")
	ids := make([]int64, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("%q is not a positive app id", part)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
