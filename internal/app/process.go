package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/ibchat/game-scout-sub001/internal/alias"
	"github.com/ibchat/game-scout-sub001/internal/cli"
	"github.com/ibchat/game-scout-sub001/internal/config"
	"github.com/ibchat/game-scout-sub001/internal/heartbeat"
	"github.com/ibchat/game-scout-sub001/internal/ingest"
	"github.com/ibchat/game-scout-sub001/internal/match"
)

const pipelineWorkerName = "gamescout-pipeline"

func runProcess(args []string) int {
	fs := flag.NewFlagSet("process", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	timeout := fs.Duration("timeout", 10*time.Minute, "Command timeout")
	detectLang := fs.Bool("detect-lang", true, "Detect event language before insert")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "process does not accept positional arguments")
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

	stopBeat := startHeartbeat(ctx, cfg, logger)
	defer stopBeat()

	aliasResult, err := alias.NewService(pool, logger).GenerateAll(ctx, 0)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Alias generation failed: %v\n", err)
		return 1
	}
	fmt.Printf("aliases: apps=%d inserted=%d skipped=%d errors=%d\n",
		aliasResult.AppsProcessed, aliasResult.Inserted, aliasResult.Skipped, aliasResult.Errors)

	fetcher := ingest.NewSteamClient(cfg.SteamAPIBaseURL)
	collectResult, err := ingest.NewService(pool, fetcher, logger).CollectNews(ctx, ingest.Options{
		MaxPerApp:  cfg.SteamMaxNewsPerApp,
		DaysBack:   cfg.SteamNewsDaysBack,
		DetectLang: *detectLang,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Collection failed: %v\n", err)
		return 1
	}
	fmt.Printf("collect: apps=%d collected=%d inserted=%d skipped=%d errors=%d\n",
		collectResult.AppsProcessed, collectResult.Collected, collectResult.Inserted,
		collectResult.Skipped, collectResult.Errors)

	matchResult, err := match.NewService(pool, logger).MatchPending(ctx, 0)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Match pass failed: %v\n", err)
		return 1
	}
	fmt.Printf("match: scanned=%d matched=%d unmatched=%d errors=%d\n",
		matchResult.EventsScanned, matchResult.Matched, matchResult.Unmatched, matchResult.Errors)

	return 0
}

// startHeartbeat begins beating for the pipeline worker when redis is
// configured. A missing or unreachable redis only disables liveness
// reporting; the pipeline itself still runs.
func startHeartbeat(ctx context.Context, cfg *config.Config, logger zerolog.Logger) func() {
	if cfg.RedisAddr == "" {
		return func() {}
	}

	monitor, err := heartbeat.NewMonitor(ctx, heartbeat.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}, logger)
	if err != nil {
		logger.Warn().Err(err).Msg("heartbeat disabled")
		return func() {}
	}

	beatCtx, stop := context.WithCancel(ctx)
	go monitor.Run(beatCtx, pipelineWorkerName)
	return stop
}
