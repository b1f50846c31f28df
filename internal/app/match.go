package app

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/ibchat/game-scout-sub001/internal/cli"
	"github.com/ibchat/game-scout-sub001/internal/match"
)

func runMatch(args []string) int {
	fs := flag.NewFlagSet("match", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	timeout := fs.Duration("timeout", 2*time.Minute, "Command timeout")
	limit := fs.Int("limit", 0, "Maximum unmatched events to process (0 = all)")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "match does not accept positional arguments")
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

	svc := match.NewService(pool, logger)
	result, err := svc.MatchPending(ctx, *limit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Match pass failed: %v\n", err)
		return 1
	}

	fmt.Printf("scanned=%d matched=%d unmatched=%d errors=%d\n",
		result.EventsScanned, result.Matched, result.Unmatched, result.Errors)
	return 0
}
