package app

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/ibchat/game-scout-sub001/internal/alias"
	"github.com/ibchat/game-scout-sub001/internal/cli"
)

func runAliases(args []string) int {
	fs := flag.NewFlagSet("aliases", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	timeout := fs.Duration("timeout", 2*time.Minute, "Command timeout")
	limit := fs.Int("limit", 0, "Maximum catalog apps to process (0 = all)")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "aliases does not accept positional arguments")
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

	svc := alias.NewService(pool, logger)
	result, err := svc.GenerateAll(ctx, *limit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Alias generation failed: %v\n", err)
		return 1
	}

	fmt.Printf("apps=%d inserted=%d skipped=%d errors=%d\n",
		result.AppsProcessed, result.Inserted, result.Skipped, result.Errors)
	return 0
}
