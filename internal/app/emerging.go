package app

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/ibchat/game-scout-sub001/internal/cli"
	"github.com/ibchat/game-scout-sub001/internal/emerging"
)

func runEmerging(args []string) int {
	fs := flag.NewFlagSet("emerging", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	timeout := fs.Duration("timeout", 2*time.Minute, "Command timeout")
	limit := fs.Int("limit", 0, "Maximum catalog apps to scan (0 = all)")
	passedOnly := fs.Bool("passed-only", false, "Report only apps that cleared every gate")
	asJSON := fs.Bool("json", false, "Print the full report as JSON")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "emerging does not accept positional arguments")
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

	svc := emerging.NewService(pool, emerging.ThresholdsFromConfig(cfg), logger)
	result, err := svc.ScanAll(ctx, *limit, *passedOnly)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Emerging scan failed: %v\n", err)
		return 1
	}

	if *asJSON {
		if err := printJSON(result); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to encode JSON: %v\n", err)
			return 1
		}
		return 0
	}

	for _, report := range result.Reports {
		fmt.Printf("app=%d name=%q recent=%d ratio=%.2f score=%.2f passed=%t verdict=%q\n",
			report.SteamAppID, report.Name, report.RecentReviews30D,
			report.PositiveRatio, report.Score, report.Passed, report.Verdict)
	}
	fmt.Printf("scanned=%d emerging=%d\n", result.AppsScanned, result.Emerging)
	return 0
}
