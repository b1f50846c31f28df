package app

import (
	"fmt"
	"os"
	"strings"
)

// Run executes the CLI command and returns a process exit code.
func Run(args []string) int {
	if len(args) == 0 {
		printUsage()
		return 2
	}

	switch strings.ToLower(strings.TrimSpace(args[0])) {
	case "help", "--help", "-h":
		printUsage()
		return 0
	case "health":
		return runHealth(args[1:])
	case "aliases":
		return runAliases(args[1:])
	case "collect":
		return runCollect(args[1:])
	case "ingest":
		return runIngest(args[1:])
	case "match":
		return runMatch(args[1:])
	case "emerging":
		return runEmerging(args[1:])
	case "process", "run-once":
		return runProcess(args[1:])
	case "serve":
		return runServe(args[1:])
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", args[0])
		printUsage()
		return 2
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "gamescout CLI")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  gamescout <command> [flags]")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Commands:")
	fmt.Fprintln(os.Stderr, "  health    Verify database connectivity")
	fmt.Fprintln(os.Stderr, "  aliases   Generate name aliases for catalog apps")
	fmt.Fprintln(os.Stderr, "  collect   Fetch Steam news for seed apps into raw events")
	fmt.Fprintln(os.Stderr, "  ingest    Insert one manual event from a JSON payload")
	fmt.Fprintln(os.Stderr, "  match     Resolve unmatched raw events to catalog apps")
	fmt.Fprintln(os.Stderr, "  emerging  Compute emerging verdicts over catalog metrics")
	fmt.Fprintln(os.Stderr, "  process   Run aliases + collect + match in sequence")
	fmt.Fprintln(os.Stderr, "  run-once  Alias for process")
	fmt.Fprintln(os.Stderr, "  serve     Start Echo API server")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Use \"gamescout <command> -h\" for command-specific flags.")
}
