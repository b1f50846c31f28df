package app

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ibchat/game-scout-sub001/internal/cli"
	"github.com/ibchat/game-scout-sub001/internal/db"
	"github.com/ibchat/game-scout-sub001/internal/globaltime"
	payloadschema "github.com/ibchat/game-scout-sub001/schema"
)

func runIngest(args []string) int {
	fs := flag.NewFlagSet("ingest", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	timeout := fs.Duration("timeout", 20*time.Second, "Command timeout")
	payload := fs.String("payload", "", "Raw event payload JSON")
	payloadFile := fs.String("payload-file", "", "Path to payload JSON file (overrides --payload)")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	payloadJSON, err := loadJSONInput(*payload, *payloadFile, "payload")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid payload: %v\n", err)
		return 2
	}

	event, err := payloadschema.ValidateEventPayload(payloadJSON)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid payload: %v\n", err)
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

	params, err := eventInsertParams(event)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid payload: %v\n", err)
		return 2
	}

	inserted, err := pool.InsertRawEvent(ctx, params)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Ingest failed: %v\n", err)
		return 1
	}

	fmt.Printf("source=%s external_id=%s inserted=%t\n", params.Source, params.ExternalID, inserted)
	return 0
}

func eventInsertParams(event *payloadschema.EventPayload) (db.InsertRawEventParams, error) {
	params := db.InsertRawEventParams{
		Source:     strings.TrimSpace(event.Source),
		ExternalID: strings.TrimSpace(event.ExternalID),
		Title:      strings.TrimSpace(event.Title),
		URL:        event.URL,
		Body:       event.Body,
		Language:   event.Language,
		CapturedAt: globaltime.UTC(),
	}

	if len(event.Metrics) > 0 {
		metrics, err := json.Marshal(event.Metrics)
		if err != nil {
			return db.InsertRawEventParams{}, fmt.Errorf("encode metrics: %w", err)
		}
		params.Metrics = metrics
	}

	if event.PublishedAt != nil {
		ts, err := time.Parse(time.RFC3339, strings.TrimSpace(*event.PublishedAt))
		if err != nil {
			return db.InsertRawEventParams{}, fmt.Errorf("published_at must be RFC3339: %w", err)
		}
		utc := ts.UTC()
		params.PublishedAt = &utc
	}

	return params, nil
}

func loadJSONInput(inlineValue, filePath, label string) (json.RawMessage, error) {
	if path := strings.TrimSpace(filePath); path != "" {
		payload, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s file %q: %w", label, path, err)
		}
		trimmed := strings.TrimSpace(string(payload))
		if trimmed == "" {
			return nil, fmt.Errorf("%s file %q is empty", label, path)
		}
		return json.RawMessage(trimmed), nil
	}

	trimmed := strings.TrimSpace(inlineValue)
	if trimmed == "" {
		return nil, fmt.Errorf("%s JSON is empty", label)
	}
	return json.RawMessage(trimmed), nil
}
