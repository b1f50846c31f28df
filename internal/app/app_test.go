package app

import (
	"testing"
	"time"

	payloadschema "github.com/ibchat/game-scout-sub001/schema"
)

func TestParseAppIDList(t *testing.T) {
	t.Parallel()

	ids, err := parseAppIDList(" 440, 730 ,1086940 ")
	if err != nil {
		t.Fatalf("parse app ids: %v", err)
	}
	if len(ids) != 3 || ids[0] != 440 || ids[2] != 1086940 {
		t.Fatalf("unexpected ids: %v", ids)
	}

	if got, err := parseAppIDList(""); err != nil || got != nil {
		t.Fatalf("empty input should yield nil, got %v err=%v", got, err)
	}

	if _, err := parseAppIDList("440,abc"); err == nil {
		t.Fatalf("expected error for non-numeric id")
	}
	if _, err := parseAppIDList("-5"); err == nil {
		t.Fatalf("expected error for negative id")
	}
}

func TestEventInsertParams(t *testing.T) {
	t.Parallel()

	publishedAt := "2025-08-20T14:00:00Z"
	params, err := eventInsertParams(&payloadschema.EventPayload{
		PayloadVersion: "v1",
		Source:         "manual",
		ExternalID:     "abc",
		Title:          "Stream reveal",
		Metrics:        map[string]int{"views": 12},
		PublishedAt:    &publishedAt,
	})
	if err != nil {
		t.Fatalf("build insert params: %v", err)
	}
	if params.Source != "manual" || params.ExternalID != "abc" {
		t.Fatalf("unexpected params: %+v", params)
	}
	if params.PublishedAt == nil || !params.PublishedAt.Equal(time.Date(2025, 8, 20, 14, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected published time: %v", params.PublishedAt)
	}
	if len(params.Metrics) == 0 {
		t.Fatalf("expected metrics document")
	}
	if params.CapturedAt.IsZero() {
		t.Fatalf("expected captured_at to be set")
	}

	bad := "not a timestamp"
	if _, err := eventInsertParams(&payloadschema.EventPayload{
		Source:      "manual",
		ExternalID:  "abc",
		Title:       "t",
		PublishedAt: &bad,
	}); err == nil {
		t.Fatalf("expected error for malformed timestamp")
	}
}
