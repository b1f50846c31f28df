package ingest

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/araddon/dateparse"
)

const maxBodyLength = 1000

// EventCandidate is one normalized item ready for dedup-checked insertion.
type EventCandidate struct {
	Source      string
	ExternalID  string
	URL         *string
	Title       string
	Body        *string
	Metrics     json.RawMessage
	PublishedAt *time.Time
}

// normalizeNewsItem converts one raw feed item into an event candidate.
// Items without any usable external identifier are discarded (ok=false),
// which is not an error. An unparseable published time is kept as unknown
// rather than rejecting the item.
func normalizeNewsItem(item NewsItem, appID int64) (EventCandidate, bool) {
	externalID := strings.TrimSpace(item.GID)
	if externalID == "" {
		externalID = strings.TrimSpace(item.ID)
	}
	if externalID == "" {
		return EventCandidate{}, false
	}

	itemURL := strings.TrimSpace(item.URL)
	if itemURL == "" {
		itemURL = fmt.Sprintf("https://store.steampowered.com/news/app/%d", appID)
	}

	body := item.Contents
	if body == "" {
		body = item.Body
	}
	var bodyPtr *string
	if body != "" {
		truncated := truncate(body, maxBodyLength)
		bodyPtr = &truncated
	}

	publishedAt := parsePublishedAt(item.Date)
	if publishedAt == nil {
		publishedAt = parsePublishedAt(item.PublishedAt)
	}

	return EventCandidate{
		Source:      SourceSteamNews,
		ExternalID:  externalID,
		URL:         &itemURL,
		Title:       item.Title,
		Body:        bodyPtr,
		Metrics:     encodeMetrics(item),
		PublishedAt: publishedAt,
	}, true
}

// parsePublishedAt accepts a unix timestamp or a permissive date string.
// Anything unparseable maps to nil (unknown publish time).
func parsePublishedAt(raw json.RawMessage) *time.Time {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return nil
	}

	var unix int64
	if err := json.Unmarshal(raw, &unix); err == nil {
		if unix <= 0 {
			return nil
		}
		ts := time.Unix(unix, 0).UTC()
		return &ts
	}

	var text string
	if err := json.Unmarshal(raw, &text); err != nil {
		return nil
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	ts, err := dateparse.ParseAny(text)
	if err != nil {
		return nil
	}
	utc := ts.UTC()
	return &utc
}

// encodeMetrics attaches a metrics document only when at least one known
// metric is present; otherwise the column stays NULL, never `{}`.
func encodeMetrics(item NewsItem) json.RawMessage {
	metrics := map[string]int{}
	if item.CommentCount > 0 {
		metrics["comments"] = item.CommentCount
	}
	if item.Views > 0 {
		metrics["views"] = item.Views
	}
	if len(metrics) == 0 {
		return nil
	}

	encoded, err := json.Marshal(metrics)
	if err != nil {
		return nil
	}
	return encoded
}

func truncate(text string, limit int) string {
	if len(text) <= limit {
		return text
	}
	// Back off to a rune boundary instead of splitting a multi-byte rune.
	for limit > 0 && !utf8.RuneStart(text[limit]) {
		limit--
	}
	return text[:limit]
}
