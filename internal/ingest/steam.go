package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	// SourceSteamNews names the Steam news source in raw event rows.
	SourceSteamNews = "steam_news"

	steamUserAgent      = "Mozilla/5.0 (compatible; GameScout/1.0)"
	steamRequestTimeout = 10 * time.Second
	maxNewsResponseSize = 4 << 20
)

// NewsItem is one raw item as returned by the external news feed. Date is
// left undecoded because Steam emits both unix integers and date strings.
type NewsItem struct {
	GID          string          `json:"gid"`
	ID           string          `json:"id"`
	Title        string          `json:"title"`
	URL          string          `json:"url"`
	Contents     string          `json:"contents"`
	Body         string          `json:"body"`
	Date         json.RawMessage `json:"date"`
	PublishedAt  json.RawMessage `json:"published_at"`
	CommentCount int             `json:"comment_count"`
	Views        int             `json:"views"`
}

// Fetcher obtains a bounded list of raw news items for one app.
type Fetcher interface {
	FetchNews(ctx context.Context, appID int64, maxItems int) ([]NewsItem, error)
}

// SteamClient fetches app news from the ISteamNews web API.
type SteamClient struct {
	baseURL string
	client  *http.Client
}

func NewSteamClient(baseURL string) *SteamClient {
	return &SteamClient{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		client: &http.Client{
			Timeout: steamRequestTimeout,
		},
	}
}

type newsForAppResponse struct {
	AppNews struct {
		AppID     int64      `json:"appid"`
		NewsItems []NewsItem `json:"newsitems"`
	} `json:"appnews"`
}

func (c *SteamClient) FetchNews(ctx context.Context, appID int64, maxItems int) ([]NewsItem, error) {
	if c == nil || c.client == nil {
		return nil, fmt.Errorf("steam client is not initialized")
	}

	endpoint := fmt.Sprintf("%s/ISteamNews/GetNewsForApp/v2/?%s", c.baseURL, url.Values{
		"appid": []string{strconv.FormatInt(appID, 10)},
		"count": []string{strconv.Itoa(maxItems)},
	}.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build steam news request: %w", err)
	}
	req.Header.Set("User-Agent", steamUserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch steam news for app %d: %w", appID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("steam news request for app %d returned status %d", appID, resp.StatusCode)
	}

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxNewsResponseSize))
	if err != nil {
		return nil, fmt.Errorf("read steam news response for app %d: %w", appID, err)
	}

	var decoded newsForAppResponse
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return nil, fmt.Errorf("decode steam news response for app %d: %w", appID, err)
	}

	items := decoded.AppNews.NewsItems
	if maxItems > 0 && len(items) > maxItems {
		items = items[:maxItems]
	}
	return items, nil
}
