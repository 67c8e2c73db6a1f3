package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Kind selects which serper.dev endpoint a query hits.
type Kind string

const (
	KindSearch Kind = "search"
	KindNews   Kind = "news"
)

const (
	defaultBaseURL = "https://google.serper.dev"
	resultCount    = 10
	// The upstream deployment pins the Taiwan geo for market-relevant results.
	geoLocation = "tw"
)

// Item is one search or news hit. Date and Source are only populated for news.
type Item struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
	Date    string `json:"date,omitempty"`
	Source  string `json:"source,omitempty"`
}

// Results holds the formatted hits for a query plus, for plain search, the
// related query strings the aggregator suggests.
type Results struct {
	Items   []Item
	Related []string
}

type Config struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

// Client calls the serper.dev aggregation API.
type Client struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func NewClient(cfg Config) *Client {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		apiKey:  cfg.APIKey,
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

type serperRequest struct {
	Query string `json:"q"`
	Num   int    `json:"num"`
	Geo   string `json:"gl"`
}

type serperResponse struct {
	Organic []struct {
		Title   string `json:"title"`
		Link    string `json:"link"`
		Snippet string `json:"snippet"`
	} `json:"organic"`
	News []struct {
		Title   string `json:"title"`
		Link    string `json:"link"`
		Snippet string `json:"snippet"`
		Date    string `json:"date"`
		Source  string `json:"source"`
	} `json:"news"`
	RelatedSearches []struct {
		Query string `json:"query"`
	} `json:"relatedSearches"`
}

// Search runs a query against the given endpoint kind. News items are passed
// through the recency filter; plain search returns formatted organic results
// plus related queries.
func (c *Client) Search(ctx context.Context, kind Kind, query string) (Results, error) {
	var path string
	switch kind {
	case KindSearch:
		path = "/search"
	case KindNews:
		path = "/news"
	default:
		return Results{}, fmt.Errorf("invalid search kind: %s", kind)
	}

	payload, err := json.Marshal(serperRequest{Query: query, Num: resultCount, Geo: geoLocation})
	if err != nil {
		return Results{}, fmt.Errorf("marshal serper request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return Results{}, fmt.Errorf("create serper request: %w", err)
	}
	req.Header.Set("X-API-KEY", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return Results{}, fmt.Errorf("call serper API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Results{}, fmt.Errorf("serper API returned %s: %s", resp.Status, strings.TrimSpace(string(detail)))
	}

	var parsed serperResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return Results{}, fmt.Errorf("decode serper response: %w", err)
	}

	switch kind {
	case KindNews:
		items := make([]Item, 0, len(parsed.News))
		for _, hit := range parsed.News {
			if !IsRecent(hit.Date) {
				continue
			}
			items = append(items, Item{
				Title:   orDefault(hit.Title, "N/A"),
				Link:    orDefault(hit.Link, "N/A"),
				Snippet: orDefault(hit.Snippet, "N/A"),
				Date:    orDefault(hit.Date, "N/A"),
				Source:  orDefault(hit.Source, "N/A"),
			})
		}
		return Results{Items: items}, nil

	default:
		items := make([]Item, 0, len(parsed.Organic))
		for _, hit := range parsed.Organic {
			items = append(items, Item{
				Title:   orDefault(hit.Title, "No Title"),
				Link:    orDefault(hit.Link, "#"),
				Snippet: orDefault(hit.Snippet, "No snippet available."),
			})
		}
		related := make([]string, 0, len(parsed.RelatedSearches))
		for _, rel := range parsed.RelatedSearches {
			related = append(related, rel.Query)
		}
		return Results{Items: items, Related: related}, nil
	}
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
