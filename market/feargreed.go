// Package market fetches crypto market sentiment signals.
package market

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/html"
)

const (
	defaultIndexURL = "https://www.binance.com/en/square/fear-and-greed-index"
	userAgent       = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

	// Class markers for the value and sentiment nodes on the Binance page.
	// Brittle by nature; a page restyle breaks the scrape.
	valueClass     = "css-cxlpc6"
	sentimentClass = "css-8o9ps9"
)

// Index is the fear & greed reading: a 0-100 value and its sentiment label.
type Index struct {
	Value     int    `json:"value"`
	Sentiment string `json:"sentiment"`
}

type Config struct {
	URL     string
	Timeout time.Duration
}

// Client scrapes the Binance fear & greed index page.
type Client struct {
	url    string
	client *http.Client
}

func NewClient(cfg Config) *Client {
	url := cfg.URL
	if url == "" {
		url = defaultIndexURL
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

// FearGreed fetches and parses the current index reading.
func (c *Client) FearGreed(ctx context.Context) (Index, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return Index{}, fmt.Errorf("create index request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return Index{}, fmt.Errorf("fetch fear and greed page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return Index{}, fmt.Errorf("fear and greed page returned %s", resp.Status)
	}

	doc, err := html.Parse(resp.Body)
	if err != nil {
		return Index{}, fmt.Errorf("parse fear and greed page: %w", err)
	}

	valueText := findTextByClass(doc, valueClass)
	sentiment := findTextByClass(doc, sentimentClass)
	if valueText == "" || sentiment == "" {
		return Index{}, fmt.Errorf("fear and greed markers not found, page structure may have changed")
	}

	value, err := strconv.Atoi(strings.TrimSpace(valueText))
	if err != nil {
		return Index{}, fmt.Errorf("parse index value %q: %w", valueText, err)
	}

	return Index{Value: value, Sentiment: strings.TrimSpace(sentiment)}, nil
}

// findTextByClass walks the tree for a div carrying the class and returns its
// concatenated text content.
func findTextByClass(node *html.Node, class string) string {
	if node.Type == html.ElementNode && node.Data == "div" {
		for _, attr := range node.Attr {
			if attr.Key == "class" && strings.Contains(attr.Val, class) {
				return textContent(node)
			}
		}
	}
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		if found := findTextByClass(child, class); found != "" {
			return found
		}
	}
	return ""
}

func textContent(node *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(node)
	return sb.String()
}
