package market

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

const samplePage = `<!DOCTYPE html>
<html>
<body>
  <div class="wrapper">
    <div class="css-cxlpc6" data-bn-type="text">74</div>
    <div class="css-8o9ps9" data-bn-type="text">Greed</div>
  </div>
</body>
</html>`

func TestFearGreedParsesIndex(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") == "" {
			t.Fatal("expected a browser user agent")
		}
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(samplePage))
	}))
	t.Cleanup(srv.Close)

	client := NewClient(Config{URL: srv.URL})

	index, err := client.FearGreed(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if index.Value != 74 {
		t.Fatalf("expected value 74, got %d", index.Value)
	}
	if index.Sentiment != "Greed" {
		t.Fatalf("expected sentiment Greed, got %q", index.Sentiment)
	}
}

func TestFearGreedMissingMarkers(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html><body><div>restyled</div></body></html>"))
	}))
	t.Cleanup(srv.Close)

	client := NewClient(Config{URL: srv.URL})
	if _, err := client.FearGreed(context.Background()); err == nil {
		t.Fatal("expected error when markers are absent")
	}
}

func TestFearGreedUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "blocked", http.StatusForbidden)
	}))
	t.Cleanup(srv.Close)

	client := NewClient(Config{URL: srv.URL})
	if _, err := client.FearGreed(context.Background()); err == nil {
		t.Fatal("expected error for upstream failure")
	}
}
