package assistant

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"
	"testing"

	"github.com/avelier/defi-advisor/llm"
	"github.com/avelier/defi-advisor/search"
	"github.com/avelier/defi-advisor/vectorstore"
)

type stubCompleter struct {
	response string
	err      error

	gotPrompt string
}

func (s *stubCompleter) CompleteJSON(ctx context.Context, userPrompt string) (string, llm.Usage, error) {
	s.gotPrompt = userPrompt
	return s.response, llm.Usage{}, s.err
}

func (s *stubCompleter) CompleteText(ctx context.Context, userPrompt string) (string, llm.Usage, error) {
	s.gotPrompt = userPrompt
	return s.response, llm.Usage{}, s.err
}

type stubSearcher struct {
	byQuery map[string]search.Results
	err     error
}

func (s *stubSearcher) Search(ctx context.Context, kind search.Kind, query string) (search.Results, error) {
	if s.err != nil {
		return search.Results{}, s.err
	}
	return s.byQuery[query], nil
}

type stubEmbedder struct {
	vector []float32
	err    error
}

func (s *stubEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if s.err != nil {
		return nil, s.err
	}
	return [][]float32{s.vector}, nil
}

type stubRetriever struct {
	points []vectorstore.ScoredPoint
	err    error

	gotK int
}

func (s *stubRetriever) Search(ctx context.Context, vector []float32, k int) ([]vectorstore.ScoredPoint, error) {
	s.gotK = k
	if s.err != nil {
		return nil, s.err
	}
	return s.points, nil
}

func discard() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func TestClassifyReturnsValidIntent(t *testing.T) {
	planner := &stubCompleter{response: `{"intent_type": "low_risk_strategy"}`}
	svc := NewService(planner, nil, nil, nil, nil, nil, discard())

	intent, err := svc.Classify(context.Background(), "Give me a DeFi Strategy that I can put for a long time, no need to worry money will be gone")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if intent != IntentLowRiskStrategy {
		t.Fatalf("expected low_risk_strategy, got %q", intent)
	}
	if !strings.HasPrefix(planner.gotPrompt, "INPUT_TEXT: ") {
		t.Fatalf("unexpected planner prompt: %q", planner.gotPrompt)
	}
}

func TestClassifyRejectsOutOfTaxonomyIntent(t *testing.T) {
	planner := &stubCompleter{response: `{"intent_type": "extreme_risk_strategy"}`}
	svc := NewService(planner, nil, nil, nil, nil, nil, discard())

	_, err := svc.Classify(context.Background(), "anything")
	if !errors.Is(err, ErrUnknownIntent) {
		t.Fatalf("expected ErrUnknownIntent, got %v", err)
	}
}

func TestClassifyRejectsMalformedJSON(t *testing.T) {
	planner := &stubCompleter{response: "not json"}
	svc := NewService(planner, nil, nil, nil, nil, nil, discard())

	if _, err := svc.Classify(context.Background(), "anything"); err == nil {
		t.Fatal("expected error for malformed planner output")
	}
}

func TestNewsDigestCombinesQueries(t *testing.T) {
	searcher := &stubSearcher{byQuery: map[string]search.Results{
		"trump": {Items: []search.Item{
			{Title: "Policy shift", Snippet: "tariffs", Date: "Jan 5, 2024"},
		}},
		"crypto": {Items: []search.Item{
			{Title: "ETH upgrade", Snippet: "lower fees", Date: "2 months ago"},
		}},
	}}
	summarizer := &stubCompleter{response: "A summary of the market."}
	svc := NewService(nil, summarizer, nil, searcher, nil, nil, discard())

	digest, err := svc.NewsDigest(context.Background(), "trump")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(digest.News) != 2 {
		t.Fatalf("expected items from both queries, got %d", len(digest.News))
	}
	if digest.Summary != "A summary of the market." {
		t.Fatalf("unexpected summary: %q", digest.Summary)
	}
	if !strings.Contains(summarizer.gotPrompt, "Policy shift") || !strings.Contains(summarizer.gotPrompt, "ETH upgrade") {
		t.Fatalf("summarizer prompt missing items: %q", summarizer.gotPrompt)
	}
	if !strings.HasPrefix(summarizer.gotPrompt, "INFORMATION: ") {
		t.Fatalf("unexpected summarizer prompt shape: %q", summarizer.gotPrompt)
	}
}

func TestNewsDigestPropagatesSearchError(t *testing.T) {
	searcher := &stubSearcher{err: errors.New("quota exceeded")}
	svc := NewService(nil, &stubCompleter{}, nil, searcher, nil, nil, discard())

	if _, err := svc.NewsDigest(context.Background(), "trump"); err == nil {
		t.Fatal("expected error from search failure")
	}
}

func TestAnswerRetrievesTopEight(t *testing.T) {
	retriever := &stubRetriever{points: []vectorstore.ScoredPoint{
		{ID: 0, Score: 0.9, Payload: vectorstore.Payload{ID: 0, Content: "Stablecoin lending keeps principal intact."}},
		{ID: 3, Score: 0.7, Payload: vectorstore.Payload{ID: 3, Content: "LP positions carry impermanent loss."}},
	}}
	qa := &stubCompleter{response: "Lend stablecoins on an established market."}
	svc := NewService(nil, nil, qa, nil, &stubEmbedder{vector: []float32{0.1, 0.2}}, retriever, discard())

	answer, err := svc.Answer(context.Background(), "What is a safe strategy?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if retriever.gotK != 8 {
		t.Fatalf("expected top-8 retrieval, got k=%d", retriever.gotK)
	}
	if answer != "Lend stablecoins on an established market." {
		t.Fatalf("unexpected answer: %q", answer)
	}
	if !strings.Contains(qa.gotPrompt, "Stablecoin lending keeps principal intact.") {
		t.Fatalf("qa prompt missing retrieved context: %q", qa.gotPrompt)
	}
	if !strings.Contains(qa.gotPrompt, "QUESTION:What is a safe strategy?") {
		t.Fatalf("qa prompt missing question: %q", qa.gotPrompt)
	}
	// Retrieval order must be preserved in the context block.
	first := strings.Index(qa.gotPrompt, "Stablecoin lending")
	second := strings.Index(qa.gotPrompt, "LP positions")
	if first < 0 || second < 0 || first > second {
		t.Fatalf("context not concatenated in retrieval order: %q", qa.gotPrompt)
	}
}

func TestAnswerPropagatesEmbedError(t *testing.T) {
	svc := NewService(nil, nil, &stubCompleter{}, nil, &stubEmbedder{err: errors.New("api down")}, &stubRetriever{}, discard())

	if _, err := svc.Answer(context.Background(), "question"); err == nil {
		t.Fatal("expected error from embedding failure")
	}
}
