package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/avelier/defi-advisor/embeddings"
	"github.com/avelier/defi-advisor/llm"
	"github.com/avelier/defi-advisor/search"
	"github.com/avelier/defi-advisor/vectorstore"
)

// Every strategy question retrieves this many nearest chunks for context.
const retrievalLimit = 8

// newsBackfillQuery always accompanies the caller's query so the digest never
// depends on a single topic.
const newsBackfillQuery = "crypto"

// Completer is the slice of llm.Completer the service depends on.
type Completer interface {
	CompleteJSON(ctx context.Context, userPrompt string) (string, llm.Usage, error)
	CompleteText(ctx context.Context, userPrompt string) (string, llm.Usage, error)
}

// Searcher is the slice of the search client the service depends on.
type Searcher interface {
	Search(ctx context.Context, kind search.Kind, query string) (search.Results, error)
}

// Retriever is the read side of the vector store.
type Retriever interface {
	Search(ctx context.Context, vector []float32, k int) ([]vectorstore.ScoredPoint, error)
}

// Service composes the upstream clients into the three request flows: intent
// classification, news digest, and retrieval-augmented answering.
type Service struct {
	planner    Completer
	summarizer Completer
	qa         Completer
	searcher   Searcher
	embedder   embeddings.Embedder
	store      Retriever
	logger     *log.Logger
}

func NewService(planner, summarizer, qa Completer, searcher Searcher, embedder embeddings.Embedder, store Retriever, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.Default()
	}

	return &Service{
		planner:    planner,
		summarizer: summarizer,
		qa:         qa,
		searcher:   searcher,
		embedder:   embedder,
		store:      store,
		logger:     logger,
	}
}

type plannerOutput struct {
	IntentType string `json:"intent_type"`
}

// Classify routes free text to one of the five intents. Output that is not
// valid JSON or names an out-of-taxonomy intent is a classification failure.
func (s *Service) Classify(ctx context.Context, inputText string) (Intent, error) {
	if s.planner == nil {
		return "", fmt.Errorf("planner is not configured")
	}

	prompt := fmt.Sprintf("INPUT_TEXT: %s", inputText)
	raw, usage, err := s.planner.CompleteJSON(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("classify intent: %w", err)
	}
	s.logger.Printf("classify tokens in=%d out=%d", usage.InputTokens, usage.OutputTokens)

	var parsed plannerOutput
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return "", fmt.Errorf("parse planner output: %w", err)
	}

	intent, err := ParseIntent(parsed.IntentType)
	if err != nil {
		return "", err
	}
	return intent, nil
}

// Digest is the combined news payload for a query.
type Digest struct {
	News    []search.Item
	Summary string
}

// NewsDigest fetches recency-filtered news for the caller's query plus the
// crypto backfill query and summarizes the combined items.
func (s *Service) NewsDigest(ctx context.Context, query string) (Digest, error) {
	if s.searcher == nil {
		return Digest{}, fmt.Errorf("searcher is not configured")
	}
	if s.summarizer == nil {
		return Digest{}, fmt.Errorf("summarizer is not configured")
	}

	primary, err := s.searcher.Search(ctx, search.KindNews, query)
	if err != nil {
		return Digest{}, fmt.Errorf("news search %q: %w", query, err)
	}
	backfill, err := s.searcher.Search(ctx, search.KindNews, newsBackfillQuery)
	if err != nil {
		return Digest{}, fmt.Errorf("news search %q: %w", newsBackfillQuery, err)
	}

	items := make([]search.Item, 0, len(primary.Items)+len(backfill.Items))
	items = append(items, primary.Items...)
	items = append(items, backfill.Items...)
	s.logger.Printf("news digest for %q: %d items", query, len(items))

	var blob strings.Builder
	for _, item := range items {
		blob.WriteString(item.Title)
		blob.WriteString("\n")
		blob.WriteString(item.Snippet)
		blob.WriteString("\n")
	}

	prompt := fmt.Sprintf("INFORMATION: %s\nOUTPUT:", blob.String())
	summary, usage, err := s.summarizer.CompleteText(ctx, prompt)
	if err != nil {
		return Digest{}, fmt.Errorf("summarize news: %w", err)
	}
	s.logger.Printf("summarize tokens in=%d out=%d", usage.InputTokens, usage.OutputTokens)

	return Digest{News: items, Summary: strings.TrimSpace(summary)}, nil
}

// Answer embeds the question, retrieves the nearest strategy chunks, and asks
// the QA completer to answer from the concatenated context.
func (s *Service) Answer(ctx context.Context, question string) (string, error) {
	if s.embedder == nil {
		return "", fmt.Errorf("embedder is not configured")
	}
	if s.store == nil {
		return "", fmt.Errorf("vector store is not configured")
	}
	if s.qa == nil {
		return "", fmt.Errorf("qa completer is not configured")
	}

	vector, err := embeddings.EmbedOne(ctx, s.embedder, question)
	if err != nil {
		return "", fmt.Errorf("embed question: %w", err)
	}

	points, err := s.store.Search(ctx, embeddings.Normalize(vector), retrievalLimit)
	if err != nil {
		return "", fmt.Errorf("vector search: %w", err)
	}
	s.logger.Printf("retrieved %d chunks for question", len(points))

	var info strings.Builder
	for _, point := range points {
		info.WriteString(point.Payload.Content)
		info.WriteString("\n")
	}

	prompt := fmt.Sprintf("INFORMATION:%s\nQUESTION:%s\nOUTPUT:", info.String(), question)
	answer, usage, err := s.qa.CompleteText(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("answer question: %w", err)
	}
	s.logger.Printf("qa tokens in=%d out=%d", usage.InputTokens, usage.OutputTokens)

	return strings.TrimSpace(answer), nil
}
