package ingestion

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/avelier/defi-advisor/embeddings"
	"github.com/avelier/defi-advisor/splitter"
	"github.com/avelier/defi-advisor/vectorstore"
)

// Service runs the offline ingestion pipeline: read the source document, split
// it into overlapping chunks, embed them, provision the collection, and upsert
// ordinal-keyed points.
type Service struct {
	embedder embeddings.Embedder
	store    vectorstore.Store
	split    *splitter.Splitter
	logger   *log.Logger
}

func NewService(embedder embeddings.Embedder, store vectorstore.Store, split *splitter.Splitter, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.Default()
	}
	if split == nil {
		split = splitter.New(splitter.DefaultChunkSize, splitter.DefaultChunkOverlap, splitter.DefaultSeparators)
	}

	return &Service{
		embedder: embedder,
		store:    store,
		split:    split,
		logger:   logger,
	}
}

// IngestFile loads the document at path and writes it into the vector store.
// Re-running over the same document overwrites the prior points chunk by chunk.
func (s *Service) IngestFile(ctx context.Context, path string) error {
	if s.embedder == nil {
		return fmt.Errorf("embedder not configured")
	}
	if s.store == nil {
		return fmt.Errorf("vector store not configured")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read source document: %w", err)
	}

	chunks := s.split.Split(string(data))
	if len(chunks) == 0 {
		s.logger.Printf("skip empty document %s", path)
		return nil
	}

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Text
	}

	vectors, err := s.embedder.Embed(ctx, texts)
	if err != nil {
		return fmt.Errorf("generate embeddings: %w", err)
	}
	if len(vectors) != len(chunks) {
		return fmt.Errorf("embedding count mismatch: have %d chunks, %d embeddings", len(chunks), len(vectors))
	}

	vectors = embeddings.NormalizeBatch(vectors)

	if err := s.store.EnsureCollection(ctx, len(vectors[0])); err != nil {
		return fmt.Errorf("ensure collection: %w", err)
	}

	points := make([]vectorstore.Point, len(chunks))
	for i, chunk := range chunks {
		points[i] = vectorstore.Point{
			ID:     uint64(chunk.Index),
			Vector: vectors[i],
			Payload: vectorstore.Payload{
				ID:      chunk.Index,
				Content: chunk.Text,
			},
		}
	}

	if err := s.store.Upsert(ctx, points); err != nil {
		return fmt.Errorf("upsert points: %w", err)
	}

	s.logger.Printf("ingested %s (%d chunks, dimension %d)", path, len(points), len(vectors[0]))
	return nil
}
