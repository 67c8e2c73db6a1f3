package vectorstore

import (
	"context"
	"fmt"

	"github.com/avelier/defi-advisor/config"
)

// Payload is the structured data stored alongside each vector and returned on
// retrieval.
type Payload struct {
	ID      int    `json:"id"`
	Content string `json:"content"`
}

// Point is a vector keyed by an integer identifier. Writing a point with an
// existing identifier replaces the prior point (upsert semantics).
type Point struct {
	ID      uint64    `json:"id"`
	Vector  []float32 `json:"vector"`
	Payload Payload   `json:"payload"`
}

// ScoredPoint is a retrieval hit, ordered by decreasing similarity.
type ScoredPoint struct {
	ID      uint64  `json:"id"`
	Score   float64 `json:"score"`
	Payload Payload `json:"payload"`
}

type Store interface {
	// EnsureCollection provisions the cosine-distance collection with the given
	// vector dimensionality. Safe to call when the collection already exists.
	EnsureCollection(ctx context.Context, dimension int) error
	// Upsert writes points keyed by integer identifier, overwriting existing
	// points with the same identifier.
	Upsert(ctx context.Context, points []Point) error
	// Search returns the k nearest points to the query vector with payloads.
	Search(ctx context.Context, vector []float32, k int) ([]ScoredPoint, error)
}

func New(ctx context.Context, cfg config.Config) (Store, error) {
	switch cfg.VectorStore {
	case config.StoreQdrant:
		return NewQdrantStore(QdrantConfig{
			URL:        cfg.QdrantURL,
			APIKey:     cfg.QdrantKey,
			Collection: cfg.Collection,
		}), nil
	case config.StorePostgres:
		return NewPostgresStore(ctx, cfg.PostgresDSN, cfg.Collection)
	default:
		return nil, fmt.Errorf("unknown vector store: %s", cfg.VectorStore)
	}
}
