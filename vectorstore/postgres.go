package vectorstore

import (
	"context"
	"fmt"
	"regexp"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

var identifierPattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// PostgresStore keeps points in a pgvector table named after the collection,
// with an HNSW cosine index tuned like the qdrant deployment.
type PostgresStore struct {
	pool  *pgxpool.Pool
	table string
}

func NewPostgresStore(ctx context.Context, dsn, collection string) (*PostgresStore, error) {
	if !identifierPattern.MatchString(collection) {
		return nil, fmt.Errorf("collection name %q is not a valid table identifier", collection)
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("create postgres pool: %w", err)
	}

	return &PostgresStore{pool: pool, table: collection}, nil
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}

func (s *PostgresStore) EnsureCollection(ctx context.Context, dimension int) error {
	if dimension <= 0 {
		return fmt.Errorf("collection dimension must be positive, got %d", dimension)
	}

	stmts := []string{
		"CREATE EXTENSION IF NOT EXISTS vector",
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id BIGINT PRIMARY KEY,
			content TEXT NOT NULL,
			embedding VECTOR(%d) NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`, s.table, dimension),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%s_embedding ON %s
			USING hnsw (embedding vector_cosine_ops)
			WITH (m = %d, ef_construction = %d)`,
			s.table, s.table, qdrantHNSWDegree, qdrantHNSWEfConstruct),
	}

	for _, stmt := range stmts {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("execute schema statement: %w", err)
		}
	}

	return nil
}

func (s *PostgresStore) Upsert(ctx context.Context, points []Point) error {
	for _, point := range points {
		query := fmt.Sprintf(`
			INSERT INTO %s (id, content, embedding, updated_at)
			VALUES ($1, $2, $3, NOW())
			ON CONFLICT (id) DO UPDATE
			SET content = EXCLUDED.content,
			    embedding = EXCLUDED.embedding,
			    updated_at = NOW()
		`, s.table)
		if _, err := s.pool.Exec(ctx, query, int64(point.ID), point.Payload.Content, pgvector.NewVector(point.Vector)); err != nil {
			return fmt.Errorf("upsert point %d: %w", point.ID, err)
		}
	}
	return nil
}

func (s *PostgresStore) Search(ctx context.Context, vector []float32, k int) ([]ScoredPoint, error) {
	if k <= 0 {
		return nil, fmt.Errorf("search limit must be positive, got %d", k)
	}

	query := fmt.Sprintf(`
		SELECT id, content, 1 - (embedding <=> $1::vector) AS score
		FROM %s
		ORDER BY embedding <=> $1::vector
		LIMIT $2
	`, s.table)

	rows, err := s.pool.Query(ctx, query, pgvector.NewVector(vector), k)
	if err != nil {
		return nil, fmt.Errorf("query nearest points: %w", err)
	}
	defer rows.Close()

	results := make([]ScoredPoint, 0, k)
	for rows.Next() {
		var (
			id      int64
			content string
			score   float64
		)
		if err := rows.Scan(&id, &content, &score); err != nil {
			return nil, fmt.Errorf("scan nearest point: %w", err)
		}
		results = append(results, ScoredPoint{
			ID:      uint64(id),
			Score:   score,
			Payload: Payload{ID: int(id), Content: content},
		})
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return results, nil
}

var _ Store = (*PostgresStore)(nil)
