package vectorstore

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"
)

// fakeQdrant emulates the collection and point endpoints with upsert
// semantics and cosine scoring over stored vectors.
type fakeQdrant struct {
	t          *testing.T
	collection map[string]any
	points     map[uint64]Point
}

func newFakeQdrant(t *testing.T) (*fakeQdrant, *QdrantStore) {
	f := &fakeQdrant{t: t, points: make(map[uint64]Point)}
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)

	store := NewQdrantStore(QdrantConfig{URL: srv.URL, APIKey: "secret", Collection: "defi_knowledge"})
	return f, store
}

func (f *fakeQdrant) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("api-key") != "secret" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	switch {
	case r.Method == http.MethodPut && r.URL.Path == "/collections/defi_knowledge":
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f.collection = body
		_ = json.NewEncoder(w).Encode(map[string]any{"result": true, "status": "ok"})

	case r.Method == http.MethodPut && r.URL.Path == "/collections/defi_knowledge/points":
		if f.collection == nil {
			http.Error(w, "collection not found", http.StatusNotFound)
			return
		}
		var body struct {
			Points []Point `json:"points"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		for _, point := range body.Points {
			f.points[point.ID] = point
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"result": true, "status": "ok"})

	case r.Method == http.MethodPost && r.URL.Path == "/collections/defi_knowledge/points/search":
		if f.collection == nil {
			http.Error(w, "collection not found", http.StatusNotFound)
			return
		}
		var body struct {
			Vector []float32 `json:"vector"`
			Limit  int       `json:"limit"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		hits := make([]ScoredPoint, 0, len(f.points))
		for _, point := range f.points {
			var dot float64
			for i := range body.Vector {
				if i < len(point.Vector) {
					dot += float64(body.Vector[i]) * float64(point.Vector[i])
				}
			}
			hits = append(hits, ScoredPoint{ID: point.ID, Score: dot, Payload: point.Payload})
		}
		sort.Slice(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
		if len(hits) > body.Limit {
			hits = hits[:body.Limit]
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"result": hits})

	default:
		http.NotFound(w, r)
	}
}

func TestQdrantEnsureCollectionConfig(t *testing.T) {
	f, store := newFakeQdrant(t)

	if err := store.EnsureCollection(context.Background(), 3); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	vectors, ok := f.collection["vectors"].(map[string]any)
	if !ok {
		t.Fatalf("missing vectors config: %v", f.collection)
	}
	if vectors["distance"] != "Cosine" {
		t.Fatalf("expected cosine distance, got %v", vectors["distance"])
	}
	if vectors["size"] != float64(3) {
		t.Fatalf("expected dimension 3, got %v", vectors["size"])
	}

	hnsw, ok := f.collection["hnsw_config"].(map[string]any)
	if !ok {
		t.Fatalf("missing hnsw config: %v", f.collection)
	}
	if hnsw["m"] != float64(16) || hnsw["ef_construct"] != float64(100) || hnsw["on_disk"] != true {
		t.Fatalf("unexpected hnsw config: %v", hnsw)
	}

	optimizers, ok := f.collection["optimizers_config"].(map[string]any)
	if !ok || optimizers["memmap_threshold"] != float64(20000) {
		t.Fatalf("unexpected optimizers config: %v", f.collection["optimizers_config"])
	}
}

func TestQdrantEnsureCollectionRejectsBadDimension(t *testing.T) {
	_, store := newFakeQdrant(t)
	if err := store.EnsureCollection(context.Background(), 0); err == nil {
		t.Fatal("expected error for zero dimension")
	}
}

func TestQdrantUpsertOverwritesSameID(t *testing.T) {
	f, store := newFakeQdrant(t)
	ctx := context.Background()

	if err := store.EnsureCollection(ctx, 2); err != nil {
		t.Fatalf("ensure collection: %v", err)
	}

	first := []Point{{ID: 7, Vector: []float32{1, 0}, Payload: Payload{ID: 7, Content: "old"}}}
	second := []Point{{ID: 7, Vector: []float32{0, 1}, Payload: Payload{ID: 7, Content: "new"}}}

	if err := store.Upsert(ctx, first); err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	if err := store.Upsert(ctx, second); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	if len(f.points) != 1 {
		t.Fatalf("expected exactly one point, got %d", len(f.points))
	}
	if f.points[7].Payload.Content != "new" {
		t.Fatalf("expected second write to win, got %q", f.points[7].Payload.Content)
	}
}

func TestQdrantSearchOrdersByScore(t *testing.T) {
	_, store := newFakeQdrant(t)
	ctx := context.Background()

	if err := store.EnsureCollection(ctx, 2); err != nil {
		t.Fatalf("ensure collection: %v", err)
	}

	points := []Point{
		{ID: 0, Vector: []float32{1, 0}, Payload: Payload{ID: 0, Content: "aligned"}},
		{ID: 1, Vector: []float32{0, 1}, Payload: Payload{ID: 1, Content: "orthogonal"}},
		{ID: 2, Vector: []float32{0.7, 0.7}, Payload: Payload{ID: 2, Content: "diagonal"}},
	}
	if err := store.Upsert(ctx, points); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	hits, err := store.Search(ctx, []float32{1, 0}, 8)
	if err != nil {
		t.Fatalf("search: %v", err)
	}

	if len(hits) != 3 {
		t.Fatalf("expected 3 hits, got %d", len(hits))
	}
	for i := 1; i < len(hits); i++ {
		if hits[i].Score > hits[i-1].Score {
			t.Fatalf("hits not ordered by decreasing score: %v", hits)
		}
	}
	if hits[0].Payload.Content != "aligned" {
		t.Fatalf("expected nearest payload first, got %q", hits[0].Payload.Content)
	}
	for _, hit := range hits {
		if hit.Payload.Content == "" {
			t.Fatalf("hit %d missing payload content", hit.ID)
		}
	}
}

func TestQdrantSearchMissingCollection(t *testing.T) {
	_, store := newFakeQdrant(t)
	if _, err := store.Search(context.Background(), []float32{1, 0}, 5); err == nil {
		t.Fatal("expected error when collection does not exist")
	}
}
