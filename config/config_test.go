package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg := Load()

	if cfg.HTTPAddr != ":8000" {
		t.Fatalf("unexpected default addr: %q", cfg.HTTPAddr)
	}
	if cfg.VectorStore != StoreQdrant {
		t.Fatalf("unexpected default store: %q", cfg.VectorStore)
	}
	if cfg.Collection != "defi_knowledge" {
		t.Fatalf("unexpected default collection: %q", cfg.Collection)
	}
	if cfg.Embeddings.Model != "text-embedding-3-small" {
		t.Fatalf("unexpected default embedding model: %q", cfg.Embeddings.Model)
	}
}

func TestValidateRequiresOpenAIKey(t *testing.T) {
	cfg := Config{
		LLM:         LLMConfig{Provider: ProviderOpenAI},
		Embeddings:  EmbeddingsConfig{Provider: ProviderOpenAI},
		VectorStore: StoreQdrant,
		QdrantURL:   "http://localhost:6333",
		Collection:  "defi_knowledge",
	}

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing OPENAI_API_KEY")
	}

	cfg.OpenAIAPIKey = "sk-test"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateRejectsUnknownStore(t *testing.T) {
	cfg := Config{
		LLM:         LLMConfig{Provider: ProviderOllama},
		Embeddings:  EmbeddingsConfig{Provider: ProviderOllama},
		VectorStore: "milvus",
		Collection:  "defi_knowledge",
	}

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unknown vector store")
	}
}

func TestGetEnvIntFallback(t *testing.T) {
	t.Setenv("EMBEDDING_DIMENSION", "not-a-number")
	if got := getEnvInt("EMBEDDING_DIMENSION", 1536); got != 1536 {
		t.Fatalf("expected fallback 1536, got %d", got)
	}

	t.Setenv("EMBEDDING_DIMENSION", "768")
	if got := getEnvInt("EMBEDDING_DIMENSION", 1536); got != 768 {
		t.Fatalf("expected 768, got %d", got)
	}
}
