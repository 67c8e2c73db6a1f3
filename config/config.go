package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

const (
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"

	StoreQdrant   = "qdrant"
	StorePostgres = "postgres"
)

type EmbeddingsConfig struct {
	Provider  string
	Model     string
	Dimension int
}

type LLMConfig struct {
	Provider string
	Model    string
}

type Config struct {
	HTTPAddr string

	OpenAIAPIKey  string
	OpenAIBaseURL string
	OllamaHost    string

	LLM        LLMConfig
	Embeddings EmbeddingsConfig

	VectorStore string
	Collection  string
	QdrantURL   string
	QdrantKey   string
	PostgresDSN string

	SerperAPIKey string

	DocumentPath string
}

// Load reads configuration from the environment. A .env file in the working
// directory is merged in first, without overriding variables already set.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		HTTPAddr: getEnv("HTTP_ADDR", ":8000"),

		OpenAIAPIKey:  getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL: getEnv("OPENAI_BASE_URL", ""),
		OllamaHost:    getEnv("OLLAMA_HOST", "http://localhost:11434"),

		LLM: LLMConfig{
			Provider: getEnv("LLM_PROVIDER", ProviderOpenAI),
			Model:    getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		},
		Embeddings: EmbeddingsConfig{
			Provider:  getEnv("EMBEDDINGS_PROVIDER", ProviderOpenAI),
			Model:     getEnv("EMBEDDING_MODEL", "text-embedding-3-small"),
			Dimension: getEnvInt("EMBEDDING_DIMENSION", 0),
		},

		VectorStore: getEnv("VECTOR_STORE", StoreQdrant),
		Collection:  getEnv("COLLECTION_NAME", "defi_knowledge"),
		QdrantURL:   getEnv("QDRANT_DB_URL", "http://localhost:6333"),
		QdrantKey:   getEnv("QDRANT_APIKEY", ""),
		PostgresDSN: getEnv("POSTGRES_DSN", "postgres://localhost:5432/defi-advisor?sslmode=disable"),

		SerperAPIKey: getEnv("SERPER_API_KEY", ""),

		DocumentPath: getEnv("DOCUMENT_PATH", "data/defi_strategies.txt"),
	}
}

// Validate checks the settings every entry point depends on. Provider-specific
// requirements (e.g. the serper key for the HTTP service) are checked by the
// callers that actually use them.
func (c Config) Validate() error {
	if c.LLM.Provider == ProviderOpenAI || c.Embeddings.Provider == ProviderOpenAI {
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("openai provider selected but OPENAI_API_KEY not set")
		}
	}

	switch c.VectorStore {
	case StoreQdrant:
		if c.QdrantURL == "" {
			return fmt.Errorf("qdrant store selected but QDRANT_DB_URL not set")
		}
	case StorePostgres:
		if c.PostgresDSN == "" {
			return fmt.Errorf("postgres store selected but POSTGRES_DSN not set")
		}
	default:
		return fmt.Errorf("unknown vector store: %s", c.VectorStore)
	}

	if c.Collection == "" {
		return fmt.Errorf("COLLECTION_NAME must not be empty")
	}

	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
