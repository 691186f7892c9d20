package config

import (
	"os"
	"strconv"
)

type Config struct {
	APIPort  string
	LogLevel string

	OllamaURL       string
	GenerationModel string
	EmbeddingModel  string

	PineconeAPIKey    string
	PineconeIndexHost string
	PineconeNamespace string

	RetrievalK         int
	RerankMethod       string
	RerankTopK         int
	RerankBatchSize    int
	RelevanceThreshold float64

	CrossEncoderURL   string
	CrossEncoderModel string

	SessionTTLSeconds int
	SessionMaxTurns   int

	NATSURL     string
	NATSSubject string

	APIRateLimitRPS   float64
	APIRateLimitBurst int
	APIMaxConcurrent  int

	IndexTimeoutSeconds    int
	GenerateTimeoutSeconds int
	RerankTimeoutSeconds   int
}

func Load() Config {
	return Config{
		APIPort:  mustEnv("API_PORT", "8080"),
		LogLevel: mustEnv("LOG_LEVEL", "info"),

		OllamaURL:       mustEnv("OLLAMA_URL", "http://localhost:11434"),
		GenerationModel: mustEnv("GENERATION_MODEL", "llama3.1:8b"),
		EmbeddingModel:  mustEnv("EMBEDDING_MODEL", "nomic-embed-text"),

		PineconeAPIKey:    mustEnv("PINECONE_API_KEY", ""),
		PineconeIndexHost: mustEnv("PINECONE_INDEX_HOST", ""),
		PineconeNamespace: mustEnv("PINECONE_NAMESPACE", "default"),

		RetrievalK:         mustEnvInt("RETRIEVAL_K", 5),
		RerankMethod:       mustEnv("RERANK_METHOD_DEFAULT", "none"),
		RerankTopK:         mustEnvInt("RERANK_TOP_K_DEFAULT", 0),
		RerankBatchSize:    mustEnvInt("RERANK_BATCH_SIZE", 16),
		RelevanceThreshold: mustEnvFloat("RELEVANCE_THRESHOLD", 0),

		CrossEncoderURL:   mustEnv("CROSS_ENCODER_URL", ""),
		CrossEncoderModel: mustEnv("CROSS_ENCODER_MODEL", "cross-encoder/ms-marco-MiniLM-L-6-v2"),

		SessionTTLSeconds: mustEnvInt("SESSION_TTL_SECONDS", 1800),
		SessionMaxTurns:   mustEnvInt("SESSION_MAX_TURNS", 20),

		NATSURL:     mustEnv("NATS_URL", ""),
		NATSSubject: mustEnv("NATS_SUBJECT", "assistant.turns"),

		APIRateLimitRPS:   mustEnvFloat("API_RATE_LIMIT_RPS", 0),
		APIRateLimitBurst: mustEnvInt("API_RATE_LIMIT_BURST", 0),
		APIMaxConcurrent:  mustEnvInt("API_MAX_CONCURRENT", 0),

		IndexTimeoutSeconds:    mustEnvInt("INDEX_TIMEOUT_SECONDS", 10),
		GenerateTimeoutSeconds: mustEnvInt("GENERATE_TIMEOUT_SECONDS", 120),
		RerankTimeoutSeconds:   mustEnvInt("RERANK_TIMEOUT_SECONDS", 15),
	}
}

// MockMode reports whether the vector index runs against the built-in corpus
// instead of Pinecone. The credential being absent is a supported setup.
func (c Config) MockMode() bool {
	return c.PineconeAPIKey == "" || c.PineconeIndexHost == ""
}

func mustEnv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func mustEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func mustEnvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}
