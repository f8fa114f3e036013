package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Env  string
	Port string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	GoogleAPIKey string
	TavilyAPIKey string
	GNewsAPIKey  string

	ModelName      string
	EmbeddingModel string
	EmbeddingDim   int

	ChunkSize    int
	ChunkOverlap int

	MaxArticles         int
	MaxChunks           int
	SimilarityThreshold float64
}

// Load reads configuration from the environment, with a best-effort .env
// file on top. Missing API keys are not an error here: the dependent
// clients report them at first use.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Env:  getEnv("ENV", "development"),
		Port: getEnv("PORT", "8000"),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "news_rag"),
		DBPassword: getEnv("DB_PASSWORD", "news_rag"),
		DBName:     getEnv("DB_NAME", "news_rag"),

		GoogleAPIKey: getEnv("GOOGLE_API_KEY", ""),
		TavilyAPIKey: getEnv("TAVILY_API_KEY", ""),
		GNewsAPIKey:  getEnv("GNEWS_API_KEY", ""),

		ModelName:      getEnv("NEWS_RAG_MODEL", "gemini-1.5-flash"),
		EmbeddingModel: getEnv("GOOGLE_EMBEDDING_MODEL", "text-embedding-004"),
		EmbeddingDim:   getEnvInt("EMBEDDING_DIM", 768),

		ChunkSize:    getEnvInt("CHUNK_SIZE", 1000),
		ChunkOverlap: getEnvInt("CHUNK_OVERLAP", 150),

		MaxArticles:         getEnvInt("MAX_ARTICLES", 10),
		MaxChunks:           getEnvInt("RAG_MAX_CHUNKS", 10),
		SimilarityThreshold: getEnvFloat("SIMILARITY_THRESHOLD", 0.3),
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return fallback
}
