package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Keys      APIKeys
	Ai        AIConfig
	Embedding EmbeddingConfig
	Context   ContextConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	JwtSecret          string
}

type DatabaseConfig struct {
	Connection string
}

type APIKeys struct {
	OpenAI          string
	Anthropic       string
	EmbedChunkTopic string // Watermill topic for chunk embedding
}

type AIConfig struct {
	Providers         []string // enabled provider adapters
	OllamaBaseURL     string
	OllamaModel       string
	ModeratorProvider string
	ModeratorModel    string

	Timeout     time.Duration
	MaxRetries  int
	Temperature float64
	MaxTokens   int
}

type EmbeddingConfig struct {
	Provider   string // "openai" or "ollama"
	Model      string
	Dimension  int
	MaxRetries int
	RetryDelay time.Duration
}

type ContextConfig struct {
	ChunkSize        int
	ChunkOverlap     int
	MaxContextTokens int
	TokenBuffer      int
	Separator        string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "8000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/orquix.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			JwtSecret:          getEnv("JWT_SECRET", ""),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Keys: APIKeys{
			OpenAI:          getEnv("OPENAI_API_KEY", ""),
			Anthropic:       getEnv("ANTHROPIC_API_KEY", ""),
			EmbedChunkTopic: getEnv("EMBED_CHUNK_TOPIC_NAME", "EMBED_CONTEXT_CHUNK"),
		},
		Ai: AIConfig{
			Providers:         getEnvAsSlice("AI_PROVIDERS", []string{"openai", "anthropic"}),
			OllamaBaseURL:     getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OllamaModel:       getEnv("OLLAMA_MODEL", "llama3"),
			ModeratorProvider: getEnv("MODERATOR_PROVIDER", "openai"),
			ModeratorModel:    getEnv("MODERATOR_MODEL", "gpt-4o-mini"),
			Timeout:           getEnvAsDuration("DEFAULT_AI_TIMEOUT", 30*time.Second),
			MaxRetries:        getEnvAsInt("DEFAULT_AI_MAX_RETRIES", 3),
			Temperature:       getEnvAsFloat("DEFAULT_AI_TEMPERATURE", 0.7),
			MaxTokens:         getEnvAsInt("DEFAULT_AI_MAX_TOKENS", 1000),
		},
		Embedding: EmbeddingConfig{
			Provider:   getEnv("EMBEDDING_PROVIDER", "openai"),
			Model:      getEnv("EMBEDDING_MODEL", "text-embedding-3-small"),
			Dimension:  getEnvAsInt("EMBEDDING_DIMENSION", 1536),
			MaxRetries: getEnvAsInt("MAX_RETRIES", 3),
			RetryDelay: getEnvAsDuration("RETRY_DELAY", 1*time.Second),
		},
		Context: ContextConfig{
			ChunkSize:        getEnvAsInt("CHUNK_SIZE", 1000),
			ChunkOverlap:     getEnvAsInt("CHUNK_OVERLAP", 200),
			MaxContextTokens: getEnvAsInt("MAX_CONTEXT_TOKENS", 4000),
			TokenBuffer:      getEnvAsInt("CONTEXT_TOKEN_BUFFER", 100),
			Separator:        getEnv("CONTEXT_SEPARATOR", "\n\n---\n\n"),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsSlice(key string, fallback []string) []string {
	strValue := getEnv(key, "")
	if strValue == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(strValue, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
