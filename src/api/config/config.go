package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

type Config struct {
	MySQLDSN     string
	RedisURL     string
	Port         string
	UploadDir    string
	CacheBackend string
	CacheTTL     time.Duration
	FetchTimeout time.Duration
	AI           AI
}

type AI struct {
	Provider  string
	Model     string
	OpenAIKey string
	GeminiKey string
	ClaudeKey string
}

func getenv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		if def == "" {
			log.Fatalf("missing env %s", key)
		}
		return def
	}
	return v
}

func Load() Config {
	fetchSecs, _ := strconv.Atoi(getenv("FETCH_TIMEOUT", "30"))
	ttlSecs, _ := strconv.Atoi(getenv("PROFILE_CACHE_TTL", "0"))
	return Config{
		MySQLDSN:     getenv("MYSQL_DSN", "peerpanel:peerpanel@tcp(127.0.0.1:3306)/peerpanel"),
		RedisURL:     getenv("REDIS_URL", "redis://127.0.0.1:6379/0"),
		Port:         getenv("PORT", "8080"),
		UploadDir:    getenv("UPLOAD_DIR", "uploads"),
		CacheBackend: getenv("PROFILE_CACHE", "memory"),
		CacheTTL:     time.Duration(ttlSecs) * time.Second,
		FetchTimeout: time.Duration(fetchSecs) * time.Second,
		AI:           LoadAIFromEnv(),
	}
}

// LoadAIFromEnv provides a simple env-only loader; services can merge DB
// settings over this.
func LoadAIFromEnv() AI {
	provider := os.Getenv("AI_PROVIDER")
	if provider == "" {
		provider = "openai"
	}
	model := os.Getenv("AI_MODEL")
	if model == "" {
		switch provider {
		case "claude", "anthropic":
			model = "claude-sonnet-4-5"
		case "gemini", "google":
			model = "gemini-pro"
		default:
			model = "gpt-4-turbo-preview"
		}
	}
	return AI{
		Provider:  provider,
		Model:     model,
		OpenAIKey: os.Getenv("OPENAI_API_KEY"),
		GeminiKey: os.Getenv("GEMINI_API_KEY"),
		ClaudeKey: os.Getenv("CLAUDE_API_KEY"),
	}
}
