package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port string

	OpenAIBaseURL   string
	OpenAIAPIKey    string
	OpenAIChatModel string
	OpenAISTTModel  string
	OpenAITimeout   time.Duration

	GeminiAPIKey string
	GeminiModel  string

	LicenseFile string

	// DatabaseURL enables the idempotency store when non-empty.
	DatabaseURL string
}

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getEnvInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

// Load reads the whole configuration surface from the environment. The
// OpenAI key is allowed to be empty here: the provider client reports
// OPENAI_KEY_MISSING per call so the process can still serve /healthz.
func Load() *Config {
	return &Config{
		Port: getEnv("PORT", "8000"),

		OpenAIBaseURL:   getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		OpenAIAPIKey:    os.Getenv("OPENAI_API_KEY"),
		OpenAIChatModel: getEnv("OPENAI_CHAT_MODEL", "gpt-5-mini"),
		OpenAISTTModel:  getEnv("OPENAI_STT_MODEL", "whisper-1"),
		OpenAITimeout:   time.Duration(getEnvInt("OPENAI_TIMEOUT_MS", 60000)) * time.Millisecond,

		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-2.5-flash"),

		LicenseFile: getEnv("LICENSE_FILE", "./config/licenses.yaml"),

		DatabaseURL: os.Getenv("DATABASE_URL"),
	}
}
