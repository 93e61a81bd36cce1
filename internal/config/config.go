package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config carries every tunable the server reads, resolved once at startup.
// Each field documents its env var and default; nothing else in the codebase
// touches os.Getenv.
type Config struct {
	Port           string   // API_PORT, default 8080
	LogMode        string   // LOG_MODE, "dev" or "prod", default dev
	AllowedOrigins []string // CORS_ORIGINS, comma-separated, default localhost:3000/3001

	DBUser string // DB_USER, default profai
	DBPass string // DB_PASS
	DBHost string // DB_HOST, default localhost
	DBPort string // DB_PORT, default 3306
	DBName string // DB_NAME, default profai

	RedisAddr string // REDIS_ADDR, empty disables the profile cache

	KafkaEnabled bool     // KAFKA_ENABLED, default true
	KafkaBrokers []string // KAFKA_BROKERS, comma-separated, default localhost:9092
	KafkaTopic   string   // KAFKA_TOPIC, default interactions
	KafkaGroupID string   // KAFKA_GROUP_ID, default profile-refresh
	Workers      int      // UPDATE_WORKERS, default 4

	OpenAIKey   string // OPENAI_API_KEY
	ChatModel   string // CHAT_MODEL, default gpt-4o
	ScriptModel string // SCRIPT_MODEL, default gpt-4o
	TTSModel    string // TTS_MODEL, default tts-1-hd

	TTSProvider   string // TTS_PROVIDER, "openai" (default) or "elevenlabs"
	ElevenLabsKey string // ELEVENLABS_API_KEY

	// Per-persona voice overrides, needed when the synthesis provider uses
	// its own voice id scheme.
	VoiceSarah  string // VOICE_SARAH
	VoiceMarcus string // VOICE_MARCUS
}

// Load reads .env (when present) and resolves the configuration.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Port:           getenv("API_PORT", "8080"),
		LogMode:        getenv("LOG_MODE", "dev"),
		AllowedOrigins: split(getenv("CORS_ORIGINS", "http://localhost:3000,http://localhost:3001")),

		DBUser: getenv("DB_USER", "profai"),
		DBPass: getenv("DB_PASS", ""),
		DBHost: getenv("DB_HOST", "localhost"),
		DBPort: getenv("DB_PORT", "3306"),
		DBName: getenv("DB_NAME", "profai"),

		RedisAddr: getenv("REDIS_ADDR", ""),

		KafkaEnabled: getbool("KAFKA_ENABLED", true),
		KafkaBrokers: split(getenv("KAFKA_BROKERS", "localhost:9092")),
		KafkaTopic:   getenv("KAFKA_TOPIC", "interactions"),
		KafkaGroupID: getenv("KAFKA_GROUP_ID", "profile-refresh"),
		Workers:      getint("UPDATE_WORKERS", 4),

		OpenAIKey:   getenv("OPENAI_API_KEY", ""),
		ChatModel:   getenv("CHAT_MODEL", "gpt-4o"),
		ScriptModel: getenv("SCRIPT_MODEL", "gpt-4o"),
		TTSModel:    getenv("TTS_MODEL", "tts-1-hd"),

		TTSProvider:   getenv("TTS_PROVIDER", "openai"),
		ElevenLabsKey: getenv("ELEVENLABS_API_KEY", ""),

		VoiceSarah:  getenv("VOICE_SARAH", ""),
		VoiceMarcus: getenv("VOICE_MARCUS", ""),
	}
}

// DSN renders the MySQL connection string.
func (c Config) DSN() string {
	return fmt.Sprintf(
		"%s:%s@tcp(%s:%s)/%s?parseTime=true&charset=utf8mb4&loc=Local",
		c.DBUser, c.DBPass, c.DBHost, c.DBPort, c.DBName,
	)
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getbool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func getint(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func split(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
