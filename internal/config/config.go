package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port          string
	Env           string
	AllowedOrigin string

	// Empty DatabaseURL selects the seeded in-memory store.
	DatabaseURL string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	KafkaBrokers []string
	KafkaTopic   string

	DefaultCashier  string
	MaxCarts        int
	VariantCacheTTL time.Duration
}

func Load() Config {
	_ = godotenv.Load()

	return Config{
		Port:            getEnv("PORT", "8080"),
		Env:             getEnv("APP_ENV", "dev"),
		AllowedOrigin:   getEnv("ALLOWED_ORIGIN", "*"),
		DatabaseURL:     getEnv("DATABASE_URL", ""),
		RedisAddr:       getEnv("REDIS_ADDR", ""),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		RedisDB:         getEnvInt("REDIS_DB", 0),
		KafkaBrokers:    splitList(getEnv("KAFKA_BROKERS", "")),
		KafkaTopic:      getEnv("KAFKA_TOPIC", "pos.events"),
		DefaultCashier:  getEnv("DEFAULT_CASHIER", "Caissier Principal"),
		MaxCarts:        getEnvInt("MAX_CARTS", 3),
		VariantCacheTTL: time.Duration(getEnvInt("VARIANT_CACHE_TTL_SECONDS", 60)) * time.Second,
	}
}

func (c Config) Address() string {
	return ":" + c.Port
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
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

func splitList(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
