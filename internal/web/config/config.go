// Package config loads runtime options from the environment, with an optional
// .env file for local development.
package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every runtime option the web frontend needs.
type Config struct {
	Address        string
	BasePath       string
	BackendBaseURL string
	BackendTimeout time.Duration

	SessionHashKey  []byte
	SessionBlockKey []byte
	SessionLifetime time.Duration
	CookieSecure    bool
}

// Load reads configuration from the environment. A missing .env file is not
// an error; explicit environment variables always win.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			log.Printf("config: skipping .env: %v", err)
		}
	}

	cfg := &Config{
		Address:         getEnv("TRACKHUB_HTTP_ADDR", ":3000"),
		BasePath:        getEnv("TRACKHUB_BASE_PATH", "/"),
		BackendBaseURL:  getEnv("TRACKHUB_BACKEND_URL", "http://localhost:8080"),
		BackendTimeout:  getDuration("TRACKHUB_BACKEND_TIMEOUT", 15*time.Second),
		SessionLifetime: getDuration("TRACKHUB_SESSION_LIFETIME", 12*time.Hour),
		CookieSecure:    getBool("TRACKHUB_COOKIE_SECURE", false),
	}

	hashKey, err := keyFromEnv("TRACKHUB_SESSION_HASH_KEY")
	if err != nil {
		return nil, err
	}
	if hashKey == nil {
		// Ephemeral key: sessions will not survive a restart, which is fine
		// for development but should be configured in deployment.
		log.Printf("config: TRACKHUB_SESSION_HASH_KEY not set; using an ephemeral session key")
		hashKey = randomKey()
	}
	cfg.SessionHashKey = hashKey

	blockKey, err := keyFromEnv("TRACKHUB_SESSION_BLOCK_KEY")
	if err != nil {
		return nil, err
	}
	cfg.SessionBlockKey = blockKey

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("config: invalid %s=%q, using %s", key, v, fallback)
		return fallback
	}
	return d
}

func getBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Printf("config: invalid %s=%q, using %t", key, v, fallback)
		return fallback
	}
	return b
}

func keyFromEnv(key string) ([]byte, error) {
	v := os.Getenv(key)
	if v == "" {
		return nil, nil
	}
	decoded, err := hex.DecodeString(v)
	if err != nil {
		return nil, fmt.Errorf("config: %s must be hex-encoded: %w", key, err)
	}
	return decoded, nil
}

func randomKey() []byte {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		log.Fatalf("config: generate session key: %v", err)
	}
	return buf
}
