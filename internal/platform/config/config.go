package config

import (
	"os"
	"strconv"
	"time"
)

// Server captures process level configuration.
type Server struct {
	Addr          string
	JWTSigningKey string
	JWTIssuer     string

	// DatabaseURL selects PostgreSQL persistence; empty runs in-memory.
	DatabaseURL string
	// RedisAddr enables the contract view cache; empty disables it.
	RedisAddr string
	// KafkaBrokers enables stakeholder notifications; empty uses the noop
	// publisher.
	KafkaBrokers string
	KafkaTopic   string

	// BlobRoot is where documents and archive artifacts land.
	BlobRoot string

	ArchiveQueueSize int
	AuditQueueSize   int
}

// ContractViewTTL bounds staleness of cached guarantee views.
var ContractViewTTL = 5 * time.Minute

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	cfg := Server{
		Addr:             envOr("SINISTRA_ADDR", ":8080"),
		JWTSigningKey:    envOr("JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		JWTIssuer:        envOr("JWT_ISSUER", "sinistra"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		RedisAddr:        os.Getenv("REDIS_ADDR"),
		KafkaBrokers:     os.Getenv("KAFKA_BROKERS"),
		KafkaTopic:       envOr("KAFKA_TOPIC", "sinistra.events"),
		BlobRoot:         envOr("SINISTRA_BLOB_ROOT", "./data/blobs"),
		ArchiveQueueSize: envIntOr("SINISTRA_ARCHIVE_QUEUE", 64),
		AuditQueueSize:   envIntOr("SINISTRA_AUDIT_QUEUE", 256),
	}
	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}
