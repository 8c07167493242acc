package config

import (
	"os"
	"strings"
	"time"
)

// Server captures process-level configuration so main stays lean.
type Server struct {
	Addr            string
	PostgresDSN     string
	RedisURL        string
	KafkaBrokers    []string
	KafkaAuditTopic string
	JWTSigningKey   string
	AdminToken      string
	// BootstrapRoles runs the one-time role seeding routine on startup.
	BootstrapRoles bool
}

// ProfileCacheTTL bounds staleness of cached user profiles. Authorization
// reads department membership through this cache, so keep it short.
var ProfileCacheTTL = 2 * time.Minute

// FromEnv builds a Server config from environment variables.
func FromEnv() Server {
	addr := os.Getenv("WORKTRACK_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	topic := os.Getenv("KAFKA_AUDIT_TOPIC")
	if topic == "" {
		topic = "worktrack.audit"
	}

	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Development default - must be overridden in production.
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	adminToken := os.Getenv("ADMIN_TOKEN")
	if adminToken == "" {
		adminToken = "dev-admin-token"
	}

	return Server{
		Addr:            addr,
		PostgresDSN:     os.Getenv("POSTGRES_DSN"),
		RedisURL:        os.Getenv("REDIS_URL"),
		KafkaBrokers:    splitBrokers(os.Getenv("KAFKA_BROKERS")),
		KafkaAuditTopic: topic,
		JWTSigningKey:   jwtSigningKey,
		AdminToken:      adminToken,
		BootstrapRoles:  os.Getenv("BOOTSTRAP_ROLES") == "true",
	}
}

func splitBrokers(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	brokers := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			brokers = append(brokers, trimmed)
		}
	}
	return brokers
}
