// Package config gathers runtime configuration from the environment so
// handlers and stores receive their settings explicitly instead of reading
// process-wide state.
package config

import "os"

// Config holds all runtime settings for the server process.
type Config struct {
	// Addr is the listen address of the HTTP server.
	Addr string
	// DBPath is the SQLite database file.
	DBPath string
	// RedisAddr is the address of the Redis instance backing sessions.
	RedisAddr string
	// SessionSecret signs session tokens. Must be stable across restarts or
	// every session dies with the process.
	SessionSecret string
	// CORSOrigin is the single browser origin allowed to call the API with
	// credentials.
	CORSOrigin string
	// OTLPEndpoint is the OpenTelemetry collector gRPC endpoint.
	OTLPEndpoint string
}

// Load reads the configuration from the environment, applying development
// defaults for anything unset.
func Load() Config {
	return Config{
		Addr:          getenv("TODO_ADDR", ":8080"),
		DBPath:        getenv("TODO_DB_PATH", "./todo.db"),
		RedisAddr:     getenv("REDIS_CONNSTRING", "localhost:6379"),
		SessionSecret: getenv("TODO_SESSION_SECRET", "dev-only-session-secret"),
		CORSOrigin:    getenv("TODO_CORS_ORIGIN", "http://localhost:3000"),
		OTLPEndpoint:  getenv("OTLP_ENDPOINT", "otel-collector:4317"),
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
