package config

import (
	"log"
	"os"
	"strconv"
)

// Config is the environment-driven server configuration. PgDSN empty
// selects the in-memory stores.
type Config struct {
	ServiceName     string
	Env             string
	ListenAddr      string
	PgDSN           string
	ShutdownTimeout int
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoiEnv(key string, def int) int {
	v := getenv(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("invalid int env %s=%s, using default %d", key, v, def)
		return def
	}
	return n
}

func Load() Config {
	return Config{
		ServiceName:     getenv("SERVICE_NAME", "consigned-shop"),
		Env:             getenv("ENV", "dev"),
		ListenAddr:      getenv("LISTEN_ADDR", ":8080"),
		PgDSN:           getenv("PG_DSN", ""),
		ShutdownTimeout: atoiEnv("SHUTDOWN_TIMEOUT_SEC", 10),
	}
}
