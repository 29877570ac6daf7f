package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config is centralized process configuration.
// Keep infra values here and pass typed config into builders.
type Config struct {
	ServiceName    string
	HTTPPort       string
	DatabaseDriver string
	DatabaseDSN    string

	EnablePollEvents bool
	EventBufferSize  int
}

func Load() (Config, error) {
	// A local .env is a convenience for development; absence is not an error.
	_ = godotenv.Load()

	service := os.Getenv("SERVICE_NAME")
	if service == "" {
		service = "agora"
	}

	port := os.Getenv("HTTP_PORT")
	if port == "" {
		port = "8080"
	}

	driver := strings.TrimSpace(strings.ToLower(os.Getenv("DATABASE_DRIVER")))
	if driver == "" {
		driver = "postgres"
	}

	return Config{
		ServiceName:    service,
		HTTPPort:       port,
		DatabaseDriver: driver,
		DatabaseDSN:    os.Getenv("DATABASE_DSN"),

		EnablePollEvents: envBool("ENABLE_POLL_EVENTS", true),
		EventBufferSize:  envInt("EVENT_BUFFER_SIZE", 128),
	}, nil
}

func envBool(name string, fallback bool) bool {
	raw := strings.TrimSpace(strings.ToLower(os.Getenv(name)))
	if raw == "" {
		return fallback
	}
	switch raw {
	case "1", "true", "t", "yes", "y", "on":
		return true
	case "0", "false", "f", "no", "n", "off":
		return false
	default:
		return fallback
	}
}

func envInt(name string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}
