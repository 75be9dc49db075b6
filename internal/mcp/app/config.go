package app

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Resource            string        // Public base URL advertised in protected resource metadata
	AuthServerURL       string        // Base URL of the authorization server (default: http://localhost:9000)
	JiraURL             string        // Base URL of the JIRA instance
	JiraUsername        string        // JIRA account email for basic auth
	JiraAPIToken        string        // JIRA API token for basic auth
	TokenValidation     string        // Token validation mode (introspect, none) (default: introspect)
	Env                 string        // Environment (dev, staging, prod) (default: dev)
	LogLevel            string        // Log level (debug, info, warn, error) (default: info)
	LogFormat           string        // Log format (json, text) (default: json)
	Port                int           // HTTP server port (default: 9001)
	ShutdownGracePeriod time.Duration // Graceful shutdown timeout (default: 10s)
}

func LoadConfig() Config {
	cfg := Config{
		Resource:            os.Getenv("MCP_RESOURCE"),
		AuthServerURL:       getEnvOrDefault("MCP_AUTH_SERVER_URL", "http://localhost:9000"),
		JiraURL:             os.Getenv("JIRA_URL"),
		JiraUsername:        os.Getenv("JIRA_USERNAME"),
		JiraAPIToken:        os.Getenv("JIRA_API_TOKEN"),
		TokenValidation:     getEnvOrDefault("MCP_TOKEN_VALIDATION", "introspect"),
		Env:                 getEnvOrDefault("ENV", "dev"),
		LogLevel:            getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:           getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                getEnvIntOrDefault("PORT", 9001),
		ShutdownGracePeriod: getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
	}

	if cfg.Resource == "" {
		cfg.Resource = "http://localhost:" + strconv.Itoa(cfg.Port)
	}

	return cfg
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Bare integers are treated as seconds
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second
	}

	return defaultValue
}
