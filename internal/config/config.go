package config // package config loads application configuration from environment variables

import (
	"log"
	"os"
)

// Config holds all runtime configuration values. Each field corresponds to
// an environment variable. The gateway and waiter endpoints point at the
// remote reservation/order service and its passport broker; the project id
// scopes both the passport requests and the task-drainer leader locks.
type Config struct {
	Env              string // application environment (e.g. "dev", "prod")
	Port             string // HTTP port to listen on
	JWTSecret        string // secret used to verify POS access tokens
	ResourceServerID string // identifier prefixed onto permitted scopes
	ProjectID        string // project scope for passports and leader locks
	GatewayEndpoint  string // remote reservation/order service endpoint
	WaiterEndpoint   string // passport (scope broker) endpoint
	JobAccessToken   string // machine credential used by the task runner
	DBUser           string // database username (task runner only)
	DBPass           string // database password (optional)
	DBHost           string // database host address
	DBPort           string // database port number
	DBName           string // database name
}

// Load reads configuration values from environment variables. Required
// variables are enforced by must(); missing values cause the program to
// exit with a fatal log message.
func Load() Config {
	return Config{
		Env:              must("APP_ENV"),
		Port:             must("APP_PORT"),
		JWTSecret:        must("JWT_SECRET"),
		ResourceServerID: must("RESOURCE_SERVER_IDENTIFIER"),
		ProjectID:        must("PROJECT_ID"),
		GatewayEndpoint:  must("GATEWAY_ENDPOINT"),
		WaiterEndpoint:   must("WAITER_ENDPOINT"),
		JobAccessToken:   os.Getenv("JOB_ACCESS_TOKEN"),
		DBUser:           os.Getenv("DB_USER"),
		DBPass:           os.Getenv("DB_PASS"),
		DBHost:           os.Getenv("DB_HOST"),
		DBPort:           os.Getenv("DB_PORT"),
		DBName:           os.Getenv("DB_NAME"),
	}
}

// must retrieves the value of a required environment variable. If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}
