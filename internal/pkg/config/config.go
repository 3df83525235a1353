package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port        string `env:"PORT,         default=8080"`
	GatewayPort string `env:"GATEWAY_PORT, default=8081"`
	Env         string `env:"ENV,          default=development"`
	LogLevel    string `env:"LOG_LEVEL,    default=info"`
	CORSOrigin  string `env:"CORS_ORIGIN,  default=http://localhost:3000"`

	Mongo      MongoConfig
	Redis      RedisConfig
	Clerk      ClerkConfig
	Classifier ClassifierConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=campuscare"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

// ClerkConfig holds the external identity provider credentials.
type ClerkConfig struct {
	SigningKey string        `env:"CLERK_JWT_KEY"`
	SecretKey  string        `env:"CLERK_SECRET_KEY"`
	APIBase    string        `env:"CLERK_API_BASE, default=https://api.clerk.com"`
	Timeout    time.Duration `env:"CLERK_TIMEOUT,  default=5s"`
}

// ClassifierConfig holds the AI classifier settings. The timeout bounds the
// synchronous classification call during ticket creation.
type ClassifierConfig struct {
	APIKey  string        `env:"GEMINI_API_KEY"`
	Model   string        `env:"GEMINI_MODEL,    default=gemini-1.5-flash"`
	BaseURL string        `env:"GEMINI_API_BASE, default=https://generativelanguage.googleapis.com"`
	Timeout time.Duration `env:"GEMINI_TIMEOUT,  default=8s"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return &cfg
}
