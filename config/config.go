package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type ServerEnv struct {
	Debug      bool   `envconfig:"DEBUG" default:"false"`
	ListenAddr string `envconfig:"LISTEN_ADDR" default:":8080"`
}

type StorageEnv struct {
	// RedisURL selects the Redis backend; when empty, state is kept in
	// memory only and lost on restart.
	RedisURL  string `envconfig:"REDIS_URL"`
	KeyPrefix string `envconfig:"STORAGE_KEY_PREFIX"`
}

type AuthEnv struct {
	TestMode   bool   `envconfig:"AUTH_TEST_MODE" default:"false"`
	TestSecret string `envconfig:"AUTH_TEST_SECRET"`
	Audience   string `envconfig:"JWT_AUDIENCE"`
	Domain     string `envconfig:"JWT_DOMAIN"`
}

type Env struct {
	ServerEnv
	StorageEnv
	AuthEnv
	DedupeTTL time.Duration `envconfig:"DEDUPE_TTL" default:"24h"`
}

func LoadEnv() (*Env, error) {
	var env Env
	if err := envconfig.Process("", &env); err != nil {
		return nil, fmt.Errorf("failed to load env: %w", err)
	}
	if env.DedupeTTL <= 0 {
		return nil, fmt.Errorf("DEDUPE_TTL must be positive")
	}
	if env.AuthEnv.TestMode && env.AuthEnv.TestSecret == "" {
		return nil, fmt.Errorf("AUTH_TEST_SECRET is required in test mode")
	}
	if !env.AuthEnv.TestMode && (env.AuthEnv.Audience == "" || env.AuthEnv.Domain == "") {
		return nil, fmt.Errorf("JWT_AUDIENCE and JWT_DOMAIN are required outside test mode")
	}
	return &env, nil
}
