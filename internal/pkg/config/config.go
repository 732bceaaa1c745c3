package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Revocation backends.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

type Config struct {
	Port       string `env:"PORT,        default=3000"`
	Env        string `env:"ENV,         default=development"`
	JWTSecret  string `env:"JWT_SECRET,  required"`
	LogLevel   string `env:"LOG_LEVEL,   default=info"`
	BcryptCost int    `env:"BCRYPT_COST, default=10"`

	Mongo      MongoConfig
	Redis      RedisConfig
	Revocation RevocationConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=user_management"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,       default=0"`
}

// RevocationConfig selects where logged-out tokens are remembered. With the
// memory backend, SweepInterval > 0 periodically drops entries whose token
// has expired anyway; zero keeps every entry for the life of the process.
type RevocationConfig struct {
	Backend       string        `env:"REVOCATION_BACKEND,        default=memory"`
	SweepInterval time.Duration `env:"REVOCATION_SWEEP_INTERVAL, default=0s"`
}

// IsProduction reports whether ENV is "production".
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	cfg, err := LoadFrom(context.Background(), envconfig.OsLookuper())
	if err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return cfg
}

// LoadFrom reads configuration through l and validates it.
func LoadFrom(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Revocation.Backend {
	case BackendMemory, BackendRedis:
	default:
		return fmt.Errorf("REVOCATION_BACKEND must be %q or %q, got %q", BackendMemory, BackendRedis, c.Revocation.Backend)
	}
	if c.Revocation.SweepInterval < 0 {
		return fmt.Errorf("REVOCATION_SWEEP_INTERVAL must not be negative")
	}
	return nil
}
