// Package config loads and validates application configuration from YAML
// files with environment-variable overrides. It provides typed structs for
// every subsystem (Server, Postgres, Kafka, Redis, Ranking, Authority,
// Expansion, etc.).
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Postgres  PostgresConfig  `yaml:"postgres"`
	Kafka     KafkaConfig     `yaml:"kafka"`
	Redis     RedisConfig     `yaml:"redis"`
	Ranking   RankingConfig   `yaml:"ranking"`
	Authority AuthorityConfig `yaml:"authority"`
	Expansion ExpansionConfig `yaml:"expansion"`
	RPC       RPCConfig       `yaml:"rpc"`
	Logging   LoggingConfig   `yaml:"logging"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"readTimeout"`
	WriteTimeout    time.Duration `yaml:"writeTimeout"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
}

// PostgresConfig holds PostgreSQL connection parameters for the index
// source tables.
type PostgresConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	Database        string        `yaml:"database"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	SSLMode         string        `yaml:"sslMode"`
	MaxOpenConns    int           `yaml:"maxOpenConns"`
	MaxIdleConns    int           `yaml:"maxIdleConns"`
	ConnMaxLifetime time.Duration `yaml:"connMaxLifetime"`
}

// DSN returns a lib/pq-compatible data source name.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

// KafkaConfig holds Kafka broker and topic settings.
type KafkaConfig struct {
	Brokers       []string    `yaml:"brokers"`
	ConsumerGroup string      `yaml:"consumerGroup"`
	Topics        KafkaTopics `yaml:"topics"`
}

// KafkaTopics maps logical topic names to their Kafka topic strings.
type KafkaTopics struct {
	IndexUpdated string `yaml:"indexUpdated"`
	RankEvents   string `yaml:"rankEvents"`
}

// RedisConfig holds Redis connection and caching parameters.
type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	PoolSize int           `yaml:"poolSize"`
	CacheTTL time.Duration `yaml:"cacheTTL"`
}

// RankingConfig holds the BM25 tunables, the blend weights, and the
// scoring worker-pool size. ContentWeight and AuthorityWeight should sum
// to 1 for the combined score to stay a convex blend; the engine does not
// enforce this.
type RankingConfig struct {
	Variant         string  `yaml:"variant"`
	K1              float64 `yaml:"k1"`
	B               float64 `yaml:"b"`
	K1Plus          float64 `yaml:"k1Plus"`
	BPlus           float64 `yaml:"bPlus"`
	ContentWeight   float64 `yaml:"contentWeight"`
	AuthorityWeight float64 `yaml:"authorityWeight"`
	Workers         int     `yaml:"workers"`
	MaxResults      int     `yaml:"maxResults"`
}

// AuthorityConfig controls the power-iteration solver.
type AuthorityConfig struct {
	Damping        float64       `yaml:"damping"`
	MaxIterations  int           `yaml:"maxIterations"`
	Tolerance      float64       `yaml:"tolerance"`
	RefreshTimeout time.Duration `yaml:"refreshTimeout"`
}

// ExpansionConfig controls the query-expansion collaborator and its cache.
type ExpansionConfig struct {
	SynonymsFile string             `yaml:"synonymsFile"`
	CacheTTL     time.Duration      `yaml:"cacheTTL"`
	Boosts       map[string]float64 `yaml:"boosts"`
	ExactTerms   []string           `yaml:"exactTerms"`
}

// RPCConfig holds the internal JSON-over-TCP RPC listener settings.
type RPCConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
}

// LoggingConfig controls structured logging level and output format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsConfig controls the Prometheus metrics server.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
}

// Load reads a YAML config file (if provided) and applies
// environment-variable overrides. It returns a Config populated with
// sensible defaults for any missing values.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}
	applyEnvOverrides(cfg)
	return cfg, nil
}

// defaultConfig returns a Config with production-ready defaults for local
// development.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 15 * time.Second,
		},
		Postgres: PostgresConfig{
			Host:            "localhost",
			Port:            5432,
			Database:        "linkranker",
			User:            "linkranker",
			Password:        "localdev",
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 5 * time.Minute,
		},
		Kafka: KafkaConfig{
			Brokers:       []string{"localhost:9092"},
			ConsumerGroup: "linkranker-group",
			Topics: KafkaTopics{
				IndexUpdated: "index.updated",
				RankEvents:   "rank-events",
			},
		},
		Redis: RedisConfig{
			Addr:     "localhost:6379",
			Password: "",
			DB:       0,
			PoolSize: 10,
			CacheTTL: 60 * time.Second,
		},
		Ranking: RankingConfig{
			Variant:         "plus",
			K1:              1.5,
			B:               0.75,
			K1Plus:          1.8,
			BPlus:           0.5,
			ContentWeight:   0.7,
			AuthorityWeight: 0.3,
			Workers:         0, // 0 means runtime.GOMAXPROCS
			MaxResults:      100,
		},
		Authority: AuthorityConfig{
			Damping:        0.85,
			MaxIterations:  100,
			Tolerance:      1e-9,
			RefreshTimeout: 30 * time.Second,
		},
		Expansion: ExpansionConfig{
			SynonymsFile: "",
			CacheTTL:     5 * time.Minute,
		},
		RPC: RPCConfig{
			Enabled: false,
			Port:    9000,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Port:    9090,
		},
	}
}

// applyEnvOverrides reads LR_* environment variables and overrides the
// corresponding config fields.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("LR_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("LR_POSTGRES_HOST"); v != "" {
		cfg.Postgres.Host = v
	}
	if v := os.Getenv("LR_POSTGRES_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Postgres.Port = port
		}
	}
	if v := os.Getenv("LR_POSTGRES_DATABASE"); v != "" {
		cfg.Postgres.Database = v
	}
	if v := os.Getenv("LR_POSTGRES_USER"); v != "" {
		cfg.Postgres.User = v
	}
	if v := os.Getenv("LR_POSTGRES_PASSWORD"); v != "" {
		cfg.Postgres.Password = v
	}
	if v := os.Getenv("LR_POSTGRES_SSLMODE"); v != "" {
		cfg.Postgres.SSLMode = v
	}
	if v := os.Getenv("LR_KAFKA_BROKERS"); v != "" {
		cfg.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("LR_REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("LR_REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("LR_RANKING_CONTENT_WEIGHT"); v != "" {
		if w, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Ranking.ContentWeight = w
		}
	}
	if v := os.Getenv("LR_RANKING_AUTHORITY_WEIGHT"); v != "" {
		if w, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Ranking.AuthorityWeight = w
		}
	}
	if v := os.Getenv("LR_AUTHORITY_DAMPING"); v != "" {
		if d, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Authority.Damping = d
		}
	}
	if v := os.Getenv("LR_EXPANSION_SYNONYMS_FILE"); v != "" {
		cfg.Expansion.SynonymsFile = v
	}
	if v := os.Getenv("LR_LOGGING_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("LR_LOGGING_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
}
