package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"gopkg.in/yaml.v3"
)

// ProviderConfig is per-provider caller configuration: the enable switch,
// the requested variant, and rolling rate limits. Zero limits mean the
// provider is unlimited on that window.
type ProviderConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Variant   string `yaml:"variant"`
	PerMinute int    `yaml:"per_minute"`
	PerDay    int    `yaml:"per_day"`
}

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int           `yaml:"port" default:"8080"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"30s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
	} `yaml:"server"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path" default:"/metrics"`
	} `yaml:"metrics"`
	Logging struct {
		Level  string `yaml:"level" default:"info"`
		Format string `yaml:"format" default:"console"`
		Output string `yaml:"output" default:"stdout"`
	} `yaml:"logging"`
	Redis struct {
		Enabled  bool   `yaml:"enabled"`
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	Kafka struct {
		Enabled      bool          `yaml:"enabled"`
		Brokers      []string      `yaml:"brokers"`
		Topic        string        `yaml:"topic"`
		RequiredAcks int           `yaml:"required_acks" default:"-1"`
		Compression  string        `yaml:"compression" default:"gzip"`
		MaxAttempts  int           `yaml:"max_attempts" default:"3"`
		Linger       time.Duration `yaml:"linger" default:"1s"`
		WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
		ReadTimeout  time.Duration `yaml:"read_timeout" default:"10s"`
		Async        bool          `yaml:"async"`
	} `yaml:"kafka"`
	Queue struct {
		Enabled    bool          `yaml:"enabled"`
		Workers    int           `yaml:"workers" default:"2"`
		RetryMax   int           `yaml:"retry_max" default:"3"`
		RetryDelay time.Duration `yaml:"retry_delay" default:"10s"`
	} `yaml:"queue"`
	Analysis struct {
		ServiceURL     string        `yaml:"service_url"`
		APIKey         string        `yaml:"api_key"`
		CallTimeout    time.Duration `yaml:"call_timeout" default:"45s"`
		ContextTimeout time.Duration `yaml:"context_timeout" default:"15s"`
		ContextEnabled bool          `yaml:"context_enabled" default:"true"`
		Quorum         struct {
			MinSuccess       int  `yaml:"min_success" default:"2"`
			RequireMandatory bool `yaml:"require_mandatory"`
		} `yaml:"quorum"`
		Providers map[string]ProviderConfig `yaml:"providers"`
	} `yaml:"analysis"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("ANALYSIS_SERVICE_URL"); v != "" {
		c.Analysis.ServiceURL = v
	}
	if v := os.Getenv("ANALYSIS_API_KEY"); v != "" {
		c.Analysis.APIKey = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("KAFKA_TOPIC"); v != "" {
		c.Kafka.Topic = v
	}

	return c, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.Analysis.ServiceURL == "" {
		return fmt.Errorf("analysis.service_url is required")
	}
	if c.Analysis.Quorum.MinSuccess < 1 {
		return fmt.Errorf("analysis.quorum.min_success must be at least 1, got %d", c.Analysis.Quorum.MinSuccess)
	}
	if c.Redis.Enabled && c.Redis.Addr == "" {
		return fmt.Errorf("redis.addr is required when redis is enabled")
	}
	if c.Queue.Enabled && !c.Redis.Enabled {
		return fmt.Errorf("queue requires redis to be enabled")
	}
	if c.Kafka.Enabled {
		if len(c.Kafka.Brokers) == 0 {
			return fmt.Errorf("kafka.brokers cannot be empty when kafka is enabled")
		}
		if c.Kafka.Topic == "" {
			return fmt.Errorf("kafka.topic is required when kafka is enabled")
		}
	}
	return nil
}
