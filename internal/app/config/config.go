// Package config loads the YAML configuration for a wal-tailer process:
// one or more WAL-group reader loops sharing a process-wide quota and a
// metrics listener, following the Load/applyDefaults/validate shape the
// rest of the pack uses for its own config loaders.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level document. Groups is required and non-empty;
// everything else has a documented default.
type Config struct {
	Groups  []GroupConfig `yaml:"groups"`
	Batch   BatchConfig   `yaml:"batch"`
	Quota   QuotaConfig   `yaml:"quota"`
	Retry   RetryConfig   `yaml:"retry"`
	EOF     EOFConfig     `yaml:"eof"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// GroupConfig names one WAL group and the directory its files live in.
// Recovered marks a finite queue inherited from a failed peer (spec.md
// §4.6 and the GLOSSARY entry for "recovered queue").
type GroupConfig struct {
	Name      string   `yaml:"name"`
	Dir       string   `yaml:"dir"`
	Recovered bool     `yaml:"recovered"`
	Tables    []string `yaml:"tables"`
}

// BatchConfig holds the per-batch caps from spec.md §6.
type BatchConfig struct {
	SizeCapacityBytes int64 `yaml:"size_capacity_bytes"`
	CountCapacity     int   `yaml:"count_capacity"`
	QueueCapacity     int   `yaml:"queue_capacity"`
}

// QuotaConfig holds the process-wide in-flight byte ceiling.
type QuotaConfig struct {
	Bytes int64 `yaml:"bytes"`
}

// RetryConfig holds the backoff parameters shared by every ReaderLoop.
type RetryConfig struct {
	SleepMs       int `yaml:"sleep_ms"`
	MaxMultiplier int `yaml:"max_multiplier"`
}

// EOFConfig holds the unclean-close recovery switch.
type EOFConfig struct {
	Autorecovery bool `yaml:"autorecovery"`
}

// MetricsConfig holds the Prometheus listener address.
type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

// RetrySleep returns the configured base backoff as a time.Duration.
func (r RetryConfig) RetrySleep() time.Duration {
	return time.Duration(r.SleepMs) * time.Millisecond
}

// Load reads and validates the YAML document at path.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Batch.SizeCapacityBytes == 0 {
		c.Batch.SizeCapacityBytes = 64 << 20
	}
	if c.Batch.CountCapacity == 0 {
		c.Batch.CountCapacity = 25_000
	}
	if c.Batch.QueueCapacity == 0 {
		c.Batch.QueueCapacity = 1
	}
	if c.Quota.Bytes == 0 {
		c.Quota.Bytes = 256 << 20
	}
	if c.Retry.SleepMs == 0 {
		c.Retry.SleepMs = 1_000
	}
	if c.Retry.MaxMultiplier == 0 {
		c.Retry.MaxMultiplier = 300
	}
	if c.Metrics.Addr == "" {
		c.Metrics.Addr = ":9100"
	}
}

func (c *Config) validate() error {
	if len(c.Groups) == 0 {
		return fmt.Errorf("at least one group is required")
	}
	seen := make(map[string]struct{}, len(c.Groups))
	for i, g := range c.Groups {
		if g.Name == "" {
			return fmt.Errorf("groups[%d].name is required", i)
		}
		if _, dup := seen[g.Name]; dup {
			return fmt.Errorf("groups[%d]: duplicate group name %q", i, g.Name)
		}
		seen[g.Name] = struct{}{}
		if g.Dir == "" {
			return fmt.Errorf("groups[%d] (%s): dir is required", i, g.Name)
		}
	}
	if c.Batch.SizeCapacityBytes <= 0 {
		return fmt.Errorf("batch.size_capacity_bytes must be positive")
	}
	if c.Batch.CountCapacity <= 0 {
		return fmt.Errorf("batch.count_capacity must be positive")
	}
	if c.Quota.Bytes <= 0 {
		return fmt.Errorf("quota.bytes must be positive")
	}
	if c.Metrics.Addr == "" {
		return fmt.Errorf("metrics.addr is required")
	}
	return nil
}
