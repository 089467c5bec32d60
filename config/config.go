// Package config provides configuration loading and management for regkg.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete regkg runtime configuration.
type Config struct {
	Artifacts  ArtifactsConfig  `yaml:"artifacts"`
	Gateway    GatewayConfig    `yaml:"gateway"`
	Expansion  ExpansionConfig  `yaml:"expansion"`
	Provenance ProvenanceConfig `yaml:"provenance"`
	NATS       NATSConfig       `yaml:"nats"`
}

// ArtifactsConfig configures where run artifacts are written.
type ArtifactsConfig struct {
	// Dir is the output directory for reconciliation artifacts.
	Dir string `yaml:"dir"`
}

// GatewayConfig configures the graph gateway client.
type GatewayConfig struct {
	// URL is the HTTP gateway base URL.
	URL string `yaml:"url"`
	// Subject is the NATS request subject (used instead of URL when NATS
	// transport is selected).
	Subject string `yaml:"subject"`
	// Timeout is the per-call gateway timeout.
	Timeout time.Duration `yaml:"timeout"`
	// RetryBudget is the number of retries after the first attempt.
	// 0 means exactly one attempt.
	RetryBudget int `yaml:"retry_budget"`
	// RetryBackoff is the fixed delay between attempts.
	RetryBackoff time.Duration `yaml:"retry_backoff"`
}

// ExpansionConfig bounds multi-hop graph expansion.
type ExpansionConfig struct {
	// MaxHops caps traversal depth.
	MaxHops int `yaml:"max_hops"`
	// MaxPathsPerSection caps paths kept per starting section.
	MaxPathsPerSection int `yaml:"max_paths_per_section"`
	// Workers bounds concurrent per-section expansions.
	Workers int `yaml:"workers"`
}

// ProvenanceConfig configures the provenance ledger.
type ProvenanceConfig struct {
	// ManifestPath is the durable manifest file location.
	ManifestPath string `yaml:"manifest_path"`
}

// NATSConfig configures the NATS connection for graph publishing.
type NATSConfig struct {
	// URL is the NATS server URL (empty disables publishing).
	URL string `yaml:"url"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Artifacts: ArtifactsConfig{
			Dir: "artifacts",
		},
		Gateway: GatewayConfig{
			URL:          "http://localhost:8720",
			Subject:      "kg.query.select",
			Timeout:      10 * time.Second,
			RetryBudget:  2,
			RetryBackoff: 500 * time.Millisecond,
		},
		Expansion: ExpansionConfig{
			MaxHops:            2,
			MaxPathsPerSection: 5,
			Workers:            4,
		},
		Provenance: ProvenanceConfig{
			ManifestPath: "provenance.json",
		},
		NATS: NATSConfig{
			URL: "",
		},
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.Artifacts.Dir == "" {
		return fmt.Errorf("artifacts.dir is required")
	}
	if c.Gateway.URL == "" && c.Gateway.Subject == "" {
		return fmt.Errorf("gateway.url or gateway.subject is required")
	}
	if c.Gateway.Timeout <= 0 {
		return fmt.Errorf("gateway.timeout must be positive")
	}
	if c.Gateway.RetryBudget < 0 {
		return fmt.Errorf("gateway.retry_budget must not be negative")
	}
	if c.Expansion.MaxHops < 0 {
		return fmt.Errorf("expansion.max_hops must not be negative")
	}
	if c.Expansion.MaxPathsPerSection < 0 {
		return fmt.Errorf("expansion.max_paths_per_section must not be negative")
	}
	if c.Expansion.Workers < 1 {
		return fmt.Errorf("expansion.workers must be at least 1")
	}
	if c.Provenance.ManifestPath == "" {
		return fmt.Errorf("provenance.manifest_path is required")
	}
	return nil
}

// Merge overlays non-zero values from other onto c.
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}
	if other.Artifacts.Dir != "" {
		c.Artifacts.Dir = other.Artifacts.Dir
	}
	if other.Gateway.URL != "" {
		c.Gateway.URL = other.Gateway.URL
	}
	if other.Gateway.Subject != "" {
		c.Gateway.Subject = other.Gateway.Subject
	}
	if other.Gateway.Timeout != 0 {
		c.Gateway.Timeout = other.Gateway.Timeout
	}
	if other.Gateway.RetryBudget != 0 {
		c.Gateway.RetryBudget = other.Gateway.RetryBudget
	}
	if other.Gateway.RetryBackoff != 0 {
		c.Gateway.RetryBackoff = other.Gateway.RetryBackoff
	}
	if other.Expansion.MaxHops != 0 {
		c.Expansion.MaxHops = other.Expansion.MaxHops
	}
	if other.Expansion.MaxPathsPerSection != 0 {
		c.Expansion.MaxPathsPerSection = other.Expansion.MaxPathsPerSection
	}
	if other.Expansion.Workers != 0 {
		c.Expansion.Workers = other.Expansion.Workers
	}
	if other.Provenance.ManifestPath != "" {
		c.Provenance.ManifestPath = other.Provenance.ManifestPath
	}
	if other.NATS.URL != "" {
		c.NATS.URL = other.NATS.URL
	}
}

// LoadFromFile loads a Config from a YAML file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return &config, nil
}
