// Package config loads manifoldd's persistent engine configuration (a
// YAML file analogous to the reference corpus's per-service config
// structs) and the secrets its optional Fleet components need, kept out
// of the YAML file and out of version control the way lake/api/main.go
// keeps Postgres/ClickHouse credentials in the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EngineConfig is manifoldd's startup configuration: worker pool sizing,
// storage location, default policy values, and the optional Fleet
// component blocks (absent block = feature off).
type EngineConfig struct {
	WorkerPoolSize int             `yaml:"worker_pool_size"`
	DBPath         string          `yaml:"db_path"`
	SockFile       string          `yaml:"sock_file"`
	SafeMode       bool            `yaml:"safe_mode"`
	ManagerEnabled map[string]bool `yaml:"manager_enabled"`
	Fleet          FleetConfig     `yaml:"fleet"`
}

// FleetConfig groups the three optional fleet-operations components.
// Each is nil (feature off) unless the YAML file declares it.
type FleetConfig struct {
	Exporter *ExporterConfig `yaml:"exporter"`
	Notifier *NotifierConfig `yaml:"notifier"`
	Archiver *ArchiverConfig `yaml:"archiver"`
}

// ExporterConfig enables the one-way Postgres mirror of terminal tasks
// and outdated-package snapshots (SPEC_FULL.md §6.4). The DSN itself is a
// secret, read from the environment, not this file.
type ExporterConfig struct {
	HostID string `yaml:"host_id"`
}

// NotifierConfig enables Slack alerts on guarded-manager task failures
// and upgrade_all safe-mode exclusion summaries. The bot token is a
// secret, read from the environment.
type NotifierConfig struct {
	Channel string `yaml:"channel"`
}

// ArchiverConfig enables periodic S3 archival of old terminal task rows.
type ArchiverConfig struct {
	Bucket         string `yaml:"bucket"`
	Region         string `yaml:"region"`
	Prefix         string `yaml:"prefix"`
	RetentionHours int    `yaml:"retention_hours"`
}

// DefaultConfig returns the configuration manifoldd runs with when no
// file is present: a single local sqlite file, safe mode on, and every
// Fleet component off.
func DefaultConfig() *EngineConfig {
	return &EngineConfig{
		WorkerPoolSize: 4,
		DBPath:         "manifold.db",
		SockFile:       "/tmp/manifold.sock",
		SafeMode:       true,
		ManagerEnabled: map[string]bool{},
	}
}

// Load reads path as YAML into a DefaultConfig-seeded EngineConfig. A
// missing file is not an error — manifoldd starts with defaults, the way
// codenerd's config.Load treats os.IsNotExist as "use defaults" rather
// than a fatal condition.
func Load(path string) (*EngineConfig, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg back to path as YAML; only the tests call it.
func (c *EngineConfig) Save(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// Secrets holds the credentials the Fleet components need, sourced from
// the environment (optionally loaded from a .env file first) rather than
// the YAML config, mirroring lake/api/main.go's godotenv.Load() +
// os.Getenv split between non-secret config and secrets.
type Secrets struct {
	PostgresDSN   string // MANIFOLD_POSTGRES_DSN, Fleet Exporter
	SlackBotToken string // MANIFOLD_SLACK_BOT_TOKEN, Fleet Notifier
}

// LoadSecrets loads envFile if present (a missing .env file is not an
// error, same as lake/api/main.go's "_ = godotenv.Load()") and reads the
// Fleet secrets out of the process environment. AWS credentials for the
// History Archiver are intentionally not read here: aws-sdk-go-v2's
// default credential chain already resolves them from the environment,
// shared config files, or an attached role.
func LoadSecrets(envFile string) Secrets {
	if envFile != "" {
		_ = godotenv.Load(envFile)
	} else {
		_ = godotenv.Load()
	}
	return Secrets{
		PostgresDSN:   os.Getenv("MANIFOLD_POSTGRES_DSN"),
		SlackBotToken: os.Getenv("MANIFOLD_SLACK_BOT_TOKEN"),
	}
}
