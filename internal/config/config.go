package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// Config captures everything truthchaind needs at startup.
type Config struct {
	Server      ServerConfig      `json:"server"`
	Logging     LoggingConfig     `json:"logging"`
	Analysis    AnalysisConfig    `json:"analysis"`
	Feed        FeedConfig        `json:"feed"`
	Attestation AttestationConfig `json:"attestation"`
	Ledger      LedgerConfig      `json:"ledger"`
	Identity    IdentityConfig    `json:"identity"`
}

// ServerConfig controls the API listener.
type ServerConfig struct {
	Address        string `json:"address"`
	MetricsAddress string `json:"metrics_address"`
}

// LoggingConfig mirrors pkg/logger.Config.
type LoggingConfig struct {
	Level       string   `json:"level"`
	Format      string   `json:"format"`
	OutputPaths []string `json:"output_paths"`
	AuditPath   string   `json:"audit_path"`
}

// AnalysisConfig tunes the verdict pipeline.
type AnalysisConfig struct {
	DelayMS        int    `json:"delay_ms"`
	VocabularyPath string `json:"vocabulary_path"`
}

// Delay returns the simulated scoring latency.
func (c AnalysisConfig) Delay() time.Duration {
	return time.Duration(c.DelayMS) * time.Millisecond
}

// FeedConfig selects the activity feed backend.
type FeedConfig struct {
	Driver    string          `json:"driver"`
	Capacity  int             `json:"capacity"`
	Seed      *bool           `json:"seed,omitempty"`
	Redis     RedisConfig     `json:"redis"`
	Publisher PublisherConfig `json:"publisher"`
}

// SeedEnabled reports whether the demo seed entries should be loaded.
// Defaults to true when unset.
func (c FeedConfig) SeedEnabled() bool {
	return c.Seed == nil || *c.Seed
}

// RedisConfig describes the redis-backed feed store.
type RedisConfig struct {
	Address  string `json:"address"`
	Password string `json:"password"`
	DB       int    `json:"db"`
	Key      string `json:"key"`
}

// PublisherConfig selects an optional broker that broadcasts confirmed feed
// entries to external consumers.
type PublisherConfig struct {
	Driver   string         `json:"driver"`
	RabbitMQ RabbitMQConfig `json:"rabbitmq"`
}

// RabbitMQConfig describes the feed broadcast exchange.
type RabbitMQConfig struct {
	URL        string `json:"url"`
	Exchange   string `json:"exchange"`
	Durable    bool   `json:"durable"`
	AutoDelete bool   `json:"auto_delete"`
}

// AttestationConfig controls the submission workflow and record store.
type AttestationConfig struct {
	Store                 StoreConfig `json:"store"`
	ConfirmTimeoutSeconds int         `json:"confirm_timeout_seconds"`
}

// ConfirmTimeout returns the inclusion wait deadline; zero means wait
// indefinitely.
func (c AttestationConfig) ConfirmTimeout() time.Duration {
	if c.ConfirmTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(c.ConfirmTimeoutSeconds) * time.Second
}

// StoreConfig selects the attestation record backend.
type StoreConfig struct {
	Driver string `json:"driver"`
	DSN    string `json:"dsn"`
}

// LedgerConfig points at the chain definition file, or a single RPC endpoint
// when no file is used.
type LedgerConfig struct {
	ChainConfig     string `json:"chain_config"`
	DefaultChain    string `json:"default_chain"`
	RPCURL          string `json:"rpc_url"`
	ContractAddress string `json:"contract_address"`
}

// IdentityConfig describes the local signer.
type IdentityConfig struct {
	PrivateKeyEnv string `json:"private_key_env"`
	KeyFile       string `json:"key_file"`
	ChainID       int64  `json:"chain_id"`
}

// Load parses the JSON config file at path.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config file: %w", err)
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(content, &cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	cfg.applyDefaults(filepath.Dir(path))
	return &cfg, nil
}

// applyDefaults fills in sensible values for fields the user left unset.
func (c *Config) applyDefaults(baseDir string) {
	if c.Server.Address == "" {
		c.Server.Address = ":8080"
	}

	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}

	if c.Analysis.DelayMS == 0 {
		c.Analysis.DelayMS = 1500
	}
	if c.Analysis.VocabularyPath != "" && !filepath.IsAbs(c.Analysis.VocabularyPath) {
		c.Analysis.VocabularyPath = filepath.Join(baseDir, c.Analysis.VocabularyPath)
	}

	if c.Feed.Driver == "" {
		c.Feed.Driver = "memory"
	}
	if c.Feed.Capacity <= 0 {
		c.Feed.Capacity = 50
	}
	if c.Feed.Redis.Key == "" {
		c.Feed.Redis.Key = "truthchain:feed"
	}
	if c.Feed.Publisher.Driver == "" {
		c.Feed.Publisher.Driver = "none"
	}
	if c.Feed.Publisher.RabbitMQ.Exchange == "" {
		c.Feed.Publisher.RabbitMQ.Exchange = "truthchain.feed"
	}

	if c.Attestation.Store.Driver == "" {
		c.Attestation.Store.Driver = "memory"
	}

	if c.Ledger.ChainConfig != "" && !filepath.IsAbs(c.Ledger.ChainConfig) {
		c.Ledger.ChainConfig = filepath.Join(baseDir, c.Ledger.ChainConfig)
	}

	if c.Identity.PrivateKeyEnv == "" && c.Identity.KeyFile == "" {
		c.Identity.PrivateKeyEnv = "TRUTHCHAIN_PRIVATE_KEY"
	}
	if c.Identity.KeyFile != "" && !filepath.IsAbs(c.Identity.KeyFile) {
		c.Identity.KeyFile = filepath.Join(baseDir, c.Identity.KeyFile)
	}
	if c.Identity.ChainID <= 0 {
		// Sepolia testnet.
		c.Identity.ChainID = 11155111
	}
}
