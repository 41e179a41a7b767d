// Package config loads and validates the engine configuration from
// YAML or JSON, with environment overrides for secrets and paths.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the complete engine configuration.
type Config struct {
	Portfolio PortfolioConfig `json:"portfolio" yaml:"portfolio"`
	Proposals ProposalConfig  `json:"proposals" yaml:"proposals"`
	Market    MarketConfig    `json:"market" yaml:"market"`
	Scan      ScanConfig      `json:"scan" yaml:"scan"`
	Server    ServerConfig    `json:"server" yaml:"server"`
	Chat      ChatConfig      `json:"chat" yaml:"chat"`
	Journal   JournalConfig   `json:"journal" yaml:"journal"`
}

type PortfolioConfig struct {
	InitialBalance float64 `json:"initial_balance" yaml:"initial_balance"`
}

type ProposalConfig struct {
	TTL string `json:"ttl" yaml:"ttl"` // e.g. "30m"
}

// ParseTTL converts the TTL string to a duration.
func (p ProposalConfig) ParseTTL() (time.Duration, error) {
	if p.TTL == "" {
		return 0, nil
	}
	return time.ParseDuration(p.TTL)
}

type MarketConfig struct {
	BaseURL   string   `json:"base_url,omitempty" yaml:"base_url,omitempty"`
	StreamURL string   `json:"stream_url,omitempty" yaml:"stream_url,omitempty"`
	Symbols   []string `json:"symbols" yaml:"symbols"`
}

type ScanConfig struct {
	TickSpec   string   `json:"tick_spec" yaml:"tick_spec"`
	ScanSpec   string   `json:"scan_spec" yaml:"scan_spec"`
	Strategies []string `json:"strategies" yaml:"strategies"`
}

type ServerConfig struct {
	Addr string `json:"addr" yaml:"addr"`
}

type ChatConfig struct {
	Model     string `json:"model,omitempty" yaml:"model,omitempty"`
	MaxTokens int64  `json:"max_tokens,omitempty" yaml:"max_tokens,omitempty"`
}

type JournalConfig struct {
	DBPath string `json:"db_path" yaml:"db_path"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Portfolio: PortfolioConfig{InitialBalance: 10_000},
		Proposals: ProposalConfig{TTL: "30m"},
		Market: MarketConfig{
			Symbols: []string{"BTCUSDT", "ETHUSDT", "SOLUSDT"},
		},
		Scan: ScanConfig{
			TickSpec:   "*/15 * * * * *",
			ScanSpec:   "0 */15 * * * *",
			Strategies: []string{"rsi-dip", "swing-trend"},
		},
		Server:  ServerConfig{Addr: ":8080"},
		Chat:    ChatConfig{MaxTokens: 4096},
		Journal: JournalConfig{DBPath: "monty.db"},
	}
}

// LoadFromFile loads configuration from a YAML or JSON file, applies
// environment overrides, and validates the result.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()

	// Try YAML first, fall back to JSON.
	if err := yaml.Unmarshal(data, cfg); err != nil {
		if jerr := json.Unmarshal(data, cfg); jerr != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Load returns the file config when path is non-empty, otherwise the
// defaults with environment overrides.
func Load(path string) (*Config, error) {
	if path != "" {
		return LoadFromFile(path)
	}
	cfg := Default()
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("MONTY_DB_PATH"); v != "" {
		c.Journal.DBPath = v
	}
	if v := os.Getenv("MONTY_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("MONTY_SYMBOLS"); v != "" {
		c.Market.Symbols = strings.Split(v, ",")
	}
	if v := os.Getenv("MONTY_INITIAL_BALANCE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.Portfolio.InitialBalance = f
		}
	}
	if v := os.Getenv("MONTY_CHAT_MODEL"); v != "" {
		c.Chat.Model = v
	}
}

// SaveToFile writes the configuration, YAML for .yaml/.yml paths and
// JSON otherwise.
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error
	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Validate checks the configuration is usable.
func (c *Config) Validate() error {
	if c.Portfolio.InitialBalance <= 0 {
		return fmt.Errorf("portfolio.initial_balance must be positive")
	}
	if _, err := c.Proposals.ParseTTL(); err != nil {
		return fmt.Errorf("proposals.ttl: %w", err)
	}
	if len(c.Market.Symbols) == 0 {
		return fmt.Errorf("market.symbols is required")
	}
	for _, s := range c.Market.Symbols {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("market.symbols contains an empty symbol")
		}
	}
	if c.Scan.TickSpec == "" {
		return fmt.Errorf("scan.tick_spec is required")
	}
	if c.Journal.DBPath == "" {
		return fmt.Errorf("journal.db_path is required")
	}
	return nil
}
