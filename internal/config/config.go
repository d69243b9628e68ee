// Package config loads the wallet tool configuration from defaults, an
// optional TOML file, and XRPTOOL_-prefixed environment variables, in
// that priority order.
package config

import (
	"fmt"
	"net/url"
	"time"
)

// Config is the complete xrptool configuration.
type Config struct {
	Node     NodeConfig     `toml:"node" mapstructure:"node"`
	Explorer ExplorerConfig `toml:"explorer" mapstructure:"explorer"`
	Market   MarketConfig   `toml:"market" mapstructure:"market"`
	History  HistoryConfig  `toml:"history" mapstructure:"history"`
	Submit   SubmitConfig   `toml:"submit" mapstructure:"submit"`
}

// NodeConfig describes the ledger node endpoint.
type NodeConfig struct {
	// URL is the node's websocket endpoint (ws:// or wss://).
	URL string `toml:"url" mapstructure:"url"`
	// ConnectTimeout bounds the websocket dial/handshake.
	ConnectTimeout time.Duration `toml:"connect_timeout" mapstructure:"connect_timeout"`
}

// ExplorerConfig describes how transaction explorer links are built.
type ExplorerConfig struct {
	BaseURL string `toml:"base_url" mapstructure:"base_url"`
}

// MarketConfig describes the best-effort market data endpoint.
type MarketConfig struct {
	URL string `toml:"url" mapstructure:"url"`
	// FetchTimeout bounds the market quote request.
	FetchTimeout time.Duration `toml:"fetch_timeout" mapstructure:"fetch_timeout"`
}

// HistoryConfig holds history defaults. Limit is only a default; callers
// pass limit and direction explicitly per request.
type HistoryConfig struct {
	Limit int `toml:"limit" mapstructure:"limit"`
}

// SubmitConfig holds payment submission parameters.
type SubmitConfig struct {
	// FeeDrops is the transaction fee auto-filled on payments.
	FeeDrops uint64 `toml:"fee_drops" mapstructure:"fee_drops"`
	// ValidationWindow bounds the wait for ledger validation after
	// submit. Expiry means the transaction outcome is unknown, not
	// rejected.
	ValidationWindow time.Duration `toml:"validation_window" mapstructure:"validation_window"`
	// LedgerWindow is added to the current validated ledger sequence to
	// form LastLedgerSequence.
	LedgerWindow uint32 `toml:"ledger_window" mapstructure:"ledger_window"`
}

// Validate checks the assembled configuration.
func Validate(cfg *Config) error {
	u, err := url.Parse(cfg.Node.URL)
	if err != nil || (u.Scheme != "ws" && u.Scheme != "wss") || u.Host == "" {
		return fmt.Errorf("config: node.url must be a ws:// or wss:// URL, got %q", cfg.Node.URL)
	}
	if cfg.Node.ConnectTimeout <= 0 {
		return fmt.Errorf("config: node.connect_timeout must be positive")
	}
	if cfg.Explorer.BaseURL == "" {
		return fmt.Errorf("config: explorer.base_url must not be empty")
	}
	if cfg.History.Limit <= 0 {
		return fmt.Errorf("config: history.limit must be positive")
	}
	if cfg.Submit.FeeDrops == 0 {
		return fmt.Errorf("config: submit.fee_drops must be positive")
	}
	if cfg.Submit.ValidationWindow <= 0 {
		return fmt.Errorf("config: submit.validation_window must be positive")
	}
	if cfg.Submit.LedgerWindow == 0 {
		return fmt.Errorf("config: submit.ledger_window must be positive")
	}
	return nil
}
