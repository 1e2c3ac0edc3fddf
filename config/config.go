// Package config handles application configuration.
//
// Configuration is split into two categories:
//   - Payment-critical settings: network and seed material, fixed at startup
//   - Service settings: endpoints, intervals and logging, set per deployment
package config

import (
	"os"
	"path/filepath"
	"runtime"
	"time"
)

// NetworkType identifies mainnet or testnet.
type NetworkType string

const (
	Mainnet NetworkType = "mainnet"
	Testnet NetworkType = "testnet"
)

// PaymentMnemonicEnv is the environment variable holding the root mnemonic.
// An encrypted keystore file is the alternative (see PaymentConfig).
const PaymentMnemonicEnv = "PAYMENT_MNEMONIC"

// Config holds service runtime configuration.
type Config struct {
	// Core
	Network NetworkType `conf:"network"`
	DataDir string      `conf:"datadir"`

	// External collaborators
	Mempool   MempoolConfig
	Inscriber InscriberConfig

	// Root seed material
	Payment PaymentConfig

	// Reconciliation scheduling
	Watcher WatcherConfig

	// HTTP API server
	RPC RPCConfig

	// Logging
	Log LogConfig
}

// MempoolConfig holds the ledger-explorer API settings.
type MempoolConfig struct {
	BaseURL string        `conf:"mempool.url"`
	Timeout time.Duration `conf:"mempool.timeout"`
}

// InscriberConfig holds the inscription-ordering API settings.
type InscriberConfig struct {
	BaseURL string        `conf:"inscriber.url"`
	Timeout time.Duration `conf:"inscriber.timeout"`

	// WebhookBaseURL is this service's public base URL; the per-order
	// update token is appended to form the webhook callback.
	WebhookBaseURL string `conf:"inscriber.webhook_base"`

	// ReferralFee is the flat service fee in satoshis added to every quote.
	ReferralFee int64 `conf:"inscriber.referral_fee"`
}

// PaymentConfig holds root seed material settings.
//
// The mnemonic itself is resolved once at startup, either from the
// PAYMENT_MNEMONIC environment variable or by unlocking the encrypted
// keystore, and carried here so business logic never touches the
// environment.
type PaymentConfig struct {
	Mnemonic     string // Never persisted to the config file.
	KeystoreDir  string `conf:"payment.keystore_dir"`
	KeystoreName string `conf:"payment.keystore_name"`
}

// WatcherConfig holds reconciliation loop settings.
type WatcherConfig struct {
	Enabled bool `conf:"watcher.enabled"`

	// Interval between reconciliation passes. A pass never overlaps the
	// previous one regardless of how long it runs.
	Interval time.Duration `conf:"watcher.interval"`

	// InscribeDelay is the pause between orders in the HTML inscription
	// stage (upstream API rate-limit courtesy).
	InscribeDelay time.Duration `conf:"watcher.inscribe_delay"`
}

// RPCConfig holds HTTP API server settings.
type RPCConfig struct {
	Enabled bool   `conf:"rpc.enabled"`
	Addr    string `conf:"rpc.addr"`
	Port    int    `conf:"rpc.port"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `conf:"log.level"`
	File  string `conf:"log.file"`
	JSON  bool   `conf:"log.json"`
}

// DefaultDataDir returns the platform-specific default data directory.
//
//	Linux:   ~/.ordforge
//	macOS:   ~/Library/Application Support/Ordforge
//	Windows: %APPDATA%\Ordforge
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".ordforge"
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "Ordforge")
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData != "" {
			return filepath.Join(appData, "Ordforge")
		}
		return filepath.Join(home, "AppData", "Roaming", "Ordforge")
	default:
		return filepath.Join(home, ".ordforge")
	}
}

// NetworkDataDir returns the network-specific data directory.
func (c *Config) NetworkDataDir() string {
	return filepath.Join(c.DataDir, string(c.Network))
}

// OrdersDir returns the order database directory.
func (c *Config) OrdersDir() string {
	return filepath.Join(c.NetworkDataDir(), "orders")
}

// LogsDir returns the log file directory.
func (c *Config) LogsDir() string {
	return filepath.Join(c.NetworkDataDir(), "logs")
}

// KeystoreDir returns the keystore directory, falling back to the default
// location under the data directory.
func (c *Config) KeystoreDir() string {
	if c.Payment.KeystoreDir != "" {
		return c.Payment.KeystoreDir
	}
	return filepath.Join(c.DataDir, "keystore")
}
