package config

import (
	"fmt"
	"strings"
)

// Validate checks runtime config for obvious operator mistakes.
// It does not check seed material; the wallet rejects a bad mnemonic at
// startup with its own error.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}
	if cfg.Network != Mainnet && cfg.Network != Testnet {
		return fmt.Errorf("network must be %q or %q", Mainnet, Testnet)
	}
	if err := validateBaseURL(cfg.Mempool.BaseURL, "mempool.url"); err != nil {
		return err
	}
	if err := validateBaseURL(cfg.Inscriber.BaseURL, "inscriber.url"); err != nil {
		return err
	}
	if cfg.Inscriber.ReferralFee < 0 {
		return fmt.Errorf("inscriber.referral_fee must not be negative")
	}
	if cfg.Watcher.Enabled && cfg.Watcher.Interval <= 0 {
		return fmt.Errorf("watcher.interval must be positive")
	}
	if cfg.Watcher.InscribeDelay < 0 {
		return fmt.Errorf("watcher.inscribe_delay must not be negative")
	}
	if cfg.RPC.Port < 0 || cfg.RPC.Port > 65535 {
		return fmt.Errorf("rpc.port must be in range [0, 65535]")
	}
	switch cfg.Log.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be debug, info, warn or error")
	}
	return nil
}

func validateBaseURL(u, field string) error {
	if u == "" {
		return fmt.Errorf("%s must not be empty", field)
	}
	if !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
		return fmt.Errorf("%s must be an http(s) URL", field)
	}
	if strings.HasSuffix(u, "/") {
		return fmt.Errorf("%s must not end with a slash", field)
	}
	return nil
}
