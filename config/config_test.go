package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	mainnet := DefaultMainnet()
	if err := Validate(mainnet); err != nil {
		t.Errorf("mainnet defaults invalid: %v", err)
	}
	testnet := DefaultTestnet()
	if err := Validate(testnet); err != nil {
		t.Errorf("testnet defaults invalid: %v", err)
	}

	if mainnet.Network != Mainnet || testnet.Network != Testnet {
		t.Error("network mismatch in defaults")
	}
	if mainnet.RPC.Port == testnet.RPC.Port {
		t.Error("mainnet and testnet should default to different ports")
	}
	if !strings.Contains(testnet.Mempool.BaseURL, "testnet") {
		t.Errorf("testnet mempool url = %s", testnet.Mempool.BaseURL)
	}
	if mainnet.Watcher.Interval != 3*time.Minute {
		t.Errorf("watcher interval = %v, want 3m", mainnet.Watcher.Interval)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad network", func(c *Config) { c.Network = "regtest" }},
		{"empty mempool url", func(c *Config) { c.Mempool.BaseURL = "" }},
		{"non-http url", func(c *Config) { c.Mempool.BaseURL = "ftp://x" }},
		{"trailing slash", func(c *Config) { c.Inscriber.BaseURL = "https://x/" }},
		{"negative referral fee", func(c *Config) { c.Inscriber.ReferralFee = -1 }},
		{"zero watcher interval", func(c *Config) { c.Watcher.Interval = 0 }},
		{"port out of range", func(c *Config) { c.RPC.Port = 70000 }},
		{"bad log level", func(c *Config) { c.Log.Level = "verbose" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultMainnet()
			tt.mutate(cfg)
			if err := Validate(cfg); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ordforge.conf")
	content := `# comment
network = testnet

mempool.url = "https://mempool.example.com/api"
watcher.interval = 90s
rpc.port = 9999
log.json = true
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write conf: %v", err)
	}

	values, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error: %v", err)
	}

	cfg := DefaultMainnet()
	if err := ApplyFileConfig(cfg, values); err != nil {
		t.Fatalf("ApplyFileConfig() error: %v", err)
	}

	if cfg.Network != Testnet {
		t.Errorf("network = %s, want testnet", cfg.Network)
	}
	if cfg.Mempool.BaseURL != "https://mempool.example.com/api" {
		t.Errorf("mempool url = %s (quotes not stripped?)", cfg.Mempool.BaseURL)
	}
	if cfg.Watcher.Interval != 90*time.Second {
		t.Errorf("interval = %v, want 90s", cfg.Watcher.Interval)
	}
	if cfg.RPC.Port != 9999 {
		t.Errorf("port = %d, want 9999", cfg.RPC.Port)
	}
	if !cfg.Log.JSON {
		t.Error("log.json not applied")
	}
}

func TestLoadFile_Missing(t *testing.T) {
	values, err := LoadFile(filepath.Join(t.TempDir(), "nope.conf"))
	if err != nil {
		t.Fatalf("LoadFile() error for missing file: %v", err)
	}
	if len(values) != 0 {
		t.Errorf("values = %v, want empty", values)
	}
}

func TestApplyFileConfig_Errors(t *testing.T) {
	tests := []struct {
		name   string
		values map[string]string
	}{
		{"unknown key", map[string]string{"bogus.key": "1"}},
		{"bad duration", map[string]string{"watcher.interval": "soon"}},
		{"negative duration", map[string]string{"watcher.interval": "-3m"}},
		{"bad bool", map[string]string{"rpc.enabled": "yep"}},
		{"bad port", map[string]string{"rpc.port": "eighty"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultMainnet()
			if err := ApplyFileConfig(cfg, tt.values); err == nil {
				t.Error("expected error")
			}
		})
	}
}

// The mnemonic is environment-only: a config file must never carry it.
func TestMnemonicNotAFileKey(t *testing.T) {
	cfg := DefaultMainnet()
	err := ApplyFileConfig(cfg, map[string]string{"payment.mnemonic": "abandon abandon"})
	if err == nil {
		t.Error("payment.mnemonic should be rejected as a file key")
	}
	if cfg.Payment.Mnemonic != "" {
		t.Error("mnemonic leaked into config")
	}
}
