package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// LoadFile loads configuration from a .conf file.
// Format: key = value (one per line, # for comments)
func LoadFile(path string) (map[string]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return make(map[string]string), nil
		}
		return nil, err
	}
	defer file.Close()

	values := make(map[string]string)
	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Parse key = value
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("line %d: invalid format (expected key = value)", lineNum)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		// Remove quotes if present
		if len(value) >= 2 {
			if (value[0] == '"' && value[len(value)-1] == '"') ||
				(value[0] == '\'' && value[len(value)-1] == '\'') {
				value = value[1 : len(value)-1]
			}
		}

		values[key] = value
	}

	return values, scanner.Err()
}

// ApplyFileConfig applies file configuration to a Config struct.
func ApplyFileConfig(cfg *Config, values map[string]string) error {
	for key, value := range values {
		if err := setConfigValue(cfg, key, value); err != nil {
			return fmt.Errorf("config key %q: %w", key, err)
		}
	}
	return nil
}

// setConfigValue sets a config value by key. The mnemonic itself is not
// a file key; it comes from the environment or keystore.
func setConfigValue(cfg *Config, key, value string) error {
	switch key {
	// Core
	case "network":
		cfg.Network = NetworkType(value)
	case "datadir":
		cfg.DataDir = value

	// Mempool API
	case "mempool.url":
		cfg.Mempool.BaseURL = value
	case "mempool.timeout":
		return setDuration(&cfg.Mempool.Timeout, value)

	// Inscription API
	case "inscriber.url":
		cfg.Inscriber.BaseURL = value
	case "inscriber.timeout":
		return setDuration(&cfg.Inscriber.Timeout, value)
	case "inscriber.webhook_base":
		cfg.Inscriber.WebhookBaseURL = value
	case "inscriber.referral_fee":
		fee, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid satoshi amount: %w", err)
		}
		cfg.Inscriber.ReferralFee = fee

	// Payment keystore
	case "payment.keystore_dir":
		cfg.Payment.KeystoreDir = value
	case "payment.keystore_name":
		cfg.Payment.KeystoreName = value

	// Watcher
	case "watcher.enabled", "watcher":
		return setBool(&cfg.Watcher.Enabled, value)
	case "watcher.interval":
		return setDuration(&cfg.Watcher.Interval, value)
	case "watcher.inscribe_delay":
		return setDuration(&cfg.Watcher.InscribeDelay, value)

	// RPC
	case "rpc.enabled", "rpc":
		return setBool(&cfg.RPC.Enabled, value)
	case "rpc.addr":
		cfg.RPC.Addr = value
	case "rpc.port":
		port, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid port: %w", err)
		}
		cfg.RPC.Port = port

	// Logging
	case "log.level":
		cfg.Log.Level = value
	case "log.file":
		cfg.Log.File = value
	case "log.json":
		return setBool(&cfg.Log.JSON, value)

	default:
		return fmt.Errorf("unknown key")
	}
	return nil
}

func setBool(dst *bool, value string) error {
	b, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("invalid bool: %w", err)
	}
	*dst = b
	return nil
}

func setDuration(dst *time.Duration, value string) error {
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("invalid duration: %w", err)
	}
	if d < 0 {
		return fmt.Errorf("duration must not be negative")
	}
	*dst = d
	return nil
}
