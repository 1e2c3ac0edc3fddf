package config

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Flags holds parsed command-line flags.
type Flags struct {
	// Commands
	Help    bool
	Version bool

	// Core
	Network string
	DataDir string
	Config  string

	// External APIs
	MempoolURL   string
	InscriberURL string
	WebhookBase  string
	ReferralFee  int64

	// Watcher
	Watcher       bool
	WatchInterval time.Duration
	InscribeDelay time.Duration

	// RPC
	RPC     bool
	RPCAddr string
	RPCPort int

	// Logging
	LogLevel string
	LogFile  string
	LogJSON  bool

	// Remaining args
	Args []string

	// Explicitly-set bool flags (for true/false overrides).
	SetWatcher bool
	SetRPC     bool
}

// ParseFlags parses command-line arguments.
func ParseFlags(args []string) (*Flags, error) {
	f := &Flags{}
	fs := flag.NewFlagSet("ordforged", flag.ContinueOnError)

	fs.BoolVar(&f.Help, "help", false, "Show help")
	fs.BoolVar(&f.Version, "version", false, "Show version")

	fs.StringVar(&f.Network, "network", "", "Network: mainnet or testnet")
	fs.StringVar(&f.DataDir, "datadir", "", "Data directory")
	fs.StringVar(&f.Config, "config", "", "Config file path")

	fs.StringVar(&f.MempoolURL, "mempool-url", "", "Ledger explorer API base URL")
	fs.StringVar(&f.InscriberURL, "inscriber-url", "", "Inscription service API base URL")
	fs.StringVar(&f.WebhookBase, "webhook-base", "", "Public base URL for inscription webhooks")
	fs.Int64Var(&f.ReferralFee, "referral-fee", -1, "Flat service fee in satoshis")

	fs.BoolVar(&f.Watcher, "watcher", true, "Enable the reconciliation watcher")
	fs.DurationVar(&f.WatchInterval, "watch-interval", 0, "Reconciliation pass interval")
	fs.DurationVar(&f.InscribeDelay, "inscribe-delay", 0, "Delay between orders in the HTML stage")

	fs.BoolVar(&f.RPC, "rpc", true, "Enable the HTTP API server")
	fs.StringVar(&f.RPCAddr, "rpc-addr", "", "HTTP API listen address")
	fs.IntVar(&f.RPCPort, "rpc-port", 0, "HTTP API listen port")

	fs.StringVar(&f.LogLevel, "log-level", "", "Log level: debug, info, warn, error")
	fs.StringVar(&f.LogFile, "log-file", "", "Log file path")
	fs.BoolVar(&f.LogJSON, "log-json", false, "Log JSON to the console")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "watcher":
			f.SetWatcher = true
		case "rpc":
			f.SetRPC = true
		}
	})

	f.Args = fs.Args()
	return f, nil
}

// Load builds the effective configuration: defaults for the selected
// network, then the config file, then command-line overrides, then the
// mnemonic from the environment (if set).
func Load() (*Config, *Flags, error) {
	flags, err := ParseFlags(os.Args[1:])
	if err != nil {
		return nil, nil, err
	}

	network := Mainnet
	if flags.Network != "" {
		network = NetworkType(flags.Network)
	}
	cfg := Default(network)

	if flags.DataDir != "" {
		cfg.DataDir = flags.DataDir
	}

	confPath := flags.Config
	if confPath == "" {
		confPath = filepath.Join(cfg.DataDir, "ordforge.conf")
	}
	values, err := LoadFile(confPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load config file %s: %w", confPath, err)
	}
	if err := ApplyFileConfig(cfg, values); err != nil {
		return nil, nil, err
	}

	applyFlagOverrides(cfg, flags)

	if m := os.Getenv(PaymentMnemonicEnv); m != "" {
		cfg.Payment.Mnemonic = m
	}

	if err := Validate(cfg); err != nil {
		return nil, nil, err
	}
	return cfg, flags, nil
}

// applyFlagOverrides applies explicit command-line flags on top of the
// file-derived configuration.
func applyFlagOverrides(cfg *Config, f *Flags) {
	if f.Network != "" {
		cfg.Network = NetworkType(f.Network)
	}
	if f.DataDir != "" {
		cfg.DataDir = f.DataDir
	}
	if f.MempoolURL != "" {
		cfg.Mempool.BaseURL = f.MempoolURL
	}
	if f.InscriberURL != "" {
		cfg.Inscriber.BaseURL = f.InscriberURL
	}
	if f.WebhookBase != "" {
		cfg.Inscriber.WebhookBaseURL = f.WebhookBase
	}
	if f.ReferralFee >= 0 {
		cfg.Inscriber.ReferralFee = f.ReferralFee
	}
	if f.SetWatcher {
		cfg.Watcher.Enabled = f.Watcher
	}
	if f.WatchInterval > 0 {
		cfg.Watcher.Interval = f.WatchInterval
	}
	if f.InscribeDelay > 0 {
		cfg.Watcher.InscribeDelay = f.InscribeDelay
	}
	if f.SetRPC {
		cfg.RPC.Enabled = f.RPC
	}
	if f.RPCAddr != "" {
		cfg.RPC.Addr = f.RPCAddr
	}
	if f.RPCPort != 0 {
		cfg.RPC.Port = f.RPCPort
	}
	if f.LogLevel != "" {
		cfg.Log.Level = f.LogLevel
	}
	if f.LogFile != "" {
		cfg.Log.File = f.LogFile
	}
	if f.LogJSON {
		cfg.Log.JSON = true
	}
}
