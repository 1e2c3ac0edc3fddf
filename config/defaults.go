package config

import "time"

// DefaultMainnet returns the default configuration for mainnet.
func DefaultMainnet() *Config {
	return &Config{
		Network: Mainnet,
		DataDir: DefaultDataDir(),
		Mempool: MempoolConfig{
			BaseURL: "https://mempool.space/api",
			Timeout: 10 * time.Second,
		},
		Inscriber: InscriberConfig{
			BaseURL:     "https://api.ordinalsbot.com",
			Timeout:     30 * time.Second,
			ReferralFee: 2000,
		},
		Payment: PaymentConfig{
			KeystoreName: "payment",
		},
		Watcher: WatcherConfig{
			Enabled:       true,
			Interval:      3 * time.Minute,
			InscribeDelay: 5 * time.Second,
		},
		RPC: RPCConfig{
			Enabled: true,
			Addr:    "127.0.0.1",
			Port:    8091,
		},
		Log: LogConfig{
			Level: "info",
			JSON:  false,
		},
	}
}

// DefaultTestnet returns the default configuration for testnet.
func DefaultTestnet() *Config {
	cfg := DefaultMainnet()
	cfg.Network = Testnet
	cfg.Mempool.BaseURL = "https://mempool.space/testnet/api"
	cfg.Inscriber.BaseURL = "https://testnet-api.ordinalsbot.com"
	cfg.RPC.Port = 8191
	return cfg
}

// Default returns the default configuration for the given network.
func Default(network NetworkType) *Config {
	switch network {
	case Testnet:
		return DefaultTestnet()
	default:
		return DefaultMainnet()
	}
}
