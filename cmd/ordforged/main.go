// Ordforge payment daemon.
//
// Usage:
//
//	ordforged [--network=testnet --datadir=...] Run the service
//	ordforged --help                            Show help
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/term"

	"github.com/ordforge/ordforge/config"
	"github.com/ordforge/ordforge/internal/node"
	"github.com/ordforge/ordforge/internal/wallet"
)

func main() {
	cfg, _, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// Without PAYMENT_MNEMONIC in the environment, fall back to
	// unlocking the encrypted keystore interactively.
	if cfg.Payment.Mnemonic == "" {
		mnemonic, err := unlockKeystore(cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		cfg.Payment.Mnemonic = mnemonic
	}

	n, err := node.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := n.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		n.Stop()
		os.Exit(1)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	n.Stop()
}

func unlockKeystore(cfg *config.Config) (string, error) {
	ks, err := wallet.NewKeystore(cfg.KeystoreDir())
	if err != nil {
		return "", err
	}
	name := cfg.Payment.KeystoreName
	if !ks.Exists(name) {
		return "", fmt.Errorf("no payment mnemonic: set %s or create keystore %q with ordforge-cli",
			config.PaymentMnemonicEnv, name)
	}

	password, err := readPassword(fmt.Sprintf("Password for keystore %q: ", name))
	if err != nil {
		return "", err
	}
	return ks.Load(name, password)
}

func readPassword(prompt string) ([]byte, error) {
	fmt.Fprint(os.Stderr, prompt)
	password, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr) // newline after hidden input
	if err != nil {
		return nil, err
	}
	return password, nil
}
