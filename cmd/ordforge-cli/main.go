// ordforge-cli is a command-line client for managing an ordforge
// deployment: keystore setup, address derivation and order queries.
package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"golang.org/x/term"

	"github.com/ordforge/ordforge/config"
	"github.com/ordforge/ordforge/internal/rpcclient"
	"github.com/ordforge/ordforge/internal/wallet"
)

const version = "0.3.0"

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	// Global flags appearing before the subcommand.
	apiURL := "http://127.0.0.1:8091"
	dataDir := config.DefaultDataDir()
	network := "mainnet"

	args := os.Args[1:]
	for len(args) > 0 {
		switch {
		case args[0] == "--api" && len(args) > 1:
			apiURL = args[1]
			args = args[2:]
		case strings.HasPrefix(args[0], "--api="):
			apiURL = args[0][len("--api="):]
			args = args[1:]
		case args[0] == "--datadir" && len(args) > 1:
			dataDir = args[1]
			args = args[2:]
		case strings.HasPrefix(args[0], "--datadir="):
			dataDir = args[0][len("--datadir="):]
			args = args[1:]
		case args[0] == "--network" && len(args) > 1:
			network = args[1]
			args = args[2:]
		case strings.HasPrefix(args[0], "--network="):
			network = args[0][len("--network="):]
			args = args[1:]
		default:
			goto dispatch
		}
	}

dispatch:
	if len(args) == 0 {
		usage()
		os.Exit(1)
	}
	if network != "mainnet" && network != "testnet" {
		fatal("unknown network %q", network)
	}

	ksDir := filepath.Join(dataDir, "keystore")
	client := rpcclient.New(apiURL)

	switch args[0] {
	case "keystore":
		cmdKeystore(ksDir, args[1:])
	case "address":
		cmdAddress(ksDir, network, args[1:])
	case "order":
		cmdOrder(client, args[1:])
	case "orders":
		cmdOrders(client, args[1:])
	case "price":
		cmdPrice(client, args[1:])
	case "version":
		fmt.Println("ordforge-cli " + version)
	case "help", "--help", "-h":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", args[0])
		usage()
		os.Exit(1)
	}
}

// ── Keystore commands ───────────────────────────────────────────────────

func cmdKeystore(ksDir string, args []string) {
	if len(args) == 0 {
		fatal("usage: ordforge-cli keystore <init|import> [name]")
	}
	name := "payment"
	if len(args) > 1 {
		name = args[1]
	}

	ks, err := wallet.NewKeystore(ksDir)
	if err != nil {
		fatal("open keystore: %v", err)
	}

	switch args[0] {
	case "init":
		if ks.Exists(name) {
			fatal("keystore %q already exists", name)
		}
		mnemonic, err := wallet.GenerateMnemonic()
		if err != nil {
			fatal("generate mnemonic: %v", err)
		}
		password := newPassword()
		if err := ks.Create(name, mnemonic, password, wallet.DefaultParams()); err != nil {
			fatal("create keystore: %v", err)
		}
		fmt.Printf("Keystore %q created in %s\n\n", name, ksDir)
		fmt.Println("Recovery mnemonic (write it down, it is shown once):")
		fmt.Println("  " + mnemonic)
	case "import":
		if ks.Exists(name) {
			fatal("keystore %q already exists", name)
		}
		fmt.Fprint(os.Stderr, "Mnemonic: ")
		reader := bufio.NewReader(os.Stdin)
		line, err := reader.ReadString('\n')
		if err != nil {
			fatal("read mnemonic: %v", err)
		}
		mnemonic := strings.TrimSpace(line)
		if !wallet.ValidateMnemonic(mnemonic) {
			fatal("invalid mnemonic")
		}
		password := newPassword()
		if err := ks.Create(name, mnemonic, password, wallet.DefaultParams()); err != nil {
			fatal("create keystore: %v", err)
		}
		fmt.Printf("Keystore %q created in %s\n", name, ksDir)
	default:
		fatal("usage: ordforge-cli keystore <init|import> [name]")
	}
}

// cmdAddress derives the payment address for an order id, from
// PAYMENT_MNEMONIC or the keystore.
func cmdAddress(ksDir, network string, args []string) {
	if len(args) < 1 {
		fatal("usage: ordforge-cli address <order-id> [keystore-name]")
	}
	orderID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		fatal("invalid order id %q", args[0])
	}

	mnemonic := os.Getenv(config.PaymentMnemonicEnv)
	if mnemonic == "" {
		name := "payment"
		if len(args) > 1 {
			name = args[1]
		}
		ks, err := wallet.NewKeystore(ksDir)
		if err != nil {
			fatal("open keystore: %v", err)
		}
		password, err := readPassword(fmt.Sprintf("Password for keystore %q: ", name))
		if err != nil {
			fatal("read password: %v", err)
		}
		mnemonic, err = ks.Load(name, password)
		if err != nil {
			fatal("unlock keystore: %v", err)
		}
	}

	net := config.Mainnet
	if network == "testnet" {
		net = config.Testnet
	}
	deriver, err := wallet.NewDeriver(mnemonic, wallet.ChainParams(net))
	if err != nil {
		fatal("derive: %v", err)
	}
	address, err := deriver.OrderAddress(orderID)
	if err != nil {
		fatal("derive: %v", err)
	}
	fmt.Println(address)
}

// ── API commands ────────────────────────────────────────────────────────

func cmdOrder(client *rpcclient.Client, args []string) {
	if len(args) != 1 {
		fatal("usage: ordforge-cli order <id>")
	}
	id, err := strconv.ParseUint(args[0], 10, 64)
	if err != nil {
		fatal("invalid order id %q", args[0])
	}
	data, err := client.Order(id)
	if err != nil {
		fatal("%v", err)
	}
	printJSON(data)
}

func cmdOrders(client *rpcclient.Client, args []string) {
	if len(args) != 1 {
		fatal("usage: ordforge-cli orders <receive-address>")
	}
	data, err := client.Orders(args[0])
	if err != nil {
		fatal("%v", err)
	}
	printJSON(data)
}

func cmdPrice(client *rpcclient.Client, args []string) {
	if len(args) < 2 {
		fatal("usage: ordforge-cli price <fee-rate> <size> [size ...]")
	}
	feeRate, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		fatal("invalid fee rate %q", args[0])
	}
	sizes := make([]int64, len(args)-1)
	for i, raw := range args[1:] {
		sizes[i], err = strconv.ParseInt(raw, 10, 64)
		if err != nil {
			fatal("invalid size %q", raw)
		}
	}
	data, err := client.Price(sizes, feeRate, 1, "random")
	if err != nil {
		fatal("%v", err)
	}
	printJSON(data)
}

// ── Helpers ─────────────────────────────────────────────────────────────

func printJSON(data json.RawMessage) {
	var buf interface{}
	if err := json.Unmarshal(data, &buf); err != nil {
		fmt.Println(string(data))
		return
	}
	out, err := json.MarshalIndent(buf, "", "  ")
	if err != nil {
		fmt.Println(string(data))
		return
	}
	fmt.Println(string(out))
}

func newPassword() []byte {
	password, err := readPassword("New password: ")
	if err != nil {
		fatal("read password: %v", err)
	}
	confirm, err := readPassword("Confirm password: ")
	if err != nil {
		fatal("read password: %v", err)
	}
	if string(password) != string(confirm) {
		fatal("passwords do not match")
	}
	if len(password) == 0 {
		fatal("password must not be empty")
	}
	return password
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

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}

func usage() {
	fmt.Println(`ordforge-cli - ordforge deployment client

Usage:
  ordforge-cli [global flags] <command> [args]

Global flags:
  --api=URL          API endpoint (default http://127.0.0.1:8091)
  --datadir=DIR      Data directory
  --network=NAME     mainnet or testnet (default mainnet)

Keystore:
  keystore init [name]     Generate a mnemonic and create a keystore
  keystore import [name]   Import an existing mnemonic into a keystore

Derivation:
  address <order-id>       Print the payment address for an order

Orders:
  order <id>               Fetch one order
  orders <address>         Fetch orders by receive address
  price <fee> <size>...    Quote an order

Other:
  version                  Show version
  help                     Show this help`)
}
