package wallet

import (
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/tyler-smith/go-bip32"
)

// AccountCapacity is the number of leaf indices served by one BIP-84
// account. Order IDs beyond the capacity roll into the next hardened
// account so the 31-bit child index field never overflows.
const AccountCapacity = 2_094_967_296

// Derivation errors.
var (
	// ErrNoSeed means no root mnemonic was configured. Fatal at startup.
	ErrNoSeed = errors.New("no payment mnemonic configured")

	ErrNegativeOrderID = errors.New("order id must not be negative")
)

// OrderKey is the key material behind one order's payment address.
type OrderKey struct {
	PrivKey *btcec.PrivateKey
	PubKey  *btcec.PublicKey

	// Address is the order's p2wpkh payment address.
	Address *btcutil.AddressWitnessPubKeyHash
}

// Deriver turns order IDs into payment keys. It holds the root key derived
// from the configured mnemonic and the active network parameters; both are
// fixed at construction and safe for concurrent reads.
type Deriver struct {
	master *HDKey
	params *chaincfg.Params
}

// NewDeriver creates a Deriver from a BIP-39 mnemonic. An empty mnemonic
// returns ErrNoSeed; an invalid one fails validation. Both are
// configuration failures the caller should treat as fatal.
func NewDeriver(mnemonic string, params *chaincfg.Params) (*Deriver, error) {
	if mnemonic == "" {
		return nil, ErrNoSeed
	}
	seed, err := SeedFromMnemonic(mnemonic, "")
	if err != nil {
		return nil, err
	}
	master, err := NewMasterKey(seed)
	if err != nil {
		return nil, err
	}
	return &Deriver{master: master, params: params}, nil
}

// Params returns the active network parameters.
func (d *Deriver) Params() *chaincfg.Params {
	return d.params
}

// OrderKey derives the key pair and payment address for an order at
// m/84'/0'/account'/0/orderID. Derivation is a pure function of the order
// ID: the address is never stored, always recomputed.
func (d *Deriver) OrderKey(orderID int64) (*OrderKey, error) {
	if orderID < 0 {
		return nil, ErrNegativeOrderID
	}

	account := int64(0)
	if orderID > AccountCapacity {
		account = orderID / AccountCapacity
	}

	key, err := d.master.DerivePath(
		PurposeBIP84,
		CoinTypeBitcoin,
		bip32.FirstHardenedChild+uint32(account),
		ChangeExternal,
		uint32(orderID),
	)
	if err != nil {
		return nil, fmt.Errorf("derive order %d: %w", orderID, err)
	}

	priv, pub := btcec.PrivKeyFromBytes(key.PrivateKeyBytes())

	addr, err := btcutil.NewAddressWitnessPubKeyHash(
		btcutil.Hash160(pub.SerializeCompressed()), d.params)
	if err != nil {
		return nil, fmt.Errorf("derive order %d address: %w", orderID, err)
	}

	return &OrderKey{PrivKey: priv, PubKey: pub, Address: addr}, nil
}

// OrderAddress derives only the encoded payment address for an order.
func (d *Deriver) OrderAddress(orderID int64) (string, error) {
	key, err := d.OrderKey(orderID)
	if err != nil {
		return "", err
	}
	return key.Address.EncodeAddress(), nil
}
