package wallet

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// keystoreFile is the on-disk JSON format for an encrypted root mnemonic.
type keystoreFile struct {
	Version           int       `json:"version"`
	CreatedAt         time.Time `json:"created_at"`
	EncryptedMnemonic []byte    `json:"encrypted_mnemonic"`
}

// Keystore manages encrypted mnemonic storage on disk. The daemon unlocks
// it once at startup when the mnemonic is not supplied via the environment.
type Keystore struct {
	path string
}

// NewKeystore creates a keystore that reads/writes to the given directory.
// The directory is created if it doesn't exist.
func NewKeystore(path string) (*Keystore, error) {
	if err := os.MkdirAll(path, 0700); err != nil {
		return nil, fmt.Errorf("create keystore dir: %w", err)
	}
	return &Keystore{path: path}, nil
}

// walletPath returns the file path for a keystore entry by name.
func (ks *Keystore) walletPath(name string) string {
	return filepath.Join(ks.path, name+".wallet")
}

// Exists reports whether a keystore entry with the given name exists.
func (ks *Keystore) Exists(name string) bool {
	_, err := os.Stat(ks.walletPath(name))
	return err == nil
}

// Create encrypts and stores a mnemonic under the given name.
func (ks *Keystore) Create(name, mnemonic string, password []byte, params EncryptionParams) error {
	if !ValidateMnemonic(mnemonic) {
		return fmt.Errorf("invalid mnemonic")
	}
	path := ks.walletPath(name)
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("keystore entry %q already exists", name)
	}

	encrypted, err := Encrypt([]byte(mnemonic), password, params)
	if err != nil {
		return fmt.Errorf("encrypt mnemonic: %w", err)
	}

	kf := keystoreFile{
		Version:           1,
		CreatedAt:         time.Now().UTC(),
		EncryptedMnemonic: encrypted,
	}
	data, err := json.MarshalIndent(&kf, "", "  ")
	if err != nil {
		return fmt.Errorf("encode keystore file: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("write keystore file: %w", err)
	}
	return nil
}

// Load decrypts and returns the mnemonic stored under the given name.
func (ks *Keystore) Load(name string, password []byte) (string, error) {
	data, err := os.ReadFile(ks.walletPath(name))
	if err != nil {
		return "", fmt.Errorf("read keystore file: %w", err)
	}

	var kf keystoreFile
	if err := json.Unmarshal(data, &kf); err != nil {
		return "", fmt.Errorf("decode keystore file: %w", err)
	}
	if kf.Version != 1 {
		return "", fmt.Errorf("unsupported keystore version %d", kf.Version)
	}

	mnemonic, err := Decrypt(kf.EncryptedMnemonic, password)
	if err != nil {
		return "", err
	}
	if !ValidateMnemonic(string(mnemonic)) {
		return "", fmt.Errorf("keystore entry %q holds an invalid mnemonic", name)
	}
	return string(mnemonic), nil
}
