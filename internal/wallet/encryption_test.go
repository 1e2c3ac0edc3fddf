package wallet

import (
	"bytes"
	"testing"
)

// testParams keeps Argon2id cheap so the suite stays fast.
func testParams() EncryptionParams {
	return EncryptionParams{
		Memory:      8 * 1024,
		Iterations:  1,
		Parallelism: 1,
	}
}

func TestEncryptDecrypt(t *testing.T) {
	data := []byte("secret mnemonic material")
	password := []byte("correct horse battery staple")

	encrypted, err := Encrypt(data, password, testParams())
	if err != nil {
		t.Fatalf("Encrypt() error: %v", err)
	}
	if bytes.Contains(encrypted, data) {
		t.Error("ciphertext contains plaintext")
	}

	decrypted, err := Decrypt(encrypted, password)
	if err != nil {
		t.Fatalf("Decrypt() error: %v", err)
	}
	if !bytes.Equal(decrypted, data) {
		t.Errorf("decrypted = %q, want %q", decrypted, data)
	}
}

func TestDecrypt_WrongPassword(t *testing.T) {
	encrypted, err := Encrypt([]byte("data"), []byte("right"), testParams())
	if err != nil {
		t.Fatalf("Encrypt() error: %v", err)
	}

	if _, err := Decrypt(encrypted, []byte("wrong")); err == nil {
		t.Error("expected error for wrong password")
	}
}

func TestDecrypt_Tampered(t *testing.T) {
	encrypted, err := Encrypt([]byte("data"), []byte("pw"), testParams())
	if err != nil {
		t.Fatalf("Encrypt() error: %v", err)
	}

	tampered := append([]byte(nil), encrypted...)
	tampered[len(tampered)-1] ^= 0xff
	if _, err := Decrypt(tampered, []byte("pw")); err == nil {
		t.Error("expected error for tampered ciphertext")
	}
}

func TestDecrypt_TooShort(t *testing.T) {
	if _, err := Decrypt([]byte("short"), []byte("pw")); err == nil {
		t.Error("expected error for truncated input")
	}
}

// Encrypt records its parameters in the header, so Decrypt does not need
// them passed back in.
func TestDecrypt_ParamsFromHeader(t *testing.T) {
	params := EncryptionParams{Memory: 16 * 1024, Iterations: 2, Parallelism: 2}
	encrypted, err := Encrypt([]byte("data"), []byte("pw"), params)
	if err != nil {
		t.Fatalf("Encrypt() error: %v", err)
	}

	decrypted, err := Decrypt(encrypted, []byte("pw"))
	if err != nil {
		t.Fatalf("Decrypt() error: %v", err)
	}
	if string(decrypted) != "data" {
		t.Errorf("decrypted = %q", decrypted)
	}
}

func TestEncrypt_UniqueSaltAndNonce(t *testing.T) {
	a, err := Encrypt([]byte("data"), []byte("pw"), testParams())
	if err != nil {
		t.Fatalf("Encrypt() error: %v", err)
	}
	b, err := Encrypt([]byte("data"), []byte("pw"), testParams())
	if err != nil {
		t.Fatalf("Encrypt() error: %v", err)
	}
	if bytes.Equal(a, b) {
		t.Error("two encryptions of the same data produced identical output")
	}
}
