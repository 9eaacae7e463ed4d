// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package sealed

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bureau-foundation/safenet/lib/secret"
)

func generate(t *testing.T) *Keypair {
	t.Helper()
	keypair, err := GenerateKeypair()
	if err != nil {
		t.Fatalf("GenerateKeypair() error: %v", err)
	}
	t.Cleanup(func() { keypair.Close() })
	return keypair
}

func TestGenerateKeypair(t *testing.T) {
	keypair := generate(t)

	if !strings.HasPrefix(keypair.PrivateKey.String(), "AGE-SECRET-KEY-1") {
		t.Errorf("PrivateKey has unexpected prefix")
	}
	if !strings.HasPrefix(keypair.PublicKey, "age1") {
		t.Errorf("PublicKey = %q, want prefix age1", keypair.PublicKey)
	}
}

func TestGenerateKeypair_Unique(t *testing.T) {
	first := generate(t)
	second := generate(t)

	if first.PrivateKey.Equal(second.PrivateKey.Bytes()) {
		t.Error("two generated keypairs have identical private keys")
	}
	if first.PublicKey == second.PublicKey {
		t.Error("two generated keypairs have identical public keys")
	}
}

func TestEncryptDecrypt_SingleRecipient(t *testing.T) {
	keypair := generate(t)

	plaintext := []byte("hunter2")
	ciphertext, err := Encrypt(plaintext, []string{keypair.PublicKey})
	if err != nil {
		t.Fatalf("Encrypt() error: %v", err)
	}

	if _, err := base64.StdEncoding.DecodeString(ciphertext); err != nil {
		t.Errorf("Encrypt() returned invalid base64: %v", err)
	}
	if strings.Contains(ciphertext, "hunter2") {
		t.Error("ciphertext contains plaintext")
	}

	decrypted, err := Decrypt(ciphertext, keypair.PrivateKey)
	if err != nil {
		t.Fatalf("Decrypt() error: %v", err)
	}
	defer decrypted.Close()
	if decrypted.String() != "hunter2" {
		t.Errorf("Decrypt() = %q, want %q", decrypted.String(), "hunter2")
	}
}

func TestEncryptDecrypt_MultipleRecipients(t *testing.T) {
	workstation := generate(t)
	escrow := generate(t)

	ciphertext, err := Encrypt([]byte("shared-password"), []string{workstation.PublicKey, escrow.PublicKey})
	if err != nil {
		t.Fatalf("Encrypt() error: %v", err)
	}

	for name, keypair := range map[string]*Keypair{"workstation": workstation, "escrow": escrow} {
		decrypted, err := Decrypt(ciphertext, keypair.PrivateKey)
		if err != nil {
			t.Fatalf("Decrypt(%s) error: %v", name, err)
		}
		if decrypted.String() != "shared-password" {
			t.Errorf("Decrypt(%s) = %q, want %q", name, decrypted.String(), "shared-password")
		}
		decrypted.Close()
	}
}

func TestDecrypt_WrongKey(t *testing.T) {
	keypair := generate(t)
	wrong := generate(t)

	ciphertext, err := Encrypt([]byte("secret data"), []string{keypair.PublicKey})
	if err != nil {
		t.Fatalf("Encrypt() error: %v", err)
	}

	if _, err := Decrypt(ciphertext, wrong.PrivateKey); err == nil {
		t.Error("Decrypt() with wrong key should return error")
	}
}

func TestEncrypt_NoRecipients(t *testing.T) {
	_, err := Encrypt([]byte("data"), nil)
	if err == nil {
		t.Fatal("Encrypt() with no recipients should return error")
	}
	if !strings.Contains(err.Error(), "at least one recipient") {
		t.Errorf("error = %v, want 'at least one recipient'", err)
	}
}

func TestEncrypt_InvalidRecipientKey(t *testing.T) {
	_, err := Encrypt([]byte("data"), []string{"not-a-valid-key"})
	if err == nil {
		t.Fatal("Encrypt() with invalid recipient key should return error")
	}
	if !strings.Contains(err.Error(), "parsing recipient key") {
		t.Errorf("error = %v, want 'parsing recipient key'", err)
	}
}

func TestDecrypt_InvalidPrivateKey(t *testing.T) {
	keypair := generate(t)
	ciphertext, err := Encrypt([]byte("data"), []string{keypair.PublicKey})
	if err != nil {
		t.Fatalf("Encrypt() error: %v", err)
	}

	invalid, err := secret.NewFromBytes([]byte("not-a-valid-private-key"))
	if err != nil {
		t.Fatalf("NewFromBytes() error: %v", err)
	}
	defer invalid.Close()

	_, err = Decrypt(ciphertext, invalid)
	if err == nil {
		t.Fatal("Decrypt() with invalid private key should return error")
	}
	if !strings.Contains(err.Error(), "parsing private key") {
		t.Errorf("error = %v, want 'parsing private key'", err)
	}
}

func TestDecrypt_InvalidBase64(t *testing.T) {
	keypair := generate(t)

	_, err := Decrypt("not-valid-base64!!!", keypair.PrivateKey)
	if err == nil {
		t.Fatal("Decrypt() with invalid base64 should return error")
	}
	if !strings.Contains(err.Error(), "decoding base64") {
		t.Errorf("error = %v, want 'decoding base64'", err)
	}
}

func TestEncryptDecrypt_EmptyPlaintext(t *testing.T) {
	keypair := generate(t)

	ciphertext, err := Encrypt([]byte{}, []string{keypair.PublicKey})
	if err != nil {
		t.Fatalf("Encrypt(empty) error: %v", err)
	}

	decrypted, err := Decrypt(ciphertext, keypair.PrivateKey)
	if err != nil {
		t.Fatalf("Decrypt(empty) error: %v", err)
	}
	defer decrypted.Close()
	if decrypted.Len() != 0 {
		t.Errorf("Decrypt(empty) length = %d, want 0", decrypted.Len())
	}
}

func TestLoadIdentity(t *testing.T) {
	keypair := generate(t)

	path := filepath.Join(t.TempDir(), "identity.age")
	if err := os.WriteFile(path, []byte(FormatIdentityFile(keypair)), 0600); err != nil {
		t.Fatalf("writing identity file: %v", err)
	}

	identity, err := LoadIdentity(path)
	if err != nil {
		t.Fatalf("LoadIdentity() error: %v", err)
	}
	defer identity.Close()

	if !identity.Equal(keypair.PrivateKey.Bytes()) {
		t.Error("loaded identity does not match generated private key")
	}

	publicKey, err := PublicKeyOf(identity)
	if err != nil {
		t.Fatalf("PublicKeyOf() error: %v", err)
	}
	if publicKey != keypair.PublicKey {
		t.Errorf("PublicKeyOf() = %q, want %q", publicKey, keypair.PublicKey)
	}
}

func TestLoadIdentity_NoKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "identity.age")
	if err := os.WriteFile(path, []byte("# only a comment\n\n"), 0600); err != nil {
		t.Fatalf("writing identity file: %v", err)
	}

	if _, err := LoadIdentity(path); err == nil {
		t.Error("LoadIdentity() with no key should return error")
	}
}

func TestParsePublicKey(t *testing.T) {
	keypair := generate(t)

	if err := ParsePublicKey(keypair.PublicKey); err != nil {
		t.Errorf("ParsePublicKey(valid) error: %v", err)
	}
	if err := ParsePublicKey("age1invalid"); err == nil {
		t.Error("ParsePublicKey(invalid) should return error")
	}
}
