package crypto

import (
	"bytes"
	"testing"
)

func TestDeriveKeyDeterministic(t *testing.T) {
	salt := []byte("0123456789abcdef")
	k1 := DeriveKey([]byte("password"), salt)
	k2 := DeriveKey([]byte("password"), salt)

	if len(k1) != KeyLength {
		t.Fatalf("key length = %d, want %d", len(k1), KeyLength)
	}
	if !bytes.Equal(k1, k2) {
		t.Error("same password and salt produced different keys")
	}

	k3 := DeriveKey([]byte("different"), salt)
	if bytes.Equal(k1, k3) {
		t.Error("different passwords produced the same key")
	}
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	key := make([]byte, KeyLength)
	copy(key, "this-is-a-32-byte-test-key-....!")
	plaintext := []byte("dear diary")

	ciphertext, nonce, err := Encrypt(key, plaintext)
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}
	if bytes.Contains(ciphertext, plaintext) {
		t.Error("ciphertext contains plaintext")
	}

	got, err := Decrypt(key, ciphertext, nonce)
	if err != nil {
		t.Fatalf("Decrypt failed: %v", err)
	}
	if !bytes.Equal(got, plaintext) {
		t.Errorf("round trip = %q, want %q", got, plaintext)
	}
}

func TestDecryptRejectsTampering(t *testing.T) {
	key := make([]byte, KeyLength)
	ciphertext, nonce, err := Encrypt(key, []byte("dear diary"))
	if err != nil {
		t.Fatal(err)
	}

	ciphertext[0] ^= 0xff
	if _, err := Decrypt(key, ciphertext, nonce); err != ErrDecryptionFailed {
		t.Errorf("expected ErrDecryptionFailed, got %v", err)
	}
}

func TestEncryptRejectsBadKey(t *testing.T) {
	if _, _, err := Encrypt([]byte("short"), []byte("x")); err != ErrInvalidKeyLength {
		t.Errorf("expected ErrInvalidKeyLength, got %v", err)
	}
}

func TestDecryptRejectsBadNonce(t *testing.T) {
	key := make([]byte, KeyLength)
	if _, err := Decrypt(key, []byte("some ciphertext..."), []byte("bad")); err != ErrInvalidNonceLength {
		t.Errorf("expected ErrInvalidNonceLength, got %v", err)
	}
}

func TestSecureWipe(t *testing.T) {
	b := []byte("sensitive")
	SecureWipe(b)
	for i, v := range b {
		if v != 0 {
			t.Fatalf("byte %d not zeroed", i)
		}
	}
}
