package security

import (
	"strings"
	"testing"
)

func TestEncryptionService_RoundTrip(t *testing.T) {
	svc, err := NewEncryptionService("0123456789abcdef0123456789abcdef")
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	ct, err := svc.Encrypt("7039940998")
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	if strings.Contains(ct, "7039940998") {
		t.Error("ciphertext must not contain the plaintext")
	}

	pt, err := svc.Decrypt(ct)
	if err != nil {
		t.Fatalf("decrypt: %v", err)
	}
	if pt != "7039940998" {
		t.Errorf("roundtrip = %q", pt)
	}

	// nonce is random per message
	ct2, _ := svc.Encrypt("7039940998")
	if ct == ct2 {
		t.Error("two encryptions of the same value must differ")
	}
}

func TestEncryptionService_RejectsBadKeyLength(t *testing.T) {
	if _, err := NewEncryptionService("short"); err == nil {
		t.Fatal("expected an error")
	}
}

func TestEncryptionService_RejectsTamperedCiphertext(t *testing.T) {
	svc, _ := NewEncryptionService("0123456789abcdef")
	ct, _ := svc.Encrypt("7039940998")

	tampered := ct[:len(ct)-4] + "AAAA"
	if _, err := svc.Decrypt(tampered); err == nil {
		t.Fatal("expected an error")
	}
}
