package crypto

import (
	"bytes"
	"testing"
)

func TestEncryptDecryptMap(t *testing.T) {
	secret := "unit-test-secret"
	values := map[string]string{"OPENAI_API_KEY": "sk-test", "MODEL": "gpt-4o"}

	sealed, err := EncryptMap(secret, values)
	if err != nil {
		t.Fatalf("EncryptMap: %v", err)
	}
	if bytes.Contains(sealed, []byte("sk-test")) {
		t.Fatalf("ciphertext leaks plaintext")
	}

	opened, err := DecryptMap(secret, sealed)
	if err != nil {
		t.Fatalf("DecryptMap: %v", err)
	}
	if len(opened) != len(values) {
		t.Fatalf("round trip lost entries: %v", opened)
	}
	for k, v := range values {
		if opened[k] != v {
			t.Fatalf("key %s = %q, want %q", k, opened[k], v)
		}
	}
}

func TestEncryptMapEmptyIsNil(t *testing.T) {
	sealed, err := EncryptMap("secret", nil)
	if err != nil || sealed != nil {
		t.Fatalf("EncryptMap(nil) = %v, %v", sealed, err)
	}
	opened, err := DecryptMap("secret", nil)
	if err != nil || opened != nil {
		t.Fatalf("DecryptMap(nil) = %v, %v", opened, err)
	}
}

func TestDecryptWrongSecretFails(t *testing.T) {
	sealed, err := EncryptString("secret-a", "payload")
	if err != nil {
		t.Fatalf("EncryptString: %v", err)
	}
	if _, err := DecryptToString("secret-b", sealed); err == nil {
		t.Fatalf("decrypt with wrong secret must fail")
	}
}

func TestDecryptTamperedPayloadFails(t *testing.T) {
	sealed, err := EncryptString("secret", "payload")
	if err != nil {
		t.Fatalf("EncryptString: %v", err)
	}
	sealed[len(sealed)-1] ^= 0xFF
	if _, err := DecryptToString("secret", sealed); err == nil {
		t.Fatalf("decrypt of tampered payload must fail")
	}
}
