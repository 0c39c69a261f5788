package crypto

import (
	"encoding/base64"
	"testing"

	"github.com/dqplatform/dq-engine/internal/domain"
)

func testKey() string {
	return base64.StdEncoding.EncodeToString(make([]byte, 32))
}

func TestSealOpenRoundTrip(t *testing.T) {
	box, err := NewBox(testKey())
	if err != nil {
		t.Fatalf("new box: %v", err)
	}

	original := map[string]any{
		"host":     "db.internal",
		"port":     float64(5432),
		"database": "warehouse",
	}

	sealed, err := box.Seal(original, domain.ConnectionPostgreSQL)
	if err != nil {
		t.Fatalf("seal: %v", err)
	}

	opened, err := box.Open(sealed)
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	for k, v := range original {
		if opened[k] != v {
			t.Errorf("field %s: got %v, want %v", k, opened[k], v)
		}
	}
	if opened["connection_type"] != string(domain.ConnectionPostgreSQL) {
		t.Errorf("connection_type not re-injected: got %v", opened["connection_type"])
	}
}

func TestOpenRejectsTamperedCiphertext(t *testing.T) {
	box, err := NewBox(testKey())
	if err != nil {
		t.Fatalf("new box: %v", err)
	}

	sealed, err := box.Seal(map[string]any{"host": "a"}, domain.ConnectionMySQL)
	if err != nil {
		t.Fatalf("seal: %v", err)
	}
	sealed[len(sealed)-1] ^= 0xFF

	if _, err := box.Open(sealed); err == nil {
		t.Error("expected decryption of tampered ciphertext to fail")
	}
}
