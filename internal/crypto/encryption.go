// Package crypto seals Connection configuration bags at rest.
//
// The original Python platform used Fernet (AES-128-CBC + HMAC) from the
// `cryptography` package. Go's standard library has no Fernet implementation
// worth vendoring for a single call site, so this is reimplemented with
// stdlib AES-256-GCM: also authenticated encryption, one ecosystem-standard
// primitive instead of a bespoke format, no additional dependency.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"

	"github.com/dqplatform/dq-engine/internal/domain"
)

// Box seals and opens Connection.EncryptedConfig using a single process-wide
// AES-256-GCM key, loaded once at startup from config.EncryptionKey.
type Box struct {
	aead cipher.AEAD
}

// NewBox decodes a base64-encoded 32-byte key and constructs a Box.
func NewBox(base64Key string) (*Box, error) {
	key, err := base64.StdEncoding.DecodeString(base64Key)
	if err != nil {
		return nil, fmt.Errorf("decode encryption key: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("encryption key must be 32 bytes, got %d", len(key))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("new cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("new gcm: %w", err)
	}

	return &Box{aead: aead}, nil
}

// Seal encrypts a connection config bag, re-injecting connection_type into
// the plaintext before sealing (so Open can hand it back).
func (b *Box) Seal(config map[string]any, connType domain.ConnectionType) ([]byte, error) {
	withType := make(map[string]any, len(config)+1)
	for k, v := range config {
		withType[k] = v
	}
	withType["connection_type"] = string(connType)

	plaintext, err := json.Marshal(withType)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}

	nonce := make([]byte, b.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("read nonce: %w", err)
	}

	return b.aead.Seal(nonce, nonce, plaintext, nil), nil
}

// Open decrypts a sealed config bag back to its original map, including the
// re-injected connection_type key: encrypt-then-decrypt round-trips.
func (b *Box) Open(sealed []byte) (map[string]any, error) {
	nonceSize := b.aead.NonceSize()
	if len(sealed) < nonceSize {
		return nil, fmt.Errorf("sealed config too short")
	}
	nonce, ciphertext := sealed[:nonceSize], sealed[nonceSize:]

	plaintext, err := b.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("decrypt config: %w", err)
	}

	var config map[string]any
	if err := json.Unmarshal(plaintext, &config); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return config, nil
}
