package secrets

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Config holds the at-rest encryption settings.
type Config struct {
	// Key is a passphrase; the AES-256 key is its SHA-256 digest. Empty disables encryption.
	Key string `mapstructure:"key" default:""`
}

// sealedPrefix marks values produced by Seal so they are never mistaken for plaintext.
const sealedPrefix = "enc:v1:"

// ErrNoKey is returned when a value must be sealed or opened without a configured key.
var ErrNoKey = errors.New("secrets: no encryption key configured")

// Box encrypts and decrypts short secrets with AES-256-GCM.
type Box struct {
	key []byte // 32 bytes for AES-256
}

// NewBox derives a Box from cfg. A nil Box is returned when no key is configured.
func NewBox(cfg Config) *Box {
	if cfg.Key == "" {
		return nil
	}
	hash := sha256.Sum256([]byte(cfg.Key))
	return &Box{key: hash[:]}
}

// Enabled reports whether the box can seal values.
func (b *Box) Enabled() bool {
	return b != nil && len(b.key) == 32
}

// Seal encrypts plaintext and returns "enc:v1:" + base64(nonce || ciphertext).
func (b *Box) Seal(plaintext string) (string, error) {
	if !b.Enabled() {
		return "", ErrNoKey
	}

	gcm, err := b.gcm()
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	sealed := gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return sealedPrefix + base64.StdEncoding.EncodeToString(sealed), nil
}

// Open decrypts a value produced by Seal.
func (b *Box) Open(value string) (string, error) {
	if !IsSealed(value) {
		return "", fmt.Errorf("secrets: value is not sealed")
	}
	if !b.Enabled() {
		return "", ErrNoKey
	}

	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(value, sealedPrefix))
	if err != nil {
		return "", fmt.Errorf("failed to decode sealed value: %w", err)
	}

	gcm, err := b.gcm()
	if err != nil {
		return "", err
	}

	nonceSize := gcm.NonceSize()
	if len(raw) < nonceSize {
		return "", fmt.Errorf("ciphertext too short")
	}

	nonce, ciphertext := raw[:nonceSize], raw[nonceSize:]
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("failed to decrypt: %w", err)
	}
	return string(plaintext), nil
}

// IsSealed reports whether value carries the sealed marker.
func IsSealed(value string) bool {
	return strings.HasPrefix(value, sealedPrefix)
}

func (b *Box) gcm() (cipher.AEAD, error) {
	block, err := aes.NewCipher(b.key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return gcm, nil
}
