package encryption

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
)

// Algorithm represents supported encryption algorithms.
type Algorithm string

const (
	// AlgorithmChaCha20 is ChaCha20-Poly1305, the default.
	AlgorithmChaCha20 Algorithm = "chacha20-poly1305"
	// AlgorithmAESGCM is AES-256-GCM.
	AlgorithmAESGCM Algorithm = "aes-256-gcm"
)

// Sealer encrypts and authenticates strings.
type Sealer struct {
	aead cipher.AEAD
}

// New creates a Sealer keyed by SHA-256(passphrase). An empty algorithm
// selects ChaCha20-Poly1305.
func New(passphrase string, alg Algorithm) (*Sealer, error) {
	key := sha256.Sum256([]byte(passphrase))

	var (
		aead cipher.AEAD
		err  error
	)
	switch alg {
	case "", AlgorithmChaCha20:
		aead, err = chacha20poly1305.New(key[:])
	case AlgorithmAESGCM:
		var block cipher.Block
		block, err = aes.NewCipher(key[:])
		if err == nil {
			aead, err = cipher.NewGCM(block)
		}
	default:
		return nil, fmt.Errorf("unsupported algorithm %q", alg)
	}
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", alg, err)
	}
	return &Sealer{aead: aead}, nil
}

// NewRandom creates a Sealer with a fresh random key. Anything it seals is
// unreadable once the process exits.
func NewRandom() (*Sealer, error) {
	buf := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, buf); err != nil {
		return nil, fmt.Errorf("generate key: %w", err)
	}
	return New(base64.StdEncoding.EncodeToString(buf), AlgorithmChaCha20)
}

// Seal encrypts plaintext, binding it to aad. The same aad must be passed to Open.
func (s *Sealer) Seal(plaintext, aad string) (string, error) {
	nonce := make([]byte, s.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}
	ciphertext := s.aead.Seal(nonce, nonce, []byte(plaintext), []byte(aad))
	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

// Open decrypts a value produced by Seal with the same aad.
func (s *Sealer) Open(sealed, aad string) (string, error) {
	data, err := base64.StdEncoding.DecodeString(sealed)
	if err != nil {
		return "", fmt.Errorf("decode base64: %w", err)
	}
	nonceSize := s.aead.NonceSize()
	if len(data) < nonceSize {
		return "", fmt.Errorf("ciphertext too short")
	}
	plaintext, err := s.aead.Open(nil, data[:nonceSize], data[nonceSize:], []byte(aad))
	if err != nil {
		return "", fmt.Errorf("decrypt: %w", err)
	}
	return string(plaintext), nil
}
