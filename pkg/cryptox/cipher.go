package cryptox

import (
	"bytes"
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

// KeySize is the AES-256 key length in bytes.
const KeySize = 32

const envelopeSeparator = ":"

var (
	// ErrDecryption reports an envelope that could not be opened.
	ErrDecryption = errors.New("cryptox: decryption failed")

	// ErrEmptyKey is returned when a cipher is built without key material.
	ErrEmptyKey = errors.New("cryptox: encryption key is empty")
)

// DeriveKey turns externally supplied key material into an AES-256 key.
// Exactly 32 bytes are used as-is, longer input is truncated to its first
// 32 bytes and shorter input is replaced by its SHA-256 digest.
func DeriveKey(raw []byte) []byte {
	key := make([]byte, KeySize)

	if len(raw) >= KeySize {
		copy(key, raw[:KeySize])
		return key
	}

	sum := sha256.Sum256(raw)
	copy(key, sum[:])
	return key
}

// CredentialCipher protects stored secrets (the outbound mail password) with
// AES-256-CBC. The key is fixed at construction and only read afterwards, so
// a single instance is safe for concurrent use.
type CredentialCipher struct {
	key []byte
}

// NewCredentialCipher derives the working key from raw once. Empty key
// material is a configuration error.
func NewCredentialCipher(raw []byte) (*CredentialCipher, error) {
	if len(raw) == 0 {
		return nil, ErrEmptyKey
	}
	return &CredentialCipher{key: DeriveKey(raw)}, nil
}

// Encrypt seals plaintext under a fresh random IV and returns the envelope
// base64(iv) + ":" + base64(ciphertext).
func (c *CredentialCipher) Encrypt(plaintext string) (string, error) {
	block, err := aes.NewCipher(c.key)
	if err != nil {
		return "", fmt.Errorf("failed to create cipher: %w", err)
	}

	iv := make([]byte, aes.BlockSize)
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return "", fmt.Errorf("failed to generate iv: %w", err)
	}

	padded := pkcs7Pad([]byte(plaintext), aes.BlockSize)
	ciphertext := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext, padded)

	return base64.StdEncoding.EncodeToString(iv) +
		envelopeSeparator +
		base64.StdEncoding.EncodeToString(ciphertext), nil
}

// Decrypt opens an envelope produced by Encrypt. Every malformed input
// yields an error wrapping ErrDecryption.
func (c *CredentialCipher) Decrypt(envelope string) (string, error) {
	// 1. Split on the first separator only
	ivPart, ctPart, found := strings.Cut(envelope, envelopeSeparator)
	if !found {
		return "", fmt.Errorf("%w: missing separator", ErrDecryption)
	}

	// 2. Decode both halves
	iv, err := base64.StdEncoding.DecodeString(ivPart)
	if err != nil {
		return "", fmt.Errorf("%w: invalid iv encoding", ErrDecryption)
	}
	ciphertext, err := base64.StdEncoding.DecodeString(ctPart)
	if err != nil {
		return "", fmt.Errorf("%w: invalid ciphertext encoding", ErrDecryption)
	}

	// 3. Check shape before touching the block cipher
	if len(iv) != aes.BlockSize {
		return "", fmt.Errorf("%w: iv must be %d bytes", ErrDecryption, aes.BlockSize)
	}
	if len(ciphertext) == 0 || len(ciphertext)%aes.BlockSize != 0 {
		return "", fmt.Errorf("%w: ciphertext is not block aligned", ErrDecryption)
	}

	block, err := aes.NewCipher(c.key)
	if err != nil {
		return "", fmt.Errorf("failed to create cipher: %w", err)
	}

	// 4. Decrypt and strip padding
	plain := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plain, ciphertext)

	plain, err = pkcs7Unpad(plain, aes.BlockSize)
	if err != nil {
		return "", err
	}
	return string(plain), nil
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	n := blockSize - len(data)%blockSize
	return append(data, bytes.Repeat([]byte{byte(n)}, n)...)
}

func pkcs7Unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty plaintext", ErrDecryption)
	}

	n := int(data[len(data)-1])
	if n == 0 || n > blockSize || n > len(data) {
		return nil, fmt.Errorf("%w: invalid padding", ErrDecryption)
	}
	for _, b := range data[len(data)-n:] {
		if int(b) != n {
			return nil, fmt.Errorf("%w: invalid padding", ErrDecryption)
		}
	}
	return data[:len(data)-n], nil
}
