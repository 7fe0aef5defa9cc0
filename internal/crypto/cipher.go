package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

var (
	ErrEmptyInput        = errors.New("empty input")
	ErrMalformedEncoding = errors.New("malformed base64 encoding")
	ErrTruncated         = errors.New("blob too short")
	ErrNoCiphertext      = errors.New("no ciphertext in blob")
	ErrAuthFailed        = errors.New("authentication failed")
	ErrIntegrityMismatch = errors.New("integrity digest mismatch")
	ErrInvalidText       = errors.New("decrypted text is not valid UTF-8")

	// ErrInvalidPlaintext rejects input to Encrypt; it is never returned by Decrypt.
	ErrInvalidPlaintext = errors.New("plaintext is not valid UTF-8")
)

// RecordCipher encrypts and decrypts single records under one password.
// Every record carries its own salt, so the key is derived per call.
type RecordCipher struct {
	password []byte
}

// NewRecordCipher creates a cipher bound to a copy of password.
func NewRecordCipher(password []byte) *RecordCipher {
	return &RecordCipher{
		password: append([]byte(nil), password...),
	}
}

// Encrypt seals plaintext into a base64 blob laid out as
// salt(16) | nonce(12) | ciphertext+tag | hex sha256(plaintext)(64).
func (c *RecordCipher) Encrypt(plaintext string) (string, error) {
	if !utf8.ValidString(plaintext) {
		return "", ErrInvalidPlaintext
	}

	salt, err := GenerateRandom(SaltSize)
	if err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}
	nonce, err := GenerateRandom(NonceSize)
	if err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	blob, err := c.seal(salt, nonce, []byte(plaintext))
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(blob), nil
}

// seal builds the raw blob for a given salt and nonce.
func (c *RecordCipher) seal(salt, nonce, plaintext []byte) ([]byte, error) {
	key := DeriveKey(c.password, salt)
	defer ClearBytes(key)

	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	ciphertext := gcm.Seal(nil, nonce, plaintext, nil)
	digest := Digest(plaintext)

	blob := make([]byte, 0, SaltSize+NonceSize+len(ciphertext)+DigestSize)
	blob = append(blob, salt...)
	blob = append(blob, nonce...)
	blob = append(blob, ciphertext...)
	blob = append(blob, digest...)
	return blob, nil
}

// Decrypt opens a blob produced by Encrypt.
func (c *RecordCipher) Decrypt(blob string) (string, error) {
	blob = strings.TrimSpace(blob)
	if blob == "" {
		return "", ErrEmptyInput
	}

	combined, err := base64.StdEncoding.DecodeString(blob)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedEncoding, err)
	}
	if len(combined) < MinBlobSize {
		return "", fmt.Errorf("%w: %d bytes, need at least %d", ErrTruncated, len(combined), MinBlobSize)
	}

	salt := combined[:SaltSize]
	nonce := combined[SaltSize : SaltSize+NonceSize]
	digest := combined[len(combined)-DigestSize:]
	ciphertext := combined[SaltSize+NonceSize : len(combined)-DigestSize]
	if len(ciphertext) == 0 {
		return "", ErrNoCiphertext
	}

	key := DeriveKey(c.password, salt)
	defer ClearBytes(key)

	gcm, err := newGCM(key)
	if err != nil {
		return "", err
	}

	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", ErrAuthFailed
	}

	if !ConstantTimeCompare([]byte(Digest(plaintext)), digest) {
		ClearBytes(plaintext)
		return "", ErrIntegrityMismatch
	}

	if !utf8.Valid(plaintext) {
		ClearBytes(plaintext)
		return "", ErrInvalidText
	}

	return string(plaintext), nil
}

// Destroy clears the cipher's password copy from memory
func (c *RecordCipher) Destroy() {
	ClearBytes(c.password)
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return gcm, nil
}
