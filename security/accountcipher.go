package security

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"os"
	"strings"
)

// EncryptedField is an AES-GCM encrypted value stored as base64(nonce||ciphertext).
// Bank account numbers are only ever persisted in this form; the plaintext is
// recovered exclusively at withdrawal dispatch via Decrypt.
type EncryptedField string

// AccountCipherKey loads the 32-byte encryption key from the environment.
func AccountCipherKey() ([]byte, error) {
	encoded := os.Getenv("ACCOUNT_CIPHER_KEY")
	if encoded == "" {
		return nil, errors.New("ACCOUNT_CIPHER_KEY environment variable is required")
	}
	key, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, errors.New("ACCOUNT_CIPHER_KEY must be base64-encoded")
	}
	if len(key) != 32 {
		return nil, errors.New("ACCOUNT_CIPHER_KEY must decode to 32 bytes")
	}
	return key, nil
}

// EncryptAccountNumber encrypts a plaintext account number.
func EncryptAccountNumber(key []byte, plaintext string) (EncryptedField, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return "", err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}
	sealed := gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return EncryptedField(base64.StdEncoding.EncodeToString(sealed)), nil
}

// Decrypt recovers the plaintext account number. Only the withdrawal
// dispatch path may call this; display paths use MaskedLastFour.
func (f EncryptedField) Decrypt(key []byte) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(string(f))
	if err != nil {
		return "", errors.New("corrupt encrypted field")
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return "", err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}
	if len(raw) < gcm.NonceSize() {
		return "", errors.New("corrupt encrypted field")
	}
	plaintext, err := gcm.Open(nil, raw[:gcm.NonceSize()], raw[gcm.NonceSize():], nil)
	if err != nil {
		return "", errors.New("account number decryption failed")
	}
	return string(plaintext), nil
}

// MaskedLastFour returns the display form of an account number, masking all
// but the final four digits.
func MaskedLastFour(accountNumber string) string {
	trimmed := strings.TrimSpace(accountNumber)
	if len(trimmed) <= 4 {
		return trimmed
	}
	return strings.Repeat("*", len(trimmed)-4) + trimmed[len(trimmed)-4:]
}
