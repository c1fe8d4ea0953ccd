// Package tokens implements the opaque bearer credential format. A credential
// is "<tokenID>|<secret>"; the secret is shown to the client exactly once and
// only its sha256 digest is persisted.
package tokens

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"strconv"
	"strings"
)

var ErrInvalidToken = errors.New("invalid access token")

const secretBytes = 20

// NewSecret returns a fresh random secret (40 hex characters).
func NewSecret() (string, error) {
	buf := make([]byte, secretBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func Sha256Hex(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// Compose builds the plaintext credential handed to the client.
func Compose(id uint, secret string) string {
	return strconv.FormatUint(uint64(id), 10) + "|" + secret
}

// Parse splits a presented credential into token id and secret. Every malformed
// shape fails with the same ErrInvalidToken.
func Parse(plaintext string) (uint, string, error) {
	idPart, secret, ok := strings.Cut(plaintext, "|")
	if !ok || secret == "" {
		return 0, "", ErrInvalidToken
	}
	id, err := strconv.ParseUint(idPart, 10, 32)
	if err != nil || id == 0 {
		return 0, "", ErrInvalidToken
	}
	return uint(id), secret, nil
}

// VerifySecret compares a presented secret against the stored digest.
func VerifySecret(secret, storedHash string) bool {
	digest := Sha256Hex(secret)
	return subtle.ConstantTimeCompare([]byte(digest), []byte(storedHash)) == 1
}
