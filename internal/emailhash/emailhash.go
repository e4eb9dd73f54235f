// Package emailhash maps email addresses to deterministic keyed hashes so
// users can be looked up without storing plaintext addresses.
package emailhash

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Hasher computes HMAC-SHA256 over normalized addresses. The key comes from
// configuration, not a compiled-in constant, so it can be rotated per
// deployment.
type Hasher struct {
	key []byte
}

func NewHasher(key []byte) *Hasher {
	return &Hasher{key: key}
}

// normalize trims and lowercases so the same logical address always maps to
// the same hash.
func normalize(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (h *Hasher) Hash(email string) string {
	mac := hmac.New(sha256.New, h.key)
	mac.Write([]byte(normalize(email)))
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify recomputes the hash and compares in constant time.
func (h *Hasher) Verify(email, hash string) bool {
	return hmac.Equal([]byte(h.Hash(email)), []byte(hash))
}
