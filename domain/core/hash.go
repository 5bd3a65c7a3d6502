package core

import (
	"crypto/sha256"
	"encoding/hex"
	"hash"
	"io"
)

// Hash is a hex-encoded SHA-256 digest
type Hash string

// NewHash creates a new hash from data
func NewHash(data []byte) Hash {
	sum := sha256.Sum256(data)
	return Hash(hex.EncodeToString(sum[:]))
}

// String returns the string representation
func (h Hash) String() string {
	return string(h)
}

// IsEmpty checks if the hash is empty
func (h Hash) IsEmpty() bool {
	return h == ""
}

// Short returns the first 12 hex digits
func (h Hash) Short() string {
	if len(h) <= 12 {
		return string(h)
	}
	return string(h[:12])
}

// Hasher fingerprints a stream as it is read
type Hasher struct {
	r io.Reader
	h hash.Hash
}

// NewHasher wraps r; every byte read through it is hashed
func NewHasher(r io.Reader) *Hasher {
	h := sha256.New()
	return &Hasher{r: io.TeeReader(r, h), h: h}
}

func (h *Hasher) Read(p []byte) (int, error) {
	return h.r.Read(p)
}

// Sum returns the hash of everything read so far
func (h *Hasher) Sum() Hash {
	return Hash(hex.EncodeToString(h.h.Sum(nil)))
}
