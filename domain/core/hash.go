package core

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// Hash represents a cryptographic hash
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

// Equals checks if two hashes are equal
func (h Hash) Equals(other Hash) bool {
	return h == other
}

// ComputeFingerprint builds a deterministic hash over ordered parts.
// Used to fingerprint datasets and fit configurations for audit logs.
func ComputeFingerprint(parts ...string) Hash {
	var data strings.Builder
	for _, p := range parts {
		data.WriteString(p)
		data.WriteString("|")
	}
	return NewHash([]byte(data.String()))
}

// ComputeFloatFingerprint hashes a float column deterministically.
func ComputeFloatFingerprint(name string, values []float64) Hash {
	var data strings.Builder
	data.WriteString(name)
	for _, v := range values {
		data.WriteString(fmt.Sprintf("|%.12g", v))
	}
	return NewHash([]byte(data.String()))
}
