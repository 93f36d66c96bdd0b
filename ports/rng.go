package ports

import (
	"golang.org/x/exp/rand"
)

// RNG provides seeded random number generation for deterministic
// operations. Streams are keyed by operation name and index so each
// sampler chain and each predictive simulation gets an independent,
// reproducible source.
type RNG interface {
	// Stream creates a deterministic generator for a named operation.
	// The same (name, index, seed) triple always yields the same stream.
	Stream(name string, index int, seed uint64) *rand.Rand
}
