package core

import (
	"testing"
)

// TestNewIDUniqueness tests that NewID generates unique identifiers
func TestNewIDUniqueness(t *testing.T) {
	const numIDs = 10000

	ids := make(map[ID]bool, numIDs)
	for i := 0; i < numIDs; i++ {
		id := NewID()
		if id.IsEmpty() {
			t.Errorf("Generated empty ID at iteration %d", i)
		}
		if ids[id] {
			t.Errorf("Generated duplicate ID: %s", id)
		}
		ids[id] = true
	}

	if len(ids) != numIDs {
		t.Errorf("Expected %d unique IDs, got %d", numIDs, len(ids))
	}
}

// TestIDString tests ID string conversion
func TestIDString(t *testing.T) {
	id := ID("test-123")
	if id.String() != "test-123" {
		t.Errorf("Expected String() to return 'test-123', got '%s'", id.String())
	}
}

// TestIDIsEmpty tests ID emptiness check
func TestIDIsEmpty(t *testing.T) {
	emptyID := ID("")
	if !emptyID.IsEmpty() {
		t.Error("Expected empty ID to be empty")
	}

	nonEmptyID := ID("not-empty")
	if nonEmptyID.IsEmpty() {
		t.Error("Expected non-empty ID to not be empty")
	}
}

// TestParseDatasetKey tests dataset key parsing
func TestParseDatasetKey(t *testing.T) {
	if _, err := ParseDatasetKey(""); err == nil {
		t.Error("Expected error for empty dataset key")
	}
	if _, err := ParseDatasetKey("   "); err == nil {
		t.Error("Expected error for whitespace dataset key")
	}

	key, err := ParseDatasetKey("roaches")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if key.String() != "roaches" {
		t.Errorf("Expected 'roaches', got '%s'", key)
	}
}

// TestComputeFingerprintDeterminism verifies fingerprints are stable and order-sensitive
func TestComputeFingerprintDeterminism(t *testing.T) {
	a := ComputeFingerprint("poisson", "roach1,treatment,senior")
	b := ComputeFingerprint("poisson", "roach1,treatment,senior")
	if !a.Equals(b) {
		t.Error("Same parts should produce the same fingerprint")
	}

	c := ComputeFingerprint("roach1,treatment,senior", "poisson")
	if a.Equals(c) {
		t.Error("Reordered parts should produce a different fingerprint")
	}
}
