package core

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ID represents a domain identifier
type ID string

// NewID creates a new unique identifier using UUID v7 for time-ordered generation
func NewID() ID {
	id, err := uuid.NewV7()
	if err != nil {
		// Fallback to v4 if v7 fails
		id = uuid.New()
	}
	return ID(id.String())
}

// String returns the string representation
func (id ID) String() string {
	return string(id)
}

// IsEmpty checks if the ID is empty
func (id ID) IsEmpty() bool {
	return id == ""
}

// Domain-specific ID types
type (
	FitID      ID
	RunID      ID
	DatasetKey ID
)

// String conversions for domain IDs
func (id FitID) String() string      { return ID(id).String() }
func (id RunID) String() string      { return ID(id).String() }
func (id DatasetKey) String() string { return ID(id).String() }

// NewFitID mints an identifier for a fitted model
func NewFitID() FitID { return FitID(NewID()) }

// NewRunID mints an identifier for a workbench run
func NewRunID() RunID { return RunID(NewID()) }

// ParseDatasetKey parses a string into DatasetKey
func ParseDatasetKey(s string) (DatasetKey, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("dataset key cannot be empty")
	}
	return DatasetKey(s), nil
}
