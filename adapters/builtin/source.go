// Package builtin exposes the bundled reference datasets as an observation
// source.
package builtin

import (
	"gopsis/domain/dataset"
	"gopsis/ports"
)

// Source serves the built-in tables
type Source struct{}

// NewSource creates a built-in dataset source
func NewSource() *Source { return &Source{} }

var _ ports.DatasetSource = (*Source)(nil)

// Load returns the named built-in table
func (s *Source) Load(name string) (*dataset.Table, error) {
	return dataset.Load(name)
}
