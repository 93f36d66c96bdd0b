package ports

import (
	"gopsis/domain/dataset"
)

// DatasetSource loads a named observation table. Implementations include
// the built-in reference dataset and file-backed (xlsx/csv) sources.
type DatasetSource interface {
	Load(name string) (*dataset.Table, error)
}
