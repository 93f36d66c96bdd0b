// Package excel loads observation tables from xlsx or CSV files, as an
// alternative to the built-in reference dataset. Excel files are read from
// Sheet1 with a header row; CSV files use the same header convention.
package excel

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"gopsis/domain/core"
	"gopsis/domain/dataset"
	"gopsis/internal"
	"gopsis/ports"
)

// requiredColumns are the survey fields every file must carry
var requiredColumns = []string{"y", "roach1", "treatment", "senior", "exposure2"}

// DataReader handles reading Excel and CSV observation files
type DataReader struct {
	filePath string
	fileType string // "xlsx" or "csv"
	log      *internal.Logger
}

// NewDataReader creates a reader that handles both Excel and CSV files
func NewDataReader(filePath string) *DataReader {
	ext := strings.ToLower(filepath.Ext(filePath))
	fileType := "xlsx"
	if ext == ".csv" {
		fileType = "csv"
	}
	return &DataReader{filePath: filePath, fileType: fileType, log: internal.DefaultLogger}
}

var _ ports.DatasetSource = (*DataReader)(nil)

// Load reads the file into an observation table named by the given key,
// applying the roach1 hundreds rescale exactly once. Files are expected to
// carry raw pre-treatment counts.
func (r *DataReader) Load(name string) (*dataset.Table, error) {
	r.log.Info("[DataReader] Reading %s file: %s", r.fileType, r.filePath)

	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: file %s", core.ErrDatasetNotFound, r.filePath)
	}

	var rows [][]string
	var err error
	switch r.fileType {
	case "csv":
		rows, err = r.readCSVRows()
	default:
		rows, err = r.readExcelRows()
	}
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("%w: %s must have a header row and at least one data row",
			core.ErrInsufficientData, r.filePath)
	}

	obs, err := r.processRows(rows)
	if err != nil {
		return nil, err
	}
	for i := range obs {
		obs[i].Roach1 /= 100
	}

	r.log.Info("[DataReader] Loaded %d observations from %s", len(obs), r.filePath)
	return dataset.NewTable(core.DatasetKey(name), obs)
}

func (r *DataReader) readExcelRows() ([][]string, error) {
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Sheet1")
	if err != nil {
		return nil, fmt.Errorf("failed to read Sheet1: %w", err)
	}
	return rows, nil
}

func (r *DataReader) readCSVRows() ([][]string, error) {
	file, err := os.Open(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	rows, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV file: %w", err)
	}
	return rows, nil
}

// processRows maps header names to columns and parses each data row
func (r *DataReader) processRows(rows [][]string) ([]dataset.Observation, error) {
	colIdx := make(map[string]int, len(rows[0]))
	for i, header := range rows[0] {
		colIdx[strings.ToLower(strings.TrimSpace(header))] = i
	}
	for _, col := range requiredColumns {
		if _, ok := colIdx[col]; !ok {
			return nil, fmt.Errorf("%w: missing column %q", core.ErrInsufficientData, col)
		}
	}

	obs := make([]dataset.Observation, 0, len(rows)-1)
	for rowNum, row := range rows[1:] {
		cell := func(col string) string {
			idx := colIdx[col]
			if idx >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[idx])
		}

		y, err := strconv.Atoi(cell("y"))
		if err != nil {
			return nil, fmt.Errorf("row %d: bad count %q: %w", rowNum+2, cell("y"), err)
		}
		roach1, err := strconv.ParseFloat(cell("roach1"), 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: bad roach1 %q: %w", rowNum+2, cell("roach1"), err)
		}
		treatment, err := parseIndicator(cell("treatment"))
		if err != nil {
			return nil, fmt.Errorf("row %d: bad treatment: %w", rowNum+2, err)
		}
		senior, err := parseIndicator(cell("senior"))
		if err != nil {
			return nil, fmt.Errorf("row %d: bad senior: %w", rowNum+2, err)
		}
		exposure2, err := strconv.ParseFloat(cell("exposure2"), 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: bad exposure2 %q: %w", rowNum+2, cell("exposure2"), err)
		}

		obs = append(obs, dataset.Observation{
			Y:         y,
			Roach1:    roach1,
			Treatment: treatment,
			Senior:    senior,
			Exposure2: exposure2,
		})
	}
	return obs, nil
}

func parseIndicator(s string) (int, error) {
	switch s {
	case "0":
		return 0, nil
	case "1":
		return 1, nil
	default:
		return 0, fmt.Errorf("indicator must be 0 or 1, got %q", s)
	}
}
