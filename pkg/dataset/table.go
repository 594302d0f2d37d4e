package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// FromCSV builds a dataset from a column table: the header row names the
// groups and each following row contributes at most one sample per group.
// Blank cells are skipped so groups may have different lengths.
func FromCSV(r io.Reader, meta Metadata) (*Dataset, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	return fromRows(rows, meta)
}

// FromXLSX builds a dataset from one sheet of a workbook, laid out like
// [FromCSV]. An empty sheet name selects the first sheet.
func FromXLSX(path, sheet string, meta Metadata) (*Dataset, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("workbook %s has no sheets", path)
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	return fromRows(rows, meta)
}

func fromRows(rows [][]string, meta Metadata) (*Dataset, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("table is empty")
	}

	header := rows[0]
	ds := New(meta)
	for _, name := range header {
		ds.Groups = append(ds.Groups, Group{Name: strings.TrimSpace(name)})
	}

	for r, row := range rows[1:] {
		for c, cell := range row {
			cell = strings.TrimSpace(cell)
			if cell == "" {
				continue
			}
			if c >= len(ds.Groups) {
				return nil, fmt.Errorf("row %d: %d cells but header has %d columns", r+2, len(row), len(header))
			}
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, fmt.Errorf("row %d, column %q: %q is not a number", r+2, ds.Groups[c].Name, cell)
			}
			ds.Groups[c].Values = append(ds.Groups[c].Values, v)
		}
	}
	return ds, nil
}
