package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
)

// ReadCSV parses a table from CSV data. The first record is the header;
// empty header fields are kept as unnamed columns at their original
// position so callers can drop them explicitly. Cells are stored as
// strings, except empty cells which become nil.
func ReadCSV(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	var rows [][]any
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row %d: %w", len(rows)+1, err)
		}
		row := make([]any, len(rec))
		for i, cell := range rec {
			if cell == "" {
				row[i] = nil
			} else {
				row[i] = cell
			}
		}
		rows = append(rows, row)
	}

	return New(header, rows)
}
