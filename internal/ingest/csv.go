package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// readCSV reads a header-first CSV into rows of typed values keyed by column name.
// Column types are inferred across the whole file, mirroring how numeric columns
// are typed in a columnar source.
func readCSV(r io.Reader) ([]map[string]any, error) {
	cr := csv.NewReader(r)
	cr.ReuseRecord = false

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("read header: empty source")
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	for i, h := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}

	var records [][]string
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read record %d: %w", len(records)+1, err)
		}
		records = append(records, rec)
	}

	kinds := make([]columnKind, len(header))
	column := make([]string, len(records))
	for c := range header {
		for i, rec := range records {
			column[i] = rec[c]
		}
		kinds[c] = inferKind(column)
	}

	rows := make([]map[string]any, 0, len(records))
	for _, rec := range records {
		row := make(map[string]any, len(header))
		for c, name := range header {
			row[name] = typed(rec[c], kinds[c])
		}
		rows = append(rows, row)
	}
	return rows, nil
}
