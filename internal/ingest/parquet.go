package ingest

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/parquet-go/parquet-go"
)

// readParquet reads every row group of a flat parquet file into rows keyed by column name.
// Nested or repeated columns are keyed by their top-level name; the last leaf value wins.
func readParquet(path string) ([]map[string]any, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer func() { _ = f.Close() }()

	stat, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat: %w", err)
	}

	pf, err := parquet.OpenFile(f, stat.Size())
	if err != nil {
		return nil, fmt.Errorf("open parquet: %w", err)
	}

	paths := pf.Schema().Columns()
	names := make([]string, len(paths))
	for i, p := range paths {
		if len(p) > 0 {
			names[i] = p[0]
		}
	}

	var rows []map[string]any
	buf := make([]parquet.Row, 256)
	for _, rg := range pf.RowGroups() {
		reader := parquet.NewRowGroupReader(rg)
		for {
			n, readErr := reader.ReadRows(buf)
			for i := 0; i < n; i++ {
				rows = append(rows, rowValues(buf[i], names))
			}
			if readErr != nil {
				if errors.Is(readErr, io.EOF) {
					break
				}
				return nil, fmt.Errorf("read rows: %w", readErr)
			}
		}
	}
	return rows, nil
}

func rowValues(row parquet.Row, names []string) map[string]any {
	out := make(map[string]any, len(names))
	for _, v := range row {
		col := v.Column()
		if col < 0 || col >= len(names) || names[col] == "" {
			continue
		}
		out[names[col]] = value(v)
	}
	return out
}

func value(v parquet.Value) any {
	if v.IsNull() {
		return nil
	}
	switch v.Kind() {
	case parquet.Boolean:
		return v.Boolean()
	case parquet.Int32:
		return v.Int32()
	case parquet.Int64:
		return v.Int64()
	case parquet.Float:
		return v.Float()
	case parquet.Double:
		return v.Double()
	case parquet.ByteArray, parquet.FixedLenByteArray:
		return string(v.ByteArray())
	default:
		return v.String()
	}
}
