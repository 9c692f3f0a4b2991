// Package ingest loads a tabular recipe source and normalizes every value to text.
package ingest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/mealmentor/internal/domain/document"
)

// Load reads all rows of a CSV or Parquet source (by file extension) into documents.
// Declared text fields missing from the source are skipped with a warning.
func Load(path string, textFields []string, logger *zap.Logger) ([]document.Document, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var (
		rows []map[string]any
		err  error
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		rows, err = loadCSV(path)
	case ".parquet":
		rows, err = readParquet(path)
	default:
		return nil, fmt.Errorf("unsupported source format %q", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}

	docs := Normalize(rows)
	if len(docs) > 0 {
		for _, f := range textFields {
			if _, ok := docs[0].Get(f); !ok {
				logger.Warn("declared text field absent from source", zap.String("field", f))
			}
		}
	}

	logger.Info("dataset loaded", zap.String("path", path), zap.Int("documents", len(docs)))
	return docs, nil
}

// Normalize converts raw rows into documents, rendering every value with Text.
func Normalize(rows []map[string]any) []document.Document {
	docs := make([]document.Document, 0, len(rows))
	for _, row := range rows {
		fields := make(map[string]string, len(row))
		for k, v := range row {
			fields[k] = Text(v)
		}
		docs = append(docs, document.New(fields))
	}
	return docs
}

func loadCSV(path string) ([]map[string]any, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer func() { _ = f.Close() }()
	return readCSV(f)
}
