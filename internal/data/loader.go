package data

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

var (
	ErrNotFound         = errors.New("data not found")
	ErrIndexOutOfBounds = errors.New("index out of bounds")
	ErrExhausted        = errors.New("replay exhausted")
)

// RecordLoader provides random access to recorded snapshots. Each JSONL file
// is one series keyed by its base name, usually the session date.
type RecordLoader interface {
	// GetAtIndex returns the record at the given index of a series
	GetAtIndex(ctx context.Context, key string, index int) (*Record, error)

	// GetLength returns the number of records in a series
	GetLength(key string) (int, error)

	// Keys returns the loaded series in ascending order
	Keys() []string

	// Close releases any resources
	Close() error
}

// SeriesKey derives the series key of a JSONL file: data/2025-11-14.jsonl
// becomes "2025-11-14".
func SeriesKey(path string) string {
	return strings.TrimSuffix(filepath.Base(path), ".jsonl")
}

// jsonlFiles returns path itself when it is a file, or every .jsonl file
// below it when it is a directory.
func jsonlFiles(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	var files []string
	err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && filepath.Ext(p) == ".jsonl" {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking data directory: %w", err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no JSONL files found in %s", path)
	}
	return files, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
