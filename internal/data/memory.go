package data

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"

	"go.uber.org/zap"
)

// MemoryLoader reads every record up front. Suited to a single session.
type MemoryLoader struct {
	data   map[string][]Record
	logger *zap.Logger
}

func NewMemoryLoader(path string, logger *zap.Logger) (*MemoryLoader, error) {
	files, err := jsonlFiles(path)
	if err != nil {
		return nil, err
	}

	loader := &MemoryLoader{
		data:   make(map[string][]Record),
		logger: logger,
	}

	for _, f := range files {
		records, err := loader.loadJSONL(f)
		if err != nil {
			logger.Warn("failed to load file", zap.String("path", f), zap.Error(err))
			continue
		}
		if len(records) == 0 {
			continue
		}

		key := SeriesKey(f)
		loader.data[key] = records
		logger.Info("loaded records",
			zap.String("key", key),
			zap.Int("count", len(records)),
		)
	}

	if len(loader.data) == 0 {
		return nil, fmt.Errorf("no records loaded from %s", path)
	}
	return loader, nil
}

func (m *MemoryLoader) loadJSONL(path string) ([]Record, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var records []Record
	scanner := bufio.NewScanner(file)

	// full chains make long lines
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 8*1024*1024)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var rec Record
		if err := json.Unmarshal(line, &rec); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}
		records = append(records, rec)
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

func (m *MemoryLoader) GetAtIndex(ctx context.Context, key string, index int) (*Record, error) {
	records, ok := m.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	if index < 0 || index >= len(records) {
		return nil, ErrIndexOutOfBounds
	}
	return &records[index], nil
}

func (m *MemoryLoader) GetLength(key string) (int, error) {
	records, ok := m.data[key]
	if !ok {
		return 0, ErrNotFound
	}
	return len(records), nil
}

func (m *MemoryLoader) Keys() []string {
	return sortedKeys(m.data)
}

func (m *MemoryLoader) Close() error {
	m.data = nil
	return nil
}

var _ RecordLoader = (*MemoryLoader)(nil)
