package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
)

type ServerConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Addr      string `mapstructure:"addr"`
	WSEnabled bool   `mapstructure:"ws_enabled"`
}

var recordingPattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}\.jsonl$`)

// LatestRecording returns the newest non-empty {date}.jsonl in dir.
func LatestRecording(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("reading record directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !recordingPattern.MatchString(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err == nil && info.Size() > 0 {
			names = append(names, entry.Name())
		}
	}

	if len(names) == 0 {
		return "", fmt.Errorf("no recordings found in %s", dir)
	}

	// YYYY-MM-DD sorts lexicographically
	sort.Sort(sort.Reverse(sort.StringSlice(names)))

	return filepath.Join(dir, names[0]), nil
}
