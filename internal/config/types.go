package config

import (
	"sort"
	"strings"
)

// ValidDataModes selects how recordings are read during replay.
var ValidDataModes = map[string]bool{"memory": true, "stream": true}

// ValidCacheModes selects what replay does at the end of a recording.
var ValidCacheModes = map[string]bool{"exhaust": true, "rotation": true}

var ValidPriorities = map[string]bool{
	"min": true, "low": true, "default": true, "high": true, "urgent": true,
}

var ValidLogLevels = map[string]bool{
	"debug": true, "info": true, "warn": true, "error": true,
}

func keys(m map[string]bool) string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return strings.Join(out, ", ")
}
