// Package report orders grouped snapshots and writes them in several formats.
package report

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnknownFormat is returned for unsupported output formats.
	ErrUnknownFormat = errors.New("unknown output format")
	// ErrUnknownSortKey is returned for unsupported sort keys.
	ErrUnknownSortKey = errors.New("unknown sort key")
)

// Format selects the output encoding.
type Format string

const (
	FormatText       Format = "text"
	FormatJSON       Format = "json"
	FormatYAML       Format = "yaml"
	FormatPrometheus Format = "prometheus"
)

// ParseFormat parses a case-insensitive format name.
func ParseFormat(value string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(value))) {
	case FormatText, "table":
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	case FormatYAML, "yml":
		return FormatYAML, nil
	case FormatPrometheus, "prom":
		return FormatPrometheus, nil
	default:
		return "", fmt.Errorf("%w %q", ErrUnknownFormat, value)
	}
}

// SortKey selects the figure groups are ordered by.
type SortKey string

const (
	SortByMemory   SortKey = "memory"
	SortByResident SortKey = "resident"
	SortByShared   SortKey = "shared"
	SortByCount    SortKey = "count"
	SortByName     SortKey = "name"
)

// ParseSortKey parses a case-insensitive sort key.
func ParseSortKey(value string) (SortKey, error) {
	switch SortKey(strings.ToLower(strings.TrimSpace(value))) {
	case SortByMemory, "private":
		return SortByMemory, nil
	case SortByResident, "rss":
		return SortByResident, nil
	case SortByShared:
		return SortByShared, nil
	case SortByCount, "procs":
		return SortByCount, nil
	case SortByName:
		return SortByName, nil
	default:
		return "", fmt.Errorf("%w %q", ErrUnknownSortKey, value)
	}
}

// Options controls row selection and ordering.
type Options struct {
	SortBy SortKey
	// Reverse lists the largest groups last.
	Reverse  bool
	Top      int
	ShowPIDs bool
}
