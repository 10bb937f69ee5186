// Package api defines the serialized shape of a grouped memory snapshot.
package api

import (
	"time"

	"github.com/skobkin/topgroup/internal/procgroup"
	"github.com/skobkin/topgroup/internal/version"
)

// SnapshotMessage is the document written by the json and yaml formats.
type SnapshotMessage struct {
	Type      string          `json:"type" yaml:"type"`
	Version   string          `json:"version" yaml:"version"`
	Timestamp time.Time       `json:"ts" yaml:"ts"`
	Groups    []GroupMessage  `json:"groups" yaml:"groups"`
	Shown     int             `json:"shown" yaml:"shown"`
	Total     int             `json:"total_groups" yaml:"total_groups"`
	Processes int             `json:"processes" yaml:"processes"`
	Totals    UsageMessage    `json:"totals" yaml:"totals"`
	Stats     procgroup.Stats `json:"stats" yaml:"stats"`
}

// NewSnapshotMessage constructs a snapshot payload.
func NewSnapshotMessage(ts time.Time, groups []GroupMessage, totalGroups, processes int, totals procgroup.Usage, stats procgroup.Stats) SnapshotMessage {
	if groups == nil {
		groups = []GroupMessage{}
	}
	return SnapshotMessage{
		Type:      "snapshot",
		Version:   version.Current().Version,
		Timestamp: ts,
		Groups:    groups,
		Shown:     len(groups),
		Total:     totalGroups,
		Processes: processes,
		Totals:    NewUsageMessage(totals),
		Stats:     stats,
	}
}

// GroupMessage describes one process group.
type GroupMessage struct {
	// Name is the executable basename with invalid UTF-8 replaced.
	Name      string           `json:"name" yaml:"name"`
	Processes int              `json:"processes" yaml:"processes"`
	Usage     UsageMessage     `json:"usage" yaml:"usage"`
	PIDs      []ProcessMessage `json:"pids,omitempty" yaml:"pids,omitempty"`
}

// ProcessMessage describes one process.
type ProcessMessage struct {
	PID   int          `json:"pid" yaml:"pid"`
	Usage UsageMessage `json:"usage" yaml:"usage"`
}

// UsageMessage carries usage in kilobytes and bytes.
type UsageMessage struct {
	procgroup.Usage `yaml:",inline"`
	MemoryBytes     uint64 `json:"memory_bytes" yaml:"memory_bytes"`
	ResidentBytes   uint64 `json:"resident_bytes" yaml:"resident_bytes"`
	SharedBytes     uint64 `json:"shared_bytes" yaml:"shared_bytes"`
}

// NewUsageMessage converts kB usage to its serialized form.
func NewUsageMessage(u procgroup.Usage) UsageMessage {
	return UsageMessage{
		Usage:         u,
		MemoryBytes:   u.Memory * 1000,
		ResidentBytes: u.Resident * 1000,
		SharedBytes:   u.Shared * 1000,
	}
}
