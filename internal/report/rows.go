package report

import (
	"cmp"
	"slices"
	"time"

	"github.com/skobkin/topgroup/internal/procgroup"
)

// Row summarises one process group.
type Row struct {
	Name      procgroup.Name
	Processes int
	Usage     procgroup.Usage
	PIDs      []PIDUsage
}

// PIDUsage is the usage of a single process within a group.
type PIDUsage struct {
	PID   int
	Usage procgroup.Usage
}

// Report is an ordered view of a snapshot ready for rendering.
type Report struct {
	Timestamp time.Time
	Rows      []Row
	// Groups is the number of groups before Top was applied.
	Groups    int
	Processes int
	Totals    procgroup.Usage
	Stats     procgroup.Stats
}

// Build orders the groups of snap according to opts.
func Build(snap procgroup.Snapshot, stats procgroup.Stats, opts Options, now time.Time) Report {
	rows := BuildRows(snap, opts)
	processes := 0
	for _, g := range snap.All() {
		processes += g.Len()
	}
	if opts.Top > 0 && len(rows) > opts.Top {
		rows = rows[:opts.Top]
	}
	return Report{
		Timestamp: now.UTC(),
		Rows:      rows,
		Groups:    snap.Len(),
		Processes: processes,
		Totals:    snap.Totals(),
		Stats:     stats,
	}
}

// BuildRows returns one row per group, sorted by opts.SortBy in descending
// order (ascending for names) with ties broken by name. Top is not applied.
func BuildRows(snap procgroup.Snapshot, opts Options) []Row {
	rows := make([]Row, 0, snap.Len())
	for name, g := range snap.All() {
		row := Row{
			Name:      name,
			Processes: g.Len(),
			Usage:     g.Totals(),
		}
		if opts.ShowPIDs {
			pids := g.PIDs()
			row.PIDs = make([]PIDUsage, 0, len(pids))
			for _, pid := range pids {
				usage, _ := g.Usage(pid)
				row.PIDs = append(row.PIDs, PIDUsage{PID: pid, Usage: usage})
			}
		}
		rows = append(rows, row)
	}

	key := opts.SortBy
	if key == "" {
		key = SortByMemory
	}
	slices.SortFunc(rows, func(a, b Row) int {
		c := compareRows(key, a, b)
		if opts.Reverse {
			c = -c
		}
		if c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
	return rows
}

// compareRows returns a negative value when a should be listed before b.
func compareRows(key SortKey, a, b Row) int {
	switch key {
	case SortByResident:
		return cmp.Compare(b.Usage.Resident, a.Usage.Resident)
	case SortByShared:
		return cmp.Compare(b.Usage.Shared, a.Usage.Shared)
	case SortByCount:
		return cmp.Compare(b.Processes, a.Processes)
	case SortByName:
		return cmp.Compare(a.Name, b.Name)
	default:
		return cmp.Compare(b.Usage.Memory, a.Usage.Memory)
	}
}
