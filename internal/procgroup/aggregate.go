package procgroup

import (
	"errors"
	"iter"
)

// Record is one process as read from the process table. Nil figures mean the
// value could not be obtained.
type Record struct {
	PID        int
	Name       Name
	ResidentKB *uint64
	SharedKB   *uint64
}

// Stats counts how the records of one aggregation were handled.
type Stats struct {
	Records      int `json:"records" yaml:"records"`
	Aggregated   int `json:"aggregated" yaml:"aggregated"`
	Incomplete   int `json:"incomplete" yaml:"incomplete"`
	Inconsistent int `json:"inconsistent" yaml:"inconsistent"`
	Replaced     int `json:"replaced" yaml:"replaced"`
}

// Skipped returns the number of records that did not contribute to any group.
func (s Stats) Skipped() int {
	return s.Incomplete + s.Inconsistent
}

// Aggregate folds records into a Snapshot in a single pass.
//
// Records without a name, a valid pid or both memory figures are skipped, as
// are records whose shared figure exceeds the resident one. If a pid shows up
// twice the later record wins.
func Aggregate(records iter.Seq[Record]) (Snapshot, Stats) {
	groups := make(map[Name]*Group)
	var stats Stats

	for rec := range records {
		stats.Records++

		if rec.Name == "" || rec.PID <= 0 || rec.ResidentKB == nil || rec.SharedKB == nil {
			stats.Incomplete++
			continue
		}

		usage, err := NewUsage(*rec.ResidentKB, *rec.SharedKB)
		if err != nil {
			if errors.Is(err, ErrSharedExceedsResident) {
				stats.Inconsistent++
			}
			continue
		}

		g, ok := groups[rec.Name]
		if !ok {
			g = newGroup()
			groups[rec.Name] = g
		}
		if g.add(rec.PID, usage) {
			stats.Replaced++
		}
		stats.Aggregated++
	}

	return Snapshot{groups: groups}, stats
}
