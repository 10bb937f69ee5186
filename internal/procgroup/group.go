package procgroup

import (
	"iter"
	"maps"
	"slices"
)

// Group collects the processes sharing one executable name.
type Group struct {
	pidToUsage map[int]Usage
	totals     Usage
}

func newGroup() *Group {
	return &Group{pidToUsage: make(map[int]Usage)}
}

// add records usage for pid and reports whether an earlier entry was replaced.
func (g *Group) add(pid int, usage Usage) bool {
	_, replaced := g.pidToUsage[pid]
	g.pidToUsage[pid] = usage
	if replaced {
		g.totals = SumSeq(maps.Values(g.pidToUsage))
		return true
	}
	g.totals = g.totals.Add(usage)
	return false
}

// PIDToUsage returns a copy of the per-process figures.
func (g *Group) PIDToUsage() map[int]Usage {
	return maps.Clone(g.pidToUsage)
}

// Usage returns the figures recorded for pid.
func (g *Group) Usage(pid int) (Usage, bool) {
	u, ok := g.pidToUsage[pid]
	return u, ok
}

// PIDs returns the group's process IDs in ascending order.
func (g *Group) PIDs() []int {
	return slices.Sorted(maps.Keys(g.pidToUsage))
}

// Len returns the number of processes in the group.
func (g *Group) Len() int {
	return len(g.pidToUsage)
}

// Totals returns the sum over all processes in the group.
func (g *Group) Totals() Usage {
	return g.totals
}

// Snapshot maps executable names to their process groups. It is produced by
// Aggregate and never modified afterwards.
type Snapshot struct {
	groups map[Name]*Group
}

// Group returns the group for name.
func (s Snapshot) Group(name Name) (*Group, bool) {
	g, ok := s.groups[name]
	return g, ok
}

// Names returns all group names in byte-wise ascending order.
func (s Snapshot) Names() []Name {
	return slices.Sorted(maps.Keys(s.groups))
}

// Len returns the number of groups.
func (s Snapshot) Len() int {
	return len(s.groups)
}

// All iterates groups in name order.
func (s Snapshot) All() iter.Seq2[Name, *Group] {
	return func(yield func(Name, *Group) bool) {
		for _, name := range s.Names() {
			if !yield(name, s.groups[name]) {
				return
			}
		}
	}
}

// Totals returns the sum of every group's totals.
func (s Snapshot) Totals() Usage {
	var total Usage
	for _, g := range s.groups {
		total = total.Add(g.totals)
	}
	return total
}
