// Package procgroup groups per-process memory figures by executable name.
package procgroup

import (
	"errors"
	"fmt"
	"iter"
)

// ErrSharedExceedsResident reports a record whose shared figure is larger than
// its resident figure.
var ErrSharedExceedsResident = errors.New("shared memory exceeds resident memory")

// Usage holds memory figures in kilobytes.
type Usage struct {
	// Memory is Resident minus Shared.
	Memory   uint64 `json:"memory_kb" yaml:"memory_kb"`
	Resident uint64 `json:"resident_kb" yaml:"resident_kb"`
	Shared   uint64 `json:"shared_kb" yaml:"shared_kb"`
}

// NewUsage derives a Usage from resident and shared kilobytes.
func NewUsage(residentKB, sharedKB uint64) (Usage, error) {
	if sharedKB > residentKB {
		return Usage{}, fmt.Errorf("%w: resident=%d kB shared=%d kB", ErrSharedExceedsResident, residentKB, sharedKB)
	}
	return Usage{
		Memory:   residentKB - sharedKB,
		Resident: residentKB,
		Shared:   sharedKB,
	}, nil
}

// Add returns the field-wise sum of u and other.
func (u Usage) Add(other Usage) Usage {
	return Usage{
		Memory:   u.Memory + other.Memory,
		Resident: u.Resident + other.Resident,
		Shared:   u.Shared + other.Shared,
	}
}

// Sum folds usages starting from the zero Usage.
func Sum(usages ...Usage) Usage {
	var total Usage
	for _, u := range usages {
		total = total.Add(u)
	}
	return total
}

// SumSeq is Sum over a sequence.
func SumSeq(usages iter.Seq[Usage]) Usage {
	var total Usage
	for u := range usages {
		total = total.Add(u)
	}
	return total
}
