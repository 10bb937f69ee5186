// Package procscan reads per-process memory figures from a procfs mount.
package procscan

import (
	"context"
	"fmt"
	"io"
	"iter"
	"log/slog"

	"github.com/prometheus/procfs"

	"github.com/skobkin/topgroup/internal/procgroup"
)

// DefaultProcRoot is the usual procfs mount point.
const DefaultProcRoot = "/proc"

// Collector lists processes and reads their executable and memory figures.
type Collector struct {
	fs      procfs.FS
	maxPIDs int
	logger  *slog.Logger
}

// NewCollector opens the procfs mount at procRoot. maxPIDs > 0 limits how many
// processes a scan reads.
func NewCollector(procRoot string, maxPIDs int, logger *slog.Logger) (*Collector, error) {
	if procRoot == "" {
		procRoot = DefaultProcRoot
	}
	if maxPIDs < 0 {
		return nil, fmt.Errorf("max pids must be >= 0")
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	fs, err := procfs.NewFS(procRoot)
	if err != nil {
		return nil, fmt.Errorf("open proc root: %w", err)
	}

	return &Collector{
		fs:      fs,
		maxPIDs: maxPIDs,
		logger:  logger,
	}, nil
}

// Records lists the process table and returns a sequence that reads one
// process per step. Processes that vanish or cannot be read produce records
// with the missing parts left empty. Iteration stops early once ctx is done.
func (c *Collector) Records(ctx context.Context) (iter.Seq[procgroup.Record], error) {
	procs, err := c.fs.AllProcs()
	if err != nil {
		return nil, fmt.Errorf("list processes: %w", err)
	}
	if c.maxPIDs > 0 && len(procs) > c.maxPIDs {
		c.logger.Debug("process list truncated", "listed", len(procs), "max_pids", c.maxPIDs)
		procs = procs[:c.maxPIDs]
	}

	return func(yield func(procgroup.Record) bool) {
		for _, proc := range procs {
			if ctx.Err() != nil {
				return
			}
			if !yield(c.read(proc)) {
				return
			}
		}
	}, nil
}

func (c *Collector) read(proc procfs.Proc) procgroup.Record {
	rec := procgroup.Record{PID: proc.PID}

	exe, err := proc.Executable()
	if err != nil {
		c.logger.Debug("failed to resolve executable", "pid", proc.PID, "err", err)
		return rec
	}
	rec.Name = procgroup.NameFromPath(exe)
	if rec.Name == "" {
		// kernel threads have no exe link
		return rec
	}

	status, err := proc.NewStatus()
	if err != nil {
		c.logger.Debug("failed to read status", "pid", proc.PID, "err", err)
		return rec
	}

	// procfs reports status sizes in bytes
	resident := status.VmRSS / 1024
	shared := status.RssShmem / 1024
	rec.ResidentKB = &resident
	rec.SharedKB = &shared
	return rec
}
