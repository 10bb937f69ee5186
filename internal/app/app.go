// Package app wires up and runs a single snapshot.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"golang.org/x/term"

	"github.com/skobkin/topgroup/internal/config"
	"github.com/skobkin/topgroup/internal/procgroup"
	"github.com/skobkin/topgroup/internal/procscan"
	"github.com/skobkin/topgroup/internal/report"
)

// columns taken by everything but the NAME column in the text table
const textFixedColumns = 42

const minNameWidth = 12

// Run reads the process table once, groups it and writes the report to out.
func Run(ctx context.Context, baseLogger *slog.Logger, cfg config.Config, out io.Writer) error {
	appLogger := baseLogger.With("component", "app")

	collector, err := procscan.NewCollector(cfg.ProcRoot, cfg.MaxPIDs, baseLogger.With("component", "procscan"))
	if err != nil {
		return fmt.Errorf("init collector: %w", err)
	}

	started := time.Now()
	records, err := collector.Records(ctx)
	if err != nil {
		return fmt.Errorf("scan processes: %w", err)
	}
	snap, stats := procgroup.Aggregate(records)
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("scan interrupted: %w", err)
	}

	appLogger.Debug("snapshot aggregated",
		"groups", snap.Len(),
		"records", stats.Records,
		"aggregated", stats.Aggregated,
		"skipped", stats.Skipped(),
		"incomplete", stats.Incomplete,
		"inconsistent", stats.Inconsistent,
		"replaced", stats.Replaced,
		"elapsed", time.Since(started),
	)
	if stats.Inconsistent > 0 {
		appLogger.Warn("skipped processes reporting more shared than resident memory", "count", stats.Inconsistent)
	}

	rep := report.Build(snap, stats, report.Options{
		SortBy:   cfg.Report.SortBy,
		Reverse:  cfg.Report.Reverse,
		Top:      cfg.Report.Top,
		ShowPIDs: cfg.Report.ShowPIDs,
	}, started)

	if err := report.Write(out, cfg.Report.Format, rep, textOptions(out)); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// textOptions fits the NAME column to the terminal when out is one.
func textOptions(out io.Writer) report.TextOptions {
	f, ok := out.(*os.File)
	if !ok {
		return report.TextOptions{}
	}
	fd := int(f.Fd())
	if !term.IsTerminal(fd) {
		return report.TextOptions{}
	}
	width, _, err := term.GetSize(fd)
	if err != nil || width <= 0 {
		return report.TextOptions{}
	}
	return report.TextOptions{MaxNameWidth: max(width-textFixedColumns, minNameWidth)}
}
