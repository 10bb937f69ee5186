package config

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/skobkin/topgroup/internal/report"
)

// Config represents runtime configuration sourced from environment variables
// and command-line flags.
type Config struct {
	LogLevel slog.Level
	ProcRoot string
	MaxPIDs  int
	Report   ReportConfig
}

// ReportConfig controls how the snapshot is rendered.
type ReportConfig struct {
	Format   report.Format
	SortBy   report.SortKey
	Reverse  bool
	Top      int
	ShowPIDs bool
}

// Load parses configuration from environment variables, applying defaults.
func Load() (Config, error) {
	cfg := Config{
		LogLevel: slog.LevelWarn,
		ProcRoot: "/proc",
		MaxPIDs:  0,
		Report: ReportConfig{
			Format: report.FormatText,
			SortBy: report.SortByMemory,
		},
	}

	if value := strings.TrimSpace(os.Getenv("APP_LOG_LEVEL")); value != "" {
		level, err := parseLogLevel(value)
		if err != nil {
			return Config{}, fmt.Errorf("parse APP_LOG_LEVEL: %w", err)
		}
		cfg.LogLevel = level
	}

	if value := strings.TrimSpace(os.Getenv("APP_PROC_ROOT")); value != "" {
		cfg.ProcRoot = value
	}

	if value := strings.TrimSpace(os.Getenv("APP_PROC_MAX_PIDS")); value != "" {
		maxPIDs, err := strconv.Atoi(value)
		if err != nil {
			return Config{}, fmt.Errorf("parse APP_PROC_MAX_PIDS: %w", err)
		}
		if maxPIDs < 0 {
			return Config{}, fmt.Errorf("APP_PROC_MAX_PIDS must be >= 0")
		}
		cfg.MaxPIDs = maxPIDs
	}

	if value := strings.TrimSpace(os.Getenv("APP_FORMAT")); value != "" {
		format, err := report.ParseFormat(value)
		if err != nil {
			return Config{}, fmt.Errorf("parse APP_FORMAT: %w", err)
		}
		cfg.Report.Format = format
	}

	if value := strings.TrimSpace(os.Getenv("APP_SORT")); value != "" {
		key, err := report.ParseSortKey(value)
		if err != nil {
			return Config{}, fmt.Errorf("parse APP_SORT: %w", err)
		}
		cfg.Report.SortBy = key
	}

	if value := strings.TrimSpace(os.Getenv("APP_REVERSE")); value != "" {
		reverse, err := strconv.ParseBool(value)
		if err != nil {
			return Config{}, fmt.Errorf("parse APP_REVERSE: %w", err)
		}
		cfg.Report.Reverse = reverse
	}

	if value := strings.TrimSpace(os.Getenv("APP_TOP")); value != "" {
		top, err := strconv.Atoi(value)
		if err != nil {
			return Config{}, fmt.Errorf("parse APP_TOP: %w", err)
		}
		if top < 0 {
			return Config{}, fmt.Errorf("APP_TOP must be >= 0")
		}
		cfg.Report.Top = top
	}

	if value := strings.TrimSpace(os.Getenv("APP_SHOW_PIDS")); value != "" {
		show, err := strconv.ParseBool(value)
		if err != nil {
			return Config{}, fmt.Errorf("parse APP_SHOW_PIDS: %w", err)
		}
		cfg.Report.ShowPIDs = show
	}

	return cfg, nil
}

// RegisterFlags binds command-line flags to cfg. Current values become the
// flag defaults, so flags override the environment.
func (cfg *Config) RegisterFlags(fs *flag.FlagSet) {
	fs.Func("log-level", "Log level: debug, info, warn, error (default "+levelName(cfg.LogLevel)+")", func(value string) error {
		level, err := parseLogLevel(value)
		if err != nil {
			return err
		}
		cfg.LogLevel = level
		return nil
	})
	fs.StringVar(&cfg.ProcRoot, "proc", cfg.ProcRoot, "Path to procfs root")
	fs.IntVar(&cfg.MaxPIDs, "max-pids", cfg.MaxPIDs, "Read at most this many processes (0 = all)")
	fs.Func("format", "Output format: text, json, yaml, prometheus (default "+string(cfg.Report.Format)+")", func(value string) error {
		format, err := report.ParseFormat(value)
		if err != nil {
			return err
		}
		cfg.Report.Format = format
		return nil
	})
	fs.Func("sort", "Sort groups by: memory, resident, shared, count, name (default "+string(cfg.Report.SortBy)+")", func(value string) error {
		key, err := report.ParseSortKey(value)
		if err != nil {
			return err
		}
		cfg.Report.SortBy = key
		return nil
	})
	fs.BoolVar(&cfg.Report.Reverse, "reverse", cfg.Report.Reverse, "List the largest groups last")
	fs.IntVar(&cfg.Report.Top, "top", cfg.Report.Top, "Show only the first N groups (0 = all)")
	fs.BoolVar(&cfg.Report.ShowPIDs, "pids", cfg.Report.ShowPIDs, "Include per-process figures")
}

// Validate checks values that flags may have changed after Load.
func (cfg Config) Validate() error {
	if strings.TrimSpace(cfg.ProcRoot) == "" {
		return fmt.Errorf("proc root must not be empty")
	}
	if cfg.MaxPIDs < 0 {
		return fmt.Errorf("max pids must be >= 0")
	}
	if cfg.Report.Top < 0 {
		return fmt.Errorf("top must be >= 0")
	}
	if _, err := report.ParseFormat(string(cfg.Report.Format)); err != nil {
		return err
	}
	if _, err := report.ParseSortKey(string(cfg.Report.SortBy)); err != nil {
		return err
	}
	return nil
}

func parseLogLevel(input string) (slog.Level, error) {
	switch strings.ToUpper(strings.TrimSpace(input)) {
	case "DEBUG":
		return slog.LevelDebug, nil
	case "INFO":
		return slog.LevelInfo, nil
	case "WARN", "WARNING":
		return slog.LevelWarn, nil
	case "ERROR":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unsupported log level %q", input)
	}
}

func levelName(level slog.Level) string {
	return strings.ToLower(level.String())
}
