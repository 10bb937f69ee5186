package report

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"unicode"
	"unicode/utf8"

	"github.com/dustin/go-humanize"

	"github.com/skobkin/topgroup/internal/procgroup"
)

// TextOptions tunes the text table.
type TextOptions struct {
	// MaxNameWidth truncates group names longer than this many runes; 0 disables.
	MaxNameWidth int
}

// KilobytesToBytes converts the kernel's kB figures (multiples of 1000) to bytes.
func KilobytesToBytes(kb uint64) uint64 {
	return kb * 1000
}

// FormatKilobytes renders a kB figure with SI prefixes, e.g. "6.5 MB".
func FormatKilobytes(kb uint64) string {
	return humanize.Bytes(KilobytesToBytes(kb))
}

// WriteText writes the report as an aligned table.
func WriteText(w io.Writer, rep Report, opts TextOptions) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintln(tw, "NAME\tPROCS\tPRIVATE\tRESIDENT\tSHARED")
	for _, row := range rep.Rows {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\n",
			truncateName(row.Name, opts.MaxNameWidth),
			row.Processes,
			FormatKilobytes(row.Usage.Memory),
			FormatKilobytes(row.Usage.Resident),
			FormatKilobytes(row.Usage.Shared),
		)
		for _, p := range row.PIDs {
			fmt.Fprintf(tw, "  pid %d\t\t%s\t%s\t%s\n",
				p.PID,
				FormatKilobytes(p.Usage.Memory),
				FormatKilobytes(p.Usage.Resident),
				FormatKilobytes(p.Usage.Shared),
			)
		}
	}
	fmt.Fprintf(tw, "TOTAL\t%d\t%s\t%s\t%s\n",
		rep.Processes,
		FormatKilobytes(rep.Totals.Memory),
		FormatKilobytes(rep.Totals.Resident),
		FormatKilobytes(rep.Totals.Shared),
	)
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("write table: %w", err)
	}

	if len(rep.Rows) < rep.Groups {
		if _, err := fmt.Fprintf(w, "showing %d of %d groups\n", len(rep.Rows), rep.Groups); err != nil {
			return fmt.Errorf("write footer: %w", err)
		}
	}
	return nil
}

func truncateName(name procgroup.Name, width int) string {
	// control characters would break table alignment
	display := strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return '?'
		}
		return r
	}, name.Display())
	if width <= 0 || utf8.RuneCountInString(display) <= width {
		return display
	}
	if width == 1 {
		return "…"
	}
	runes := []rune(display)
	return string(runes[:width-1]) + "…"
}
