package report

import (
	"fmt"
	"io"
)

// Write renders rep in the given format.
func Write(w io.Writer, format Format, rep Report, opts TextOptions) error {
	switch format {
	case FormatText, "":
		return WriteText(w, rep, opts)
	case FormatJSON:
		return WriteJSON(w, rep)
	case FormatYAML:
		return WriteYAML(w, rep)
	case FormatPrometheus:
		return WritePrometheus(w, rep)
	default:
		return fmt.Errorf("%w %q", ErrUnknownFormat, format)
	}
}
