package report

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/skobkin/topgroup/internal/api"
)

// Message converts the report to its serialized document.
func Message(rep Report) api.SnapshotMessage {
	groups := make([]api.GroupMessage, 0, len(rep.Rows))
	for _, row := range rep.Rows {
		group := api.GroupMessage{
			Name:      row.Name.Display(),
			Processes: row.Processes,
			Usage:     api.NewUsageMessage(row.Usage),
		}
		for _, p := range row.PIDs {
			group.PIDs = append(group.PIDs, api.ProcessMessage{
				PID:   p.PID,
				Usage: api.NewUsageMessage(p.Usage),
			})
		}
		groups = append(groups, group)
	}
	return api.NewSnapshotMessage(rep.Timestamp, groups, rep.Groups, rep.Processes, rep.Totals, rep.Stats)
}

// WriteJSON writes the report as indented JSON.
func WriteJSON(w io.Writer, rep Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(Message(rep)); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}

// WriteYAML writes the report as a YAML document.
func WriteYAML(w io.Writer, rep Report) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(Message(rep)); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	return nil
}
