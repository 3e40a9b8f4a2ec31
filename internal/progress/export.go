// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package progress

import (
	"encoding/json"
	"fmt"
	"io"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/datasheet-engine/pkg/types"
)

// RunStatus is a snapshot of one run prepared for export.
type RunStatus struct {
	RunID string           `json:"run_id" yaml:"run_id"`
	Jobs  []types.JobEvent `json:"jobs" yaml:"jobs"`
}

// Counts tallies the jobs of the snapshot by status.
func (r RunStatus) Counts() map[types.JobStatus]int {
	out := make(map[types.JobStatus]int)
	for _, ev := range r.Jobs {
		out[ev.Status]++
	}
	return out
}

// Export writes a run snapshot to w as "yaml", "json" or "text".
func Export(w io.Writer, r RunStatus, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		return nil
	case "yaml":
		data, err := yaml.Marshal(r)
		if err != nil {
			return fmt.Errorf("marshaling YAML: %w", err)
		}
		_, err = w.Write(data)
		return err
	case "", "text":
		fmt.Fprintf(w, "run %s\n", r.RunID)
		for _, ev := range r.Jobs {
			switch {
			case ev.Error != "":
				fmt.Fprintf(w, "%-10s %s (%s)\n", ev.Status, ev.Source, ev.Error)
			case ev.Output != "":
				fmt.Fprintf(w, "%-10s %s -> %s\n", ev.Status, ev.Source, ev.Output)
			default:
				fmt.Fprintf(w, "%-10s %s\n", ev.Status, ev.Source)
			}
		}
		c := r.Counts()
		fmt.Fprintf(w, "\nRun summary: %d completed, %d failed, %d skipped, %d pending (total: %d)\n",
			c[types.JobCompleted], c[types.JobFailed], c[types.JobSkipped],
			c[types.JobQueued]+c[types.JobProcessing], len(r.Jobs))
		return nil
	}
	return fmt.Errorf("unknown format %q", format)
}
