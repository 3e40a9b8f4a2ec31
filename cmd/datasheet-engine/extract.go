// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/datasheet-engine/internal/workspace"
	"github.com/pdiddy/datasheet-engine/pkg/types"
)

var extractCmd = &cobra.Command{
	Use:   "extract [document]",
	Short: "Print the canonical record extracted from a datasheet",
	Long: `Extract parses a datasheet, segments it into sections and prints the
canonical record as YAML (or JSON with --json). Sections that could not be
found are reported as warnings on stderr.`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	extractCmd.Flags().Bool("json", false, "output the record as JSON")
	extractCmd.Flags().Bool("spans", false, "include the detected section spans")
	addOverrideFlags(extractCmd)

	rootCmd.AddCommand(extractCmd)
}

// addOverrideFlags registers the identity override flags on cmd.
func addOverrideFlags(cmd *cobra.Command) {
	cmd.Flags().String("kit-name", "", "override the extracted kit name")
	cmd.Flags().String("catalog", "", "override the catalog number")
	cmd.Flags().String("lot", "", "override the lot number")
}

var overrideKeys = map[string]string{
	"kit-name": "overrides.kit_name",
	"catalog":  "overrides.catalog_number",
	"lot":      "overrides.lot_number",
}

func runExtract(cmd *cobra.Command, args []string) error {
	bindFlags(cmd.Flags(), overrideKeys)
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	p, err := newPipeline(cfg, nil)
	if err != nil {
		return err
	}

	data, err := workspace.DirSource{}.Read(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	ex, err := p.Extract(data, args[0], cfg.Overrides)
	if err != nil {
		return err
	}
	for _, w := range ex.Warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}

	withSpans, _ := cmd.Flags().GetBool("spans")
	out := struct {
		Record types.CanonicalRecord `json:"record" yaml:"record"`
		Spans  []types.SectionSpan   `json:"spans,omitempty" yaml:"spans,omitempty"`
	}{Record: ex.Record}
	if withSpans {
		out.Spans = ex.Spans
	}

	asJSON, _ := cmd.Flags().GetBool("json")
	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}
	enc := yaml.NewEncoder(os.Stdout)
	enc.SetIndent(2)
	defer enc.Close()
	return enc.Encode(out)
}
