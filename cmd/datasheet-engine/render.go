// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/datasheet-engine/internal/batch"
	"github.com/pdiddy/datasheet-engine/internal/workspace"
	"github.com/pdiddy/datasheet-engine/pkg/types"
)

var renderCmd = &cobra.Command{
	Use:   "render [document]",
	Short: "Convert one datasheet into the configured template",
	Long: `Render extracts a datasheet and fills the template with the record. The
output is written to the output directory as {catalog}-{lot}.docx; an
existing file is never replaced, a numeric suffix is added instead.`,
	Args: cobra.ExactArgs(1),
	RunE: runRender,
}

func init() {
	renderCmd.Flags().String("template", "", "template document (default: render.template)")
	renderCmd.Flags().String("output-dir", "", "directory for rendered documents (default: batch.output_dir)")
	addOverrideFlags(renderCmd)

	rootCmd.AddCommand(renderCmd)
}

var renderKeys = map[string]string{
	"template":   "render.template",
	"output-dir": "batch.output_dir",
}

func runRender(cmd *cobra.Command, args []string) error {
	bindFlags(cmd.Flags(), renderKeys)
	bindFlags(cmd.Flags(), overrideKeys)
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	tpl, err := loadTemplate(cfg.Render.Template)
	if err != nil {
		return err
	}
	p, err := newPipeline(cfg, tpl)
	if err != nil {
		return err
	}

	bc := cfg.Batch
	bc.Parallel = false
	bc.MetricsFile = ""
	o := batch.New(bc, p, batch.Deps{
		Source: workspace.DirSource{},
		Sink:   workspace.DirSink{Dir: bc.OutputDir},
		Log:    os.Stderr,
	})
	report := o.Run(cmd.Context(), []types.Job{{Source: args[0], Overrides: cfg.Overrides}})
	if report.HasFailures() {
		return fmt.Errorf("render failed: %s", report.Failed[0].Message)
	}
	for _, s := range report.Succeeded {
		fmt.Println(workspace.DirSink{Dir: bc.OutputDir}.Path(s.Output))
	}
	return nil
}
