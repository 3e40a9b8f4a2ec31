// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/datasheet-engine/internal/render"
	"github.com/pdiddy/datasheet-engine/internal/workspace"
)

var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "List the templates in the templates directory",
	Long: `Templates lists the .docx templates found in the templates directory
together with the placeholders each one uses. Templates that fail to parse
are listed with their error.`,
	Args: cobra.NoArgs,
	RunE: runTemplates,
}

func init() {
	templatesCmd.Flags().String("dir", "", "templates directory (default: render.templates_dir)")
	templatesCmd.Flags().Bool("json", false, "output as JSON")

	rootCmd.AddCommand(templatesCmd)
}

type templateEntry struct {
	workspace.TemplateInfo
	Placeholders *render.Placeholders `json:"placeholders,omitempty"`
	Error        string               `json:"error,omitempty"`
}

func runTemplates(cmd *cobra.Command, args []string) error {
	bindFlags(cmd.Flags(), map[string]string{"dir": "render.templates_dir"})
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	infos, err := workspace.ListTemplates(cfg.Render.TemplatesDir)
	if err != nil {
		return err
	}

	entries := make([]templateEntry, 0, len(infos))
	for _, info := range infos {
		e := templateEntry{TemplateInfo: info}
		tpl, err := loadTemplate(info.Path)
		if err != nil {
			e.Error = err.Error()
		} else {
			ph := tpl.Placeholders()
			e.Placeholders = &ph
		}
		entries = append(entries, e)
	}

	asJSON, _ := cmd.Flags().GetBool("json")
	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}
	for _, e := range entries {
		if e.Error != "" {
			fmt.Printf("%-30s invalid: %s\n", e.Name, e.Error)
			continue
		}
		p := e.Placeholders
		fmt.Printf("%-30s %d fields, %d conditionals, %d loops, %d row loops\n",
			e.Name, len(p.Scalars), len(p.Conditionals), len(p.Loops), len(p.RowLoops))
	}
	fmt.Printf("\n%d template(s) in %s\n", len(entries), cfg.Render.TemplatesDir)
	return nil
}
