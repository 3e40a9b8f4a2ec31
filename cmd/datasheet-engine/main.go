// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the datasheet-engine CLI.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/pdiddy/datasheet-engine/internal/convert"
	"github.com/pdiddy/datasheet-engine/internal/render"
	"github.com/pdiddy/datasheet-engine/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the datasheet-engine CLI.
var rootCmd = &cobra.Command{
	Use:   "datasheet-engine",
	Short: "Convert assay kit datasheets into branded templates",
	Long: `datasheet-engine reads manufacturer assay datasheets (.docx), extracts a
canonical record of the kit (identity, reagents, protocol, standard curve,
precision) and renders it into a house-style .docx template.

Subcommands: extract prints the record, render converts one document,
batch converts many concurrently, templates lists available templates and
status shows the job states of the last batch run.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		envFile, _ := cmd.Flags().GetString("env-file")
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("loading %s: %w", envFile, err)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./datasheet-engine.yaml or ~/.config/datasheet-engine/config.yaml)")
	rootCmd.PersistentFlags().String("env-file", ".env", "environment file loaded before the config is read")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("datasheet-engine")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "datasheet-engine"))
		}
	}

	def := types.DefaultEngineConfig()
	viper.SetDefault("extraction.sections_file", def.Extraction.SectionsFile)
	viper.SetDefault("render.template", def.Render.Template)
	viper.SetDefault("render.templates_dir", def.Render.TemplatesDir)
	viper.SetDefault("batch.workers", def.Batch.Workers)
	viper.SetDefault("batch.parallel", def.Batch.Parallel)
	viper.SetDefault("batch.output_dir", def.Batch.OutputDir)
	viper.SetDefault("batch.progress_db", def.Batch.ProgressDB)
	viper.SetDefault("batch.metrics_file", def.Batch.MetricsFile)
	viper.SetDefault("overrides.kit_name", "")
	viper.SetDefault("overrides.catalog_number", "")
	viper.SetDefault("overrides.lot_number", "")

	viper.SetEnvPrefix("DATASHEET_ENGINE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// bindFlags maps command flags onto config keys. Only flags set on the
// command line take precedence over the config file.
func bindFlags(flags *pflag.FlagSet, keys map[string]string) {
	for flag, key := range keys {
		f := flags.Lookup(flag)
		if f == nil || !f.Changed {
			continue
		}
		viper.Set(key, f.Value.String())
	}
}

// loadConfig decodes the merged configuration. Scrub rules keep their
// defaults unless the config file sets the scrub section.
func loadConfig() (types.EngineConfig, error) {
	cfg := types.DefaultEngineConfig()
	if err := viper.Unmarshal(&cfg); err != nil {
		return types.EngineConfig{}, fmt.Errorf("decoding config: %w", err)
	}
	return cfg, nil
}

// loadTemplate parses the template document at path.
func loadTemplate(path string) (*render.Template, error) {
	if path == "" {
		return nil, fmt.Errorf("no template configured (use --template or render.template)")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading template: %w", err)
	}
	tpl, err := render.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("template %s: %w", path, err)
	}
	return tpl, nil
}

// newPipeline builds the conversion pipeline from cfg. tpl may be nil for
// extraction only.
func newPipeline(cfg types.EngineConfig, tpl *render.Template) (*convert.Pipeline, error) {
	return convert.NewFromConfig(cfg.Extraction, tpl)
}

func main() {
	// Interrupting a batch stops new jobs; running jobs finish.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
