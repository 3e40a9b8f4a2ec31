// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Replacement is an ordered literal substitution applied to extracted text.
type Replacement struct {
	From string `json:"from" yaml:"from" mapstructure:"from"`
	To   string `json:"to" yaml:"to" mapstructure:"to"`
}

// ScrubConfig controls the clean-up applied to extracted narrative and list text.
type ScrubConfig struct {
	// Disabled turns the scrub off entirely.
	Disabled bool `json:"disabled" yaml:"disabled" mapstructure:"disabled"`

	// Replacements are applied in order, case-sensitively.
	Replacements []Replacement `json:"replacements" yaml:"replacements" mapstructure:"replacements"`

	// RemoveSymbols are stripped wherever they occur (e.g. "®").
	RemoveSymbols []string `json:"remove_symbols" yaml:"remove_symbols" mapstructure:"remove_symbols"`

	// Boilerplate holds regular expressions; every match is removed.
	Boilerplate []string `json:"boilerplate" yaml:"boilerplate" mapstructure:"boilerplate"`
}

// ExtractionConfig holds settings for segmentation, normalization and mapping.
type ExtractionConfig struct {
	// SectionsFile replaces the built-in section alias table when set.
	SectionsFile string `json:"sections_file" yaml:"sections_file" mapstructure:"sections_file"`

	Scrub ScrubConfig `json:"scrub" yaml:"scrub" mapstructure:"scrub"`
}

// RenderConfig holds template settings.
type RenderConfig struct {
	// Template is the path of the template document.
	Template string `json:"template" yaml:"template" mapstructure:"template"`

	// TemplatesDir is scanned by the templates command.
	TemplatesDir string `json:"templates_dir" yaml:"templates_dir" mapstructure:"templates_dir"`
}

// BatchConfig holds settings for the batch orchestrator.
type BatchConfig struct {
	// Workers bounds the number of concurrently processed jobs (default 4).
	Workers int `json:"workers" yaml:"workers" mapstructure:"workers"`

	// Parallel set to false processes jobs one at a time.
	Parallel bool `json:"parallel" yaml:"parallel" mapstructure:"parallel"`

	// OutputDir receives rendered documents.
	OutputDir string `json:"output_dir" yaml:"output_dir" mapstructure:"output_dir"`

	// ProgressDB is an optional SQLite file recording job events.
	ProgressDB string `json:"progress_db" yaml:"progress_db" mapstructure:"progress_db"`

	// MetricsFile is an optional Prometheus textfile written after the run.
	MetricsFile string `json:"metrics_file" yaml:"metrics_file" mapstructure:"metrics_file"`
}

// EffectiveWorkers returns the worker count honouring Parallel.
func (c BatchConfig) EffectiveWorkers() int {
	if !c.Parallel {
		return 1
	}
	if c.Workers < 1 {
		return DefaultWorkers
	}
	return c.Workers
}

// DefaultWorkers is the default batch concurrency.
const DefaultWorkers = 4

// EngineConfig groups every stage configuration.
type EngineConfig struct {
	Extraction ExtractionConfig `json:"extraction" yaml:"extraction" mapstructure:"extraction"`
	Render     RenderConfig     `json:"render" yaml:"render" mapstructure:"render"`
	Batch      BatchConfig      `json:"batch" yaml:"batch" mapstructure:"batch"`
	Overrides  Overrides        `json:"overrides" yaml:"overrides" mapstructure:"overrides"`
}

// DefaultScrub returns the clean-up rules applied when none are configured.
func DefaultScrub() ScrubConfig {
	return ScrubConfig{
		Replacements: []Replacement{
			{From: "Boster Biological Technology", To: "Innovative Research"},
			{From: "Boster Bio", To: "Innovative Research"},
			{From: "Boster", To: "Innovative Research"},
			{From: "PicoKine", To: ""},
		},
		RemoveSymbols: []string{"®", "™", "©"},
		// Each pattern runs to the end of its sentence: a period followed
		// by a space or the end of the line, so URLs stay inside the match.
		Boilerplate: []string{
			`(?im)for more information on assay principle, protocols,? and troubleshooting tips,? see\b.*?(?:\.(?:[ \t]+|$)|$)`,
			`(?im)[^.\n]*\btechnical resource center\b.*?(?:\.(?:[ \t]+|$)|$)`,
			`(?im)\bvisit (?:our|the) (?:website|resource center)\b.*?(?:\.(?:[ \t]+|$)|$)`,
			`(?im)submit a (?:product )?review\b.*?(?:\.(?:[ \t]+|$)|$)`,
			`(?im)[^.\n]*amazon gift card.*?(?:\.(?:[ \t]+|$)|$)`,
			`(?im)[^.\n]*biocompare.*?(?:\.(?:[ \t]+|$)|$)`,
			`(?im)[^.\n]*offers an easy-to-use online elisa data analysis tool\.?(\s*try it out at[^\s]*\s*\S*)?`,
		},
	}
}

// DefaultEngineConfig returns the configuration used when no file or flag
// sets a value.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		Extraction: ExtractionConfig{Scrub: DefaultScrub()},
		Render:     RenderConfig{TemplatesDir: "templates"},
		Batch: BatchConfig{
			Workers:   DefaultWorkers,
			Parallel:  true,
			OutputDir: "output",
		},
	}
}
