// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package batch

import (
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/datasheet-engine/pkg/types"
)

// Manifest is the on-disk list of jobs for a batch run. Defaults apply to
// every job that leaves an override empty.
type Manifest struct {
	Defaults types.Overrides `yaml:"defaults"`
	Jobs     []ManifestJob   `yaml:"jobs"`
}

// ManifestJob is one entry of a manifest.
type ManifestJob struct {
	ID     string `yaml:"id,omitempty"`
	Source string `yaml:"source"`

	types.Overrides `yaml:",inline"`
}

// LoadManifest reads a YAML manifest and returns its jobs.
func LoadManifest(path string) ([]types.Job, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest %s: %w", path, err)
	}
	jobs := make([]types.Job, 0, len(m.Jobs))
	for i, j := range m.Jobs {
		if j.Source == "" {
			return nil, fmt.Errorf("manifest %s: job %d has no source", path, i+1)
		}
		jobs = append(jobs, types.Job{
			ID:        j.ID,
			Source:    j.Source,
			Overrides: WithDefaults(j.Overrides, m.Defaults),
		})
	}
	return jobs, nil
}

// WithDefaults fills the empty fields of ov from def.
func WithDefaults(ov, def types.Overrides) types.Overrides {
	if ov.KitName == "" {
		ov.KitName = def.KitName
	}
	if ov.CatalogNumber == "" {
		ov.CatalogNumber = def.CatalogNumber
	}
	if ov.LotNumber == "" {
		ov.LotNumber = def.LotNumber
	}
	return ov
}

// JobsFor returns one job per source, all sharing ov.
func JobsFor(sources []string, ov types.Overrides) []types.Job {
	jobs := make([]types.Job, len(sources))
	for i, s := range sources {
		jobs[i] = types.Job{Source: s, Overrides: ov}
	}
	return jobs
}
