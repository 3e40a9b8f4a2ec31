// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package segment

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/datasheet-engine/pkg/types"
)

//go:embed sections.yaml
var defaultSections []byte

// Entry declares how one section is recognised and normalized.
type Entry struct {
	Key          types.SectionKey `yaml:"key"`
	Shape        types.Shape      `yaml:"shape"`
	Aliases      []string         `yaml:"aliases"`
	StopSentence string           `yaml:"stop_sentence,omitempty"`
}

// Table is a validated alias table. Aliases are stored normalized.
type Table struct {
	entries []Entry
	byKey   map[types.SectionKey]int
	aliases []alias
}

type alias struct {
	text string
	key  types.SectionKey
}

type tableFile struct {
	Sections []Entry `yaml:"sections"`
}

// DefaultTable returns the built-in alias table.
func DefaultTable() *Table {
	t, err := ReadTable(bytes.NewReader(defaultSections))
	if err != nil {
		panic(fmt.Sprintf("built-in section table: %v", err))
	}
	return t
}

// LoadTable reads an alias table from a YAML file.
func LoadTable(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening section table: %w", err)
	}
	defer f.Close()

	t, err := ReadTable(f)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return t, nil
}

// ReadTable decodes and validates an alias table.
func ReadTable(r io.Reader) (*Table, error) {
	var tf tableFile
	if err := yaml.NewDecoder(r).Decode(&tf); err != nil {
		return nil, fmt.Errorf("decoding section table: %w", err)
	}
	return NewTable(tf.Sections)
}

// NewTable validates entries and builds the alias index. Every entry needs
// a vocabulary key, a known shape and at least one alias, and no alias may
// belong to two keys.
func NewTable(entries []Entry) (*Table, error) {
	if len(entries) == 0 {
		return nil, errors.New("section table is empty")
	}

	t := &Table{byKey: make(map[types.SectionKey]int, len(entries))}
	owner := map[string]types.SectionKey{}
	for _, e := range entries {
		if !e.Key.Valid() {
			return nil, fmt.Errorf("unknown section key %q", e.Key)
		}
		if !e.Shape.Valid() {
			return nil, fmt.Errorf("section %s: unknown shape %q", e.Key, e.Shape)
		}
		if _, dup := t.byKey[e.Key]; dup {
			return nil, fmt.Errorf("section %s declared twice", e.Key)
		}
		if len(e.Aliases) == 0 {
			return nil, fmt.Errorf("section %s has no aliases", e.Key)
		}

		norm := make([]string, 0, len(e.Aliases))
		for _, a := range e.Aliases {
			n := NormalizeHeading(a)
			if n == "" {
				return nil, fmt.Errorf("section %s: empty alias", e.Key)
			}
			if prev, ok := owner[n]; ok && prev != e.Key {
				return nil, fmt.Errorf("alias %q registered for both %s and %s", a, prev, e.Key)
			}
			owner[n] = e.Key
			norm = append(norm, n)
			t.aliases = append(t.aliases, alias{text: n, key: e.Key})
		}
		e.Aliases = norm
		e.StopSentence = collapseSpace(e.StopSentence)
		t.byKey[e.Key] = len(t.entries)
		t.entries = append(t.entries, e)
	}
	return t, nil
}

// Entry returns the declaration for key.
func (t *Table) Entry(key types.SectionKey) (Entry, bool) {
	i, ok := t.byKey[key]
	if !ok {
		return Entry{}, false
	}
	return t.entries[i], true
}

// Shape returns the normalization shape for key, narrative when unknown.
func (t *Table) Shape(key types.SectionKey) types.Shape {
	if e, ok := t.Entry(key); ok {
		return e.Shape
	}
	return types.ShapeNarrative
}

// Keys returns the declared keys in table order.
func (t *Table) Keys() []types.SectionKey {
	out := make([]types.SectionKey, len(t.entries))
	for i, e := range t.entries {
		out[i] = e.Key
	}
	return out
}

// exact returns the key whose alias equals the normalized text.
func (t *Table) exact(norm string) (types.SectionKey, bool) {
	for _, a := range t.aliases {
		if a.text == norm {
			return a.key, true
		}
	}
	return "", false
}

// prefix returns the key of the longest alias the normalized text starts
// with at a word boundary. Equal lengths resolve to the alias registered
// first.
func (t *Table) prefix(norm string) (types.SectionKey, bool) {
	best := -1
	for i, a := range t.aliases {
		if !hasWordPrefix(norm, a.text) {
			continue
		}
		if best < 0 || len(a.text) > len(t.aliases[best].text) {
			best = i
		}
	}
	if best < 0 {
		return "", false
	}
	return t.aliases[best].key, true
}
