// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package mapper

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/pdiddy/datasheet-engine/pkg/types"
)

// Scrubber removes manufacturer boilerplate and rebrands extracted text.
// It is immutable after construction.
type Scrubber struct {
	disabled     bool
	boilerplate  []*regexp.Regexp
	replacements []types.Replacement
	symbols      []string
}

// NewScrubber compiles cfg. An invalid boilerplate pattern is an error.
func NewScrubber(cfg types.ScrubConfig) (*Scrubber, error) {
	s := &Scrubber{
		disabled:     cfg.Disabled,
		replacements: append([]types.Replacement(nil), cfg.Replacements...),
		symbols:      append([]string(nil), cfg.RemoveSymbols...),
	}
	for _, p := range cfg.Boilerplate {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("compiling boilerplate pattern %q: %w", p, err)
		}
		s.boilerplate = append(s.boilerplate, re)
	}
	return s, nil
}

// Apply cleans s line by line: boilerplate is removed first, then brand
// replacements and symbol removal run in configured order, and finally
// whitespace is collapsed and emptied lines are dropped.
func (s *Scrubber) Apply(text string) string {
	if s == nil || s.disabled || text == "" {
		return text
	}
	for _, re := range s.boilerplate {
		text = re.ReplaceAllString(text, "")
	}
	for _, r := range s.replacements {
		if r.From != "" {
			text = strings.ReplaceAll(text, r.From, r.To)
		}
	}
	for _, sym := range s.symbols {
		if sym != "" {
			text = strings.ReplaceAll(text, sym, "")
		}
	}

	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.Join(strings.Fields(line), " "); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

// ApplyAll cleans every item and drops items left empty.
func (s *Scrubber) ApplyAll(items []string) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		if v := s.Apply(it); v != "" {
			out = append(out, v)
		}
	}
	return out
}
