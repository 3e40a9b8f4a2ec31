// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package render fills word-processing templates with canonical records.
//
// Templates use a small Jinja-like syntax: {{ field }} placeholders inside
// runs, paragraph-level {% if %} and {% for %} blocks, and row-level
// {%tr for %} and {%tr if %} blocks inside tables. A template is parsed
// and validated once and may then be rendered concurrently.
package render

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/pdiddy/datasheet-engine/internal/docx"
	"github.com/pdiddy/datasheet-engine/pkg/types"
)

// Placeholders lists the names a template refers to.
type Placeholders struct {
	Scalars      []string `json:"scalars" yaml:"scalars"`
	Conditionals []string `json:"conditionals" yaml:"conditionals"`
	Loops        []string `json:"loops" yaml:"loops"`
	RowLoops     []string `json:"row_loops" yaml:"row_loops"`
}

// Template is a parsed, validated template package. It is immutable.
type Template struct {
	pkg   *docx.Package
	parts []*part
	names Placeholders
}

// part is one rendered XML part of the package.
type part struct {
	name   string
	prefix string
	blocks []block
}

// Result is a rendered document.
type Result struct {
	Bytes []byte

	// Unresolved lists placeholder paths that had no value, sorted.
	Unresolved []string
}

// Parse reads and validates a template package. A package that cannot be
// opened is a *types.MalformedInputError; invalid markup is a
// *types.TemplateSyntaxError.
func Parse(data []byte) (*Template, error) {
	pkg, err := docx.OpenPackage(data)
	if err != nil {
		return nil, err
	}

	t := &Template{pkg: pkg}
	c := newCollector()
	names := append([]string{docx.PartDocument}, pkg.HeaderFooterParts()...)
	for _, name := range names {
		raw, err := pkg.Part(name)
		if err != nil {
			return nil, &types.MalformedInputError{Reason: "reading " + name, Err: err}
		}
		root, err := parseTree(raw)
		if err != nil {
			return nil, &types.MalformedInputError{Reason: "parsing " + name, Err: err}
		}
		p := &part{name: name, prefix: wordPrefix(root)}
		cp := &compiler{part: name, prefix: p.prefix, names: c}
		if p.blocks, err = cp.compileChildren(root, levelParagraph); err != nil {
			return nil, err
		}
		t.parts = append(t.parts, p)
	}
	t.names = c.placeholders()
	return t, nil
}

// Placeholders returns the field names the template refers to.
func (t *Template) Placeholders() Placeholders {
	return t.names
}

// Render fills the template with the fields of data. Missing fields render
// as "" and are listed in Result.Unresolved.
func (t *Template) Render(data map[string]any) (Result, error) {
	sc := newScope(data)
	replaced := make(map[string][]byte, len(t.parts))
	for _, p := range t.parts {
		root := &node{kind: elementNode}
		root.children = emitAll(p.blocks, sc, p.prefix)
		out, err := serialize(root)
		if err != nil {
			return Result{}, fmt.Errorf("serializing %s: %w", p.name, err)
		}
		replaced[p.name] = out
	}

	var buf bytes.Buffer
	if err := t.pkg.Write(&buf, replaced); err != nil {
		return Result{}, fmt.Errorf("writing package: %w", err)
	}
	return Result{Bytes: buf.Bytes(), Unresolved: sc.missing()}, nil
}

// RenderRecord renders a canonical record.
func (t *Template) RenderRecord(rec types.CanonicalRecord) (Result, error) {
	return t.Render(rec.Fields())
}

// wordPrefix returns the prefix bound to the main word-processing
// namespace on the root element, "w" by default.
func wordPrefix(root *node) string {
	for _, c := range root.children {
		if c.kind != elementNode {
			continue
		}
		for _, a := range c.attrs {
			if a.Name.Space == "xmlns" && a.Value == docx.NamespaceW {
				return a.Name.Local
			}
		}
		break
	}
	return "w"
}

// collector gathers placeholder names while compiling.
type collector struct {
	scalars, conditionals, loops, rowLoops map[string]bool
}

func newCollector() *collector {
	return &collector{
		scalars:      map[string]bool{},
		conditionals: map[string]bool{},
		loops:        map[string]bool{},
		rowLoops:     map[string]bool{},
	}
}

func (c *collector) placeholders() Placeholders {
	return Placeholders{
		Scalars:      sortedKeys(c.scalars),
		Conditionals: sortedKeys(c.conditionals),
		Loops:        sortedKeys(c.loops),
		RowLoops:     sortedKeys(c.rowLoops),
	}
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func joinPath(p []string) string { return strings.Join(p, ".") }
