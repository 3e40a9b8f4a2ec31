// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert runs one datasheet through the whole pipeline: parse,
// segment, normalize, map and render.
package convert

import (
	"errors"
	"fmt"

	"github.com/pdiddy/datasheet-engine/internal/docx"
	"github.com/pdiddy/datasheet-engine/internal/mapper"
	"github.com/pdiddy/datasheet-engine/internal/normalize"
	"github.com/pdiddy/datasheet-engine/internal/render"
	"github.com/pdiddy/datasheet-engine/internal/segment"
	"github.com/pdiddy/datasheet-engine/pkg/types"
)

// ErrNoTemplate is returned by Convert on a pipeline built without a template.
var ErrNoTemplate = errors.New("no template configured")

// Pipeline holds the immutable stages shared by every document. It is safe
// for concurrent use.
type Pipeline struct {
	seg    *segment.Segmenter
	norm   *normalize.Normalizer
	mapper *mapper.Mapper
	tpl    *render.Template
}

// New assembles a pipeline. A nil table selects the built-in sections, a
// nil mapper maps without scrubbing and a nil template limits the pipeline
// to extraction.
func New(table *segment.Table, m *mapper.Mapper, tpl *render.Template) *Pipeline {
	seg := segment.New(table)
	if m == nil {
		m = mapper.New(nil)
	}
	return &Pipeline{
		seg:    seg,
		norm:   normalize.New(seg.Table()),
		mapper: m,
		tpl:    tpl,
	}
}

// NewFromConfig builds a pipeline from the extraction settings.
func NewFromConfig(cfg types.ExtractionConfig, tpl *render.Template) (*Pipeline, error) {
	var table *segment.Table
	if cfg.SectionsFile != "" {
		t, err := segment.LoadTable(cfg.SectionsFile)
		if err != nil {
			return nil, err
		}
		table = t
	}
	m, err := mapper.NewFromConfig(cfg.Scrub)
	if err != nil {
		return nil, fmt.Errorf("building mapper: %w", err)
	}
	return New(table, m, tpl), nil
}

// Extraction is the outcome of reading one source document.
type Extraction struct {
	Source   string                `json:"source" yaml:"source"`
	Record   types.CanonicalRecord `json:"record" yaml:"record"`
	Spans    []types.SectionSpan   `json:"spans" yaml:"spans"`
	Warnings []types.Warning       `json:"warnings" yaml:"warnings"`
}

// Output is an extraction plus its rendered document.
type Output struct {
	Extraction
	Document   []byte   `json:"-" yaml:"-"`
	Unresolved []string `json:"unresolved" yaml:"unresolved"`
}

// Extract parses data and maps it to a canonical record. The only error
// is a *types.MalformedInputError for input that is not a word-processing
// package; missing sections are reported as warnings.
func (p *Pipeline) Extract(data []byte, source string, ov types.Overrides) (Extraction, error) {
	doc, err := docx.Parse(data)
	if err != nil {
		var mi *types.MalformedInputError
		if errors.As(err, &mi) && mi.Source == "" {
			mi.Source = source
		}
		return Extraction{}, err
	}

	spans := p.seg.Segment(doc)
	res := p.norm.Normalize(doc, spans)
	rec := p.mapper.Map(mapper.Input{
		Doc:       doc,
		Spans:     spans,
		Sections:  res,
		Source:    source,
		Overrides: ov,
	})

	warnings := res.Warnings
	if warnings == nil {
		warnings = []types.Warning{}
	}
	if spans == nil {
		spans = []types.SectionSpan{}
	}
	return Extraction{Source: source, Record: rec, Spans: spans, Warnings: warnings}, nil
}

// Convert extracts data and renders the record into the template.
func (p *Pipeline) Convert(data []byte, source string, ov types.Overrides) (Output, error) {
	if p.tpl == nil {
		return Output{}, ErrNoTemplate
	}
	ex, err := p.Extract(data, source, ov)
	if err != nil {
		return Output{}, err
	}
	res, err := p.tpl.RenderRecord(ex.Record)
	if err != nil {
		return Output{}, fmt.Errorf("rendering %s: %w", source, err)
	}
	unresolved := res.Unresolved
	if unresolved == nil {
		unresolved = []string{}
	}
	return Output{Extraction: ex, Document: res.Bytes, Unresolved: unresolved}, nil
}
