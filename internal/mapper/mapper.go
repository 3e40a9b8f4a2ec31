// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package mapper merges normalized sections into a CanonicalRecord. It
// applies caller overrides, scrubs manufacturer text and derives the
// catalog/lot pair used to name the rendered output.
package mapper

import (
	"strings"

	"github.com/pdiddy/datasheet-engine/internal/normalize"
	"github.com/pdiddy/datasheet-engine/internal/segment"
	"github.com/pdiddy/datasheet-engine/pkg/types"
)

// maxKitNameLen bounds the preamble paragraph accepted as a kit name.
const maxKitNameLen = 120

// Input is everything the mapper needs for one document.
type Input struct {
	Doc      types.RawDocument
	Spans    []types.SectionSpan
	Sections normalize.Result

	// Source is the document identity, typically its file name. It is
	// the last resort for the naming pair.
	Source    string
	Overrides types.Overrides
}

// Mapper builds canonical records. It holds no per-document state and is
// safe for concurrent use.
type Mapper struct {
	scrub *Scrubber
}

// New returns a Mapper applying scrub to narrative and list text. A nil
// scrub leaves text untouched.
func New(scrub *Scrubber) *Mapper {
	return &Mapper{scrub: scrub}
}

// NewFromConfig compiles cfg into a Mapper.
func NewFromConfig(cfg types.ScrubConfig) (*Mapper, error) {
	s, err := NewScrubber(cfg)
	if err != nil {
		return nil, err
	}
	return New(s), nil
}

// Map produces the record for one document. It never fails: fields that
// cannot be resolved keep their empty defaults.
func (m *Mapper) Map(in Input) types.CanonicalRecord {
	rec := types.NewRecord()
	kv := scalarSource(in.Doc, in.Spans, in.Sections)
	idText := identityText(in.Doc, in.Spans)

	catalog := firstNonEmpty(kv.lookup(catalogLabels, true), matchCatalog(idText...))
	lot := firstNonEmpty(kv.lookup(lotLabels, true), matchLot(idText...))

	rec.KitName = firstNonEmpty(in.Overrides.KitName, kv.lookup(kitNameLabels, true), m.kitName(in.Doc, in.Spans))
	rec.CatalogNumber = firstNonEmpty(in.Overrides.CatalogNumber, catalog)
	rec.LotNumber = firstNonEmpty(in.Overrides.LotNumber, lot)
	rec.Name = outputName(in.Overrides, catalog, lot, in.Source)

	rec.Sensitivity = kv.lookup(sensitivityLabels, false)
	rec.DetectionRange = kv.lookup(detectionRangeLabels, false)
	rec.Specificity = kv.lookup(specificityLabels, false)
	rec.CrossReactivity = kv.lookup(crossReactivityLabels, false)
	rec.Standard = firstNonEmpty(kv.lookup(standardLabels, false), kv.lookup([]string{"standard"}, true))
	rec.Antibodies = kv.lookup(antibodyLabels, false)
	rec.SampleType = kv.lookup(sampleTypeLabels, false)
	rec.SampleVolume = kv.lookup(sampleVolumeLabels, false)
	rec.AssayTime = kv.lookup(assayTimeLabels, false)

	sec := in.Sections
	text := func(key types.SectionKey) string {
		return m.scrub.Apply(sec.Section(key).Narrative.Text())
	}
	rec.IntendedUse = text(types.SectionIntendedUse)
	rec.Background = text(types.SectionBackground)
	rec.AssayPrinciple = text(types.SectionAssayPrinciple)
	rec.Overview = text(types.SectionOverview)
	rec.ProceduralNotes = m.proceduralNotes(in.Doc, in.Spans)
	rec.ReagentPreparation = text(types.SectionReagentPreparation)
	rec.DilutionOfStandard = text(types.SectionDilutionOfStandard)
	rec.SamplePreparation = text(types.SectionSamplePreparation)
	rec.SampleCollectionNotes = text(types.SectionSampleCollectionNotes)
	rec.SampleDilutionGuideline = text(types.SectionSampleDilutionGuideline)
	rec.DataAnalysis = text(types.SectionDataAnalysis)
	rec.Disclaimer = text(types.SectionDisclaimer)

	rec.RequiredMaterials = m.scrub.ApplyAll(sec.Section(types.SectionRequiredMaterials).List.Items)
	rec.AssayProtocol = m.scrub.ApplyAll(sec.Section(types.SectionAssayProtocol).List.Items)

	rec.OverviewSpecifications = m.overviewSpecifications(in.Doc, in.Spans, sec)
	rec.TechnicalDetails = technicalDetails(rec)
	rec.Reagents = m.reagents(sec.Section(types.SectionReagents).KeyValue())
	rec.StandardCurve = curve(sec.Section(types.SectionStandardCurve).Tables)
	rec.Precision = precision(sec.Section(types.SectionIntraInterAssay).Tables)
	rec.Reproducibility = reproducibility(sec.Section(types.SectionReproducibility).Tables)
	return rec
}

// identityText lists the texts searched for catalog and lot numbers, most
// specific first: header, title, preamble, then every block.
func identityText(doc types.RawDocument, spans []types.SectionSpan) []string {
	texts := []string{doc.HeaderText, doc.Title}
	for _, b := range segment.Preamble(doc, spans) {
		texts = append(texts, blockText(b))
	}
	for _, b := range doc.Blocks {
		texts = append(texts, blockText(b))
	}
	return texts
}

func blockText(b types.Block) string {
	if b.Kind != types.BlockTable {
		return b.Text
	}
	var lines []string
	for _, row := range b.Rows {
		lines = append(lines, strings.Join(row, ": "))
	}
	return strings.Join(lines, "\n")
}

// kitName falls back to the document title and then to the first short
// preamble paragraph that is not a catalog or lot line.
func (m *Mapper) kitName(doc types.RawDocument, spans []types.SectionSpan) string {
	if t := normalize.CollapseSpace(doc.Title); t != "" {
		return m.scrub.Apply(t)
	}
	for _, b := range segment.Preamble(doc, spans) {
		if b.Kind == types.BlockTable {
			continue
		}
		s := normalize.CollapseSpace(b.Text)
		if s == "" || len([]rune(s)) > maxKitNameLen {
			continue
		}
		if catalogPattern.MatchString(s) || lotPattern.MatchString(s) {
			continue
		}
		return m.scrub.Apply(s)
	}
	return ""
}

// Reagent table header vocabularies.
var (
	reagentNameWords  = []string{"description", "component", "name", "reagent", "item", "contents"}
	reagentSpecWords  = []string{"specification", "spec", "size", "volume", "concentration"}
	reagentQtyWords   = []string{"quantity", "qty", "amount"}
	curveConcWords    = []string{"conc", "standard"}
	curveODWords      = []string{"o.d", "od", "absorbance"}
	sampleWords       = []string{"sample"}
	nWords            = []string{"n"}
	meanWords         = []string{"mean", "average"}
	sdWords           = []string{"sd", "s.d", "std", "standard deviation"}
	cvWords           = []string{"cv"}
	reproValueWords   = []string{"value", "observed", "measured"}
	reproAddedWords   = []string{"added", "spike"}
	reproExpectWords  = []string{"expected"}
	reproRecoverWords = []string{"recovery"}
)

// reagents maps the kit contents table. With a header the columns are
// located by name; without one they are taken positionally.
func (m *Mapper) reagents(t normalize.KeyValueTable) []types.ReagentRow {
	out := []types.ReagentRow{}
	if len(t.Rows) == 0 {
		return out
	}

	nameCol, specCol, qtyCol := 0, 1, 2
	if t.Header != nil {
		h := normalize.NumericTable{Header: t.Header}
		nameCol = orDefault(h.Column(reagentNameWords...), 0)
		specCol = h.Column(reagentSpecWords...)
		qtyCol = h.Column(reagentQtyWords...)
	}

	for _, row := range t.Rows {
		cells := append([]string{row.Key}, row.Values...)
		r := types.ReagentRow{
			Name:          m.scrub.Apply(cellAt(cells, nameCol)),
			Specification: cellAt(cells, specCol),
			Quantity:      cellAt(cells, qtyCol),
		}
		if r.Name == "" && r.Specification == "" && r.Quantity == "" {
			continue
		}
		out = append(out, r)
	}
	return out
}

// curve keeps the rows where the concentration or the optical density
// parses as a number. Repeated headers and note rows are dropped.
func curve(tables []normalize.NumericTable) []types.CurvePoint {
	out := []types.CurvePoint{}
	for _, t := range tables {
		conc := orDefault(t.Column(curveConcWords...), 0)
		od := orDefault(t.Column(curveODWords...), 1)
		for _, row := range t.Rows {
			if !isNumberAt(row, conc) && !isNumberAt(row, od) {
				continue
			}
			out = append(out, types.CurvePoint{Concentration: textAt(row, conc), OD: textAt(row, od)})
		}
	}
	return out
}

// precision assigns each table to intra- or inter-assay by its label or
// header; unlabelled tables fill intra first, then inter.
func precision(tables []normalize.NumericTable) types.Precision {
	p := types.Precision{Intra: []types.PrecisionRow{}, Inter: []types.PrecisionRow{}}
	var unlabelled [][]types.PrecisionRow
	for _, t := range tables {
		rows := precisionRows(t)
		switch precisionKind(t) {
		case "intra":
			p.Intra = append(p.Intra, rows...)
		case "inter":
			p.Inter = append(p.Inter, rows...)
		default:
			unlabelled = append(unlabelled, rows)
		}
	}
	for _, rows := range unlabelled {
		if len(p.Intra) == 0 {
			p.Intra = rows
		} else if len(p.Inter) == 0 {
			p.Inter = rows
		}
	}
	return p
}

func precisionKind(t normalize.NumericTable) string {
	label := strings.ToLower(t.Label + " " + strings.Join(t.Header, " "))
	switch {
	case strings.Contains(label, "intra"):
		return "intra"
	case strings.Contains(label, "inter"):
		return "inter"
	}
	return ""
}

func precisionRows(t normalize.NumericTable) []types.PrecisionRow {
	sample := orDefault(t.Column(sampleWords...), 0)
	n, mean, sd, cv := t.Column(nWords...), t.Column(meanWords...), t.Column(sdWords...), t.Column(cvWords...)
	out := []types.PrecisionRow{}
	for _, row := range t.Rows {
		out = append(out, types.PrecisionRow{
			Sample: textAt(row, sample),
			N:      textAt(row, n),
			Mean:   textAt(row, mean),
			SD:     textAt(row, sd),
			CV:     textAt(row, cv),
		})
	}
	return out
}

func reproducibility(tables []normalize.NumericTable) []types.ReproducibilityRow {
	out := []types.ReproducibilityRow{}
	for _, t := range tables {
		sample := orDefault(t.Column(sampleWords...), 0)
		value := t.Column(reproValueWords...)
		added := t.Column(reproAddedWords...)
		expected := t.Column(reproExpectWords...)
		recovery := t.Column(reproRecoverWords...)
		for _, row := range t.Rows {
			out = append(out, types.ReproducibilityRow{
				Sample:   textAt(row, sample),
				Value:    textAt(row, value),
				Added:    textAt(row, added),
				Expected: textAt(row, expected),
				Recovery: textAt(row, recovery),
			})
		}
	}
	return out
}

func orDefault(i, def int) int {
	if i < 0 {
		return def
	}
	return i
}

func cellAt(cells []string, i int) string {
	if i < 0 || i >= len(cells) {
		return ""
	}
	return cells[i]
}

func textAt(row []normalize.Cell, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i].Text
}

func isNumberAt(row []normalize.Cell, i int) bool {
	return i >= 0 && i < len(row) && row[i].IsNumber
}
