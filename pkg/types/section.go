// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// SectionKey identifies a logical datasheet section. The vocabulary is closed.
type SectionKey string

const (
	SectionIntendedUse             SectionKey = "INTENDED_USE"
	SectionBackground              SectionKey = "BACKGROUND"
	SectionAssayPrinciple          SectionKey = "ASSAY_PRINCIPLE"
	SectionOverview                SectionKey = "OVERVIEW"
	SectionTechnicalDetails        SectionKey = "TECHNICAL_DETAILS"
	SectionReagents                SectionKey = "REAGENTS"
	SectionRequiredMaterials       SectionKey = "REQUIRED_MATERIALS"
	SectionStandardCurve           SectionKey = "STANDARD_CURVE"
	SectionIntraInterAssay         SectionKey = "INTRA_INTER_ASSAY"
	SectionReproducibility         SectionKey = "REPRODUCIBILITY"
	SectionReagentPreparation      SectionKey = "REAGENT_PREPARATION"
	SectionDilutionOfStandard      SectionKey = "DILUTION_OF_STANDARD"
	SectionSamplePreparation       SectionKey = "SAMPLE_PREPARATION"
	SectionSampleCollectionNotes   SectionKey = "SAMPLE_COLLECTION_NOTES"
	SectionSampleDilutionGuideline SectionKey = "SAMPLE_DILUTION_GUIDELINE"
	SectionAssayProtocol           SectionKey = "ASSAY_PROTOCOL"
	SectionDataAnalysis            SectionKey = "DATA_ANALYSIS"
	SectionDisclaimer              SectionKey = "DISCLAIMER"
)

var sectionKeys = []SectionKey{
	SectionIntendedUse,
	SectionBackground,
	SectionAssayPrinciple,
	SectionOverview,
	SectionTechnicalDetails,
	SectionReagents,
	SectionRequiredMaterials,
	SectionStandardCurve,
	SectionIntraInterAssay,
	SectionReproducibility,
	SectionReagentPreparation,
	SectionDilutionOfStandard,
	SectionSamplePreparation,
	SectionSampleCollectionNotes,
	SectionSampleDilutionGuideline,
	SectionAssayProtocol,
	SectionDataAnalysis,
	SectionDisclaimer,
}

// SectionKeys returns the full vocabulary in canonical order.
func SectionKeys() []SectionKey {
	out := make([]SectionKey, len(sectionKeys))
	copy(out, sectionKeys)
	return out
}

// Valid reports whether k belongs to the vocabulary.
func (k SectionKey) Valid() bool {
	for _, v := range sectionKeys {
		if v == k {
			return true
		}
	}
	return false
}

// Shape is the normalization strategy applied to a section's content.
type Shape string

const (
	ShapeNarrative     Shape = "narrative"
	ShapeOrderedList   Shape = "ordered_list"
	ShapeKeyValueTable Shape = "key_value_table"
	ShapeNumericTable  Shape = "numeric_table"
)

// Valid reports whether s is a known shape.
func (s Shape) Valid() bool {
	switch s {
	case ShapeNarrative, ShapeOrderedList, ShapeKeyValueTable, ShapeNumericTable:
		return true
	}
	return false
}

// StopPoint marks where a terminal stop sentence begins inside a span.
// Content from Offset (a byte offset into the block text) onward, and
// every later block of the span, is discarded.
type StopPoint struct {
	Block  int `json:"block" yaml:"block"`
	Offset int `json:"offset" yaml:"offset"`
}

// SectionSpan is the half-open block range [Start, End) owned by a section.
// Start is the index of the heading block itself.
type SectionSpan struct {
	Key     SectionKey `json:"key" yaml:"key"`
	Start   int        `json:"start" yaml:"start"`
	End     int        `json:"end" yaml:"end"`
	Heading string     `json:"heading" yaml:"heading"`
	Stop    *StopPoint `json:"stop,omitempty" yaml:"stop,omitempty"`
}

// Len is the number of blocks in the span, heading included.
func (s SectionSpan) Len() int { return s.End - s.Start }
