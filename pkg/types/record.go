// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "strconv"

// ReagentRow is one row of the kit contents table.
type ReagentRow struct {
	Name          string `json:"name" yaml:"name"`
	Specification string `json:"specification" yaml:"specification"`
	Quantity      string `json:"quantity" yaml:"quantity"`
}

// CurvePoint is one row of the typical standard curve table.
type CurvePoint struct {
	Concentration string `json:"concentration" yaml:"concentration"`
	OD            string `json:"od" yaml:"od"`
}

// PrecisionRow is one sample row of an intra- or inter-assay precision table.
type PrecisionRow struct {
	Sample string `json:"sample" yaml:"sample"`
	N      string `json:"n" yaml:"n"`
	Mean   string `json:"mean" yaml:"mean"`
	SD     string `json:"sd" yaml:"sd"`
	CV     string `json:"cv" yaml:"cv"`
}

// Precision groups the intra-assay and inter-assay tables.
type Precision struct {
	Intra []PrecisionRow `json:"intra" yaml:"intra"`
	Inter []PrecisionRow `json:"inter" yaml:"inter"`
}

// ReproducibilityRow is one row of a reproducibility or recovery table.
type ReproducibilityRow struct {
	Sample   string `json:"sample" yaml:"sample"`
	Value    string `json:"value" yaml:"value"`
	Added    string `json:"added" yaml:"added"`
	Expected string `json:"expected" yaml:"expected"`
	Recovery string `json:"recovery" yaml:"recovery"`
}

// SpecRow is one property/value line of a specification table.
type SpecRow struct {
	Property string `json:"property" yaml:"property"`
	Value    string `json:"value" yaml:"value"`
}

// OutputName is the identifying pair used to name a rendered document.
// Both components are always non-empty after mapping.
type OutputName struct {
	CatalogNumber string `json:"catalog_number" yaml:"catalog_number"`
	LotNumber     string `json:"lot_number" yaml:"lot_number"`
}

// FileName returns "{catalog}-{lot}.docx".
func (n OutputName) FileName() string {
	return n.CatalogNumber + "-" + n.LotNumber + ".docx"
}

// CanonicalRecord is the manufacturer-independent representation of a
// datasheet. Every field is always present: free text uses "" as the
// empty marker and every list is a non-nil, possibly empty, slice.
type CanonicalRecord struct {
	KitName         string `json:"kit_name" yaml:"kit_name"`
	CatalogNumber   string `json:"catalog_number" yaml:"catalog_number"`
	LotNumber       string `json:"lot_number" yaml:"lot_number"`
	Sensitivity     string `json:"sensitivity" yaml:"sensitivity"`
	DetectionRange  string `json:"detection_range" yaml:"detection_range"`
	Specificity     string `json:"specificity" yaml:"specificity"`
	CrossReactivity string `json:"cross_reactivity" yaml:"cross_reactivity"`
	Standard        string `json:"standard" yaml:"standard"`
	Antibodies      string `json:"antibodies" yaml:"antibodies"`
	SampleType      string `json:"sample_type" yaml:"sample_type"`
	SampleVolume    string `json:"sample_volume" yaml:"sample_volume"`
	AssayTime       string `json:"assay_time" yaml:"assay_time"`

	IntendedUse             string `json:"intended_use" yaml:"intended_use"`
	Background              string `json:"background" yaml:"background"`
	AssayPrinciple          string `json:"assay_principle" yaml:"assay_principle"`
	Overview                string `json:"overview" yaml:"overview"`
	ProceduralNotes         string `json:"procedural_notes" yaml:"procedural_notes"`
	ReagentPreparation      string `json:"reagent_preparation" yaml:"reagent_preparation"`
	DilutionOfStandard      string `json:"dilution_of_standard" yaml:"dilution_of_standard"`
	SamplePreparation       string `json:"sample_preparation" yaml:"sample_preparation"`
	SampleCollectionNotes   string `json:"sample_collection_notes" yaml:"sample_collection_notes"`
	SampleDilutionGuideline string `json:"sample_dilution_guideline" yaml:"sample_dilution_guideline"`
	DataAnalysis            string `json:"data_analysis" yaml:"data_analysis"`
	Disclaimer              string `json:"disclaimer" yaml:"disclaimer"`

	OverviewSpecifications []SpecRow            `json:"overview_specifications" yaml:"overview_specifications"`
	TechnicalDetails       []SpecRow            `json:"technical_details" yaml:"technical_details"`
	Reagents               []ReagentRow         `json:"reagents" yaml:"reagents"`
	RequiredMaterials      []string             `json:"required_materials" yaml:"required_materials"`
	AssayProtocol          []string             `json:"assay_protocol" yaml:"assay_protocol"`
	StandardCurve          []CurvePoint         `json:"standard_curve" yaml:"standard_curve"`
	Precision              Precision            `json:"precision" yaml:"precision"`
	Reproducibility        []ReproducibilityRow `json:"reproducibility" yaml:"reproducibility"`

	// Name is the naming pair for the rendered output.
	Name OutputName `json:"name" yaml:"name"`
}

// NewRecord returns a record whose list fields are empty, non-nil slices.
func NewRecord() CanonicalRecord {
	return CanonicalRecord{
		OverviewSpecifications: []SpecRow{},
		TechnicalDetails:       []SpecRow{},
		Reagents:               []ReagentRow{},
		RequiredMaterials:      []string{},
		AssayProtocol:          []string{},
		StandardCurve:          []CurvePoint{},
		Precision:              Precision{Intra: []PrecisionRow{}, Inter: []PrecisionRow{}},
		Reproducibility:        []ReproducibilityRow{},
	}
}

// Fields exposes the record as the data model seen by templates. Scalars
// map to strings; tables map to slices of string maps; plain lists map to
// slices of strings.
func (r CanonicalRecord) Fields() map[string]any {
	reagents := make([]map[string]string, len(r.Reagents))
	for i, row := range r.Reagents {
		reagents[i] = map[string]string{
			"name":          row.Name,
			"specification": row.Specification,
			"quantity":      row.Quantity,
		}
	}
	curve := make([]map[string]string, len(r.StandardCurve))
	for i, p := range r.StandardCurve {
		curve[i] = map[string]string{"concentration": p.Concentration, "od": p.OD}
	}
	repro := make([]map[string]string, len(r.Reproducibility))
	for i, row := range r.Reproducibility {
		repro[i] = map[string]string{
			"sample":   row.Sample,
			"value":    row.Value,
			"added":    row.Added,
			"expected": row.Expected,
			"recovery": row.Recovery,
		}
	}

	return map[string]any{
		"kit_name":                  r.KitName,
		"catalog_number":            r.CatalogNumber,
		"lot_number":                r.LotNumber,
		"sensitivity":               r.Sensitivity,
		"detection_range":           r.DetectionRange,
		"specificity":               r.Specificity,
		"cross_reactivity":          r.CrossReactivity,
		"standard":                  r.Standard,
		"antibodies":                r.Antibodies,
		"sample_type":               r.SampleType,
		"sample_volume":             r.SampleVolume,
		"assay_time":                r.AssayTime,
		"intended_use":              r.IntendedUse,
		"background":                r.Background,
		"assay_principle":           r.AssayPrinciple,
		"overview":                  r.Overview,
		"procedural_notes":          r.ProceduralNotes,
		"reagent_preparation":       r.ReagentPreparation,
		"dilution_of_standard":      r.DilutionOfStandard,
		"sample_preparation":        r.SamplePreparation,
		"sample_collection_notes":   r.SampleCollectionNotes,
		"sample_dilution_guideline": r.SampleDilutionGuideline,
		"data_analysis":             r.DataAnalysis,
		"disclaimer":                r.Disclaimer,
		"overview_specifications":   specRows(r.OverviewSpecifications),
		"technical_details":         specRows(r.TechnicalDetails),
		"reagents":                  reagents,
		"required_materials":        append([]string{}, r.RequiredMaterials...),
		"assay_protocol":            append([]string{}, r.AssayProtocol...),
		"assay_protocol_numbered":   NumberedSteps(r.AssayProtocol),
		"standard_curve":            curve,
		"intra_precision":           precisionRows(r.Precision.Intra),
		"inter_precision":           precisionRows(r.Precision.Inter),
		"reproducibility":           repro,
	}
}

func specRows(rows []SpecRow) []map[string]string {
	out := make([]map[string]string, len(rows))
	for i, row := range rows {
		out[i] = map[string]string{"property": row.Property, "value": row.Value}
	}
	return out
}

func precisionRows(rows []PrecisionRow) []map[string]string {
	out := make([]map[string]string, len(rows))
	for i, row := range rows {
		out[i] = map[string]string{
			"sample": row.Sample,
			"n":      row.N,
			"mean":   row.Mean,
			"sd":     row.SD,
			"cv":     row.CV,
		}
	}
	return out
}

// NumberedSteps renders steps as "1. step" lines joined with newlines.
func NumberedSteps(steps []string) string {
	var out string
	for i, s := range steps {
		if i > 0 {
			out += "\n"
		}
		out += strconv.Itoa(i+1) + ". " + s
	}
	return out
}
