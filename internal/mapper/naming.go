// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package mapper

import (
	"path"
	"regexp"
	"strings"

	"github.com/pdiddy/datasheet-engine/pkg/types"
)

// Unknown is the naming component used when nothing else resolves.
const Unknown = "UNKNOWN"

var (
	catalogPattern = regexp.MustCompile(`(?i)\b(?:catalog|cat\.?)\s*(?:number|no\.?|#|:)\s*[:#]?\s*([A-Z0-9-]*\d[A-Z0-9-]*)`)
	lotPattern     = regexp.MustCompile(`(?i)\blot\s*(?:number|no\.?|#|:)\s*[:#]?\s*([A-Z0-9-]*\d[A-Z0-9-]*)`)
	productCode    = regexp.MustCompile(`\bEK\d{3,}[A-Z]?\b`)

	// sourceStem matches source names such as "EK1586-6058725".
	sourceStem = regexp.MustCompile(`(?i)^([A-Z]{1,8}\d{2,}[A-Z0-9]*)(?:[-_ ]+([A-Z0-9]*\d[A-Z0-9]*))?$`)

	unsafeName = regexp.MustCompile(`[^A-Za-z0-9._-]+`)
)

// matchCatalog finds a catalog number in the texts, trying the labelled
// pattern across all texts before the bare product code pattern.
func matchCatalog(texts ...string) string {
	for _, t := range texts {
		if m := catalogPattern.FindStringSubmatch(t); m != nil {
			return strings.Trim(m[1], "-")
		}
	}
	for _, t := range texts {
		if m := productCode.FindString(t); m != "" {
			return m
		}
	}
	return ""
}

// matchLot finds a labelled lot number in the texts.
func matchLot(texts ...string) string {
	for _, t := range texts {
		if m := lotPattern.FindStringSubmatch(t); m != nil {
			return strings.Trim(m[1], "-")
		}
	}
	return ""
}

// fromSource derives a catalog/lot pair from a source identity such as
// "uploads/EK1586-6058725.docx".
func fromSource(source string) (catalog, lot string) {
	base := path.Base(strings.ReplaceAll(source, "\\", "/"))
	stem := strings.TrimSuffix(base, path.Ext(base))
	m := sourceStem.FindStringSubmatch(stem)
	if m == nil {
		return "", ""
	}
	return m[1], m[2]
}

// SanitizeName makes a naming component safe for file names. It never
// returns an empty string.
func SanitizeName(s string) string {
	s = unsafeName.ReplaceAllString(strings.TrimSpace(s), "_")
	s = strings.Trim(s, "._-")
	if s == "" {
		return Unknown
	}
	return s
}

// outputName resolves the naming pair: override, then the value found in
// the document, then the source identity, then Unknown.
func outputName(ov types.Overrides, catalog, lot, source string) types.OutputName {
	srcCatalog, srcLot := fromSource(source)
	return types.OutputName{
		CatalogNumber: SanitizeName(firstNonEmpty(ov.CatalogNumber, catalog, srcCatalog)),
		LotNumber:     SanitizeName(firstNonEmpty(ov.LotNumber, lot, srcLot)),
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
