// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package docx

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pdiddy/datasheet-engine/pkg/types"
)

// Parse reads a word-processing package and returns its blocks in document
// order. Paragraphs and tables are interleaved exactly as they appear in
// the body, including content nested in structured document tags.
func Parse(data []byte) (types.RawDocument, error) {
	pkg, err := OpenPackage(data)
	if err != nil {
		return types.RawDocument{}, err
	}
	return ParsePackage(pkg)
}

// ParsePackage is Parse for an already opened package.
func ParsePackage(pkg *Package) (types.RawDocument, error) {
	st := newStyleSheet(nil)
	if pkg.Has(PartStyles) {
		// Styles only refine formatting hints; a broken styles part is ignored.
		if raw, err := pkg.Part(PartStyles); err == nil {
			var sx stylesXML
			if xml.Unmarshal(raw, &sx) == nil {
				st = newStyleSheet(&sx)
			}
		}
	}

	body, err := pkg.Part(PartDocument)
	if err != nil {
		return types.RawDocument{}, &types.MalformedInputError{Reason: "reading document part", Err: err}
	}

	blocks, err := parseBody(body, st)
	if err != nil {
		return types.RawDocument{}, &types.MalformedInputError{Reason: "parsing document part", Err: err}
	}

	doc := types.RawDocument{
		Blocks:             blocks,
		Title:              coreTitle(pkg),
		HeaderText:         headerText(pkg),
		BodySizeHalfPoints: dominantSize(blocks),
	}
	return doc, nil
}

// parseBody walks the token stream of word/document.xml. Each top-level
// paragraph or table is decoded whole; any other element is descended into
// so that paragraphs wrapped in w:sdt or w:customXml are not lost.
func parseBody(data []byte, st *styleSheet) ([]types.Block, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	var blocks []types.Block
	sawRoot := false

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		se, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		if !sawRoot {
			if se.Name.Local != "document" {
				return nil, fmt.Errorf("unexpected root element %q", se.Name.Local)
			}
			sawRoot = true
			continue
		}
		switch se.Name.Local {
		case "p":
			var p paragraphXML
			if err := dec.DecodeElement(&p, &se); err != nil {
				return nil, err
			}
			blocks = append(blocks, paragraphBlock(len(blocks), p, st))
		case "tbl":
			var t tableXML
			if err := dec.DecodeElement(&t, &se); err != nil {
				return nil, err
			}
			blocks = append(blocks, tableBlock(len(blocks), t))
		case "sectPr":
			if err := dec.Skip(); err != nil {
				return nil, err
			}
		}
	}
	if !sawRoot {
		return nil, errors.New("empty document part")
	}
	return blocks, nil
}

func paragraphBlock(index int, p paragraphXML, st *styleSheet) types.Block {
	b := types.Block{
		Index:  index,
		Kind:   types.BlockParagraph,
		Text:   strings.TrimSpace(p.text()),
		Format: st.format(p),
	}
	if numID, level, ok := st.numbering(p); ok && numID != "0" {
		b.Kind = types.BlockListItem
		b.Level = level
	}
	return b
}

func tableBlock(index int, t tableXML) types.Block {
	rows := make([][]string, 0, len(t.Rows))
	lines := make([]string, 0, len(t.Rows))
	for _, r := range t.Rows {
		cells := make([]string, len(r.Cells))
		for i, c := range r.Cells {
			cells[i] = c.cellText()
		}
		rows = append(rows, cells)
		lines = append(lines, strings.Join(cells, "\t"))
	}
	return types.Block{
		Index: index,
		Kind:  types.BlockTable,
		Text:  strings.Join(lines, "\n"),
		Rows:  rows,
	}
}

func coreTitle(pkg *Package) string {
	if !pkg.Has(PartCore) {
		return ""
	}
	raw, err := pkg.Part(PartCore)
	if err != nil {
		return ""
	}
	var cp corePropertiesXML
	if xml.Unmarshal(raw, &cp) != nil {
		return ""
	}
	return strings.TrimSpace(cp.Title)
}

// headerText collects the paragraph text of every page header part.
func headerText(pkg *Package) string {
	var parts []string
	for _, name := range pkg.HeaderParts() {
		raw, err := pkg.Part(name)
		if err != nil {
			continue
		}
		dec := xml.NewDecoder(bytes.NewReader(raw))
		for {
			tok, err := dec.Token()
			if err != nil {
				break
			}
			se, ok := tok.(xml.StartElement)
			if !ok || se.Name.Local != "p" {
				continue
			}
			var p paragraphXML
			if dec.DecodeElement(&p, &se) != nil {
				break
			}
			if s := strings.TrimSpace(p.text()); s != "" {
				parts = append(parts, s)
			}
		}
	}
	return strings.Join(parts, "\n")
}

// dominantSize returns the font size carrying the most body text. Ties go
// to the smaller size.
func dominantSize(blocks []types.Block) int {
	weight := map[int]int{}
	for _, b := range blocks {
		if b.Kind == types.BlockTable || b.Format.SizeHalfPoints == 0 || b.Format.HeadingLevel > 0 {
			continue
		}
		weight[b.Format.SizeHalfPoints] += len(b.Text)
	}
	best, bestWeight := 0, -1
	for size, w := range weight {
		if w > bestWeight || (w == bestWeight && size < best) {
			best, bestWeight = size, w
		}
	}
	return best
}

func parseInt(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, false
	}
	return n, true
}
