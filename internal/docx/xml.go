// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package docx

import (
	"encoding/xml"
	"strings"
)

// NamespaceW is the WordprocessingML main namespace.
const NamespaceW = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"

// paragraphXML is a w:p element. Runs are collected in document order from
// any inline container (hyperlinks, insertions, smart tags, fields).
type paragraphXML struct {
	Props paragraphPropsXML
	Runs  []runXML
}

type paragraphPropsXML struct {
	Style      valXML       `xml:"pStyle"`
	NumPr      *numPrXML    `xml:"numPr"`
	Jc         valXML       `xml:"jc"`
	OutlineLvl *valXML      `xml:"outlineLvl"`
	RPr        *runPropsXML `xml:"rPr"`
}

type numPrXML struct {
	ILvl  valXML `xml:"ilvl"`
	NumID valXML `xml:"numId"`
}

type valXML struct {
	Val string `xml:"val,attr"`
}

// runXML is a w:r element with its text pieces kept in order.
type runXML struct {
	Props runPropsXML
	Text  string
}

type runPropsXML struct {
	Style valXML   `xml:"rStyle"`
	Bold  *valXML  `xml:"b"`
	Size  *valXML  `xml:"sz"`
	Color *valXML  `xml:"color"`
	Fonts *fontXML `xml:"rFonts"`
}

type fontXML struct {
	ASCII string `xml:"ascii,attr"`
	HAnsi string `xml:"hAnsi,attr"`
}

type tableXML struct {
	Rows []rowXML `xml:"tr"`
}

type rowXML struct {
	Cells []cellXML `xml:"tc"`
}

type cellXML struct {
	Paragraphs []paragraphXML `xml:"p"`
	Tables     []tableXML     `xml:"tbl"`
}

// skipped inline containers whose text is not part of the visible document.
var skippedInline = map[string]bool{
	"del":      true,
	"moveFrom": true,
}

func (p *paragraphXML) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	depth := 0
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch {
			case t.Name.Local == "pPr" && depth == 0:
				if err := d.DecodeElement(&p.Props, &t); err != nil {
					return err
				}
			case t.Name.Local == "r":
				var r runXML
				if err := d.DecodeElement(&r, &t); err != nil {
					return err
				}
				p.Runs = append(p.Runs, r)
			case skippedInline[t.Name.Local]:
				if err := d.Skip(); err != nil {
					return err
				}
			default:
				depth++
			}
		case xml.EndElement:
			if depth == 0 {
				return nil
			}
			depth--
		}
	}
}

func (r *runXML) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	var sb strings.Builder
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "rPr":
				if err := d.DecodeElement(&r.Props, &t); err != nil {
					return err
				}
				continue
			case "t":
				var s string
				if err := d.DecodeElement(&s, &t); err != nil {
					return err
				}
				sb.WriteString(s)
				continue
			case "tab", "ptab":
				sb.WriteByte('\t')
			case "br", "cr":
				sb.WriteByte('\n')
			case "noBreakHyphen":
				sb.WriteByte('-')
			}
			if err := d.Skip(); err != nil {
				return err
			}
		case xml.EndElement:
			r.Text = sb.String()
			return nil
		}
	}
}

// text returns the concatenated run text of the paragraph.
func (p paragraphXML) text() string {
	var sb strings.Builder
	for _, r := range p.Runs {
		sb.WriteString(r.Text)
	}
	return sb.String()
}

// cellText joins the paragraphs of a cell with newlines. Nested tables are
// flattened into the same text.
func (c cellXML) cellText() string {
	var parts []string
	for _, p := range c.Paragraphs {
		if s := strings.TrimSpace(p.text()); s != "" {
			parts = append(parts, s)
		}
	}
	for _, t := range c.Tables {
		for _, row := range t.Rows {
			for _, cell := range row.Cells {
				if s := cell.cellText(); s != "" {
					parts = append(parts, s)
				}
			}
		}
	}
	return strings.Join(parts, "\n")
}

// stylesXML is word/styles.xml.
type stylesXML struct {
	DocDefaults struct {
		RPr runPropsXML `xml:"rPrDefault>rPr"`
	} `xml:"docDefaults"`
	Styles []styleDefXML `xml:"style"`
}

type styleDefXML struct {
	Type    string            `xml:"type,attr"`
	StyleID string            `xml:"styleId,attr"`
	Default string            `xml:"default,attr"`
	Name    valXML            `xml:"name"`
	BasedOn valXML            `xml:"basedOn"`
	PPr     paragraphPropsXML `xml:"pPr"`
	RPr     runPropsXML       `xml:"rPr"`
}

// corePropertiesXML is docProps/core.xml.
type corePropertiesXML struct {
	Title string `xml:"title"`
}
