// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package docxtest builds small word-processing packages in memory for tests.
package docxtest

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"sort"
	"strings"
	"time"
)

// fixedTime keeps fixture bytes stable across runs.
var fixedTime = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

const wNS = `xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships"`

const contentTypes = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
<Default Extension="xml" ContentType="application/xml"/>
<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
<Override PartName="/word/styles.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.styles+xml"/>
</Types>`

const rootRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>
</Relationships>`

const styles = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:styles ` + wNS + `>
<w:docDefaults><w:rPrDefault><w:rPr><w:rFonts w:ascii="Calibri" w:hAnsi="Calibri"/><w:sz w:val="22"/></w:rPr></w:rPrDefault></w:docDefaults>
<w:style w:type="paragraph" w:default="1" w:styleId="Normal"><w:name w:val="Normal"/></w:style>
<w:style w:type="paragraph" w:styleId="Heading1"><w:name w:val="heading 1"/><w:basedOn w:val="Normal"/><w:pPr><w:outlineLvl w:val="0"/></w:pPr><w:rPr><w:b/><w:sz w:val="32"/></w:rPr></w:style>
<w:style w:type="paragraph" w:styleId="Heading2"><w:name w:val="heading 2"/><w:basedOn w:val="Normal"/><w:pPr><w:outlineLvl w:val="1"/></w:pPr><w:rPr><w:b/><w:sz w:val="26"/></w:rPr></w:style>
<w:style w:type="paragraph" w:styleId="ListParagraph"><w:name w:val="List Paragraph"/><w:basedOn w:val="Normal"/></w:style>
</w:styles>`

// Run describes one formatted run.
type Run struct {
	Text  string
	Bold  bool
	Size  int
	Color string
}

// Builder accumulates document content.
type Builder struct {
	body    strings.Builder
	title   string
	headers []string
	footers []string
	parts   map[string]string
}

// New returns an empty builder.
func New() *Builder {
	return &Builder{parts: map[string]string{}}
}

// Escape returns s escaped for XML character data.
func Escape(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}

func runXML(r Run) string {
	var props strings.Builder
	if r.Bold {
		props.WriteString(`<w:b/>`)
	}
	if r.Color != "" {
		fmt.Fprintf(&props, `<w:color w:val="%s"/>`, r.Color)
	}
	if r.Size > 0 {
		fmt.Fprintf(&props, `<w:sz w:val="%d"/>`, r.Size)
	}
	rpr := ""
	if props.Len() > 0 {
		rpr = "<w:rPr>" + props.String() + "</w:rPr>"
	}
	return fmt.Sprintf(`<w:r>%s<w:t xml:space="preserve">%s</w:t></w:r>`, rpr, Escape(r.Text))
}

// Heading adds a paragraph in the Heading1 style.
func (b *Builder) Heading(text string) *Builder {
	fmt.Fprintf(&b.body, `<w:p><w:pPr><w:pStyle w:val="Heading1"/></w:pPr>%s</w:p>`, runXML(Run{Text: text}))
	return b
}

// Para adds a plain paragraph.
func (b *Builder) Para(text string) *Builder {
	fmt.Fprintf(&b.body, `<w:p>%s</w:p>`, runXML(Run{Text: text}))
	return b
}

// Runs adds a paragraph made of the given runs.
func (b *Builder) Runs(runs ...Run) *Builder {
	b.body.WriteString("<w:p>")
	for _, r := range runs {
		b.body.WriteString(runXML(r))
	}
	b.body.WriteString("</w:p>")
	return b
}

// ListItem adds a numbered list paragraph at the given level.
func (b *Builder) ListItem(text string, level int) *Builder {
	fmt.Fprintf(&b.body,
		`<w:p><w:pPr><w:pStyle w:val="ListParagraph"/><w:numPr><w:ilvl w:val="%d"/><w:numId w:val="1"/></w:numPr></w:pPr>%s</w:p>`,
		level, runXML(Run{Text: text}))
	return b
}

// Table adds a table; each argument is one row of cell texts.
func (b *Builder) Table(rows ...[]string) *Builder {
	b.body.WriteString("<w:tbl><w:tblPr/>")
	for _, row := range rows {
		b.body.WriteString("<w:tr>")
		for _, cell := range row {
			fmt.Fprintf(&b.body, `<w:tc><w:p>%s</w:p></w:tc>`, runXML(Run{Text: cell}))
		}
		b.body.WriteString("</w:tr>")
	}
	b.body.WriteString("</w:tbl>")
	return b
}

// Raw appends body XML verbatim.
func (b *Builder) Raw(x string) *Builder {
	b.body.WriteString(x)
	return b
}

// Title sets the dc:title core property.
func (b *Builder) Title(t string) *Builder {
	b.title = t
	return b
}

// Header adds a header part holding one paragraph of text.
func (b *Builder) Header(text string) *Builder {
	b.headers = append(b.headers, text)
	return b
}

// Footer adds a footer part holding one paragraph of text.
func (b *Builder) Footer(text string) *Builder {
	b.footers = append(b.footers, text)
	return b
}

// Part adds or replaces an arbitrary package part.
func (b *Builder) Part(name, content string) *Builder {
	b.parts[name] = content
	return b
}

// Document returns the word/document.xml content.
func (b *Builder) Document() string {
	return `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n" +
		`<w:document ` + wNS + `><w:body>` + b.body.String() +
		`<w:sectPr><w:pgSz w:w="11906" w:h="16838"/></w:sectPr></w:body></w:document>`
}

type entry struct{ name, content string }

// Bytes returns the complete package.
func (b *Builder) Bytes() []byte {
	entries := []entry{
		{"[Content_Types].xml", contentTypes},
		{"_rels/.rels", rootRels},
		{"word/document.xml", b.Document()},
		{"word/styles.xml", styles},
	}
	if b.title != "" {
		entries = append(entries, entry{"docProps/core.xml",
			`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
				`<cp:coreProperties xmlns:cp="http://schemas.openxmlformats.org/package/2006/metadata/core-properties" xmlns:dc="http://purl.org/dc/elements/1.1/">` +
				`<dc:title>` + Escape(b.title) + `</dc:title></cp:coreProperties>`})
	}
	for i, h := range b.headers {
		entries = append(entries, entry{fmt.Sprintf("word/header%d.xml", i+1),
			`<w:hdr ` + wNS + `><w:p>` + runXML(Run{Text: h}) + `</w:p></w:hdr>`})
	}
	for i, f := range b.footers {
		entries = append(entries, entry{fmt.Sprintf("word/footer%d.xml", i+1),
			`<w:ftr ` + wNS + `><w:p>` + runXML(Run{Text: f}) + `</w:p></w:ftr>`})
	}
	names := make([]string, 0, len(b.parts))
	for name := range b.parts {
		replacedBase := false
		for i := range entries {
			if entries[i].name == name {
				entries[i].content = b.parts[name]
				replacedBase = true
			}
		}
		if !replacedBase {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	for _, name := range names {
		entries = append(entries, entry{name, b.parts[name]})
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, e := range entries {
		w, err := zw.CreateHeader(&zip.FileHeader{Name: e.name, Method: zip.Deflate, Modified: fixedTime})
		if err != nil {
			panic(err)
		}
		if _, err := w.Write([]byte(e.content)); err != nil {
			panic(err)
		}
	}
	if err := zw.Close(); err != nil {
		panic(err)
	}
	return buf.Bytes()
}
