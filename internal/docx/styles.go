// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package docx

import (
	"strings"

	"github.com/pdiddy/datasheet-engine/pkg/types"
)

// maxStyleDepth bounds basedOn chains so that cyclic style sheets terminate.
const maxStyleDepth = 16

// headingStyles maps built-in style ids to heading levels.
var headingStyles = map[string]int{
	"heading1": 1, "heading2": 2, "heading3": 3,
	"heading4": 4, "heading5": 5, "heading6": 6,
	"heading7": 7, "heading8": 8, "heading9": 9,
	"title": 1,
}

// styleSheet resolves effective formatting through paragraph style chains.
type styleSheet struct {
	styles        map[string]styleDefXML
	defaults      runPropsXML
	defaultParaID string
}

func newStyleSheet(sx *stylesXML) *styleSheet {
	st := &styleSheet{styles: map[string]styleDefXML{}}
	if sx == nil {
		return st
	}
	st.defaults = sx.DocDefaults.RPr
	for _, s := range sx.Styles {
		st.styles[s.StyleID] = s
		if s.Type == "paragraph" && (s.Default == "1" || s.Default == "true") {
			st.defaultParaID = s.StyleID
		}
	}
	return st
}

// chain returns the style and its ancestors, nearest first.
func (st *styleSheet) chain(id string) []styleDefXML {
	var out []styleDefXML
	seen := map[string]bool{}
	for id != "" && len(out) < maxStyleDepth && !seen[id] {
		seen[id] = true
		s, ok := st.styles[id]
		if !ok {
			break
		}
		out = append(out, s)
		id = s.BasedOn.Val
	}
	return out
}

func (st *styleSheet) paragraphStyle(p paragraphXML) string {
	if p.Props.Style.Val != "" {
		return p.Props.Style.Val
	}
	return st.defaultParaID
}

// runProp walks direct run properties, the character style, the paragraph
// mark, the paragraph style chain and the document defaults, returning the
// first value pick finds.
func (st *styleSheet) runProp(p paragraphXML, r runXML, pick func(runPropsXML) (string, bool)) string {
	if v, ok := pick(r.Props); ok {
		return v
	}
	for _, s := range st.chain(r.Props.Style.Val) {
		if v, ok := pick(s.RPr); ok {
			return v
		}
	}
	for _, s := range st.chain(st.paragraphStyle(p)) {
		if v, ok := pick(s.RPr); ok {
			return v
		}
	}
	if v, ok := pick(st.defaults); ok {
		return v
	}
	return ""
}

func pickBold(rp runPropsXML) (string, bool) {
	if rp.Bold == nil {
		return "", false
	}
	switch strings.ToLower(rp.Bold.Val) {
	case "0", "false", "off", "none":
		return "false", true
	}
	return "true", true
}

func pickSize(rp runPropsXML) (string, bool) {
	if rp.Size == nil || rp.Size.Val == "" {
		return "", false
	}
	return rp.Size.Val, true
}

func pickColor(rp runPropsXML) (string, bool) {
	if rp.Color == nil || rp.Color.Val == "" {
		return "", false
	}
	return rp.Color.Val, true
}

func pickFont(rp runPropsXML) (string, bool) {
	if rp.Fonts == nil {
		return "", false
	}
	if rp.Fonts.ASCII != "" {
		return rp.Fonts.ASCII, true
	}
	if rp.Fonts.HAnsi != "" {
		return rp.Fonts.HAnsi, true
	}
	return "", false
}

// format resolves the formatting hints of a paragraph. Run-level values
// are taken from the first run carrying visible text; Bold requires every
// such run to be bold.
func (st *styleSheet) format(p paragraphXML) types.Format {
	f := types.Format{
		StyleID: p.Props.Style.Val,
		Align:   p.Props.Jc.Val,
	}

	first := true
	for _, r := range p.Runs {
		if strings.TrimSpace(r.Text) == "" {
			continue
		}
		bold := st.runProp(p, r, pickBold) == "true"
		if first {
			f.Bold = bold
			f.Font = st.runProp(p, r, pickFont)
			f.Color = st.runProp(p, r, pickColor)
			if n, ok := parseInt(st.runProp(p, r, pickSize)); ok {
				f.SizeHalfPoints = n
			}
			first = false
			continue
		}
		f.Bold = f.Bold && bold
	}

	f.HeadingLevel = st.headingLevel(p)
	return f
}

// headingLevel reports a 1-based heading level from the paragraph outline
// level, a built-in heading style, or the style chain.
func (st *styleSheet) headingLevel(p paragraphXML) int {
	if p.Props.OutlineLvl != nil {
		if n, ok := parseInt(p.Props.OutlineLvl.Val); ok && n >= 0 && n <= 8 {
			return n + 1
		}
	}
	for _, s := range st.chain(st.paragraphStyle(p)) {
		if lvl, ok := headingStyles[strings.ToLower(s.StyleID)]; ok {
			return lvl
		}
		if s.PPr.OutlineLvl != nil {
			if n, ok := parseInt(s.PPr.OutlineLvl.Val); ok && n >= 0 && n <= 8 {
				return n + 1
			}
		}
		name := strings.ToLower(s.Name.Val)
		if strings.HasPrefix(name, "heading") {
			if n, ok := parseInt(strings.TrimPrefix(name, "heading")); ok && n >= 1 && n <= 9 {
				return n
			}
			return 1
		}
	}
	if lvl, ok := headingStyles[strings.ToLower(p.Props.Style.Val)]; ok {
		return lvl
	}
	return 0
}

// numbering reports the numbering instance and level of a list paragraph,
// from direct properties first and the style chain second.
func (st *styleSheet) numbering(p paragraphXML) (string, int, bool) {
	if np := p.Props.NumPr; np != nil && np.NumID.Val != "" {
		lvl, _ := parseInt(np.ILvl.Val)
		return np.NumID.Val, lvl, true
	}
	for _, s := range st.chain(st.paragraphStyle(p)) {
		if np := s.PPr.NumPr; np != nil && np.NumID.Val != "" {
			lvl, _ := parseInt(np.ILvl.Val)
			return np.NumID.Val, lvl, true
		}
	}
	return "", 0, false
}
