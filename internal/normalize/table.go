// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package normalize

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/pdiddy/datasheet-engine/pkg/types"
)

// KVRow is one row of a key-value table: the first cell and the rest.
type KVRow struct {
	Key    string
	Values []string
}

// Value returns the first value cell, or "".
func (r KVRow) Value() string {
	if len(r.Values) == 0 {
		return ""
	}
	return r.Values[0]
}

// KeyValueTable is a table whose rows pair a label with one or more values.
type KeyValueTable struct {
	// Header is the detected header row, nil when the table has none.
	Header []string
	Rows   []KVRow
}

// kvHeaderWords is the vocabulary that marks the first row of a key-value
// table as a header.
var kvHeaderWords = map[string]bool{
	"description": true, "quantity": true, "qty": true, "item": true,
	"items": true, "preparation": true, "component": true, "components": true,
	"specification": true, "specifications": true, "spec": true, "parameter": true,
	"parameters": true, "value": true, "values": true, "name": true,
	"reagent": true, "reagents": true, "volume": true, "size": true,
	"amount": true, "storage": true, "contents": true, "details": true,
}

// kvLine matches "Key: value" paragraphs.
var kvLine = regexp.MustCompile(`^([^:]{1,60}):\s*(.+)$`)

// KeyValueTablesOf returns every table in the blocks as a key-value table,
// dropping empty rows and a recognised header row. When the blocks hold no
// table, "Key: value" paragraphs form a single headerless table.
func KeyValueTablesOf(blocks []types.Block) []KeyValueTable {
	var out []KeyValueTable
	for _, b := range blocks {
		rows := b.Table()
		if rows == nil {
			continue
		}
		t := KeyValueTable{Rows: []KVRow{}}
		for i, row := range rows {
			cells := trimCells(row)
			if allEmpty(cells) {
				continue
			}
			if i == 0 && isKVHeader(cells) {
				t.Header = cells
				continue
			}
			t.Rows = append(t.Rows, KVRow{Key: cells[0], Values: cells[1:]})
		}
		if len(t.Rows) > 0 || t.Header != nil {
			out = append(out, t)
		}
	}
	if len(out) > 0 {
		return out
	}

	t := KeyValueTable{Rows: []KVRow{}}
	for _, b := range blocks {
		if b.Kind == types.BlockTable {
			continue
		}
		for _, line := range strings.Split(b.Text, "\n") {
			if m := kvLine.FindStringSubmatch(strings.TrimSpace(line)); m != nil {
				t.Rows = append(t.Rows, KVRow{Key: CollapseSpace(m[1]), Values: []string{CollapseSpace(m[2])}})
			}
		}
	}
	if len(t.Rows) > 0 {
		out = append(out, t)
	}
	return out
}

// isKVHeader requires every non-empty cell, or at least two cells, to be
// header words.
func isKVHeader(cells []string) bool {
	hits, total := 0, 0
	for _, c := range cells {
		if c == "" {
			continue
		}
		total++
		if kvHeaderWords[headerWord(c)] {
			hits++
		}
	}
	return total > 0 && (hits == total || hits >= 2)
}

// headerWord lower-cases a header cell and drops units and punctuation:
// "Quantity (ml)" becomes "quantity".
func headerWord(s string) string {
	s = strings.ToLower(CollapseSpace(s))
	if i := strings.IndexAny(s, "(["); i >= 0 {
		s = s[:i]
	}
	return strings.Trim(s, " .:%")
}

// Cell is a numeric-or-text table cell.
type Cell struct {
	Text     string
	Number   float64
	IsNumber bool
}

// NumericTable is a table with a recognised header row.
type NumericTable struct {
	// Label is the nearest paragraph before the table inside the section.
	Label  string
	Header []string
	Rows   [][]Cell
}

// Column returns the index of the first header cell matching one of the
// given words, or -1. Words of up to two letters must match the whole
// header word; longer words may match inside it.
func (t NumericTable) Column(words ...string) int {
	for i, h := range t.Header {
		if headerMatches(headerWord(h), words) {
			return i
		}
	}
	return -1
}

func headerMatches(hw string, words []string) bool {
	if hw == "" {
		return false
	}
	for _, w := range words {
		if hw == w || (len(w) > 2 && strings.Contains(hw, w)) {
			return true
		}
	}
	return false
}

// numericVocab is the header vocabulary per numeric section, and
// numericMinCols the minimum column count a matching table must have.
var (
	numericVocab = map[types.SectionKey][]string{
		types.SectionStandardCurve:   {"conc", "standard", "o.d", "od", "absorbance"},
		types.SectionIntraInterAssay: {"sample", "mean", "sd", "s.d", "standard deviation", "cv", "n"},
		types.SectionReproducibility: {"sample", "value", "observed", "added", "spike", "expected", "recovery"},
	}
	numericMinCols = map[types.SectionKey]int{
		types.SectionStandardCurve:   2,
		types.SectionIntraInterAssay: 4,
		types.SectionReproducibility: 3,
	}
)

// NumericTablesOf returns the tables of the blocks whose header matches
// the vocabulary of key. A table whose labels run down the first column is
// transposed first. Cells are parsed as numbers where possible and rows
// whose cells are all empty are dropped.
func NumericTablesOf(key types.SectionKey, blocks []types.Block) []NumericTable {
	vocab := numericVocab[key]
	minCols := numericMinCols[key]
	if minCols == 0 {
		minCols = 2
	}

	var out []NumericTable
	label := ""
	for _, b := range blocks {
		if b.Kind != types.BlockTable {
			if s := CollapseSpace(b.Text); s != "" {
				label = s
			}
			continue
		}
		rows := make([][]string, 0, len(b.Rows))
		for _, r := range b.Rows {
			rows = append(rows, trimCells(r))
		}
		if len(rows) == 0 {
			continue
		}

		if vocabHits(column(rows, 0), vocab) > vocabHits(rows[0], vocab) {
			rows = transpose(rows)
		}
		header := rows[0]
		if vocabHits(header, vocab) < 1 || len(header) < minCols {
			continue
		}

		t := NumericTable{Label: label, Header: header, Rows: [][]Cell{}}
		for _, r := range rows[1:] {
			if allEmpty(r) {
				continue
			}
			cells := make([]Cell, len(header))
			for i := range cells {
				if i < len(r) {
					cells[i] = ParseCell(r[i])
				}
			}
			t.Rows = append(t.Rows, cells)
		}
		out = append(out, t)
		label = ""
	}
	return out
}

// thousands matches numbers grouped with commas, such as "1,250.5".
var thousands = regexp.MustCompile(`^[-+]?\d{1,3}(?:,\d{3})+(?:\.\d+)?$`)

// ParseCell parses "1,250", "12.5%", "0.05" and the decimal comma form
// "0,5" as numbers; anything else is kept as text only.
func ParseCell(s string) Cell {
	c := Cell{Text: s}
	clean := strings.NewReplacer("%", "", " ", "").Replace(s)
	switch {
	case clean == "":
		return c
	case thousands.MatchString(clean):
		clean = strings.ReplaceAll(clean, ",", "")
	case strings.Count(clean, ",") == 1 && !strings.Contains(clean, "."):
		clean = strings.Replace(clean, ",", ".", 1)
	}
	if f, err := strconv.ParseFloat(clean, 64); err == nil {
		c.Number = f
		c.IsNumber = true
	}
	return c
}

func vocabHits(cells []string, vocab []string) int {
	hits := 0
	for _, c := range cells {
		if headerMatches(headerWord(c), vocab) {
			hits++
		}
	}
	return hits
}

func column(rows [][]string, i int) []string {
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		if i < len(r) {
			out = append(out, r[i])
		}
	}
	return out
}

func transpose(rows [][]string) [][]string {
	width := 0
	for _, r := range rows {
		width = max(width, len(r))
	}
	out := make([][]string, width)
	for c := 0; c < width; c++ {
		out[c] = make([]string, len(rows))
		for r := range rows {
			if c < len(rows[r]) {
				out[c][r] = rows[r][c]
			}
		}
	}
	return out
}

func trimCells(row []string) []string {
	out := make([]string, len(row))
	for i, c := range row {
		out[i] = CollapseSpace(c)
	}
	return out
}

func allEmpty(cells []string) bool {
	for _, c := range cells {
		if c != "" {
			return false
		}
	}
	return true
}
