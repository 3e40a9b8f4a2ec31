// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// BlockKind classifies a block of a parsed source document.
type BlockKind string

const (
	BlockParagraph BlockKind = "paragraph"
	BlockTable     BlockKind = "table"
	BlockListItem  BlockKind = "list_item"
)

// Format carries the resolved formatting hints of a block. Values come
// from direct run/paragraph properties first, then the paragraph style
// chain, then document defaults.
type Format struct {
	// Font is the ASCII font family of the first non-empty run.
	Font string `json:"font,omitempty" yaml:"font,omitempty"`

	// SizeHalfPoints is the font size in half-points (w:sz); 0 when unknown.
	SizeHalfPoints int `json:"size_half_points,omitempty" yaml:"size_half_points,omitempty"`

	// Color is the hex run colour; "" or "auto" means the default colour.
	Color string `json:"color,omitempty" yaml:"color,omitempty"`

	// Bold is true when every non-empty run of the block is bold.
	Bold bool `json:"bold,omitempty" yaml:"bold,omitempty"`

	// Align is the paragraph justification (left, center, right, both).
	Align string `json:"align,omitempty" yaml:"align,omitempty"`

	// StyleID is the paragraph style identifier.
	StyleID string `json:"style_id,omitempty" yaml:"style_id,omitempty"`

	// HeadingLevel is 1-9 when the style or outline level marks a heading, 0 otherwise.
	HeadingLevel int `json:"heading_level,omitempty" yaml:"heading_level,omitempty"`
}

// Block is one addressable unit of a source document.
type Block struct {
	// Index is the block position in document order, starting at 0.
	Index int `json:"index" yaml:"index"`

	Kind BlockKind `json:"kind" yaml:"kind"`

	// Text is the plain text of a paragraph or list item. For tables it is
	// the cell text joined with tabs and newlines.
	Text string `json:"text" yaml:"text"`

	// Level is the list nesting level (0-based) for list items.
	Level int `json:"level,omitempty" yaml:"level,omitempty"`

	Format Format `json:"format" yaml:"format"`

	// Rows holds the cell text of a table block, row-major.
	Rows [][]string `json:"rows,omitempty" yaml:"rows,omitempty"`
}

// RawDocument is the ordered block sequence of a parsed source document.
// It is never modified after parsing.
type RawDocument struct {
	Blocks []Block `json:"blocks" yaml:"blocks"`

	// Title is the dc:title core property, if any.
	Title string `json:"title,omitempty" yaml:"title,omitempty"`

	// HeaderText is the concatenated text of the page header parts.
	HeaderText string `json:"header_text,omitempty" yaml:"header_text,omitempty"`

	// BodySizeHalfPoints is the dominant body font size, used to recognise
	// headings set in a larger font.
	BodySizeHalfPoints int `json:"body_size_half_points,omitempty" yaml:"body_size_half_points,omitempty"`
}

// Table returns the rows of the block when it is a table, nil otherwise.
func (b Block) Table() [][]string {
	if b.Kind != BlockTable {
		return nil
	}
	return b.Rows
}
