// Package adf compiles free-form markdown into Atlassian Document
// Format trees. The pipeline runs in two stages: goldmark parses the
// source and a builder lifts the result into the closed typed AST in
// this file, then the emitter lowers that AST into the wire document.
// Mention detection runs between the stages over plain text spans.
package adf

// BlockNode is the closed set of block-level nodes the compiler
// produces. The unexported marker method seals the set so the emitter
// can switch over it exhaustively; a node kind that is illegal for its
// container is normalized during emission, never emitted as-is.
type BlockNode interface {
	blockNode()
}

// Heading is a section heading, level 1..6
type Heading struct {
	Level int
	Spans []InlineSpan
}

// Paragraph is a run of inline content
type Paragraph struct {
	Spans []InlineSpan
}

// List is an ordered or unordered list
type List struct {
	Ordered bool
	Items   []ListItem
}

// ListItem is one list entry. Checked is nil for plain items and set
// for task list items.
type ListItem struct {
	Checked *bool
	Blocks  []BlockNode
}

// CodeBlock holds verbatim code. Text is the raw fence content,
// unescaped and never re-scanned for inline syntax.
type CodeBlock struct {
	Language string
	Text     string
}

// BlockQuote is a quoted block sequence
type BlockQuote struct {
	Blocks []BlockNode
}

// Alignment is a table column alignment
type Alignment int

const (
	AlignNone Alignment = iota
	AlignLeft
	AlignCenter
	AlignRight
)

// Table is a header row plus data rows. Rows are normalized to the
// header's column count: short rows are padded with empty cells and
// long rows truncated.
type Table struct {
	Alignments []Alignment
	Rows       []TableRow
}

// TableRow is one table row
type TableRow struct {
	Header bool
	Cells  []TableCell
}

// TableCell holds cell content. The type permits arbitrary blocks so
// programmatic construction stays flexible; the emitter flattens
// anything beyond inline content to its nearest legal form.
type TableCell struct {
	Blocks []BlockNode
}

// ThematicBreak is a horizontal rule
type ThematicBreak struct{}

func (*Heading) blockNode()       {}
func (*Paragraph) blockNode()     {}
func (*List) blockNode()          {}
func (*CodeBlock) blockNode()     {}
func (*BlockQuote) blockNode()    {}
func (*Table) blockNode()         {}
func (*ThematicBreak) blockNode() {}

// InlineSpan is the closed set of inline nodes
type InlineSpan interface {
	inlineSpan()
}

// Text is a plain text run
type Text struct {
	Content string
}

// Emphasis wraps spans in italic
type Emphasis struct {
	Spans []InlineSpan
}

// Strong wraps spans in bold
type Strong struct {
	Spans []InlineSpan
}

// Strike wraps spans in strikethrough
type Strike struct {
	Spans []InlineSpan
}

// Code is verbatim inline code; it never carries nested marks
type Code struct {
	Content string
}

// Link wraps spans in a hyperlink
type Link struct {
	Href  string
	Spans []InlineSpan
}

// Image is an inline image reference
type Image struct {
	Href string
	Alt  string
}

// MentionKind classifies how a mention identifier was written
type MentionKind string

const (
	MentionEmail     MentionKind = "email"
	MentionUsername  MentionKind = "username"
	MentionAccountID MentionKind = "accountid"
)

// Mention is a resolved reference to a directory user. It is terminal:
// no nested spans. Raw keeps the original matched text so rendering
// can fall back to it.
type Mention struct {
	Kind      MentionKind
	Raw       string
	AccountID string
	Display   string
}

func (*Text) inlineSpan()     {}
func (*Emphasis) inlineSpan() {}
func (*Strong) inlineSpan()   {}
func (*Strike) inlineSpan()   {}
func (*Code) inlineSpan()     {}
func (*Link) inlineSpan()     {}
func (*Image) inlineSpan()    {}
func (*Mention) inlineSpan()  {}
