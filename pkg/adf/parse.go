package adf

import (
	"bytes"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

var (
	markdownOnce sync.Once
	markdown     goldmark.Markdown
)

// markdownParser returns the shared goldmark instance. GFM tables,
// strikethrough and task lists are enabled to match the dialect the
// rest of the toolchain expects.
func markdownParser() goldmark.Markdown {
	markdownOnce.Do(func() {
		markdown = goldmark.New(
			goldmark.WithExtensions(
				extension.Table,
				extension.Strikethrough,
				extension.TaskList,
			),
		)
	})
	return markdown
}

// parseBlocks parses markdown source into the typed block AST
func parseBlocks(source []byte) []BlockNode {
	root := markdownParser().Parser().Parse(text.NewReader(source))
	return blocksFromChildren(root, source)
}

func blocksFromChildren(parent ast.Node, source []byte) []BlockNode {
	var blocks []BlockNode
	for child := parent.FirstChild(); child != nil; child = child.NextSibling() {
		blocks = append(blocks, blockFromNode(child, source)...)
	}
	return blocks
}

func blockFromNode(node ast.Node, source []byte) []BlockNode {
	switch n := node.(type) {
	case *ast.Heading:
		level := n.Level
		if level < 1 {
			level = 1
		} else if level > 6 {
			level = 6
		}
		return []BlockNode{&Heading{Level: level, Spans: spansFromChildren(n, source)}}

	case *ast.Paragraph:
		return []BlockNode{&Paragraph{Spans: spansFromChildren(n, source)}}

	case *ast.TextBlock:
		// tight list items wrap their inline content in a text block
		return []BlockNode{&Paragraph{Spans: spansFromChildren(n, source)}}

	case *ast.FencedCodeBlock:
		// an unterminated fence parses as a block running to EOF
		return []BlockNode{&CodeBlock{
			Language: string(n.Language(source)),
			Text:     blockText(n, source),
		}}

	case *ast.CodeBlock:
		return []BlockNode{&CodeBlock{Text: blockText(n, source)}}

	case *ast.List:
		return []BlockNode{listFromNode(n, source)}

	case *ast.Blockquote:
		return []BlockNode{&BlockQuote{Blocks: blocksFromChildren(n, source)}}

	case *ast.ThematicBreak:
		return []BlockNode{&ThematicBreak{}}

	case *ast.HTMLBlock:
		raw := blockText(n, source)
		if n.HasClosure() {
			raw += "\n" + strings.TrimSuffix(string(n.ClosureLine.Value(source)), "\n")
		}
		if txt := htmlText(raw); txt != "" {
			return []BlockNode{&Paragraph{Spans: []InlineSpan{&Text{Content: txt}}}}
		}
		return nil

	case *extast.Table:
		return []BlockNode{tableFromNode(n, source)}

	default:
		return nil
	}
}

// blockText collects a block's raw line content with the final newline
// stripped, so fence content round-trips exactly.
func blockText(node ast.Node, source []byte) string {
	var buf bytes.Buffer
	lines := node.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		buf.Write(seg.Value(source))
	}
	return strings.TrimSuffix(buf.String(), "\n")
}

// htmlText strips markup from an HTML fragment and keeps its visible
// text. Malformed fragments degrade to their raw text.
func htmlText(raw string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return strings.TrimSpace(raw)
	}
	return strings.TrimSpace(doc.Text())
}

func listFromNode(n *ast.List, source []byte) *List {
	list := &List{Ordered: n.IsOrdered()}
	for child := n.FirstChild(); child != nil; child = child.NextSibling() {
		item, ok := child.(*ast.ListItem)
		if !ok {
			continue
		}
		list.Items = append(list.Items, ListItem{
			Checked: taskCheckState(item),
			Blocks:  blocksFromChildren(item, source),
		})
	}
	return list
}

// taskCheckState reports the checkbox state of a task list item, or
// nil for a plain item. The checkbox parses as the first inline child
// of the item's leading text block.
func taskCheckState(item *ast.ListItem) *bool {
	first := item.FirstChild()
	if first == nil {
		return nil
	}
	box, ok := first.FirstChild().(*extast.TaskCheckBox)
	if !ok {
		return nil
	}
	checked := box.IsChecked
	return &checked
}

func tableFromNode(n *extast.Table, source []byte) *Table {
	table := &Table{}
	for _, a := range n.Alignments {
		table.Alignments = append(table.Alignments, alignmentFrom(a))
	}
	for child := n.FirstChild(); child != nil; child = child.NextSibling() {
		switch row := child.(type) {
		case *extast.TableHeader:
			table.Rows = append(table.Rows, tableRowFromNode(row, source, true))
		case *extast.TableRow:
			table.Rows = append(table.Rows, tableRowFromNode(row, source, false))
		}
	}
	table.normalize()
	return table
}

func tableRowFromNode(row ast.Node, source []byte, header bool) TableRow {
	r := TableRow{Header: header}
	for child := row.FirstChild(); child != nil; child = child.NextSibling() {
		cell, ok := child.(*extast.TableCell)
		if !ok {
			continue
		}
		r.Cells = append(r.Cells, TableCell{
			Blocks: []BlockNode{&Paragraph{Spans: spansFromChildren(cell, source)}},
		})
	}
	return r
}

// normalize pads or truncates every row to the header's column count.
// Without a header row the widest row wins. Alignments are padded to
// the same width.
func (t *Table) normalize() {
	width := 0
	for _, row := range t.Rows {
		if row.Header {
			width = len(row.Cells)
			break
		}
	}
	if width == 0 {
		for _, r := range t.Rows {
			if len(r.Cells) > width {
				width = len(r.Cells)
			}
		}
	}
	for i := range t.Rows {
		for len(t.Rows[i].Cells) < width {
			t.Rows[i].Cells = append(t.Rows[i].Cells, TableCell{
				Blocks: []BlockNode{&Paragraph{}},
			})
		}
		if len(t.Rows[i].Cells) > width {
			t.Rows[i].Cells = t.Rows[i].Cells[:width]
		}
	}
	for len(t.Alignments) < width {
		t.Alignments = append(t.Alignments, AlignNone)
	}
	if len(t.Alignments) > width {
		t.Alignments = t.Alignments[:width]
	}
}

func alignmentFrom(a extast.Alignment) Alignment {
	switch a {
	case extast.AlignLeft:
		return AlignLeft
	case extast.AlignCenter:
		return AlignCenter
	case extast.AlignRight:
		return AlignRight
	default:
		return AlignNone
	}
}

func spansFromChildren(parent ast.Node, source []byte) []InlineSpan {
	var spans []InlineSpan
	for child := parent.FirstChild(); child != nil; child = child.NextSibling() {
		spans = append(spans, spansFromNode(child, source)...)
	}
	return mergeAdjacentText(spans)
}

func spansFromNode(node ast.Node, source []byte) []InlineSpan {
	switch n := node.(type) {
	case *ast.Text:
		spans := []InlineSpan{&Text{Content: string(n.Segment.Value(source))}}
		if n.HardLineBreak() {
			spans = append(spans, &Text{Content: "\n"})
		} else if n.SoftLineBreak() {
			spans = append(spans, &Text{Content: " "})
		}
		return spans

	case *ast.String:
		return []InlineSpan{&Text{Content: string(n.Value)}}

	case *ast.Emphasis:
		inner := spansFromChildren(n, source)
		if n.Level >= 2 {
			return []InlineSpan{&Strong{Spans: inner}}
		}
		return []InlineSpan{&Emphasis{Spans: inner}}

	case *extast.Strikethrough:
		return []InlineSpan{&Strike{Spans: spansFromChildren(n, source)}}

	case *ast.CodeSpan:
		return []InlineSpan{&Code{Content: codeSpanText(n, source)}}

	case *ast.Link:
		return []InlineSpan{&Link{
			Href:  string(n.Destination),
			Spans: spansFromChildren(n, source),
		}}

	case *ast.AutoLink:
		url := string(n.URL(source))
		label := string(n.Label(source))
		return []InlineSpan{&Link{
			Href:  url,
			Spans: []InlineSpan{&Text{Content: label}},
		}}

	case *ast.Image:
		return []InlineSpan{&Image{
			Href: string(n.Destination),
			Alt:  inlineText(n, source),
		}}

	case *ast.RawHTML:
		var buf bytes.Buffer
		for i := 0; i < n.Segments.Len(); i++ {
			seg := n.Segments.At(i)
			buf.Write(seg.Value(source))
		}
		if txt := htmlText(buf.String()); txt != "" {
			return []InlineSpan{&Text{Content: txt}}
		}
		return nil

	case *extast.TaskCheckBox:
		// consumed by taskCheckState, never rendered inline
		return nil

	default:
		return nil
	}
}

func codeSpanText(n *ast.CodeSpan, source []byte) string {
	var buf bytes.Buffer
	for child := n.FirstChild(); child != nil; child = child.NextSibling() {
		if t, ok := child.(*ast.Text); ok {
			buf.Write(t.Segment.Value(source))
		}
	}
	return buf.String()
}

// inlineText flattens a subtree to its visible text, used for image
// alt text.
func inlineText(parent ast.Node, source []byte) string {
	var buf bytes.Buffer
	for child := parent.FirstChild(); child != nil; child = child.NextSibling() {
		switch t := child.(type) {
		case *ast.Text:
			buf.Write(t.Segment.Value(source))
		case *ast.String:
			buf.Write(t.Value)
		default:
			buf.WriteString(inlineText(child, source))
		}
	}
	return buf.String()
}

// mergeAdjacentText joins consecutive plain text spans. goldmark
// splits text at token boundaries, so without the merge a mention
// like "@user@example.com" never sits in a single span.
func mergeAdjacentText(spans []InlineSpan) []InlineSpan {
	if len(spans) < 2 {
		return spans
	}
	merged := make([]InlineSpan, 0, len(spans))
	for _, span := range spans {
		t, ok := span.(*Text)
		if ok && len(merged) > 0 {
			if prev, ok := merged[len(merged)-1].(*Text); ok {
				prev.Content += t.Content
				continue
			}
		}
		merged = append(merged, span)
	}
	return merged
}
