package adf

// emitDocument lowers the typed AST into the wire document. Every
// node the emitter writes is structurally legal for its container:
// text lives only under blocks, table cells hold paragraphs, list
// items hold paragraphs, nested lists and code blocks. Anything else
// is normalized to its nearest legal form on the way down.
func emitDocument(blocks []BlockNode) *Document {
	content := emitBlocks(blocks)
	if len(content) == 0 {
		content = []*Node{emptyParagraph()}
	}
	return &Document{Type: "doc", Version: 1, Content: content}
}

func emitBlocks(blocks []BlockNode) []*Node {
	var nodes []*Node
	for _, block := range blocks {
		nodes = append(nodes, emitBlock(block)...)
	}
	return nodes
}

func emitBlock(block BlockNode) []*Node {
	switch b := block.(type) {
	case *Heading:
		inline, media := emitSpans(b.Spans, nil)
		nodes := []*Node{{
			Type:    "heading",
			Attrs:   map[string]interface{}{"level": b.Level},
			Content: orEmptyText(inline),
		}}
		return append(nodes, media...)

	case *Paragraph:
		return paragraphNodes(b.Spans)

	case *CodeBlock:
		node := &Node{
			Type:    "codeBlock",
			Content: []*Node{textNode(b.Text, nil)},
		}
		if b.Language != "" {
			node.Attrs = map[string]interface{}{"language": b.Language}
		}
		return []*Node{node}

	case *List:
		return []*Node{emitList(b)}

	case *BlockQuote:
		content := emitBlocks(b.Blocks)
		if len(content) == 0 {
			return nil
		}
		return []*Node{{Type: "blockquote", Content: content}}

	case *Table:
		return emitTable(b)

	case *ThematicBreak:
		return []*Node{{Type: "rule"}}

	default:
		return nil
	}
}

// paragraphNodes emits a paragraph. Images are not legal inline
// content, so each one is hoisted into a trailing mediaSingle block.
func paragraphNodes(spans []InlineSpan) []*Node {
	inline, media := emitSpans(spans, nil)
	var out []*Node
	if len(inline) > 0 || len(media) == 0 {
		out = append(out, &Node{Type: "paragraph", Content: orEmptyText(inline)})
	}
	return append(out, media...)
}

// emitSpans flattens the span tree into flat text nodes carrying
// accumulated marks. Formatting wrappers push a mark and recurse;
// terminal spans emit a node. The second return value carries hoisted
// media blocks.
func emitSpans(spans []InlineSpan, marks []*Mark) (inline, media []*Node) {
	for _, span := range spans {
		switch s := span.(type) {
		case *Text:
			if s.Content == "" {
				continue
			}
			inline = append(inline, textNode(s.Content, copyMarks(marks)))

		case *Strong:
			in, med := emitSpans(s.Spans, pushMark(marks, &Mark{Type: "strong"}))
			inline = append(inline, in...)
			media = append(media, med...)

		case *Emphasis:
			in, med := emitSpans(s.Spans, pushMark(marks, &Mark{Type: "em"}))
			inline = append(inline, in...)
			media = append(media, med...)

		case *Strike:
			in, med := emitSpans(s.Spans, pushMark(marks, &Mark{Type: "strike"}))
			inline = append(inline, in...)
			media = append(media, med...)

		case *Link:
			mark := &Mark{Type: "link", Attrs: map[string]interface{}{"href": s.Href}}
			in, med := emitSpans(s.Spans, pushMark(marks, mark))
			inline = append(inline, in...)
			media = append(media, med...)

		case *Code:
			// the code mark combines with nothing else
			inline = append(inline, textNode(s.Content, []*Mark{{Type: "code"}}))

		case *Mention:
			inline = append(inline, &Node{
				Type: "mention",
				Attrs: map[string]interface{}{
					"id":   s.AccountID,
					"text": "@" + s.Display,
				},
			})

		case *Image:
			media = append(media, mediaSingle(s))
		}
	}
	return inline, media
}

func mediaSingle(img *Image) *Node {
	attrs := map[string]interface{}{
		"type": "external",
		"url":  img.Href,
	}
	if img.Alt != "" {
		attrs["alt"] = img.Alt
	}
	return &Node{
		Type:    "mediaSingle",
		Attrs:   map[string]interface{}{"layout": "center"},
		Content: []*Node{{Type: "media", Attrs: attrs}},
	}
}

func emitList(l *List) *Node {
	listType := "bulletList"
	if l.Ordered {
		listType = "orderedList"
	}
	node := &Node{Type: listType}
	for _, item := range l.Items {
		content := listItemContent(item)
		if len(content) == 0 {
			content = []*Node{emptyParagraph()}
		}
		node.Content = append(node.Content, &Node{Type: "listItem", Content: content})
	}
	if len(node.Content) == 0 {
		node.Content = []*Node{{Type: "listItem", Content: []*Node{emptyParagraph()}}}
	}
	return node
}

// listItemContent emits an item's blocks, keeping only what a
// listItem may contain. Headings demote to bold paragraphs, rules are
// dropped, quotes and tables flatten into their inner paragraphs.
// Task state renders as a checkbox prefix on the first paragraph,
// which Jira Cloud accepts where true taskList nodes are rejected.
func listItemContent(item ListItem) []*Node {
	var out []*Node
	for _, block := range item.Blocks {
		switch b := block.(type) {
		case *Paragraph:
			out = append(out, paragraphNodes(b.Spans)...)
		case *List:
			out = append(out, emitList(b))
		case *CodeBlock:
			out = append(out, emitBlock(b)...)
		case *Heading:
			out = append(out, paragraphNodes([]InlineSpan{&Strong{Spans: b.Spans}})...)
		case *BlockQuote:
			out = append(out, listItemContent(ListItem{Blocks: b.Blocks})...)
		case *Table:
			out = append(out, flattenTable(b)...)
		case *ThematicBreak:
		}
	}
	if item.Checked != nil {
		out = prefixFirstParagraph(out, taskPrefix(*item.Checked))
	}
	return out
}

func taskPrefix(checked bool) string {
	if checked {
		return "[x] "
	}
	return "[] "
}

// prefixFirstParagraph splices a text prefix into the first paragraph,
// creating one when the item has no paragraph to carry it.
func prefixFirstParagraph(nodes []*Node, prefix string) []*Node {
	for _, node := range nodes {
		if node.Type != "paragraph" {
			continue
		}
		if len(node.Content) == 1 && node.Content[0].Type == "text" && node.Content[0].Text == "" {
			node.Content[0].Text = prefix
		} else {
			node.Content = append([]*Node{textNode(prefix, nil)}, node.Content...)
		}
		return nodes
	}
	para := &Node{Type: "paragraph", Content: []*Node{textNode(prefix, nil)}}
	return append([]*Node{para}, nodes...)
}

func emitTable(t *Table) []*Node {
	if len(t.Rows) == 0 {
		return nil
	}
	node := &Node{
		Type: "table",
		Attrs: map[string]interface{}{
			"isNumberColumnEnabled": false,
			"layout":                "default",
		},
	}
	for _, row := range t.Rows {
		cellType := "tableCell"
		if row.Header {
			cellType = "tableHeader"
		}
		rowNode := &Node{Type: "tableRow"}
		for _, cell := range row.Cells {
			rowNode.Content = append(rowNode.Content, &Node{
				Type:    cellType,
				Content: cellContent(cell.Blocks),
			})
		}
		node.Content = append(node.Content, rowNode)
	}
	return []*Node{node}
}

// cellContent emits cell blocks as paragraphs only. Richer blocks are
// flattened; an empty cell still carries one empty paragraph.
func cellContent(blocks []BlockNode) []*Node {
	var out []*Node
	for _, block := range blocks {
		out = append(out, cellBlock(block)...)
	}
	if len(out) == 0 {
		out = []*Node{emptyParagraph()}
	}
	return out
}

func cellBlock(block BlockNode) []*Node {
	switch b := block.(type) {
	case *Paragraph:
		return []*Node{cellParagraph(b.Spans)}
	case *Heading:
		return []*Node{cellParagraph([]InlineSpan{&Strong{Spans: b.Spans}})}
	case *CodeBlock:
		return []*Node{cellParagraph([]InlineSpan{&Code{Content: b.Text}})}
	case *List:
		var out []*Node
		for _, item := range b.Items {
			for _, inner := range item.Blocks {
				out = append(out, cellBlock(inner)...)
			}
		}
		return out
	case *BlockQuote:
		var out []*Node
		for _, inner := range b.Blocks {
			out = append(out, cellBlock(inner)...)
		}
		return out
	case *Table:
		return flattenTable(b)
	case *ThematicBreak:
		return nil
	default:
		return nil
	}
}

// cellParagraph emits a paragraph with media demoted to alt text,
// since mediaSingle is not legal inside a cell.
func cellParagraph(spans []InlineSpan) *Node {
	demoted := make([]InlineSpan, 0, len(spans))
	for _, span := range spans {
		if img, ok := span.(*Image); ok {
			alt := img.Alt
			if alt == "" {
				alt = img.Href
			}
			demoted = append(demoted, &Text{Content: alt})
			continue
		}
		demoted = append(demoted, span)
	}
	inline, _ := emitSpans(demoted, nil)
	return &Node{Type: "paragraph", Content: orEmptyText(inline)}
}

// flattenTable reduces a table to one paragraph per row, cells joined
// by spaces, for contexts where a nested table is illegal.
func flattenTable(t *Table) []*Node {
	var out []*Node
	for _, row := range t.Rows {
		var spans []InlineSpan
		for i, cell := range row.Cells {
			if i > 0 {
				spans = append(spans, &Text{Content: " "})
			}
			for _, block := range cell.Blocks {
				if p, ok := block.(*Paragraph); ok {
					spans = append(spans, p.Spans...)
				}
			}
		}
		out = append(out, cellParagraph(spans))
	}
	return out
}

func orEmptyText(inline []*Node) []*Node {
	if len(inline) == 0 {
		return []*Node{textNode("", nil)}
	}
	return inline
}

// pushMark appends a mark unless one of the same type is already
// active, so nested identical formatting never duplicates marks.
func pushMark(marks []*Mark, mark *Mark) []*Mark {
	for _, m := range marks {
		if m.Type == mark.Type {
			return marks
		}
	}
	out := make([]*Mark, 0, len(marks)+1)
	out = append(out, marks...)
	return append(out, mark)
}

func copyMarks(marks []*Mark) []*Mark {
	if len(marks) == 0 {
		return nil
	}
	out := make([]*Mark, len(marks))
	copy(out, marks)
	return out
}
