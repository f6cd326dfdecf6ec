package adf

import "strings"

// PlainText flattens a document to the text a terminal can show.
// Block boundaries become newlines; mention nodes contribute their
// display text.
func PlainText(doc *Document) string {
	if doc == nil {
		return ""
	}
	var parts []string
	for _, node := range doc.Content {
		if s := nodeText(node); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "\n")
}

func nodeText(node *Node) string {
	if node == nil {
		return ""
	}
	switch node.Type {
	case "text":
		return node.Text
	case "mention":
		if txt, ok := node.Attrs["text"].(string); ok {
			return txt
		}
		return ""
	case "hardBreak":
		return "\n"
	case "rule":
		return "---"
	}

	var b strings.Builder
	for _, child := range node.Content {
		b.WriteString(nodeText(child))
		if isBlockType(child.Type) {
			b.WriteString("\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// PlainTextFromMap extracts text from an ADF document that arrived as
// decoded JSON, the shape issue descriptions and comments come back
// in from the API.
func PlainTextFromMap(doc map[string]interface{}) string {
	if doc == nil {
		return ""
	}
	return strings.TrimRight(mapText(doc), "\n")
}

func mapText(node map[string]interface{}) string {
	nodeType, _ := node["type"].(string)
	switch nodeType {
	case "text":
		s, _ := node["text"].(string)
		return s
	case "mention":
		if attrs, ok := node["attrs"].(map[string]interface{}); ok {
			if txt, ok := attrs["text"].(string); ok {
				return txt
			}
		}
		return ""
	case "hardBreak":
		return "\n"
	case "rule":
		return "---"
	}

	content, _ := node["content"].([]interface{})
	var b strings.Builder
	for _, raw := range content {
		child, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		b.WriteString(mapText(child))
		if childType, _ := child["type"].(string); isBlockType(childType) {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func isBlockType(t string) bool {
	switch t {
	case "paragraph", "heading", "codeBlock", "blockquote", "rule",
		"bulletList", "orderedList", "listItem", "table", "tableRow",
		"mediaSingle", "panel":
		return true
	}
	return false
}
