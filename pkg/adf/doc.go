package adf

// Document is the versioned wire root consumed by Jira's rich text
// renderer. Emission is deterministic: identical input and identical
// mention resolutions produce byte-identical JSON (attrs maps marshal
// in sorted key order).
type Document struct {
	Type    string  `json:"type"`
	Version int     `json:"version"`
	Content []*Node `json:"content"`
}

// Node is a generic wire node. Exactly the fields a given node type
// uses are populated; the rest stay empty and are omitted.
type Node struct {
	Type    string                 `json:"type"`
	Text    string                 `json:"text,omitempty"`
	Attrs   map[string]interface{} `json:"attrs,omitempty"`
	Marks   []*Mark                `json:"marks,omitempty"`
	Content []*Node                `json:"content,omitempty"`
}

// Mark is an inline formatting attribute attached to a text node
type Mark struct {
	Type  string                 `json:"type"`
	Attrs map[string]interface{} `json:"attrs,omitempty"`
}

func textNode(text string, marks []*Mark) *Node {
	return &Node{Type: "text", Text: text, Marks: marks}
}

func emptyParagraph() *Node {
	return &Node{Type: "paragraph", Content: []*Node{textNode("", nil)}}
}

// emptyDocument is the document Jira accepts for blank input
func emptyDocument() *Document {
	return &Document{Type: "doc", Version: 1, Content: []*Node{emptyParagraph()}}
}

// plainTextDocument wraps raw text as a single paragraph with one text
// node. This is the fallback shape used when parsing is disabled or
// the pipeline trips an unexpected fault.
func plainTextDocument(text string) *Document {
	return &Document{
		Type:    "doc",
		Version: 1,
		Content: []*Node{
			{Type: "paragraph", Content: []*Node{textNode(text, nil)}},
		},
	}
}
