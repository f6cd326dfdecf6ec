package adf

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jirakit/jirakit/pkg/interfaces"
)

// mentionPattern matches the three mention shapes inside plain text:
// @accountid:<uuid>, @<email>, and @<username>. The email tail is
// optional on the second alternative, so a bare username and an email
// are captured by the same group.
var mentionPattern = regexp.MustCompile(
	`@(?:accountid:([0-9a-fA-F-]{36})|([a-zA-Z0-9._-]+(?:@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,})?))`,
)

const defaultLookupTimeout = 10 * time.Second

// detector rewrites plain text spans, replacing mention syntax that
// resolves against the user directory with Mention spans. Unresolved
// or malformed mentions stay as literal text; resolution failure is
// never fatal to the conversion.
type detector struct {
	directory interfaces.UserDirectory
	logger    interfaces.Logger
	timeout   time.Duration
}

func newDetector(directory interfaces.UserDirectory, logger interfaces.Logger, timeout time.Duration) *detector {
	if timeout <= 0 {
		timeout = defaultLookupTimeout
	}
	return &detector{directory: directory, logger: logger, timeout: timeout}
}

// rewriteBlocks walks the block tree depth-first. Code blocks and
// inline code are left untouched.
func (d *detector) rewriteBlocks(ctx context.Context, blocks []BlockNode) []BlockNode {
	for _, block := range blocks {
		switch b := block.(type) {
		case *Heading:
			b.Spans = d.rewriteSpans(ctx, b.Spans)
		case *Paragraph:
			b.Spans = d.rewriteSpans(ctx, b.Spans)
		case *List:
			for i := range b.Items {
				b.Items[i].Blocks = d.rewriteBlocks(ctx, b.Items[i].Blocks)
			}
		case *BlockQuote:
			b.Blocks = d.rewriteBlocks(ctx, b.Blocks)
		case *Table:
			for i := range b.Rows {
				for j := range b.Rows[i].Cells {
					b.Rows[i].Cells[j].Blocks = d.rewriteBlocks(ctx, b.Rows[i].Cells[j].Blocks)
				}
			}
		case *CodeBlock, *ThematicBreak:
		}
	}
	return blocks
}

func (d *detector) rewriteSpans(ctx context.Context, spans []InlineSpan) []InlineSpan {
	var out []InlineSpan
	for _, span := range spans {
		switch s := span.(type) {
		case *Text:
			out = append(out, d.splitText(ctx, s)...)
		case *Emphasis:
			s.Spans = d.rewriteSpans(ctx, s.Spans)
			out = append(out, s)
		case *Strong:
			s.Spans = d.rewriteSpans(ctx, s.Spans)
			out = append(out, s)
		case *Strike:
			s.Spans = d.rewriteSpans(ctx, s.Spans)
			out = append(out, s)
		case *Link:
			s.Spans = d.rewriteSpans(ctx, s.Spans)
			out = append(out, s)
		default:
			out = append(out, span)
		}
	}
	return mergeAdjacentText(out)
}

// splitText scans one text span and splices resolved mentions into it
func (d *detector) splitText(ctx context.Context, t *Text) []InlineSpan {
	matches := mentionPattern.FindAllStringSubmatchIndex(t.Content, -1)
	if len(matches) == 0 {
		return []InlineSpan{t}
	}

	var out []InlineSpan
	last := 0
	for _, m := range matches {
		if m[0] > last {
			out = append(out, &Text{Content: t.Content[last:m[0]]})
		}
		raw := t.Content[m[0]:m[1]]
		if mention := d.resolve(ctx, raw, submatch(t.Content, m, 1), submatch(t.Content, m, 2)); mention != nil {
			out = append(out, mention)
		} else {
			out = append(out, &Text{Content: raw})
		}
		last = m[1]
	}
	if last < len(t.Content) {
		out = append(out, &Text{Content: t.Content[last:]})
	}
	return out
}

func submatch(s string, m []int, group int) string {
	if m[2*group] < 0 {
		return ""
	}
	return s[m[2*group]:m[2*group+1]]
}

// resolve looks the matched identifier up in the directory. A nil
// return means the match stays literal.
func (d *detector) resolve(ctx context.Context, raw, accountID, query string) *Mention {
	lookupCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	if accountID != "" {
		if _, err := uuid.Parse(accountID); err != nil {
			d.logger.Debug("mention skipped, malformed account id", map[string]interface{}{"raw": raw})
			return nil
		}
		user, err := d.directory.ResolveAccountID(lookupCtx, accountID)
		if err != nil {
			d.logger.Debug("mention lookup failed, keeping literal text", map[string]interface{}{
				"raw":   raw,
				"error": err.Error(),
			})
			return nil
		}
		return &Mention{
			Kind:      MentionAccountID,
			Raw:       raw,
			AccountID: user.AccountID,
			Display:   displayName(user.DisplayName, "User"),
		}
	}

	kind := MentionUsername
	if strings.Contains(query, "@") {
		kind = MentionEmail
	}
	user, err := d.directory.ResolveQuery(lookupCtx, query)
	if err != nil {
		d.logger.Debug("mention lookup failed, keeping literal text", map[string]interface{}{
			"raw":   raw,
			"error": err.Error(),
		})
		return nil
	}
	return &Mention{
		Kind:      kind,
		Raw:       raw,
		AccountID: user.AccountID,
		Display:   displayName(user.DisplayName, query),
	}
}

func displayName(name, fallback string) string {
	if name == "" {
		return fallback
	}
	return name
}
