package adf

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jirakit/jirakit/pkg/interfaces"
)

// Options controls a single conversion. The zero value disables both
// stages and yields the plain text fallback shape.
type Options struct {
	// ParseMarkdown enables the markdown stage. When false the whole
	// source becomes one paragraph of literal text.
	ParseMarkdown bool

	// ParseMentions enables mention detection over plain text spans.
	// It has no effect without a user directory.
	ParseMentions bool
}

// DefaultOptions enables both stages
func DefaultOptions() Options {
	return Options{ParseMarkdown: true, ParseMentions: true}
}

// Converter turns markdown source into ADF documents. It is safe for
// concurrent use; all per-call state lives on the stack.
type Converter struct {
	directory interfaces.UserDirectory
	logger    interfaces.Logger
	timeout   time.Duration
}

// ConverterOption customizes a Converter
type ConverterOption func(*Converter)

// WithLookupTimeout bounds each directory lookup during mention
// resolution.
func WithLookupTimeout(d time.Duration) ConverterOption {
	return func(c *Converter) { c.timeout = d }
}

// NewConverter creates a converter. directory may be nil, in which
// case mention syntax always stays literal.
func NewConverter(directory interfaces.UserDirectory, logger interfaces.Logger, opts ...ConverterOption) *Converter {
	c := &Converter{
		directory: directory,
		logger:    logger,
		timeout:   defaultLookupTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Convert compiles source into an ADF document. It is total: any
// panic out of the parse or emit stages degrades to a plain text
// document carrying the original source, so a caller always gets a
// valid document to send.
func (c *Converter) Convert(ctx context.Context, source string, opts Options) (doc *Document) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Warn("markdown conversion failed, falling back to plain text", map[string]interface{}{
				"panic": fmt.Sprint(r),
			})
			doc = plainTextDocument(source)
		}
	}()

	var blocks []BlockNode
	if opts.ParseMarkdown {
		if strings.TrimSpace(source) == "" {
			return emptyDocument()
		}
		blocks = parseBlocks([]byte(source))
	} else {
		// the disabled path wraps the input verbatim, whitespace and all
		blocks = []BlockNode{&Paragraph{Spans: []InlineSpan{&Text{Content: source}}}}
	}

	if opts.ParseMentions && c.directory != nil {
		blocks = newDetector(c.directory, c.logger, c.timeout).rewriteBlocks(ctx, blocks)
	}

	return emitDocument(blocks)
}
