// Package docsmd translates markdown into Google Docs batchUpdate requests.
//
// The conversion is line oriented. Each line is classified, stripped of its
// inline markers and inserted as one paragraph, followed by the text and
// paragraph style requests that decorate it. Consecutive table rows are
// gathered into a single table. Every request carries an absolute document
// index computed before anything is sent, so requests must be applied in the
// order they are returned.
package docsmd

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/api/docs/v1"
)

// Converter turns markdown into an ordered list of Docs requests.
// A Converter is safe for concurrent use; each call owns its own tracker.
type Converter struct {
	formatter Formatter
	logger    *zap.Logger
}

// Option configures a Converter.
type Option func(*Converter)

// WithFormatter runs f over the whole document before conversion.
func WithFormatter(f Formatter) Option {
	return func(c *Converter) { c.formatter = f }
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Converter) {
		if l != nil {
			c.logger = l
		}
	}
}

func NewConverter(opts ...Option) *Converter {
	c := &Converter{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ToRequests converts markdown without a formatting pass.
func ToRequests(markdown string, startIndex int) []*docs.Request {
	return NewConverter().Convert(context.Background(), markdown, startIndex)
}

// Convert returns the requests that insert markdown at startIndex. It never
// fails: malformed markup degrades to literal text, and a failing formatter
// only costs the formatting pass. ctx bounds the formatter alone.
func (c *Converter) Convert(ctx context.Context, markdown string, startIndex int) []*docs.Request {
	markdown = c.format(ctx, markdown)
	lines := splitLines(markdown)

	var reqs []*docs.Request
	tracker := NewIndexTracker(startIndex)

	for i := 0; i < len(lines); {
		parsed := ParseLine(lines[i])
		c.logger.Debug("classified line",
			zap.Int("line", i),
			zap.Stringer("type", parsed.Type),
			zap.String("text", preview(parsed.PlainText)),
		)

		switch parsed.Type {
		case LineEmpty:
			reqs = append(reqs, InsertTextRequest(tracker.Current(), "\n"))
			tracker.Advance(1)
			i++
		case LineRule:
			reqs = append(reqs, HorizontalRuleRequests(tracker.Current())...)
			tracker.Advance(1)
			i++
		case LineTableRow:
			rows, consumed := ParseTable(lines, i)
			if len(rows) > 0 {
				reqs = append(reqs, tableRequests(rows, tracker.Current())...)
				tracker.Advance(tableSpan(rows))
			}
			i += consumed
		default:
			reqs = append(reqs, lineRequests(parsed, tracker)...)
			tracker.Advance(TextLength(parsed.PlainText) + 1)
			i++
		}
	}

	c.logger.Debug("generated requests", zap.Int("count", len(reqs)), zap.Int("endIndex", tracker.Current()))
	return reqs
}

func (c *Converter) format(ctx context.Context, markdown string) string {
	if c.formatter == nil {
		return markdown
	}
	formatted, err := c.formatter.Format(ctx, markdown)
	if err != nil {
		c.logger.Warn("markdown formatting failed, using unformatted input", zap.Error(err))
		return markdown
	}
	return formatted
}

// splitLines normalizes line endings to LF and splits on them.
func splitLines(s string) []string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	return strings.Split(s, "\n")
}

func preview(s string) string {
	const limit = 50
	if r := []rune(s); len(r) > limit {
		return string(r[:limit]) + "..."
	}
	return s
}
