package docsmd

import (
	"regexp"
	"strings"
)

// LineType is the block-level kind of a markdown line.
type LineType int

const (
	LineEmpty LineType = iota
	LineHeader
	LineParagraph
	LineBullet
	LineNumbered
	LineRule
	LineQuote
	LineTableRow
)

var lineTypeNames = map[LineType]string{
	LineEmpty:     "empty",
	LineHeader:    "header",
	LineParagraph: "paragraph",
	LineBullet:    "ul",
	LineNumbered:  "ol",
	LineRule:      "hr",
	LineQuote:     "blockquote",
	LineTableRow:  "table_row",
}

func (t LineType) String() string {
	if name, ok := lineTypeNames[t]; ok {
		return name
	}
	return "unknown"
}

// ParsedLine is one classified markdown line. Styles index into PlainText.
type ParsedLine struct {
	PlainText   string
	Type        LineType
	HeaderLevel int
	ListNesting int
	Styles      []StyleRange
}

var (
	ruleRe     = regexp.MustCompile(`^[\-\*_]{3,}\s*$`)
	headerRe   = regexp.MustCompile(`^(#{1,6})\s+(.+)$`)
	quoteRe    = regexp.MustCompile(`^>\s*(.*)$`)
	bulletRe   = regexp.MustCompile(`^(\s*)([\*\-\+])\s+(.+)$`)
	numberedRe = regexp.MustCompile(`^(\s*)(\d+)\.\s+(.+)$`)
)

// ParseLine classifies a single markdown line. The first matching rule wins:
// empty, horizontal rule, header, blockquote, bulleted item, numbered item,
// table row, and finally paragraph. List nesting is the indentation width
// divided by two.
func ParseLine(line string) ParsedLine {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return ParsedLine{Type: LineEmpty}
	}
	if ruleRe.MatchString(trimmed) {
		return ParsedLine{Type: LineRule}
	}

	if m := headerRe.FindStringSubmatch(line); m != nil {
		plain, styles := ParseInlineStyles(m[2])
		return ParsedLine{PlainText: plain, Type: LineHeader, HeaderLevel: len(m[1]), Styles: styles}
	}
	if m := quoteRe.FindStringSubmatch(line); m != nil {
		plain, styles := ParseInlineStyles(m[1])
		return ParsedLine{PlainText: plain, Type: LineQuote, Styles: styles}
	}
	if m := bulletRe.FindStringSubmatch(line); m != nil {
		plain, styles := ParseInlineStyles(m[3])
		return ParsedLine{PlainText: plain, Type: LineBullet, ListNesting: len(m[1]) / 2, Styles: styles}
	}
	if m := numberedRe.FindStringSubmatch(line); m != nil {
		plain, styles := ParseInlineStyles(m[3])
		return ParsedLine{PlainText: plain, Type: LineNumbered, ListNesting: len(m[1]) / 2, Styles: styles}
	}
	if isTableRow(trimmed) {
		return ParsedLine{PlainText: trimmed, Type: LineTableRow}
	}

	plain, styles := ParseInlineStyles(line)
	return ParsedLine{PlainText: plain, Type: LineParagraph, Styles: styles}
}

func isTableRow(trimmed string) bool {
	return strings.HasPrefix(trimmed, "|") && strings.HasSuffix(trimmed, "|")
}
