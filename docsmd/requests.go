package docsmd

import (
	"fmt"
	"strings"

	"google.golang.org/api/docs/v1"
)

// Bullet presets understood by createParagraphBullets.
const (
	BulletPresetDisc    = "BULLET_DISC_CIRCLE_SQUARE"
	BulletPresetNumeric = "NUMBERED_DECIMAL_ALPHA_ROMAN"
)

const (
	// indentStepPT is the indentation applied per blockquote or list level.
	indentStepPT = 36

	unitPT = "PT"
)

func docRange(start, end int) *docs.Range {
	return &docs.Range{StartIndex: int64(start), EndIndex: int64(end)}
}

func points(v float64) *docs.Dimension {
	return &docs.Dimension{Magnitude: v, Unit: unitPT}
}

// InsertTextRequest inserts text at index.
func InsertTextRequest(index int, text string) *docs.Request {
	return &docs.Request{
		InsertText: &docs.InsertTextRequest{
			Location: &docs.Location{Index: int64(index)},
			Text:     text,
		},
	}
}

// TextStyleRequest sets bold and/or italic over [start, end). Only the flags
// that are true are named in the field mask.
func TextStyleRequest(start, end int, bold, italic bool) *docs.Request {
	style := &docs.TextStyle{}
	var fields []string
	if bold {
		style.Bold = true
		fields = append(fields, "bold")
	}
	if italic {
		style.Italic = true
		fields = append(fields, "italic")
	}
	return &docs.Request{
		UpdateTextStyle: &docs.UpdateTextStyleRequest{
			Range:     docRange(start, end),
			TextStyle: style,
			Fields:    strings.Join(fields, ","),
		},
	}
}

// NamedStyleRequest applies a named paragraph style such as HEADING_2.
func NamedStyleRequest(start, end int, namedStyle string) *docs.Request {
	return &docs.Request{
		UpdateParagraphStyle: &docs.UpdateParagraphStyleRequest{
			Range:          docRange(start, end),
			ParagraphStyle: &docs.ParagraphStyle{NamedStyleType: namedStyle},
			Fields:         "namedStyleType",
		},
	}
}

// HeadingStyle names the paragraph style for a header level.
func HeadingStyle(level int) string {
	return fmt.Sprintf("HEADING_%d", level)
}

// IndentRequest sets both the start and first-line indent of a paragraph.
func IndentRequest(start, end int, magnitude float64) *docs.Request {
	return &docs.Request{
		UpdateParagraphStyle: &docs.UpdateParagraphStyleRequest{
			Range: docRange(start, end),
			ParagraphStyle: &docs.ParagraphStyle{
				IndentStart:     points(magnitude),
				IndentFirstLine: points(magnitude),
			},
			Fields: "indentStart,indentFirstLine",
		},
	}
}

// QuoteIndentRequest indents a blockquote paragraph by one step.
func QuoteIndentRequest(start, end int) *docs.Request {
	return IndentRequest(start, end, indentStepPT)
}

// NestingIndentRequest indents a list paragraph for the given nesting level.
func NestingIndentRequest(start, end, nesting int) *docs.Request {
	return IndentRequest(start, end, float64(indentStepPT*(nesting+1)))
}

// BulletRequest turns the paragraphs in [start, end) into a list.
func BulletRequest(start, end int, preset string) *docs.Request {
	return &docs.Request{
		CreateParagraphBullets: &docs.CreateParagraphBulletsRequest{
			Range:        docRange(start, end),
			BulletPreset: preset,
		},
	}
}

// HorizontalRuleRequests inserts an empty paragraph with a grey bottom border.
// Docs has no rule element, so the border stands in for one.
func HorizontalRuleRequests(index int) []*docs.Request {
	return []*docs.Request{
		InsertTextRequest(index, "\n"),
		{
			UpdateParagraphStyle: &docs.UpdateParagraphStyleRequest{
				Range: docRange(index, index+1),
				ParagraphStyle: &docs.ParagraphStyle{
					BorderBottom: &docs.ParagraphBorder{
						Color: &docs.OptionalColor{
							Color: &docs.Color{
								RgbColor: &docs.RgbColor{Red: 0.6, Green: 0.6, Blue: 0.6},
							},
						},
						Width:     points(1),
						Padding:   points(6),
						DashStyle: "SOLID",
					},
				},
				Fields: "borderBottom",
			},
		},
	}
}

// InsertTableRequest inserts an empty rows × columns table at index.
func InsertTableRequest(index, rows, columns int) *docs.Request {
	return &docs.Request{
		InsertTable: &docs.InsertTableRequest{
			Rows:     int64(rows),
			Columns:  int64(columns),
			Location: &docs.Location{Index: int64(index)},
		},
	}
}

// lineRequests builds the requests for a single non-table line whose text
// starts at the tracker's current index.
func lineRequests(line ParsedLine, tracker *IndexTracker) []*docs.Request {
	text := line.PlainText + "\n"
	start := tracker.Current()
	end := start + TextLength(text)

	reqs := []*docs.Request{InsertTextRequest(start, text)}
	for _, s := range line.Styles {
		if !s.Bold && !s.Italic {
			continue
		}
		absStart, absEnd := tracker.Range(s.Start, s.End)
		reqs = append(reqs, TextStyleRequest(absStart, absEnd, s.Bold, s.Italic))
	}

	switch line.Type {
	case LineHeader:
		reqs = append(reqs, NamedStyleRequest(start, end, HeadingStyle(line.HeaderLevel)))
	case LineQuote:
		reqs = append(reqs,
			QuoteIndentRequest(start, end),
			TextStyleRequest(start, end-1, false, true),
		)
	case LineBullet, LineNumbered:
		preset := BulletPresetDisc
		if line.Type == LineNumbered {
			preset = BulletPresetNumeric
		}
		reqs = append(reqs, BulletRequest(start, end, preset))
		if line.ListNesting > 0 {
			reqs = append(reqs, NestingIndentRequest(start, end, line.ListNesting))
		}
	}
	return reqs
}

// tableRequests creates a table at index and fills it cell by cell. Cell
// positions are estimated as one index per cell plus one per row boundary,
// which matches an empty table only approximately.
func tableRequests(rows [][]string, index int) []*docs.Request {
	if len(rows) == 0 {
		return nil
	}
	cols := tableColumns(rows)
	reqs := []*docs.Request{InsertTableRequest(index, len(rows), cols)}

	cursor := index + 1
	for _, row := range padRows(rows, cols) {
		for _, cell := range row {
			if cell == "" {
				cursor++
				continue
			}
			plain, styles := ParseInlineStyles(cell)
			reqs = append(reqs, InsertTextRequest(cursor, plain))
			for _, s := range styles {
				if s.Bold || s.Italic {
					reqs = append(reqs, TextStyleRequest(cursor+s.Start, cursor+s.End, s.Bold, s.Italic))
				}
			}
			cursor += TextLength(plain) + 1
		}
		cursor++
	}
	return reqs
}

// tableSpan is how far the tracker moves past a table: every raw cell plus a
// separator, one per row, and two for the table boundaries.
func tableSpan(rows [][]string) int {
	cols := tableColumns(rows)
	n := 0
	for _, row := range padRows(rows, cols) {
		for _, cell := range row {
			n += TextLength(cell) + 1
		}
	}
	return n + len(rows) + 2
}
