// Package transcript turns lecture recordings into timestamped text.
package transcript

import (
	"fmt"
	"strings"
)

// Segment is one stretch of recognized speech, in seconds from the start.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Paragraph grouping defaults.
const (
	DefaultParagraphGap         = 3.0
	DefaultMaxParagraphDuration = 30.0
)

// FormatTimestamp renders seconds as [HH:MM:SS], truncating fractions.
func FormatTimestamp(seconds float64) string {
	total := int(seconds)
	if total < 0 {
		total = 0
	}
	return fmt.Sprintf("[%02d:%02d:%02d]", total/3600, total%3600/60, total%60)
}

// ParagraphOptions controls how segments are grouped.
type ParagraphOptions struct {
	// Gap is the silence, in seconds, that starts a new paragraph.
	Gap float64
	// MaxDuration caps a paragraph's span in seconds.
	MaxDuration float64
}

func (o ParagraphOptions) withDefaults() ParagraphOptions {
	if o.Gap <= 0 {
		o.Gap = DefaultParagraphGap
	}
	if o.MaxDuration <= 0 {
		o.MaxDuration = DefaultMaxParagraphDuration
	}
	return o
}

// FormatParagraphs groups segments into paragraphs, each headed by the
// timestamp of its first segment. A paragraph ends at a pause of at least
// opts.Gap or when the next segment would stretch it past opts.MaxDuration.
// Paragraphs are separated by a blank line.
func FormatParagraphs(segments []Segment, opts ParagraphOptions) string {
	if len(segments) == 0 {
		return ""
	}
	opts = opts.withDefaults()

	var paragraphs []string
	var current []string
	start := segments[0].Start
	prevEnd := start

	flush := func(trailing string) {
		paragraphs = append(paragraphs, FormatTimestamp(start)+"\n"+strings.Join(current, " ")+trailing)
	}

	for _, seg := range segments {
		gap := seg.Start - prevEnd
		if len(current) > 0 && (gap >= opts.Gap || seg.End-start > opts.MaxDuration) {
			flush("\n")
			current = current[:0]
			start = seg.Start
		}
		current = append(current, strings.TrimSpace(seg.Text))
		prevEnd = seg.End
	}
	flush("")
	return strings.Join(paragraphs, "\n")
}
