package docsmd

// Inline emphasis extraction.
//
// ParseInlineStyles scans a line once, left to right. Runs of '*' or '_' of
// length 1 to 3 become delimiter tokens; everything else is literal text. A closer
// pairs with the nearest open delimiter of the same character on the stack,
// consuming as many marker characters as both sides have left, so "***" can
// close a "**" and then a "*". Openers sitting above the match on the stack
// are abandoned and render as literal text.
//
// The emphasis a span carries is the number of marker characters it consumed:
// one is italic, two is bold, three is bold+italic. Resolved spans are then
// ranked and filtered by resolveEmphasis.

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf16"
	"unicode/utf8"
)

// StyleRange marks the half-open interval [Start, End) of a line's plain text
// that carries emphasis. Offsets are in UTF-16 code units, the unit Google Docs
// uses for document indexes.
type StyleRange struct {
	Start  int
	End    int
	Bold   bool
	Italic bool
}

// overlaps reports whether either endpoint of [start, end) lands inside r.
// A range that strictly contains r is not considered overlapping.
func (r StyleRange) overlaps(start, end int) bool {
	return (r.Start <= start && start < r.End) || (r.Start < end && end <= r.End)
}

// inlineToken is either literal text or a run of emphasis markers.
type inlineToken struct {
	text     string
	marker   byte
	length   int // 0 for text tokens
	left     int // marker characters not consumed by any span
	canOpen  bool
	canClose bool
	dropped  bool
}

func (t inlineToken) isDelimiter() bool { return t.length > 0 }

// emphasis is a matched opener/closer pair, by token index.
type emphasis struct {
	open, close int
	strength    int
}

// placedEmphasis is an emphasis pair resolved to plain-text offsets.
type placedEmphasis struct {
	emphasis
	start, end int
	used       bool
}

// ParseInlineStyles strips bold and italic markers from text and returns the
// plain text together with the emphasis ranges found in it. Unmatched markers
// are kept as literal characters. The returned ranges never report an
// endpoint inside a previously accepted range; see resolveEmphasis.
func ParseInlineStyles(text string) (string, []StyleRange) {
	toks := tokenizeInline(text)
	pairs := pairDelimiters(toks)
	trimSpacedEmphasis(toks, pairs)

	var b strings.Builder
	leftEdge := make([]int, len(toks))
	rightEdge := make([]int, len(toks))
	pos := 0
	for i, t := range toks {
		leftEdge[i] = pos
		var s string
		switch {
		case t.dropped:
		case !t.isDelimiter():
			s = t.text
		default:
			s = strings.Repeat(string(t.marker), t.left)
		}
		b.WriteString(s)
		pos += TextLength(s)
		rightEdge[i] = pos
	}

	placed := make([]*placedEmphasis, 0, len(pairs))
	for _, p := range pairs {
		placed = append(placed, &placedEmphasis{
			emphasis: p,
			start:    rightEdge[p.open],
			end:      leftEdge[p.close],
		})
	}
	return b.String(), resolveEmphasis(placed)
}

// tokenizeInline splits text into literal text and delimiter runs.
func tokenizeInline(text string) []inlineToken {
	var toks []inlineToken
	var pending strings.Builder
	flush := func() {
		if pending.Len() > 0 {
			toks = append(toks, inlineToken{text: pending.String()})
			pending.Reset()
		}
	}

	for i := 0; i < len(text); {
		c := text[i]
		if c != '*' && c != '_' {
			pending.WriteByte(c)
			i++
			continue
		}
		j := i
		for j < len(text) && text[j] == c {
			j++
		}
		n := j - i
		if n > 3 {
			pending.WriteString(text[i:j])
			i = j
			continue
		}
		flush()
		prev, _ := utf8.DecodeLastRuneInString(text[:i])
		next, _ := utf8.DecodeRuneInString(text[j:])
		// A run hugging text on its right opens, one hugging text on its
		// left closes. A run with space on both sides may do either.
		leftFlanking := !isSpaceRune(next)
		rightFlanking := !isSpaceRune(prev)
		tok := inlineToken{
			marker:   c,
			length:   n,
			left:     n,
			canOpen:  leftFlanking || !rightFlanking,
			canClose: rightFlanking || !leftFlanking,
		}
		if c == '_' && n == 1 {
			// A lone underscore inside a word (snake_case) is never emphasis.
			tok.canOpen = tok.canOpen && !isWordRune(prev)
			tok.canClose = tok.canClose && !isWordRune(next)
		}
		toks = append(toks, tok)
		i = j
	}
	flush()
	return toks
}

// isSpaceRune treats the start and end of the line as whitespace.
func isSpaceRune(r rune) bool {
	return r == utf8.RuneError || unicode.IsSpace(r)
}

func isWordRune(r rune) bool {
	if r == utf8.RuneError {
		return false
	}
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// pairDelimiters matches closers against the opener stack and returns the
// resulting pairs in closing order.
func pairDelimiters(toks []inlineToken) []emphasis {
	var stack []int
	var pairs []emphasis
	for i := range toks {
		t := &toks[i]
		if !t.isDelimiter() {
			continue
		}
		if t.canClose {
			for t.left > 0 {
				j := len(stack) - 1
				for j >= 0 && toks[stack[j]].marker != t.marker {
					j--
				}
				if j < 0 {
					break
				}
				o := stack[j]
				n := min(toks[o].left, t.left)
				pairs = append(pairs, emphasis{open: o, close: i, strength: n})
				toks[o].left -= n
				t.left -= n
				if toks[o].left == 0 {
					stack = stack[:j]
				} else {
					stack = stack[:j+1]
				}
			}
		}
		if t.canOpen && t.left > 0 {
			stack = append(stack, i)
		}
	}
	return pairs
}

// trimSpacedEmphasis handles "** _x_ **": a bold pair whose only content is
// an italic pair padded with whitespace collapses onto the italic text, and
// the padding is removed from the output.
func trimSpacedEmphasis(toks []inlineToken, pairs []emphasis) {
	blankBetween := func(from, to int) ([]int, bool) {
		var idx []int
		for k := from + 1; k < to; k++ {
			if toks[k].isDelimiter() || strings.TrimSpace(toks[k].text) != "" {
				return nil, false
			}
			idx = append(idx, k)
		}
		return idx, true
	}

	for _, outer := range pairs {
		if outer.strength != 2 || toks[outer.open].marker != '*' {
			continue
		}
		for _, inner := range pairs {
			if inner.strength != 1 || toks[inner.open].marker != '_' ||
				inner.open <= outer.open || inner.close >= outer.close ||
				toks[inner.open].left != 0 || toks[inner.close].left != 0 {
				continue
			}
			head, ok := blankBetween(outer.open, inner.open)
			if !ok || len(head) == 0 {
				continue
			}
			tail, ok := blankBetween(inner.close, outer.close)
			if !ok {
				continue
			}
			for _, k := range append(head, tail...) {
				toks[k].dropped = true
			}
		}
	}
}

// resolveEmphasis turns matched pairs into style ranges. Ranges are accepted
// in four passes: bold+italic triples, then mixed bold/italic nests, then
// bold, then italic. Within a pass ranges are taken left to right. The first
// two passes are always accepted; a bold or italic range is dropped when one
// of its endpoints falls inside a range accepted earlier.
func resolveEmphasis(placed []*placedEmphasis) []StyleRange {
	sort.SliceStable(placed, func(i, j int) bool { return placed[i].start < placed[j].start })

	var styles []StyleRange
	add := func(r StyleRange) {
		if r.Start < r.End {
			styles = append(styles, r)
		}
	}

	for _, p := range placed {
		if p.strength == 3 {
			p.used = true
			add(StyleRange{Start: p.start, End: p.end, Bold: true, Italic: true})
		}
	}

	for _, outer := range placed {
		if outer.used || outer.strength == 3 {
			continue
		}
		for _, inner := range placed {
			if inner == outer || inner.used || inner.strength != 3-outer.strength {
				continue
			}
			if inner.open < outer.open || inner.close > outer.close || inner.start != outer.start {
				continue
			}
			outer.used, inner.used = true, true
			add(StyleRange{Start: inner.start, End: inner.end, Bold: true, Italic: true})
			if inner.end < outer.end {
				add(StyleRange{
					Start:  inner.end,
					End:    outer.end,
					Bold:   outer.strength == 2,
					Italic: outer.strength == 1,
				})
			}
			break
		}
	}

	for _, strength := range []int{2, 1} {
		for _, p := range placed {
			if p.used || p.strength != strength || p.start >= p.end {
				continue
			}
			p.used = true
			clash := false
			for _, s := range styles {
				if s.overlaps(p.start, p.end) {
					clash = true
					break
				}
			}
			if !clash {
				styles = append(styles, StyleRange{Start: p.start, End: p.end, Bold: strength == 2, Italic: strength == 1})
			}
		}
	}
	return styles
}

// TextLength returns the length of s in UTF-16 code units.
func TextLength(s string) int {
	n := 0
	for _, r := range s {
		n += utf16.RuneLen(r)
	}
	return n
}
