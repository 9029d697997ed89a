package upload

import (
	"bytes"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

const h3Prefix = "### "

// PrependTitle prefixes the first "### " heading with "<filename>: " so each
// appended note is labelled with its source. It reports whether a heading
// was found; headings inside code blocks are ignored.
func PrependTitle(markdown, filename string) (string, bool) {
	src := []byte(markdown)
	lineStart := -1
	_ = ast.Walk(goldmark.DefaultParser().Parse(text.NewReader(src)), func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		h, ok := n.(*ast.Heading)
		if !entering || !ok || h.Level != 3 || h.Lines().Len() == 0 {
			return ast.WalkContinue, nil
		}
		start := bytes.LastIndexByte(src[:h.Lines().At(0).Start], '\n') + 1
		if !bytes.HasPrefix(src[start:], []byte(h3Prefix)) {
			// Indented or tab-separated headings keep their text.
			return ast.WalkContinue, nil
		}
		lineStart = start
		return ast.WalkStop, nil
	})
	if lineStart < 0 {
		return markdown, false
	}
	at := lineStart + len(h3Prefix)
	return markdown[:at] + filename + ": " + markdown[at:], true
}
