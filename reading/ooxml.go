package reading

import (
	"archive/zip"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// xmlHandler receives the events of a streamed OOXML part. stack holds the
// local names of the open elements, innermost last.
type xmlHandler interface {
	start(el xml.StartElement, stack []string)
	end(local string)
	text(s string)
}

// walkXML streams r into h, matching on local names so any namespace prefix
// works.
func walkXML(r io.Reader, h xmlHandler) error {
	dec := xml.NewDecoder(r)
	var stack []string
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("parse xml: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			stack = append(stack, t.Name.Local)
			h.start(t, stack)
		case xml.EndElement:
			h.end(t.Name.Local)
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		case xml.CharData:
			h.text(string(t))
		}
	}
}

// zipPart finds the named entry of a package.
func zipPart(zr *zip.Reader, name string) *zip.File {
	for _, f := range zr.File {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// walkPart streams the named entry into h.
func walkPart(zr *zip.Reader, name string, h xmlHandler) error {
	f := zipPart(zr, name)
	if f == nil {
		return fmt.Errorf("%s not found", name)
	}
	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("open %s: %w", name, err)
	}
	defer rc.Close()
	return walkXML(rc, h)
}

func within(stack []string, name string) bool {
	for _, s := range stack {
		if s == name {
			return true
		}
	}
	return false
}

func attr(el xml.StartElement, local string) string {
	for _, a := range el.Attr {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}

// emphasize wraps text in markdown emphasis markers. Surrounding whitespace
// stays outside the markers so the result still parses as emphasis.
func emphasize(text string, bold, italic bool) string {
	core := strings.TrimSpace(text)
	if core == "" || (!bold && !italic) {
		return text
	}
	marker := "*"
	switch {
	case bold && italic:
		marker = "***"
	case bold:
		marker = "**"
	}
	lead := text[:strings.Index(text, core)]
	trail := text[len(lead)+len(core):]
	return lead + marker + core + marker + trail
}

// tableBuilder collects the cells of one table.
type tableBuilder struct {
	rows   [][]string
	row    []string
	cell   strings.Builder
	inCell bool
}

func (t *tableBuilder) startCell() {
	t.inCell = true
	t.cell.Reset()
}

// write appends cell text. Paragraph breaks inside a cell become spaces.
func (t *tableBuilder) write(s string) {
	t.cell.WriteString(s)
}

func (t *tableBuilder) breakParagraph() {
	if t.cell.Len() > 0 {
		t.cell.WriteByte(' ')
	}
}

func (t *tableBuilder) endCell() {
	t.row = append(t.row, strings.TrimSpace(t.cell.String()))
	t.inCell = false
}

func (t *tableBuilder) endRow() {
	t.rows = append(t.rows, t.row)
	t.row = nil
}
