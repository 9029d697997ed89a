package reading

import (
	"archive/zip"
	"context"
	"encoding/xml"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
)

// extractDOCX renders word/document.xml as markdown: heading styles become
// ATX headings, numbered or bulleted paragraphs become list items, and run
// formatting becomes emphasis.
func extractDOCX(_ context.Context, _ *Extractor, path string) (string, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return "", fmt.Errorf("open docx %s: %w", filepath.Base(path), err)
	}
	defer zr.Close()

	d := &docxDocument{}
	if err := walkPart(&zr.Reader, "word/document.xml", d); err != nil {
		return "", fmt.Errorf("docx %s: %w", filepath.Base(path), err)
	}
	return d.out.String(), nil
}

type docxDocument struct {
	out strings.Builder

	inPara bool
	style  string
	list   bool
	level  int
	para   strings.Builder

	inRun  bool
	bold   bool
	italic bool
	run    strings.Builder

	table *tableBuilder
}

func (d *docxDocument) start(el xml.StartElement, stack []string) {
	switch el.Name.Local {
	case "tbl":
		d.table = &tableBuilder{}
	case "tc":
		if d.table != nil {
			d.table.startCell()
		}
	case "p":
		d.inPara = true
		d.style = ""
		d.list = false
		d.level = 0
		d.para.Reset()
		if d.inCell() {
			d.table.breakParagraph()
		}
	case "pStyle":
		if d.inPara && within(stack, "pPr") {
			d.style = attr(el, "val")
		}
	case "numPr":
		d.list = d.inPara
	case "ilvl":
		if d.inPara && within(stack, "numPr") {
			d.level, _ = strconv.Atoi(attr(el, "val"))
		}
	case "r":
		if d.inPara {
			d.inRun = true
			d.bold, d.italic = false, false
			d.run.Reset()
		}
	case "b":
		if d.inRun && within(stack, "rPr") && attr(el, "val") != "0" {
			d.bold = true
		}
	case "i":
		if d.inRun && within(stack, "rPr") && attr(el, "val") != "0" {
			d.italic = true
		}
	case "br":
		if d.inRun {
			d.run.WriteByte('\n')
		}
	case "tab":
		if d.inRun {
			d.run.WriteByte('\t')
		}
	}
}

func (d *docxDocument) end(local string) {
	switch local {
	case "r":
		if !d.inRun {
			return
		}
		d.inRun = false
		text := d.run.String()
		if d.inCell() {
			d.table.write(text)
			return
		}
		d.para.WriteString(emphasize(text, d.bold, d.italic))
	case "p":
		if !d.inPara {
			return
		}
		d.inPara = false
		if d.inCell() {
			return
		}
		if text := strings.TrimSpace(d.para.String()); text != "" {
			d.out.WriteString(d.render(text))
		}
	case "tc":
		if d.inCell() {
			d.table.endCell()
		}
	case "tr":
		if d.table != nil {
			d.table.endRow()
		}
	case "tbl":
		if d.table != nil {
			d.out.WriteString(markdownTable(d.table.rows))
			d.out.WriteByte('\n')
			d.table = nil
		}
	}
}

func (d *docxDocument) text(s string) {
	if d.inRun {
		d.run.WriteString(s)
	}
}

func (d *docxDocument) inCell() bool {
	return d.table != nil && d.table.inCell
}

func (d *docxDocument) render(text string) string {
	if n := headingLevel(d.style); n > 0 {
		return strings.Repeat("#", n) + " " + text + "\n\n"
	}
	if d.list {
		return strings.Repeat("  ", d.level) + "- " + text + "\n"
	}
	return text + "\n\n"
}

// headingLevel maps the built-in Word styles Title and Heading1..Heading6 to
// a markdown heading level, or 0.
func headingLevel(style string) int {
	if style == "Title" {
		return 1
	}
	rest, ok := strings.CutPrefix(style, "Heading")
	if !ok {
		return 0
	}
	n, err := strconv.Atoi(rest)
	if err != nil || n < 1 || n > 6 {
		return 0
	}
	return n
}
