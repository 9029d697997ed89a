package reading

import (
	"archive/zip"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var slidePartRe = regexp.MustCompile(`^ppt/slides/slide(\d+)\.xml$`)

// extractPPTX renders slides in numeric order. A slide's title placeholder
// becomes its heading ("Slide N" when it has none); indented paragraphs
// become list items. Text found by OCR in slide images follows the body.
func extractPPTX(ctx context.Context, _ *Extractor, file string) (string, error) {
	zr, err := zip.OpenReader(file)
	if err != nil {
		return "", fmt.Errorf("open pptx %s: %w", filepath.Base(file), err)
	}
	defer func() { _ = zr.Close() }()

	type slidePart struct {
		num  int
		name string
	}
	var slides []slidePart
	for _, f := range zr.File {
		if m := slidePartRe.FindStringSubmatch(f.Name); m != nil {
			n, _ := strconv.Atoi(m[1])
			slides = append(slides, slidePart{n, f.Name})
		}
	}
	if len(slides) == 0 {
		return "", fmt.Errorf("no slides found in %s", filepath.Base(file))
	}
	sort.Slice(slides, func(i, j int) bool { return slides[i].num < slides[j].num })

	ocrEnabled := tesseractAvailable()
	var out []string
	for _, s := range slides {
		sl := &slide{}
		if err := walkPart(&zr.Reader, s.name, sl); err != nil {
			return "", fmt.Errorf("slide %d: %w", s.num, err)
		}
		body := sl.body
		if ocrEnabled {
			if text := slideImageText(ctx, &zr.Reader, s.name, sl.images); text != "" {
				body = append(body, text)
			}
		}
		if len(sl.titles) == 0 && len(body) == 0 {
			continue
		}
		title := strings.Join(sl.titles, " ")
		if title == "" {
			title = "Slide " + strconv.Itoa(s.num)
		}
		out = append(out, "## "+title+"\n\n"+strings.Join(body, "\n"))
	}
	return strings.Join(out, "\n\n"), nil
}

type slide struct {
	titles []string
	body   []string
	images []string

	inShape bool
	isTitle bool
	inBody  bool

	inPara bool
	level  int
	para   strings.Builder

	inRun  bool
	bold   bool
	italic bool
	run    strings.Builder

	table *tableBuilder
}

func (s *slide) start(el xml.StartElement, stack []string) {
	switch el.Name.Local {
	case "sp":
		s.inShape, s.isTitle = true, false
	case "ph":
		if s.inShape && within(stack, "nvPr") {
			if t := attr(el, "type"); t == "title" || t == "ctrTitle" {
				s.isTitle = true
			}
		}
	case "txBody":
		s.inBody = s.inShape
	case "blip":
		if id := attr(el, "embed"); id != "" {
			s.images = append(s.images, id)
		}
	case "tbl":
		s.table = &tableBuilder{}
	case "tc":
		if s.table != nil {
			s.table.startCell()
		}
	case "p":
		if s.inBody || s.inCell() {
			s.inPara = true
			s.level = 0
			s.para.Reset()
			if s.inCell() {
				s.table.breakParagraph()
			}
		}
	case "pPr":
		if s.inPara {
			s.level, _ = strconv.Atoi(attr(el, "lvl"))
		}
	case "r":
		if s.inPara {
			s.inRun = true
			s.bold, s.italic = false, false
			s.run.Reset()
		}
	case "rPr":
		if s.inRun {
			s.bold = attr(el, "b") == "1"
			s.italic = attr(el, "i") == "1"
		}
	case "br":
		if s.inPara {
			s.para.WriteByte('\n')
		}
	}
}

func (s *slide) end(local string) {
	switch local {
	case "r":
		if !s.inRun {
			return
		}
		s.inRun = false
		text := emphasize(s.run.String(), s.bold, s.italic)
		if s.inCell() {
			s.table.write(text)
			return
		}
		s.para.WriteString(text)
	case "p":
		if !s.inPara {
			return
		}
		s.inPara = false
		if s.inCell() {
			return
		}
		text := strings.TrimSpace(s.para.String())
		switch {
		case text == "":
		case s.isTitle:
			s.titles = append(s.titles, text)
		case s.level > 0:
			s.body = append(s.body, strings.Repeat("  ", s.level-1)+"- "+text)
		default:
			s.body = append(s.body, text)
		}
	case "tc":
		if s.inCell() {
			s.table.endCell()
		}
	case "tr":
		if s.table != nil {
			s.table.endRow()
		}
	case "tbl":
		if s.table != nil {
			if t := markdownTable(s.table.rows); t != "" {
				s.body = append(s.body, t)
			}
			s.table = nil
		}
	case "txBody":
		s.inBody, s.inPara = false, false
	case "sp":
		s.inShape, s.isTitle = false, false
	}
}

func (s *slide) text(t string) {
	if s.inRun {
		s.run.WriteString(t)
	}
}

func (s *slide) inCell() bool {
	return s.table != nil && s.table.inCell
}

// slideImageText OCRs the images a slide embeds. Images that cannot be
// resolved or read are skipped.
func slideImageText(ctx context.Context, zr *zip.Reader, slideName string, ids []string) string {
	if len(ids) == 0 {
		return ""
	}
	relsName := path.Join(path.Dir(slideName), "_rels", path.Base(slideName)+".rels")
	rels := relationships{targets: map[string]string{}}
	if err := walkPart(zr, relsName, &rels); err != nil {
		return ""
	}

	seen := map[string]bool{}
	var parts []string
	for _, id := range ids {
		target, ok := rels.targets[id]
		if !ok || seen[target] {
			continue
		}
		seen[target] = true
		name := path.Join(path.Dir(slideName), target)
		f := zipPart(zr, name)
		if f == nil {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			continue
		}
		data, err := io.ReadAll(rc)
		_ = rc.Close()
		if err != nil {
			continue
		}
		if text, _ := ocr(ctx, data, path.Ext(name)); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, "\n\n")
}

// relationships collects Id -> Target from an OOXML .rels part.
type relationships struct {
	targets map[string]string
}

func (r *relationships) start(el xml.StartElement, _ []string) {
	if el.Name.Local != "Relationship" {
		return
	}
	if id, target := attr(el, "Id"), attr(el, "Target"); id != "" && target != "" {
		r.targets[id] = target
	}
}

func (*relationships) end(string)  {}
func (*relationships) text(string) {}
