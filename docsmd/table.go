package docsmd

import (
	"regexp"
	"strings"
)

var separatorCellRe = regexp.MustCompile(`^:?-+:?$`)

// ParseTable reads consecutive table rows from lines starting at start. It
// returns the grid of trimmed cell strings and the number of lines consumed,
// separator rows included. Separator rows never appear in the grid.
func ParseTable(lines []string, start int) ([][]string, int) {
	var rows [][]string
	i := start
	for ; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])
		if !isTableRow(line) {
			break
		}
		cells := splitCells(line)
		if isSeparator(cells) {
			continue
		}
		rows = append(rows, cells)
	}
	return rows, i - start
}

// splitCells drops the outer pipes and splits the rest on '|'.
func splitCells(line string) []string {
	inner := ""
	if len(line) >= 2 {
		inner = line[1 : len(line)-1]
	}
	parts := strings.Split(inner, "|")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// isSeparator reports whether every cell is a dash rule such as "---" or
// ":-:", or empty, with at least one rule present.
func isSeparator(cells []string) bool {
	rule := false
	for _, c := range cells {
		switch {
		case c == "":
		case separatorCellRe.MatchString(c):
			rule = true
		default:
			return false
		}
	}
	return rule
}

// tableColumns is the widest row of the grid.
func tableColumns(rows [][]string) int {
	cols := 0
	for _, r := range rows {
		cols = max(cols, len(r))
	}
	return cols
}

// padRows returns a copy of rows where every row has cols cells.
func padRows(rows [][]string, cols int) [][]string {
	out := make([][]string, len(rows))
	for i, r := range rows {
		row := make([]string, cols)
		copy(row, r)
		out[i] = row
	}
	return out
}
