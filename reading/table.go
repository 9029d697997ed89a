package reading

import "strings"

// minColWidth keeps every separator at least "---".
const minColWidth = 3

// markdownTable renders rows as a GitHub-flavored markdown table with the
// first row as header. Columns are padded to their widest cell and short rows
// get empty cells.
func markdownTable(rows [][]string) string {
	cols := 0
	for _, r := range rows {
		cols = max(cols, len(r))
	}
	if cols == 0 {
		return ""
	}

	widths := make([]int, cols)
	for i := range widths {
		widths[i] = minColWidth
	}
	for _, r := range rows {
		for i, c := range r {
			widths[i] = max(widths[i], len(escapePipes(c)))
		}
	}

	var sb strings.Builder
	line := func(cell func(i int) string) {
		sb.WriteString("|")
		for i := 0; i < cols; i++ {
			c := cell(i)
			sb.WriteString(" " + c + strings.Repeat(" ", widths[i]-len(c)) + " |")
		}
		sb.WriteByte('\n')
	}
	rowCells := func(r []string) func(int) string {
		return func(i int) string {
			if i < len(r) {
				return escapePipes(r[i])
			}
			return ""
		}
	}

	line(rowCells(rows[0]))
	line(func(i int) string { return strings.Repeat("-", widths[i]) })
	for _, r := range rows[1:] {
		line(rowCells(r))
	}
	return sb.String()
}

func escapePipes(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
