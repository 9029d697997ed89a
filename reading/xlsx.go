package reading

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// extractXLSX renders each non-empty sheet as a level-2 heading and a table.
func extractXLSX(_ context.Context, _ *Extractor, path string) (string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return "", fmt.Errorf("open xlsx %s: %w", filepath.Base(path), err)
	}
	defer func() { _ = f.Close() }()

	var sb strings.Builder
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return "", fmt.Errorf("read sheet %q in %s: %w", sheet, filepath.Base(path), err)
		}
		table := markdownTable(rows)
		if table == "" {
			continue
		}
		sb.WriteString("## " + sheet + "\n\n")
		sb.WriteString(table)
		sb.WriteByte('\n')
	}
	return sb.String(), nil
}
