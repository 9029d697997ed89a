package docsmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseTable(t *testing.T) {
	tests := []struct {
		name     string
		lines    []string
		start    int
		rows     [][]string
		consumed int
	}{
		{
			name:     "separator skipped",
			lines:    []string{"| a | b |", "|---|---|", "| c | d |"},
			rows:     [][]string{{"a", "b"}, {"c", "d"}},
			consumed: 3,
		},
		{
			name:     "stops at first non-row",
			lines:    []string{"| a |", "text", "| b |"},
			rows:     [][]string{{"a"}},
			consumed: 1,
		},
		{
			name:     "starts mid document with aligned separator",
			lines:    []string{"intro", "| x | y |", "|:--|--:|", ""},
			start:    1,
			rows:     [][]string{{"x", "y"}},
			consumed: 2,
		},
		{
			name:     "dash cell next to text is content",
			lines:    []string{"| - | x |"},
			rows:     [][]string{{"-", "x"}},
			consumed: 1,
		},
		{
			name:     "empty cells kept",
			lines:    []string{"|  | b |", "| :-: | |"},
			rows:     [][]string{{"", "b"}},
			consumed: 2,
		},
		{
			name:     "bare pipe",
			lines:    []string{"|"},
			rows:     [][]string{{""}},
			consumed: 1,
		},
		{
			name:     "indented rows",
			lines:    []string{"  | a |  ", "   |---|"},
			rows:     [][]string{{"a"}},
			consumed: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, consumed := ParseTable(tt.lines, tt.start)
			assert.Equal(t, tt.rows, rows)
			assert.Equal(t, tt.consumed, consumed)
		})
	}
}

func TestTableSpan(t *testing.T) {
	rows := [][]string{{"a", "**b**"}, {"c", ""}}
	// (1+1)+(5+1)+(1+1)+(0+1) cells, 2 rows, 2 boundaries.
	assert.Equal(t, 15, tableSpan(rows))

	ragged := [][]string{{"a"}, {"b", "c"}}
	assert.Equal(t, 11, tableSpan(ragged))
}

func TestIndexTracker(t *testing.T) {
	tr := NewIndexTracker(5)
	start, end := tr.Range(2, 4)
	assert.Equal(t, 7, start)
	assert.Equal(t, 9, end)
	assert.Equal(t, 5, tr.Current())

	tr.Advance(3)
	tr.Advance(-10)
	assert.Equal(t, 8, tr.Current())
}
