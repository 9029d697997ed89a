package toolserver

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/docs/v1"

	"github.com/smartlawnotes/lawnotes/docsmd"
)

type stubReader struct {
	text string
	err  error
	path string
}

func (r *stubReader) Extract(_ context.Context, path string) (string, error) {
	r.path = path
	return r.text, r.err
}

func (r *stubReader) Info() string { return "# Reading Extraction" }

func call(args map[string]interface{}) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, res)
	require.Len(t, res.Content, 1)
	switch c := res.Content[0].(type) {
	case mcp.TextContent:
		return c.Text
	case *mcp.TextContent:
		return c.Text
	}
	t.Fatalf("unexpected content %T", res.Content[0])
	return ""
}

func TestMarkdownToRequests(t *testing.T) {
	tools := New(nil, nil, nil)
	res, err := tools.markdownToRequests(context.Background(), call(map[string]interface{}{
		argMarkdown:   "# Title",
		argStartIndex: float64(5),
	}))
	require.NoError(t, err)
	require.False(t, res.IsError)

	var got []*docs.Request
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &got))
	require.Len(t, got, 2)
	assert.Equal(t, int64(5), got[0].InsertText.Location.Index)
	assert.Equal(t, "Title\n", got[0].InsertText.Text)
	assert.Equal(t, "HEADING_1", got[1].UpdateParagraphStyle.ParagraphStyle.NamedStyleType)
}

func TestMarkdownToRequestsDefaultsStart(t *testing.T) {
	tools := New(docsmd.NewConverter(), nil, nil)
	res, err := tools.markdownToRequests(context.Background(), call(map[string]interface{}{argMarkdown: "x"}))
	require.NoError(t, err)
	assert.Contains(t, resultText(t, res), `"index": 1`)
}

func TestMarkdownToRequestsInvalidArgs(t *testing.T) {
	tools := New(nil, nil, nil)

	res, err := tools.markdownToRequests(context.Background(), call(nil))
	require.NoError(t, err)
	assert.True(t, res.IsError)

	res, err = tools.markdownToRequests(context.Background(), call(map[string]interface{}{
		argMarkdown:   "x",
		argStartIndex: float64(0),
	}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(t, res), "at least 1")
}

func TestConvertReading(t *testing.T) {
	reader := &stubReader{text: "## Page 1\n\nOffer and acceptance"}
	tools := New(nil, reader, nil)

	res, err := tools.convertReading(context.Background(), call(map[string]interface{}{argPath: "/tmp/case.pdf"}))
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Equal(t, "/tmp/case.pdf", reader.path)
	assert.Equal(t, "## Page 1\n\nOffer and acceptance", resultText(t, res))
}

func TestConvertReadingErrors(t *testing.T) {
	tools := New(nil, &stubReader{err: errors.New("unsupported format: .odt")}, nil)
	res, err := tools.convertReading(context.Background(), call(map[string]interface{}{argPath: "/tmp/x.odt"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(t, res), "unsupported format")

	res, err = tools.convertReading(context.Background(), call(map[string]interface{}{}))
	require.NoError(t, err)
	assert.True(t, res.IsError)

	res, err = New(nil, nil, nil).convertReading(context.Background(), call(map[string]interface{}{argPath: "/tmp/a.txt"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestFormatTranscript(t *testing.T) {
	tools := New(nil, nil, nil)
	segments := `[
		{"start": 0, "end": 2, "text": " Good morning."},
		{"start": 2.5, "end": 4, "text": "Today: consideration."},
		{"start": 10, "end": 12, "text": "Hamer v. Sidway."}
	]`
	res, err := tools.formatTranscript(context.Background(), call(map[string]interface{}{argSegments: segments}))
	require.NoError(t, err)
	assert.Equal(t, "[00:00:00]\nGood morning. Today: consideration.\n\n[00:00:10]\nHamer v. Sidway.", resultText(t, res))

	res, err = tools.formatTranscript(context.Background(), call(map[string]interface{}{
		argSegments: segments,
		argGap:      float64(20),
	}))
	require.NoError(t, err)
	assert.Equal(t, "[00:00:00]\nGood morning. Today: consideration. Hamer v. Sidway.", resultText(t, res))
}

func TestFormatTranscriptInvalidJSON(t *testing.T) {
	res, err := New(nil, nil, nil).formatTranscript(context.Background(), call(map[string]interface{}{argSegments: "{"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(t, res), "invalid segments")
}

func TestConversionInfo(t *testing.T) {
	res, err := New(nil, &stubReader{}, nil).conversionInfo(context.Background(), call(nil))
	require.NoError(t, err)
	text := resultText(t, res)
	assert.Contains(t, text, "# Markdown to Google Docs")
	assert.Contains(t, text, "# Reading Extraction")

	res, err = New(nil, nil, nil).conversionInfo(context.Background(), call(nil))
	require.NoError(t, err)
	assert.NotContains(t, resultText(t, res), "Reading Extraction")
}

func TestServerRegistersTools(t *testing.T) {
	s := New(nil, nil, nil).Server()
	msg := s.HandleMessage(context.Background(), json.RawMessage(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`))
	data, err := json.Marshal(msg)
	require.NoError(t, err)
	for _, name := range []string{"markdown_to_docs_requests", "convert_reading", "format_transcript", "get_conversion_info"} {
		assert.Contains(t, string(data), `"`+name+`"`)
	}
}
