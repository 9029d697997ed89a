// Package toolserver exposes the converters as MCP tools over stdio.
package toolserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/smartlawnotes/lawnotes/docsmd"
	"github.com/smartlawnotes/lawnotes/reading"
	"github.com/smartlawnotes/lawnotes/transcript"
)

// Server identity constants.
const (
	serverName    = "lawnotes"
	serverVersion = "0.1.0"
)

// Tool parameter keys, shared between schema definitions and argument
// extraction.
const (
	argMarkdown   = "markdown"
	argStartIndex = "start_index"
	argPath       = "path"
	argSegments   = "segments"
	argGap        = "gap_seconds"
	argMaxSpan    = "max_paragraph_seconds"
)

// Reader extracts text from a reading file.
type Reader interface {
	Extract(ctx context.Context, path string) (string, error)
	Info() string
}

// Tools holds the collaborators behind each tool.
type Tools struct {
	converter *docsmd.Converter
	reader    Reader
	logger    *zap.Logger
}

func New(converter *docsmd.Converter, reader Reader, logger *zap.Logger) *Tools {
	if converter == nil {
		converter = docsmd.NewConverter()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tools{converter: converter, reader: reader, logger: logger}
}

// Serve runs the MCP server on stdin/stdout until the client disconnects.
func (t *Tools) Serve() error {
	return server.ServeStdio(t.Server())
}

// Server returns an MCP server with every tool registered.
func (t *Tools) Server() *server.MCPServer {
	s := server.NewMCPServer(serverName, serverVersion, server.WithToolCapabilities(false))

	// markdown_to_docs_requests: markdown to a batchUpdate request list
	s.AddTool(
		mcp.NewTool("markdown_to_docs_requests",
			mcp.WithDescription("Convert markdown into the Google Docs batchUpdate requests that insert it. "+
				"Requests carry absolute indexes and must be applied in order."),
			mcp.WithString(argMarkdown,
				mcp.Required(),
				mcp.Description("Markdown text to convert"),
			),
			mcp.WithNumber(argStartIndex,
				mcp.Description("Document index of the first insertion (default 1)"),
			),
		),
		t.markdownToRequests,
	)

	// convert_reading: reading file to markdown
	s.AddTool(
		mcp.NewTool("convert_reading",
			mcp.WithDescription("Extract the text of a reading file as markdown. "+
				"Supported formats: "+strings.ToUpper(strings.Join(reading.Formats(), ", "))+"."),
			mcp.WithString(argPath,
				mcp.Required(),
				mcp.Description("Absolute path of the reading file"),
			),
		),
		t.convertReading,
	)

	// format_transcript: timed segments to timestamped paragraphs
	s.AddTool(
		mcp.NewTool("format_transcript",
			mcp.WithDescription("Group timed speech segments into timestamped paragraphs."),
			mcp.WithString(argSegments,
				mcp.Required(),
				mcp.Description(`JSON array of {"start": seconds, "end": seconds, "text": "..."}`),
			),
			mcp.WithNumber(argGap,
				mcp.Description(fmt.Sprintf("Pause that starts a new paragraph (default %g)", transcript.DefaultParagraphGap)),
			),
			mcp.WithNumber(argMaxSpan,
				mcp.Description(fmt.Sprintf("Longest paragraph span (default %g)", transcript.DefaultMaxParagraphDuration)),
			),
		),
		t.formatTranscript,
	)

	// get_conversion_info: formats and configuration
	s.AddTool(
		mcp.NewTool("get_conversion_info",
			mcp.WithDescription("Return supported reading formats and active configuration."),
		),
		t.conversionInfo,
	)
	return s
}

func (t *Tools) markdownToRequests(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	markdown, ok := req.Params.Arguments[argMarkdown].(string)
	if !ok {
		return mcp.NewToolResultError(argMarkdown + " is required"), nil
	}
	start := 1
	if v, ok := req.Params.Arguments[argStartIndex].(float64); ok {
		if v < 1 {
			return mcp.NewToolResultError(argStartIndex + " must be at least 1"), nil
		}
		start = int(v)
	}

	requests := t.converter.Convert(ctx, markdown, start)
	data, err := json.MarshalIndent(requests, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	t.logger.Debug("converted markdown", zap.Int("requests", len(requests)), zap.Int("start", start))
	return mcp.NewToolResultText(string(data)), nil
}

func (t *Tools) convertReading(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if t.reader == nil {
		return mcp.NewToolResultError("reading extraction is not configured"), nil
	}
	path, ok := req.Params.Arguments[argPath].(string)
	if !ok || path == "" {
		return mcp.NewToolResultError(argPath + " is required"), nil
	}
	text, err := t.reader.Extract(ctx, path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(text), nil
}

func (t *Tools) formatTranscript(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, ok := req.Params.Arguments[argSegments].(string)
	if !ok || raw == "" {
		return mcp.NewToolResultError(argSegments + " is required"), nil
	}
	var segments []transcript.Segment
	if err := json.Unmarshal([]byte(raw), &segments); err != nil {
		return mcp.NewToolResultError("invalid segments: " + err.Error()), nil
	}
	var opts transcript.ParagraphOptions
	if v, ok := req.Params.Arguments[argGap].(float64); ok {
		opts.Gap = v
	}
	if v, ok := req.Params.Arguments[argMaxSpan].(float64); ok {
		opts.MaxDuration = v
	}
	return mcp.NewToolResultText(transcript.FormatParagraphs(segments, opts)), nil
}

func (t *Tools) conversionInfo(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var b strings.Builder
	b.WriteString(`# Markdown to Google Docs

## Supported Markdown
- Headers (# to ######)
- Bold, italic and bold italic (*, **, ***, _, __, ___)
- Bulleted and numbered lists, nested by indentation
- Blockquotes
- Horizontal rules
- Tables`)
	if t.reader != nil {
		b.WriteString("\n\n")
		b.WriteString(t.reader.Info())
	}
	return mcp.NewToolResultText(b.String()), nil
}
