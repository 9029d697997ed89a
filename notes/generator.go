// Package notes generates study notes from transcripts and readings with an
// LLM.
package notes

import (
	"context"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// Generator turns source text into notes under a system prompt.
type Generator interface {
	Generate(ctx context.Context, systemPrompt, content string) (string, error)
}

// Gemini generates notes with the Gemini API.
type Gemini struct {
	client          *genai.Client
	model           string
	maxOutputTokens int32
}

// NewGemini opens a Gemini client. Close it when done.
func NewGemini(ctx context.Context, apiKey, model string, maxOutputTokens int32) (*Gemini, error) {
	if apiKey == "" {
		return nil, errors.New("GEMINI_API_KEY is not set")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, errors.Wrap(err, "create gemini client")
	}
	return &Gemini{client: client, model: model, maxOutputTokens: maxOutputTokens}, nil
}

func (g *Gemini) Close() error {
	return g.client.Close()
}

func (g *Gemini) Generate(ctx context.Context, systemPrompt, content string) (string, error) {
	model := g.client.GenerativeModel(g.model)
	model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(systemPrompt)}}
	if g.maxOutputTokens > 0 {
		model.SetMaxOutputTokens(g.maxOutputTokens)
	}

	resp, err := model.GenerateContent(ctx, genai.Text(content))
	if err != nil {
		return "", errors.Wrap(err, "gemini generate")
	}
	text := responseText(resp)
	if text == "" {
		return "", errors.New("gemini returned no text")
	}
	return text, nil
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	var b strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if t, ok := part.(genai.Text); ok {
				b.WriteString(string(t))
			}
		}
		// The first candidate with content is the answer.
		if b.Len() > 0 {
			break
		}
	}
	return b.String()
}

// DefaultAttempts is how many times Retry calls the wrapped generator.
const DefaultAttempts = 3

// Retry wraps a Generator with exponential backoff: 1s, 2s, 4s... between
// attempts.
type Retry struct {
	Generator Generator
	Attempts  int
	Logger    *zap.Logger

	// sleep is replaced in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

func (r *Retry) Generate(ctx context.Context, systemPrompt, content string) (string, error) {
	attempts := r.Attempts
	if attempts <= 0 {
		attempts = DefaultAttempts
	}
	sleep := r.sleep
	if sleep == nil {
		sleep = sleepContext
	}
	logger := r.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		out, err := r.Generator.Generate(ctx, systemPrompt, content)
		if err == nil {
			return out, nil
		}
		lastErr = err
		if attempt == attempts {
			break
		}
		backoff := time.Duration(1<<(attempt-1)) * time.Second
		logger.Debug("generation failed, retrying", zap.Int("attempt", attempt), zap.Duration("backoff", backoff), zap.Error(err))
		if err := sleep(ctx, backoff); err != nil {
			return "", err
		}
	}
	return "", errors.Wrapf(lastErr, "gave up after %d attempts", attempts)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
