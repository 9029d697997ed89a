package notes

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedGenerator struct {
	errs  []error
	calls int
}

func (g *scriptedGenerator) Generate(_ context.Context, _, content string) (string, error) {
	g.calls++
	if g.calls <= len(g.errs) && g.errs[g.calls-1] != nil {
		return "", g.errs[g.calls-1]
	}
	return "notes: " + content, nil
}

func recordSleeps(r *Retry) *[]time.Duration {
	var slept []time.Duration
	r.sleep = func(_ context.Context, d time.Duration) error {
		slept = append(slept, d)
		return nil
	}
	return &slept
}

func TestRetrySucceedsAfterFailures(t *testing.T) {
	gen := &scriptedGenerator{errs: []error{errors.New("503"), errors.New("503")}}
	r := &Retry{Generator: gen}
	slept := recordSleeps(r)

	out, err := r.Generate(context.Background(), "prompt", "text")
	require.NoError(t, err)
	assert.Equal(t, "notes: text", out)
	assert.Equal(t, 3, gen.calls)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, *slept)
}

func TestRetryGivesUp(t *testing.T) {
	boom := errors.New("quota exceeded")
	gen := &scriptedGenerator{errs: []error{boom, boom}}
	r := &Retry{Generator: gen, Attempts: 2}
	slept := recordSleeps(r)

	_, err := r.Generate(context.Background(), "prompt", "text")
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "gave up after 2 attempts")
	assert.Equal(t, 2, gen.calls)
	assert.Len(t, *slept, 1)
}

func TestRetryStopsOnCancel(t *testing.T) {
	gen := &scriptedGenerator{errs: []error{errors.New("503")}}
	r := &Retry{Generator: gen}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := r.Generate(ctx, "prompt", "text")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, gen.calls)
}

func TestResponseText(t *testing.T) {
	assert.Empty(t, responseText(nil))

	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: nil},
			{Content: &genai.Content{Parts: []genai.Part{genai.Text("# Notes\n"), genai.Text("- point")}}},
			{Content: &genai.Content{Parts: []genai.Part{genai.Text("ignored")}}},
		},
	}
	assert.Equal(t, "# Notes\n- point", responseText(resp))
}

func TestNewGeminiRequiresKey(t *testing.T) {
	_, err := NewGemini(context.Background(), "", "gemini-2.5-pro", 100)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GEMINI_API_KEY")
}
