package docsmd

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"time"
)

// DefaultFormatTimeout bounds a single Prettier run.
const DefaultFormatTimeout = 10 * time.Second

// Formatter normalizes markdown before it is converted.
type Formatter interface {
	Format(ctx context.Context, markdown string) (string, error)
}

// lookPath is the exec.LookPath implementation used to find prettier.
// Tests may replace it to simulate a missing binary.
var lookPath = exec.LookPath

// prettierBinary is "prettier", or the npm shim name on Windows.
func prettierBinary() string {
	if runtime.GOOS == "windows" {
		return "prettier.cmd"
	}
	return "prettier"
}

// Prettier formats markdown with `prettier --parser markdown`, reading the
// document on stdin.
type Prettier struct {
	Timeout time.Duration
}

func (p Prettier) Format(ctx context.Context, markdown string) (string, error) {
	bin, err := lookPath(prettierBinary())
	if err != nil {
		return "", fmt.Errorf("prettier not found (install with: npm install -g prettier): %w", err)
	}

	timeout := p.Timeout
	if timeout <= 0 {
		timeout = DefaultFormatTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, "--parser", "markdown")
	cmd.Stdin = strings.NewReader(markdown)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("prettier timed out after %s", timeout)
		}
		return "", fmt.Errorf("prettier: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}
