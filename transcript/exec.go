package transcript

import (
	"bytes"
	"context"
	"os/exec"
)

// lookPath and runCommand wrap os/exec so tests can stand in for ffmpeg and
// whisper.
var (
	lookPath   = exec.LookPath
	runCommand = func(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error) {
		var out, errOut bytes.Buffer
		cmd := exec.CommandContext(ctx, name, args...)
		cmd.Stdout = &out
		cmd.Stderr = &errOut
		err = cmd.Run()
		return out.Bytes(), errOut.Bytes(), err
	}
)
