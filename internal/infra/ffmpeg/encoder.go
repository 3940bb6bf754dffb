package ffmpeg

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"strings"

	"shootproxy/internal/domain"
	appErrors "shootproxy/internal/errors"
	"shootproxy/internal/logging"
)

var ErrFFmpegNotFound = errors.New("ffmpeg not found on PATH")

// Encoder runs ffmpeg synchronously, one job per process. Stderr is always
// captured for error reporting; in verbose mode it is also tee'd to Tee (or
// os.Stderr) as it is produced.
type Encoder struct {
	Binary  string
	Verbose bool
	Tee     io.Writer
	Logger  logging.Logger
}

func (e Encoder) Transcode(ctx context.Context, job domain.TranscodeJob) error {
	args, err := Build(e.Binary, job)
	if err != nil {
		return err
	}
	e.Logger.Verbosef("Running %s", strings.Join(args, " "))

	cmd := exec.CommandContext(ctx, args[0], args[1:]...)

	var stderrBuf bytes.Buffer
	if e.Verbose {
		cmd.Stderr = io.MultiWriter(&stderrBuf, e.tee())
	} else {
		cmd.Stderr = &stderrBuf
	}

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		code := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			code = exitErr.ExitCode()
		}
		stderr := stderrBuf.String()
		if stderr == "" && code == -1 {
			stderr = err.Error()
		}
		return &appErrors.EncodeError{
			Input:    job.Input,
			ExitCode: code,
			Stderr:   stderr,
			Err:      err,
		}
	}
	return nil
}

// Check resolves the configured binary on PATH.
func (e Encoder) Check() (string, error) {
	binary := e.Binary
	if binary == "" {
		binary = DefaultBinary
	}
	path, err := exec.LookPath(binary)
	if err != nil {
		return "", ErrFFmpegNotFound
	}
	return path, nil
}

func (e Encoder) tee() io.Writer {
	if e.Tee != nil {
		return e.Tee
	}
	return os.Stderr
}
