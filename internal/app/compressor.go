package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"shootproxy/internal/domain"
	appErrors "shootproxy/internal/errors"
	"shootproxy/internal/logging"
)

// Compressor shrinks one video to <stem>-compressed.mp4 beside the source.
type Compressor struct {
	FS      FileSystem
	Encoder Encoder
	Logger  logging.Logger
}

// Compress returns the output path. A missing or non-regular source fails
// with NotFound before the encoder is started.
func (c *Compressor) Compress(ctx context.Context, videoPath string) (string, error) {
	if c.FS == nil || c.Encoder == nil {
		return "", errors.New("compressor requires FS and Encoder")
	}

	info, err := c.FS.Stat(videoPath)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return "", appErrors.Wrap(appErrors.NotFound, "stat", videoPath, fmt.Errorf("the file '%s' does not exist", videoPath))
	case err != nil:
		return "", appErrors.Wrap(appErrors.IOFailure, "stat", videoPath, err)
	case !info.Mode().IsRegular():
		return "", appErrors.Wrap(appErrors.NotFound, "stat", videoPath, fmt.Errorf("the file '%s' does not exist", videoPath))
	}

	job := domain.CompressVideoJob(videoPath)
	stop := c.Logger.Measure("Compressing " + videoPath)
	defer stop()

	if err := c.Encoder.Transcode(ctx, job); err != nil {
		return job.Output, appErrors.Wrap(appErrors.EncodeFailure, "compress", videoPath, err)
	}
	return job.Output, nil
}
