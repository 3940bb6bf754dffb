package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"shootproxy/internal/domain"
	appErrors "shootproxy/internal/errors"
	"shootproxy/internal/logging"
)

// ProgressFunc is called before each entry is staged.
type ProgressFunc func(current, total int, entry domain.PlanEntry)

type Executor struct {
	FS         FileSystem
	Encoder    Encoder
	Metadata   MetadataReader
	Logger     logging.Logger
	Profile    domain.Profile
	OnProgress ProgressFunc
}

// Execute stages every planned entry into destRoot/<camera>/, transcoding
// videos and compressible images through tempRoot/<camera>/ first. When the
// profile does not stage, tempRoot is unused and the encoder writes into the
// destination. The first failure aborts; items staged so far are returned
// alongside the error.
func (e *Executor) Execute(ctx context.Context, plan domain.ProxyPlan, tempRoot, destRoot string) ([]domain.ProxyItem, []string, error) {
	if e.FS == nil || e.Encoder == nil {
		return nil, nil, errors.New("executor requires FS and Encoder")
	}

	stop := e.Logger.Measure("Staging proxies")
	defer stop()

	var items []domain.ProxyItem
	var warnings []string
	total := plan.Total()
	current := 0

	for _, camera := range plan.Cameras {
		destDir := filepath.Join(destRoot, camera.Name)
		if err := e.FS.MkdirAll(destDir, 0o755); err != nil {
			return items, warnings, appErrors.Wrap(appErrors.IOFailure, "mkdir", destDir, err)
		}
		workDir := destDir
		if e.Profile.Staged() {
			workDir = filepath.Join(tempRoot, camera.Name)
			if err := e.FS.MkdirAll(workDir, 0o755); err != nil {
				return items, warnings, appErrors.Wrap(appErrors.IOFailure, "mkdir", workDir, err)
			}
		}

		for _, entry := range camera.Entries {
			select {
			case <-ctx.Done():
				return items, warnings, ctx.Err()
			default:
			}

			current++
			if e.OnProgress != nil {
				e.OnProgress(current, total, entry)
			}

			item, warning, err := e.stage(ctx, entry, workDir, destDir)
			if err != nil {
				return items, warnings, err
			}
			if warning != "" {
				warnings = append(warnings, warning)
			}
			items = append(items, item)
		}
	}

	return items, warnings, nil
}

func (e *Executor) stage(ctx context.Context, entry domain.PlanEntry, workDir, destDir string) (domain.ProxyItem, string, error) {
	if !entry.Category.Accepted() {
		return domain.ProxyItem{}, "", fmt.Errorf("cannot stage %s entry %s", entry.Category, entry.Name)
	}

	staged := entry.SourcePath
	job, transcode := e.Profile.Job(entry.Category, entry.SourcePath, workDir)
	if transcode {
		e.Logger.Verbosef("Transcoding %s/%s (%s)", entry.Camera, entry.Name, job.Preset)
		if err := e.Encoder.Transcode(ctx, job); err != nil {
			return domain.ProxyItem{}, "", appErrors.Wrap(appErrors.EncodeFailure, "transcode", entry.SourcePath, err)
		}
		staged = job.Output
	}

	target := filepath.Join(destDir, filepath.Base(staged))
	if staged != target {
		if err := e.FS.CopyFile(staged, target); err != nil {
			return domain.ProxyItem{}, "", appErrors.Wrap(appErrors.IOFailure, "copy", target, err)
		}
	}

	info, err := e.FS.Stat(target)
	if err != nil {
		return domain.ProxyItem{}, "", appErrors.Wrap(appErrors.IOFailure, "stat", target, err)
	}

	capturedAt, warning, err := e.captureTime(ctx, entry)
	if err != nil {
		return domain.ProxyItem{}, "", err
	}

	return domain.ProxyItem{
		Camera:     entry.Camera,
		SourceName: entry.Name,
		Name:       filepath.Base(target),
		SourcePath: entry.SourcePath,
		TargetPath: target,
		Category:   entry.Category,
		Transcoded: entry.Category.Transcoded(),
		SourceSize: entry.Size,
		OutputSize: info.Size(),
		CapturedAt: capturedAt,
	}, warning, nil
}

// captureTime prefers embedded EXIF and falls back to the source mtime.
func (e *Executor) captureTime(ctx context.Context, entry domain.PlanEntry) (time.Time, string, error) {
	if e.Metadata != nil && domain.CarriesExif(entry.Name) {
		takenAt, err := e.Metadata.CapturedAt(ctx, entry.SourcePath)
		if err == nil {
			return takenAt, "", nil
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return time.Time{}, "", err
		}
		info, statErr := e.FS.Stat(entry.SourcePath)
		if statErr != nil {
			return time.Time{}, "", appErrors.Wrap(appErrors.IOFailure, "stat", entry.SourcePath, statErr)
		}
		return info.ModTime(), fmt.Sprintf("EXIF not found for %s, using filesystem time", entry.Name), nil
	}

	info, err := e.FS.Stat(entry.SourcePath)
	if err != nil {
		return time.Time{}, "", appErrors.Wrap(appErrors.IOFailure, "stat", entry.SourcePath, err)
	}
	return info.ModTime(), "", nil
}
