package app

import (
	"context"
	"errors"
	"io/fs"
	"path/filepath"

	"shootproxy/internal/domain"
	appErrors "shootproxy/internal/errors"
	"shootproxy/internal/logging"
)

type Planner struct {
	FS      FileSystem
	Logger  logging.Logger
	Profile domain.Profile
}

// Plan enumerates shoot -> camera -> file without touching the filesystem.
// Both levels keep the order ReadDir returns. Non-directories at the shoot
// level are ignored, but links to directories count as cameras. Anything
// inside a camera dir that is not a regular file, dangling links included,
// is omitted by name like any unrecognised extension.
func (p *Planner) Plan(ctx context.Context, shootDir string) (domain.ProxyPlan, error) {
	if p.FS == nil {
		return domain.ProxyPlan{}, errors.New("planner requires FS")
	}

	shootDir, err := filepath.Abs(shootDir)
	if err != nil {
		return domain.ProxyPlan{}, appErrors.Wrap(appErrors.InvalidConfig, "resolve shoot", shootDir, err)
	}

	stop := p.Logger.Measure("Planning proxies")
	defer stop()

	plan := domain.ProxyPlan{
		Shoot:    filepath.Base(shootDir),
		ShootDir: shootDir,
	}

	entries, err := p.FS.ReadDir(shootDir)
	if err != nil {
		return domain.ProxyPlan{}, wrapFSError("read shoot", shootDir, err)
	}

	for _, entry := range entries {
		isCamera, err := p.isDir(filepath.Join(shootDir, entry.Name()), entry)
		if err != nil {
			return domain.ProxyPlan{}, err
		}
		if !isCamera {
			p.Logger.Verbosef("Ignoring %s at shoot level", entry.Name())
			continue
		}
		camera, err := p.planCamera(ctx, &plan, shootDir, entry.Name())
		if err != nil {
			return domain.ProxyPlan{}, err
		}
		plan.Cameras = append(plan.Cameras, camera)
	}

	p.Logger.Verbosef("Planned %d cameras: %d videos, %d images, %d copies, %d omitted",
		len(plan.Cameras), plan.VideoCount, plan.ImageCount, plan.CopyCount, len(plan.Omitted))
	return plan, nil
}

func (p *Planner) planCamera(ctx context.Context, plan *domain.ProxyPlan, shootDir, name string) (domain.CameraPlan, error) {
	cameraDir := filepath.Join(shootDir, name)
	camera := domain.CameraPlan{Name: name, SourceDir: cameraDir}

	entries, err := p.FS.ReadDir(cameraDir)
	if err != nil {
		return domain.CameraPlan{}, wrapFSError("read camera", cameraDir, err)
	}

	for _, entry := range entries {
		select {
		case <-ctx.Done():
			return domain.CameraPlan{}, ctx.Err()
		default:
		}

		path := filepath.Join(cameraDir, entry.Name())
		info, err := p.FS.Stat(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			p.Logger.Verbosef("Omitting dangling link %s", path)
			plan.Omitted = append(plan.Omitted, entry.Name())
			continue
		case err != nil:
			return domain.CameraPlan{}, wrapFSError("stat", path, err)
		}

		category := p.Profile.Classify(entry.Name())
		if !info.Mode().IsRegular() {
			category = domain.CategoryOmitted
		}

		switch category {
		case domain.CategoryOmitted:
			plan.Omitted = append(plan.Omitted, entry.Name())
			continue
		case domain.CategoryVideo:
			plan.VideoCount++
		case domain.CategoryImage:
			plan.ImageCount++
		case domain.CategoryPassThrough:
			plan.CopyCount++
		}

		camera.Entries = append(camera.Entries, domain.PlanEntry{
			Camera:     name,
			Name:       entry.Name(),
			SourcePath: path,
			Category:   category,
			Size:       info.Size(),
		})
	}

	p.Logger.Verbosef("Camera %s: %d files to stage", name, len(camera.Entries))
	return camera, nil
}

// isDir follows a symlinked entry to its target; a dangling link is not a
// directory.
func (p *Planner) isDir(path string, entry fs.DirEntry) (bool, error) {
	if entry.Type()&fs.ModeSymlink == 0 {
		return entry.IsDir(), nil
	}
	info, err := p.FS.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	case err != nil:
		return false, wrapFSError("stat", path, err)
	}
	return info.IsDir(), nil
}

func wrapFSError(op, path string, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return appErrors.Wrap(appErrors.NotFound, op, path, err)
	}
	return appErrors.Wrap(appErrors.IOFailure, op, path, err)
}
