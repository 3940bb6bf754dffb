package app

import (
	"context"
	"errors"
	"path/filepath"
	"strings"

	"shootproxy/internal/domain"
	appErrors "shootproxy/internal/errors"
	"shootproxy/internal/logging"
)

var ErrDestinationExists = errors.New("destination already exists")

// Pipeline proxies a whole shoot into a fresh destination tree.
type Pipeline struct {
	FS          FileSystem
	Encoder     Encoder
	Metadata    MetadataReader
	Logger      logging.Logger
	Destination string
	Profile     domain.Profile
	// KeepTempOnFailure leaves <shoot>_proxy in place when a run fails.
	KeepTempOnFailure bool
	OnPlanned         func(plan domain.ProxyPlan)
	OnProgress        ProgressFunc
}

// TempTreePath is <parent>/<shoot>_proxy, beside the shoot directory.
func TempTreePath(shootDir string) string {
	shootDir = filepath.Clean(shootDir)
	return filepath.Join(filepath.Dir(shootDir), filepath.Base(shootDir)+domain.TempTreeSuffix)
}

// Run executes the batch. The destination must not exist beforehand; the
// temp tree is removed on every exit path unless KeepTempOnFailure is set
// and the run failed. A failed run leaves the destination as far as it got.
// Profiles that do not stage write encoder output into the destination and
// never create a temp tree.
func (p *Pipeline) Run(ctx context.Context, shootDir string) (report domain.RunReport, err error) {
	if p.FS == nil || p.Encoder == nil {
		return domain.RunReport{}, errors.New("pipeline requires FS and Encoder")
	}
	if p.Destination == "" {
		return domain.RunReport{}, appErrors.Wrap(appErrors.InvalidConfig, "destination", "", errors.New("destination is required"))
	}

	shootDir, err = filepath.Abs(shootDir)
	if err != nil {
		return domain.RunReport{}, appErrors.Wrap(appErrors.InvalidConfig, "resolve shoot", shootDir, err)
	}
	report = domain.RunReport{
		Shoot:       filepath.Base(shootDir),
		Destination: p.Destination,
	}

	exists, err := p.FS.Exists(p.Destination)
	if err != nil {
		return report, appErrors.Wrap(appErrors.IOFailure, "stat", p.Destination, err)
	}
	if exists {
		return report, appErrors.Wrap(appErrors.DestinationExists, "validate destination", p.Destination, ErrDestinationExists)
	}

	planner := Planner{FS: p.FS, Logger: p.Logger, Profile: p.Profile}
	plan, err := planner.Plan(ctx, shootDir)
	if err != nil {
		return report, err
	}
	if p.OnPlanned != nil {
		p.OnPlanned(plan)
	}
	for _, camera := range plan.Cameras {
		report.Cameras = append(report.Cameras, camera.Name)
	}
	report.Omitted = plan.Omitted

	var tempRoot string
	if p.Profile.Staged() {
		tempRoot = TempTreePath(shootDir)
		if err := p.FS.MkdirAll(tempRoot, 0o755); err != nil {
			return report, appErrors.Wrap(appErrors.IOFailure, "mkdir", tempRoot, err)
		}
		defer func() {
			err = p.cleanup(tempRoot, err)
		}()
	}

	if err := p.FS.MkdirAll(p.Destination, 0o755); err != nil {
		return report, appErrors.Wrap(appErrors.IOFailure, "mkdir", p.Destination, err)
	}

	executor := Executor{
		FS:         p.FS,
		Encoder:    p.Encoder,
		Metadata:   p.Metadata,
		Logger:     p.Logger,
		Profile:    p.Profile,
		OnProgress: p.OnProgress,
	}
	items, warnings, err := executor.Execute(ctx, plan, tempRoot, p.Destination)
	report.Items = items
	report.Warnings = append(append([]string{}, plan.Warnings...), warnings...)
	if err != nil {
		return report, err
	}

	manifest := filepath.Join(p.Destination, domain.ManifestName)
	if err := p.FS.WriteFile(manifest, []byte(strings.Join(plan.Omitted, "\n")), 0o644); err != nil {
		return report, appErrors.Wrap(appErrors.IOFailure, "write manifest", manifest, err)
	}
	p.Logger.Verbosef("Wrote %d omitted names to %s", len(plan.Omitted), manifest)

	return report, nil
}

func (p *Pipeline) cleanup(tempRoot string, runErr error) error {
	if runErr != nil && p.KeepTempOnFailure {
		p.Logger.Warnf("keeping %s for inspection", tempRoot)
		return runErr
	}
	if err := p.FS.RemoveAll(tempRoot); err != nil {
		if runErr != nil {
			p.Logger.Warnf("could not remove %s: %v", tempRoot, err)
			return runErr
		}
		return appErrors.Wrap(appErrors.IOFailure, "cleanup", tempRoot, err)
	}
	p.Logger.Verbosef("Removed %s", tempRoot)
	return runErr
}
