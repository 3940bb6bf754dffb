package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"shootproxy/internal/app"
	"shootproxy/internal/config"
	"shootproxy/internal/domain"
	appErrors "shootproxy/internal/errors"
	"shootproxy/internal/infra/exif"
	"shootproxy/internal/infra/ffmpeg"
	"shootproxy/internal/infra/fs"
	"shootproxy/internal/logging"
	"shootproxy/internal/presentation"
	"shootproxy/internal/tui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var flags config.Flags

	cmd := &cobra.Command{
		Use:   "makeproxy [flags] <shoot-dir>",
		Short: "Stage review proxies for every camera folder in a shoot",
		Long: `makeproxy walks the camera folders of a shoot, transcodes videos and
raw stills into lightweight proxies, copies ready-to-view files as-is, and
stages everything under the destination root. Skipped files are listed in
omitted_files.txt.

With --archival, videos are compressed and stills and audio copied straight
into <root>/temp_proxy/<YYYY>_<MM>_proxy/<shoot>.proxy, where the date comes
from the shoot name and root defaults to the volume holding the shoot.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Please provide the shoot directory path.")
				return nil
			}

			cfg, err := config.Resolve(cmd.Flags(), flags)
			if err != nil {
				return appErrors.Wrap(appErrors.InvalidConfig, "config", "", err)
			}
			if cfg.ShootDir, err = filepath.Abs(args[0]); err != nil {
				return appErrors.Wrap(appErrors.InvalidConfig, "resolve shoot", args[0], err)
			}
			if cfg.Archival {
				if cfg.DestinationDir, err = domain.ArchivalDestination(cfg.ShootDir, cfg.ArchiveRoot); err != nil {
					return appErrors.Wrap(appErrors.InvalidConfig, "archival destination", cfg.ShootDir, err)
				}
			}

			return run(cmd.Context(), cfg, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	config.BindCommon(cmd.Flags(), &flags)
	config.BindBatch(cmd.Flags(), &flags)
	return cmd
}

func run(ctx context.Context, cfg config.Config, stdout, stderr io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	interactive := cfg.TUI && presentation.IsTerminal(stdout)
	logger := logging.New(stderr, cfg.Verbose).WithRun()
	if interactive {
		logger = logging.New(io.Discard, false)
	}

	filesystem := fs.OSFS{}
	printer := presentation.New(stdout, cfg.Verbose)
	profile := domain.ProfileReview
	if cfg.Archival {
		profile = domain.ProfileArchival
	}

	if cfg.DryRun {
		planner := app.Planner{FS: filesystem, Logger: logger, Profile: profile}
		plan, err := planner.Plan(ctx, cfg.ShootDir)
		if err != nil {
			return err
		}
		printer.PrintDryRun(plan, cfg.DestinationDir)
		return nil
	}

	encoder := ffmpeg.Encoder{
		Binary:  cfg.FFmpegPath,
		Verbose: cfg.Verbose && !interactive,
		Tee:     stderr,
		Logger:  logger,
	}
	if _, err := encoder.Check(); err != nil {
		return appErrors.Wrap(appErrors.InvalidConfig, "ffmpeg", cfg.FFmpegPath, err)
	}

	pipeline := &app.Pipeline{
		FS:                filesystem,
		Encoder:           encoder,
		Metadata:          exif.Reader{},
		Logger:            logger,
		Destination:       cfg.DestinationDir,
		Profile:           profile,
		KeepTempOnFailure: cfg.KeepTempOnFailure,
	}

	if interactive {
		return runInteractive(ctx, cfg, pipeline, printer)
	}

	stop := logger.Measure("proxy run")
	report, err := pipeline.Run(ctx, cfg.ShootDir)
	stop()
	if err != nil {
		return err
	}
	printer.PrintRun(report)
	return nil
}

func runInteractive(ctx context.Context, cfg config.Config, pipeline *app.Pipeline, printer presentation.Printer) error {
	var (
		report domain.RunReport
		runErr error
	)

	view := tui.Config{ShootDir: cfg.ShootDir, Destination: cfg.DestinationDir}
	final, err := tui.Run(ctx, view, func(ctx context.Context, send func(tea.Msg)) {
		pipeline.OnPlanned = func(plan domain.ProxyPlan) {
			send(tui.PlanReadyMsg{Plan: plan})
		}
		pipeline.OnProgress = func(current, total int, entry domain.PlanEntry) {
			send(tui.StageProgressMsg{Current: current, Total: total, Entry: entry})
		}

		report, runErr = pipeline.Run(ctx, cfg.ShootDir)
		if runErr != nil {
			send(tui.ErrorMsg{Err: errors.New(appErrors.UserMessage(runErr))})
			return
		}
		send(tui.RunDoneMsg{Report: report})
	})
	if err != nil {
		return appErrors.Wrap(appErrors.Internal, "tui", "", err)
	}

	if runErr != nil {
		if final.Quitting && errors.Is(runErr, context.Canceled) {
			return context.Canceled
		}
		return runErr
	}
	printer.PrintRun(report)
	return nil
}
