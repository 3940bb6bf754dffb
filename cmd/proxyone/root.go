package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"shootproxy/internal/app"
	"shootproxy/internal/config"
	appErrors "shootproxy/internal/errors"
	"shootproxy/internal/infra/ffmpeg"
	"shootproxy/internal/infra/fs"
	"shootproxy/internal/logging"
	"shootproxy/internal/presentation"

	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var flags config.Flags

	cmd := &cobra.Command{
		Use:           "proxyone [flags] <video>",
		Short:         "Compress a video file to <name>-compressed.mp4",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			printer := presentation.New(cmd.OutOrStdout(), false)
			if len(args) == 0 {
				printer.PrintError("Please provide the video file path.")
				return nil
			}

			cfg, err := config.Resolve(cmd.Flags(), flags)
			if err != nil {
				return appErrors.Wrap(appErrors.InvalidConfig, "config", "", err)
			}
			cfg.VideoPath = args[0]
			printer.Verbose = cfg.Verbose

			return run(cmd.Context(), cfg, printer, cmd.ErrOrStderr())
		},
	}

	config.BindCommon(cmd.Flags(), &flags)
	return cmd
}

// run reports a missing file or a failed encode on the printer and returns
// nil; only setup problems surface as errors.
func run(ctx context.Context, cfg config.Config, printer presentation.Printer, stderr io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	logger := logging.New(stderr, cfg.Verbose)
	encoder := ffmpeg.Encoder{
		Binary:  cfg.FFmpegPath,
		Verbose: cfg.Verbose,
		Tee:     stderr,
		Logger:  logger,
	}
	compressor := app.Compressor{FS: fs.OSFS{}, Encoder: encoder, Logger: logger}

	output, err := compressor.Compress(ctx, cfg.VideoPath)
	if err == nil {
		printer.PrintCompressed(output)
		return nil
	}

	var encErr *appErrors.EncodeError
	switch {
	case appErrors.Is(err, appErrors.NotFound):
		printer.PrintError(fmt.Sprintf("The file '%s' does not exist.", cfg.VideoPath))
		return nil
	case errors.As(err, &encErr):
		printer.PrintEncodeFailure(encErr)
		return nil
	default:
		return err
	}
}
