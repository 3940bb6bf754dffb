package ffmpeg

import (
	"fmt"

	"shootproxy/internal/domain"
)

const DefaultBinary = "ffmpeg"

// Build returns the full argv for a job, program first. Paths are passed as
// discrete arguments so quotes and spaces in filenames need no escaping.
func Build(binary string, job domain.TranscodeJob) ([]string, error) {
	if binary == "" {
		binary = DefaultBinary
	}
	args := []string{binary, "-hide_banner", "-nostdin", "-y", "-i", job.Input}

	switch job.Preset {
	case domain.PresetProxyVideo:
		args = append(args,
			"-vf", "scale=3840x2160",
			"-c:v", "libx264",
			"-pix_fmt", "yuv420p",
			"-preset", "slow",
			"-crf", "23",
		)
	case domain.PresetCompressVideo:
		args = append(args,
			"-vf", "scale=1920:-1",
			"-c:v", "libx264",
			"-pix_fmt", "yuv420p",
			"-preset", "slow",
			"-crf", "28",
		)
	case domain.PresetImage:
		// encoder defaults; the .jpg output extension selects mjpeg
	default:
		return nil, fmt.Errorf("unknown preset %q", job.Preset)
	}

	return append(args, job.Output), nil
}
