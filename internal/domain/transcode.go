package domain

import "path/filepath"

// Preset names one of the fixed encoder parameter templates.
type Preset string

const (
	PresetProxyVideo    Preset = "proxy-video"
	PresetCompressVideo Preset = "compress-video"
	PresetImage         Preset = "image"
)

const CompressedSuffix = "-compressed.mp4"

type TranscodeJob struct {
	Input  string
	Output string
	Preset Preset
}

// ProxyVideoJob keeps the original filename inside the temp camera dir.
func ProxyVideoJob(sourcePath, tempCameraDir string) TranscodeJob {
	return TranscodeJob{
		Input:  sourcePath,
		Output: filepath.Join(tempCameraDir, filepath.Base(sourcePath)),
		Preset: PresetProxyVideo,
	}
}

// ProxyImageJob re-encodes to <stem>.jpg inside the temp camera dir.
func ProxyImageJob(sourcePath, tempCameraDir string) TranscodeJob {
	return TranscodeJob{
		Input:  sourcePath,
		Output: filepath.Join(tempCameraDir, Stem(filepath.Base(sourcePath))+".jpg"),
		Preset: PresetImage,
	}
}

// CompressVideoJob writes <stem>-compressed.mp4 beside the source.
func CompressVideoJob(sourcePath string) TranscodeJob {
	dir := filepath.Dir(sourcePath)
	return TranscodeJob{
		Input:  sourcePath,
		Output: filepath.Join(dir, Stem(filepath.Base(sourcePath))+CompressedSuffix),
		Preset: PresetCompressVideo,
	}
}
