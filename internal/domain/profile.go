package domain

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Profile selects how a shoot is proxied.
type Profile string

const (
	// ProfileReview encodes 4K proxies through <shoot>_proxy into a
	// configured destination.
	ProfileReview Profile = "review"
	// ProfileArchival encodes 1080p proxies straight into a destination
	// derived from the shoot's date prefix.
	ProfileArchival Profile = "archival"
)

// ArchiveDirName is the folder archival proxies collect under.
const ArchiveDirName = "temp_proxy"

var ErrUndatedShoot = errors.New("shoot name does not start with a YYYYMM date")

var archivalAudioExtensions = []string{".aac", ".wav", ".mp3"}

// Classify extends the shared table: the archival profile also keeps audio.
func (p Profile) Classify(name string) Category {
	category := Classify(name)
	if category == CategoryOmitted && p == ProfileArchival && hasAnySuffix(strings.ToLower(name), archivalAudioExtensions) {
		return CategoryPassThrough
	}
	return category
}

// Staged reports whether encoder output lands in the temp tree and is then
// copied, rather than being written into the destination directly.
func (p Profile) Staged() bool {
	return p != ProfileArchival
}

// Job returns the encoder job for a transcoded category, writing into dir.
// The second result is false for categories that are copied as-is.
func (p Profile) Job(category Category, sourcePath, dir string) (TranscodeJob, bool) {
	switch category {
	case CategoryVideo:
		job := ProxyVideoJob(sourcePath, dir)
		if p == ProfileArchival {
			job.Preset = PresetCompressVideo
		}
		return job, true
	case CategoryImage:
		return ProxyImageJob(sourcePath, dir), true
	default:
		return TranscodeJob{}, false
	}
}

// ArchivalDestination is <root>/temp_proxy/<YYYY>_<MM>_proxy/<shoot>.proxy.
// An empty root means the first two components of shootDir, which is the
// drive on a /Volumes/<drive>/... layout. shootDir must be absolute.
func ArchivalDestination(shootDir, root string) (string, error) {
	shootDir = filepath.Clean(shootDir)
	shoot := filepath.Base(shootDir)

	year, month, err := shootMonth(shoot)
	if err != nil {
		return "", err
	}
	if root == "" {
		root = volumeRoot(shootDir)
	}
	return filepath.Join(root, ArchiveDirName, fmt.Sprintf("%s_%s_proxy", year, month), shoot+".proxy"), nil
}

// shootMonth reads YYYYMM, YYYY.MM, YYYY-MM or YYYY_MM from the start of name.
func shootMonth(name string) (string, string, error) {
	if len(name) < 6 || !allDigits(name[:4]) {
		return "", "", fmt.Errorf("%w: %s", ErrUndatedShoot, name)
	}
	rest := name[4:]
	if strings.ContainsRune(".-_", rune(rest[0])) {
		rest = rest[1:]
	}
	if len(rest) < 2 || !allDigits(rest[:2]) || rest[:2] < "01" || rest[:2] > "12" {
		return "", "", fmt.Errorf("%w: %s", ErrUndatedShoot, name)
	}
	return name[:4], rest[:2], nil
}

func volumeRoot(shootDir string) string {
	vol := filepath.VolumeName(shootDir)
	sep := string(filepath.Separator)
	parts := strings.Split(strings.TrimPrefix(shootDir[len(vol):], sep), sep)
	if len(parts) <= 2 {
		return filepath.Dir(shootDir)
	}
	return vol + sep + filepath.Join(parts[:2]...)
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
