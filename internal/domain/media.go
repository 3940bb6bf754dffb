package domain

import (
	"path/filepath"
	"strings"
)

type Category string

const (
	CategoryVideo       Category = "video"
	CategoryImage       Category = "compressible-image"
	CategoryPassThrough Category = "pass-through"
	CategoryOmitted     Category = "omitted"
)

var (
	videoExtensions       = []string{".mp4", ".mov", ".m4v"}
	imageExtensions       = []string{".png", ".tiff", ".cr2"}
	passThroughExtensions = []string{".jpg", ".jpeg", ".gif", ".drp"}
)

// Classify maps a filename to its category by lowercased suffix only.
// Video wins over image, image over pass-through.
func Classify(name string) Category {
	lower := strings.ToLower(name)
	switch {
	case hasAnySuffix(lower, videoExtensions):
		return CategoryVideo
	case hasAnySuffix(lower, imageExtensions):
		return CategoryImage
	case hasAnySuffix(lower, passThroughExtensions):
		return CategoryPassThrough
	default:
		return CategoryOmitted
	}
}

// Transcoded reports whether files of this category go through the encoder
// before being staged.
func (c Category) Transcoded() bool {
	return c == CategoryVideo || c == CategoryImage
}

// Accepted reports whether files of this category end up in the destination tree.
func (c Category) Accepted() bool {
	return c != CategoryOmitted
}

func hasAnySuffix(name string, suffixes []string) bool {
	for _, suffix := range suffixes {
		if strings.HasSuffix(name, suffix) {
			return true
		}
	}
	return false
}

// Stem returns the filename without its final extension.
func Stem(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// CarriesExif reports whether a capture time can be read from the file's
// embedded metadata.
func CarriesExif(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg", ".tiff", ".cr2":
		return true
	default:
		return false
	}
}
