package exif

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	goexif "github.com/rwcarlsen/goexif/exif"
)

var ErrNoCaptureTime = errors.New("exif capture time not found")

const exifTimeLayout = "2006:01:02 15:04:05"

// Reader extracts capture timestamps from JPEG and TIFF-based files (CR2
// included). Other formats fail to decode and callers fall back to mtime.
type Reader struct {
	// Location interprets EXIF wall-clock times. Nil means time.Local.
	Location *time.Location
}

func (r Reader) CapturedAt(ctx context.Context, path string) (time.Time, error) {
	if err := ctx.Err(); err != nil {
		return time.Time{}, err
	}

	f, err := os.Open(path)
	if err != nil {
		return time.Time{}, err
	}
	defer f.Close()

	meta, err := goexif.Decode(f)
	if err != nil {
		return time.Time{}, fmt.Errorf("decode exif %s: %w", path, err)
	}
	return r.captureTime(meta)
}

// captureTime prefers the shutter time, then digitisation, then the IFD0
// DateTime stamp. All three are wall-clock values read in r.Location.
func (r Reader) captureTime(meta *goexif.Exif) (time.Time, error) {
	loc := r.Location
	if loc == nil {
		loc = time.Local
	}

	for _, field := range []goexif.FieldName{goexif.DateTimeOriginal, goexif.DateTimeDigitized, goexif.DateTime} {
		tag, err := meta.Get(field)
		if err != nil {
			continue
		}
		raw, err := tag.StringVal()
		if err != nil {
			continue
		}
		if t, err := time.ParseInLocation(exifTimeLayout, strings.Trim(raw, " \x00"), loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, ErrNoCaptureTime
}
