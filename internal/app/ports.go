package app

//go:generate mockgen -source=ports.go -destination=mocks/mock_ports.go -package=mocks

import (
	"context"
	"io/fs"
	"time"

	"shootproxy/internal/domain"
)

type FileSystem interface {
	ReadDir(path string) ([]fs.DirEntry, error)
	Stat(path string) (fs.FileInfo, error)
	Exists(path string) (bool, error)
	MkdirAll(path string, perm fs.FileMode) error
	RemoveAll(path string) error
	WriteFile(path string, data []byte, perm fs.FileMode) error
	CopyFile(src, dst string) error
}

type Encoder interface {
	Transcode(ctx context.Context, job domain.TranscodeJob) error
}

type MetadataReader interface {
	CapturedAt(ctx context.Context, path string) (time.Time, error)
}
