package source

import (
	"context"
	"io"

	"github.com/input-output-hk/catalyst-forge-libs/fs"

	"github.com/objstream/transfer/errors"
)

// File reads from a local file through the filesystem abstraction.
type File struct {
	fs   fs.Filesystem
	path string
}

// NewFile creates a file source for the given path.
func NewFile(filesystem fs.Filesystem, path string) *File {
	return &File{fs: filesystem, path: path}
}

// Open opens the file and returns its size from a stat call.
func (f *File) Open(_ context.Context) (io.ReadCloser, int64, error) {
	info, err := f.fs.Stat(f.path)
	if err != nil {
		return nil, 0, errors.NewError("source", err).WithMessage("cannot stat source file")
	}

	file, err := f.fs.Open(f.path)
	if err != nil {
		return nil, 0, errors.NewError("source", err).WithMessage("cannot open source file")
	}

	return file, info.Size(), nil
}

// Name returns the file path.
func (f *File) Name() string {
	return f.path
}
