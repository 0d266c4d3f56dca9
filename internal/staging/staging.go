package staging

import (
	stderrors "errors"
	iofs "io/fs"
	"os"
	"path/filepath"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/input-output-hk/catalyst-forge-libs/fs"

	"github.com/objstream/transfer/errors"
)

// Area manages the staging directory where sources are fully materialized
// before upload. All file access goes through the filesystem abstraction so
// tests can run against an in-memory filesystem.
type Area struct {
	fs     fs.Filesystem
	dir    string
	logger *log.Logger
}

// New creates a staging area rooted at dir, creating it if needed.
func New(filesystem fs.Filesystem, dir string, logger *log.Logger) (*Area, error) {
	if err := filesystem.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.NewError("staging", err).WithMessage("cannot create staging directory")
	}
	return &Area{
		fs:     filesystem,
		dir:    dir,
		logger: logger,
	}, nil
}

// Create opens a fresh staging file for a session and returns the handle
// and its path. An existing file for the same session is truncated.
func (a *Area) Create(sessionID string) (fs.File, string, error) {
	path := filepath.Join(a.dir, sessionID+".staging")
	file, err := a.fs.Create(path)
	if err != nil {
		return nil, "", errors.NewError("staging", err).WithMessage("cannot create staging file")
	}
	return file, path, nil
}

// Open reopens a staged file for reading.
func (a *Area) Open(path string) (fs.File, error) {
	file, err := a.fs.Open(path)
	if err != nil {
		return nil, errors.NewError("staging", err).WithMessage("cannot open staging file")
	}
	return file, nil
}

// Remove deletes a staging file. Cleanup is best-effort: the transfer
// outcome is already decided by the time this runs, so failures are logged
// and swallowed.
func (a *Area) Remove(path string) {
	if path == "" {
		return
	}
	if err := a.fs.Remove(path); err != nil && a.logger != nil {
		a.logger.Warn("failed to remove staging file", "path", path, "error", err)
	}
}

// IsFatal reports whether a staging write error is unrecoverable.
// Disk-full and permission errors will not improve on retry.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	if stderrors.Is(err, iofs.ErrPermission) || os.IsPermission(err) {
		return true
	}
	return stderrors.Is(err, syscall.ENOSPC) || stderrors.Is(err, syscall.EDQUOT)
}
