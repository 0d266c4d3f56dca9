package metastore

import (
	"context"
	stderrors "errors"
	iofs "io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/bytedance/sonic"
	"github.com/input-output-hk/catalyst-forge-libs/fs"

	"github.com/objstream/transfer/errors"
	"github.com/objstream/transfer/transfertypes"
)

// recordExt is the file extension for persisted session records.
const recordExt = ".json"

// Dir persists one JSON document per session under a directory. Writes go
// through the filesystem abstraction so tests can use an in-memory
// filesystem.
type Dir struct {
	fs  fs.Filesystem
	dir string

	// mu serializes writes to the same record file
	mu sync.Mutex
}

// NewDir creates a directory-backed store rooted at dir, creating the
// directory if needed.
func NewDir(filesystem fs.Filesystem, dir string) (*Dir, error) {
	if err := filesystem.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.NewError("metastore", err).WithMessage("cannot create store directory")
	}
	return &Dir{fs: filesystem, dir: dir}, nil
}

// Put stores or replaces the record for a session.
func (d *Dir) Put(_ context.Context, record transfertypes.SessionRecord) error {
	data, err := sonic.Marshal(record)
	if err != nil {
		return errors.NewError("put", err).WithMessage("cannot encode session record")
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.fs.WriteFile(d.path(record.ID), data, 0o644); err != nil {
		return errors.NewError("put", err).WithMessage("cannot write session record")
	}
	return nil
}

// Get retrieves the record for a session.
func (d *Dir) Get(_ context.Context, id string) (transfertypes.SessionRecord, error) {
	data, err := d.fs.ReadFile(d.path(id))
	if err != nil {
		if stderrors.Is(err, iofs.ErrNotExist) || os.IsNotExist(err) {
			return transfertypes.SessionRecord{}, errors.NewError("get", errors.ErrSessionNotFound).
				WithMessage(id)
		}
		return transfertypes.SessionRecord{}, errors.NewError("get", err).
			WithMessage("cannot read session record")
	}

	var record transfertypes.SessionRecord
	if err := sonic.Unmarshal(data, &record); err != nil {
		return transfertypes.SessionRecord{}, errors.NewError("get", err).
			WithMessage("cannot decode session record")
	}
	return record, nil
}

// Delete removes the record for a session. Deleting a missing record is not
// an error.
func (d *Dir) Delete(_ context.Context, id string) error {
	err := d.fs.Remove(d.path(id))
	if err != nil && !stderrors.Is(err, iofs.ErrNotExist) && !os.IsNotExist(err) {
		return errors.NewError("delete", err).WithMessage("cannot remove session record")
	}
	return nil
}

// List returns all persisted records in unspecified order.
func (d *Dir) List(_ context.Context) ([]transfertypes.SessionRecord, error) {
	entries, err := d.fs.ReadDir(d.dir)
	if err != nil {
		return nil, errors.NewError("list", err).WithMessage("cannot read store directory")
	}

	var out []transfertypes.SessionRecord
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), recordExt) {
			continue
		}

		data, err := d.fs.ReadFile(filepath.Join(d.dir, entry.Name()))
		if err != nil {
			return nil, errors.NewError("list", err).WithMessage("cannot read session record")
		}

		var record transfertypes.SessionRecord
		if err := sonic.Unmarshal(data, &record); err != nil {
			return nil, errors.NewError("list", err).WithMessage("cannot decode session record")
		}
		out = append(out, record)
	}
	return out, nil
}

func (d *Dir) path(id string) string {
	return filepath.Join(d.dir, id+recordExt)
}
