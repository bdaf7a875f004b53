package ntfsgo

import (
	"fmt"
	"os"
)

// diskBackend abstracts the byte store an Image is built on, so formatting
// a fresh image and reopening an existing one share the same raw I/O path.
type diskBackend interface {
	readAt(p []byte, off int64) error
	writeAt(p []byte, off int64) error
	truncate(size int64) error
	size() (int64, error)
	sync() error
	close() error
}

// fileBackend implements diskBackend with a real *os.File.
type fileBackend struct {
	f *os.File
}

// openFileBackend opens path for read+write, creating it if create is
// true. A missing file with create=false is reported via the returned
// error wrapping os.ErrNotExist, which Image.Open treats as "not
// formatted".
func openFileBackend(path string, create bool) (*fileBackend, error) {
	flags := os.O_RDWR
	if create {
		flags |= os.O_CREATE
	}

	f, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		return nil, err
	}

	return &fileBackend{f: f}, nil
}

func (fb *fileBackend) readAt(p []byte, off int64) error {
	if _, err := fb.f.ReadAt(p, off); err != nil {
		return fmt.Errorf("disk read error: %w", err)
	}

	return nil
}

func (fb *fileBackend) writeAt(p []byte, off int64) error {
	if _, err := fb.f.WriteAt(p, off); err != nil {
		return fmt.Errorf("disk write error: %w", err)
	}

	return nil
}

func (fb *fileBackend) truncate(size int64) error {
	if err := fb.f.Truncate(size); err != nil {
		return fmt.Errorf("disk truncate error: %w", err)
	}

	return nil
}

func (fb *fileBackend) size() (int64, error) {
	info, err := fb.f.Stat()
	if err != nil {
		return 0, fmt.Errorf("disk stat error: %w", err)
	}

	return info.Size(), nil
}

func (fb *fileBackend) sync() error {
	if err := fb.f.Sync(); err != nil {
		return fmt.Errorf("disk sync error: %w", err)
	}

	return nil
}

func (fb *fileBackend) close() error {
	if err := fb.f.Close(); err != nil {
		return fmt.Errorf("disk close error: %w", err)
	}

	return nil
}

// memBackend is an in-memory diskBackend. Open and Format always use a
// fileBackend, and no test in the package constructs a memBackend.
type memBackend struct {
	buf    []byte
	closed bool
}

func newMemBackend() *memBackend {
	return &memBackend{}
}

func (mb *memBackend) readAt(p []byte, off int64) error {
	if off < 0 || off+int64(len(p)) > int64(len(mb.buf)) {
		return fmt.Errorf("mem backend read out of range: off=%d len=%d size=%d", off, len(p), len(mb.buf))
	}

	copy(p, mb.buf[off:off+int64(len(p))])

	return nil
}

func (mb *memBackend) writeAt(p []byte, off int64) error {
	if off < 0 || off+int64(len(p)) > int64(len(mb.buf)) {
		return fmt.Errorf("mem backend write out of range: off=%d len=%d size=%d", off, len(p), len(mb.buf))
	}

	copy(mb.buf[off:off+int64(len(p))], p)

	return nil
}

func (mb *memBackend) truncate(size int64) error {
	if int64(len(mb.buf)) >= size {
		mb.buf = mb.buf[:size]
		return nil
	}

	grown := make([]byte, size)
	copy(grown, mb.buf)
	mb.buf = grown

	return nil
}

func (mb *memBackend) size() (int64, error) {
	return int64(len(mb.buf)), nil
}

func (mb *memBackend) sync() error { return nil }

func (mb *memBackend) close() error {
	mb.closed = true
	return nil
}
