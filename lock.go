// Advisory record locks.
//
// Every record the Store owns is backed by a handle: the record file opened
// read+write with an exclusive, non-blocking OS lock on it (flock(2) on
// unix, LockFileEx on windows). The lock only coordinates instances of this
// package; it does not stop other programs from writing the file.
//
// A handle is released exactly once. After release the handle keeps no file
// and every further call is a no-op or returns ErrClosed, mirroring how the
// Store tears slots down on Close, Delete and reconciliation.
package shelf

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// handle owns one open, locked record file.
type handle struct {
	mu   sync.Mutex
	id   ID
	path string
	f    *os.File
}

// acquire opens the record file for id in dir and tries to lock it. flags
// are OR'ed into O_RDWR: the load passes O_CREATE, Create passes
// O_CREATE|O_EXCL so an existing file surfaces as fs.ErrExist.
//
// A lock held elsewhere yields ErrLockConflict; open failures yield ErrIO.
func acquire(dir string, id ID, flags int) (*handle, error) {
	path := filepath.Join(dir, id.Filename())

	f, err := os.OpenFile(path, os.O_RDWR|flags, 0644)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", ErrIO, path, err)
	}

	if err := tryLock(f); err != nil {
		f.Close()
		return nil, err
	}

	// Another instance may have unlinked the file between our open and our
	// lock; the lock would then guard an orphaned inode.
	same, err := samePath(f, path)
	if err != nil || !same {
		unlock(f)
		f.Close()
		return nil, fmt.Errorf("%w: %s replaced while locking", ErrLockConflict, path)
	}

	return &handle{id: id, path: path, f: f}, nil
}

func samePath(f *os.File, path string) (bool, error) {
	a, err := f.Stat()
	if err != nil {
		return false, err
	}
	b, err := os.Stat(path)
	if err != nil {
		return false, err
	}
	return os.SameFile(a, b), nil
}

// read returns the whole file content. It reads through a SectionReader so
// the shared file offset is never moved.
func (h *handle) read() ([]byte, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.f == nil {
		return nil, ErrClosed
	}

	info, err := h.f.Stat()
	if err != nil {
		return nil, fmt.Errorf("%w: stat %s: %w", ErrIO, h.path, err)
	}
	data, err := io.ReadAll(io.NewSectionReader(h.f, 0, info.Size()))
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", ErrIO, h.path, err)
	}
	return data, nil
}

// write replaces the file content in place. The new bytes are written
// before the tail is cut so that a crash mid-write never leaves an empty
// file, which the next load would treat as a discarded draft.
func (h *handle) write(data []byte, sync bool) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.f == nil {
		return ErrClosed
	}

	if _, err := h.f.WriteAt(data, 0); err != nil {
		return fmt.Errorf("%w: write %s: %w", ErrIO, h.path, err)
	}
	if err := h.f.Truncate(int64(len(data))); err != nil {
		return fmt.Errorf("%w: truncate %s: %w", ErrIO, h.path, err)
	}
	if sync {
		if err := h.f.Sync(); err != nil {
			return fmt.Errorf("%w: sync %s: %w", ErrIO, h.path, err)
		}
	}
	return nil
}

// held reports whether the handle still owns its file.
func (h *handle) held() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.f != nil
}

// release unlocks and closes the file without touching its content.
func (h *handle) release() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.releaseLocked()
}

func (h *handle) releaseLocked() error {
	if h.f == nil {
		return nil
	}
	f := h.f
	h.f = nil

	errUnlock := unlock(f)
	errClose := f.Close()
	if errUnlock != nil {
		return fmt.Errorf("%w: unlock %s: %w", ErrIO, h.path, errUnlock)
	}
	if errClose != nil {
		return fmt.Errorf("%w: close %s: %w", ErrIO, h.path, errClose)
	}
	return nil
}

// unlinkPath deletes path, treating an already missing file as success.
func unlinkPath(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: remove %s: %w", ErrIO, path, err)
	}
	return nil
}
