//go:build unix

package shelf

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

func tryLock(f *os.File) error {
	err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB)
	if err == nil {
		return nil
	}
	if errors.Is(err, unix.EWOULDBLOCK) {
		return fmt.Errorf("%w: %s", ErrLockConflict, f.Name())
	}
	return fmt.Errorf("%w: flock %s: %w", ErrIO, f.Name(), err)
}

func unlock(f *os.File) error {
	return unix.Flock(int(f.Fd()), unix.LOCK_UN)
}

// remove deletes the record file and releases the handle. On unix the file
// is unlinked while the lock is still held, so no other instance can lock
// and read it in between.
func (h *handle) remove() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.f == nil {
		return ErrClosed
	}

	if err := unlinkPath(h.path); err != nil {
		return err
	}
	return h.releaseLocked()
}
