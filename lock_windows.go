//go:build windows

package shelf

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/sys/windows"
)

// Lock the whole addressable range, as a record never grows past it.
const (
	lockLow  = 0xFFFFFFFF
	lockHigh = 0xFFFFFFFF
)

func tryLock(f *os.File) error {
	var ol windows.Overlapped
	err := windows.LockFileEx(
		windows.Handle(f.Fd()),
		windows.LOCKFILE_EXCLUSIVE_LOCK|windows.LOCKFILE_FAIL_IMMEDIATELY,
		0,
		lockLow,
		lockHigh,
		&ol,
	)
	if err == nil {
		return nil
	}
	if errors.Is(err, windows.ERROR_LOCK_VIOLATION) {
		return fmt.Errorf("%w: %s", ErrLockConflict, f.Name())
	}
	return fmt.Errorf("%w: LockFileEx %s: %w", ErrIO, f.Name(), err)
}

func unlock(f *os.File) error {
	var ol windows.Overlapped
	return windows.UnlockFileEx(windows.Handle(f.Fd()), 0, lockLow, lockHigh, &ol)
}

// remove releases the handle and then deletes the record file. Windows
// refuses to delete a file that is open, so the order is the reverse of
// the unix implementation.
func (h *handle) remove() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.f == nil {
		return ErrClosed
	}

	if err := h.releaseLocked(); err != nil {
		return err
	}
	return unlinkPath(h.path)
}
