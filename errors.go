// Package shelf stores antiquarian inventory records as a directory of small
// TOML files, one file per item, named by a five digit id (00001.toml to
// 99999.toml). Every loaded file is held open under an exclusive advisory
// lock for as long as the Store owns it, so a second instance pointed at the
// same directory skips those records instead of editing them concurrently.
//
// A load walks the directory, locks each candidate without blocking, decodes
// it and classifies the result. Valid records are returned with their Book,
// malformed ones are kept (Book is nil) so an operator can repair them, and
// empty ones are abandoned drafts which are deleted on the spot. Problems
// with individual files never fail the load; they are returned as Issues.
package shelf

import (
	"errors"
	"fmt"
)

// Sentinel errors for programmatic handling. Only ErrDirectoryUnavailable is
// fatal to Open; the per-file conditions surface wrapped inside an Issue.
var (
	ErrDirectoryUnavailable = errors.New("data directory unavailable")
	ErrLockConflict         = errors.New("record locked by another holder")
	ErrIO                   = errors.New("record i/o failure")
	ErrMalformed            = errors.New("malformed record")
	ErrInvalidID            = errors.New("invalid record id")
	ErrNotFound             = errors.New("record not found")
	ErrClosed               = errors.New("store is closed")
	ErrNoFreeID             = errors.New("no free record id")
	ErrInvalidRecord        = errors.New("invalid record")
	ErrAlreadyHeld          = errors.New("record already held by this store")
	ErrDecompress           = errors.New("decompression failed")
	ErrInvalidConfig        = errors.New("invalid store configuration")
)

// IssueKind classifies a per-file problem found during a load.
type IssueKind int

const (
	IssueLockConflict IssueKind = iota + 1
	IssueIO
	IssueMalformed
	IssueInvalidID
)

func (k IssueKind) String() string {
	switch k {
	case IssueLockConflict:
		return "lock-conflict"
	case IssueIO:
		return "io"
	case IssueMalformed:
		return "malformed"
	case IssueInvalidID:
		return "invalid-id"
	default:
		return "unknown"
	}
}

// Issue is a non-fatal diagnostic for one record file. Raw is only set for
// IssueMalformed and carries the file content for manual recovery.
type Issue struct {
	ID   ID
	Path string
	Kind IssueKind
	Raw  string
	Err  error
}

func (i Issue) Error() string {
	return fmt.Sprintf("%s: %s: %v", i.Path, i.Kind, i.Err)
}

func (i Issue) Unwrap() error {
	return i.Err
}
