// Core store type and lifecycle.
//
// Store exclusively owns every slot it loads: the decoded outcome, the lock
// handle and the fingerprint of the bytes on disk. Callers only ever see
// Entry snapshots and act through Create, Save, Discard and Delete, so a
// lock handle never leaves the package. Slots live in a btree ordered by
// id, which gives ascending listings and the smallest-gap search in Create.
package shelf

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
	"slices"
	"sync"

	"github.com/google/btree"
	"github.com/rs/zerolog"
)

// Config holds store configuration options.
type Config struct {
	HashAlgorithm int             // 1=xxHash3, 2=FNV1a, 3=Blake2b
	Workers       int             // Parallel file pipelines during a load (default NumCPU)
	KeepHistory   bool            // Archive previous content on Save and Delete
	SyncWrites    bool            // Call fsync after writes
	Logger        *zerolog.Logger // Diagnostics sink (default: discard)
}

// Entry is a read-only snapshot of one loaded record. Book is nil unless
// Outcome is OutcomeValid. Raw and Problem are set for malformed records.
type Entry struct {
	ID          ID      `json:"id"`
	Outcome     Outcome `json:"outcome"`
	Book        *Book   `json:"book,omitempty"`
	Raw         string  `json:"raw,omitempty"`
	Problem     string  `json:"problem,omitempty"`
	Fingerprint string  `json:"fingerprint"`
}

// slot is the in-memory owner of one record file.
type slot struct {
	id      ID
	outcome Outcome
	book    *Book
	raw     []byte
	problem error
	fp      string
	h       *handle
}

func (sl *slot) entry() Entry {
	e := Entry{
		ID:          sl.id,
		Outcome:     sl.outcome,
		Book:        sl.book.Clone(),
		Fingerprint: sl.fp,
	}
	if sl.outcome == OutcomeMalformed {
		e.Raw = string(sl.raw)
		if sl.problem != nil {
			e.Problem = sl.problem.Error()
		}
	}
	return e
}

func slotLess(a, b *slot) bool {
	return a.id < b.id
}

// Store is an open record directory.
type Store struct {
	dir    string
	config Config
	log    zerolog.Logger
	slots  *btree.BTreeG[*slot]
	issues []Issue
	closed bool
	mu     sync.RWMutex
}

// Open creates dir if needed and loads every record in it. Per-file
// problems do not fail Open; they are available from Issues. Open only
// fails on an unknown hash algorithm, when the directory cannot be created
// or listed, or when ctx is cancelled, in which case every lock taken so
// far is released.
func Open(ctx context.Context, dir string, config Config) (*Store, error) {
	if config.HashAlgorithm == 0 {
		config.HashAlgorithm = AlgXXHash3
	}
	if config.HashAlgorithm < AlgXXHash3 || config.HashAlgorithm > AlgBlake2b {
		return nil, fmt.Errorf("%w: unknown hash algorithm %d", ErrInvalidConfig, config.HashAlgorithm)
	}
	if config.Workers <= 0 {
		config.Workers = runtime.NumCPU()
	}

	logger := zerolog.Nop()
	if config.Logger != nil {
		logger = *config.Logger
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrDirectoryUnavailable, dir, err)
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrDirectoryUnavailable, dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrDirectoryUnavailable, dir)
	}

	s := &Store{
		dir:    dir,
		config: config,
		log:    logger.With().Str("dir", dir).Logger(),
		slots:  btree.NewG(32, slotLess),
	}

	slots, issues, err := s.scan(ctx, nil)
	if err != nil {
		return nil, err
	}
	for _, sl := range slots {
		s.slots.ReplaceOrInsert(sl)
	}
	s.issues = issues

	s.log.Info().
		Int("records", s.slots.Len()).
		Int("issues", len(issues)).
		Msg("store loaded")
	return s, nil
}

// Reload rescans the directory. Slots already held are kept as they are;
// records that appeared, or whose lock was freed by another instance, are
// added. The returned issues replace those reported by Issues.
func (s *Store) Reload(ctx context.Context) ([]Issue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}

	held := make(map[ID]bool, s.slots.Len())
	s.slots.Ascend(func(sl *slot) bool {
		held[sl.id] = true
		return true
	})

	slots, issues, err := s.scan(ctx, held)
	if err != nil {
		return nil, err
	}
	for _, sl := range slots {
		s.slots.ReplaceOrInsert(sl)
	}
	s.issues = issues
	return slices.Clone(issues), nil
}

// Close releases every lock without deleting any file. It is safe to call
// more than once; every other method returns ErrClosed afterwards.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}

	var errs []error
	s.slots.Ascend(func(sl *slot) bool {
		if err := sl.h.release(); err != nil {
			errs = append(errs, err)
		}
		return true
	})
	s.slots.Clear(false)
	s.closed = true

	return errors.Join(errs...)
}

// Dir returns the record directory.
func (s *Store) Dir() string {
	return s.dir
}

// Records returns a snapshot of every held record in ascending id order.
func (s *Store) Records() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Entry, 0, s.slots.Len())
	s.slots.Ascend(func(sl *slot) bool {
		out = append(out, sl.entry())
		return true
	})
	return out
}

// Get returns the snapshot of one record.
func (s *Store) Get(id ID) (Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sl, err := s.lookup(id)
	if err != nil {
		return Entry{}, err
	}
	return sl.entry(), nil
}

// Len returns the number of held records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.slots.Len()
}

// Issues returns the diagnostics of the most recent load or reload.
func (s *Store) Issues() []Issue {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.issues)
}

// lookup finds a held slot. The caller holds s.mu.
func (s *Store) lookup(id ID) (*slot, error) {
	if s.closed {
		return nil, ErrClosed
	}
	sl, ok := s.slots.Get(&slot{id: id})
	if !ok {
		return nil, ErrNotFound
	}
	return sl, nil
}

// hold locks the record file for id unless this store already owns it, so
// one process never stacks a second lock on a record it holds. The caller
// holds s.mu.
func (s *Store) hold(id ID, flags int) (*handle, error) {
	if s.slots.Has(&slot{id: id}) {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyHeld, id)
	}
	return acquire(s.dir, id, flags)
}
