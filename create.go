// Draft creation.
//
// Create hands out the smallest id that is neither held by this store nor
// present on disk. The file is created with O_EXCL, so an id owned by a
// file another instance holds (or a stray file nobody holds) is skipped
// rather than clobbered. Allocation runs under the store's write lock,
// which makes it the single decision point for concurrent Create calls.
package shelf

import (
	"errors"
	"io/fs"
	"os"
)

// Create allocates a new draft record and returns its snapshot. The draft
// is an empty file; if it is never saved, the next load removes it.
func (s *Store) Create() (Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return Entry{}, ErrClosed
	}

	for id := MinID; id <= MaxID; id++ {
		h, err := s.hold(id, os.O_CREATE|os.O_EXCL)
		if err != nil {
			if errors.Is(err, ErrAlreadyHeld) || errors.Is(err, fs.ErrExist) || errors.Is(err, ErrLockConflict) {
				continue
			}
			mutationsTotal.WithLabelValues("create", "error").Inc()
			return Entry{}, err
		}

		sl := &slot{
			id:      id,
			outcome: OutcomeEmpty,
			fp:      fingerprint(nil, s.config.HashAlgorithm),
			h:       h,
		}
		s.slots.ReplaceOrInsert(sl)

		mutationsTotal.WithLabelValues("create", "ok").Inc()
		s.log.Debug().Stringer("id", id).Msg("draft created")
		return sl.entry(), nil
	}

	mutationsTotal.WithLabelValues("create", "error").Inc()
	return Entry{}, ErrNoFreeID
}
