// Record writes.
//
// Save rewrites the record file in place through the handle that already
// holds its lock. Renaming a temp file over the record would leave this
// process holding a lock on the replaced inode, so the write happens on the
// locked file itself; cooperating readers cannot observe it mid-write
// because they cannot lock the file until this store releases it.
package shelf

import "fmt"

// Save validates b and writes it as the content of record id. Writing the
// same bytes that are already on disk is a no-op. With KeepHistory the
// previous content is archived first.
func (s *Store) Save(id ID, b *Book) error {
	if err := b.Validate(); err != nil {
		mutationsTotal.WithLabelValues("save", "invalid").Inc()
		return err
	}
	data, err := encode(b)
	if err != nil {
		mutationsTotal.WithLabelValues("save", "error").Inc()
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sl, err := s.lookup(id)
	if err != nil {
		return err
	}

	fp := fingerprint(data, s.config.HashAlgorithm)
	if fp != "" && sl.outcome == OutcomeValid && fp == sl.fp {
		mutationsTotal.WithLabelValues("save", "noop").Inc()
		return nil
	}

	if s.config.KeepHistory && sl.outcome != OutcomeEmpty {
		prev, err := sl.h.read()
		if err != nil {
			mutationsTotal.WithLabelValues("save", "error").Inc()
			return fmt.Errorf("save: %w", err)
		}
		if err := s.archive(id, prev); err != nil {
			mutationsTotal.WithLabelValues("save", "error").Inc()
			return fmt.Errorf("save: %w", err)
		}
	}

	if err := sl.h.write(data, s.config.SyncWrites); err != nil {
		mutationsTotal.WithLabelValues("save", "error").Inc()
		return fmt.Errorf("save: %w", err)
	}

	sl.outcome = OutcomeValid
	sl.book = b.Clone()
	if len(sl.book.Keywords) == 0 {
		// Empty keywords are omitted on disk and reload as nil.
		sl.book.Keywords = nil
	}
	sl.raw = nil
	sl.problem = nil
	sl.fp = fp

	mutationsTotal.WithLabelValues("save", "ok").Inc()
	s.log.Debug().Stringer("id", id).Str("fingerprint", fp).Msg("record saved")
	return nil
}
