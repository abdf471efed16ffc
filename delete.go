// Record removal.
//
// Discard is the path the presentation layer uses to drop a record that
// carries no usable data: an abandoned draft or a file that failed to
// decode. It never touches a valid record. Delete is the explicit,
// unconditional removal of any record.
package shelf

import "fmt"

// Discard removes record id unless it holds a valid record. A draft is
// removed only if its file still decodes as empty, exactly as a load
// would; a malformed record is removed as it stands, archived first with
// KeepHistory. It reports whether the record was removed.
func (s *Store) Discard(id ID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sl, err := s.lookup(id)
	if err != nil {
		return false, err
	}

	var removed bool
	switch sl.outcome {
	case OutcomeValid:
		mutationsTotal.WithLabelValues("discard", "noop").Inc()
		return false, nil
	case OutcomeMalformed:
		if s.config.KeepHistory {
			if err := s.archive(id, sl.raw); err != nil {
				mutationsTotal.WithLabelValues("discard", "error").Inc()
				return false, fmt.Errorf("discard: %w", err)
			}
		}
		err = sl.h.remove()
		removed = err == nil
	default:
		removed, err = reconcile(sl.h)
	}

	if err != nil {
		if !sl.h.held() {
			s.slots.Delete(sl)
		}
		mutationsTotal.WithLabelValues("discard", "error").Inc()
		return false, fmt.Errorf("discard: %w", err)
	}
	if !removed {
		mutationsTotal.WithLabelValues("discard", "noop").Inc()
		return false, nil
	}

	s.slots.Delete(sl)
	mutationsTotal.WithLabelValues("discard", "ok").Inc()
	s.log.Debug().Stringer("id", id).Stringer("outcome", sl.outcome).Msg("record discarded")
	return true, nil
}

// Delete removes record id and releases its lock regardless of content.
// With KeepHistory the content is archived first, and a failed archive
// aborts the delete.
func (s *Store) Delete(id ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sl, err := s.lookup(id)
	if err != nil {
		return err
	}

	if s.config.KeepHistory {
		data, err := sl.h.read()
		if err != nil {
			mutationsTotal.WithLabelValues("delete", "error").Inc()
			return fmt.Errorf("delete: %w", err)
		}
		if err := s.archive(id, data); err != nil {
			mutationsTotal.WithLabelValues("delete", "error").Inc()
			return fmt.Errorf("delete: %w", err)
		}
	}

	err = sl.h.remove()
	if sl.h.held() {
		// The file could not be removed; the slot still owns it.
		mutationsTotal.WithLabelValues("delete", "error").Inc()
		return fmt.Errorf("delete: %w", err)
	}
	s.slots.Delete(sl)
	if err != nil {
		mutationsTotal.WithLabelValues("delete", "error").Inc()
		return fmt.Errorf("delete: %w", err)
	}

	mutationsTotal.WithLabelValues("delete", "ok").Inc()
	s.log.Info().Stringer("id", id).Msg("record deleted")
	return nil
}
