// Archive maintenance.
//
// History only grows on its own. PruneHistory trims one record's archive to
// its newest versions; Purge drops the whole archive directory. Neither
// touches a record file.
package shelf

import (
	"fmt"
	"os"
	"path/filepath"
)

// PruneHistory removes all but the newest keep archived versions of id and
// returns how many were removed. keep <= 0 removes them all.
func (s *Store) PruneHistory(id ID, keep int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, ErrClosed
	}

	files, err := s.archives(id)
	if err != nil {
		return 0, fmt.Errorf("prune: %w", err)
	}
	keep = max(keep, 0)
	if len(files) <= keep {
		return 0, nil
	}

	removed := 0
	for _, a := range files[:len(files)-keep] {
		if err := unlinkPath(a.path); err != nil {
			return removed, fmt.Errorf("prune: %w", err)
		}
		removed++
	}

	mutationsTotal.WithLabelValues("prune", "ok").Inc()
	s.log.Debug().Stringer("id", id).Int("removed", removed).Msg("history pruned")
	return removed, nil
}

// Purge permanently removes every archived version of every record.
func (s *Store) Purge() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	if err := os.RemoveAll(filepath.Join(s.dir, historyDir)); err != nil {
		mutationsTotal.WithLabelValues("purge", "error").Inc()
		return fmt.Errorf("purge: %w", err)
	}
	mutationsTotal.WithLabelValues("purge", "ok").Inc()
	s.log.Info().Msg("history purged")
	return nil
}
