// The load pipeline.
//
// Each candidate file runs through its own sequence (derive id, lock, read,
// decode, reconcile) with no shared state, so the files are processed on a
// bounded errgroup. Results land in a slice indexed by job and are merged
// only after every job has finished, then sorted by id: the outcome does
// not depend on directory order or on which worker finished first.
package shelf

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"
)

// fileResult is what one file pipeline produced. A malformed record sets
// both fields; reconciled drafts and already held ids set neither.
type fileResult struct {
	slot  *slot
	issue *Issue
}

// scan runs the pipeline over every candidate in the directory, skipping
// ids in held. On cancellation every lock taken by this pass is released.
func (s *Store) scan(ctx context.Context, held map[ID]bool) ([]*slot, []Issue, error) {
	start := time.Now()

	names, err := locate(s.dir)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrDirectoryUnavailable, err)
	}

	results := make([]fileResult, len(names))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.config.Workers)
	for i, name := range names {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = s.loadFile(name, held)
			return nil
		})
	}
	waitErr := g.Wait()

	var slots []*slot
	var issues []Issue
	for _, r := range results {
		if r.slot != nil {
			slots = append(slots, r.slot)
		}
		if r.issue != nil {
			issues = append(issues, *r.issue)
		}
	}

	if waitErr != nil {
		for _, sl := range slots {
			sl.h.release()
		}
		s.log.Warn().Err(waitErr).Int("released", len(slots)).Msg("load cancelled")
		return nil, nil, waitErr
	}

	slices.SortFunc(slots, func(a, b *slot) int {
		return cmp.Compare(a.id, b.id)
	})
	slices.SortFunc(issues, func(a, b Issue) int {
		if c := cmp.Compare(a.ID, b.ID); c != 0 {
			return c
		}
		return cmp.Compare(a.Path, b.Path)
	})

	loadDuration.Observe(time.Since(start).Seconds())
	return slots, issues, nil
}

// loadFile runs the pipeline for one candidate filename.
func (s *Store) loadFile(name string, held map[ID]bool) fileResult {
	path := filepath.Join(s.dir, name)

	id, err := ParseFilename(name)
	if err != nil {
		loadFilesTotal.WithLabelValues("invalid_id").Inc()
		s.log.Warn().Str("path", path).Msg("record filename has no valid id")
		return fileResult{issue: &Issue{Path: path, Kind: IssueInvalidID, Err: err}}
	}
	if held[id] {
		return fileResult{}
	}

	h, err := acquire(s.dir, id, os.O_CREATE)
	if err != nil {
		kind := IssueIO
		label := "io"
		if errors.Is(err, ErrLockConflict) {
			kind = IssueLockConflict
			label = "conflict"
		}
		loadFilesTotal.WithLabelValues(label).Inc()
		s.log.Warn().Err(err).Stringer("id", id).Msg("record skipped")
		return fileResult{issue: &Issue{ID: id, Path: path, Kind: kind, Err: err}}
	}

	data, err := h.read()
	if err != nil {
		h.release()
		loadFilesTotal.WithLabelValues("io").Inc()
		s.log.Warn().Err(err).Stringer("id", id).Msg("record unreadable")
		return fileResult{issue: &Issue{ID: id, Path: path, Kind: IssueIO, Err: err}}
	}

	outcome, book, derr := Decode(data)
	switch outcome {
	case OutcomeEmpty:
		removed, err := reconcile(h)
		if err != nil {
			h.release()
			loadFilesTotal.WithLabelValues("io").Inc()
			s.log.Warn().Err(err).Stringer("id", id).Msg("draft cleanup failed")
			return fileResult{issue: &Issue{ID: id, Path: path, Kind: IssueIO, Err: err}}
		}
		if !removed {
			h.release()
			err := fmt.Errorf("%w: %s changed during load", ErrIO, path)
			return fileResult{issue: &Issue{ID: id, Path: path, Kind: IssueIO, Err: err}}
		}
		loadFilesTotal.WithLabelValues("empty").Inc()
		s.log.Debug().Stringer("id", id).Msg("abandoned draft removed")
		return fileResult{}

	case OutcomeMalformed:
		loadFilesTotal.WithLabelValues("malformed").Inc()
		s.log.Warn().
			Err(derr).
			Stringer("id", id).
			Str("path", path).
			Str("content", string(data)).
			Msg("record kept but could not be decoded")
		sl := &slot{
			id:      id,
			outcome: OutcomeMalformed,
			raw:     data,
			problem: derr,
			fp:      fingerprint(data, s.config.HashAlgorithm),
			h:       h,
		}
		return fileResult{
			slot:  sl,
			issue: &Issue{ID: id, Path: path, Kind: IssueMalformed, Raw: string(data), Err: derr},
		}

	default:
		loadFilesTotal.WithLabelValues("valid").Inc()
		return fileResult{slot: &slot{
			id:      id,
			outcome: OutcomeValid,
			book:    book,
			fp:      fingerprint(data, s.config.HashAlgorithm),
			h:       h,
		}}
	}
}
