// Archived record versions.
//
// With Config.KeepHistory, the content a record had before Save replaced
// it or Delete removed it is kept under <dir>/.history as
// NNNNN-<unix millis>.toml.zst: the zstd-compressed file bytes, written via
// temp file and rename. The Locator only looks at the top level of the data
// directory, so archives are never mistaken for records.
package shelf

import (
	"bytes"
	"cmp"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/natefinch/atomic"
)

const historyDir = ".history"

const historyExt = Ext + ".zst"

// Version is a single archived copy of a record's file content.
type Version struct {
	Data string
	TS   int64 // Unix milliseconds when it was archived
}

// archive stores data as a version of id. Blank content is not archived.
// The caller holds s.mu.
func (s *Store) archive(id ID, data []byte) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}

	dir := filepath.Join(s.dir, historyDir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("archive: %w", err)
	}

	// Two archives of one id within a millisecond get distinct names.
	ts := time.Now().UnixMilli()
	path := historyPath(dir, id, ts)
	for {
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			break
		}
		ts++
		path = historyPath(dir, id, ts)
	}

	if err := atomic.WriteFile(path, bytes.NewReader(compress(data))); err != nil {
		return fmt.Errorf("archive: %w", err)
	}
	s.log.Debug().Stringer("id", id).Int64("ts", ts).Msg("version archived")
	return nil
}

func historyPath(dir string, id ID, ts int64) string {
	return filepath.Join(dir, fmt.Sprintf("%s-%d%s", id, ts, historyExt))
}

// History returns the archived versions of id, oldest first. It reads the
// archive directly, so it also works for records this store does not hold.
func (s *Store) History(id ID) ([]Version, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}

	files, err := s.archives(id)
	if err != nil {
		return nil, fmt.Errorf("history: %w", err)
	}

	var versions []Version
	for _, a := range files {
		compressed, err := os.ReadFile(a.path)
		if err != nil {
			return nil, fmt.Errorf("history: %w", err)
		}
		content, err := decompress(compressed)
		if err != nil {
			return nil, fmt.Errorf("history: %s: %w", filepath.Base(a.path), err)
		}
		versions = append(versions, Version{Data: string(content), TS: a.ts})
	}
	return versions, nil
}

type archiveFile struct {
	path string
	ts   int64
}

// archives lists the archive files of id, oldest first. A missing archive
// directory is an empty history.
func (s *Store) archives(id ID) ([]archiveFile, error) {
	dir := filepath.Join(s.dir, historyDir)
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	prefix := id.String() + "-"
	var files []archiveFile
	for _, e := range entries {
		name := e.Name()
		if !e.Type().IsRegular() || !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, historyExt) {
			continue
		}
		ts, err := strconv.ParseInt(strings.TrimSuffix(strings.TrimPrefix(name, prefix), historyExt), 10, 64)
		if err != nil {
			continue
		}
		files = append(files, archiveFile{path: filepath.Join(dir, name), ts: ts})
	}

	slices.SortFunc(files, func(a, b archiveFile) int {
		return cmp.Compare(a.ts, b.ts)
	})
	return files, nil
}
