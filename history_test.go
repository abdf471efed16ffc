package shelf

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestHistoryMissingDir(t *testing.T) {
	s := openTestStore(t)
	versions, err := s.History(1)
	if err != nil || versions != nil {
		t.Errorf("History = %v, %v; want nil, nil", versions, err)
	}
}

func TestHistoryArchiveNames(t *testing.T) {
	s := openTestStore(t)

	s.mu.Lock()
	err1 := s.archive(12, []byte("a = 1\n"))
	err2 := s.archive(12, []byte("a = 2\n"))
	err3 := s.archive(12, []byte("   \n"))
	s.mu.Unlock()
	for _, err := range []error{err1, err2, err3} {
		if err != nil {
			t.Fatalf("archive: %v", err)
		}
	}

	entries, err := os.ReadDir(filepath.Join(s.Dir(), historyDir))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("archive files = %d, want 2 (blank content skipped)", len(entries))
	}
	for _, e := range entries {
		if matched, _ := filepath.Match("00012-*.toml.zst", e.Name()); !matched {
			t.Errorf("archive name %q", e.Name())
		}
	}

	versions, err := s.History(12)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(versions) != 2 || versions[0].Data != "a = 1\n" || versions[1].Data != "a = 2\n" {
		t.Errorf("versions = %+v", versions)
	}
}

// TestHistoryIgnoresOtherFiles: other ids and foreign names in the archive
// directory are not part of a record's history.
func TestHistoryIgnoresOtherFiles(t *testing.T) {
	s := openTestStore(t)
	s.mu.Lock()
	if err := s.archive(1, []byte("a = 1\n")); err != nil {
		t.Fatal(err)
	}
	if err := s.archive(11, []byte("b = 1\n")); err != nil {
		t.Fatal(err)
	}
	s.mu.Unlock()

	hdir := filepath.Join(s.Dir(), historyDir)
	writeFile(t, hdir, "00001-notatime.toml.zst", "junk")
	writeFile(t, hdir, "00001-5.toml", "junk")
	os.Mkdir(filepath.Join(hdir, "00001-6.toml.zst"), 0755)

	versions, err := s.History(1)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(versions) != 1 || versions[0].Data != "a = 1\n" {
		t.Errorf("versions = %+v", versions)
	}
}

func TestHistoryCorruptArchive(t *testing.T) {
	s := openTestStore(t)
	hdir := filepath.Join(s.Dir(), historyDir)
	if err := os.MkdirAll(hdir, 0755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, hdir, "00004-1700000000000.toml.zst", "not zstd")

	_, err := s.History(4)
	if !errors.Is(err, ErrDecompress) {
		t.Errorf("err = %v, want ErrDecompress", err)
	}
}

// The archive directory lives inside the data directory but is never
// loaded as a record.
func TestHistoryNotLoaded(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "00001.toml", validRecord)
	s := openStore(t, dir, Config{KeepHistory: true})
	if err := s.Delete(1); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	s.Close()

	s2 := openStore(t, dir, Config{})
	if s2.Len() != 0 || len(s2.Issues()) != 0 {
		t.Errorf("Len = %d, issues = %v", s2.Len(), s2.Issues())
	}
	versions, err := s2.History(1)
	if err != nil || len(versions) != 1 {
		t.Errorf("History = %v, %v", versions, err)
	}
}
