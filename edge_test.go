// Boundary condition and edge case tests.
//
// These exercise what a real shop directory accumulates over the years:
// ids at the ends of the range, stray directories and backups next to the
// records, drafts written by other tools, and files the process may not
// read. Each one must end up as a record, an issue or silence, never as a
// failed load.
package shelf

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"testing"
)

// TestIDRangeBoundaries loads the first and last valid ids. An off-by-one
// in the range check would turn the extremes into invalid-id issues.
func TestIDRangeBoundaries(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "00001.toml", validRecord)
	writeFile(t, dir, "99999.toml", validRecord)

	s := openStore(t, dir, Config{})
	if got := ids(s.Records()); !slices.Equal(got, []ID{MinID, MaxID}) {
		t.Errorf("ids = %v", got)
	}
}

// TestDirectoryNamedLikeRecord: a directory called 00003.toml is not a
// record file and is neither loaded nor reported.
func TestDirectoryNamedLikeRecord(t *testing.T) {
	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, "00003.toml"), 0755); err != nil {
		t.Fatal(err)
	}
	s := openStore(t, dir, Config{})
	if s.Len() != 0 || len(s.Issues()) != 0 {
		t.Errorf("Len = %d, issues = %v", s.Len(), s.Issues())
	}
}

// TestBackupsIgnored: editor backups and differently cased extensions do
// not match the record name pattern.
func TestBackupsIgnored(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"00001.toml~", "00001.toml.bak", ".00001.toml.swp", "00001.TOML", "1.toml"} {
		writeFile(t, dir, name, validRecord)
	}
	s := openStore(t, dir, Config{})
	if s.Len() != 0 || len(s.Issues()) != 0 {
		t.Errorf("Len = %d, issues = %v", s.Len(), s.Issues())
	}
}

// TestDraftVariants covers the ways a draft looks on disk when another
// tool wrote it: whitespace around the sentinel, a bare newline, and an
// empty TOML document with only comments.
func TestDraftVariants(t *testing.T) {
	dir := t.TempDir()
	contents := []string{"{}\n", "  {}  ", "\n", "# nothing yet\n"}
	for i, c := range contents {
		writeFile(t, dir, ID(i+1).Filename(), c)
	}

	s := openStore(t, dir, Config{})
	if s.Len() != 0 || len(s.Issues()) != 0 {
		t.Errorf("Len = %d, issues = %v", s.Len(), s.Issues())
	}
	for i := range contents {
		if exists(t, filepath.Join(dir, ID(i+1).Filename())) {
			t.Errorf("draft %d not removed", i+1)
		}
	}
}

// TestUnreadableFile reports a file the process cannot open as an I/O
// issue and continues with the others.
func TestUnreadableFile(t *testing.T) {
	if runtime.GOOS == "windows" || os.Geteuid() == 0 {
		t.Skip("permission bits are not enforced")
	}
	dir := t.TempDir()
	writeFile(t, dir, "00001.toml", validRecord)
	path := writeFile(t, dir, "00002.toml", validRecord)
	if err := os.Chmod(path, 0); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chmod(path, 0644) })

	s := openStore(t, dir, Config{})
	if got := ids(s.Records()); !slices.Equal(got, []ID{1}) {
		t.Errorf("ids = %v, want [1]", got)
	}
	issues := s.Issues()
	if len(issues) != 1 || issues[0].Kind != IssueIO || !errors.Is(issues[0], ErrIO) {
		t.Errorf("issues = %v", issues)
	}
}

// TestNumericBoundaries: the widest values of each fixed-width field load,
// one more makes the record malformed.
func TestNumericBoundaries(t *testing.T) {
	dir := t.TempDir()
	widest := "title = \"x\"\ndescription = \"\"\nlanguage = \"\"\npages = \"\"\nformat = \"\"\n" +
		"category = 65535\ncondition = 255\nweight = 65535\nprice = 65535\n"
	over := "title = \"x\"\ndescription = \"\"\nlanguage = \"\"\npages = \"\"\nformat = \"\"\n" +
		"category = 1\ncondition = 256\nweight = 1\nprice = 1\n"
	writeFile(t, dir, "00001.toml", widest)
	writeFile(t, dir, "00002.toml", over)

	s := openStore(t, dir, Config{})
	e1, _ := s.Get(1)
	if e1.Outcome != OutcomeValid || e1.Book.Price != 65535 || e1.Book.Condition != 255 {
		t.Errorf("max entry = %+v", e1)
	}
	e2, _ := s.Get(2)
	if e2.Outcome != OutcomeMalformed {
		t.Errorf("overflow entry outcome = %s", e2.Outcome)
	}
}

// TestReloadAfterExternalDelete: a record removed by hand while this store
// holds it disappears from the directory but the slot stays until Delete.
// Delete then treats the missing file as already gone.
func TestReloadAfterExternalDelete(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("open files cannot be removed")
	}
	dir := t.TempDir()
	path := writeFile(t, dir, "00001.toml", validRecord)
	s := openStore(t, dir, Config{})

	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Reload(t.Context()); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if s.Len() != 1 {
		t.Errorf("Len = %d, want the held slot kept", s.Len())
	}
	if err := s.Delete(1); err != nil {
		t.Errorf("Delete: %v", err)
	}
}
