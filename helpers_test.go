package shelf

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

const validRecord = `title = "Der Zauberberg"
description = "Roman in zwei Bänden"
language = "de"
pages = "XII, 1200 S."
format = "Oktav"
category = 12
condition = 2
weight = 850
price = 45
`

func sampleBook() *Book {
	return &Book{
		Title:          "Der Zauberberg",
		Description:    "Roman in zwei Bänden, Leinen mit Schutzumschlag",
		Language:       "de",
		Pages:          "XII, 1200 S.",
		Format:         "Oktav",
		Category:       12,
		Condition:      2,
		Weight:         850,
		Price:          45,
		Author:         "Thomas Mann",
		Year:           1924,
		Location:       "Regal 4, Fach 2",
		Edition:        "Erstausgabe",
		Publisher:      "S. Fischer",
		ISBN:           "978-3-16-148410-0",
		Cover:          "covers/00001.jpg",
		CoverURL:       "https://example.org/covers/00001.jpg",
		Keywords:       []string{"Roman", "Klassiker"},
		PersonalNotice: "Widmung auf Vorsatz",
		FirstEdition:   true,
		Signed:         true,
	}
}

// writeFile places a raw file in dir, bypassing the store.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile %s: %v", name, err)
	}
	return path
}

func exists(t *testing.T, path string) bool {
	t.Helper()
	_, err := os.Stat(path)
	if err == nil {
		return true
	}
	if !os.IsNotExist(err) {
		t.Fatalf("Stat %s: %v", path, err)
	}
	return false
}

func openStore(t *testing.T, dir string, config Config) *Store {
	t.Helper()
	s, err := Open(context.Background(), dir, config)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func openTestStore(t *testing.T) *Store {
	t.Helper()
	return openStore(t, t.TempDir(), Config{})
}

func ids(entries []Entry) []ID {
	out := make([]ID, len(entries))
	for i, e := range entries {
		out[i] = e.ID
	}
	return out
}
