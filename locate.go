// Candidate discovery.
//
// Only regular files directly inside the data directory whose name is five
// ASCII digits followed by ".toml" are records. Subdirectories (including
// the .history archive) and every other name are ignored.
package shelf

import (
	"fmt"
	"os"
	"regexp"
)

var recordName = regexp.MustCompile(`^\d{5}\.toml$`)

// IsRecordName reports whether name matches the record filename pattern.
func IsRecordName(name string) bool {
	return recordName.MatchString(name)
}

// locate lists the record candidates in dir. The order is whatever the
// directory listing returns; callers must not depend on it.
func locate(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("locate: %w", err)
	}

	var names []string
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		if IsRecordName(e.Name()) {
			names = append(names, e.Name())
		}
	}
	return names, nil
}
