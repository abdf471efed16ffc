// JSON export of the loaded records.
package shelf

import (
	"io"

	json "github.com/goccy/go-json"
)

// WriteJSON writes every held record, in id order, as an indented JSON
// array. Malformed records are included with their raw content.
func (s *Store) WriteJSON(w io.Writer) error {
	s.mu.RLock()
	closed := s.closed
	s.mu.RUnlock()
	if closed {
		return ErrClosed
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s.Records())
}
