// Two-pass record decoding.
//
// The first pass decodes into a generic table only to tell an intentionally
// blank draft apart from real content. Only non-empty tables get the strict
// second pass into Book, whose failure marks the record malformed. Decoding
// never touches the file; the caller hands in bytes read under the lock.
package shelf

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

// Outcome classifies the content of a record file.
type Outcome int

const (
	OutcomeValid Outcome = iota + 1
	OutcomeMalformed
	OutcomeEmpty
)

func (o Outcome) String() string {
	switch o {
	case OutcomeValid:
		return "valid"
	case OutcomeMalformed:
		return "malformed"
	case OutcomeEmpty:
		return "empty"
	default:
		return "unknown"
	}
}

// MarshalText lets Outcome render as its name in exports.
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// draftSentinel is the literal empty object some writers use for a draft.
// It is not a TOML document, so it is recognised before parsing.
var draftSentinel = []byte("{}")

// Decode classifies raw record content. A Valid outcome carries the Book.
// A Malformed outcome carries an error wrapping ErrMalformed with the
// reason. Empty returns neither.
func Decode(raw []byte) (Outcome, *Book, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, draftSentinel) {
		return OutcomeEmpty, nil, nil
	}

	var table map[string]any
	if _, err := toml.Decode(string(raw), &table); err != nil {
		return OutcomeMalformed, nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	if len(table) == 0 {
		return OutcomeEmpty, nil, nil
	}

	var b Book
	md, err := toml.Decode(string(raw), &b)
	if err != nil {
		return OutcomeMalformed, nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}

	var missing []string
	for _, k := range requiredKeys {
		if !md.IsDefined(k) {
			missing = append(missing, k)
		}
	}
	if len(missing) > 0 {
		return OutcomeMalformed, nil, fmt.Errorf("%w: missing required %s", ErrMalformed, strings.Join(missing, ", "))
	}

	return OutcomeValid, &b, nil
}

// encode serialises a Book as a TOML document.
func encode(b *Book) ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(b); err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	return buf.Bytes(), nil
}
