// Record identifiers.
//
// An id is the numeric value of the first five characters of a record
// filename. The text form is always zero padded to five digits so that a
// directory listing sorts in id order.
package shelf

import (
	"fmt"
	"strconv"
)

// ID identifies one record. Valid ids are in [MinID, MaxID].
type ID uint32

const (
	MinID ID = 1
	MaxID ID = 99999
)

// Ext is the record file extension, including the dot.
const Ext = ".toml"

// Valid reports whether id is inside the allocatable range.
func (id ID) Valid() bool {
	return id >= MinID && id <= MaxID
}

func (id ID) String() string {
	return fmt.Sprintf("%05d", uint32(id))
}

// MarshalText renders an id in its five digit form.
func (id ID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// Filename returns the record file name for id, e.g. "00007.toml".
func (id ID) Filename() string {
	return id.String() + Ext
}

// ParseID parses the five digit text form of an id.
func ParseID(s string) (ID, error) {
	if len(s) != 5 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidID, s)
	}
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidID, s)
	}
	id := ID(n)
	if !id.Valid() {
		return 0, fmt.Errorf("%w: %q", ErrInvalidID, s)
	}
	return id, nil
}

// ParseFilename derives the id from a record filename. The name must match
// the record pattern exactly; "0001.toml" and "123456.toml" are rejected.
func ParseFilename(name string) (ID, error) {
	if !recordName.MatchString(name) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidID, name)
	}
	return ParseID(name[:5])
}
