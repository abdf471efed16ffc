// The inventory item schema.
//
// Field names are the TOML keys used on disk. Required keys must be present
// for a file to decode; optional ones are omitted from the file when empty.
// Numeric fields keep their fixed widths: a value that does not fit (or a
// negative one) makes the record malformed instead of being clamped.
package shelf

import (
	"fmt"
	"slices"
	"strings"
)

// Book is one antiquarian inventory item.
type Book struct {
	Title       string `toml:"title" json:"title"`
	Description string `toml:"description" json:"description"`
	Language    string `toml:"language" json:"language"`
	Pages       string `toml:"pages" json:"pages"` // free-form, e.g. "XII, 340 S."
	Format      string `toml:"format" json:"format"`
	Category    uint16 `toml:"category" json:"category"`
	Condition   uint8  `toml:"condition" json:"condition"`
	Weight      uint16 `toml:"weight" json:"weight"` // grams
	Price       uint16 `toml:"price" json:"price"`   // whole currency units

	Author         string   `toml:"author,omitempty" json:"author,omitempty"`
	Year           uint16   `toml:"year,omitzero" json:"year,omitempty"`
	Location       string   `toml:"location,omitempty" json:"location,omitempty"`
	Edition        string   `toml:"edition,omitempty" json:"edition,omitempty"`
	Publisher      string   `toml:"publisher,omitempty" json:"publisher,omitempty"`
	ISBN           string   `toml:"isbn,omitempty" json:"isbn,omitempty"`
	Cover          string   `toml:"cover,omitempty" json:"cover,omitempty"`
	CoverURL       string   `toml:"cover_url,omitempty" json:"cover_url,omitempty"`
	Keywords       []string `toml:"keywords,omitempty" json:"keywords,omitempty"`
	PersonalNotice string   `toml:"personal_notice,omitempty" json:"personal_notice,omitempty"`

	New          bool `toml:"new" json:"new"`
	FirstEdition bool `toml:"first_edition" json:"first_edition"`
	Signed       bool `toml:"signed" json:"signed"`
	Unused       bool `toml:"unused" json:"unused"`
	Unlimited    bool `toml:"unlimited" json:"unlimited"`
}

// requiredKeys must all be defined in a record file.
var requiredKeys = []string{
	"title",
	"description",
	"language",
	"pages",
	"format",
	"category",
	"condition",
	"weight",
	"price",
}

// Validate checks a record before it is written. Decoding is more lenient:
// a file with an empty title still loads, but Save will not produce one.
func (b *Book) Validate() error {
	if b == nil {
		return fmt.Errorf("%w: nil book", ErrInvalidRecord)
	}
	if strings.TrimSpace(b.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidRecord)
	}
	if b.ISBN != "" && !validISBN(b.ISBN) {
		return fmt.Errorf("%w: isbn %q", ErrInvalidRecord, b.ISBN)
	}
	for i, k := range b.Keywords {
		if strings.TrimSpace(k) == "" {
			return fmt.Errorf("%w: keyword %d is blank", ErrInvalidRecord, i)
		}
	}
	return nil
}

// Clone returns a deep copy so callers never share the Store's slices.
func (b *Book) Clone() *Book {
	if b == nil {
		return nil
	}
	c := *b
	c.Keywords = slices.Clone(b.Keywords)
	return &c
}

// validISBN accepts ISBN-10 and ISBN-13 with optional hyphens or spaces.
// Check digits are verified; a trailing X is allowed for ISBN-10.
func validISBN(s string) bool {
	var digits []byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '-' || c == ' ':
		case c >= '0' && c <= '9':
			digits = append(digits, c-'0')
		case (c == 'X' || c == 'x') && i == len(s)-1:
			digits = append(digits, 10)
		default:
			return false
		}
	}

	switch len(digits) {
	case 10:
		sum := 0
		for i, d := range digits {
			if d == 10 && i != 9 {
				return false
			}
			sum += int(d) * (10 - i)
		}
		return sum%11 == 0
	case 13:
		sum := 0
		for i, d := range digits {
			if d == 10 {
				return false
			}
			if i%2 == 0 {
				sum += int(d)
			} else {
				sum += 3 * int(d)
			}
		}
		return sum%10 == 0
	default:
		return false
	}
}
