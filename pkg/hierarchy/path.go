// Package hierarchy encodes the position of a category inside its tree as a
// materialized path, so the tree can be ordered and queried without recursive
// lookups.
//
// A top level category starts a tree with a caller supplied, integer
// convertible identifier (say "1"). That identifier becomes the base of the
// whole tree and every descendant inherits it. A child identifier is the
// concatenation of its parent's base and identifier: the first level below "1"
// gets "11", the level below that "111", and so on.
package hierarchy

import (
	"errors"
	"strings"
)

// MaxIdentifierLength is the longest hierarchy identifier a category can hold.
const MaxIdentifierLength = 20

var (
	ErrIdentifierNotInteger = errors.New("hierarchy identifier must be integer convertible")
	ErrIdentifierWithParent = errors.New("reference to a parent category requires hierarchy identifier to be left blank, hierarchy will be determined automatically")
	ErrPathTooLong          = errors.New("hierarchy identifier would exceed 20 characters, the category tree is too deep")
	ErrCycle                = errors.New("a category cannot be placed under itself or one of its descendants")
)

// Path is the materialized position of a single category.
type Path struct {
	Base       string
	Identifier string
}

// IsRoot reports whether the path belongs to a top level category.
func (p Path) IsRoot() bool {
	return p.Identifier != "" && p.Base == p.Identifier
}

// ValidateRoot checks an identifier supplied for a top level category.
// Any length of digits is accepted up to MaxIdentifierLength.
func ValidateRoot(identifier string) error {
	if len(identifier) > MaxIdentifierLength {
		return ErrPathTooLong
	}
	if !isInteger(strings.TrimSpace(identifier)) {
		return ErrIdentifierNotInteger
	}
	return nil
}

// isInteger reports whether s is an optional sign followed by ASCII digits.
func isInteger(s string) bool {
	if s != "" && (s[0] == '+' || s[0] == '-') {
		s = s[1:]
	}
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// ValidateInput checks the identifier/parent combination a caller submitted.
// Children must leave the identifier blank, roots must supply a valid one.
func ValidateInput(hasParent bool, identifier string) error {
	if hasParent {
		if identifier != "" {
			return ErrIdentifierWithParent
		}
		return nil
	}
	return ValidateRoot(identifier)
}

// Derive computes the path of a category from its parent's path. A nil parent
// makes the category a root whose base equals the supplied identifier.
func Derive(parent *Path, identifier string) (Path, error) {
	if err := ValidateInput(parent != nil, identifier); err != nil {
		return Path{}, err
	}
	if parent == nil {
		return Path{Base: identifier, Identifier: identifier}, nil
	}
	return Child(*parent)
}

// Child returns the path of a category placed directly below parent.
// The identifier is a string concatenation, never a numeric sum.
func Child(parent Path) (Path, error) {
	p := Path{
		Base:       parent.Base,
		Identifier: parent.Base + parent.Identifier,
	}
	if len(p.Identifier) > MaxIdentifierLength {
		return Path{}, ErrPathTooLong
	}
	return p, nil
}

// Less orders paths by (base, identifier) as plain strings.
func Less(a, b Path) bool {
	if a.Base != b.Base {
		return a.Base < b.Base
	}
	return a.Identifier < b.Identifier
}
