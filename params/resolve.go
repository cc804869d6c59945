package params

import (
	"errors"
	"strings"
)

// ErrUnrecognized is returned when a name or token matches no descriptor.
var ErrUnrecognized = errors.New("params: unrecognized parameter")

// ErrIndexRange is returned for descriptor indices outside the table. An
// internally generated out-of-range index is an integrity fault, not an
// expected runtime condition.
var ErrIndexRange = errors.New("params: index out of range")

// IndexOfToken resolves an exact mnemonic token to its descriptor index.
// This is the fast path: the scan short-circuits on the first two characters
// and a token must match to its full length, never as a prefix of a longer
// token. Input must already be lowercased.
func IndexOfToken(token string) (int, error) {
	if token == "" {
		return -1, ErrUnrecognized
	}
	for i := range table {
		t := table[i].Token
		if t[0] != token[0] {
			continue
		}
		if len(t) > 1 && (len(token) < 2 || t[1] != token[1]) {
			continue
		}
		if t == token {
			return i, nil
		}
	}
	return -1, ErrUnrecognized
}

// IndexOf resolves either an exact token or a friendly-name prefix to a
// descriptor index. The table is scanned in index order and the first match
// wins; the schema guarantees no two entries share a resolvable prefix.
// Input must already be lowercased.
func IndexOf(input string) (int, error) {
	if i, err := IndexOfToken(input); err == nil {
		return i, nil
	}
	if input == "" {
		return -1, ErrUnrecognized
	}
	for i := range table {
		if strings.HasPrefix(table[i].Name, input) {
			return i, nil
		}
	}
	return -1, ErrUnrecognized
}

// TokenOf returns the token at index i, or "" when out of range.
func TokenOf(i int) string {
	if i < 0 || i >= len(table) {
		return ""
	}
	return table[i].Token
}

// NameOf returns the friendly name at index i, or "" when out of range.
func NameOf(i int) string {
	if i < 0 || i >= len(table) {
		return ""
	}
	return table[i].Name
}

// GroupOf returns the semantic group marker for index i: the axis letter or
// motor digit from the token's first character, or 'g' for general
// parameters.
func GroupOf(i int) byte {
	if i < 0 || i >= len(table) {
		return 0
	}
	c := table[i].Token[0]
	if strings.IndexByte("xyzabc1234", c) < 0 {
		return 'g'
	}
	return c
}

// axisOf returns the axis index a descriptor applies to, derived from the
// token's leading axis letter, or -1.
func axisOf(i int) int {
	if i < 0 || i >= len(table) {
		return -1
	}
	return strings.IndexByte(axisLetters, table[i].Token[0])
}

// motorOf returns the motor channel a descriptor applies to, derived from
// the token's leading digit, or -1.
func motorOf(i int) int {
	if i < 0 || i >= len(table) {
		return -1
	}
	return strings.IndexByte("1234", table[i].Token[0])
}
