// Package properties loads flat key/value definitions written in Java
// properties syntax.
//
// The accepted format is the one handled by github.com/magiconair/properties:
// key=value, key:value or "key value" lines, '#' and '!' comments, backslash
// line continuations and unicode escapes. When a key occurs more than once the
// last occurrence wins. ${...} references are kept literally.
package properties

import (
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"

	javaprops "github.com/magiconair/properties"
)

var ErrMalformed = errors.New("malformed properties")

// Record is a flat, case-sensitive mapping of property names to values.
//
// A Record handed to a consumer must not be mutated afterwards; concurrent
// reads are safe only under that condition.
type Record map[string]string

// Get returns the value stored under key and whether the key was present.
func (r Record) Get(key string) (string, bool) {
	v, ok := r[key]
	return v, ok
}

// Keys returns the property names in lexical order.
func (r Record) Keys() []string {
	return slices.Sorted(maps.Keys(r))
}

func (r Record) Clone() Record {
	if r == nil {
		return Record{}
	}
	return maps.Clone(r)
}

// Load parses a properties stream into a Record.
func Load(r io.Reader) (Record, error) {
	buf, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read properties: %w", err)
	}

	loader := &javaprops.Loader{
		Encoding:         javaprops.UTF8,
		DisableExpansion: true,
	}
	p, err := loader.LoadBytes(buf)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	return Record(p.Map()), nil
}
