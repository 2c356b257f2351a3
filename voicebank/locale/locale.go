// Package locale converts the locale strings found in voice definitions
// ("en_US", "de", "en-GB") into BCP 47 language tags.
package locale

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

var ErrInvalid = errors.New("invalid locale")

// Parse accepts both underscore and dash separated locale strings.
// Well-formed strings naming unknown subtags are rejected as well.
func Parse(s string) (language.Tag, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return language.Und, fmt.Errorf("%w: empty string", ErrInvalid)
	}

	tag, err := language.Parse(strings.ReplaceAll(trimmed, "_", "-"))
	if err != nil {
		return language.Und, fmt.Errorf("%w %q: %w", ErrInvalid, s, err)
	}
	return tag, nil
}

// String renders tag in the underscore form used by voice definitions.
func String(tag language.Tag) string {
	return strings.ReplaceAll(tag.String(), "-", "_")
}
