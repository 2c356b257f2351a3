package voice

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrConfiguration    = errors.New("invalid voice configuration")
	ErrResourceNotFound = errors.New("packaged resource not found")
	ErrMissingProperty  = errors.New("missing property")
)

// ConfigurationError reports a voice definition that cannot be used.
// Voice is empty when the definition carries no name.
type ConfigurationError struct {
	Voice  string
	Source string
	Field  string
	Err    error
}

func (e *ConfigurationError) Error() string {
	var b strings.Builder
	b.WriteString("voice")
	if e.Voice != "" {
		fmt.Fprintf(&b, " %q", e.Voice)
	}
	if e.Source != "" {
		fmt.Fprintf(&b, " (%s)", e.Source)
	}
	if e.Field != "" {
		fmt.Fprintf(&b, ": %s", e.Field)
	}
	fmt.Fprintf(&b, ": %v", e.Err)
	return b.String()
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

func (e *ConfigurationError) Is(target error) bool { return target == ErrConfiguration }

// ResourceNotFoundError is returned when a packaged resource reference does
// not resolve to a bundled file.
type ResourceNotFoundError struct {
	Property string
	Path     string
	Err      error
}

func (e *ResourceNotFoundError) Error() string {
	return fmt.Sprintf("for property %q, no packaged resource available at %q", e.Property, e.Path)
}

func (e *ResourceNotFoundError) Unwrap() error { return e.Err }

func (e *ResourceNotFoundError) Is(target error) bool { return target == ErrResourceNotFound }

type MissingPropertyError struct {
	Voice    string
	Property string
}

func (e *MissingPropertyError) Error() string {
	return fmt.Sprintf("voice %q: missing value for property %q", e.Voice, e.Property)
}

func (e *MissingPropertyError) Is(target error) bool { return target == ErrMissingProperty }
