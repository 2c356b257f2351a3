// Package voice provides typed access to the configuration of a single
// voice: a named, locale-bound bundle of synthesis resources.
//
// A Config wraps a flat property Record. Construction checks that the record
// names the voice and carries a parsable locale; every other accessor reads
// the record on demand and never modifies it. A Config is safe for concurrent
// use as long as nobody mutates the Record it was built from.
package voice

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"
	"strconv"
	"strings"

	"golang.org/x/text/language"

	"github.com/makeitchaccha/voicebank/voicebank/locale"
	"github.com/makeitchaccha/voicebank/voicebank/properties"
	"github.com/makeitchaccha/voicebank/voicebank/resource"
)

const (
	// BasePlaceholder is replaced with the caller's base installation path.
	BasePlaceholder = "MARY_BASE"

	// PackagedPrefix marks a value as a path inside the packaged resources.
	PackagedPrefix = "jar:"

	keyName   = "name"
	keyLocale = "locale"
)

// Kind tells configuration records of different components apart.
type Kind string

const KindVoice Kind = "voice"

func (k Kind) String() string {
	return string(k)
}

type options struct {
	resources resource.Accessor
	source    string
}

type Option func(*options)

// WithResources sets the accessor used to resolve packaged resource
// references. Without it every such reference is reported as not found.
func WithResources(accessor resource.Accessor) Option {
	return func(o *options) {
		o.resources = accessor
	}
}

// WithSource records where the definition was loaded from. It only shows up
// in error messages and in Source.
func WithSource(source string) Option {
	return func(o *options) {
		o.source = source
	}
}

type Config struct {
	record    properties.Record
	resources resource.Accessor
	source    string
	tag       language.Tag
}

// New parses a voice definition in properties syntax and validates it.
func New(r io.Reader, opts ...Option) (*Config, error) {
	o := buildOptions(opts)
	record, err := properties.Load(r)
	if err != nil {
		return nil, &ConfigurationError{Source: o.source, Err: err}
	}
	return fromRecord(record, o)
}

// FromRecord validates an already parsed voice definition. The record is
// retained, not copied.
func FromRecord(record properties.Record, opts ...Option) (*Config, error) {
	return fromRecord(record, buildOptions(opts))
}

func buildOptions(opts []Option) options {
	o := options{resources: resource.None}
	for _, opt := range opts {
		opt(&o)
	}
	if o.resources == nil {
		o.resources = resource.None
	}
	return o
}

func fromRecord(record properties.Record, o options) (*Config, error) {
	c := &Config{
		record:    record,
		resources: o.resources,
		source:    o.source,
	}

	if c.Name() == "" {
		return nil, &ConfigurationError{Source: o.source, Field: keyName, Err: errors.New("voice does not have a name")}
	}

	tag, ok, err := c.Locale()
	if !ok {
		return nil, &ConfigurationError{Voice: c.Name(), Source: o.source, Field: keyLocale, Err: errors.New("voice does not have a locale")}
	}
	if err != nil {
		return nil, &ConfigurationError{Voice: c.Name(), Source: o.source, Field: keyLocale, Err: err}
	}
	c.tag = tag

	return c, nil
}

func (c *Config) Kind() Kind {
	return KindVoice
}

// Name is never empty for a constructed Config.
func (c *Config) Name() string {
	name, _ := c.record.Get(keyName)
	return name
}

// Locale parses the "locale" property. ok is false when the property is
// absent; a present but malformed value yields an error wrapping
// locale.ErrInvalid.
func (c *Config) Locale() (tag language.Tag, ok bool, err error) {
	s, ok := c.record.Get(keyLocale)
	if !ok {
		return language.Und, false, nil
	}
	tag, err = locale.Parse(s)
	return tag, true, err
}

// LocaleTag returns the locale validated at construction.
func (c *Config) LocaleTag() language.Tag {
	return c.tag
}

// Source reports where the definition was loaded from, if known.
func (c *Config) Source() string {
	return c.source
}

// Record returns a copy of the underlying properties.
func (c *Config) Record() properties.Record {
	return c.record.Clone()
}

func (c *Config) Keys() []string {
	return c.record.Keys()
}

// PropertyValue returns the raw value of name.
func (c *Config) PropertyValue(name string) (string, bool) {
	return c.record.Get(name)
}

// PropertyValueAt returns the value of name with every occurrence of
// BasePlaceholder replaced by baseLocation. An empty baseLocation leaves the
// value untouched.
func (c *Config) PropertyValueAt(name, baseLocation string) (string, bool) {
	value, ok := c.record.Get(name)
	if !ok || baseLocation == "" {
		return value, ok
	}
	return strings.ReplaceAll(value, BasePlaceholder, baseLocation), true
}

// ResourceStream opens the resource referenced by property. Values starting
// with PackagedPrefix are looked up in the packaged resources, anything else
// is opened as a file after placeholder substitution.
//
// ok is false, with a nil error, when the property is not set. A missing
// packaged resource yields a *ResourceNotFoundError; a missing file yields
// the *fs.PathError from os.Open. The caller owns the returned stream.
func (c *Config) ResourceStream(property, baseLocation string) (rc io.ReadCloser, ok bool, err error) {
	value, ok := c.PropertyValueAt(property, baseLocation)
	if !ok {
		return nil, false, nil
	}

	if location, packaged := strings.CutPrefix(value, PackagedPrefix); packaged {
		stream, err := c.resources.Open(location)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, true, &ResourceNotFoundError{Property: property, Path: location, Err: err}
			}
			return nil, true, fmt.Errorf("failed to open packaged resource %q for property %q: %w", location, property, err)
		}
		return stream, true, nil
	}

	f, err := os.Open(value)
	if err != nil {
		return nil, true, err
	}
	return f, true, nil
}

// Int returns the integer value of name, or def when the property is absent
// or not a valid 32-bit integer literal. Decimal, hexadecimal ("0x", "0X",
// "#") and octal (leading "0") literals with an optional sign are accepted.
func (c *Config) Int(name string, def int) int {
	value, ok := c.record.Get(name)
	if !ok {
		return def
	}
	n, err := decodeInt(value)
	if err != nil {
		return def
	}
	return n
}

// Float returns the floating-point value of name, or def when the property
// is absent or unparsable.
func (c *Config) Float(name string, def float64) float64 {
	value, ok := c.record.Get(name)
	if !ok {
		return def
	}
	f, err := parseFloat(value)
	if err != nil {
		return def
	}
	return f
}

// Bool reports whether the value of name equals "true", ignoring case.
// Any other present value is false; def is returned only when the property
// is absent.
func (c *Config) Bool(name string, def bool) bool {
	value, ok := c.record.Get(name)
	if !ok {
		return def
	}
	return strings.EqualFold(value, "true")
}

// Require returns the raw value of name or a *MissingPropertyError.
func (c *Config) Require(name string) (string, error) {
	value, ok := c.record.Get(name)
	if !ok {
		return "", &MissingPropertyError{Voice: c.Name(), Property: name}
	}
	return value, nil
}

func decodeInt(s string) (int, error) {
	negative := false
	switch {
	case strings.HasPrefix(s, "-"):
		negative = true
		s = s[1:]
	case strings.HasPrefix(s, "+"):
		s = s[1:]
	}

	base := 10
	switch {
	case strings.HasPrefix(s, "0x"), strings.HasPrefix(s, "0X"):
		base, s = 16, s[2:]
	case strings.HasPrefix(s, "#"):
		base, s = 16, s[1:]
	case len(s) > 1 && s[0] == '0':
		base, s = 8, s[1:]
	}

	if s == "" || s[0] == '-' || s[0] == '+' {
		return 0, strconv.ErrSyntax
	}

	u, err := strconv.ParseUint(s, base, 32)
	if err != nil {
		return 0, err
	}
	if negative {
		if u > -math.MinInt32 {
			return 0, strconv.ErrRange
		}
		return -int(u), nil
	}
	if u > math.MaxInt32 {
		return 0, strconv.ErrRange
	}
	return int(u), nil
}

// parseFloat follows Java's Float.parseFloat: surrounding whitespace is
// ignored, "NaN" and "Infinity" are the only non-finite spellings, a float
// or double suffix may follow the number and digit separators are rejected.
// Values beyond the float64 range become infinities.
func parseFloat(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if strings.ContainsRune(s, '_') {
		return 0, strconv.ErrSyntax
	}

	sign, body := 1, s
	switch {
	case strings.HasPrefix(body, "-"):
		sign, body = -1, body[1:]
	case strings.HasPrefix(body, "+"):
		body = body[1:]
	}

	switch body {
	case "NaN":
		return math.NaN(), nil
	case "Infinity":
		return math.Inf(sign), nil
	}

	lower := strings.ToLower(body)
	if strings.HasPrefix(lower, "inf") || strings.HasPrefix(lower, "nan") || strings.HasPrefix(body, "-") || strings.HasPrefix(body, "+") {
		return 0, strconv.ErrSyntax
	}
	// float and double type suffixes, as in "0.5f"
	if n := len(body); n > 1 && strings.ContainsRune("fFdD", rune(body[n-1])) {
		body = body[:n-1]
	}

	f, err := strconv.ParseFloat(body, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, err
	}
	return float64(sign) * f, nil
}
