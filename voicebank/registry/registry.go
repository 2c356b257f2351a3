// Package registry indexes loaded voices by name and locale.
package registry

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/samber/lo"
	"golang.org/x/text/language"

	"github.com/makeitchaccha/voicebank/voicebank/voice"
)

var ErrDuplicate = errors.New("voice already registered")

// Registry is safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	voices map[string]*voice.Config // name -> voice
	list   []*voice.Config
}

func New() *Registry {
	return &Registry{
		voices: make(map[string]*voice.Config),
	}
}

func (r *Registry) Register(v *voice.Config) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if prev, ok := r.voices[v.Name()]; ok {
		return fmt.Errorf("%w: %q from %s (first loaded from %s)", ErrDuplicate, v.Name(), sourceOf(v), sourceOf(prev))
	}
	r.voices[v.Name()] = v
	r.list = append(r.list, v)
	return nil
}

func (r *Registry) Get(name string) (*voice.Config, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.voices[name]
	return v, ok
}

// List returns the voices in registration order.
func (r *Registry) List() []*voice.Config {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.list)
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.list)
}

// ForLocale returns the voices whose locale is exactly tag.
func (r *Registry) ForLocale(tag language.Tag) []*voice.Config {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return lo.Filter(r.list, func(v *voice.Config, _ int) bool {
		return v.LocaleTag() == tag
	})
}

// Locales returns the distinct voice locales in registration order.
func (r *Registry) Locales() []language.Tag {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return lo.Uniq(lo.Map(r.list, func(v *voice.Config, _ int) language.Tag {
		return v.LocaleTag()
	}))
}

// Select picks the voice that best serves tag, so that a request for en-GB
// can fall back to an en-US voice. It reports false when no registered
// voice speaks a matching language.
func (r *Registry) Select(tag language.Tag) (*voice.Config, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.list) == 0 {
		return nil, false
	}

	supported := lo.Map(r.list, func(v *voice.Config, _ int) language.Tag {
		return v.LocaleTag()
	})
	_, index, confidence := language.NewMatcher(supported).Match(tag)
	if confidence == language.No {
		return nil, false
	}
	return r.list[index], true
}

func sourceOf(v *voice.Config) string {
	if v.Source() == "" {
		return "<unknown>"
	}
	return v.Source()
}
