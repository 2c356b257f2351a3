package voicebank

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/samber/lo"

	"github.com/makeitchaccha/voicebank/voicebank/locale"
	"github.com/makeitchaccha/voicebank/voicebank/voice"
)

// Listing is the report printed after voices have been loaded.
type Listing struct {
	Locales []LocaleGroup `toml:"locales" json:"locales"`
}

type LocaleGroup struct {
	Locale string         `toml:"locale" json:"locale"`
	Voices []VoiceSummary `toml:"voices" json:"voices"`
}

type VoiceSummary struct {
	Name         string `toml:"name" json:"name"`
	Source       string `toml:"source,omitempty" json:"source,omitempty"`
	Gender       string `toml:"gender,omitempty" json:"gender,omitempty"`
	SamplingRate int    `toml:"sampling_rate,omitempty" json:"sampling_rate,omitempty"`
	// Unresolved lists resource properties whose files or packaged
	// resources could not be opened.
	Unresolved []string `toml:"unresolved,omitempty" json:"unresolved,omitempty"`
}

// NewListing groups voices by locale and checks that every resource they
// reference can be opened relative to baseLocation.
func NewListing(voices []*voice.Config, baseLocation string) Listing {
	groups := lo.GroupBy(voices, func(v *voice.Config) string {
		return locale.String(v.LocaleTag())
	})

	keys := lo.Keys(groups)
	slices.Sort(keys)

	return Listing{
		Locales: lo.Map(keys, func(key string, _ int) LocaleGroup {
			return LocaleGroup{
				Locale: key,
				Voices: lo.Map(groups[key], func(v *voice.Config, _ int) VoiceSummary {
					return summarize(v, baseLocation)
				}),
			}
		}),
	}
}

func summarize(v *voice.Config, baseLocation string) VoiceSummary {
	gender, _ := v.PropertyValue("gender")
	return VoiceSummary{
		Name:         v.Name(),
		Source:       v.Source(),
		Gender:       gender,
		SamplingRate: v.Int("samplingRate", 0),
		Unresolved:   unresolvedResources(v, baseLocation),
	}
}

func unresolvedResources(v *voice.Config, baseLocation string) []string {
	return lo.Filter(resourceProperties(v), func(key string, _ int) bool {
		rc, _, err := v.ResourceStream(key, baseLocation)
		if err != nil {
			return true
		}
		rc.Close()
		return false
	})
}

// resourceProperties returns the keys whose values look like resource
// references: packaged paths or paths below the base location.
func resourceProperties(v *voice.Config) []string {
	return lo.Filter(v.Keys(), func(key string, _ int) bool {
		value, _ := v.PropertyValue(key)
		return strings.HasPrefix(value, voice.PackagedPrefix) || strings.Contains(value, voice.BasePlaceholder)
	})
}

// Encode writes the listing as "toml" or "json".
func (l Listing) Encode(w io.Writer, format string) error {
	switch format {
	case "toml":
		return toml.NewEncoder(w).Encode(l)
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(l)
	default:
		return fmt.Errorf("unknown listing format %q", format)
	}
}
