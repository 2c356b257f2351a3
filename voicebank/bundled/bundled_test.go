package bundled

import (
	"io"
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/makeitchaccha/voicebank/voicebank/voice"
)

func TestBundledVoicesResolve(t *testing.T) {
	matches, err := fs.Glob(Voices(), Pattern)
	require.NoError(t, err)
	require.NotEmpty(t, matches)

	for _, name := range matches {
		t.Run(name, func(t *testing.T) {
			f, err := Voices().Open(name)
			require.NoError(t, err)
			defer f.Close()

			cfg, err := voice.New(f, voice.WithResources(Resources()), voice.WithSource(name))
			require.NoError(t, err)

			for _, key := range cfg.Keys() {
				value, _ := cfg.PropertyValue(key)
				if !strings.HasPrefix(value, voice.PackagedPrefix) {
					continue
				}
				rc, ok, err := cfg.ResourceStream(key, "")
				require.NoError(t, err, "property %s", key)
				require.True(t, ok)
				data, err := io.ReadAll(rc)
				rc.Close()
				require.NoError(t, err)
				assert.NotEmpty(t, data, "property %s", key)
			}
		})
	}
}

func TestCmuSlt(t *testing.T) {
	f, err := Voices().Open("cmu-slt/voice.config")
	require.NoError(t, err)
	defer f.Close()

	cfg, err := voice.New(f, voice.WithResources(Resources()))
	require.NoError(t, err)

	assert.Equal(t, "cmu-slt", cfg.Name())
	assert.Equal(t, "en-US", cfg.LocaleTag().String())
	assert.Equal(t, 16000, cfg.Int("samplingRate", 0))
	assert.True(t, cfg.Bool("hmm.useGV", false))
	assert.InDelta(t, 0.42, cfg.Float("hmm.alpha", 0), 1e-9)

	path, ok := cfg.PropertyValueAt("hmm.pdfDur", "/opt/marytts")
	require.True(t, ok)
	assert.Equal(t, "/opt/marytts/lib/voices/cmu-slt/dur.pdf", path)
}
