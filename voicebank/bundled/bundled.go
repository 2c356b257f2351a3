// Package bundled carries the voice definitions and data files shipped
// inside the binary.
//
// Definitions live under voices/<name>/ and reference their data with
// packaged resource paths such as "jar:/voices/cmu-slt/dur.tree".
package bundled

import (
	"embed"
	"io/fs"

	"github.com/makeitchaccha/voicebank/voicebank/resource"
)

// Pattern matches the definition files within Voices.
const Pattern = "*/*.config"

//go:embed voices
var files embed.FS

// Resources resolves packaged resource paths against the embedded tree.
func Resources() resource.Accessor {
	return resource.FromFS(files)
}

// Voices returns the directory holding one subdirectory per bundled voice.
func Voices() fs.FS {
	sub, err := fs.Sub(files, "voices")
	if err != nil {
		// the directory is embedded at build time
		panic(err)
	}
	return sub
}
