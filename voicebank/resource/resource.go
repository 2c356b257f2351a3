// Package resource opens data files bundled with the application rather
// than installed as standalone files on disk.
package resource

import (
	"errors"
	"io"
	"io/fs"
	"path"
	"strings"
)

// Accessor opens packaged resources by namespace-relative path. A resource
// that does not exist is reported with an error matching fs.ErrNotExist.
type Accessor interface {
	Open(name string) (io.ReadCloser, error)
}

// None is an Accessor without any resources.
var None Accessor = noneAccessor{}

type noneAccessor struct{}

func (noneAccessor) Open(name string) (io.ReadCloser, error) {
	return nil, notExist(name)
}

type fsAccessor struct {
	fsys fs.FS
}

// FromFS serves resources from fsys. Leading slashes are stripped so that
// "/voices/alice/model.bin" and "voices/alice/model.bin" name the same file.
func FromFS(fsys fs.FS) Accessor {
	return &fsAccessor{fsys: fsys}
}

func (a *fsAccessor) Open(name string) (io.ReadCloser, error) {
	clean := path.Clean(strings.TrimLeft(name, "/"))
	if clean == "." || !fs.ValidPath(clean) {
		return nil, notExist(name)
	}

	f, err := a.fsys.Open(clean)
	if err != nil {
		return nil, err
	}
	if info, err := f.Stat(); err == nil && info.IsDir() {
		f.Close()
		return nil, notExist(name)
	}
	return f, nil
}

type chain []Accessor

// Chain looks a resource up in each accessor in turn and returns the first
// hit. Errors other than fs.ErrNotExist stop the lookup.
func Chain(accessors ...Accessor) Accessor {
	return chain(accessors)
}

func (c chain) Open(name string) (io.ReadCloser, error) {
	for _, a := range c {
		rc, err := a.Open(name)
		if err == nil {
			return rc, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}
	return nil, notExist(name)
}

func notExist(name string) error {
	return &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
}
