package resources

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"sync"
)

// Asset is a cached audio file that decoders can read and seek.
type Asset struct {
	*bytes.Reader
	name string
}

// Name returns the asset path inside its library.
func (asset *Asset) Name() string {
	return asset.name
}

// Close satisfies io.Closer; cached bytes stay in the library.
func (asset *Asset) Close() error {
	return nil
}

// Library resolves audio assets by name and caches their contents.
type Library struct {
	fsys  fs.FS
	cache sync.Map
}

// NewLibrary creates a library over fsys.
func NewLibrary(fsys fs.FS) *Library {
	return &Library{fsys: fsys}
}

// Dir creates a library rooted at a directory on disk.
func Dir(path string) *Library {
	return NewLibrary(os.DirFS(path))
}

// Open returns a fresh reader over the named asset.
func (library *Library) Open(name string) (*Asset, error) {
	data, err := library.load(name)
	if err != nil {
		return nil, err
	}
	return &Asset{Reader: bytes.NewReader(data), name: name}, nil
}

// MustOpen returns an asset or panics on error.
func (library *Library) MustOpen(name string) *Asset {
	asset, err := library.Open(name)
	if err != nil {
		panic(err)
	}
	return asset
}

func (library *Library) load(name string) ([]byte, error) {
	if cached, ok := library.cache.Load(name); ok {
		return cached.([]byte), nil
	}

	data, err := fs.ReadFile(library.fsys, name)
	if err != nil {
		return nil, fmt.Errorf("load asset %s: %w", name, err)
	}

	library.cache.Store(name, data)
	return data, nil
}
