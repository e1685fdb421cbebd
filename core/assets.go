package core

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrAssetNotFound is returned by loaders that cannot resolve a texture.
var ErrAssetNotFound = errors.New("asset not found")

// AssetLoader resolves a texture path to an opaque handle. Failures are not
// fatal: the builder logs them and leaves the handle empty.
type AssetLoader interface {
	LoadTexture(path string) (string, error)
}

// PassthroughAssets uses the path itself as the handle.
type PassthroughAssets struct{}

func (PassthroughAssets) LoadTexture(path string) (string, error) { return path, nil }

// DirAssets resolves textures relative to Dir and checks that they exist.
type DirAssets struct {
	Dir string
}

func (d DirAssets) LoadTexture(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	full := path
	if !filepath.IsAbs(full) {
		full = filepath.Join(d.Dir, path)
	}
	if _, err := os.Stat(full); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("texture %q: %w", path, ErrAssetNotFound)
		}
		return "", fmt.Errorf("texture %q: %w", path, err)
	}
	return full, nil
}
