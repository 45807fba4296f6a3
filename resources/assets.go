package resources

import (
	"embed"
	"fmt"
	"io/fs"
	"sync"

	"fyne.io/fyne/v2"
)

const (
	iconDir   = "icons/"
	localeDir = "locales"
)

//go:embed icons/*.svg
var iconFS embed.FS

//go:embed locales/*.yaml
var localeFS embed.FS

var iconCache sync.Map

// Icon returns a Fyne resource for the given icon file.
func Icon(fileName string) (fyne.Resource, error) {
	return loadResource(iconFS, iconDir+fileName, &iconCache)
}

// MustIcon returns a Fyne resource or panics on error.
func MustIcon(fileName string) fyne.Resource {
	resource, err := Icon(fileName)
	if err != nil {
		panic(err)
	}
	return resource
}

// Locales returns the embedded message files, named active.<lang>.yaml.
func Locales() fs.FS {
	sub, err := fs.Sub(localeFS, localeDir)
	if err != nil {
		panic(err)
	}
	return sub
}

func loadResource(files embed.FS, path string, cache *sync.Map) (fyne.Resource, error) {
	if cached, ok := cache.Load(path); ok {
		return cached.(fyne.Resource), nil
	}

	data, err := files.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load resource %s: %w", path, err)
	}

	resource := fyne.NewStaticResource(path, data)
	cache.Store(path, resource)
	return resource, nil
}
