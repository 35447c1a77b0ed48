// SPDX-License-Identifier: MPL-2.0

package fetch

import (
	"fmt"
	"net/url"
	"path/filepath"

	"github.com/magiconair/properties"
)

// DescriptorFileName is the per-library-directory dependency descriptor.
const DescriptorFileName = "module-uri.properties"

// Descriptor is one declared external artifact.
type Descriptor struct {
	// Name is the logical module name (the property key).
	Name string
	// URI is absolute; relative declarations are resolved against the
	// project root as file: URIs.
	URI *url.URL
}

// ReadDescriptors parses a descriptor file. Entries keep file order.
// Property expansion is disabled: values are taken literally.
func ReadDescriptors(path, home string) ([]Descriptor, error) {
	loader := &properties.Loader{Encoding: properties.UTF8, DisableExpansion: true}
	props, err := loader.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read descriptor %s: %w", path, err)
	}

	descriptors := make([]Descriptor, 0, props.Len())
	for _, key := range props.Keys() {
		value, _ := props.Get(key)
		uri, err := ResolveURI(value, home)
		if err != nil {
			return nil, fmt.Errorf("descriptor %s: entry %q: %w", path, key, err)
		}
		descriptors = append(descriptors, Descriptor{Name: key, URI: uri})
	}
	return descriptors, nil
}

// ResolveURI parses value as an absolute URI, or resolves it as a path
// relative to home.
func ResolveURI(value, home string) (*url.URL, error) {
	uri, err := url.Parse(value)
	if err == nil && uri.IsAbs() && len(uri.Scheme) > 1 {
		return uri, nil
	}
	p := value
	if !filepath.IsAbs(p) {
		p = filepath.Join(home, filepath.FromSlash(value))
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return nil, fmt.Errorf("resolve %q: %w", value, err)
	}
	return &url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}, nil
}
