// SPDX-License-Identifier: MPL-2.0

package builder

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"
)

var (
	// ErrMixedLayout is the sentinel error wrapped by MixedLayoutError.
	ErrMixedLayout = errors.New("mixed multi-release layout")
	// ErrEmptyBaseLayer is the sentinel error wrapped by EmptyBaseLayerError.
	ErrEmptyBaseLayer = errors.New("empty base layer")
)

// releaseLayer matches a multi-release layer directory name. Release numbers
// are canonical: the directory of release N is always named java-N.
var releaseLayer = regexp.MustCompile(`^java-([1-9]\d*)$`)

type (
	// Layers are the release numbers of a multi-release module, ascending.
	Layers []int

	// MixedLayoutError reports a module that has release layer directories
	// next to directories that are not layers.
	MixedLayoutError struct {
		Module string
		Layers []string
		Others []string
	}

	// EmptyBaseLayerError reports a module whose lowest layer has nothing
	// to compile, leaving the archive without default entries.
	EmptyBaseLayerError struct {
		Module string
		Source string
	}
)

func (e *MixedLayoutError) Error() string {
	return fmt.Sprintf("module %s mixes release layers [%s] with other directories [%s]",
		e.Module, strings.Join(e.Layers, ", "), strings.Join(e.Others, ", "))
}

func (e *MixedLayoutError) Unwrap() error { return ErrMixedLayout }

func (e *EmptyBaseLayerError) Error() string {
	return fmt.Sprintf("module %s: base layer %s contains no source files", e.Module, e.Source)
}

func (e *EmptyBaseLayerError) Unwrap() error { return ErrEmptyBaseLayer }

// ParseLayers classifies the immediate subdirectory names of a module.
// It returns the sorted layers when every name is a release layer, nil when
// none is (or there are no names), and *MixedLayoutError otherwise.
func ParseLayers(module string, names []string) (Layers, error) {
	var layers Layers
	var layerNames, others []string
	for _, name := range names {
		m := releaseLayer.FindStringSubmatch(name)
		if m == nil {
			others = append(others, name)
			continue
		}
		release, err := strconv.Atoi(m[1])
		if err != nil {
			others = append(others, name)
			continue
		}
		layers = append(layers, release)
		layerNames = append(layerNames, name)
	}
	switch {
	case len(layers) == 0:
		return nil, nil
	case len(others) > 0:
		return nil, &MixedLayoutError{Module: module, Layers: layerNames, Others: others}
	}
	slices.Sort(layers)
	return slices.Compact(layers), nil
}

// Base returns the lowest declared release.
func (l Layers) Base() int { return l[0] }

// Contains reports whether release is declared.
func (l Layers) Contains(release int) bool { return slices.Contains(l, release) }
