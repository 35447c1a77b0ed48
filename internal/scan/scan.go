// SPDX-License-Identifier: MPL-2.0

// Package scan enumerates directories and files below the conventional
// project roots and classifies what it finds.
package scan

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

const (
	// KindOther is anything that is neither a source unit nor an archive.
	KindOther Kind = iota
	// KindSource is a regular compilation unit (Foo.java).
	KindSource
	// KindArchive is a packaged archive (foo.jar).
	KindArchive
)

const (
	sourceExt  = ".java"
	archiveExt = ".jar"

	// AllSources matches every compilation unit below a root.
	AllSources = "**/*" + sourceExt
	// AllArchives matches every archive below a root.
	AllArchives = "**/*" + archiveExt
)

// Kind classifies a regular file.
type Kind int

// String returns a human-readable kind name.
func (k Kind) String() string {
	switch k {
	case KindSource:
		return "source"
	case KindArchive:
		return "archive"
	default:
		return "other"
	}
}

// Classify reports the kind of the file at path. Directories and missing
// files are KindOther. A source unit has exactly one dot in its name, which
// excludes names like "module-info.test.java".
func Classify(path string) Kind {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return KindOther
	}
	name := filepath.Base(path)
	switch {
	case strings.HasSuffix(name, sourceExt) && strings.Count(name, ".") == 1:
		return KindSource
	case strings.HasSuffix(name, archiveExt):
		return KindArchive
	default:
		return KindOther
	}
}

// IsDir reports whether path names an existing directory.
func IsDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// Exists reports whether anything exists at path.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// FindFirstDirectory resolves each candidate against home and returns the
// first one that is an existing directory.
func FindFirstDirectory(home string, candidates ...string) (string, bool) {
	for _, candidate := range candidates {
		path := filepath.Join(home, candidate)
		if IsDir(path) {
			return path, true
		}
	}
	return "", false
}

// ListDirectoryNames returns the sorted names of the immediate child
// directories of root. A missing root yields an empty list.
func ListDirectoryNames(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("list directories of %s: %w", root, err)
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	slices.Sort(names)
	return names, nil
}

// ListFiles returns the regular files below each root whose root-relative,
// slash-separated path matches the doublestar pattern. Results keep root
// order and are sorted within each root. Missing roots are skipped.
func ListFiles(roots []string, pattern string) ([]string, error) {
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid file pattern %q", pattern)
	}
	var files []string
	for _, root := range roots {
		if !IsDir(root) {
			continue
		}
		matches, err := doublestar.Glob(os.DirFS(root), pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("find files in %s: %w", root, err)
		}
		slices.Sort(matches)
		for _, match := range matches {
			files = append(files, filepath.Join(root, filepath.FromSlash(match)))
		}
	}
	return files, nil
}

// ListFilesOfKind is ListFiles filtered by Classify.
func ListFilesOfKind(roots []string, pattern string, kind Kind) ([]string, error) {
	files, err := ListFiles(roots, pattern)
	if err != nil {
		return nil, err
	}
	return slices.DeleteFunc(files, func(path string) bool { return Classify(path) != kind }), nil
}

// ListSourceFiles lists every compilation unit below root.
func ListSourceFiles(root string) ([]string, error) {
	return ListFilesOfKind([]string{root}, AllSources, KindSource)
}

// ListArchives lists every archive below the given roots.
func ListArchives(roots ...string) ([]string, error) {
	return ListFilesOfKind(roots, AllArchives, KindArchive)
}

// ListNamed lists every regular file called name below root.
func ListNamed(root, name string) ([]string, error) {
	return ListFiles([]string{root}, "**/"+name)
}
