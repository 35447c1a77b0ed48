// SPDX-License-Identifier: MPL-2.0

package fetch

import (
	"os"
	"path/filepath"
	"testing"
)

func TestReadDescriptors(t *testing.T) {
	t.Parallel()

	home := t.TempDir()
	path := filepath.Join(home, "lib", "main", DescriptorFileName)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	content := "# external modules\n" +
		"org.junit.jupiter.api=https://repo1.maven.org/maven2/org/junit/junit-jupiter-api-5.3.1.jar\n" +
		"local.lib=vendor/local-1.0.jar\n" +
		"templated=https://example.org/${version}/x.jar\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := ReadDescriptors(path, home)
	if err != nil {
		t.Fatalf("ReadDescriptors() error = %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("ReadDescriptors() returned %d entries, want 3", len(got))
	}
	if got[0].Name != "org.junit.jupiter.api" || got[0].URI.Scheme != "https" {
		t.Errorf("entry 0 = %+v", got[0])
	}
	if got[1].URI.Scheme != "file" || filepath.FromSlash(got[1].URI.Path) != filepath.Join(home, "vendor", "local-1.0.jar") {
		t.Errorf("entry 1 = %s, want file URI below home", got[1].URI)
	}
	if FileName(got[2].URI) != "x.jar" {
		t.Errorf("entry 2 file name = %q, want x.jar", FileName(got[2].URI))
	}
}

func TestReadDescriptorsMissingFile(t *testing.T) {
	t.Parallel()

	if _, err := ReadDescriptors(filepath.Join(t.TempDir(), DescriptorFileName), t.TempDir()); err == nil {
		t.Fatal("ReadDescriptors() expected error for missing file")
	}
}
