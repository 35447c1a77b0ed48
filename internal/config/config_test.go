// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/invowk/realmake/internal/issue"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, ConfigFileName)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	if cfg.Project.Version != "1.0.0-SNAPSHOT" {
		t.Errorf("Project.Version = %q, want 1.0.0-SNAPSHOT", cfg.Project.Version)
	}
	if cfg.Test.EngineModule != "org.junit.platform.console" {
		t.Errorf("Test.EngineModule = %q", cfg.Test.EngineModule)
	}
	if cfg.Debug || cfg.DryRun || cfg.Offline {
		t.Error("flags should default to false")
	}
	if cfg.Watch.Debounce != 500*time.Millisecond {
		t.Errorf("Watch.Debounce = %s", cfg.Watch.Debounce)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("DefaultConfig().Validate() = %v", err)
	}
}

func TestLoadWithoutFileUsesDefaults(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "greeter")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}

	cfg, path, err := Load(context.Background(), LoadOptions{ProjectDir: dir})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if path != "" {
		t.Errorf("resolved path = %q, want empty", path)
	}
	if cfg.Project.Name != "greeter" {
		t.Errorf("Project.Name = %q, want directory name", cfg.Project.Name)
	}
	if cfg.Project.Version != DefaultVersion {
		t.Errorf("Project.Version = %q", cfg.Project.Version)
	}
}

func TestLoadProjectFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeConfig(t, dir, `
project: {
	name:    "demo"
	version: "2.1.0"
}
offline: true
java: release: 11
tools: javac_options: "-g -parameters"
watch: {
	debounce: "1s"
	ignore: ["**/*.tmp"]
}
`)

	cfg, path, err := Load(context.Background(), LoadOptions{ProjectDir: dir})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if path != filepath.Join(dir, ConfigFileName) {
		t.Errorf("resolved path = %q", path)
	}
	if cfg.Project.Name != "demo" || cfg.Project.Version != "2.1.0" {
		t.Errorf("Project = %+v", cfg.Project)
	}
	if !cfg.Offline || cfg.Debug {
		t.Errorf("Offline = %v, Debug = %v", cfg.Offline, cfg.Debug)
	}
	if cfg.Java.Release != 11 {
		t.Errorf("Java.Release = %d, want 11", cfg.Java.Release)
	}
	if cfg.Watch.Debounce != time.Second {
		t.Errorf("Watch.Debounce = %s, want 1s", cfg.Watch.Debounce)
	}
	if len(cfg.Watch.Ignore) != 1 || cfg.Watch.Ignore[0] != "**/*.tmp" {
		t.Errorf("Watch.Ignore = %v", cfg.Watch.Ignore)
	}
	if cfg.Test.EngineModule != DefaultEngineModule {
		t.Errorf("unset keys should keep defaults, Test.EngineModule = %q", cfg.Test.EngineModule)
	}
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `java: release: 11`)
	t.Setenv("REALMAKE_JAVA_RELEASE", "17")
	t.Setenv("REALMAKE_DEBUG", "true")

	cfg, _, err := Load(context.Background(), LoadOptions{ProjectDir: dir})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Java.Release != 17 {
		t.Errorf("Java.Release = %d, want env override 17", cfg.Java.Release)
	}
	if !cfg.Debug {
		t.Error("Debug should be enabled by REALMAKE_DEBUG")
	}
}

func TestLoadErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		wantSub string
	}{
		{name: "syntax error", content: `project: {`, wantSub: ConfigFileName},
		{name: "unknown key", content: `colour: "red"`, wantSub: "colour"},
		{name: "wrong type", content: `java: release: "eleven"`, wantSub: "java.release"},
		{name: "negative release", content: `java: release: -1`, wantSub: "java.release"},
		{name: "bad duration", content: `watch: debounce: "soon"`, wantSub: "watch.debounce"},
		{name: "unbalanced quotes", content: `tools: javac_options: "-Xlint:'all"`, wantSub: "tools.javac_options"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			dir := t.TempDir()
			writeConfig(t, dir, tt.content)

			_, _, err := Load(context.Background(), LoadOptions{ProjectDir: dir})
			if err == nil {
				t.Fatal("Load() expected error")
			}
			var ae *issue.ActionableError
			if !errors.As(err, &ae) {
				t.Fatalf("Load() error should be actionable, got %T", err)
			}
			if !strings.Contains(err.Error(), tt.wantSub) {
				t.Errorf("error %q does not mention %q", err, tt.wantSub)
			}
		})
	}
}

func TestLoadExplicitMissingFile(t *testing.T) {
	t.Parallel()

	_, _, err := Load(context.Background(), LoadOptions{ConfigFilePath: filepath.Join(t.TempDir(), "nope.cue")})
	if err == nil || !strings.Contains(err.Error(), "config file not found") {
		t.Fatalf("Load() error = %v, want config file not found", err)
	}
}

func TestLoadCanceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, _, err := NewProvider().Load(ctx, LoadOptions{ProjectDir: t.TempDir()}); !errors.Is(err, context.Canceled) {
		t.Fatalf("Load() error = %v, want context.Canceled", err)
	}
}

func TestGenerateCUERoundTrips(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.Project.Name = "demo"
	cfg.Java.Home = "/opt/jdk"
	cfg.Watch.Ignore = []string{"**/*.swp"}

	dir := t.TempDir()
	writeConfig(t, dir, GenerateCUE(cfg))

	loaded, _, err := Load(context.Background(), LoadOptions{ProjectDir: dir})
	if err != nil {
		t.Fatalf("Load(GenerateCUE()) error = %v", err)
	}
	if loaded.Project.Name != "demo" || loaded.Java.Home != "/opt/jdk" || loaded.Watch.Debounce != cfg.Watch.Debounce {
		t.Errorf("loaded = %+v", loaded)
	}
}

func TestSplitOptions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    []string
		wantErr bool
	}{
		{in: "", want: nil},
		{in: "  ", want: nil},
		{in: "-g -parameters", want: []string{"-g", "-parameters"}},
		{in: `-Dgreeting="hello world" -ea`, want: []string{"-Dgreeting=hello world", "-ea"}},
		{in: `-Dhome=$HOME`, want: []string{"-Dhome=$HOME"}},
		{in: `"unterminated`, wantErr: true},
	}
	for _, tt := range tests {
		got, err := SplitOptions(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("SplitOptions(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if strings.Join(got, "|") != strings.Join(tt.want, "|") {
			t.Errorf("SplitOptions(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestIsSemanticVersion(t *testing.T) {
	t.Parallel()

	for version, want := range map[string]bool{
		"1.0.0-SNAPSHOT": true,
		"v2.3.4":         true,
		"1.0":            true,
		"banana":         false,
		"1.0.0.0":        false,
	} {
		if got := IsSemanticVersion(version); got != want {
			t.Errorf("IsSemanticVersion(%q) = %v, want %v", version, got, want)
		}
	}
}
