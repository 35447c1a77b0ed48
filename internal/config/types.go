// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"golang.org/x/mod/semver"
	"mvdan.cc/sh/v3/shell"
)

const (
	// DefaultVersion is used when no project version is configured.
	DefaultVersion = "1.0.0-SNAPSHOT"
	// DefaultEngineModule is the JUnit Platform console launcher module.
	DefaultEngineModule = "org.junit.platform.console"
	// DefaultDebounce is the watch mode quiet period.
	DefaultDebounce = 500 * time.Millisecond
)

// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
var ErrInvalidConfig = errors.New("invalid config")

type (
	// Config is the effective realmake configuration.
	Config struct {
		Project ProjectConfig `json:"project" mapstructure:"project"`
		Debug   bool          `json:"debug" mapstructure:"debug"`
		DryRun  bool          `json:"dry_run" mapstructure:"dry_run"`
		Offline bool          `json:"offline" mapstructure:"offline"`
		Java    JavaConfig    `json:"java" mapstructure:"java"`
		Tools   ToolsConfig   `json:"tools" mapstructure:"tools"`
		Test    TestConfig    `json:"test" mapstructure:"test"`
		Watch   WatchConfig   `json:"watch" mapstructure:"watch"`
	}

	// ProjectConfig names the project. An empty Name is replaced by the base
	// name of the project root.
	ProjectConfig struct {
		Name    string `json:"name" mapstructure:"name"`
		Version string `json:"version" mapstructure:"version"`
	}

	// JavaConfig locates the JDK.
	JavaConfig struct {
		Home    string `json:"home" mapstructure:"home"`
		Release int    `json:"release" mapstructure:"release"`
	}

	// ToolsConfig holds shell-quoted extra arguments appended to tool calls.
	ToolsConfig struct {
		JavacOptions   string `json:"javac_options" mapstructure:"javac_options"`
		JavadocOptions string `json:"javadoc_options" mapstructure:"javadoc_options"`
	}

	// TestConfig configures the test launch.
	TestConfig struct {
		JavaOptions  string `json:"java_options" mapstructure:"java_options"`
		EngineModule string `json:"engine_module" mapstructure:"engine_module"`
	}

	// WatchConfig configures watch mode.
	WatchConfig struct {
		Debounce time.Duration `json:"debounce" mapstructure:"debounce"`
		Ignore   []string      `json:"ignore" mapstructure:"ignore"`
	}

	// InvalidConfigError collects the semantic problems of a Config.
	InvalidConfigError struct {
		Problems []string
	}
)

// Error implements the error interface.
func (e *InvalidConfigError) Error() string {
	return "invalid config: " + strings.Join(e.Problems, "; ")
}

// Unwrap returns ErrInvalidConfig for errors.Is() compatibility.
func (e *InvalidConfigError) Unwrap() error { return ErrInvalidConfig }

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Project: ProjectConfig{Version: DefaultVersion},
		Test:    TestConfig{EngineModule: DefaultEngineModule},
		Watch:   WatchConfig{Debounce: DefaultDebounce, Ignore: []string{}},
	}
}

// Validate reports constraints the schema cannot see, such as values
// that arrived through environment variables.
func (c *Config) Validate() error {
	var problems []string
	if strings.TrimSpace(c.Project.Version) == "" {
		problems = append(problems, "project.version must not be empty")
	}
	if c.Java.Release < 0 {
		problems = append(problems, fmt.Sprintf("java.release must not be negative, got %d", c.Java.Release))
	}
	if strings.TrimSpace(c.Test.EngineModule) == "" {
		problems = append(problems, "test.engine_module must not be empty")
	}
	if c.Watch.Debounce < 0 {
		problems = append(problems, fmt.Sprintf("watch.debounce must not be negative, got %s", c.Watch.Debounce))
	}
	for name, value := range map[string]string{
		"tools.javac_options":   c.Tools.JavacOptions,
		"tools.javadoc_options": c.Tools.JavadocOptions,
		"test.java_options":     c.Test.JavaOptions,
	} {
		if _, err := SplitOptions(value); err != nil {
			problems = append(problems, fmt.Sprintf("%s: %v", name, err))
		}
	}
	if len(problems) == 0 {
		return nil
	}
	slices.Sort(problems)
	return &InvalidConfigError{Problems: problems}
}

// SplitOptions splits a shell-quoted option string into arguments.
// Environment references are left unexpanded.
func SplitOptions(s string) ([]string, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	fields, err := shell.Fields(s, func(name string) string { return "$" + name })
	if err != nil {
		return nil, fmt.Errorf("cannot split %q: %w", s, err)
	}
	return fields, nil
}

// IsSemanticVersion reports whether version is a semantic version, with or
// without the leading "v".
func IsSemanticVersion(version string) bool {
	if !strings.HasPrefix(version, "v") {
		version = "v" + version
	}
	return semver.IsValid(version)
}
