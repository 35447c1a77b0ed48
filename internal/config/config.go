// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/invowk/realmake/internal/cueutil"
	"github.com/invowk/realmake/internal/issue"

	"github.com/spf13/viper"
)

const (
	// AppName is the application name.
	AppName = "realmake"
	// ConfigFileName is the project configuration file looked up in the project root.
	ConfigFileName = "realmake.cue"
	// EnvPrefix prefixes environment overrides, e.g. REALMAKE_JAVA_RELEASE.
	EnvPrefix = "REALMAKE"
)

//go:embed config_schema.cue
var configSchema string

type (
	// LoadOptions defines explicit configuration loading inputs.
	LoadOptions struct {
		// ConfigFilePath forces loading from a specific config file when set.
		ConfigFilePath string
		// ProjectDir is searched for ConfigFileName and names the project by default.
		ProjectDir string
	}

	// Provider loads configuration from explicit options. It also returns
	// the path of the merged config file, or "" when none was found.
	Provider interface {
		Load(ctx context.Context, opts LoadOptions) (*Config, string, error)
	}

	fileProvider struct{}
)

// NewProvider creates a configuration provider.
func NewProvider() Provider {
	return &fileProvider{}
}

// Load reads configuration from the requested source.
func (p *fileProvider) Load(ctx context.Context, opts LoadOptions) (*Config, string, error) {
	return Load(ctx, opts)
}

// Load layers defaults, the config file and the environment. It returns the
// path of the file that was merged, or "" when none was found.
func Load(ctx context.Context, opts LoadOptions) (*Config, string, error) {
	select {
	case <-ctx.Done():
		return nil, "", fmt.Errorf("load config canceled: %w", ctx.Err())
	default:
	}

	v := viper.New()
	setDefaults(v, DefaultConfig())
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	resolvedPath := ""
	switch {
	case opts.ConfigFilePath != "":
		if !fileExists(opts.ConfigFilePath) {
			return nil, "", issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(opts.ConfigFilePath).
				WithSuggestion("Verify the file path is correct").
				WithSuggestion("Use 'realmake config show' to see the default configuration").
				Wrap(fmt.Errorf("config file not found: %s", opts.ConfigFilePath)).
				BuildError()
		}
		resolvedPath = opts.ConfigFilePath
	default:
		local := filepath.Join(opts.ProjectDir, ConfigFileName)
		if fileExists(local) {
			resolvedPath = local
		}
	}

	if resolvedPath != "" {
		if err := loadCUEIntoViper(v, resolvedPath); err != nil {
			return nil, "", issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(resolvedPath).
				WithSuggestion("Check that the file contains valid CUE syntax").
				WithSuggestion("Verify the configuration values match the #Config schema").
				Wrap(err).
				BuildError()
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, "", fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.Project.Name == "" {
		cfg.Project.Name = projectName(opts.ProjectDir)
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", issue.NewErrorContext().
			WithOperation("validate configuration").
			WithResource(resolvedPath).
			Wrap(err).
			BuildError()
	}
	return &cfg, resolvedPath, nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("project.name", d.Project.Name)
	v.SetDefault("project.version", d.Project.Version)
	v.SetDefault("debug", d.Debug)
	v.SetDefault("dry_run", d.DryRun)
	v.SetDefault("offline", d.Offline)
	v.SetDefault("java.home", d.Java.Home)
	v.SetDefault("java.release", d.Java.Release)
	v.SetDefault("tools.javac_options", d.Tools.JavacOptions)
	v.SetDefault("tools.javadoc_options", d.Tools.JavadocOptions)
	v.SetDefault("test.java_options", d.Test.JavaOptions)
	v.SetDefault("test.engine_module", d.Test.EngineModule)
	v.SetDefault("watch.debounce", d.Watch.Debounce)
	v.SetDefault("watch.ignore", d.Watch.Ignore)
}

// loadCUEIntoViper validates path against #Config and merges it into v.
// The file decodes into a map because every field is optional.
func loadCUEIntoViper(v *viper.Viper, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	configMap, err := cueutil.ParseAndDecode[map[string]any]([]byte(configSchema), data, "#Config",
		cueutil.WithFilename(path), cueutil.WithConcrete(false))
	if err != nil {
		return err
	}
	if err := v.MergeConfigMap(*configMap); err != nil {
		return fmt.Errorf("failed to merge config: %w", err)
	}
	return nil
}

func projectName(dir string) string {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "project"
	}
	name := filepath.Base(abs)
	if name == "" || name == "." || name == string(filepath.Separator) {
		return "project"
	}
	return name
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// GenerateCUE renders cfg as a realmake.cue document.
func GenerateCUE(cfg *Config) string {
	var sb strings.Builder

	sb.WriteString("// realmake configuration\n\n")
	sb.WriteString("project: {\n")
	fmt.Fprintf(&sb, "\tname:    %q\n", cfg.Project.Name)
	fmt.Fprintf(&sb, "\tversion: %q\n", cfg.Project.Version)
	sb.WriteString("}\n\n")

	fmt.Fprintf(&sb, "debug:   %v\n", cfg.Debug)
	fmt.Fprintf(&sb, "dry_run: %v\n", cfg.DryRun)
	fmt.Fprintf(&sb, "offline: %v\n", cfg.Offline)

	sb.WriteString("\njava: {\n")
	if cfg.Java.Home != "" {
		fmt.Fprintf(&sb, "\thome:    %q\n", cfg.Java.Home)
	}
	fmt.Fprintf(&sb, "\trelease: %d\n", cfg.Java.Release)
	sb.WriteString("}\n")

	sb.WriteString("\ntools: {\n")
	fmt.Fprintf(&sb, "\tjavac_options:   %q\n", cfg.Tools.JavacOptions)
	fmt.Fprintf(&sb, "\tjavadoc_options: %q\n", cfg.Tools.JavadocOptions)
	sb.WriteString("}\n")

	sb.WriteString("\ntest: {\n")
	fmt.Fprintf(&sb, "\tjava_options:  %q\n", cfg.Test.JavaOptions)
	fmt.Fprintf(&sb, "\tengine_module: %q\n", cfg.Test.EngineModule)
	sb.WriteString("}\n")

	sb.WriteString("\nwatch: {\n")
	fmt.Fprintf(&sb, "\tdebounce: %q\n", cfg.Watch.Debounce.String())
	sb.WriteString("\tignore: [")
	for i, pattern := range cfg.Watch.Ignore {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%q", pattern)
	}
	sb.WriteString("]\n")
	sb.WriteString("}\n")

	return sb.String()
}
