// Package config loads pagebuilder settings.
//
// Precedence (highest to lowest): flags > env vars > config file > defaults.
//
// The config file is pagebuilder.yaml (or .yml) in the project directory,
// or the path given with --config. Environment variables use the
// PAGEBUILDER_ prefix with a double underscore between sections:
// PAGEBUILDER_HISTORY__MAX_ENTRIES sets history.max_entries.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// EnvPrefix is the prefix of environment overrides.
const EnvPrefix = "PAGEBUILDER_"

// Defaults.
const (
	DefaultMaxEntries       = 50
	DefaultAutoSaveInterval = 500 * time.Millisecond
	DefaultUILibrary        = "element-plus"
	DefaultMaxNodes         = 5000
	DefaultStorePath        = ".pagebuilder/revisions.db"
	DefaultKeepRevisions    = 100
)

// configNames are the file names searched in the project directory.
var configNames = []string{"pagebuilder.yaml", "pagebuilder.yml"}

// flagKeys maps CLI flag names onto config keys. Flags not listed here are
// not configuration.
var flagKeys = map[string]string{
	"project-dir":       "project.dir",
	"components":        "project.components",
	"max-history":       "history.max_entries",
	"autosave":          "autosave.enabled",
	"autosave-interval": "autosave.interval",
	"ui-library":        "codegen.ui_library",
	"max-nodes":         "codegen.max_nodes",
	"store":             "store.path",
}

// Config holds every setting.
type Config struct {
	Project  ProjectConfig  `koanf:"project"`
	History  HistoryConfig  `koanf:"history"`
	AutoSave AutoSaveConfig `koanf:"autosave"`
	Codegen  CodegenConfig  `koanf:"codegen"`
	Store    StoreConfig    `koanf:"store"`

	// File is the config file that was read, "" when none was found.
	File string `koanf:"-"`
}

// ProjectConfig locates the project.
type ProjectConfig struct {
	Dir string `koanf:"dir"`

	// Components is an optional CUE file whose entries are merged into the
	// builtin component catalog.
	Components string `koanf:"components"`
}

// HistoryConfig configures undo/redo.
type HistoryConfig struct {
	MaxEntries int `koanf:"max_entries"`
}

// AutoSaveConfig configures the debounced saver.
type AutoSaveConfig struct {
	Enabled  bool          `koanf:"enabled"`
	Interval time.Duration `koanf:"interval"`
}

// CodegenConfig configures code generation.
type CodegenConfig struct {
	UILibrary string `koanf:"ui_library"`

	// MaxNodes bounds the page size the generator is given. 0 disables the
	// check.
	MaxNodes int `koanf:"max_nodes"`
}

// StoreConfig configures the revision store.
type StoreConfig struct {
	Path          string `koanf:"path"`
	KeepRevisions int    `koanf:"keep_revisions"`
}

// Options control where configuration comes from.
type Options struct {
	// ConfigFile overrides the config file search.
	ConfigFile string

	// Flags are applied last. Only flags that were explicitly set count.
	Flags *pflag.FlagSet

	// Environ replaces os.Environ, for tests.
	Environ []string
}

// Defaults returns the configuration used when nothing overrides it.
func Defaults() map[string]any {
	return map[string]any{
		"project.dir":          ".",
		"project.components":   "",
		"history.max_entries":  DefaultMaxEntries,
		"autosave.enabled":     true,
		"autosave.interval":    DefaultAutoSaveInterval.String(),
		"codegen.ui_library":   DefaultUILibrary,
		"codegen.max_nodes":    DefaultMaxNodes,
		"store.path":           DefaultStorePath,
		"store.keep_revisions": DefaultKeepRevisions,
	}
}

// Load reads configuration from all sources, validates it and resolves
// relative paths against the project directory.
func Load(opts Options) (*Config, error) {
	k := koanf.New(".")

	// 1. Defaults
	if err := k.Load(confmap.Provider(Defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// The project directory decides where the config file is, so it is
	// resolved from the flag before the file is read.
	projectDir := "."
	if opts.Flags != nil {
		if f := opts.Flags.Lookup("project-dir"); f != nil && f.Changed {
			projectDir = f.Value.String()
		}
	}

	// 2. Config file
	cfgFile := opts.ConfigFile
	if cfgFile == "" {
		cfgFile = findConfigFile(projectDir)
	}
	if cfgFile != "" {
		if err := k.Load(file.Provider(cfgFile), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", cfgFile, err)
		}
	}

	// 3. Environment (PAGEBUILDER_AUTOSAVE__INTERVAL -> autosave.interval)
	if err := loadEnv(k, opts.Environ); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags
	if opts.Flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(opts.Flags, ".", k, func(f *pflag.Flag) (string, any) {
			key, ok := flagKeys[f.Name]
			if !ok || !f.Changed {
				return "", nil
			}
			return key, posflag.FlagVal(opts.Flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	// 5. Decode
	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.File = cfgFile

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.resolvePaths()
	return &cfg, nil
}

// Validate reports settings outside their allowed range.
func (c *Config) Validate() error {
	var errs []error
	if c.History.MaxEntries < 1 {
		errs = append(errs, fmt.Errorf("history.max_entries must be at least 1, got %d", c.History.MaxEntries))
	}
	if c.AutoSave.Interval <= 0 {
		errs = append(errs, fmt.Errorf("autosave.interval must be positive, got %s", c.AutoSave.Interval))
	}
	if c.Codegen.MaxNodes < 0 {
		errs = append(errs, fmt.Errorf("codegen.max_nodes must not be negative, got %d", c.Codegen.MaxNodes))
	}
	if c.Codegen.UILibrary == "" {
		errs = append(errs, errors.New("codegen.ui_library must not be empty"))
	}
	if c.Store.Path == "" {
		errs = append(errs, errors.New("store.path must not be empty"))
	}
	if c.Store.KeepRevisions < 1 {
		errs = append(errs, fmt.Errorf("store.keep_revisions must be at least 1, got %d", c.Store.KeepRevisions))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}

// resolvePaths makes the project directory absolute and joins relative
// paths onto it.
func (c *Config) resolvePaths() {
	if abs, err := filepath.Abs(c.Project.Dir); err == nil {
		c.Project.Dir = abs
	}
	c.Store.Path = resolvePathRelativeTo(c.Store.Path, c.Project.Dir)
	c.Project.Components = resolvePathRelativeTo(c.Project.Components, c.Project.Dir)
}

// resolvePathRelativeTo resolves a path relative to baseDir if it's not absolute.
// Returns the path unchanged if it's empty or already absolute.
func resolvePathRelativeTo(path, baseDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(baseDir, path)
}

func findConfigFile(dir string) string {
	for _, name := range configNames {
		candidate := filepath.Join(dir, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

func envKey(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".")
}

func loadEnv(k *koanf.Koanf, environ []string) error {
	if environ == nil {
		return k.Load(env.Provider(EnvPrefix, ".", envKey), nil)
	}
	// An explicit environment goes through confmap so tests do not touch
	// the process environment.
	vals := make(map[string]any)
	for _, kv := range environ {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(name, EnvPrefix) {
			continue
		}
		vals[envKey(name)] = value
	}
	return k.Load(confmap.Provider(vals, "."), nil)
}
