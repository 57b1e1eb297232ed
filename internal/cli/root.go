package cli

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"github.com/professor-lee/FalseClose/internal/config"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigFile string
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the pagebuilder CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "pagebuilder",
		Short: "pagebuilder - visual page builder core",
		Long: `Edit page projects as component trees and generate single-file
components from them.

A project lives in a directory holding .pagebuilder/project.json. Edits go
through an undoable mutation API, every change is journaled to a SQLite
revision store, and pages are rendered as <template>/<script setup>/<style>
documents.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	// Global flags
	pf := cmd.PersistentFlags()
	pf.BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	pf.StringVar(&opts.Format, "format", "text", "output format (json|text)")
	pf.StringVar(&opts.ConfigFile, "config", "", "config file (default: pagebuilder.yaml in the project directory)")

	// Configuration flags, applied over file and environment settings
	pf.StringP("project-dir", "C", ".", "project directory")
	pf.String("components", "", "CUE component catalog merged into the builtin one")
	pf.Int("max-history", config.DefaultMaxEntries, "undo history size")
	pf.Bool("autosave", true, "save automatically after edits")
	pf.Duration("autosave-interval", config.DefaultAutoSaveInterval, "quiet period before an autosave")
	pf.String("ui-library", config.DefaultUILibrary, "tag table for generated markup (element-plus|html)")
	pf.Int("max-nodes", config.DefaultMaxNodes, "largest page the generator accepts (0 = unlimited)")
	pf.String("store", config.DefaultStorePath, "revision store path, relative to the project directory")

	// Add subcommands
	cmd.AddCommand(NewInitCommand(opts))
	cmd.AddCommand(NewGenerateCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewPagesCommand(opts))
	cmd.AddCommand(NewComponentsCommand(opts))
	cmd.AddCommand(NewScenarioCommand(opts))
	cmd.AddCommand(NewApplyCommand(opts))
	cmd.AddCommand(NewReplayCommand(opts))
	cmd.AddCommand(NewWatchCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}

// formatter returns the output formatter for cmd.
func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}

// logger returns a text logger on stderr, at debug level under --verbose.
func (o *RootOptions) logger(cmd *cobra.Command) *slog.Logger {
	level := slog.LevelWarn
	if o.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
}

// loadConfig reads the layered configuration. Flags of cmd, including the
// inherited global ones, take precedence.
func (o *RootOptions) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(config.Options{
		ConfigFile: o.ConfigFile,
		Flags:      cmd.Flags(),
	})
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load configuration", err)
	}
	return cfg, nil
}
