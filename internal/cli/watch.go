package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/bep/debounce"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/professor-lee/FalseClose/internal/config"
	"github.com/professor-lee/FalseClose/internal/project"
)

// watchDebounce is the quiet period after a manifest change before pages
// are regenerated.
const watchDebounce = 100 * time.Millisecond

// WatchOptions holds flags for the watch command.
type WatchOptions struct {
	*RootOptions
	Output string
}

// NewWatchCommand creates the watch command.
func NewWatchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &WatchOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Regenerate pages whenever the project changes",
		Long: `Generate every page into --out, then regenerate whenever the project
manifest is saved. Runs until interrupted.

Examples:
  pagebuilder watch --out ./src/views
  pagebuilder watch -C ./site --out ./site/src/views -v`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(opts, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "out", "o", "", "directory to write .vue files to (required)")
	_ = cmd.MarkFlagRequired("out")

	return cmd
}

func runWatch(opts *WatchOptions, cmd *cobra.Command) error {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := opts.loadConfig(cmd)
	if err != nil {
		return err
	}
	if !project.Exists(cfg.Project.Dir) {
		return projectError(cfg.Project.Dir, project.ErrNoProject)
	}

	logger := opts.logger(cmd)
	w := cmd.OutOrStdout()
	err = watchProject(ctx, cfg, opts.Output, logger, func(result GenerateResult, err error) {
		if err != nil {
			fmt.Fprintf(w, "✗ %v\n", err)
			return
		}
		fmt.Fprintf(w, "✓ %d page(s) → %s\n", len(result.Pages), result.OutputDir)
	})
	if err != nil {
		return WrapExitError(ExitCommandError, "watch failed", err)
	}
	return nil
}

// watchProject generates all pages into outDir once and again after every
// manifest write, until ctx is done. onGenerate is called after each run;
// calls never overlap.
func watchProject(ctx context.Context, cfg *config.Config, outDir string, logger *slog.Logger, onGenerate func(GenerateResult, error)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	manifest := project.ManifestPath(cfg.Project.Dir)
	// The manifest is replaced by rename on save, so watch its directory.
	if err := watcher.Add(filepath.Dir(manifest)); err != nil {
		return fmt.Errorf("watching %s: %w", filepath.Dir(manifest), err)
	}

	runs := make(chan struct{}, 1)
	regenerate := func() {
		select {
		case runs <- struct{}{}:
		default:
		}
	}
	debounced := debounce.New(watchDebounce)

	regenerate()
	logger.Info("watching project", "manifest", manifest, "out", outDir)

	for {
		select {
		case <-ctx.Done():
			logger.Info("watcher stopped")
			return nil

		case <-runs:
			onGenerate(generateProject(cfg, outDir))

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if filepath.Base(event.Name) != project.ManifestFile {
				continue
			}
			logger.Debug("manifest changed", "op", event.Op.String())
			debounced(regenerate)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher error", "error", err)
		}
	}
}

func generateProject(cfg *config.Config, outDir string) (GenerateResult, error) {
	m, err := project.Load(cfg.Project.Dir)
	if err != nil {
		return GenerateResult{}, err
	}
	if m.UILibrary == "" {
		m.UILibrary = cfg.Codegen.UILibrary
	}
	return generatePages(m.Pages, codegenConfig(m), cfg, outDir)
}
