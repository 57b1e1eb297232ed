package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/professor-lee/FalseClose/internal/store"
)

// ReplayResult reports journal verification.
type ReplayResult struct {
	Store    string          `json:"store"`
	Segments []store.Segment `json:"segments"`
	Checked  int             `json:"checked"`
	Failed   int             `json:"failed"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Verify the edit journal against saved revisions",
		Long: `Replay the edit journal between consecutive saved revisions and check
that each rebuilds the next revision's pages exactly.

Exit codes:
  0 - Every segment rebuilt
  1 - One or more segments diverged
  2 - Command error (no revision store)

Examples:
  pagebuilder replay
  pagebuilder replay --store ./revisions.db --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(rootOpts, cmd)
		},
	}
	return cmd
}

func runReplay(opts *RootOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := opts.loadConfig(cmd)
	if err != nil {
		return err
	}

	if _, err := os.Stat(cfg.Store.Path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return WrapExitError(ExitCommandError, fmt.Sprintf("no revision store at %s", cfg.Store.Path), err)
		}
		return WrapExitError(ExitCommandError, "failed to stat revision store", err)
	}
	st, err := store.Open(cfg.Store.Path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open revision store", err)
	}
	defer st.Close()

	segments, err := st.Verify(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "replay failed", err)
	}

	result := ReplayResult{Store: cfg.Store.Path, Segments: segments, Checked: len(segments)}
	for _, seg := range segments {
		if !seg.OK() {
			result.Failed++
		}
	}

	f := opts.formatter(cmd)
	if opts.Format == "json" {
		if result.Failed == 0 {
			return f.Success(result)
		}
		if err := f.Error(CodeReplay, fmt.Sprintf("%d segment(s) diverged", result.Failed), result); err != nil {
			return err
		}
		return NewExitError(ExitFailure, "replay diverged")
	}

	w := cmd.OutOrStdout()
	if result.Checked == 0 {
		fmt.Fprintln(w, "No journal segments to verify.")
		return nil
	}
	for _, seg := range segments {
		if seg.OK() {
			f.VerboseLog("✓ revision %d → %d (%d entries)", seg.From, seg.To, seg.Entries)
			continue
		}
		fmt.Fprintf(w, "✗ revision %d → %d (%d entries)\n", seg.From, seg.To, seg.Entries)
		if seg.Error != "" {
			fmt.Fprintf(w, "  %s\n", seg.Error)
		}
		for _, mm := range seg.Mismatches {
			fmt.Fprintf(w, "  page %s: want %s, got %s\n", mm.PageID, shortHash(mm.Want), shortHash(mm.Got))
		}
	}
	if result.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d of %d segment(s) diverged", result.Failed, result.Checked))
	}
	fmt.Fprintf(w, "✓ %d segment(s) replayed\n", result.Checked)
	return nil
}

func shortHash(h string) string {
	switch {
	case h == "":
		return "(missing)"
	case len(h) > 12:
		return h[:12]
	}
	return h
}
