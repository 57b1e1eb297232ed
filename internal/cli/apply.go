package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/professor-lee/FalseClose/internal/harness"
	"github.com/professor-lee/FalseClose/internal/workspace"
)

// ApplyResult reports an applied edit script.
type ApplyResult struct {
	Applied  int                  `json:"applied"`
	Trace    []harness.TraceEvent `json:"trace"`
	Refs     map[string]string    `json:"refs,omitempty"`
	Revision int64                `json:"revision"`
	Hash     string               `json:"hash"`
}

// NewApplyCommand creates the apply command.
func NewApplyCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apply <edits.yaml>",
		Short: "Apply a scripted list of edits to the project",
		Long: `Open the project, apply an edit script and save the result.

The script uses the scenario step format:

  steps:
    - {op: create, type: Container, as: box}
    - {op: create, type: Text, parent: box, props: {text: Hello}}
    - {op: undo}

Every change is journaled. The project is saved once the script finishes,
so a failing step still keeps the edits before it.

Exit codes:
  0 - All steps applied
  1 - A step was rejected
  2 - Command error (no project, unreadable script)

Examples:
  pagebuilder apply edits.yaml
  pagebuilder apply edits.yaml -C ./site --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApply(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runApply(opts *RootOptions, path string, cmd *cobra.Command) (err error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	script, err := harness.LoadScript(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load edit script", err)
	}
	cfg, err := opts.loadConfig(cmd)
	if err != nil {
		return err
	}

	ws, err := workspace.Open(ctx, cfg, workspace.WithLogger(opts.logger(cmd)))
	if err != nil {
		return projectError(cfg.Project.Dir, err)
	}
	defer func() {
		if cerr := ws.Close(); cerr != nil && err == nil {
			err = WrapExitError(ExitCommandError, "failed to close project", cerr)
		}
	}()

	x := harness.NewExecutor(ws.Editor())
	result := ApplyResult{Trace: []harness.TraceEvent{}}
	var stepErr error
	for _, st := range script.Steps {
		ev, err := x.Apply(st)
		result.Trace = append(result.Trace, ev)
		if err != nil {
			stepErr = err
			break
		}
		result.Applied++
	}
	result.Refs = x.Refs()

	if err := ws.Flush(ctx); err != nil {
		return WrapExitError(ExitCommandError, "failed to save project", err)
	}
	rev, err := ws.Store().LatestRevision(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read revision", err)
	}
	result.Revision, result.Hash = rev.Seq, rev.Hash

	f := opts.formatter(cmd)
	if stepErr != nil {
		if opts.Format == "json" {
			if err := f.Error(CodeEdit, stepErr.Error(), result); err != nil {
				return err
			}
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "✗ %v\n  %d of %d step(s) applied, saved as revision %d\n",
				stepErr, result.Applied, len(script.Steps), result.Revision)
		}
		return WrapExitError(ExitFailure, "edit rejected", errors.Unwrap(stepErr))
	}

	if opts.Format == "json" {
		return f.Success(result)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ %d step(s) applied, saved as revision %d\n", result.Applied, result.Revision)
	for alias, id := range result.Refs {
		f.VerboseLog("  %s = %s", alias, id)
	}
	return nil
}
