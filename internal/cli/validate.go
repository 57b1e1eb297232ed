package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/professor-lee/FalseClose/internal/project"
	"github.com/professor-lee/FalseClose/internal/tree"
	"github.com/professor-lee/FalseClose/internal/workspace"
)

// ValidateResult holds the validation outcome.
type ValidateResult struct {
	Valid      bool             `json:"valid"`
	Pages      int              `json:"pages"`
	Nodes      int              `json:"nodes"`
	Violations []tree.Violation `json:"violations"`
	// UnknownTypes lists component types the registry does not know. They
	// render as plain containers and are not an error.
	UnknownTypes []string `json:"unknown_types,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check page structure",
		Long: `Load the project manifest and check every page's structural invariants:
unique ids, rootOrder matching the parentless nodes, parent/children links
agreeing in both directions, and no cycles.

Exit codes:
  0 - All pages valid
  1 - Invariant violations found
  2 - Command error (no project, unreadable manifest)

Examples:
  pagebuilder validate
  pagebuilder validate -C ./site --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, cmd)
		},
	}
	return cmd
}

func runValidate(opts *RootOptions, cmd *cobra.Command) error {
	cfg, m, err := loadProjectWith(opts, cmd, project.LoadRaw)
	if err != nil {
		return err
	}
	reg, err := workspace.LoadRegistry(cfg)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load component registry", err)
	}

	result := ValidateResult{Pages: len(m.Pages), Violations: []tree.Violation{}}
	unknown := make(map[string]bool)
	for _, p := range m.Pages {
		result.Nodes += len(p.Nodes)
		result.Violations = append(result.Violations, tree.Validate(p)...)
		for _, n := range p.Nodes {
			if n == nil || unknown[n.Type] {
				continue
			}
			if _, ok := reg.Lookup(n.Type); !ok {
				unknown[n.Type] = true
				result.UnknownTypes = append(result.UnknownTypes, n.Type)
			}
		}
	}
	result.Valid = len(result.Violations) == 0

	f := opts.formatter(cmd)
	if opts.Format == "json" {
		if result.Valid {
			return f.Success(result)
		}
		if err := f.Error(CodeInvariant, fmt.Sprintf("%d invariant violation(s)", len(result.Violations)), result); err != nil {
			return err
		}
		return NewExitError(ExitFailure, "validation failed")
	}

	w := cmd.OutOrStdout()
	for _, t := range result.UnknownTypes {
		f.VerboseLog("unknown component type %q renders as a container", t)
	}
	if result.Valid {
		fmt.Fprintf(w, "✓ %d page(s), %d node(s) valid\n", result.Pages, result.Nodes)
		return nil
	}
	for _, v := range result.Violations {
		fmt.Fprintf(w, "✗ %s\n", v)
	}
	return NewExitError(ExitFailure, fmt.Sprintf("%d invariant violation(s)", len(result.Violations)))
}
