package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/professor-lee/FalseClose/internal/registry"
	"github.com/professor-lee/FalseClose/internal/workspace"
)

// ComponentsOptions holds flags for the components command.
type ComponentsOptions struct {
	*RootOptions
	Category string
}

// NewComponentsCommand creates the components command.
func NewComponentsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ComponentsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "components",
		Short: "List registered component types",
		Long: `List the component catalog: the builtin entries plus any project catalog
given with --components or project.components.

Examples:
  pagebuilder components
  pagebuilder components --category form
  pagebuilder components --components ./catalog.cue --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runComponents(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Category, "category", "", "only list this category")

	return cmd
}

func runComponents(opts *ComponentsOptions, cmd *cobra.Command) error {
	cfg, err := opts.loadConfig(cmd)
	if err != nil {
		return err
	}
	reg, err := workspace.LoadRegistry(cfg)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load component registry", err)
	}

	var comps []registry.Component
	for _, c := range reg.Components() {
		if opts.Category == "" || c.Category == opts.Category {
			comps = append(comps, c)
		}
	}

	if opts.Format == "json" {
		if comps == nil {
			comps = []registry.Component{}
		}
		return opts.formatter(cmd).Success(comps)
	}
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TYPE\tCATEGORY\tCHILDREN\tEVENTS")
	for _, c := range comps {
		children := "no"
		if c.CanHaveChildren {
			children = "yes"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", c.Type, c.Category, children, strings.Join(c.Events, ","))
	}
	return tw.Flush()
}
