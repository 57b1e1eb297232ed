package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/professor-lee/FalseClose/internal/codegen"
)

// PageInfo summarizes one page.
type PageInfo struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Route string `json:"route"`
	Nodes int    `json:"nodes"`
	File  string `json:"file"`
}

// NewPagesCommand creates the pages command.
func NewPagesCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "pages",
		Short: "List the project's pages",
		Long: `List pages with their id, route, node count and generated file name.

Examples:
  pagebuilder pages
  pagebuilder pages --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPages(rootOpts, cmd)
		},
	}
}

func runPages(opts *RootOptions, cmd *cobra.Command) error {
	_, m, err := loadProject(opts, cmd)
	if err != nil {
		return err
	}

	infos := make([]PageInfo, len(m.Pages))
	for i, p := range m.Pages {
		infos[i] = PageInfo{ID: p.ID, Name: p.Name, Route: p.Route, Nodes: len(p.Nodes), File: codegen.FileName(p)}
	}

	if opts.Format == "json" {
		return opts.formatter(cmd).Success(infos)
	}
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tROUTE\tNODES\tFILE")
	for _, p := range infos {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n", p.ID, p.Name, p.Route, p.Nodes, p.File)
	}
	return tw.Flush()
}
