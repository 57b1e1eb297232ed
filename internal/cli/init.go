package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/professor-lee/FalseClose/internal/project"
	"github.com/professor-lee/FalseClose/internal/workspace"
)

// InitOptions holds flags for the init command.
type InitOptions struct {
	*RootOptions
	Name string
}

// InitResult describes the created project.
type InitResult struct {
	Dir       string `json:"dir"`
	Manifest  string `json:"manifest"`
	Name      string `json:"name"`
	UILibrary string `json:"ui_library"`
	HomePage  string `json:"home_page"`
}

// NewInitCommand creates the init command.
func NewInitCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &InitOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a new project",
		Long: `Create a project with a single empty "Home" page at "/".

Exit codes:
  0 - Project created
  2 - Command error (a project already exists, unwritable directory)

Examples:
  pagebuilder init -C ./site --name "Marketing site"
  pagebuilder init --ui-library html`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Name, "name", "", "project name (default: directory name)")

	return cmd
}

func runInit(opts *InitOptions, cmd *cobra.Command) error {
	cfg, err := opts.loadConfig(cmd)
	if err != nil {
		return err
	}

	m, err := workspace.Init(cfg.Project.Dir, opts.Name, cfg.Codegen.UILibrary, workspace.WithLogger(opts.logger(cmd)))
	if err != nil {
		if errors.Is(err, workspace.ErrProjectExists) {
			return WrapExitError(ExitCommandError, "project already exists", err)
		}
		return WrapExitError(ExitCommandError, "failed to create project", err)
	}

	result := InitResult{
		Dir:       cfg.Project.Dir,
		Manifest:  project.ManifestPath(cfg.Project.Dir),
		Name:      m.ProjectName,
		UILibrary: m.UILibrary,
		HomePage:  m.Pages[0].ID,
	}
	if opts.Format == "json" {
		return opts.formatter(cmd).Success(result)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created project %q in %s\n", result.Name, result.Dir)
	return nil
}
