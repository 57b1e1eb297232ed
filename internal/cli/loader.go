package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/professor-lee/FalseClose/internal/config"
	"github.com/professor-lee/FalseClose/internal/model"
	"github.com/professor-lee/FalseClose/internal/project"
)

// loadProject reads the configuration and the normalized project manifest
// without opening an editing session.
func loadProject(opts *RootOptions, cmd *cobra.Command) (*config.Config, *model.Manifest, error) {
	return loadProjectWith(opts, cmd, project.Load)
}

// loadProjectWith is loadProject with the manifest reader given, so
// validation can see pages exactly as they are on disk.
func loadProjectWith(opts *RootOptions, cmd *cobra.Command, load func(dir string) (*model.Manifest, error)) (*config.Config, *model.Manifest, error) {
	cfg, err := opts.loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	m, err := load(cfg.Project.Dir)
	if err != nil {
		return nil, nil, projectError(cfg.Project.Dir, err)
	}
	if m.UILibrary == "" {
		m.UILibrary = cfg.Codegen.UILibrary
	}
	opts.formatter(cmd).VerboseLog("Loaded %s (%d pages)", project.ManifestPath(cfg.Project.Dir), len(m.Pages))
	return cfg, m, nil
}

func projectError(dir string, err error) error {
	if errors.Is(err, project.ErrNoProject) {
		return WrapExitError(ExitCommandError, fmt.Sprintf("no project in %s (run pagebuilder init)", dir), err)
	}
	return WrapExitError(ExitCommandError, "failed to load project", err)
}

// selectPages returns the page with pageID, or every page when pageID is
// empty.
func selectPages(m *model.Manifest, pageID string) ([]*model.Page, error) {
	if pageID == "" {
		return m.Pages, nil
	}
	p := m.Page(pageID)
	if p == nil {
		return nil, NewExitError(ExitCommandError, fmt.Sprintf("page not found: %s", pageID))
	}
	return []*model.Page{p}, nil
}
