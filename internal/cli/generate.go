package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/professor-lee/FalseClose/internal/codegen"
	"github.com/professor-lee/FalseClose/internal/config"
	"github.com/professor-lee/FalseClose/internal/model"
	"github.com/professor-lee/FalseClose/internal/workspace"
)

// GenerateOptions holds flags for the generate command.
type GenerateOptions struct {
	*RootOptions
	Page   string
	Output string
}

// GeneratedPage is the output for one page.
type GeneratedPage struct {
	PageID string `json:"page_id"`
	Route  string `json:"route"`
	File   string `json:"file"`
	Markup string `json:"markup,omitempty"`
	Script string `json:"script,omitempty"`
	Style  string `json:"style,omitempty"`
}

// GenerateResult holds the generated pages.
type GenerateResult struct {
	Pages []GeneratedPage `json:"pages"`
	// OutputDir is set when files were written.
	OutputDir string `json:"output_dir,omitempty"`
}

// NewGenerateCommand creates the generate command.
func NewGenerateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &GenerateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate single-file components from pages",
		Long: `Render pages as <template>/<script setup>/<style scoped> documents.

Without --out the documents are printed. With --out each page is written
to <out>/<route>.vue ("/" becomes index.vue).

Exit codes:
  0 - All pages generated
  2 - Command error (no project, unknown page, page over --max-nodes)

Examples:
  pagebuilder generate
  pagebuilder generate --page home
  pagebuilder generate --out ./src/views
  pagebuilder generate --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Page, "page", "", "generate a single page by id")
	cmd.Flags().StringVarP(&opts.Output, "out", "o", "", "directory to write .vue files to")

	return cmd
}

func runGenerate(opts *GenerateOptions, cmd *cobra.Command) error {
	cfg, m, err := loadProject(opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	pages, err := selectPages(m, opts.Page)
	if err != nil {
		return err
	}

	result, err := generatePages(pages, codegenConfig(m), cfg, opts.Output)
	if err != nil {
		if opts.Format == "json" {
			if ferr := opts.formatter(cmd).Error(CodeGenerate, err.Error(), nil); ferr != nil {
				return ferr
			}
		}
		if errors.Is(err, workspace.ErrPageTooLarge) {
			return WrapExitError(ExitCommandError, "page too large to generate", err)
		}
		return WrapExitError(ExitCommandError, "generation failed", err)
	}

	if opts.Format == "json" {
		return opts.formatter(cmd).Success(result)
	}
	w := cmd.OutOrStdout()
	if opts.Output != "" {
		for _, p := range result.Pages {
			fmt.Fprintf(w, "✓ %s → %s\n", p.PageID, p.File)
		}
		return nil
	}
	for i, p := range result.Pages {
		if len(result.Pages) > 1 {
			if i > 0 {
				fmt.Fprintln(w)
			}
			fmt.Fprintf(w, "<!-- %s -->\n", p.File)
		}
		fmt.Fprint(w, codegen.Document(codegen.Output{Markup: p.Markup, Script: p.Script, Style: p.Style}))
	}
	return nil
}

func codegenConfig(m *model.Manifest) codegen.Config {
	return codegen.Config{UILibrary: m.UILibrary, GlobalStyles: m.GlobalStyles}
}

// generatePages renders every page concurrently. Generation is pure, so
// pages share nothing but the read-only config. When outDir is set the
// documents are written there and only file names are returned.
func generatePages(pages []*model.Page, gen codegen.Config, cfg *config.Config, outDir string) (GenerateResult, error) {
	result := GenerateResult{Pages: make([]GeneratedPage, len(pages)), OutputDir: outDir}
	if outDir != "" {
		if err := os.MkdirAll(outDir, 0o755); err != nil {
			return result, fmt.Errorf("creating output directory: %w", err)
		}
	}

	var g errgroup.Group
	for i, p := range pages {
		g.Go(func() error {
			out, err := workspace.Generate(p, gen, cfg.Codegen.MaxNodes)
			if err != nil {
				return err
			}
			gp := GeneratedPage{PageID: p.ID, Route: p.Route, File: codegen.FileName(p)}
			if outDir == "" {
				gp.Markup, gp.Script, gp.Style = out.Markup, out.Script, out.Style
			} else {
				gp.File = filepath.Join(outDir, gp.File)
				if err := os.WriteFile(gp.File, []byte(codegen.Document(out)), 0o644); err != nil {
					return fmt.Errorf("writing %s: %w", gp.File, err)
				}
			}
			result.Pages[i] = gp
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return result, err
	}
	return result, nil
}
