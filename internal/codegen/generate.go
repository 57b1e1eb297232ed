// Package codegen turns a page snapshot into single-file component source:
// template markup, a setup script and a scoped style block.
//
// Generation is a pure function of its inputs. It never fails: unknown
// types render as a plain container and malformed trees degrade to
// whatever the tree assembler can reach. Repeated calls on the same page
// and config produce byte-identical output.
package codegen

import (
	"strings"

	"github.com/professor-lee/FalseClose/internal/model"
	"github.com/professor-lee/FalseClose/internal/tree"
)

// Output is the generated source of one page.
type Output struct {
	Markup string `json:"markup"`
	Script string `json:"script"`
	Style  string `json:"style"`
}

// Config is the project-level input to generation.
type Config struct {
	// UILibrary selects the tag table: "element-plus" (default) or "html".
	UILibrary string

	// GlobalStyles become the rule block for the page container.
	GlobalStyles model.Map

	// SelfClosing lists types that may render as <tag /> when they have
	// neither children nor text. Empty by default, so every element gets
	// an explicit closing tag.
	SelfClosing []string
}

// Generate renders a page.
func Generate(page *model.Page, cfg Config) Output {
	var forest []*tree.TreeNode
	if page != nil {
		forest = tree.Assemble(page)
	}
	return Output{
		Markup: generateMarkup(forest, cfg),
		Script: generateScript(forest),
		Style:  generateStyle(cfg.GlobalStyles),
	}
}

// Document composes the three parts into one single-file page.
func Document(out Output) string {
	var b strings.Builder
	b.WriteString("<template>\n")
	b.WriteString(out.Markup)
	b.WriteString("\n</template>\n\n<script setup>\n")
	b.WriteString(out.Script)
	b.WriteString("\n</script>\n\n<style scoped>\n")
	b.WriteString(out.Style)
	b.WriteString("\n</style>\n")
	return b.String()
}

// FileName returns the file a page's document is written to, derived from
// its route: "/" is index.vue, "/user/profile" is user-profile.vue.
func FileName(page *model.Page) string {
	route := strings.Trim(page.Route, "/")
	if route == "" {
		return "index.vue"
	}
	var b strings.Builder
	for _, r := range route {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('-')
		}
	}
	name := strings.Trim(b.String(), "-")
	if name == "" {
		name = page.ID
	}
	return name + ".vue"
}
