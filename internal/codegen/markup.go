package codegen

import (
	"slices"
	"strings"

	"github.com/professor-lee/FalseClose/internal/model"
	"github.com/professor-lee/FalseClose/internal/tree"
)

const (
	pageContainerOpen  = `  <div class="page-container">`
	pageContainerClose = `  </div>`
	emptyPage          = pageContainerOpen + "\n    <!-- page content -->\n" + pageContainerClose
)

// Props rendered elsewhere than the generic attribute list.
var specialProps = map[string]bool{
	"text":      true,
	"label":     true,
	"className": true,
}

type markupWriter struct {
	lines       []string
	tags        map[string]string
	selfClosing []string
}

func generateMarkup(forest []*tree.TreeNode, cfg Config) string {
	if len(forest) == 0 {
		return emptyPage
	}
	w := &markupWriter{
		lines:       []string{pageContainerOpen},
		tags:        tagTable(cfg.UILibrary),
		selfClosing: cfg.SelfClosing,
	}
	for _, tn := range forest {
		w.node(tn, 2)
	}
	w.lines = append(w.lines, pageContainerClose)
	return strings.Join(w.lines, "\n")
}

func (w *markupWriter) node(tn *tree.TreeNode, depth int) {
	n := tn.Node
	indent := strings.Repeat("  ", depth)
	tag := tagName(w.tags, n.Type)

	attrs := attributes(n)
	attrStr := ""
	if len(attrs) > 0 {
		attrStr = " " + strings.Join(attrs, " ")
	}

	text, hasText := inlineText(n)
	hasChildren := len(tn.Children) > 0

	switch {
	case !hasChildren && !hasText && slices.Contains(w.selfClosing, n.Type):
		w.lines = append(w.lines, indent+"<"+tag+attrStr+" />")
	case !hasChildren && hasText:
		w.lines = append(w.lines, indent+"<"+tag+attrStr+">"+escapeHTML(text)+"</"+tag+">")
	default:
		w.lines = append(w.lines, indent+"<"+tag+attrStr+">")
		for _, child := range tn.Children {
			w.node(child, depth+1)
		}
		w.lines = append(w.lines, indent+"</"+tag+">")
	}
}

// inlineText returns props.text, falling back to props.label, when either
// is set.
func inlineText(n *model.Node) (string, bool) {
	for _, key := range []string{"text", "label"} {
		if v, ok := n.Props.Get(key); ok && model.Truthy(v) {
			return model.Text(v), true
		}
	}
	return "", false
}

// attributes renders, in order: class, the remaining props, event
// bindings, then style.
func attributes(n *model.Node) []string {
	var attrs []string

	if v, ok := n.Props.Get("className"); ok && model.Truthy(v) {
		attrs = append(attrs, `class="`+escapeAttr(model.Text(v))+`"`)
	}

	for key, v := range n.Props.All() {
		if specialProps[key] {
			continue
		}
		switch val := v.(type) {
		case model.Bool:
			if val {
				attrs = append(attrs, ":"+key+`="true"`)
			}
		case model.Number:
			attrs = append(attrs, ":"+key+`="`+model.FormatNumber(float64(val))+`"`)
		case model.List, model.Map:
			attrs = append(attrs, ":"+key+`="`+escapeAttr(model.Text(val))+`"`)
		default:
			if model.Truthy(v) {
				attrs = append(attrs, key+`="`+escapeAttr(model.Text(v))+`"`)
			}
		}
	}

	for event, b := range n.Events.All() {
		if b.Action != "" {
			attrs = append(attrs, "@"+event+`="`+handlerName(event)+`"`)
		}
	}

	if style := inlineStyle(n.Styles); style != "" {
		attrs = append(attrs, `style="`+escapeAttr(style)+`"`)
	}
	return attrs
}

func inlineStyle(styles model.Map) string {
	var parts []string
	for key, v := range styles.All() {
		if model.Truthy(v) {
			parts = append(parts, kebab(key)+": "+model.Text(v))
		}
	}
	return strings.Join(parts, "; ")
}
