package codegen

import (
	"strings"

	"github.com/professor-lee/FalseClose/internal/model"
	"github.com/professor-lee/FalseClose/internal/tree"
)

func generateScript(forest []*tree.TreeNode) string {
	lines := []string{"import { ref, reactive } from 'vue'"}

	if hasNavigation(forest) {
		lines = append(lines,
			"import { useRouter } from 'vue-router'",
			"",
			"const router = useRouter()",
		)
	}
	lines = append(lines, "")

	if fields := formFields(forest); len(fields) > 0 {
		lines = append(lines, "// form data", "const formData = reactive({")
		for _, f := range fields {
			lines = append(lines, "  "+jsKey(f)+": '',")
		}
		lines = append(lines, "})", "")
	}

	if handlers := eventHandlers(forest); len(handlers) > 0 {
		lines = append(lines, "// event handlers")
		for _, h := range handlers {
			lines = append(lines, h, "")
		}
	}
	return strings.Join(lines, "\n")
}

func hasNavigation(forest []*tree.TreeNode) bool {
	found := false
	tree.Walk(forest, func(tn *tree.TreeNode, _ int) bool {
		for _, b := range tn.Node.Events.All() {
			if b.Action == model.ActionNavigate {
				found = true
				return false
			}
		}
		return true
	})
	return found
}

// formFields collects distinct field names of form controls in tree
// order: props.name, else props.placeholder, else the node id.
func formFields(forest []*tree.TreeNode) []string {
	var fields []string
	seen := make(map[string]bool)
	tree.Walk(forest, func(tn *tree.TreeNode, _ int) bool {
		n := tn.Node
		if !formTypes[n.Type] {
			return true
		}
		name := n.ID
		for _, key := range []string{"name", "placeholder"} {
			if v, ok := n.Props.Get(key); ok && model.Truthy(v) {
				name = model.Text(v)
				break
			}
		}
		if name != "" && !seen[name] {
			seen[name] = true
			fields = append(fields, name)
		}
		return true
	})
	return fields
}

// eventHandlers emits one function per distinct handler name; the first
// binding that produces a name decides its body.
func eventHandlers(forest []*tree.TreeNode) []string {
	var handlers []string
	seen := make(map[string]bool)
	tree.Walk(forest, func(tn *tree.TreeNode, _ int) bool {
		for event, b := range tn.Node.Events.All() {
			if b.Action == "" {
				continue
			}
			name := handlerName(event)
			if seen[name] {
				continue
			}
			seen[name] = true
			handlers = append(handlers, handlerBody(name, event, b))
		}
		return true
	})
	return handlers
}

func handlerBody(name, event string, b model.EventBinding) string {
	head := "const " + name + " = () => {\n"
	switch b.Action {
	case model.ActionNavigate:
		if path := b.Params.GetString("path"); path != "" {
			return head + "  router.push(" + jsString(path) + ")\n}"
		}
	case model.ActionToggleVisibility:
		if target := b.Params.GetString("targetId"); target != "" {
			return head +
				"  // toggle component visibility\n" +
				"  console.log(" + jsString("Toggle component: "+target) + ")\n}"
		}
	case model.ActionCustomCode:
		if code := b.Params.GetString("code"); code != "" {
			lines := strings.Split(code, "\n")
			for i, l := range lines {
				lines[i] = "  " + l
			}
			return head + strings.Join(lines, "\n") + "\n}"
		}
	}
	return head + "  console.log(" + jsString(event+" triggered") + ")\n}"
}
