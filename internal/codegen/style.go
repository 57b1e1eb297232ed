package codegen

import (
	"strings"

	"github.com/professor-lee/FalseClose/internal/model"
)

// generateStyle emits the page container rule. It is empty only when there
// are no global style keys; keys whose values are all empty still yield an
// empty rule.
func generateStyle(global model.Map) string {
	if global.Len() == 0 {
		return ""
	}
	lines := []string{"/* global styles */", ".page-container {"}
	for key, v := range global.All() {
		if model.Truthy(v) {
			lines = append(lines, "  "+kebab(key)+": "+model.Text(v)+";")
		}
	}
	lines = append(lines, "}", "")
	return strings.Join(lines, "\n")
}
