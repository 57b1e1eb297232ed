package codegen

const containerTag = "div"

var elementPlusTags = map[string]string{
	"Container": "div",
	"Flex":      "div",
	"Grid":      "div",
	"Card":      "el-card",
	"Button":    "el-button",
	"Text":      "span",
	"Heading":   "h2",
	"Image":     "el-image",
	"Divider":   "el-divider",
	"Link":      "el-link",
	"Input":     "el-input",
	"Select":    "el-select",
	"Checkbox":  "el-checkbox",
	"Radio":     "el-radio",
	"Switch":    "el-switch",
}

var htmlTags = map[string]string{
	"Container": "div",
	"Flex":      "div",
	"Grid":      "div",
	"Card":      "section",
	"Form":      "form",
	"Button":    "button",
	"Text":      "span",
	"Heading":   "h2",
	"Image":     "img",
	"Divider":   "hr",
	"Link":      "a",
	"Video":     "video",
	"Input":     "input",
	"Textarea":  "textarea",
	"Select":    "select",
	"Checkbox":  "input",
	"Radio":     "input",
	"Table":     "table",
}

func tagTable(library string) map[string]string {
	if library == "html" {
		return htmlTags
	}
	return elementPlusTags
}

func tagName(table map[string]string, typeTag string) string {
	if tag, ok := table[typeTag]; ok {
		return tag
	}
	return containerTag
}

// formTypes are bound into the generated formData object.
var formTypes = map[string]bool{
	"Input":      true,
	"Textarea":   true,
	"Select":     true,
	"Checkbox":   true,
	"Radio":      true,
	"Switch":     true,
	"DatePicker": true,
}
