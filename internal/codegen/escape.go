package codegen

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#039;",
)

// escapeHTML escapes inline element text. Text is NFC-normalized first so
// visually identical input produces identical output.
func escapeHTML(s string) string {
	return htmlEscaper.Replace(norm.NFC.String(s))
}

// escapeAttr escapes a double-quoted attribute value.
func escapeAttr(s string) string {
	return strings.ReplaceAll(s, `"`, "&quot;")
}

var jsEscaper = strings.NewReplacer(
	`\`, `\\`,
	"'", `\'`,
	"\n", `\n`,
	"\r", `\r`,
)

// jsString renders s as a single-quoted JavaScript string literal.
func jsString(s string) string {
	return "'" + jsEscaper.Replace(s) + "'"
}

// kebab rewrites camelCase to kebab-case: backgroundColor -> background-color.
func kebab(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= 'A' && r <= 'Z' {
			b.WriteByte('-')
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// handlerName builds the script identifier bound to an event:
// click -> handleClick, row-click -> handleRowClick, update:modelValue ->
// handleUpdateModelValue.
func handlerName(event string) string {
	var b strings.Builder
	b.WriteString("handle")
	upper := true
	for _, r := range event {
		switch {
		case r == '-' || r == ':' || r == '.' || r == '_' || r == ' ':
			upper = true
		case !isIdentRune(r):
			// Dropped.
		case upper:
			b.WriteRune(unicode.ToUpper(r))
			upper = false
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func isIdentRune(r rune) bool {
	return r == '$' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// jsKey renders an object key, quoting it when it is not an identifier.
func jsKey(s string) string {
	if s == "" {
		return "''"
	}
	for i, r := range s {
		if !isIdentRune(r) && r != '_' {
			return jsString(s)
		}
		if i == 0 && unicode.IsDigit(r) {
			return jsString(s)
		}
	}
	return s
}
