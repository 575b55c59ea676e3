package html

import (
	stdhtml "html"
	"maps"
	"regexp"
	"slices"
	"strings"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-genui/pkg/renderers/html/components"
)

type placeholderKind string

const (
	kindUnknown    placeholderKind = "unknown"
	kindTruncated  placeholderKind = "truncated"
	kindDisallowed placeholderKind = "disallowed"
	kindMalformed  placeholderKind = "malformed"
	kindFailed     placeholderKind = "failed"
)

// placeholder renders the visible stand-in for a node that could not render.
func placeholder(kind placeholderKind, typ, key, message string) string {
	var out strings.Builder
	out.WriteString(`<div class="genui-placeholder genui-placeholder-`)
	out.WriteString(string(kind))
	out.WriteString(`" role="note" data-key="`)
	out.WriteString(stdhtml.EscapeString(key))
	out.WriteString(`"`)
	if typ != "" {
		out.WriteString(` data-component="`)
		out.WriteString(stdhtml.EscapeString(typ))
		out.WriteString(`"`)
	}
	out.WriteString(`>`)
	out.WriteString(stdhtml.EscapeString(message))
	out.WriteString(`</div>`)
	return out.String()
}

var cssVarName = regexp.MustCompile(`^--[A-Za-z0-9_-]+$`)

// inlineVars formats custom properties for a style attribute, sorted by name.
// Names that are not custom properties and values that could close the
// declaration are skipped.
func inlineVars(vars map[string]string) string {
	if len(vars) == 0 {
		return ""
	}
	parts := make([]string, 0, len(vars))
	for _, name := range slices.Sorted(maps.Keys(vars)) {
		value := strings.TrimSpace(vars[name])
		if !cssVarName.MatchString(name) || value == "" || strings.ContainsAny(value, ";{}<>") {
			continue
		}
		parts = append(parts, name+":"+value)
	}
	return strings.Join(parts, ";")
}

func (r *Renderer) document(cfg *theme.RendererConfig, fragment string, types []string) string {
	stylesheets, scripts := r.registry.Assets(types)
	stylesheets = append(slices.Clone(r.stylesheets), stylesheets...)
	if cfg != nil && cfg.AssetURL != nil {
		if href := strings.TrimSpace(cfg.AssetURL("stylesheet")); href != "" {
			stylesheets = append(stylesheets, href)
		}
	}

	var out strings.Builder
	out.WriteString("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n")
	out.WriteString("<meta charset=\"utf-8\">\n")
	out.WriteString("<meta name=\"viewport\" content=\"width=device-width, initial-scale=1\">\n")
	out.WriteString("<title>" + stdhtml.EscapeString(r.title) + "</title>\n")
	out.WriteString("<style>\n" + Stylesheet() + "</style>\n")
	for _, href := range stylesheets {
		out.WriteString(`<link rel="stylesheet" href="` + stdhtml.EscapeString(href) + "\">\n")
	}
	out.WriteString("</head>\n<body>\n")
	out.WriteString(fragment)
	out.WriteString("\n")
	for _, script := range scripts {
		out.WriteString(scriptTag(script))
		out.WriteString("\n")
	}
	out.WriteString("</body>\n</html>\n")
	return out.String()
}

func scriptTag(script components.Script) string {
	var attrs strings.Builder
	if script.Module {
		attrs.WriteString(` type="module"`)
	}
	if script.Defer {
		attrs.WriteString(` defer`)
	}
	if script.Src != "" {
		return `<script src="` + stdhtml.EscapeString(script.Src) + `"` + attrs.String() + `></script>`
	}
	return `<script` + attrs.String() + `>` + script.Inline + `</script>`
}
