package components

import (
	"bytes"
	"fmt"
	"maps"
	"strings"

	"github.com/goliatone/go-genui/pkg/model"
)

const (
	templatePrefix = "components/"
	partialPrefix  = "genui."
)

// PartialKey is the theme partial key that overrides the template for typ.
func PartialKey(typ string) string {
	return partialPrefix + normalize(typ)
}

// NewDefaultRegistry returns a registry with a renderer for every built-in
// component type.
func NewDefaultRegistry() *Registry {
	registry := New()

	// layout
	registry.MustRegister("container", Descriptor{Renderer: containerRenderer})
	registry.MustRegister("grid", Descriptor{Renderer: gridRenderer})
	registry.MustRegister("stack", Descriptor{Renderer: stackRenderer})
	registry.MustRegister("card", Descriptor{Renderer: templateComponentRenderer("card", nil)})
	registry.MustRegister("tabs", Descriptor{Renderer: tabsRenderer, Scripts: []Script{tabsScript}})
	registry.MustRegister("tab", Descriptor{Renderer: templateComponentRenderer("tab", nil)})
	registry.MustRegister("divider", Descriptor{Renderer: templateComponentRenderer("divider", nil)})

	// typography
	registry.MustRegister("heading", Descriptor{Renderer: headingRenderer})
	registry.MustRegister("text", Descriptor{Renderer: templateComponentRenderer("text", withText("content"))})
	registry.MustRegister("markdown", Descriptor{Renderer: markdownRenderer})
	registry.MustRegister("code-block", Descriptor{Renderer: templateComponentRenderer("code-block", withText("code"))})

	// input
	registry.MustRegister("button", Descriptor{Renderer: templateComponentRenderer("button", prepareButton)})
	registry.MustRegister("text-input", Descriptor{Renderer: templateComponentRenderer("text-input", nil)})
	registry.MustRegister("select", Descriptor{Renderer: selectRenderer})
	registry.MustRegister("checkbox", Descriptor{Renderer: templateComponentRenderer("checkbox", nil)})

	// display
	registry.MustRegister("badge", Descriptor{Renderer: templateComponentRenderer("badge", withText("label"))})
	registry.MustRegister("icon", Descriptor{Renderer: iconRenderer})
	registry.MustRegister("image", Descriptor{Renderer: templateComponentRenderer("image", prepareImage)})
	registry.MustRegister("list", Descriptor{Renderer: templateComponentRenderer("list", prepareList)})
	registry.MustRegister("table", Descriptor{Renderer: tableRenderer})
	registry.MustRegister("progress", Descriptor{Renderer: templateComponentRenderer("progress", nil)})
	registry.MustRegister("avatar", Descriptor{Renderer: templateComponentRenderer("avatar", prepareAvatar)})

	// chart
	registry.MustRegister("chart-card", Descriptor{Renderer: chartCardRenderer})
	registry.MustRegister("sparkline", Descriptor{Renderer: sparklineRenderer})

	// specialized
	registry.MustRegister("kpi-card", Descriptor{Renderer: templateComponentRenderer("kpi-card", nil)})
	registry.MustRegister("info-card", Descriptor{Renderer: templateComponentRenderer("info-card", withText("message"))})
	registry.MustRegister("stat-group", Descriptor{Renderer: templateComponentRenderer("stat-group", prepareStats)})
	registry.MustRegister("timeline", Descriptor{Renderer: templateComponentRenderer("timeline", prepareTimeline)})

	return registry
}

type preparer func(payload map[string]any, node model.Node, data ComponentData)

// templateComponentRenderer renders typ through components/<typ>.tmpl, or the
// theme partial registered under PartialKey(typ).
func templateComponentRenderer(typ string, prepare preparer) Renderer {
	templateName := templatePrefix + typ
	partialKey := PartialKey(typ)

	return func(buf *bytes.Buffer, node model.Node, data ComponentData) error {
		if data.Template == nil {
			return fmt.Errorf("components: template renderer not configured for %q", templateName)
		}

		resolvedTemplate := templateName
		if candidate := strings.TrimSpace(data.Partials[partialKey]); candidate != "" {
			resolvedTemplate = candidate
		}

		payload := map[string]any{
			"type":     node.Type,
			"id":       node.ID,
			"key":      data.Key,
			"props":    data.Props,
			"text":     data.Text,
			"children": data.ChildrenHTML(),
		}
		if prepare != nil {
			prepare(payload, node, data)
		}

		rendered, err := data.Template.RenderTemplate(resolvedTemplate, payload)
		if err != nil {
			return fmt.Errorf("components: render template %q: %w", resolvedTemplate, err)
		}
		buf.WriteString(strings.TrimSpace(rendered))
		return nil
	}
}

// withText exposes single-string children, falling back to the named prop.
func withText(prop string) preparer {
	return func(payload map[string]any, _ model.Node, data ComponentData) {
		payload["text"] = textOr(data, prop)
	}
}

func prepareButton(payload map[string]any, _ model.Node, data ComponentData) {
	payload["text"] = textOr(data, "label")
	payload["href"] = safeURL(propString(data.Props, "href"))
	payload["variant"] = modifier(propString(data.Props, "variant"), "primary")
}

func prepareImage(payload map[string]any, _ model.Node, data ComponentData) {
	payload["src"] = safeURL(propString(data.Props, "src"))
}

func prepareAvatar(payload map[string]any, _ model.Node, data ComponentData) {
	payload["src"] = safeURL(propString(data.Props, "src"))
}

func prepareList(payload map[string]any, _ model.Node, data ComponentData) {
	items := make([]string, 0)
	for _, item := range propList(data.Props, "items") {
		if item == nil {
			continue
		}
		items = append(items, model.LiteralText(item))
	}
	payload["items"] = items
	childItems := make([]string, 0, len(data.Children))
	for _, child := range data.Children {
		childItems = append(childItems, child.HTML)
	}
	payload["childItems"] = childItems
	payload["tag"] = "ul"
	if propBool(data.Props, "ordered") {
		payload["tag"] = "ol"
	}
}

func prepareStats(payload map[string]any, _ model.Node, data ComponentData) {
	payload["stats"] = propObjects(data.Props, "stats", "label")
}

func prepareTimeline(payload map[string]any, _ model.Node, data ComponentData) {
	source := propObjects(data.Props, "events", "title")
	events := make([]map[string]any, len(source))
	for idx, event := range source {
		copied := maps.Clone(event)
		status, _ := event["status"].(string)
		copied["status"] = modifier(status, "default")
		events[idx] = copied
	}
	payload["events"] = events
}
