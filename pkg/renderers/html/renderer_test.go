package html_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"regexp"
	"strings"
	"testing"
	"testing/fstest"

	theme "github.com/goliatone/go-theme"
	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-genui/pkg/model"
	"github.com/goliatone/go-genui/pkg/render"
	"github.com/goliatone/go-genui/pkg/renderers/html"
	"github.com/goliatone/go-genui/pkg/renderers/html/components"
	"github.com/goliatone/go-genui/pkg/testsupport"
)

func newRenderer(t *testing.T, opts ...html.Option) (*html.Renderer, *bytes.Buffer) {
	t.Helper()

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	renderer, err := html.New(append([]html.Option{html.WithLogger(logger)}, opts...)...)
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	return renderer, &logs
}

func renderString(t *testing.T, renderer *html.Renderer, nodes []model.Node, opts render.RenderOptions) string {
	t.Helper()

	out, err := renderer.Render(testsupport.Context(), nodes, opts)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	return string(out)
}

func TestRenderUnknownTypeFallsBackWithoutStoppingSiblings(t *testing.T) {
	renderer, logs := newRenderer(t)
	nodes := testsupport.MustParseNodes(t, `[
		{"type":"does-not-exist","props":{"x":1}},
		{"type":"badge","children":"ok"}
	]`)

	stats := &render.Stats{}
	out := renderString(t, renderer, nodes, render.RenderOptions{Stats: stats})

	testsupport.AssertContainsInOrder(t, out,
		`genui-placeholder-unknown`,
		`Unknown component: does-not-exist`,
		`<div class="genui-node" data-component="badge" data-key="1"><span class="genui-badge genui-badge-default">ok</span></div>`,
	)
	if stats.Unknown != 1 || !stats.Degraded() {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if diff := cmp.Diff([]string{"does-not-exist"}, stats.UnknownTypes); diff != "" {
		t.Fatalf("unknown types mismatch (-want +got):\n%s", diff)
	}
	if !strings.Contains(logs.String(), "unknown component") {
		t.Fatalf("expected warning log, got %s", logs.String())
	}
}

func TestRenderNodeEmptyInputs(t *testing.T) {
	renderer, _ := newRenderer(t)

	var nilNode *model.Node
	for _, value := range []any{nil, "", nilNode} {
		out, err := renderer.RenderNode(testsupport.Context(), value, render.RenderOptions{})
		if err != nil {
			t.Fatalf("render %#v: %v", value, err)
		}
		if out != "" {
			t.Fatalf("expected empty output for %#v, got %q", value, out)
		}
	}
}

func TestRenderNodeStringIsEscapedText(t *testing.T) {
	renderer, _ := newRenderer(t)

	out, err := renderer.RenderNode(testsupport.Context(), "<b>hi</b>", render.RenderOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if out != "&lt;b&gt;hi&lt;/b&gt;" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestRenderNodeAcceptsMaps(t *testing.T) {
	renderer, _ := newRenderer(t)

	out, err := renderer.RenderNode(testsupport.Context(), map[string]any{
		"type":     "badge",
		"children": "from map",
	}, render.RenderOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(out, ">from map</span>") {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestRenderMixedChildrenInOrder(t *testing.T) {
	renderer, _ := newRenderer(t)
	nodes := testsupport.MustParseNodes(t, `[{
		"type":"container",
		"children":[
			{"type":"text","children":"first"},
			"literal string",
			{"type":"icon","props":{"name":"star"}}
		]
	}]`)

	out := renderString(t, renderer, nodes, render.RenderOptions{})
	testsupport.AssertContainsInOrder(t, out,
		`<div class="genui-container`,
		`data-component="text" data-key="0"`,
		`first`,
		`literal string`,
		`data-component="icon" data-key="2"`,
		`data-icon="star"`,
	)
	if strings.Contains(out, `data-key="1"`) {
		t.Fatalf("literal text should not be wrapped as a component: %s", out)
	}
}

var keyPattern = regexp.MustCompile(`data-key="([^"]*)"`)

func keys(out string) []string {
	var found []string
	for _, match := range keyPattern.FindAllStringSubmatch(out, -1) {
		found = append(found, match[1])
	}
	return found
}

func TestRenderKeysAreStable(t *testing.T) {
	renderer, _ := newRenderer(t)
	nodes := testsupport.MustParseNodes(t, `[{
		"type":"grid",
		"id":"dash",
		"children":[
			{"type":"badge","id":"status","children":"up"},
			{"type":"badge","children":"anon"},
			{"type":"divider"}
		]
	}]`)

	first := keys(renderString(t, renderer, nodes, render.RenderOptions{}))
	second := keys(renderString(t, renderer, nodes, render.RenderOptions{}))

	want := []string{"dash", "status", "1", "2"}
	if diff := cmp.Diff(want, first); diff != "" {
		t.Fatalf("keys mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("keys changed between renders (-first +second):\n%s", diff)
	}
}

func TestRenderTruncatesPastMaxDepth(t *testing.T) {
	renderer, _ := newRenderer(t)
	nodes := testsupport.MustParseNodes(t, `[{
		"type":"container",
		"children":[{"type":"container","children":[{"type":"badge","children":"innermost"}]}]
	}]`)

	stats := &render.Stats{}
	out := renderString(t, renderer, nodes, render.RenderOptions{MaxDepth: 2, Stats: stats})

	if !strings.Contains(out, "genui-placeholder-truncated") {
		t.Fatalf("expected truncation placeholder: %s", out)
	}
	if strings.Contains(out, "innermost") {
		t.Fatalf("node past the limit rendered: %s", out)
	}
	if stats.Truncated != 1 || stats.Nodes != 2 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestRenderDefaultDepthHandlesDeepTrees(t *testing.T) {
	renderer, _ := newRenderer(t)

	node := model.Node{Type: "badge", Children: model.TextContent("leaf")}
	for range 100 {
		node = model.Node{Type: "container", Children: model.Sequence(model.NodeChild(node))}
	}

	stats := &render.Stats{}
	out := renderString(t, renderer, []model.Node{node}, render.RenderOptions{Stats: stats})
	if !strings.Contains(out, "genui-placeholder-truncated") {
		t.Fatalf("expected truncation for a 101-level tree")
	}
	if stats.Nodes != render.DefaultMaxDepth {
		t.Fatalf("expected %d rendered nodes, got %d", render.DefaultMaxDepth, stats.Nodes)
	}
}

func TestRenderChildPolicyIsAdvisoryByDefault(t *testing.T) {
	renderer, _ := newRenderer(t)
	nodes := testsupport.MustParseNodes(t, `[{
		"type":"tabs",
		"children":[{"type":"badge","children":"stray"}]
	}]`)

	advisory := renderString(t, renderer, nodes, render.RenderOptions{})
	if !strings.Contains(advisory, ">stray</span>") {
		t.Fatalf("advisory mode should render the child: %s", advisory)
	}

	stats := &render.Stats{}
	enforced := renderString(t, renderer, nodes, render.RenderOptions{EnforceChildPolicy: true, Stats: stats})
	if !strings.Contains(enforced, "Component badge is not allowed inside tabs") {
		t.Fatalf("enforced mode should replace the child: %s", enforced)
	}
	if stats.Disallowed != 1 {
		t.Fatalf("expected one disallowed child, got %+v", stats)
	}
}

func TestRenderDropsUndeclaredPropsAndEscapes(t *testing.T) {
	renderer, _ := newRenderer(t)
	nodes := testsupport.MustParseNodes(t, `[{
		"type":"kpi-card",
		"props":{"title":"<script>x</script>","value":42,"onmouseover":"steal()"}
	}]`)

	stats := &render.Stats{}
	out := renderString(t, renderer, nodes, render.RenderOptions{Stats: stats})

	if strings.Contains(out, "<script>") || strings.Contains(out, "steal()") {
		t.Fatalf("unsafe content leaked: %s", out)
	}
	if !strings.Contains(out, `<div class="genui-kpi-value">42</div>`) {
		t.Fatalf("expected coerced value: %s", out)
	}
	if stats.DroppedProps != 1 {
		t.Fatalf("expected one dropped prop, got %+v", stats)
	}
}

func TestRenderMissingTypeIsMalformed(t *testing.T) {
	renderer, _ := newRenderer(t)
	nodes := []model.Node{{Props: map[string]any{"a": "b"}}, {Type: "divider"}}

	stats := &render.Stats{}
	out := renderString(t, renderer, nodes, render.RenderOptions{Stats: stats})
	testsupport.AssertContainsInOrder(t, out, "Malformed component: missing type", `<hr class="genui-divider">`)
	if stats.Malformed != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestRenderFailureBecomesPlaceholder(t *testing.T) {
	registry := components.NewDefaultRegistry()
	registry.MustRegister("badge", components.Descriptor{
		Renderer: func(*bytes.Buffer, model.Node, components.ComponentData) error {
			return errors.New("boom")
		},
	})
	renderer, _ := newRenderer(t, html.WithComponentRegistry(registry))

	stats := &render.Stats{}
	out := renderString(t, renderer, []model.Node{{Type: "badge"}, {Type: "divider"}}, render.RenderOptions{Stats: stats})
	testsupport.AssertContainsInOrder(t, out, "Could not render component: badge", `genui-divider`)
	if stats.Failed != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestRenderItemsPropRecurses(t *testing.T) {
	renderer, _ := newRenderer(t)
	nodes := testsupport.MustParseNodes(t, `[{
		"type":"stack",
		"props":{"items":[{"type":"badge","id":"b1","children":"in items"},"tail",{"type":"nope"}]}
	}]`)

	out := renderString(t, renderer, nodes, render.RenderOptions{})
	testsupport.AssertContainsInOrder(t, out,
		`data-component="badge" data-key="b1"`,
		`in items`,
		`tail`,
		`Unknown component: nope`,
	)
}

func TestRenderChildKeysPointerDescriptorsByID(t *testing.T) {
	registry := components.NewDefaultRegistry()
	registry.MustRegister("stack", components.Descriptor{
		Renderer: func(buf *bytes.Buffer, _ model.Node, data components.ComponentData) error {
			children := []any{
				&model.Node{ID: "ptr", Type: "badge", Children: model.TextContent("pointer")},
				&model.Node{Type: "divider"},
				(*model.Node)(nil),
			}
			for _, child := range children {
				out, err := data.RenderChild(child)
				if err != nil {
					return err
				}
				buf.WriteString(out)
			}
			return nil
		},
	})
	renderer, _ := newRenderer(t, html.WithComponentRegistry(registry))
	nodes := []model.Node{{ID: "host", Type: "stack"}}

	first := renderString(t, renderer, nodes, render.RenderOptions{})
	testsupport.AssertContainsInOrder(t, first,
		`data-key="ptr"`,
		`pointer`,
		`data-key="host.items.1"`,
	)
	if second := renderString(t, renderer, nodes, render.RenderOptions{}); second != first {
		t.Fatalf("output changed between renders:\n%s\n%s", first, second)
	}
}

func TestRenderThemeRoot(t *testing.T) {
	renderer, _ := newRenderer(t)
	cfg := &theme.RendererConfig{
		Theme:   "acme",
		Variant: "dark",
		CSSVars: map[string]string{
			"--primary": "#123456",
			"--radius":  "4px",
			"color":     "red",
			"--evil":    "red;}body{display:none",
		},
	}

	out := renderString(t, renderer, []model.Node{{Type: "divider"}}, render.RenderOptions{Theme: cfg})
	want := `<div class="genui-root" data-theme="acme" data-variant="dark" style="--primary:#123456;--radius:4px">`
	if !strings.HasPrefix(out, want) {
		t.Fatalf("unexpected root:\n got %s\nwant prefix %s", out, want)
	}
}

func TestRenderThemePartialOverride(t *testing.T) {
	files := fstest.MapFS{
		"components/badge.tmpl":   {Data: []byte(`<span class="genui-badge">{{ text }}</span>`)},
		"themes/acme/badge.tmpl":  {Data: []byte(`<mark class="acme">{{ text }}</mark>`)},
		"components/divider.tmpl": {Data: []byte(`<hr>`)},
	}
	renderer, _ := newRenderer(t, html.WithTemplatesFS(files))
	cfg := &theme.RendererConfig{
		Partials: map[string]string{components.PartialKey("badge"): "themes/acme/badge"},
	}

	out := renderString(t, renderer, []model.Node{{Type: "badge", Children: model.TextContent("hi")}}, render.RenderOptions{Theme: cfg})
	if !strings.Contains(out, `<mark class="acme">hi</mark>`) {
		t.Fatalf("expected theme partial: %s", out)
	}
}

func TestRenderDocument(t *testing.T) {
	renderer, _ := newRenderer(t, html.WithTitle("Dashboard"))
	nodes := testsupport.MustParseNodes(t, `[
		{"type":"tabs","children":[{"type":"tab","props":{"label":"A"}}]},
		{"type":"tabs","children":[{"type":"tab","props":{"label":"B"}}]}
	]`)
	cfg := &theme.RendererConfig{
		AssetURL: func(key string) string { return "/themes/acme/" + key + ".css" },
	}

	out := renderString(t, renderer, nodes, render.RenderOptions{Document: true, Theme: cfg})
	testsupport.AssertContainsInOrder(t, out,
		"<!DOCTYPE html>",
		"<title>Dashboard</title>",
		".genui-root",
		`<link rel="stylesheet" href="/themes/acme/stylesheet.css">`,
		`<div class="genui-root">`,
		"<script>",
		"</html>",
	)
	if strings.Count(out, "<script>") != 1 {
		t.Fatalf("expected tabs script once: %s", out)
	}
}

func TestRenderHonoursCancellation(t *testing.T) {
	renderer, _ := newRenderer(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := renderer.Render(ctx, []model.Node{{Type: "divider"}}, render.RenderOptions{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestRendererMetadata(t *testing.T) {
	renderer, _ := newRenderer(t)
	if renderer.Name() != "html" {
		t.Fatalf("unexpected name %q", renderer.Name())
	}
	if !strings.HasPrefix(renderer.ContentType(), "text/html") {
		t.Fatalf("unexpected content type %q", renderer.ContentType())
	}
	if html.Stylesheet() == "" {
		t.Fatalf("embedded stylesheet missing")
	}
}
