package orchestrator

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	theme "github.com/goliatone/go-theme"
	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-genui/pkg/designer"
	"github.com/goliatone/go-genui/pkg/gridstore"
	"github.com/goliatone/go-genui/pkg/llm"
	"github.com/goliatone/go-genui/pkg/metrics"
	"github.com/goliatone/go-genui/pkg/model"
	"github.com/goliatone/go-genui/pkg/render"
	"github.com/goliatone/go-genui/pkg/testsupport"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type captureRenderer struct {
	nodes   []model.Node
	options render.RenderOptions
}

func (r *captureRenderer) Name() string        { return "capture" }
func (r *captureRenderer) ContentType() string { return "text/plain" }

func (r *captureRenderer) Render(_ context.Context, nodes []model.Node, opts render.RenderOptions) ([]byte, error) {
	r.nodes = nodes
	r.options = opts
	if opts.Stats != nil {
		opts.Stats.Nodes = len(nodes)
	}
	var types []string
	for _, node := range nodes {
		types = append(types, node.Type)
	}
	return []byte(strings.Join(types, ",")), nil
}

func newCaptureOrchestrator(t *testing.T, options ...Option) (*Orchestrator, *captureRenderer) {
	t.Helper()
	renderer := &captureRenderer{}
	base := []Option{
		WithLogger(quietLogger()),
		WithRegistry(render.MustNewRegistry(renderer)),
		WithDefaultRenderer(renderer.Name()),
	}
	orch := New(append(base, options...)...)
	if err := orch.Err(); err != nil {
		t.Fatalf("new orchestrator: %v", err)
	}
	return orch, renderer
}

func TestGenerateExtractsFromModelOutput(t *testing.T) {
	generator := llm.NewStatic("Here you go:\n```json\n[{\"type\":\"kpi-card\",\"props\":{\"title\":\"Revenue\",\"value\":\"$1.2M\"}}]\n```\nand {\"type\":\"Bad Type\"}")
	orch, renderer := newCaptureOrchestrator(t, WithGenerator(generator), WithModel("test-model"))

	result, err := orch.Generate(context.Background(), Request{Prompt: "show revenue"})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if string(result.Output) != "kpi-card" || result.Fallback {
		t.Fatalf("unexpected result: %q fallback=%v", result.Output, result.Fallback)
	}
	if result.RequestID == "" || result.Renderer != "capture" || result.ContentType != "text/plain" {
		t.Fatalf("unexpected metadata: %+v", result)
	}
	if result.Extraction.Accepted != 1 || result.Extraction.Dropped != 1 {
		t.Fatalf("unexpected extraction report: %+v", result.Extraction)
	}
	if len(renderer.nodes) != 1 || result.Stats.Nodes != 1 {
		t.Fatalf("renderer saw %d nodes, stats %+v", len(renderer.nodes), result.Stats)
	}
	if renderer.options.MaxDepth != 0 || renderer.options.Theme != nil {
		t.Fatalf("unexpected render options: %+v", renderer.options)
	}

	requests := generator.Requests()
	if len(requests) != 1 {
		t.Fatalf("expected one generator call, got %d", len(requests))
	}
	if requests[0].User != "show revenue" || requests[0].Model != "test-model" {
		t.Fatalf("unexpected generator request: %+v", requests[0])
	}
	if !strings.Contains(requests[0].System, `"kpi-card"`) {
		t.Fatalf("system prompt missing catalogue")
	}
}

func TestGenerateSubstitutesErrorCard(t *testing.T) {
	failing := llm.Func(func(context.Context, llm.Request) (string, error) {
		return "", errors.New("upstream 503")
	})
	m := metrics.New(false)
	store := gridstore.NewMemory()
	orch, renderer := newCaptureOrchestrator(t, WithGenerator(failing), WithMetrics(m), WithStore(store))

	result, err := orch.Generate(context.Background(), Request{Prompt: "hi", Session: "s1"})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !result.Fallback || len(renderer.nodes) != 1 {
		t.Fatalf("expected fallback render, got %+v", result)
	}
	card := renderer.nodes[0]
	if card.Type != "info-card" || card.Props["variant"] != "error" || card.Props["message"] != "upstream 503" {
		t.Fatalf("unexpected fallback node: %+v", card)
	}
	if _, err := store.Load(context.Background(), "s1"); !errors.Is(err, gridstore.ErrNotFound) {
		t.Fatalf("fallback should not be saved to the session grid, got %v", err)
	}
}

func TestGenerateEmptyResponseUsesDefaultMessage(t *testing.T) {
	orch, renderer := newCaptureOrchestrator(t, WithGenerator(llm.NewStatic("   ")))

	result, err := orch.Generate(context.Background(), Request{Prompt: "hi"})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !result.Fallback {
		t.Fatalf("expected fallback")
	}
	if msg, _ := renderer.nodes[0].Props["message"].(string); msg == "" {
		t.Fatalf("expected default message")
	}
}

func TestGenerateWithTextSkipsGenerator(t *testing.T) {
	orch, renderer := newCaptureOrchestrator(t)

	result, err := orch.Generate(context.Background(), Request{Text: `[{"type":"badge","children":"x"},{"type":"divider"}]`})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if string(result.Output) != "badge,divider" || len(renderer.nodes) != 2 {
		t.Fatalf("unexpected output %q", result.Output)
	}
}

func TestGenerateProseBecomesMarkdown(t *testing.T) {
	orch, renderer := newCaptureOrchestrator(t)

	if _, err := orch.Generate(context.Background(), Request{Text: "  Nothing to chart yet.  "}); err != nil {
		t.Fatalf("generate: %v", err)
	}
	want := []model.Node{{Type: "markdown", Props: map[string]any{"content": "Nothing to chart yet."}}}
	if diff := cmp.Diff(want, renderer.nodes); diff != "" {
		t.Fatalf("nodes mismatch (-want +got):\n%s", diff)
	}
}

func TestGenerateRequiresInput(t *testing.T) {
	orch, _ := newCaptureOrchestrator(t)
	if _, err := orch.Generate(context.Background(), Request{}); err == nil {
		t.Fatalf("expected error for empty request")
	}
	if _, err := orch.Generate(context.Background(), Request{Prompt: "hi"}); err == nil {
		t.Fatalf("expected error without generator")
	}
}

func TestGenerateCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	generator := llm.Func(func(context.Context, llm.Request) (string, error) {
		cancel()
		return "", context.Canceled
	})
	orch, _ := newCaptureOrchestrator(t, WithGenerator(generator))

	if _, err := orch.Generate(ctx, Request{Prompt: "hi"}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestSessionGridMergesAndPersists(t *testing.T) {
	ctx := context.Background()
	store := gridstore.NewMemory()
	generator := llm.NewStatic(`{"id":"status","type":"badge","children":"green"} {"id":"chart","type":"chart-card"}`)
	orch, renderer := newCaptureOrchestrator(t, WithGenerator(generator), WithStore(store))

	seed := testsupport.MustParseNodes(t, `[{"id":"kpi","type":"kpi-card"},{"id":"status","type":"badge","children":"red"}]`)
	if err := store.Save(ctx, "s1", seed); err != nil {
		t.Fatalf("seed: %v", err)
	}

	result, err := orch.Generate(ctx, Request{Prompt: "update status", Session: "s1"})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if string(result.Output) != "kpi-card,badge,chart-card" {
		t.Fatalf("unexpected grid %q", result.Output)
	}
	if renderer.nodes[1].Children.Text != "green" {
		t.Fatalf("status badge not replaced: %+v", renderer.nodes[1])
	}
	if !strings.Contains(generator.Requests()[0].System, `"red"`) {
		t.Fatalf("stored grid not sent as prompt context")
	}

	saved, err := orch.SessionGrid(ctx, "s1")
	if err != nil || len(saved) != 3 {
		t.Fatalf("unexpected saved grid: %+v, %v", saved, err)
	}

	if err := orch.ResetSession(ctx, "s1"); err != nil {
		t.Fatalf("reset: %v", err)
	}
	saved, err = orch.SessionGrid(ctx, "s1")
	if err != nil || len(saved) != 0 {
		t.Fatalf("expected empty grid after reset: %+v, %v", saved, err)
	}
}

func TestUnknownRendererLeavesSessionUntouched(t *testing.T) {
	ctx := context.Background()
	store := gridstore.NewMemory()
	generator := llm.NewStatic(`{"id":"a","type":"divider"}`)
	orch, _ := newCaptureOrchestrator(t, WithGenerator(generator), WithStore(store))

	_, err := orch.Generate(ctx, Request{Prompt: "add a divider", Session: "s1", Renderer: "bogus"})
	if !errors.Is(err, render.ErrRendererNotFound) {
		t.Fatalf("expected ErrRendererNotFound, got %v", err)
	}
	if _, err := store.Load(ctx, "s1"); !errors.Is(err, gridstore.ErrNotFound) {
		t.Fatalf("session grid written on failed request: %v", err)
	}
	if got := len(generator.Requests()); got != 0 {
		t.Fatalf("generator called %d times for a request that cannot render", got)
	}
}

type brokenRenderer struct{}

func (brokenRenderer) Name() string        { return "broken" }
func (brokenRenderer) ContentType() string { return "text/plain" }

func (brokenRenderer) Render(context.Context, []model.Node, render.RenderOptions) ([]byte, error) {
	return nil, errors.New("disk full")
}

func TestRenderFailureLeavesSessionUntouched(t *testing.T) {
	ctx := context.Background()
	store := gridstore.NewMemory()
	seed := testsupport.MustParseNodes(t, `[{"id":"kpi","type":"kpi-card"}]`)
	if err := store.Save(ctx, "s1", seed); err != nil {
		t.Fatalf("seed: %v", err)
	}
	orch := New(
		WithLogger(quietLogger()),
		WithRegistry(render.MustNewRegistry(brokenRenderer{})),
		WithDefaultRenderer("broken"),
		WithGenerator(llm.NewStatic(`{"id":"b","type":"divider"}`)),
		WithStore(store),
	)
	if err := orch.Err(); err != nil {
		t.Fatalf("new orchestrator: %v", err)
	}

	if _, err := orch.Generate(ctx, Request{Prompt: "add", Session: "s1"}); err == nil {
		t.Fatalf("expected render error")
	}
	saved, err := store.Load(ctx, "s1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	var ids []string
	for _, node := range saved {
		ids = append(ids, node.ID)
	}
	if diff := cmp.Diff([]string{"kpi"}, ids); diff != "" {
		t.Fatalf("session grid changed (-want +got):\n%s", diff)
	}
}

func TestExplicitContextMerge(t *testing.T) {
	orch, _ := newCaptureOrchestrator(t)
	current := []model.Node{{ID: "a", Type: "badge"}}

	result, err := orch.Generate(context.Background(), Request{Text: `{"type":"divider"}`, Context: current})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if string(result.Output) != "divider" {
		t.Fatalf("context should not merge unless asked: %q", result.Output)
	}

	result, err = orch.Generate(context.Background(), Request{Text: `{"type":"divider"}`, Context: current, MergeContext: true})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if string(result.Output) != "badge,divider" {
		t.Fatalf("unexpected merged output %q", result.Output)
	}
}

func TestTransformerRunsBeforeRender(t *testing.T) {
	preset, err := NewJSONPresetTransformer([]byte(`{
		"aliases": {"chart": "chart-card"},
		"defaults": {"chart-card": {"chartType": "line"}},
		"nodes": {"rev": {"props": {"title": "Revenue"}}}
	}`))
	if err != nil {
		t.Fatalf("preset: %v", err)
	}
	called := false
	counter := TransformerFunc(func(_ context.Context, nodes []model.Node) ([]model.Node, error) {
		called = true
		return nodes, nil
	})
	orch, renderer := newCaptureOrchestrator(t, WithTransformer(Chain(preset, counter)))

	_, err = orch.Generate(context.Background(), Request{
		Text: `{"type":"card","children":[{"id":"rev","type":"chart","props":{"chartType":"bar"}},{"type":"chart"}]}`,
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !called {
		t.Fatalf("chained transformer not invoked")
	}
	children := renderer.nodes[0].Children.Items
	first, second := children[0].Node, children[1].Node
	if first.Type != "chart-card" || first.Props["chartType"] != "bar" || first.Props["title"] != "Revenue" {
		t.Fatalf("unexpected first chart: %+v", first)
	}
	if second.Type != "chart-card" || second.Props["chartType"] != "line" {
		t.Fatalf("unexpected second chart: %+v", second)
	}
}

func TestRenderPassesThemeConfig(t *testing.T) {
	manifest := &theme.Manifest{
		Name:      "acme",
		Version:   "1.0.0",
		Tokens:    map[string]string{"brand": "#123456"},
		Templates: map[string]string{"genui.badge": "themes/acme/badge"},
		Variants: map[string]theme.Variant{
			"dark": {Tokens: map[string]string{"brand": "#654321"}},
		},
	}
	selector, err := designer.NewSelector("acme", "", manifest)
	if err != nil {
		t.Fatalf("selector: %v", err)
	}
	orch, renderer := newCaptureOrchestrator(t,
		WithThemeSelector(selector),
		WithThemeFallbacks(map[string]string{"genui.divider": "fallback/divider"}),
		WithMaxDepth(5),
		WithEnforceChildPolicy(true),
	)

	if _, err := orch.Render(context.Background(), RenderRequest{
		Nodes:        []model.Node{{Type: "badge"}},
		ThemeVariant: "dark",
		Document:     true,
	}); err != nil {
		t.Fatalf("render: %v", err)
	}

	opts := renderer.options
	if opts.Theme == nil || opts.Theme.Theme != "acme" || opts.Theme.Variant != "dark" {
		t.Fatalf("theme not resolved: %+v", opts.Theme)
	}
	if opts.Theme.CSSVars["--brand"] != "#654321" {
		t.Fatalf("variant tokens not applied: %v", opts.Theme.CSSVars)
	}
	if opts.Theme.Partials["genui.divider"] != "fallback/divider" || opts.Theme.Partials["genui.badge"] != "themes/acme/badge" {
		t.Fatalf("unexpected partials: %v", opts.Theme.Partials)
	}
	if opts.MaxDepth != 5 || !opts.EnforceChildPolicy || !opts.Document {
		t.Fatalf("unexpected options: %+v", opts)
	}

	if _, err := orch.Render(context.Background(), RenderRequest{ThemeName: "missing"}); err != nil {
		t.Fatalf("unknown theme should not fail the render: %v", err)
	}
	if renderer.options.Theme != nil {
		t.Fatalf("unknown theme should render unthemed")
	}
}

func TestDefaultRegistryRendersHTMLAndText(t *testing.T) {
	orch := New(WithLogger(quietLogger()))
	if err := orch.Err(); err != nil {
		t.Fatalf("new: %v", err)
	}
	nodes := []model.Node{{Type: "heading", Props: map[string]any{"level": float64(2)}, Children: model.TextContent("Hello")}}

	htmlOut, err := orch.Render(context.Background(), RenderRequest{Nodes: nodes})
	if err != nil {
		t.Fatalf("render html: %v", err)
	}
	if htmlOut.Renderer != "html" || !strings.Contains(string(htmlOut.Output), "<h2") {
		t.Fatalf("unexpected html output: %s", htmlOut.Output)
	}

	textOut, err := orch.Render(context.Background(), RenderRequest{Nodes: nodes, Renderer: "text"})
	if err != nil {
		t.Fatalf("render text: %v", err)
	}
	if string(textOut.Output) != "## Hello\n" {
		t.Fatalf("unexpected text output: %q", textOut.Output)
	}

	if _, err := orch.Render(context.Background(), RenderRequest{Renderer: "pdf"}); err == nil {
		t.Fatalf("expected unknown renderer error")
	}
}
