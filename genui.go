// Package genui turns model output containing JSON component descriptors into
// rendered UI. It re-exports the common entry points of the pkg/ tree.
package genui

import (
	"context"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-genui/pkg/extract"
	"github.com/goliatone/go-genui/pkg/model"
	"github.com/goliatone/go-genui/pkg/orchestrator"
	"github.com/goliatone/go-genui/pkg/render"
)

// Node is a component descriptor.
type Node = model.Node

// RenderOptions carries per-call renderer settings.
type RenderOptions = render.RenderOptions

// Stats reports placeholders and dropped props from one render.
type Stats = render.Stats

// NewOrchestrator exposes the orchestrator constructor from the top-level
// module.
func NewOrchestrator(options ...orchestrator.Option) *orchestrator.Orchestrator {
	return orchestrator.New(options...)
}

// Extract returns every component descriptor found in text, in order.
func Extract(text string) []Node {
	return extract.Extract(text)
}

// RenderText extracts descriptors from model output and renders them with the
// named renderer ("" for html). It is the simplest entry point for callers
// that already have the model's answer.
func RenderText(ctx context.Context, text, rendererName string, options ...orchestrator.Option) ([]byte, error) {
	gen := orchestrator.New(options...)
	nodes, _ := gen.Extract(text)
	rendered, err := gen.Render(ctx, orchestrator.RenderRequest{Nodes: nodes, Renderer: rendererName})
	if err != nil {
		return nil, err
	}
	return rendered.Output, nil
}

// RenderNodes renders an existing forest with the named renderer.
func RenderNodes(ctx context.Context, nodes []Node, rendererName string, options ...orchestrator.Option) ([]byte, error) {
	rendered, err := orchestrator.New(options...).Render(ctx, orchestrator.RenderRequest{Nodes: nodes, Renderer: rendererName})
	if err != nil {
		return nil, err
	}
	return rendered.Output, nil
}

// WithThemeSelector passes a go-theme selector through to the orchestrator so
// theme/variant choices can be resolved ahead of rendering.
func WithThemeSelector(selector theme.ThemeSelector) orchestrator.Option {
	return orchestrator.WithThemeSelector(selector)
}

// WithThemeFallbacks forwards fallback partials used when deriving renderer
// configuration from a theme selection.
func WithThemeFallbacks(fallbacks map[string]string) orchestrator.Option {
	return orchestrator.WithThemeFallbacks(fallbacks)
}
