package html

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	stdhtml "html"
	"log/slog"
	"strconv"
	"strings"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-genui/pkg/model"
	"github.com/goliatone/go-genui/pkg/render"
	"github.com/goliatone/go-genui/pkg/renderers/html/components"
)

// walker holds the state of one render pass.
type walker struct {
	r        *Renderer
	ctx      context.Context
	opts     render.RenderOptions
	stats    *render.Stats
	maxDepth int
	partials map[string]string

	types []string
	seen  map[string]struct{}
}

func (r *Renderer) newWalker(ctx context.Context, opts render.RenderOptions) *walker {
	if ctx == nil {
		ctx = context.Background()
	}
	stats := opts.Stats
	if stats == nil {
		stats = &render.Stats{}
	}
	var partials map[string]string
	if opts.Theme != nil {
		partials = opts.Theme.Partials
	}
	return &walker{
		r:        r,
		ctx:      ctx,
		opts:     opts,
		stats:    stats,
		maxDepth: opts.Depth(),
		partials: partials,
		seen:     make(map[string]struct{}),
	}
}

// value dispatches on the dynamic shape of v.
func (w *walker) value(v any, key string, depth int, parent string) (string, error) {
	switch v := v.(type) {
	case nil:
		return "", nil
	case string:
		return stdhtml.EscapeString(v), nil
	case float64, bool, json.Number:
		return stdhtml.EscapeString(model.LiteralText(v)), nil
	case int:
		return strconv.Itoa(v), nil
	case components.Rendered:
		return v.HTML, nil
	case model.Node:
		return w.node(v, key, depth, parent)
	case *model.Node:
		if v == nil {
			return "", nil
		}
		return w.node(*v, key, depth, parent)
	case map[string]any:
		return w.node(model.FromMap(v), key, depth, parent)
	case []any:
		var out strings.Builder
		for idx, item := range v {
			rendered, err := w.value(item, key+"."+strconv.Itoa(idx), depth, parent)
			if err != nil {
				return "", err
			}
			out.WriteString(rendered)
		}
		return out.String(), nil
	default:
		w.stats.Malformed++
		w.r.logger.Warn("genui: unsupported node value", slog.String("key", key), slog.String("go_type", fmt.Sprintf("%T", v)))
		return placeholder(kindMalformed, "", key, "Unsupported value"), nil
	}
}

func (w *walker) node(node model.Node, key string, depth int, parent string) (string, error) {
	if err := w.ctx.Err(); err != nil {
		return "", err
	}
	if depth >= w.maxDepth {
		w.stats.Truncated++
		w.r.logger.Warn("genui: component tree truncated",
			slog.String("type", node.Type), slog.String("key", key), slog.Int("max_depth", w.maxDepth))
		return placeholder(kindTruncated, node.Type, key, "Content truncated: nesting deeper than "+strconv.Itoa(w.maxDepth)+" levels"), nil
	}
	w.stats.Nodes++

	typ := strings.TrimSpace(node.Type)
	if typ == "" {
		w.stats.Malformed++
		w.r.logger.Warn("genui: component without type", slog.String("key", key))
		return placeholder(kindMalformed, "", key, "Malformed component: missing type"), nil
	}

	if w.opts.EnforceChildPolicy && parent != "" {
		if entry, ok := w.r.catalogue.Lookup(parent); ok && !entry.Children.Allows(typ) {
			w.stats.Disallowed++
			w.r.logger.Warn("genui: child type not allowed",
				slog.String("parent", parent), slog.String("type", typ), slog.String("key", key))
			return placeholder(kindDisallowed, typ, key, "Component "+typ+" is not allowed inside "+parent), nil
		}
	}

	descriptor, ok := w.r.registry.Descriptor(typ)
	if !ok {
		w.stats.AddUnknown(typ)
		w.r.logger.Warn("genui: unknown component", slog.String("type", typ), slog.String("key", key))
		return placeholder(kindUnknown, typ, key, "Unknown component: "+typ), nil
	}
	w.track(descriptor.Name)

	resolution := w.r.catalogue.Resolve(node)
	w.stats.DroppedProps += len(resolution.Dropped)
	w.stats.PropIssues += len(resolution.Issues)
	if len(resolution.Dropped) > 0 || len(resolution.Issues) > 0 {
		w.r.logger.Debug("genui: props adjusted",
			slog.String("type", typ), slog.String("key", key),
			slog.Any("dropped", resolution.Dropped), slog.Any("issues", resolution.Issues))
	}

	data := components.ComponentData{
		Template: w.r.templates,
		Props:    resolution.Props,
		Key:      key,
		Partials: w.partials,
	}
	if node.Children.IsSequence() {
		children, err := w.children(node, key, depth)
		if err != nil {
			return "", err
		}
		data.Children = children
	} else {
		data.Text = node.Children.Text
	}
	data.RenderChild = w.renderChild(key, depth, typ)

	var buf bytes.Buffer
	if err := descriptor.Renderer(&buf, node, data); err != nil {
		w.stats.Failed++
		w.r.logger.Warn("genui: component render failed",
			slog.String("type", typ), slog.String("key", key), slog.Any("error", err))
		return placeholder(kindFailed, typ, key, "Could not render component: "+typ), nil
	}

	var out strings.Builder
	out.WriteString(`<div class="genui-node" data-component="`)
	out.WriteString(stdhtml.EscapeString(typ))
	out.WriteString(`" data-key="`)
	out.WriteString(stdhtml.EscapeString(key))
	out.WriteString(`">`)
	out.Write(buf.Bytes())
	out.WriteString(`</div>`)
	return out.String(), nil
}

// children renders a sequence in order. Keys are the child's id or its index.
func (w *walker) children(node model.Node, key string, depth int) ([]components.Rendered, error) {
	out := make([]components.Rendered, 0, len(node.Children.Items))
	for idx, child := range node.Children.Items {
		childKey := render.ChildKey(child, idx)
		if child.IsText() {
			out = append(out, components.Rendered{Key: childKey, HTML: stdhtml.EscapeString(child.Text)})
			continue
		}
		rendered, err := w.node(*child.Node, childKey, depth+1, node.Type)
		if err != nil {
			return nil, err
		}
		out = append(out, components.Rendered{Key: childKey, HTML: rendered, Node: child.Node})
	}
	return out, nil
}

// renderChild builds the per-child callback containers use for values that
// are not pre-rendered, such as descriptors inside an "items" prop.
func (w *walker) renderChild(parentKey string, depth int, parent string) func(any) (string, error) {
	counter := 0
	return func(value any) (string, error) {
		if rendered, ok := value.(components.Rendered); ok {
			return rendered.HTML, nil
		}
		key := parentKey + ".items." + strconv.Itoa(counter)
		counter++
		switch v := value.(type) {
		case model.Node:
			if v.ID != "" {
				key = v.ID
			}
		case *model.Node:
			if v != nil && v.ID != "" {
				key = v.ID
			}
		case map[string]any:
			if id, ok := v["id"].(string); ok && id != "" {
				key = id
			}
		}
		return w.value(value, key, depth+1, parent)
	}
}

func (w *walker) track(typ string) {
	if _, ok := w.seen[typ]; ok {
		return
	}
	w.seen[typ] = struct{}{}
	w.types = append(w.types, typ)
}

// rootElement wraps a fragment in the themed root container.
func rootElement(cfg *theme.RendererConfig, body string) string {
	var out strings.Builder
	out.WriteString(`<div class="genui-root"`)
	if cfg != nil {
		if cfg.Theme != "" {
			out.WriteString(` data-theme="` + stdhtml.EscapeString(cfg.Theme) + `"`)
		}
		if cfg.Variant != "" {
			out.WriteString(` data-variant="` + stdhtml.EscapeString(cfg.Variant) + `"`)
		}
		if style := inlineVars(cfg.CSSVars); style != "" {
			out.WriteString(` style="` + stdhtml.EscapeString(style) + `"`)
		}
	}
	out.WriteString(`>`)
	out.WriteString(body)
	out.WriteString(`</div>`)
	return out.String()
}
