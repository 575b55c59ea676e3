// Package text renders component trees as an indented plain-text outline for
// terminals and logs.
package text

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/goliatone/go-genui/pkg/model"
	"github.com/goliatone/go-genui/pkg/render"
	"github.com/goliatone/go-genui/pkg/schema"
)

// Name is the registry name of the text renderer.
const Name = "text"

type Option func(*Renderer)

// WithColor enables ANSI styling for headings and placeholders.
func WithColor(enabled bool) Option {
	return func(r *Renderer) {
		r.color = enabled
	}
}

func WithCatalogue(catalogue *schema.Catalogue) Option {
	return func(r *Renderer) {
		if catalogue != nil {
			r.catalogue = catalogue
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(r *Renderer) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// Renderer produces a readable outline of a component forest.
type Renderer struct {
	catalogue *schema.Catalogue
	logger    *slog.Logger
	color     bool
	styles    styles
}

type styles struct {
	heading lipgloss.Style
	muted   lipgloss.Style
	warn    lipgloss.Style
	strong  lipgloss.Style
}

var _ render.Renderer = (*Renderer)(nil)

func New(options ...Option) *Renderer {
	r := &Renderer{
		catalogue: schema.DefaultCatalogue(),
		logger:    slog.Default(),
	}
	for _, opt := range options {
		if opt != nil {
			opt(r)
		}
	}
	if r.color {
		r.styles = styles{
			heading: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
			muted:   lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
			warn:    lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
			strong:  lipgloss.NewStyle().Bold(true),
		}
	}
	return r
}

func (r *Renderer) Name() string {
	return Name
}

func (r *Renderer) ContentType() string {
	return "text/plain; charset=utf-8"
}

// Render writes one block per top-level node separated by blank lines.
func (r *Renderer) Render(ctx context.Context, nodes []model.Node, opts render.RenderOptions) ([]byte, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	stats := opts.Stats
	if stats == nil {
		stats = &render.Stats{}
	}
	o := &outline{r: r, ctx: ctx, opts: opts, stats: stats, maxDepth: opts.Depth()}

	blocks := make([]string, 0, len(nodes))
	for _, node := range nodes {
		var b strings.Builder
		if err := o.node(&b, node, 0, ""); err != nil {
			return nil, err
		}
		if block := strings.TrimRight(b.String(), "\n"); block != "" {
			blocks = append(blocks, block)
		}
	}
	if len(blocks) == 0 {
		return []byte{}, nil
	}
	return []byte(strings.Join(blocks, "\n\n") + "\n"), nil
}

func (r *Renderer) style(style lipgloss.Style, value string) string {
	if !r.color {
		return value
	}
	return style.Render(value)
}

type outline struct {
	r        *Renderer
	ctx      context.Context
	opts     render.RenderOptions
	stats    *render.Stats
	maxDepth int
}

func (o *outline) node(b *strings.Builder, node model.Node, depth int, parent string) error {
	if err := o.ctx.Err(); err != nil {
		return err
	}
	indent := strings.Repeat("  ", depth)
	if depth >= o.maxDepth {
		o.stats.Truncated++
		o.line(b, indent, o.r.style(o.r.styles.warn, "[truncated: nesting deeper than "+strconv.Itoa(o.maxDepth)+" levels]"))
		return nil
	}
	o.stats.Nodes++

	typ := strings.TrimSpace(node.Type)
	if typ == "" {
		o.stats.Malformed++
		o.line(b, indent, o.r.style(o.r.styles.warn, "[malformed component: missing type]"))
		return nil
	}
	if o.opts.EnforceChildPolicy && parent != "" {
		if entry, ok := o.r.catalogue.Lookup(parent); ok && !entry.Children.Allows(typ) {
			o.stats.Disallowed++
			o.line(b, indent, o.r.style(o.r.styles.warn, fmt.Sprintf("[%s not allowed inside %s]", typ, parent)))
			return nil
		}
	}
	if !o.r.catalogue.Has(typ) {
		o.stats.AddUnknown(typ)
		o.r.logger.Warn("genui: unknown component", slog.String("type", typ))
		o.line(b, indent, o.r.style(o.r.styles.warn, "[unknown component: "+typ+"]"))
		return nil
	}

	resolution := o.r.catalogue.Resolve(node)
	o.stats.DroppedProps += len(resolution.Dropped)
	o.stats.PropIssues += len(resolution.Issues)

	text := node.Children.Text
	if err := o.format(b, indent, typ, resolution.Props, text); err != nil {
		o.stats.Failed++
		o.r.logger.Warn("genui: component render failed", slog.String("type", typ), slog.Any("error", err))
		o.line(b, indent, o.r.style(o.r.styles.warn, "[could not render "+typ+"]"))
		return nil
	}

	for _, child := range node.Children.Items {
		if child.IsText() {
			if strings.TrimSpace(child.Text) != "" {
				o.line(b, indent+"  ", child.Text)
			}
			continue
		}
		if err := o.node(b, *child.Node, depth+1, typ); err != nil {
			return err
		}
	}
	if typ == "list" {
		return nil
	}
	items, _ := resolution.Props["items"].([]any)
	for _, item := range items {
		switch v := item.(type) {
		case map[string]any:
			if err := o.node(b, model.FromMap(v), depth+1, typ); err != nil {
				return err
			}
		case nil:
		default:
			o.line(b, indent+"  ", model.LiteralText(v))
		}
	}
	return nil
}

func (o *outline) line(b *strings.Builder, indent, value string) {
	for _, part := range strings.Split(value, "\n") {
		b.WriteString(indent)
		b.WriteString(part)
		b.WriteString("\n")
	}
}
