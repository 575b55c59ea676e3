package html

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"

	"github.com/goliatone/go-genui/pkg/model"
	"github.com/goliatone/go-genui/pkg/render"
	rendertemplate "github.com/goliatone/go-genui/pkg/render/template"
	gotemplate "github.com/goliatone/go-genui/pkg/render/template/gotemplate"
	"github.com/goliatone/go-genui/pkg/renderers/html/components"
	"github.com/goliatone/go-genui/pkg/schema"
)

// Name is the registry name of the HTML renderer.
const Name = "html"

type Option func(*config)

type config struct {
	templateFS       fs.FS
	templatesDir     string
	templateRenderer rendertemplate.TemplateRenderer
	registry         *components.Registry
	catalogue        *schema.Catalogue
	logger           *slog.Logger
	title            string
	stylesheets      []string
}

// WithTemplatesFS replaces the embedded component templates.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		if files != nil {
			cfg.templateFS = files
		}
	}
}

// WithTemplatesDir loads templates from disk ahead of the embedded bundle, so
// theme partials and overrides can live next to the deployment.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		cfg.templatesDir = strings.TrimSpace(path)
	}
}

// WithTemplateRenderer injects a custom template renderer implementation.
func WithTemplateRenderer(renderer rendertemplate.TemplateRenderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.templateRenderer = renderer
		}
	}
}

// WithComponentRegistry swaps the component renderer registry.
func WithComponentRegistry(registry *components.Registry) Option {
	return func(cfg *config) {
		if registry != nil {
			cfg.registry = registry
		}
	}
}

// WithCatalogue sets the catalogue props are resolved against.
func WithCatalogue(catalogue *schema.Catalogue) Option {
	return func(cfg *config) {
		if catalogue != nil {
			cfg.catalogue = catalogue
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(cfg *config) {
		if logger != nil {
			cfg.logger = logger
		}
	}
}

// WithTitle sets the <title> used in document mode.
func WithTitle(title string) Option {
	return func(cfg *config) {
		cfg.title = strings.TrimSpace(title)
	}
}

// WithStylesheet links an extra stylesheet in document mode.
func WithStylesheet(href string) Option {
	return func(cfg *config) {
		if href = strings.TrimSpace(href); href != "" {
			cfg.stylesheets = append(cfg.stylesheets, href)
		}
	}
}

// Renderer turns component trees into HTML. It is safe for concurrent use
// once constructed.
type Renderer struct {
	templates   rendertemplate.TemplateRenderer
	registry    *components.Registry
	catalogue   *schema.Catalogue
	logger      *slog.Logger
	title       string
	stylesheets []string
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs the HTML renderer applying any provided options.
func New(options ...Option) (*Renderer, error) {
	cfg := config{
		templateFS: TemplatesFS(),
		title:      "Generated UI",
	}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}

	templates := cfg.templateRenderer
	if templates == nil {
		engineOptions := []gotemplate.Option{
			gotemplate.WithFS(cfg.templateFS),
			gotemplate.WithExtension(".tmpl"),
		}
		if cfg.templatesDir != "" {
			engineOptions = append(engineOptions, gotemplate.WithBaseDir(cfg.templatesDir))
		}
		engine, err := gotemplate.New(engineOptions...)
		if err != nil {
			return nil, fmt.Errorf("html renderer: configure template renderer: %w", err)
		}
		templates = engine
	}

	registry := cfg.registry
	if registry == nil {
		registry = components.NewDefaultRegistry()
	}
	catalogue := cfg.catalogue
	if catalogue == nil {
		catalogue = schema.DefaultCatalogue()
	}
	logger := cfg.logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Renderer{
		templates:   templates,
		registry:    registry,
		catalogue:   catalogue,
		logger:      logger,
		title:       cfg.title,
		stylesheets: cfg.stylesheets,
	}, nil
}

func (r *Renderer) Name() string {
	return Name
}

func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

// Render renders the forest inside a themed root element, or as a standalone
// page when opts.Document is set. Malformed or unknown nodes become
// placeholders; only context cancellation is returned as an error.
func (r *Renderer) Render(ctx context.Context, nodes []model.Node, opts render.RenderOptions) ([]byte, error) {
	w := r.newWalker(ctx, opts)

	var body strings.Builder
	for idx, node := range nodes {
		out, err := w.node(node, render.RootKey(node, idx), 0, "")
		if err != nil {
			return nil, err
		}
		body.WriteString(out)
	}

	fragment := rootElement(opts.Theme, body.String())
	if !opts.Document {
		return []byte(fragment), nil
	}
	return []byte(r.document(opts.Theme, fragment, w.types)), nil
}

// RenderNode renders a single value without the root wrapper: nil or "" yield
// "", a string yields escaped text, a node (or node-shaped map) yields its
// component markup.
func (r *Renderer) RenderNode(ctx context.Context, value any, opts render.RenderOptions) (string, error) {
	return r.newWalker(ctx, opts).value(value, "0", 0, "")
}

// Registry exposes the component registry, e.g. to serve assets.
func (r *Renderer) Registry() *components.Registry {
	return r.registry
}
