package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	theme "github.com/goliatone/go-theme"
	"github.com/google/uuid"

	"github.com/goliatone/go-genui/pkg/designer"
	"github.com/goliatone/go-genui/pkg/extract"
	"github.com/goliatone/go-genui/pkg/gridstore"
	"github.com/goliatone/go-genui/pkg/llm"
	"github.com/goliatone/go-genui/pkg/metrics"
	"github.com/goliatone/go-genui/pkg/model"
	"github.com/goliatone/go-genui/pkg/prompt"
	"github.com/goliatone/go-genui/pkg/render"
	"github.com/goliatone/go-genui/pkg/renderers/html"
	"github.com/goliatone/go-genui/pkg/renderers/text"
	"github.com/goliatone/go-genui/pkg/schema"
)

const defaultRendererName = html.Name

// Option customises the orchestrator configuration.
type Option func(*Orchestrator)

// WithCatalogue sets the component vocabulary used for prompts and the
// default renderers.
func WithCatalogue(catalogue *schema.Catalogue) Option {
	return func(o *Orchestrator) {
		o.catalogue = catalogue
	}
}

func WithPromptBuilder(builder *prompt.Builder) Option {
	return func(o *Orchestrator) {
		o.prompts = builder
	}
}

// WithGenerator injects the model client. Without one, requests must carry
// Text.
func WithGenerator(generator llm.Generator) Option {
	return func(o *Orchestrator) {
		o.generator = generator
	}
}

// WithModel overrides the generator model per orchestrator.
func WithModel(name string) Option {
	return func(o *Orchestrator) {
		o.model = strings.TrimSpace(name)
	}
}

func WithExtractor(extractor *extract.Extractor) Option {
	return func(o *Orchestrator) {
		o.extractor = extractor
	}
}

// WithRegistry injects a renderer registry.
func WithRegistry(registry *render.Registry) Option {
	return func(o *Orchestrator) {
		o.registry = registry
	}
}

// WithDefaultRenderer overrides the renderer used when a request omits an
// explicit Renderer field.
func WithDefaultRenderer(name string) Option {
	return func(o *Orchestrator) {
		o.defaultRenderer = name
	}
}

// WithThemeSelector resolves request theme/variant names ahead of rendering.
func WithThemeSelector(selector theme.ThemeSelector) Option {
	return func(o *Orchestrator) {
		o.themeSelector = selector
	}
}

// WithThemeFallbacks supplies partials used when a theme does not override
// a component template.
func WithThemeFallbacks(fallbacks map[string]string) Option {
	return func(o *Orchestrator) {
		o.themeFallbacks = fallbacks
	}
}

// WithStore persists session grids between requests.
func WithStore(store gridstore.Store) Option {
	return func(o *Orchestrator) {
		o.store = store
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(o *Orchestrator) {
		o.metrics = m
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

// WithTransformer registers a Transformer applied to extracted nodes.
func WithTransformer(t Transformer) Option {
	return func(o *Orchestrator) {
		o.transformer = t
	}
}

// WithMaxDepth bounds render nesting for every request.
func WithMaxDepth(depth int) Option {
	return func(o *Orchestrator) {
		o.maxDepth = depth
	}
}

// WithEnforceChildPolicy turns catalogue child policies into render-time
// rules.
func WithEnforceChildPolicy(enabled bool) Option {
	return func(o *Orchestrator) {
		o.enforce = enabled
	}
}

// Orchestrator runs prompt → generator → extractor → grid merge → renderer.
// Missing dependencies are filled with the built-in implementations.
type Orchestrator struct {
	catalogue       *schema.Catalogue
	prompts         *prompt.Builder
	generator       llm.Generator
	model           string
	extractor       *extract.Extractor
	registry        *render.Registry
	defaultRenderer string
	themeSelector   theme.ThemeSelector
	themeFallbacks  map[string]string
	store           gridstore.Store
	metrics         *metrics.Metrics
	logger          *slog.Logger
	transformer     Transformer
	maxDepth        int
	enforce         bool
	initialiseErr   error
}

// New constructs an Orchestrator applying any provided options.
func New(options ...Option) *Orchestrator {
	o := &Orchestrator{defaultRenderer: defaultRendererName}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(o)
	}
	o.applyDefaults()
	return o
}

func (o *Orchestrator) applyDefaults() {
	if o.logger == nil {
		o.logger = slog.Default()
	}
	if o.catalogue == nil {
		o.catalogue = schema.DefaultCatalogue()
	}
	if o.extractor == nil {
		o.extractor = extract.New(extract.WithLogger(o.logger))
	}
	if o.prompts == nil {
		builder, err := prompt.NewBuilder(prompt.WithCatalogue(o.catalogue))
		if err != nil {
			o.initialiseErr = fmt.Errorf("orchestrator: prompt builder: %w", err)
			return
		}
		o.prompts = builder
	}
	if o.registry == nil {
		htmlRenderer, err := html.New(html.WithCatalogue(o.catalogue), html.WithLogger(o.logger))
		if err != nil {
			o.initialiseErr = fmt.Errorf("orchestrator: html renderer: %w", err)
			return
		}
		registry, err := render.NewRegistry(
			htmlRenderer,
			text.New(text.WithCatalogue(o.catalogue), text.WithLogger(o.logger)),
		)
		if err != nil {
			o.initialiseErr = fmt.Errorf("orchestrator: renderer registry: %w", err)
			return
		}
		o.registry = registry
	}
}

// Err reports a construction failure; Generate and Render return it too.
func (o *Orchestrator) Err() error {
	return o.initialiseErr
}

func (o *Orchestrator) Catalogue() *schema.Catalogue {
	return o.catalogue
}

func (o *Orchestrator) Registry() *render.Registry {
	return o.registry
}

func (o *Orchestrator) Prompts() *prompt.Builder {
	return o.prompts
}

// Request describes one generation.
type Request struct {
	// Prompt is the user's message for the generator.
	Prompt string
	// Text skips the generator and extracts from this model output instead.
	Text string
	// Context is the grid the user is looking at. When Session is set and
	// Context is nil, the stored grid is used.
	Context []model.Node
	// Session keys the stored grid. Generations for a session always merge
	// into its grid and save the result.
	Session string
	// MergeContext renders Context with the new nodes merged in instead of
	// the new nodes alone.
	MergeContext bool

	Renderer     string
	ThemeName    string
	ThemeVariant string
	// Document asks the renderer for a standalone page.
	Document bool
	// Model overrides the generator model for this request.
	Model string
}

// Result is what a generation produced at every stage.
type Result struct {
	RequestID string
	// Raw is the generator output (or Request.Text).
	Raw string
	// Nodes were extracted from Raw, after transformation.
	Nodes []model.Node
	// Grid is the forest that was rendered.
	Grid        []model.Node
	Output      []byte
	Renderer    string
	ContentType string
	Stats       render.Stats
	Extraction  extract.Report
	// Fallback is set when the generator failed and an error card was
	// rendered in its place.
	Fallback bool
}

// Generate executes the full pipeline. Generator failures are not errors:
// they render as an error card and set Result.Fallback.
func (o *Orchestrator) Generate(ctx context.Context, req Request) (*Result, error) {
	if ctx == nil {
		return nil, errors.New("orchestrator: context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := o.initialiseErr; err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Prompt) == "" && strings.TrimSpace(req.Text) == "" {
		return nil, errors.New("orchestrator: prompt or text is required")
	}
	if _, err := o.rendererFor(req.Renderer); err != nil {
		return nil, err
	}

	result := &Result{RequestID: uuid.NewString()}
	logger := o.logger.With(slog.String("request_id", result.RequestID))

	current, err := o.loadContext(ctx, req)
	if err != nil {
		return nil, err
	}

	raw, fallback, err := o.generate(ctx, req, current, logger)
	if err != nil {
		return nil, err
	}
	result.Raw = raw

	var nodes []model.Node
	if fallback != nil {
		result.Fallback = true
		nodes = []model.Node{*fallback}
	} else {
		nodes, result.Extraction = o.extractor.ExtractWithReport(raw)
		o.metrics.ObserveExtraction(result.Extraction.Accepted, result.Extraction.Dropped+result.Extraction.Malformed)
		if len(nodes) == 0 && strings.TrimSpace(raw) != "" {
			// plain prose answer
			nodes = []model.Node{{Type: "markdown", Props: map[string]any{"content": strings.TrimSpace(raw)}}}
		}
		if o.transformer != nil {
			if nodes, err = o.transformer.Transform(ctx, nodes); err != nil {
				return nil, fmt.Errorf("orchestrator: transform nodes: %w", err)
			}
		}
	}
	result.Nodes = nodes

	grid := nodes
	if req.MergeContext || req.Session != "" {
		grid = gridstore.Merge(current, nodes)
	}
	result.Grid = grid

	rendered, err := o.Render(ctx, RenderRequest{
		Nodes:        grid,
		Renderer:     req.Renderer,
		ThemeName:    req.ThemeName,
		ThemeVariant: req.ThemeVariant,
		Document:     req.Document,
	})
	if err != nil {
		return nil, err
	}
	result.Output = rendered.Output
	result.Renderer = rendered.Renderer
	result.ContentType = rendered.ContentType
	result.Stats = rendered.Stats

	if req.Session != "" && o.store != nil && !result.Fallback {
		if err := o.store.Save(ctx, req.Session, grid); err != nil {
			return nil, fmt.Errorf("orchestrator: save grid: %w", err)
		}
	}

	logger.Info("genui: generated",
		slog.Int("nodes", len(nodes)),
		slog.Int("grid", len(grid)),
		slog.String("renderer", result.Renderer),
		slog.Bool("fallback", result.Fallback),
		slog.Bool("degraded", result.Stats.Degraded()),
	)
	return result, nil
}

func (o *Orchestrator) loadContext(ctx context.Context, req Request) ([]model.Node, error) {
	if req.Context != nil || req.Session == "" || o.store == nil {
		return req.Context, nil
	}
	nodes, err := o.store.Load(ctx, req.Session)
	if errors.Is(err, gridstore.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("orchestrator: load grid: %w", err)
	}
	return nodes, nil
}

// generate returns the model text, or a fallback node when the generator
// failed. Only context cancellation is returned as an error.
func (o *Orchestrator) generate(ctx context.Context, req Request, current []model.Node, logger *slog.Logger) (string, *model.Node, error) {
	if strings.TrimSpace(req.Text) != "" {
		return req.Text, nil, nil
	}
	if o.generator == nil {
		return "", nil, errors.New("orchestrator: no generator configured")
	}

	system, err := o.prompts.System(current)
	if err != nil {
		return "", nil, fmt.Errorf("orchestrator: %w", err)
	}
	modelName := req.Model
	if modelName == "" {
		modelName = o.model
	}

	started := time.Now()
	raw, err := o.generator.Generate(ctx, llm.Request{System: system, User: req.Prompt, Model: modelName})
	elapsed := time.Since(started)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return "", nil, ctxErr
	}

	switch {
	case err == nil && strings.TrimSpace(raw) == "":
		err = llm.ErrEmptyResponse
		fallthrough
	case err != nil:
		o.metrics.ObserveGeneration(metrics.OutcomeFallback, elapsed)
		logger.Warn("genui: generator failed", slog.Any("error", err), slog.Duration("elapsed", elapsed))
		message := ""
		if !errors.Is(err, llm.ErrEmptyResponse) {
			message = err.Error()
		}
		node := prompt.ErrorNode(message)
		return "", &node, nil
	}

	o.metrics.ObserveGeneration(metrics.OutcomeOK, elapsed)
	return raw, nil, nil
}

// RenderRequest renders an existing forest without generation.
type RenderRequest struct {
	Nodes        []model.Node
	Renderer     string
	ThemeName    string
	ThemeVariant string
	Document     bool
}

// Rendered is the output of Render.
type Rendered struct {
	Output      []byte
	Renderer    string
	ContentType string
	Stats       render.Stats
}

// Render resolves the renderer and theme, then renders nodes.
func (o *Orchestrator) Render(ctx context.Context, req RenderRequest) (*Rendered, error) {
	if err := o.initialiseErr; err != nil {
		return nil, err
	}
	renderer, err := o.rendererFor(req.Renderer)
	if err != nil {
		return nil, err
	}

	stats := render.Stats{}
	opts := render.RenderOptions{
		Theme:              o.themeConfig(req.ThemeName, req.ThemeVariant),
		MaxDepth:           o.maxDepth,
		EnforceChildPolicy: o.enforce,
		Document:           req.Document,
		Stats:              &stats,
	}

	started := time.Now()
	output, err := renderer.Render(ctx, req.Nodes, opts)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: render output: %w", err)
	}
	o.metrics.ObserveRender(renderer.Name(), stats, time.Since(started))

	return &Rendered{
		Output:      output,
		Renderer:    renderer.Name(),
		ContentType: renderer.ContentType(),
		Stats:       stats,
	}, nil
}

// Extract runs the configured extractor and records extraction metrics.
func (o *Orchestrator) Extract(text string) ([]model.Node, extract.Report) {
	nodes, report := o.extractor.ExtractWithReport(text)
	o.metrics.ObserveExtraction(report.Accepted, report.Dropped+report.Malformed)
	return nodes, report
}

// ResetSession forgets a session's grid.
func (o *Orchestrator) ResetSession(ctx context.Context, session string) error {
	if o.store == nil {
		return nil
	}
	if err := o.store.Delete(ctx, session); err != nil {
		return fmt.Errorf("orchestrator: reset session: %w", err)
	}
	return nil
}

// SessionGrid returns the stored grid for session, empty when none exists.
func (o *Orchestrator) SessionGrid(ctx context.Context, session string) ([]model.Node, error) {
	return o.loadContext(ctx, Request{Session: session})
}

func (o *Orchestrator) rendererFor(name string) (render.Renderer, error) {
	if o.registry == nil {
		return nil, errors.New("orchestrator: renderer registry is nil")
	}
	renderer, err := o.registry.Resolve(name, o.defaultRenderer)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: %w", err)
	}
	return renderer, nil
}

func (o *Orchestrator) themeConfig(name, variant string) *theme.RendererConfig {
	if o.themeSelector == nil {
		return nil
	}
	selection, err := o.themeSelector.Select(name, variant)
	if err != nil {
		o.logger.Warn("genui: theme selection failed",
			slog.String("theme", name),
			slog.String("variant", variant),
			slog.Any("error", err),
		)
		return nil
	}
	return designer.RendererConfig(selection, o.themeFallbacks)
}
