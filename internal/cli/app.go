package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-genui/internal/config"
	"github.com/goliatone/go-genui/pkg/designer"
	"github.com/goliatone/go-genui/pkg/gridstore"
	"github.com/goliatone/go-genui/pkg/gridstore/sqlite"
	"github.com/goliatone/go-genui/pkg/llm"
	"github.com/goliatone/go-genui/pkg/llm/gemini"
	"github.com/goliatone/go-genui/pkg/metrics"
	"github.com/goliatone/go-genui/pkg/orchestrator"
	"github.com/goliatone/go-genui/pkg/prompt"
	"github.com/goliatone/go-genui/pkg/render"
	"github.com/goliatone/go-genui/pkg/renderers/html"
	"github.com/goliatone/go-genui/pkg/renderers/text"
	"github.com/goliatone/go-genui/pkg/schema"
)

// App is the wired pipeline shared by every subcommand.
type App struct {
	Config       *config.Config
	Logger       *slog.Logger
	Catalogue    *schema.Catalogue
	Themes       *designer.Selector
	Store        gridstore.Store
	Metrics      *metrics.Metrics
	Orchestrator *orchestrator.Orchestrator
}

// NewApp builds the pipeline described by cfg. Callers must Close the App.
func NewApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	if cfg == nil {
		return nil, errors.New("cli: config is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	app := &App{Config: cfg, Logger: logger, Metrics: metrics.New(true)}

	var err error
	if app.Catalogue, err = loadCatalogue(cfg); err != nil {
		return nil, err
	}
	if app.Themes, err = loadThemes(cfg); err != nil {
		return nil, err
	}
	generator, err := newGenerator(ctx, cfg)
	if err != nil {
		return nil, err
	}
	registry, err := newRegistry(cfg, app.Catalogue, logger)
	if err != nil {
		return nil, err
	}
	prompts, err := prompt.NewBuilder(prompt.WithCatalogue(app.Catalogue), prompt.WithInstructions(cfg.Instructions))
	if err != nil {
		return nil, fmt.Errorf("cli: prompt builder: %w", err)
	}

	opts := []orchestrator.Option{
		orchestrator.WithCatalogue(app.Catalogue),
		orchestrator.WithPromptBuilder(prompts),
		orchestrator.WithGenerator(generator),
		orchestrator.WithModel(cfg.LLM.Model),
		orchestrator.WithRegistry(registry),
		orchestrator.WithDefaultRenderer(cfg.Renderer),
		orchestrator.WithThemeSelector(app.Themes),
		orchestrator.WithMetrics(app.Metrics),
		orchestrator.WithLogger(logger),
		orchestrator.WithMaxDepth(cfg.MaxDepth),
		orchestrator.WithEnforceChildPolicy(cfg.EnforceChildPolicy),
	}
	if cfg.PresetFile != "" {
		preset, err := orchestrator.NewJSONPresetTransformerFromFS(os.DirFS(filepath.Dir(cfg.PresetFile)), filepath.Base(cfg.PresetFile))
		if err != nil {
			return nil, fmt.Errorf("cli: %w", err)
		}
		opts = append(opts, orchestrator.WithTransformer(preset))
	}

	// the store is opened last so earlier failures leave nothing to close
	if app.Store, err = openStore(ctx, cfg, logger); err != nil {
		return nil, err
	}
	opts = append(opts, orchestrator.WithStore(app.Store))

	app.Orchestrator = orchestrator.New(opts...)
	if err := app.Orchestrator.Err(); err != nil {
		_ = app.Store.Close()
		return nil, err
	}
	return app, nil
}

// Close releases the grid store.
func (a *App) Close() error {
	if a == nil || a.Store == nil {
		return nil
	}
	return a.Store.Close()
}

func loadCatalogue(cfg *config.Config) (*schema.Catalogue, error) {
	base := schema.DefaultCatalogue()
	if cfg.CatalogueDir == "" {
		return base, nil
	}
	catalogue, err := schema.LoadCatalogue(base, os.DirFS(cfg.CatalogueDir))
	if err != nil {
		return nil, fmt.Errorf("cli: catalogue overlays %s: %w", cfg.CatalogueDir, err)
	}
	return catalogue, nil
}

func loadThemes(cfg *config.Config) (*designer.Selector, error) {
	builtin, err := designer.Default().Manifest()
	if err != nil {
		return nil, fmt.Errorf("cli: default theme: %w", err)
	}
	manifests := []*theme.Manifest{builtin}
	if cfg.ThemesDir != "" {
		loaded, err := designer.LoadDir(cfg.ThemesDir)
		if err != nil {
			return nil, fmt.Errorf("cli: themes %s: %w", cfg.ThemesDir, err)
		}
		manifests = append(manifests, loaded...)
	}
	return designer.NewSelector(cfg.Theme, cfg.Variant, manifests...)
}

func newGenerator(ctx context.Context, cfg *config.Config) (llm.Generator, error) {
	switch cfg.LLM.Provider {
	case "gemini":
		opts := []gemini.Option{gemini.WithModel(cfg.LLM.Model)}
		if cfg.LLM.MaxOutputTokens > 0 {
			opts = append(opts, gemini.WithMaxOutputTokens(int32(cfg.LLM.MaxOutputTokens)))
		}
		if cfg.LLM.Temperature > 0 {
			opts = append(opts, gemini.WithTemperature(float32(cfg.LLM.Temperature)))
		}
		if cfg.LLM.BaseURL != "" {
			opts = append(opts, gemini.WithBaseURL(cfg.LLM.BaseURL))
		}
		client, err := gemini.New(ctx, cfg.LLM.APIKey, opts...)
		if err != nil {
			return nil, fmt.Errorf("cli: %w", err)
		}
		return client, nil
	default:
		return llm.NewStatic(cfg.LLM.StaticResponse), nil
	}
}

func newRegistry(cfg *config.Config, catalogue *schema.Catalogue, logger *slog.Logger) (*render.Registry, error) {
	htmlOpts := []html.Option{html.WithCatalogue(catalogue), html.WithLogger(logger)}
	if cfg.TemplatesDir != "" {
		htmlOpts = append(htmlOpts, html.WithTemplatesDir(cfg.TemplatesDir))
	}
	htmlRenderer, err := html.New(htmlOpts...)
	if err != nil {
		return nil, fmt.Errorf("cli: html renderer: %w", err)
	}
	registry, err := render.NewRegistry(
		htmlRenderer,
		text.New(text.WithCatalogue(catalogue), text.WithLogger(logger), text.WithColor(cfg.Color)),
	)
	if err != nil {
		return nil, fmt.Errorf("cli: %w", err)
	}
	if !registry.Has(cfg.Renderer) {
		return nil, fmt.Errorf("cli: renderer %q is not registered (have %v)", cfg.Renderer, registry.List())
	}
	return registry, nil
}

func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (gridstore.Store, error) {
	if cfg.Store.Driver != "sqlite" {
		return gridstore.NewMemory(), nil
	}
	store, err := sqlite.New(ctx, cfg.Store.DSN)
	if err != nil {
		return nil, fmt.Errorf("cli: %w", err)
	}
	if cfg.Store.TTL > 0 {
		removed, err := store.Prune(ctx, time.Now().Add(-cfg.Store.TTL))
		if err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("cli: %w", err)
		}
		if removed > 0 {
			logger.Info("genui: pruned stale grids", slog.Int64("removed", removed))
		}
	}
	return store, nil
}
