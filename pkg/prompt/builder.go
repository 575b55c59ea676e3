// Package prompt composes the system prompt that teaches a model the component
// vocabulary, and the synthetic descriptors used when generation fails.
package prompt

import (
	"embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/goliatone/go-genui/pkg/model"
	rendertemplate "github.com/goliatone/go-genui/pkg/render/template"
	gotemplate "github.com/goliatone/go-genui/pkg/render/template/gotemplate"
	"github.com/goliatone/go-genui/pkg/schema"
)

//go:embed templates/*.tmpl
var templatesFS embed.FS

const systemTemplate = "templates/system"

type Option func(*Builder)

// WithCatalogue sets the vocabulary interpolated into the prompt.
func WithCatalogue(catalogue *schema.Catalogue) Option {
	return func(b *Builder) {
		if catalogue != nil {
			b.catalogue = catalogue
		}
	}
}

// WithTemplate replaces the built-in system prompt with inline template
// content. The template sees catalogue, contextNodes, and instructions.
func WithTemplate(content string) Option {
	return func(b *Builder) {
		b.inline = content
	}
}

func WithTemplateRenderer(renderer rendertemplate.TemplateRenderer) Option {
	return func(b *Builder) {
		if renderer != nil {
			b.templates = renderer
		}
	}
}

// WithInstructions appends operator instructions to every prompt.
func WithInstructions(text string) Option {
	return func(b *Builder) {
		b.instructions = strings.TrimSpace(text)
	}
}

// Builder renders system prompts. It is safe for concurrent use.
type Builder struct {
	templates    rendertemplate.TemplateRenderer
	catalogue    *schema.Catalogue
	inline       string
	instructions string
}

func NewBuilder(options ...Option) (*Builder, error) {
	b := &Builder{catalogue: schema.DefaultCatalogue()}
	for _, opt := range options {
		if opt != nil {
			opt(b)
		}
	}
	if b.templates == nil {
		engine, err := gotemplate.New(gotemplate.WithFS(templatesFS))
		if err != nil {
			return nil, fmt.Errorf("prompt: configure template renderer: %w", err)
		}
		b.templates = engine
	}
	return b, nil
}

// System renders the system prompt for a request whose screen currently shows
// contextNodes (may be empty).
func (b *Builder) System(contextNodes []model.Node) (string, error) {
	catalogue, err := b.catalogue.JSON()
	if err != nil {
		return "", fmt.Errorf("prompt: %w", err)
	}
	contextJSON, err := ContextJSON(contextNodes)
	if err != nil {
		return "", err
	}

	data := map[string]any{
		"catalogue":    catalogue,
		"contextNodes": contextJSON,
		"instructions": b.instructions,
	}

	var out string
	if b.inline != "" {
		out, err = b.templates.RenderString(b.inline, data)
	} else {
		out, err = b.templates.RenderTemplate(systemTemplate, data)
	}
	if err != nil {
		return "", fmt.Errorf("prompt: render system prompt: %w", err)
	}
	return strings.TrimSpace(out) + "\n", nil
}

// ContextJSON serialises nodes for the prompt. Empty input yields "".
func ContextJSON(nodes []model.Node) (string, error) {
	if len(nodes) == 0 {
		return "", nil
	}
	payload, err := json.MarshalIndent(nodes, "", "  ")
	if err != nil {
		return "", fmt.Errorf("prompt: encode context: %w", err)
	}
	return string(payload), nil
}

// ErrorNode is the descriptor substituted for a failed or empty generation so
// the failure renders like any other component.
func ErrorNode(message string) model.Node {
	message = strings.TrimSpace(message)
	if message == "" {
		message = "The assistant did not return any content."
	}
	return model.Node{
		Type: "info-card",
		Props: map[string]any{
			"variant": "error",
			"title":   "Something went wrong",
			"message": message,
		},
	}
}
