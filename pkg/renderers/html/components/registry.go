package components

import (
	"bytes"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/goliatone/go-genui/pkg/model"
	rendertemplate "github.com/goliatone/go-genui/pkg/render/template"
)

// Renderer writes the inner markup for one component node into buf. Props in
// data are already resolved against the catalogue; children are already
// rendered.
type Renderer func(buf *bytes.Buffer, node model.Node, data ComponentData) error

// Rendered is a child that has already been turned into markup.
type Rendered struct {
	Key  string `json:"key"`
	HTML string `json:"html"`
	// Node is the source descriptor; nil for literal text children.
	Node *model.Node `json:"-"`
}

// ComponentData carries resolved props, rendered children, and helpers for a
// component renderer.
type ComponentData struct {
	Template rendertemplate.TemplateRenderer
	Props    map[string]any
	Children []Rendered
	// Text holds single-string children.
	Text string
	Key  string
	// RenderChild renders a nested value one level deeper: a Rendered unit
	// passes through, a descriptor (model.Node, *model.Node, or a map with a
	// "type") recurses through the tree renderer, and anything else is
	// escaped as literal text.
	RenderChild func(value any) (string, error)
	// Partials maps partial keys ("genui.card") to theme template overrides.
	Partials map[string]string
}

// ChildrenHTML concatenates rendered children in order.
func (d ComponentData) ChildrenHTML() string {
	var builder strings.Builder
	for _, child := range d.Children {
		builder.WriteString(child.HTML)
	}
	return builder.String()
}

// Script describes JavaScript a component needs emitted once per document.
type Script struct {
	Src    string
	Inline string
	Module bool
	Defer  bool
}

// Descriptor bundles a renderer with its asset dependencies.
type Descriptor struct {
	Name        string
	Renderer    Renderer
	Stylesheets []string
	Scripts     []Script
}

// Registry maps component type names to descriptors. Build it at startup and
// treat it as read-only; Clone before customising a shared registry.
type Registry struct {
	mu         sync.RWMutex
	components map[string]Descriptor
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		components: make(map[string]Descriptor),
	}
}

// Clone returns an independent copy.
func (r *Registry) Clone() *Registry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cloned := New()
	for name, descriptor := range r.components {
		cloned.components[name] = cloneDescriptor(descriptor)
	}
	return cloned
}

// Register associates a descriptor with name, replacing any existing entry.
func (r *Registry) Register(name string, descriptor Descriptor) error {
	if name = normalize(name); name == "" {
		return fmt.Errorf("components: component name is required")
	}
	if descriptor.Renderer == nil {
		return fmt.Errorf("components: renderer for %q is nil", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	descriptor.Name = name
	r.components[name] = cloneDescriptor(descriptor)
	return nil
}

// MustRegister is Register that panics on error.
func (r *Registry) MustRegister(name string, descriptor Descriptor) {
	if err := r.Register(name, descriptor); err != nil {
		panic(err)
	}
}

// Descriptor resolves a type name to its descriptor.
func (r *Registry) Descriptor(name string) (Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	descriptor, ok := r.components[normalize(name)]
	if !ok {
		return Descriptor{}, false
	}
	return cloneDescriptor(descriptor), true
}

// Names returns registered type names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.components))
}

// Assets collects deduplicated stylesheets and scripts for the given types in
// first-seen order.
func (r *Registry) Assets(names []string) (stylesheets []string, scripts []Script) {
	if len(names) == 0 {
		return nil, nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	seenStyles := make(map[string]struct{})
	seenScripts := make(map[string]struct{})
	for _, name := range names {
		descriptor, ok := r.components[normalize(name)]
		if !ok {
			continue
		}
		for _, href := range descriptor.Stylesheets {
			if href == "" {
				continue
			}
			if _, exists := seenStyles[href]; exists {
				continue
			}
			seenStyles[href] = struct{}{}
			stylesheets = append(stylesheets, href)
		}
		for _, script := range descriptor.Scripts {
			key := scriptKey(script)
			if _, exists := seenScripts[key]; exists {
				continue
			}
			seenScripts[key] = struct{}{}
			scripts = append(scripts, script)
		}
	}
	return stylesheets, scripts
}

func cloneDescriptor(src Descriptor) Descriptor {
	return Descriptor{
		Name:        src.Name,
		Renderer:    src.Renderer,
		Stylesheets: slices.Clone(src.Stylesheets),
		Scripts:     slices.Clone(src.Scripts),
	}
}

func scriptKey(script Script) string {
	if script.Src != "" {
		return "src:" + script.Src
	}
	return "inline:" + script.Inline
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
