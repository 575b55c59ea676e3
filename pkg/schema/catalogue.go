package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

// ErrUnknownType is returned by Get when a type has no catalogue entry.
var ErrUnknownType = errors.New("schema: unknown component type")

var typePattern = regexp.MustCompile(`^[a-z0-9-]+$`)

// ValidTypeName reports whether name uses only lowercase letters, digits, and
// hyphens. The extractor applies the same rule to generated descriptors.
func ValidTypeName(name string) bool {
	return typePattern.MatchString(name)
}

// Catalogue is the immutable set of known component types. Build it once at
// startup and share it; none of its methods mutate state.
type Catalogue struct {
	types   map[string]ComponentType
	names   []string
	schemas map[string]map[string]*openapi3.Schema
}

// NewCatalogue validates and indexes the supplied component types.
func NewCatalogue(types ...ComponentType) (*Catalogue, error) {
	catalogue := &Catalogue{
		types:   make(map[string]ComponentType, len(types)),
		schemas: make(map[string]map[string]*openapi3.Schema, len(types)),
	}
	for _, entry := range types {
		name := normalizeType(entry.Type)
		if name == "" {
			return nil, fmt.Errorf("schema: component type name is required")
		}
		if !ValidTypeName(name) {
			return nil, fmt.Errorf("schema: component type %q must match [a-z0-9-]+", entry.Type)
		}
		if _, exists := catalogue.types[name]; exists {
			return nil, fmt.Errorf("schema: component type %q defined twice", name)
		}
		if err := validateEntry(name, entry); err != nil {
			return nil, err
		}
		entry.Type = name
		catalogue.types[name] = cloneEntry(entry)
		catalogue.schemas[name] = propSchemas(entry)
		catalogue.names = append(catalogue.names, name)
	}
	slices.Sort(catalogue.names)
	return catalogue, nil
}

// MustCatalogue panics when NewCatalogue fails. Intended for package-level
// vocabulary definitions.
func MustCatalogue(types ...ComponentType) *Catalogue {
	catalogue, err := NewCatalogue(types...)
	if err != nil {
		panic(err)
	}
	return catalogue
}

// Merge returns a new catalogue holding base plus overlays. Later entries
// replace earlier ones with the same type name.
func Merge(base *Catalogue, overlays ...ComponentType) (*Catalogue, error) {
	byName := make(map[string]ComponentType)
	if base != nil {
		for name, entry := range base.types {
			byName[name] = entry
		}
	}
	for _, entry := range overlays {
		byName[normalizeType(entry.Type)] = entry
	}
	entries := make([]ComponentType, 0, len(byName))
	for _, name := range slices.Sorted(maps.Keys(byName)) {
		entry := byName[name]
		entry.Type = name
		entries = append(entries, entry)
	}
	return NewCatalogue(entries...)
}

// Lookup returns the entry for typ.
func (c *Catalogue) Lookup(typ string) (ComponentType, bool) {
	if c == nil {
		return ComponentType{}, false
	}
	entry, ok := c.types[typ]
	if !ok {
		entry, ok = c.types[normalizeType(typ)]
	}
	if !ok {
		return ComponentType{}, false
	}
	return cloneEntry(entry), true
}

// Get is Lookup with an error for callers that prefer error returns.
func (c *Catalogue) Get(typ string) (ComponentType, error) {
	entry, ok := c.Lookup(typ)
	if !ok {
		return ComponentType{}, fmt.Errorf("%w: %q", ErrUnknownType, typ)
	}
	return entry, nil
}

// Has reports whether typ is catalogued.
func (c *Catalogue) Has(typ string) bool {
	if c == nil {
		return false
	}
	_, ok := c.types[normalizeType(typ)]
	return ok
}

// Types returns the sorted type names.
func (c *Catalogue) Types() []string {
	if c == nil {
		return nil
	}
	return slices.Clone(c.names)
}

// Len returns the number of catalogued types.
func (c *Catalogue) Len() int {
	if c == nil {
		return 0
	}
	return len(c.names)
}

// ByCategory returns type names in the given category, sorted.
func (c *Catalogue) ByCategory(category Category) []string {
	if c == nil {
		return nil
	}
	var out []string
	for _, name := range c.names {
		if c.types[name].Category == category {
			out = append(out, name)
		}
	}
	return out
}

// MarshalJSON serialises the catalogue as an object keyed by type name, the
// shape interpolated into generation prompts.
func (c *Catalogue) MarshalJSON() ([]byte, error) {
	if c == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(c.types)
}

// JSON returns the indented prompt serialisation.
func (c *Catalogue) JSON() (string, error) {
	payload, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return "", fmt.Errorf("schema: encode catalogue: %w", err)
	}
	return string(payload), nil
}

func validateEntry(name string, entry ComponentType) error {
	if !entry.Category.Valid() {
		return fmt.Errorf("schema: component %q has unknown category %q", name, entry.Category)
	}
	for propName, def := range entry.Props {
		if strings.TrimSpace(propName) == "" {
			return fmt.Errorf("schema: component %q declares an empty prop name", name)
		}
		if !def.Kind.Valid() {
			return fmt.Errorf("schema: component %q prop %q has unknown kind %q", name, propName, def.Kind)
		}
		if def.Kind == KindEnum && len(def.Options) == 0 {
			return fmt.Errorf("schema: component %q enum prop %q has no options", name, propName)
		}
		if def.Default != nil {
			if err := def.Check(def.Default); err != nil {
				return fmt.Errorf("schema: component %q prop %q default: %w", name, propName, err)
			}
		}
	}
	if entry.Children.Mode == PolicyList {
		for _, child := range entry.Children.Allowed {
			if !ValidTypeName(child) {
				return fmt.Errorf("schema: component %q allows invalid child type %q", name, child)
			}
		}
	}
	return nil
}

func cloneEntry(entry ComponentType) ComponentType {
	out := entry
	if entry.Props != nil {
		out.Props = make(map[string]PropDef, len(entry.Props))
		for name, def := range entry.Props {
			def.Options = slices.Clone(def.Options)
			out.Props[name] = def
		}
	}
	out.Children.Allowed = slices.Clone(entry.Children.Allowed)
	return out
}

func propSchemas(entry ComponentType) map[string]*openapi3.Schema {
	out := make(map[string]*openapi3.Schema, len(entry.Props))
	for name, def := range entry.Props {
		out[name] = def.Schema()
	}
	return out
}
