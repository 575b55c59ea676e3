package schema

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
)

// Category groups component types for prompting and documentation.
type Category string

const (
	CategoryLayout      Category = "layout"
	CategoryTypography  Category = "typography"
	CategoryInput       Category = "input"
	CategoryDisplay     Category = "display"
	CategoryChart       Category = "chart"
	CategorySpecialized Category = "specialized"
)

// Valid reports whether c is one of the fixed categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryLayout, CategoryTypography, CategoryInput, CategoryDisplay, CategoryChart, CategorySpecialized:
		return true
	default:
		return false
	}
}

// PropKind is the declared value kind of a prop.
type PropKind string

const (
	KindString   PropKind = "string"
	KindNumber   PropKind = "number"
	KindBoolean  PropKind = "boolean"
	KindEnum     PropKind = "enum"
	KindArray    PropKind = "array"
	KindObject   PropKind = "object"
	KindFunction PropKind = "function"
)

// Valid reports whether k is a known prop kind.
func (k PropKind) Valid() bool {
	switch k {
	case KindString, KindNumber, KindBoolean, KindEnum, KindArray, KindObject, KindFunction:
		return true
	default:
		return false
	}
}

// PropDef describes one configurable prop of a component type. Function props
// carry an action identifier string since generated JSON cannot hold code.
type PropDef struct {
	Kind        PropKind `json:"type" yaml:"type"`
	Required    bool     `json:"required,omitempty" yaml:"required"`
	Options     []string `json:"options,omitempty" yaml:"options"`
	Default     any      `json:"default,omitempty" yaml:"default"`
	Description string   `json:"description,omitempty" yaml:"description"`
}

// PolicyMode selects how a component treats children.
type PolicyMode string

const (
	PolicyAll  PolicyMode = "all"
	PolicyNone PolicyMode = "none"
	PolicyList PolicyMode = "list"
)

// ChildPolicy declares which component types a parent may contain. It
// serialises as "all", "none", or the allow-list array.
type ChildPolicy struct {
	Mode    PolicyMode
	Allowed []string
}

// AllowAll permits any child type.
func AllowAll() ChildPolicy {
	return ChildPolicy{Mode: PolicyAll}
}

// AllowNone permits no component children (literal text is still accepted).
func AllowNone() ChildPolicy {
	return ChildPolicy{Mode: PolicyNone}
}

// AllowList permits only the named child types.
func AllowList(types ...string) ChildPolicy {
	allowed := make([]string, 0, len(types))
	for _, typ := range types {
		if typ = normalizeType(typ); typ != "" && !slices.Contains(allowed, typ) {
			allowed = append(allowed, typ)
		}
	}
	slices.Sort(allowed)
	return ChildPolicy{Mode: PolicyList, Allowed: allowed}
}

// Allows reports whether a child of the given type is permitted. The zero
// policy behaves like AllowAll.
func (p ChildPolicy) Allows(childType string) bool {
	switch p.Mode {
	case PolicyNone:
		return false
	case PolicyList:
		_, found := slices.BinarySearch(p.Allowed, normalizeType(childType))
		return found
	default:
		return true
	}
}

// MarshalJSON emits "all", "none", or the allow-list.
func (p ChildPolicy) MarshalJSON() ([]byte, error) {
	switch p.Mode {
	case PolicyNone:
		return json.Marshal(string(PolicyNone))
	case PolicyList:
		allowed := p.Allowed
		if allowed == nil {
			allowed = []string{}
		}
		return json.Marshal(allowed)
	default:
		return json.Marshal(string(PolicyAll))
	}
}

// UnmarshalJSON accepts the same three shapes MarshalJSON produces.
func (p *ChildPolicy) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("schema: decode child policy: %w", err)
	}
	policy, err := policyFromValue(raw)
	if err != nil {
		return err
	}
	*p = policy
	return nil
}

// UnmarshalYAML mirrors UnmarshalJSON for overlay files.
func (p *ChildPolicy) UnmarshalYAML(unmarshal func(any) error) error {
	var raw any
	if err := unmarshal(&raw); err != nil {
		return fmt.Errorf("schema: decode child policy: %w", err)
	}
	policy, err := policyFromValue(raw)
	if err != nil {
		return err
	}
	*p = policy
	return nil
}

func policyFromValue(raw any) (ChildPolicy, error) {
	switch v := raw.(type) {
	case nil:
		return AllowAll(), nil
	case string:
		switch PolicyMode(strings.ToLower(strings.TrimSpace(v))) {
		case PolicyAll, "":
			return AllowAll(), nil
		case PolicyNone:
			return AllowNone(), nil
		default:
			return ChildPolicy{}, fmt.Errorf("schema: unknown child policy %q", v)
		}
	case []any:
		types := make([]string, 0, len(v))
		for _, item := range v {
			name, ok := item.(string)
			if !ok {
				return ChildPolicy{}, fmt.Errorf("schema: child policy entries must be strings, got %T", item)
			}
			types = append(types, name)
		}
		return AllowList(types...), nil
	default:
		return ChildPolicy{}, fmt.Errorf("schema: unsupported child policy %T", raw)
	}
}

// ComponentType is the catalogue entry for one component.
type ComponentType struct {
	Type        string             `json:"-" yaml:"-"`
	Category    Category           `json:"category" yaml:"category"`
	Description string             `json:"description,omitempty" yaml:"description"`
	Props       map[string]PropDef `json:"props" yaml:"props"`
	Children    ChildPolicy        `json:"children" yaml:"children"`
}

// Prop returns the named prop definition.
func (c ComponentType) Prop(name string) (PropDef, bool) {
	def, ok := c.Props[name]
	return def, ok
}

// PropNames returns prop names sorted alphabetically.
func (c ComponentType) PropNames() []string {
	names := make([]string, 0, len(c.Props))
	for name := range c.Props {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func normalizeType(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
