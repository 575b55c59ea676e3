package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-genui/pkg/model"
)

// Schema converts the prop definition into an OpenAPI schema used for value
// validation and API documentation.
func (d PropDef) Schema() *openapi3.Schema {
	var schema *openapi3.Schema
	switch d.Kind {
	case KindNumber:
		schema = openapi3.NewFloat64Schema()
	case KindBoolean:
		schema = openapi3.NewBoolSchema()
	case KindEnum:
		options := make([]any, len(d.Options))
		for idx, option := range d.Options {
			options[idx] = option
		}
		schema = openapi3.NewStringSchema().WithEnum(options...)
	case KindArray:
		schema = openapi3.NewArraySchema()
	case KindObject:
		schema = openapi3.NewObjectSchema()
	default:
		schema = openapi3.NewStringSchema()
	}
	schema.Description = d.Description
	if d.Default != nil {
		schema.WithDefault(d.Default)
	}
	return schema
}

// Check validates value against the prop definition without coercion.
func (d PropDef) Check(value any) error {
	return visit(d.Schema(), normalizeValue(value))
}

// Schema returns an object schema describing the component's props.
func (c ComponentType) Schema() *openapi3.Schema {
	schema := openapi3.NewObjectSchema()
	schema.Description = c.Description
	for _, name := range c.PropNames() {
		def := c.Props[name]
		schema.WithProperty(name, def.Schema())
		if def.Required {
			schema.Required = append(schema.Required, name)
		}
	}
	return schema
}

// Issue records a prop that failed validation or a required prop that was
// missing. Issues never abort rendering.
type Issue struct {
	Prop   string `json:"prop"`
	Reason string `json:"reason"`
}

func (i Issue) String() string {
	return i.Prop + ": " + i.Reason
}

// Resolution is the outcome of passing a node's props through the schema
// boundary.
type Resolution struct {
	Type  string
	Known bool
	// Props is never nil.
	Props   map[string]any
	Dropped []string
	Issues  []Issue
}

// Resolve applies defaults, drops undeclared props, and validates each value
// against its definition. Values that fail validation fall back to the
// declared default or are removed. Types without a catalogue entry keep their
// props untouched.
func (c *Catalogue) Resolve(node model.Node) Resolution {
	res := Resolution{Type: node.Type}
	entry, ok := c.Lookup(node.Type)
	if !ok {
		res.Props = make(map[string]any, len(node.Props))
		maps.Copy(res.Props, node.Props)
		return res
	}
	res.Known = true
	res.Props = make(map[string]any, len(entry.Props))
	schemas := c.schemas[entry.Type]

	for _, name := range slices.Sorted(maps.Keys(node.Props)) {
		def, declared := entry.Props[name]
		if !declared {
			res.Dropped = append(res.Dropped, name)
			continue
		}
		value := coerce(def.Kind, node.Props[name])
		if value == nil {
			continue
		}
		if err := visit(schemas[name], value); err != nil {
			res.Issues = append(res.Issues, Issue{Prop: name, Reason: err.Error()})
			continue
		}
		res.Props[name] = value
	}

	for _, name := range entry.PropNames() {
		if _, present := res.Props[name]; present {
			continue
		}
		def := entry.Props[name]
		switch {
		case def.Default != nil:
			res.Props[name] = def.Default
		case def.Required:
			res.Issues = append(res.Issues, Issue{Prop: name, Reason: "required prop is missing"})
		}
	}
	return res
}

func visit(schema *openapi3.Schema, value any) error {
	if schema == nil {
		return nil
	}
	err := schema.VisitJSON(value)
	if err == nil {
		return nil
	}
	var schemaErr *openapi3.SchemaError
	if errors.As(err, &schemaErr) && schemaErr.Reason != "" {
		return errors.New(schemaErr.Reason)
	}
	return fmt.Errorf("schema: %w", err)
}

// coerce nudges common generator mistakes into the declared kind: numbers sent
// as strings, labels sent as numbers, and integer Go values from hand-built
// trees.
func coerce(kind PropKind, value any) any {
	value = normalizeValue(value)
	switch kind {
	case KindString, KindFunction, KindEnum:
		switch v := value.(type) {
		case float64, bool:
			return model.LiteralText(v)
		}
	case KindNumber:
		if v, ok := value.(string); ok {
			if parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil && !math.IsNaN(parsed) && !math.IsInf(parsed, 0) {
				return parsed
			}
		}
	case KindBoolean:
		if v, ok := value.(string); ok {
			if parsed, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
				return parsed
			}
		}
	}
	return value
}

// normalizeValue maps Go values from hand-built trees or YAML overlays onto
// the shapes encoding/json produces.
func normalizeValue(value any) any {
	switch v := value.(type) {
	case nil, bool, float64, string, []any, map[string]any:
		return value
	case int:
		return float64(v)
	case int32:
		return float64(v)
	case int64:
		return float64(v)
	case float32:
		return float64(v)
	default:
		payload, err := json.Marshal(v)
		if err != nil {
			return value
		}
		var out any
		if err := json.Unmarshal(payload, &out); err != nil {
			return value
		}
		return out
	}
}
