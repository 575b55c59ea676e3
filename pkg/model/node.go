package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Node is a single component descriptor in a generated tree. Type names a
// schema entry (or an unrecognised string); Props are untyped until they pass
// through the schema boundary at render time.
type Node struct {
	ID       string         `json:"id,omitempty"`
	Type     string         `json:"type"`
	Props    map[string]any `json:"props,omitempty"`
	Children Children       `json:"children,omitzero"`
}

// Child is one element of a children sequence: either a nested node or a
// literal text run.
type Child struct {
	Node *Node
	Text string
}

// NodeChild wraps a node as a sequence element.
func NodeChild(node Node) Child {
	return Child{Node: &node}
}

// TextChild wraps literal text as a sequence element.
func TextChild(text string) Child {
	return Child{Text: text}
}

// IsText reports whether the child is a literal text run.
func (c Child) IsText() bool {
	return c.Node == nil
}

// Children captures the three accepted shapes of a node's children: omitted,
// a single string, or an ordered sequence mixing nodes and strings.
type Children struct {
	Text  string
	Items []Child
	// Seq is true when the children were supplied as a sequence, even an
	// empty one.
	Seq bool
}

// TextContent builds single-string children.
func TextContent(text string) Children {
	return Children{Text: text}
}

// Sequence builds sequence children.
func Sequence(items ...Child) Children {
	return Children{Items: items, Seq: true}
}

// IsZero reports whether children were omitted.
func (c Children) IsZero() bool {
	return !c.Seq && c.Text == "" && len(c.Items) == 0
}

// IsSequence reports whether children hold an ordered sequence.
func (c Children) IsSequence() bool {
	return c.Seq || len(c.Items) > 0
}

// MarshalJSON encodes the children in the same shape they were supplied.
func (c Children) MarshalJSON() ([]byte, error) {
	if c.IsSequence() {
		out := make([]any, 0, len(c.Items))
		for _, item := range c.Items {
			if item.IsText() {
				out = append(out, item.Text)
				continue
			}
			out = append(out, item.Node)
		}
		return json.Marshal(out)
	}
	if c.Text != "" {
		return json.Marshal(c.Text)
	}
	return []byte("null"), nil
}

// UnmarshalJSON accepts null, a string, or an array of nodes/strings. Nested
// arrays are flattened in order; other scalars become their literal text.
func (c *Children) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*c = Children{}
		return nil
	}
	var raw any
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return fmt.Errorf("model: decode children: %w", err)
	}
	*c = ChildrenFromValue(raw)
	return nil
}

// ChildrenFromValue converts a decoded JSON value into Children.
func ChildrenFromValue(value any) Children {
	switch v := value.(type) {
	case nil:
		return Children{}
	case string:
		return Children{Text: v}
	case []any:
		items := make([]Child, 0, len(v))
		items = appendChildren(items, v)
		return Children{Items: items, Seq: true}
	default:
		return Children{Text: LiteralText(v)}
	}
}

func appendChildren(items []Child, values []any) []Child {
	for _, value := range values {
		switch v := value.(type) {
		case nil:
			continue
		case string:
			items = append(items, TextChild(v))
		case []any:
			items = appendChildren(items, v)
		case map[string]any:
			node := FromMap(v)
			items = append(items, Child{Node: &node})
		default:
			items = append(items, TextChild(LiteralText(v)))
		}
	}
	return items
}

// UnmarshalJSON decodes a node leniently: a non-string id is formatted, and
// a non-string type is kept empty so renderers can show a placeholder instead
// of failing the whole payload.
func (n *Node) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("model: decode node: %w", err)
	}
	*n = FromMap(raw)
	return nil
}

// FromMap builds a node from a decoded JSON object.
func FromMap(raw map[string]any) Node {
	node := Node{}
	if raw == nil {
		return node
	}
	if typ, ok := raw["type"].(string); ok {
		node.Type = typ
	}
	switch id := raw["id"].(type) {
	case string:
		node.ID = id
	case float64:
		node.ID = strconv.FormatFloat(id, 'f', -1, 64)
	}
	if props, ok := raw["props"].(map[string]any); ok {
		node.Props = props
	}
	node.Children = ChildrenFromValue(raw["children"])
	return node
}

// LiteralText formats a scalar the way it would appear in JSON.
func LiteralText(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case json.Number:
		return v.String()
	default:
		payload, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(payload)
	}
}
