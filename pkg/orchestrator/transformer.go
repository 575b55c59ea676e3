package orchestrator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"strings"

	"github.com/goliatone/go-genui/pkg/model"
)

// Transformer rewrites extracted nodes before they are merged and rendered.
// Implementations may rename types, fill defaults, or drop nodes.
type Transformer interface {
	Transform(ctx context.Context, nodes []model.Node) ([]model.Node, error)
}

// TransformerFunc adapts plain functions to the Transformer interface.
type TransformerFunc func(ctx context.Context, nodes []model.Node) ([]model.Node, error)

// Transform executes the wrapped function when non-nil.
func (fn TransformerFunc) Transform(ctx context.Context, nodes []model.Node) ([]model.Node, error) {
	if fn == nil {
		return nodes, nil
	}
	return fn(ctx, nodes)
}

// Chain runs transformers in order.
func Chain(transformers ...Transformer) Transformer {
	return TransformerFunc(func(ctx context.Context, nodes []model.Node) ([]model.Node, error) {
		var err error
		for _, t := range transformers {
			if t == nil {
				continue
			}
			if nodes, err = t.Transform(ctx, nodes); err != nil {
				return nil, err
			}
		}
		return nodes, nil
	})
}

// JSONPresetTransformer applies declarative patches loaded from JSON to every
// node in the tree:
//
//	{
//	  "aliases":  {"chart": "chart-card"},
//	  "defaults": {"chart-card": {"chartType": "bar"}},
//	  "nodes":    {"revenue": {"props": {"description": "Last 30 days"}}}
//	}
//
// Aliases rename types, defaults fill props the model left out, and node
// patches overwrite props on the node with the matching id.
type JSONPresetTransformer struct {
	document presetDocument
}

type presetDocument struct {
	Aliases  map[string]string         `json:"aliases"`
	Defaults map[string]map[string]any `json:"defaults"`
	Nodes    map[string]nodePatch      `json:"nodes"`
}

type nodePatch struct {
	Type  string         `json:"type"`
	Props map[string]any `json:"props"`
}

// NewJSONPresetTransformer constructs a transformer from raw JSON bytes.
func NewJSONPresetTransformer(data []byte) (*JSONPresetTransformer, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.New("json preset transformer: document is empty")
	}
	var document presetDocument
	if err := json.Unmarshal(data, &document); err != nil {
		return nil, fmt.Errorf("json preset transformer: parse document: %w", err)
	}
	return &JSONPresetTransformer{document: document}, nil
}

// NewJSONPresetTransformerFromFS loads a preset document from fsys.
func NewJSONPresetTransformerFromFS(fsys fs.FS, path string) (*JSONPresetTransformer, error) {
	if fsys == nil {
		return nil, errors.New("json preset transformer: filesystem is nil")
	}
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("json preset transformer: path is required")
	}
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("json preset transformer: read %s: %w", path, err)
	}
	return NewJSONPresetTransformer(data)
}

// Transform returns patched copies; the input slice is left untouched.
func (t *JSONPresetTransformer) Transform(ctx context.Context, nodes []model.Node) ([]model.Node, error) {
	out := model.CloneAll(nodes)
	for idx := range out {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		t.apply(&out[idx])
	}
	return out, nil
}

func (t *JSONPresetTransformer) apply(node *model.Node) {
	if alias, ok := t.document.Aliases[node.Type]; ok && alias != "" {
		node.Type = alias
	}
	if patch, ok := t.document.Nodes[node.ID]; ok && node.ID != "" {
		if patch.Type != "" {
			node.Type = patch.Type
		}
		if len(patch.Props) > 0 {
			if node.Props == nil {
				node.Props = make(map[string]any, len(patch.Props))
			}
			maps.Copy(node.Props, patch.Props)
		}
	}
	if defaults := t.document.Defaults[node.Type]; len(defaults) > 0 {
		if node.Props == nil {
			node.Props = make(map[string]any, len(defaults))
		}
		for key, value := range defaults {
			if _, set := node.Props[key]; !set {
				node.Props[key] = value
			}
		}
	}
	for _, child := range node.Children.Items {
		if child.Node != nil {
			t.apply(child.Node)
		}
	}
}
