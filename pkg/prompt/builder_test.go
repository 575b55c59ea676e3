package prompt

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-genui/pkg/model"
	"github.com/goliatone/go-genui/pkg/schema"
)

func TestSystemPromptEmbedsCatalogueVerbatim(t *testing.T) {
	builder, err := NewBuilder()
	if err != nil {
		t.Fatalf("new builder: %v", err)
	}

	out, err := builder.System(nil)
	if err != nil {
		t.Fatalf("system: %v", err)
	}

	catalogue, err := schema.DefaultCatalogue().JSON()
	if err != nil {
		t.Fatalf("catalogue json: %v", err)
	}
	if !strings.Contains(out, catalogue) {
		t.Fatalf("prompt does not contain the catalogue JSON unescaped")
	}
	if strings.Contains(out, "&quot;") {
		t.Fatalf("prompt was HTML-escaped")
	}
	if strings.Contains(out, "currently looking at") {
		t.Fatalf("context section rendered without context")
	}
}

func TestSystemPromptIncludesContext(t *testing.T) {
	builder, err := NewBuilder(WithInstructions("Prefer charts."))
	if err != nil {
		t.Fatalf("new builder: %v", err)
	}
	nodes := []model.Node{{ID: "rev", Type: "kpi-card", Props: map[string]any{"title": "Revenue", "value": "10"}}}

	out, err := builder.System(nodes)
	if err != nil {
		t.Fatalf("system: %v", err)
	}
	want, _ := ContextJSON(nodes)
	if !strings.Contains(out, want) {
		t.Fatalf("prompt missing context JSON:\n%s", out)
	}
	if !strings.HasSuffix(out, "Prefer charts.\n") {
		t.Fatalf("instructions not appended: %q", out[len(out)-40:])
	}
}

func TestSystemPromptCustomTemplate(t *testing.T) {
	catalogue := schema.MustCatalogue(schema.ComponentType{
		Type:     "badge",
		Category: schema.CategoryDisplay,
		Props: map[string]schema.PropDef{
			"label": {Kind: schema.KindString, Required: true},
		},
		Children: schema.AllowNone(),
	})
	builder, err := NewBuilder(
		WithCatalogue(catalogue),
		WithTemplate(`{% autoescape off %}types={{ catalogue }}{% endautoescape %}`),
	)
	if err != nil {
		t.Fatalf("new builder: %v", err)
	}

	out, err := builder.System(nil)
	if err != nil {
		t.Fatalf("system: %v", err)
	}
	want := `types={
  "badge": {
    "category": "display",
    "props": {
      "label": {
        "type": "string",
        "required": true
      }
    },
    "children": "none"
  }
}
`
	if diff := cmp.Diff(want, out); diff != "" {
		t.Fatalf("prompt mismatch (-want +got):\n%s", diff)
	}
}

func TestContextJSONEmpty(t *testing.T) {
	out, err := ContextJSON(nil)
	if err != nil || out != "" {
		t.Fatalf("expected empty context, got %q, %v", out, err)
	}
}

func TestErrorNode(t *testing.T) {
	node := ErrorNode("  upstream timeout ")
	payload, err := json.Marshal(node)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"type":"info-card","props":{"message":"upstream timeout","title":"Something went wrong","variant":"error"}}`
	if string(payload) != want {
		t.Fatalf("unexpected node %s", payload)
	}
	if ErrorNode("").Props["message"] == "" {
		t.Fatalf("expected default message")
	}
}
