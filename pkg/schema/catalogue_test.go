package schema

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-genui/pkg/model"
)

func TestDefaultCatalogueCoversVocabulary(t *testing.T) {
	catalogue := DefaultCatalogue()

	want := map[Category][]string{
		CategoryLayout:      {"card", "container", "divider", "grid", "stack", "tab", "tabs"},
		CategoryTypography:  {"code-block", "heading", "markdown", "text"},
		CategoryInput:       {"button", "checkbox", "select", "text-input"},
		CategoryDisplay:     {"avatar", "badge", "icon", "image", "list", "progress", "table"},
		CategoryChart:       {"chart-card", "sparkline"},
		CategorySpecialized: {"info-card", "kpi-card", "stat-group", "timeline"},
	}
	total := 0
	for category, types := range want {
		total += len(types)
		if diff := cmp.Diff(types, catalogue.ByCategory(category)); diff != "" {
			t.Fatalf("category %s mismatch (-want +got):\n%s", category, diff)
		}
	}
	if catalogue.Len() != total {
		t.Fatalf("expected %d types, got %d", total, catalogue.Len())
	}

	info, ok := catalogue.Lookup("info-card")
	if !ok {
		t.Fatalf("info-card missing")
	}
	if diff := cmp.Diff([]string{"info", "success", "warning", "error"}, info.Props["variant"].Options); diff != "" {
		t.Fatalf("info-card variant options mismatch (-want +got):\n%s", diff)
	}
}

func TestNewCatalogueRejectsInvalidEntries(t *testing.T) {
	cases := []struct {
		name  string
		types []ComponentType
		want  string
	}{
		{
			name:  "empty name",
			types: []ComponentType{{Category: CategoryLayout}},
			want:  "name is required",
		},
		{
			name:  "bad characters",
			types: []ComponentType{{Type: "kpi_card", Category: CategoryDisplay}},
			want:  "must match",
		},
		{
			name: "duplicate",
			types: []ComponentType{
				{Type: "text", Category: CategoryTypography},
				{Type: "Text", Category: CategoryTypography},
			},
			want: "defined twice",
		},
		{
			name:  "unknown category",
			types: []ComponentType{{Type: "x", Category: "widgets"}},
			want:  "unknown category",
		},
		{
			name: "unknown prop kind",
			types: []ComponentType{{Type: "x", Category: CategoryDisplay, Props: map[string]PropDef{
				"size": {Kind: "integer"},
			}}},
			want: "unknown kind",
		},
		{
			name: "enum without options",
			types: []ComponentType{{Type: "x", Category: CategoryDisplay, Props: map[string]PropDef{
				"variant": {Kind: KindEnum},
			}}},
			want: "has no options",
		},
		{
			name: "default outside enum",
			types: []ComponentType{{Type: "x", Category: CategoryDisplay, Props: map[string]PropDef{
				"variant": {Kind: KindEnum, Options: []string{"a", "b"}, Default: "c"},
			}}},
			want: "default",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewCatalogue(tc.types...)
			if err == nil {
				t.Fatalf("expected error containing %q", tc.want)
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error containing %q, got %v", tc.want, err)
			}
		})
	}
}

func TestCatalogueLookupReturnsCopies(t *testing.T) {
	catalogue := DefaultCatalogue()
	entry, ok := catalogue.Lookup("button")
	if !ok {
		t.Fatalf("button missing")
	}
	entry.Props["variant"] = PropDef{Kind: KindString}
	delete(entry.Props, "label")

	again, _ := catalogue.Lookup("button")
	if again.Props["variant"].Kind != KindEnum {
		t.Fatalf("catalogue mutated through lookup result")
	}
	if _, ok := again.Props["label"]; !ok {
		t.Fatalf("catalogue lost prop through lookup result")
	}

	if _, err := catalogue.Get("does-not-exist"); !errors.Is(err, ErrUnknownType) {
		t.Fatalf("expected ErrUnknownType, got %v", err)
	}
}

func TestChildPolicy(t *testing.T) {
	list := AllowList("tab", "Tab", " badge ")
	if diff := cmp.Diff([]string{"badge", "tab"}, list.Allowed); diff != "" {
		t.Fatalf("allow list mismatch (-want +got):\n%s", diff)
	}
	if !list.Allows("tab") || list.Allows("card") {
		t.Fatalf("allow list membership wrong: %+v", list)
	}
	if AllowNone().Allows("text") {
		t.Fatalf("none policy should reject children")
	}
	if !AllowAll().Allows("anything") || !(ChildPolicy{}).Allows("anything") {
		t.Fatalf("all policy should accept children")
	}

	for _, tc := range []struct {
		policy ChildPolicy
		want   string
	}{
		{AllowAll(), `"all"`},
		{AllowNone(), `"none"`},
		{AllowList("tab"), `["tab"]`},
	} {
		payload, err := json.Marshal(tc.policy)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		if string(payload) != tc.want {
			t.Fatalf("expected %s, got %s", tc.want, payload)
		}
		var decoded ChildPolicy
		if err := json.Unmarshal(payload, &decoded); err != nil {
			t.Fatalf("unmarshal %s: %v", payload, err)
		}
		if diff := cmp.Diff(tc.policy, decoded); diff != "" {
			t.Fatalf("decoded policy mismatch (-want +got):\n%s", diff)
		}
	}
}

func TestCatalogueMarshalKeyedByType(t *testing.T) {
	catalogue := MustCatalogue(ComponentType{
		Type:     "badge",
		Category: CategoryDisplay,
		Props: map[string]PropDef{
			"label": {Kind: KindString, Required: true},
		},
		Children: AllowNone(),
	})

	payload, err := json.Marshal(catalogue)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"badge":{"category":"display","props":{"label":{"type":"string","required":true}},"children":"none"}}`
	if string(payload) != want {
		t.Fatalf("unexpected catalogue JSON:\nwant %s\ngot  %s", want, payload)
	}
}

func TestResolveAppliesSchemaBoundary(t *testing.T) {
	catalogue := DefaultCatalogue()
	res := catalogue.Resolve(model.Node{
		Type: "kpi-card",
		Props: map[string]any{
			"title": "Revenue",
			"value": 1200,
			"trend": "sideways",
			"bogus": true,
		},
	})

	if !res.Known {
		t.Fatalf("expected kpi-card to be known")
	}
	if diff := cmp.Diff([]string{"bogus"}, res.Dropped); diff != "" {
		t.Fatalf("dropped mismatch (-want +got):\n%s", diff)
	}
	if res.Props["value"] != "1200" {
		t.Fatalf("expected numeric value coerced to string, got %#v", res.Props["value"])
	}
	if res.Props["trend"] != "neutral" {
		t.Fatalf("expected invalid enum replaced by default, got %#v", res.Props["trend"])
	}
	if len(res.Issues) != 1 || res.Issues[0].Prop != "trend" {
		t.Fatalf("expected one trend issue, got %+v", res.Issues)
	}
}

func TestResolveReportsMissingRequired(t *testing.T) {
	res := DefaultCatalogue().Resolve(model.Node{Type: "progress", Props: map[string]any{"value": "42"}})
	if res.Props["value"] != float64(42) {
		t.Fatalf("expected numeric string coerced, got %#v", res.Props["value"])
	}
	if res.Props["max"] != float64(100) {
		t.Fatalf("expected default max, got %#v", res.Props["max"])
	}

	missing := DefaultCatalogue().Resolve(model.Node{Type: "progress"})
	if len(missing.Issues) != 1 || missing.Issues[0].Prop != "value" {
		t.Fatalf("expected missing value issue, got %+v", missing.Issues)
	}
}

func TestResolveUnknownTypePassesPropsThrough(t *testing.T) {
	props := map[string]any{"anything": []any{"x"}}
	res := DefaultCatalogue().Resolve(model.Node{Type: "does-not-exist", Props: props})
	if res.Known {
		t.Fatalf("expected unknown type")
	}
	if diff := cmp.Diff(props, res.Props); diff != "" {
		t.Fatalf("props mismatch (-want +got):\n%s", diff)
	}

	empty := DefaultCatalogue().Resolve(model.Node{Type: "nope"})
	if empty.Props == nil {
		t.Fatalf("resolved props must never be nil")
	}
}

func TestLoadCatalogueOverlays(t *testing.T) {
	fsys := fstest.MapFS{
		"overlays/metrics.yaml": {Data: []byte(`
components:
  gauge:
    category: chart
    description: Radial gauge
    props:
      value:
        type: number
        required: true
      max:
        type: number
        default: 100
    children: none
  badge:
    category: display
    props:
      text:
        type: string
    children: [text, icon]
`)},
		"overlays/notes.txt": {Data: []byte("ignored")},
	}

	catalogue, err := LoadCatalogue(DefaultCatalogue(), fsys)
	if err != nil {
		t.Fatalf("load catalogue: %v", err)
	}

	gauge, ok := catalogue.Lookup("gauge")
	if !ok {
		t.Fatalf("gauge overlay missing")
	}
	if gauge.Props["max"].Default != float64(100) {
		t.Fatalf("expected YAML default normalised to float64, got %#v", gauge.Props["max"].Default)
	}
	if gauge.Children.Allows("text") {
		t.Fatalf("gauge should allow no children")
	}

	badge, _ := catalogue.Lookup("badge")
	if _, ok := badge.Props["label"]; ok {
		t.Fatalf("overlay should replace the base badge entry")
	}
	if !badge.Children.Allows("icon") || badge.Children.Allows("card") {
		t.Fatalf("badge allow list not decoded: %+v", badge.Children)
	}
	if catalogue.Len() != DefaultCatalogue().Len()+1 {
		t.Fatalf("expected one new type, got %d vs %d", catalogue.Len(), DefaultCatalogue().Len())
	}
}

func TestLoadFSRejectsDuplicates(t *testing.T) {
	fsys := fstest.MapFS{
		"a.json": {Data: []byte(`{"components":{"gauge":{"category":"chart"}}}`)},
		"b.yml":  {Data: []byte("components:\n  gauge:\n    category: chart\n")},
	}
	if _, err := LoadFS(fsys); err == nil || !strings.Contains(err.Error(), "duplicate component") {
		t.Fatalf("expected duplicate error, got %v", err)
	}
}
