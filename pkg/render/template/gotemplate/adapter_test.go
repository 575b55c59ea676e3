package gotemplate_test

import (
	"fmt"
	"io"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/goliatone/go-genui/pkg/render/template/gotemplate"
	"github.com/goliatone/go-genui/pkg/testsupport"
)

func newEngine(t *testing.T) *gotemplate.Engine {
	t.Helper()

	files := fstest.MapFS{
		"hello.tmpl":      {Data: []byte(`Hello {{ name }}!`)},
		"use-global.tmpl": {Data: []byte(`env={{ settings.env }}`)},
		"use-filter.tmpl": {Data: []byte(`{{ name|shout }}`)},
		"badge.tmpl":      {Data: []byte(`<span>{{ label }}</span>{{ body|safe }}`)},
	}
	engine, err := gotemplate.New(gotemplate.WithFS(files))
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return engine
}

func TestEngineRenderTemplate(t *testing.T) {
	engine := newEngine(t)

	result, written := testsupport.CaptureTemplateOutput(t, func(w io.Writer) (string, error) {
		return engine.RenderTemplate("hello", map[string]any{"name": "Ada"}, w)
	})
	if result != "Hello Ada!" {
		t.Fatalf("unexpected result %q", result)
	}
	if written != result {
		t.Fatalf("writer mismatch: %q vs %q", written, result)
	}
}

func TestEngineGlobalContext(t *testing.T) {
	engine := newEngine(t)
	if err := engine.GlobalContext(map[string]any{
		"settings": map[string]any{"env": "staging"},
	}); err != nil {
		t.Fatalf("global context: %v", err)
	}

	result, err := engine.RenderTemplate("use-global", nil)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if result != "env=staging" {
		t.Fatalf("unexpected result %q", result)
	}
}

func TestEngineRegisterFilter(t *testing.T) {
	engine := newEngine(t)
	err := engine.RegisterFilter("shout", func(input any, _ any) (any, error) {
		return fmt.Sprintf("%s!", strings.ToUpper(fmt.Sprint(input))), nil
	})
	if err != nil {
		t.Fatalf("register filter: %v", err)
	}

	result, err := engine.RenderTemplate("use-filter", map[string]any{"name": "Ada"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if result != "ADA!" {
		t.Fatalf("unexpected result %q", result)
	}

	if err := engine.RegisterFilter("shout", func(any, any) (any, error) { return nil, nil }); err == nil {
		t.Fatalf("expected duplicate filter error")
	}
}

func TestEngineAutoescapesValues(t *testing.T) {
	engine := newEngine(t)

	result, err := engine.RenderTemplate("badge", map[string]any{
		"label": "<b>x</b>",
		"body":  "<i>ok</i>",
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(result, "&lt;b&gt;x&lt;/b&gt;") {
		t.Fatalf("expected escaped label, got %q", result)
	}
	if !strings.Contains(result, "<i>ok</i>") {
		t.Fatalf("expected safe body verbatim, got %q", result)
	}
}

func TestEngineRenderStringWithBuiltInFilters(t *testing.T) {
	engine := newEngine(t)

	type payload struct {
		Name  string  `json:"name"`
		Value float64 `json:"value"`
		Max   float64 `json:"max"`
	}
	result, err := engine.Render(
		`{{ name|initials }} {{ value|percent:max|floatformat:0 }} {{ "  x  "|trim }}`,
		payload{Name: "ada lovelace", Value: 30, Max: 60},
	)
	if err != nil {
		t.Fatalf("render string: %v", err)
	}
	if result != "AL 50 x" {
		t.Fatalf("unexpected result %q", result)
	}

	compact, err := engine.RenderString(`{% autoescape off %}{{ data|tojson:false }}{% endautoescape %}`, map[string]any{
		"data": map[string]any{"type": "badge"},
	})
	if err != nil {
		t.Fatalf("render tojson: %v", err)
	}
	if compact != `{"type":"badge"}` {
		t.Fatalf("unexpected json %q", compact)
	}
}

func TestNewRequiresSource(t *testing.T) {
	if _, err := gotemplate.New(); err == nil {
		t.Fatalf("expected error without template source")
	}
}
