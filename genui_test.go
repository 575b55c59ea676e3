package genui

import (
	"context"
	"io/fs"
	"strings"
	"testing"

	"github.com/goliatone/go-genui/pkg/designer"
)

func TestAssetsFSContainsStylesheet(t *testing.T) {
	data, err := fs.ReadFile(AssetsFS(), "genui.css")
	if err != nil {
		t.Fatalf("expected stylesheet to be readable: %v", err)
	}
	if !strings.Contains(string(data), ".genui-root") {
		t.Fatalf("expected stylesheet to style the root container")
	}
}

func TestEmbeddedTemplatesListsComponents(t *testing.T) {
	entries, err := fs.ReadDir(EmbeddedTemplates(), "components")
	if err != nil {
		t.Fatalf("read templates: %v", err)
	}
	if len(entries) == 0 {
		t.Fatalf("expected embedded component templates")
	}
}

func TestRenderTextWithTheme(t *testing.T) {
	manifest, err := designer.Default().Manifest()
	if err != nil {
		t.Fatalf("manifest: %v", err)
	}
	selector, err := designer.NewSelector("", "", manifest)
	if err != nil {
		t.Fatalf("selector: %v", err)
	}

	out, err := RenderText(context.Background(),
		`Here is your badge: {"type":"badge","props":{"label":"New"}} and a mystery {"type":"warp-drive"}`,
		"", WithThemeSelector(selector))
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	html := string(out)
	for _, want := range []string{"New", "warp-drive", `data-theme="default"`} {
		if !strings.Contains(html, want) {
			t.Fatalf("output missing %q:\n%s", want, html)
		}
	}
}

func TestExtractAndRenderNodes(t *testing.T) {
	nodes := Extract(`[{"type":"heading","props":{"level":2},"children":"Hi"}]`)
	if len(nodes) != 1 {
		t.Fatalf("expected one node, got %d", len(nodes))
	}
	out, err := RenderNodes(context.Background(), nodes, "text")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if string(out) != "## Hi\n" {
		t.Fatalf("unexpected output %q", out)
	}
}
