package render

import (
	"context"

	"github.com/goliatone/go-genui/pkg/model"
)

// Renderer turns a forest of component nodes into an output document (HTML
// fragment, terminal outline, ...). Implementations must tolerate any node the
// extractor can produce and degrade to placeholders instead of failing.
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, nodes []model.Node, options RenderOptions) ([]byte, error)
}
