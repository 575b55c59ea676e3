package render

import (
	theme "github.com/goliatone/go-theme"
)

// DefaultMaxDepth bounds recursion when RenderOptions.MaxDepth is unset.
const DefaultMaxDepth = 32

// RenderOptions describe per-request settings renderers use without changing
// the node tree itself.
type RenderOptions struct {
	// Theme carries resolved tokens, partial overrides, and asset URLs. Nil
	// renders with built-in templates and no CSS variables.
	Theme *theme.RendererConfig
	// MaxDepth limits nesting; nodes past the limit render as a truncation
	// placeholder. Zero selects DefaultMaxDepth.
	MaxDepth int
	// EnforceChildPolicy replaces children the catalogue does not allow under
	// their parent with a placeholder. Off by default: the policy is advisory.
	EnforceChildPolicy bool
	// Document wraps the fragment in a standalone page with the stylesheet
	// inlined.
	Document bool
	// Stats, when non-nil, receives counters for the pass.
	Stats *Stats
}

// Depth returns the effective depth limit.
func (o RenderOptions) Depth() int {
	if o.MaxDepth <= 0 {
		return DefaultMaxDepth
	}
	return o.MaxDepth
}
