// Package orchestrator wires prompt construction, the text generator, the JSON
// extractor, session grids, and the renderer registry into a single Generate
// call, and exposes the render-only path used by callers that already have
// nodes.
package orchestrator
