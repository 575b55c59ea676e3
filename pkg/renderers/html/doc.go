// Package html renders component trees to HTML.
//
// The renderer walks each tree recursively, resolves props against the
// schema catalogue, and dispatches every node to the component registry.
// Nodes it cannot render (unknown types, missing types, nesting past the
// depth limit, renderer failures) become visible placeholders so the rest of
// the tree still renders. Child keys are the child's id when present, else
// its index in the sequence.
package html
