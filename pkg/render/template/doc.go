// Package template defines the engine-agnostic template contract. The
// gotemplate subpackage provides the pongo2-backed implementation.
package template
