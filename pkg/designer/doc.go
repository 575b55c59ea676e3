// Package designer customises the chat widget that hosts generated UI.
//
// A Customization is validated and converted into a go-theme Manifest whose
// tokens become CSS variables on the rendered root. Selector resolves theme
// and variant names for a request, and RendererConfig flattens the selection
// into the config renderers receive. Interactive drives the same flow from a
// terminal through survey.
package designer
