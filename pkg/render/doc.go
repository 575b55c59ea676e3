// Package render defines the output renderer contract, the per-request
// options renderers receive, and the name-keyed registry the orchestrator and
// CLI use to pick an output format.
package render
