// Package extract recovers component descriptors from generator output that
// mixes prose, code fences, and raw JSON. It scans for balanced {...} or [...]
// spans, parses each strictly, flattens top-level arrays one level, and keeps
// only objects whose "type" is a lowercase-hyphen identifier.
package extract
