// Package model defines the component tree produced by the extractor and
// consumed by renderers. A Node carries a type name, an untyped props bag, and
// children that are either omitted, a single literal string, or an ordered
// sequence mixing nested nodes and strings. Nodes are built fresh from parsed
// JSON (or constructed by hand for debug payloads), so a tree never contains
// back-references and cannot form cycles.
package model
