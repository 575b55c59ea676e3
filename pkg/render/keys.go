package render

import (
	"strconv"

	"github.com/goliatone/go-genui/pkg/model"
)

// ChildKey returns the reconciliation key for the child at index: the child's
// own id when present, else its position. Keys are stable across re-renders of
// an unchanged sequence. Reordering children without ids changes their keys.
func ChildKey(child model.Child, index int) string {
	if child.Node != nil && child.Node.ID != "" {
		return child.Node.ID
	}
	return strconv.Itoa(index)
}

// RootKey is ChildKey for top-level nodes.
func RootKey(node model.Node, index int) string {
	if node.ID != "" {
		return node.ID
	}
	return strconv.Itoa(index)
}
