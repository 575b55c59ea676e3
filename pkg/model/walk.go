package model

// Walk visits node and its descendants depth-first in document order. The
// visitor returns false to skip a node's children.
func Walk(node Node, visit func(node Node, depth int) bool) {
	walk(node, 0, visit)
}

func walk(node Node, depth int, visit func(Node, int) bool) {
	if !visit(node, depth) {
		return
	}
	for _, child := range node.Children.Items {
		if child.Node == nil {
			continue
		}
		walk(*child.Node, depth+1, visit)
	}
}

// CountNodes returns the number of component nodes across the forest.
func CountNodes(nodes []Node) int {
	total := 0
	for _, node := range nodes {
		Walk(node, func(Node, int) bool {
			total++
			return true
		})
	}
	return total
}

// Clone returns a deep copy of node. Prop values that are JSON containers are
// copied recursively; other values are shared.
func (n Node) Clone() Node {
	out := Node{
		ID:    n.ID,
		Type:  n.Type,
		Props: cloneMap(n.Props),
		Children: Children{
			Text: n.Children.Text,
			Seq:  n.Children.Seq,
		},
	}
	if len(n.Children.Items) > 0 {
		out.Children.Items = make([]Child, len(n.Children.Items))
		for idx, child := range n.Children.Items {
			if child.Node == nil {
				out.Children.Items[idx] = TextChild(child.Text)
				continue
			}
			cloned := child.Node.Clone()
			out.Children.Items[idx] = Child{Node: &cloned}
		}
	}
	return out
}

// CloneAll deep-copies a slice of nodes.
func CloneAll(nodes []Node) []Node {
	if nodes == nil {
		return nil
	}
	out := make([]Node, len(nodes))
	for idx, node := range nodes {
		out[idx] = node.Clone()
	}
	return out
}

func cloneMap(src map[string]any) map[string]any {
	if src == nil {
		return nil
	}
	out := make(map[string]any, len(src))
	for key, value := range src {
		out[key] = cloneValue(value)
	}
	return out
}

func cloneValue(value any) any {
	switch v := value.(type) {
	case map[string]any:
		return cloneMap(v)
	case []any:
		out := make([]any, len(v))
		for idx, item := range v {
			out[idx] = cloneValue(item)
		}
		return out
	default:
		return v
	}
}
