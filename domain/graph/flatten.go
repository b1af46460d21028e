package graph

// TreeNode is one entry of the hierarchical payload returned by the graph
// fetch endpoint. Layer encodes depth from the root concept.
type TreeNode struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Relevance   float64    `json:"relevance"`
	Layer       int        `json:"layer"`
	Children    []TreeNode `json:"children"`
}

// Connection is an explicit cross-hierarchy edge delivered alongside the tree.
type Connection struct {
	Source   string  `json:"source"`
	Target   string  `json:"target"`
	Strength float64 `json:"strength"`
}

// Flatten walks a hierarchical payload and produces the canonical node and
// link collections: one node per tree entry, one link per parent->child edge,
// plus one link per explicit connection. Connections referencing ids absent
// from the tree are kept in storage; the projection drops them later.
func Flatten(root *TreeNode, connections []Connection, graphID string) ([]Node, []Link) {
	if root == nil {
		return []Node{}, []Link{}
	}

	var nodes []Node
	var links []Link

	var walk func(tn *TreeNode)
	walk = func(tn *TreeNode) {
		nodes = append(nodes, NewNode(tn.ID, "", tn.Title, tn.Description, tn.Relevance, tn.Layer, graphID))
		for i := range tn.Children {
			child := &tn.Children[i]
			links = append(links, Link{
				Source: tn.ID,
				Target: child.ID,
				Value:  1,
				Color:  DefaultColor,
			})
			walk(child)
		}
	}
	walk(root)

	for _, conn := range connections {
		value := conn.Strength
		if value <= 0 {
			value = 1
		}
		links = append(links, Link{
			Source: conn.Source,
			Target: conn.Target,
			Value:  value,
			Color:  DefaultColor,
		})
	}

	return nodes, links
}
