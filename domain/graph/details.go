package graph

// NodeDetails is the normalized per-node detail payload shown in the
// details panel.
type NodeDetails struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Layer       int         `json:"layer"`
	Relevance   float64     `json:"relevance"`
	Children    []TreeNode  `json:"children"`
	Path        []PathEntry `json:"path"`
}

// PathEntry is one ancestor in the chain from the root concept to a node.
type PathEntry struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Layer int    `json:"layer"`
}

// RelatedNode is a neighbor surfaced alongside node details. Connection
// strength mirrors relevance when the backend provides nothing better.
type RelatedNode struct {
	ID                 string  `json:"id"`
	Name               string  `json:"name"`
	Description        string  `json:"description"`
	Layer              int     `json:"layer"`
	Relevance          float64 `json:"relevance"`
	GraphID            string  `json:"graphId"`
	ConnectionStrength float64 `json:"connectionStrength"`
}

// Example is a worked example attached to a node.
type Example struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Learnings   []string `json:"learnings"`
}
