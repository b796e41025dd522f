// Package pathway handles the Reactome pathway hierarchy and pathway
// diagram export.
package pathway

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/reactome-fi/fiflow/internal/rest"
)

// Node is one pathway in the Reactome hierarchy.
type Node struct {
	Name       string  `json:"name"`
	DBID       int64   `json:"dbId"`
	HasDiagram bool    `json:"hasDiagram"`
	Children   []*Node `json:"children"`
}

// Client loads the hierarchy and exports diagrams through the ReactomeFI
// service.
type Client struct {
	rest   *rest.Client
	logger *zap.Logger
}

// NewClient creates a pathway client over the given CyREST client.
func NewClient(c *rest.Client) *Client {
	return &Client{rest: c, logger: zap.NewNop()}
}

// SetLogger sets the logger for export progress messages.
func (c *Client) SetLogger(l *zap.Logger) {
	c.logger = l
}

// LoadHierarchy fetches the Reactome pathway tree. Loading it also primes
// the enrichment backend, which rejects calls until the hierarchy is
// present.
func (c *Client) LoadHierarchy() (*Node, error) {
	var root *Node
	if err := c.rest.GetData(&root, c.rest.FIURL("pathwayTree")); err != nil {
		return nil, fmt.Errorf("load pathway hierarchy: %w", err)
	}
	if root == nil {
		return nil, fmt.Errorf("load pathway hierarchy: empty response")
	}
	return root, nil
}

// Find returns the first hierarchy node with the given pathway name, in
// depth-first order, or nil when the pathway is absent. The traversal
// keeps an explicit stack so deep hierarchies cannot exhaust the call
// stack.
func Find(root *Node, name string) *Node {
	if root == nil {
		return nil
	}
	stack := []*Node{root}
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if node.Name == name {
			return node
		}
		// Push children in reverse so the first child is visited first.
		for i := len(node.Children) - 1; i >= 0; i-- {
			stack = append(stack, node.Children[i])
		}
	}
	return nil
}

// Exportable is a pathway that has a renderable diagram.
type Exportable struct {
	Pathway string
	DBID    int64
}

// SelectExportable filters the pathways to those whose hierarchy node has
// a diagram, preserving input order.
func SelectExportable(root *Node, pathways []string) []Exportable {
	out := make([]Exportable, 0, len(pathways))
	for _, pathway := range pathways {
		if node := Find(root, pathway); node != nil && node.HasDiagram {
			out = append(out, Exportable{Pathway: pathway, DBID: node.DBID})
		}
	}
	return out
}
