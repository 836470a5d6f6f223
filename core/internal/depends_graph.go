package internal

import (
	"fmt"
	"sort"
)

type Node struct {
	ID           string
	Dependencies []string
}

type Graph map[string]*Node

func NewDependsGraph() Graph {
	return make(Graph)
}

func (g Graph) AddNode(id string, dependencies ...string) {
	g[id] = &Node{
		ID:           id,
		Dependencies: dependencies,
	}
}

// Build topologically sorts the graph. Roots and each node's dependencies are
// walked in ID order, so the result does not depend on declaration order.
func (g Graph) Build() ([]string, error) {
	ids := make([]string, 0, len(g))
	for id := range g {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	visited := make(map[string]bool)
	inStack := make(map[string]bool)
	result := make([]string, 0, len(g))

	for _, id := range ids {
		if err := g.visit(id, visited, inStack, &result); err != nil {
			return nil, err
		}
	}

	return result, nil
}

func (g Graph) visit(id string, visited, inStack map[string]bool, result *[]string) error {
	if inStack[id] {
		return fmt.Errorf("cycle detected for node: %s", id)
	}

	if visited[id] {
		return nil
	}

	node, ok := g[id]
	if !ok {
		return fmt.Errorf("dependency not found: %s", id)
	}

	deps := append([]string(nil), node.Dependencies...)
	sort.Strings(deps)

	inStack[id] = true
	for _, dep := range deps {
		if err := g.visit(dep, visited, inStack, result); err != nil {
			return err
		}
	}
	inStack[id] = false
	visited[id] = true

	*result = append(*result, id)

	return nil
}
