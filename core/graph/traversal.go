package graph

import (
	"context"

	"github.com/eliassondavid/paragrafen-ai/helper"
	"github.com/eliassondavid/paragrafen-ai/model"
)

// ReferenceGraph is the edge store the traversal walks. The references
// handler in the database package satisfies it.
type ReferenceGraph interface {
	SelectReferencesFrom(namespace string) ([]model.Reference, error)
	SelectCitingChunks(target string) ([]string, error)
}

// Node is one visited position in the citation graph. Chunk namespaces
// and statute keys (e.g. "sfs::1915:218") alternate along a path: a chunk
// cites a statute, a statute is cited by chunks.
type Node struct {
	Key          string   `json:"key"`
	IsStatute    bool     `json:"is_statute"`
	RelationType string   `json:"relation_type,omitempty"` // edge that led here
	Distance     int      `json:"distance"`
	Path         []string `json:"path"`
}

// Walk performs a breadth-first traversal of the citation graph starting
// from a chunk namespace. maxHops counts edges, so maxHops 2 reaches the
// chunks citing the same statutes as the start chunk. An empty
// relationTypes slice follows every edge.
func Walk(ctx context.Context, graph ReferenceGraph, namespace string, maxHops int, relationTypes []string) ([]*Node, error) {
	visited := map[string]bool{namespace: true}
	queue := []Node{{
		Key:      namespace,
		Distance: 0,
		Path:     []string{namespace},
	}}

	follow := make(map[string]bool, len(relationTypes))
	for _, relationType := range relationTypes {
		follow[relationType] = true
	}

	var results []*Node
	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, helper.NewError("walk cancelled", err)
		}

		current := queue[0]
		queue = queue[1:]
		results = append(results, &current)

		if current.Distance >= maxHops {
			continue
		}

		if current.IsStatute {
			// statute nodes fan back out to the chunks citing them
			citing, err := graph.SelectCitingChunks(current.Key)
			if err != nil {
				return nil, helper.NewError("select citing chunks", err)
			}
			for _, chunkNamespace := range citing {
				if visited[chunkNamespace] {
					continue
				}
				visited[chunkNamespace] = true
				queue = append(queue, next(current, chunkNamespace, false, "cited_by"))
			}
			continue
		}

		refs, err := graph.SelectReferencesFrom(current.Key)
		if err != nil {
			return nil, helper.NewError("select references", err)
		}
		for _, ref := range refs {
			if len(follow) > 0 && !follow[ref.RelationType] {
				continue
			}
			if visited[ref.Target] {
				continue
			}
			visited[ref.Target] = true
			queue = append(queue, next(current, ref.Target, true, ref.RelationType))
		}
	}

	return results, nil
}

func next(from Node, key string, isStatute bool, relationType string) Node {
	path := make([]string, len(from.Path), len(from.Path)+1)
	copy(path, from.Path)
	return Node{
		Key:          key,
		IsStatute:    isStatute,
		RelationType: relationType,
		Distance:     from.Distance + 1,
		Path:         append(path, key),
	}
}

// CitedStatutes returns the statute keys a chunk references directly,
// filtered to the given relation types (empty slice keeps all).
func CitedStatutes(ctx context.Context, graph ReferenceGraph, namespace string, relationTypes []string) ([]string, error) {
	nodes, err := Walk(ctx, graph, namespace, 1, relationTypes)
	if err != nil {
		return nil, err
	}

	statutes := make([]string, 0, len(nodes))
	for _, node := range nodes {
		if node.IsStatute {
			statutes = append(statutes, node.Key)
		}
	}
	return statutes, nil
}

// RelatedChunks returns the namespaces of chunks citing the same statutes
// as the given chunk, nearest first. The chunk itself is excluded.
func RelatedChunks(ctx context.Context, graph ReferenceGraph, namespace string, maxHops int) ([]string, error) {
	nodes, err := Walk(ctx, graph, namespace, maxHops, nil)
	if err != nil {
		return nil, err
	}

	var chunks []string
	for _, node := range nodes {
		if node.IsStatute || node.Key == namespace {
			continue
		}
		chunks = append(chunks, node.Key)
	}
	return chunks, nil
}
