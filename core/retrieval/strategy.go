package retrieval

import (
	"context"
	"fmt"

	"github.com/eliassondavid/paragrafen-ai/core/rank"
	"github.com/eliassondavid/paragrafen-ai/helper"
	"github.com/eliassondavid/paragrafen-ai/model"
)

// Strategy defines a retrieval strategy
type Strategy interface {
	Retrieve(ctx context.Context, embedding []float32, config *model.QueryConfig) ([]model.RetrievedChunk, error)
}

// VectorOnlyStrategy returns the raw vector search results in distance order.
type VectorOnlyStrategy struct {
	engine *Engine
}

// NewVectorOnlyStrategy creates a new vector-only strategy
func NewVectorOnlyStrategy(engine *Engine) *VectorOnlyStrategy {
	return &VectorOnlyStrategy{engine: engine}
}

// Retrieve performs vector-only retrieval
func (s *VectorOnlyStrategy) Retrieve(ctx context.Context, embedding []float32, config *model.QueryConfig) ([]model.RetrievedChunk, error) {
	return s.engine.VectorRetrieve(ctx, embedding, config)
}

// AuthorityWeightedStrategy reorders vector search results by the norm
// hierarchy: statute text outranks case law, which outranks preparatory
// works and doctrine, with vector distance breaking ties inside each tier.
type AuthorityWeightedStrategy struct {
	engine  *Engine
	booster *rank.NormBoost
}

// NewAuthorityWeightedStrategy creates a new authority-weighted strategy
func NewAuthorityWeightedStrategy(engine *Engine) *AuthorityWeightedStrategy {
	return &AuthorityWeightedStrategy{
		engine:  engine,
		booster: rank.NewNormBoost(),
	}
}

// Retrieve performs vector retrieval followed by authority reranking
func (s *AuthorityWeightedStrategy) Retrieve(ctx context.Context, embedding []float32, config *model.QueryConfig) ([]model.RetrievedChunk, error) {
	chunks, err := s.engine.VectorRetrieve(ctx, embedding, config)
	if err != nil {
		return nil, err
	}

	return s.booster.Rerank(chunks), nil
}

// NewStrategy creates a strategy by name: "vector" or "authority".
func NewStrategy(name string, engine *Engine) (Strategy, error) {
	switch name {
	case "vector":
		return NewVectorOnlyStrategy(engine), nil
	case "authority":
		return NewAuthorityWeightedStrategy(engine), nil
	default:
		return nil, helper.NewError("strategy selection", fmt.Errorf("unknown retrieval strategy: %s (use 'vector' or 'authority')", name))
	}
}
