package rank

import (
	"sort"

	"github.com/eliassondavid/paragrafen-ai/model"
)

// Authority weights for the combined norm score. Binding statute text
// always carries the most weight, doctrine the least.
var authorityWeights = map[model.AuthorityLevel]float64{
	model.AuthorityBinding:     1.0,
	model.AuthorityGuiding:     0.7,
	model.AuthorityPreparatory: 0.6,
	model.AuthorityPersuasive:  0.4,
}

// Tie-break ranks at equal norm score: higher authority wins.
var authorityRanks = map[model.AuthorityLevel]int{
	model.AuthorityBinding:     0,
	model.AuthorityGuiding:     1,
	model.AuthorityPreparatory: 2,
	model.AuthorityPersuasive:  3,
}

// neutralRelevance is used when the store reported no distance.
const neutralRelevance = 0.5

// NormBoost reorders retrieved chunks by legal authority weighted with
// semantic relevance, so a statute paragraph at moderate distance still
// beats a commentary that merely sits closer in vector space.
type NormBoost struct{}

// NewNormBoost creates a reranker.
func NewNormBoost() *NormBoost {
	return &NormBoost{}
}

// Rerank returns a reordered copy of chunks with NormScore populated. The
// input slice is never mutated. The sort key is explicit: descending norm
// score, then authority rank, then original retrieval order.
func (n *NormBoost) Rerank(chunks []model.RetrievedChunk) []model.RetrievedChunk {
	if len(chunks) == 0 {
		return []model.RetrievedChunk{}
	}

	type scored struct {
		chunk         model.RetrievedChunk
		authorityRank int
		originalIndex int
	}

	ranked := make([]scored, len(chunks))
	for i, chunk := range chunks {
		authority := model.ParseAuthorityLevel(string(chunk.AuthorityLevel))
		chunk.NormScore = authorityWeights[authority] * relevance(chunk.Distance)
		ranked[i] = scored{
			chunk:         chunk,
			authorityRank: authorityRanks[authority],
			originalIndex: i,
		}
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].chunk.NormScore != ranked[j].chunk.NormScore {
			return ranked[i].chunk.NormScore > ranked[j].chunk.NormScore
		}
		if ranked[i].authorityRank != ranked[j].authorityRank {
			return ranked[i].authorityRank < ranked[j].authorityRank
		}
		return ranked[i].originalIndex < ranked[j].originalIndex
	})

	result := make([]model.RetrievedChunk, len(ranked))
	for i, s := range ranked {
		result[i] = s.chunk
	}
	return result
}

// relevance converts a similarity distance into a weight in [0,1].
func relevance(distance *float64) float64 {
	if distance == nil {
		return neutralRelevance
	}
	d := *distance
	if d < 0 {
		d = 0
	}
	if d > 1 {
		d = 1
	}
	return 1.0 - d
}
