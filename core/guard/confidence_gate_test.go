package guard

import (
	"testing"

	"github.com/eliassondavid/paragrafen-ai/model"
	"github.com/stretchr/testify/assert"
)

func retrieved(authority model.AuthorityLevel, sourceType model.SourceType, distance float64) model.RetrievedChunk {
	return model.RetrievedChunk{
		Chunk: model.Chunk{
			Namespace:      "test::chunk",
			AuthorityLevel: authority,
			SourceType:     sourceType,
		},
		Distance: model.DistanceOf(distance),
	}
}

func TestConfidenceGateEvaluate(t *testing.T) {
	gate := NewConfidenceGate(0, 0)

	t.Run("Empty input fails with no_results", func(t *testing.T) {
		result := gate.Evaluate(nil)

		assert.False(t, result.Pass)
		assert.Equal(t, 0.0, result.Score)
		assert.Equal(t, FlagNoResults, result.Reason)
		assert.Equal(t, []string{FlagNoResults}, result.Flags)
	})

	t.Run("Strong mixed evidence passes cleanly", func(t *testing.T) {
		chunks := []model.RetrievedChunk{
			retrieved(model.AuthorityBinding, model.SourceTypeSfs, 0.35),
			retrieved(model.AuthorityPreparatory, model.SourceTypeForarbete, 0.42),
			retrieved(model.AuthorityPersuasive, model.SourceTypeDoktrin, 0.5),
		}
		result := gate.Evaluate(chunks)

		assert.True(t, result.Pass)
		assert.Equal(t, 1.0, result.Score)
		assert.Empty(t, result.Flags)
		assert.Empty(t, result.Reason)
	})

	t.Run("Only persuasive evidence is penalized", func(t *testing.T) {
		chunks := []model.RetrievedChunk{
			retrieved(model.AuthorityPersuasive, model.SourceTypeDoktrin, 0.18),
			retrieved(model.AuthorityPersuasive, model.SourceTypeForarbete, 0.24),
		}
		result := gate.Evaluate(chunks)

		assert.Contains(t, result.Flags, FlagOnlyPersuasive)
		assert.InDelta(t, 0.7, result.Score, 1e-9)
		assert.True(t, result.Pass)
	})

	t.Run("Unknown authority counts as persuasive", func(t *testing.T) {
		chunks := []model.RetrievedChunk{
			retrieved("okänd", model.SourceTypeDoktrin, 0.3),
			retrieved(model.AuthorityPersuasive, model.SourceTypeForarbete, 0.3),
		}
		result := gate.Evaluate(chunks)

		assert.Contains(t, result.Flags, FlagOnlyPersuasive)
	})

	t.Run("Close binding and guiding conflict is penalized", func(t *testing.T) {
		chunks := []model.RetrievedChunk{
			retrieved(model.AuthorityBinding, model.SourceTypeSfs, 0.1),
			retrieved(model.AuthorityGuiding, model.SourceTypePraxis, 0.2),
		}
		result := gate.Evaluate(chunks)

		assert.Contains(t, result.Flags, FlagConflictingAuth)
		assert.InDelta(t, 0.8, result.Score, 1e-9)
	})

	t.Run("Distant guiding chunk does not trigger the conflict", func(t *testing.T) {
		chunks := []model.RetrievedChunk{
			retrieved(model.AuthorityBinding, model.SourceTypeSfs, 0.1),
			retrieved(model.AuthorityGuiding, model.SourceTypePraxis, 0.9),
		}
		result := gate.Evaluate(chunks)

		assert.NotContains(t, result.Flags, FlagConflictingAuth)
	})

	t.Run("Close binding and preparatory is not a conflict", func(t *testing.T) {
		chunks := []model.RetrievedChunk{
			retrieved(model.AuthorityBinding, model.SourceTypeSfs, 0.1),
			retrieved(model.AuthorityPreparatory, model.SourceTypeForarbete, 0.1),
		}
		result := gate.Evaluate(chunks)

		assert.NotContains(t, result.Flags, FlagConflictingAuth)
	})

	t.Run("Single chunk is flagged sparse", func(t *testing.T) {
		result := gate.Evaluate([]model.RetrievedChunk{
			retrieved(model.AuthorityBinding, model.SourceTypeSfs, 0.2),
		})

		assert.Contains(t, result.Flags, FlagSparseResults)
		assert.Contains(t, result.Flags, FlagSingleSourceType)
	})

	t.Run("Single source type across chunks is penalized", func(t *testing.T) {
		chunks := []model.RetrievedChunk{
			retrieved(model.AuthorityBinding, model.SourceTypeSfs, 0.2),
			retrieved(model.AuthorityBinding, model.SourceTypeSfs, 0.3),
		}
		result := gate.Evaluate(chunks)

		assert.Contains(t, result.Flags, FlagSingleSourceType)
		assert.InDelta(t, 0.9, result.Score, 1e-9)
	})

	t.Run("Penalties stack and the reason concatenates flags", func(t *testing.T) {
		result := gate.Evaluate([]model.RetrievedChunk{
			retrieved(model.AuthorityPersuasive, model.SourceTypeDoktrin, 0.4),
		})

		// only_persuasive + sparse_results + single_source_type.
		assert.InDelta(t, 0.45, result.Score, 1e-9)
		assert.False(t, result.Pass)
		assert.Equal(t, "only_persuasive,sparse_results,single_source_type", result.Reason)
	})

	t.Run("Missing distance is ignored by the conflict check", func(t *testing.T) {
		chunks := []model.RetrievedChunk{
			{Chunk: model.Chunk{AuthorityLevel: model.AuthorityBinding, SourceType: model.SourceTypeSfs}},
			{Chunk: model.Chunk{AuthorityLevel: model.AuthorityGuiding, SourceType: model.SourceTypePraxis}},
		}
		result := gate.Evaluate(chunks)

		assert.NotContains(t, result.Flags, FlagConflictingAuth)
	})

	t.Run("Score stays within bounds", func(t *testing.T) {
		gate := NewConfidenceGate(0.99, 0.5)
		chunks := []model.RetrievedChunk{
			retrieved(model.AuthorityPersuasive, model.SourceTypeDoktrin, 0.1),
		}
		result := gate.Evaluate(chunks)

		assert.GreaterOrEqual(t, result.Score, 0.0)
		assert.LessOrEqual(t, result.Score, 1.0)
		assert.False(t, result.Pass)
	})
}

func TestNewConfidenceGateDefaults(t *testing.T) {
	gate := NewConfidenceGate(0, 0)

	assert.Equal(t, DefaultPassThreshold, gate.PassThreshold)
	assert.Equal(t, DefaultLowDistanceThreshold, gate.LowDistanceThreshold)
}
