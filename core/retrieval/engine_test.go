package retrieval

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eliassondavid/paragrafen-ai/model"
)

func storedChunk(namespace string, sourceType model.SourceType, authority model.AuthorityLevel) *model.Chunk {
	return &model.Chunk{
		Namespace:      namespace,
		SourceID:       "doc-" + namespace,
		SourceType:     sourceType,
		AuthorityLevel: authority,
		LegalArea:      []string{"civilrätt"},
		ChunkIndex:     0,
		ChunkTotal:     1,
		Text:           "Avtal skall hållas.",
	}
}

func TestEngineVectorRetrieve(t *testing.T) {
	chunksDbHandler := initChunksHandler(t)

	statute := storedChunk("sfs::1915:218_1kap_1§_chunk_000", model.SourceTypeSfs, model.AuthorityBinding)
	require.NoError(t, chunksDbHandler.UpsertChunk(statute, "paragrafen_sfs_v1", []float32{1, 0, 0, 0}))

	preparatory := storedChunk("forarbete::Prop_2016_17_180_sammanfattning_chunk_000", model.SourceTypeForarbete, model.AuthorityPreparatory)
	require.NoError(t, chunksDbHandler.UpsertChunk(preparatory, "paragrafen_forarbete_v1", []float32{0.9, 0.1, 0, 0}))

	distant := storedChunk("sfs::1962:700_1kap_1§_chunk_000", model.SourceTypeSfs, model.AuthorityBinding)
	require.NoError(t, chunksDbHandler.UpsertChunk(distant, "paragrafen_sfs_v1", []float32{0, 1, 0, 0}))

	engine := NewEngine(chunksDbHandler, nil)

	t.Run("Retrieve merges all configured collections in distance order", func(t *testing.T) {
		config := model.DefaultQueryConfig()
		results, err := engine.VectorRetrieve(context.Background(), []float32{1, 0, 0, 0}, &config)
		require.NoError(t, err, "Expected VectorRetrieve to not return an error")
		require.Len(t, results, 3)

		assert.Equal(t, statute.Namespace, results[0].Namespace)
		assert.Equal(t, preparatory.Namespace, results[1].Namespace)
		assert.Equal(t, distant.Namespace, results[2].Namespace)
		require.NotNil(t, results[0].Distance)
		assert.InDelta(t, 0.0, *results[0].Distance, 1e-6)
	})

	t.Run("Retrieve searches only the configured collections", func(t *testing.T) {
		config := model.QueryConfig{
			TopK:        10,
			Collections: []string{"paragrafen_forarbete_v1"},
		}
		results, err := engine.VectorRetrieve(context.Background(), []float32{1, 0, 0, 0}, &config)
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, preparatory.Namespace, results[0].Namespace)
	})

	t.Run("Retrieve applies source type filter", func(t *testing.T) {
		config := model.QueryConfig{
			TopK:        10,
			Collections: []string{"paragrafen_sfs_v1", "paragrafen_forarbete_v1"},
			SourceType:  model.SourceTypeSfs,
		}
		results, err := engine.VectorRetrieve(context.Background(), []float32{1, 0, 0, 0}, &config)
		require.NoError(t, err)
		require.Len(t, results, 2)
		for _, result := range results {
			assert.Equal(t, model.SourceTypeSfs, result.SourceType)
		}
	})

	t.Run("Retrieve with nil config uses defaults", func(t *testing.T) {
		results, err := engine.VectorRetrieve(context.Background(), []float32{1, 0, 0, 0}, nil)
		require.NoError(t, err)
		assert.Len(t, results, 3)
	})

	t.Run("Retrieve with cancelled context fails", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := engine.VectorRetrieve(ctx, []float32{1, 0, 0, 0}, nil)
		assert.Error(t, err, "Expected error for cancelled context")
	})
}

func TestStrategiesAgainstStore(t *testing.T) {
	chunksDbHandler := initChunksHandler(t)

	// The doctrine chunk is the closest vector, the statute the farthest.
	doctrine := storedChunk("doktrin::avtalsratt_kommentar_chunk_000", model.SourceTypeDoktrin, model.AuthorityPersuasive)
	require.NoError(t, chunksDbHandler.UpsertChunk(doctrine, "paragrafen_doktrin_v1", []float32{1, 0, 0, 0}))

	statute := storedChunk("sfs::1915:218_1kap_1§_chunk_000", model.SourceTypeSfs, model.AuthorityBinding)
	require.NoError(t, chunksDbHandler.UpsertChunk(statute, "paragrafen_sfs_v1", []float32{0.8, 0.6, 0, 0}))

	engine := NewEngine(chunksDbHandler, nil)
	config := model.QueryConfig{
		TopK:        10,
		Collections: []string{"paragrafen_sfs_v1", "paragrafen_doktrin_v1"},
	}

	t.Run("Vector-only strategy keeps distance order", func(t *testing.T) {
		strategy, err := NewStrategy("vector", engine)
		require.NoError(t, err)

		results, err := strategy.Retrieve(context.Background(), []float32{1, 0, 0, 0}, &config)
		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.Equal(t, doctrine.Namespace, results[0].Namespace, "Expected closest vector first")
	})

	t.Run("Authority-weighted strategy lifts binding sources", func(t *testing.T) {
		strategy, err := NewStrategy("authority", engine)
		require.NoError(t, err)

		results, err := strategy.Retrieve(context.Background(), []float32{1, 0, 0, 0}, &config)
		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.Equal(t, statute.Namespace, results[0].Namespace, "Expected statute first despite larger distance")
		assert.Greater(t, results[0].NormScore, results[1].NormScore)
	})

	t.Run("Unknown strategy name fails", func(t *testing.T) {
		_, err := NewStrategy("bfs", engine)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "unknown retrieval strategy")
	})
}
