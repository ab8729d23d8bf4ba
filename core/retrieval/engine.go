package retrieval

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/eliassondavid/paragrafen-ai/database"
	"github.com/eliassondavid/paragrafen-ai/helper"
	"github.com/eliassondavid/paragrafen-ai/model"
)

// ChunkSearcher is the store-side surface the engine needs. Satisfied by
// database.ChunksDBHandler.
type ChunkSearcher interface {
	SelectChunksBySimilarity(embedding []float32, limit int, filter database.SearchFilter) ([]model.RetrievedChunk, error)
}

// Engine retrieves evidence chunks for a query embedding across one or more
// collections. Collections fail independently: a broken collection is logged
// and skipped, the remaining ones still answer.
type Engine struct {
	chunks ChunkSearcher
	log    *slog.Logger
}

// NewEngine creates a new retrieval engine.
func NewEngine(chunks ChunkSearcher, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		chunks: chunks,
		log:    logger,
	}
}

// VectorRetrieve searches every configured collection with TopK each and
// merges the results, deduplicated by namespace and ordered by distance.
// It only fails when every collection fails.
func (e *Engine) VectorRetrieve(ctx context.Context, embedding []float32, config *model.QueryConfig) ([]model.RetrievedChunk, error) {
	if config == nil {
		defaultConfig := model.DefaultQueryConfig()
		config = &defaultConfig
	}

	collections := config.Collections
	if len(collections) == 0 {
		// No collection filter: one search over everything.
		collections = []string{""}
	}

	var (
		merged []model.RetrievedChunk
		seen   = map[string]bool{}
		failed int
		lastEx error
	)

	for _, collection := range collections {
		if err := ctx.Err(); err != nil {
			return nil, helper.NewError("vector retrieve", err)
		}

		chunks, err := e.chunks.SelectChunksBySimilarity(embedding, config.TopK, database.SearchFilter{
			Collection: collection,
			SourceType: config.SourceType,
			LegalArea:  config.LegalArea,
		})
		if err != nil {
			failed++
			lastEx = err
			e.log.Warn(fmt.Sprintf("Sökning i collection %v misslyckades, fortsätter utan den", collection), slog.Any("error", err))
			continue
		}

		for _, chunk := range chunks {
			if seen[chunk.Namespace] {
				continue
			}
			seen[chunk.Namespace] = true
			merged = append(merged, chunk)
		}
	}

	if failed == len(collections) {
		return nil, helper.NewError("vector retrieve", fmt.Errorf("all %d collections failed: %w", failed, lastEx))
	}

	sort.SliceStable(merged, func(i, j int) bool {
		di, dj := merged[i].Distance, merged[j].Distance
		if di == nil {
			return false
		}
		if dj == nil {
			return true
		}
		return *di < *dj
	})

	return merged, nil
}
