package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/eliassondavid/paragrafen-ai/core/pipeline"
	"github.com/eliassondavid/paragrafen-ai/helper"
	"github.com/eliassondavid/paragrafen-ai/model"
)

// Store writes per batch; mirrors the upstream vector-store batch limit.
const indexBatchSize = 500

// DefaultCollections maps each source type to its versioned collection.
var DefaultCollections = map[model.SourceType]string{
	model.SourceTypeSfs:       "paragrafen_sfs_v1",
	model.SourceTypeForarbete: "paragrafen_forarbete_v1",
	model.SourceTypePraxis:    "paragrafen_praxis_v1",
	model.SourceTypeDoktrin:   "paragrafen_doktrin_v1",
}

// ChunkStore is the chunk-side storage surface the indexer needs.
// Satisfied by database.ChunksDBHandler.
type ChunkStore interface {
	UpsertChunk(chunk *model.Chunk, collection string, embedding []float32) error
	ChunkExists(namespace string) (bool, error)
}

// ReferenceStore persists statute citation edges alongside the chunks.
// Satisfied by database.ReferencesDBHandler.
type ReferenceStore interface {
	InsertReferences(fromNamespace string, refs []model.Reference) error
}

// IndexStats summarizes one indexing run.
type IndexStats struct {
	Indexed int `json:"indexed"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

// Indexer embeds normalized chunks in batches and writes them to the
// store. A batch is embedded aligned or not at all: when the embedder
// fails or returns a misaligned result, the whole batch is counted as
// failed and the next batch continues.
type Indexer struct {
	store          ChunkStore
	references     ReferenceStore
	embed          pipeline.EmbedFunc
	collections    map[model.SourceType]string
	embeddingModel string
	log            *slog.Logger
}

// NewIndexer creates an indexer. references may be nil when citation
// edges are not tracked. A nil collections map uses DefaultCollections.
func NewIndexer(store ChunkStore, references ReferenceStore, embed pipeline.EmbedFunc, embeddingModel string, collections map[model.SourceType]string, logger *slog.Logger) (*Indexer, error) {
	if store == nil {
		return nil, helper.NewError("indexer validation", fmt.Errorf("chunk store is nil"))
	}
	if embed == nil {
		return nil, helper.NewError("indexer validation", fmt.Errorf("embed function is nil"))
	}
	if collections == nil {
		collections = DefaultCollections
	}
	if embeddingModel == "" {
		embeddingModel = pipeline.DefaultEmbeddingModel
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Indexer{
		store:          store,
		references:     references,
		embed:          embed,
		collections:    collections,
		embeddingModel: embeddingModel,
		log:            logger,
	}, nil
}

// IndexChunks embeds and stores the given chunks. Chunks whose namespace
// already exists are skipped when skipExisting is set, so re-ingesting a
// document never re-embeds unchanged text.
func (ix *Indexer) IndexChunks(ctx context.Context, chunks []model.Chunk, skipExisting bool) (*IndexStats, error) {
	stats := &IndexStats{}

	var pending []model.Chunk
	for _, chunk := range chunks {
		if skipExisting {
			exists, err := ix.store.ChunkExists(chunk.Namespace)
			if err != nil {
				return stats, helper.NewError("check chunk existence", err)
			}
			if exists {
				stats.Skipped++
				continue
			}
		}
		pending = append(pending, chunk)
	}

	indexedAt := time.Now().UTC()

	for start := 0; start < len(pending); start += indexBatchSize {
		if err := ctx.Err(); err != nil {
			return stats, helper.NewError("index chunks", err)
		}

		end := start + indexBatchSize
		if end > len(pending) {
			end = len(pending)
		}
		batch := pending[start:end]

		texts := make([]string, len(batch))
		for i, chunk := range batch {
			texts[i] = chunk.Text
		}

		embeddings, err := ix.embed(texts)
		if err != nil || len(embeddings) != len(batch) {
			if err == nil {
				err = fmt.Errorf("embedder returned %d embeddings for %d texts", len(embeddings), len(batch))
			}
			ix.log.Error("Embedding av batch misslyckades, hoppar över batchen", slog.Any("error", err))
			stats.Failed += len(batch)
			continue
		}

		for i := range batch {
			chunk := batch[i]
			chunk.EmbeddingModel = ix.embeddingModel
			chunk.IndexedAt = indexedAt

			collection, ok := ix.collections[chunk.SourceType]
			if !ok {
				ix.log.Error(fmt.Sprintf("Ingen collection för source_type %v", chunk.SourceType), slog.String("namespace", chunk.Namespace))
				stats.Failed++
				continue
			}

			err := ix.store.UpsertChunk(&chunk, collection, embeddings[i])
			if err != nil {
				ix.log.Error(fmt.Sprintf("Kunde inte spara %v", chunk.Namespace), slog.Any("error", err))
				stats.Failed++
				continue
			}

			if ix.references != nil && len(chunk.ReferencesTo) > 0 {
				err = ix.references.InsertReferences(chunk.Namespace, chunk.ReferencesTo)
				if err != nil {
					ix.log.Warn(fmt.Sprintf("Kunde inte spara referenser för %v", chunk.Namespace), slog.Any("error", err))
				}
			}

			stats.Indexed++
		}
	}

	return stats, nil
}
