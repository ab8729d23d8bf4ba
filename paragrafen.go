package paragrafen

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/eliassondavid/paragrafen-ai/core/graph"
	"github.com/eliassondavid/paragrafen-ai/core/normalize"
	"github.com/eliassondavid/paragrafen-ai/core/pipeline"
	"github.com/eliassondavid/paragrafen-ai/core/retrieval"
	"github.com/eliassondavid/paragrafen-ai/database"
	"github.com/eliassondavid/paragrafen-ai/helper"
	"github.com/eliassondavid/paragrafen-ai/ingest"
	"github.com/eliassondavid/paragrafen-ai/rag"
	loadSql "github.com/eliassondavid/paragrafen-ai/sql"
)

// Paragrafen bundles the storage handlers and pipeline builders of one
// instance: ingestion, indexing and question answering all hang off it.
type Paragrafen struct {
	DB         *helper.Database
	Chunks     *database.ChunksDBHandler
	Documents  *database.DocumentsDBHandler
	References *database.ReferencesDBHandler
	Engine     *retrieval.Engine
	Normalizer *normalize.Normalizer
	Embed      pipeline.EmbedFunc

	log *slog.Logger
}

// NewParagrafen connects to the database and initializes all handlers.
// embeddingDim must match the embedder that will be used (768 for the
// default Swedish sentence transformer).
func NewParagrafen(config *helper.DatabaseConfiguration, embeddingDim int) (*Paragrafen, error) {
	opts := helper.PrettyHandlerOptions{
		SlogOpts: slog.HandlerOptions{
			Level: slog.LevelInfo,
		},
	}
	logger := slog.New(helper.NewPrettyHandler(os.Stdout, opts))

	db := helper.NewDatabase("paragrafen", config, logger)
	err := loadSql.Init(db.Instance)
	if err != nil {
		return nil, helper.NewError("initialize database extensions", err)
	}

	// documents and chunks first, references last (foreign key on chunks)
	documents, err := database.NewDocumentsDBHandler(db, false)
	if err != nil {
		return nil, helper.NewError("create documents handler", err)
	}

	chunks, err := database.NewChunksDBHandler(db, embeddingDim, false)
	if err != nil {
		return nil, helper.NewError("create chunks handler", err)
	}

	references, err := database.NewReferencesDBHandler(db, false)
	if err != nil {
		return nil, helper.NewError("create references handler", err)
	}

	return &Paragrafen{
		DB:         db,
		Chunks:     chunks,
		Documents:  documents,
		References: references,
		Engine:     retrieval.NewEngine(chunks, logger),
		Normalizer: normalize.NewNormalizer(nil, nil, nil, logger),
		log:        logger,
	}, nil
}

// Close closes the database connection.
func (p *Paragrafen) Close() error {
	if p.DB != nil && p.DB.Instance != nil {
		return p.DB.Instance.Close()
	}
	return nil
}

// SetEmbedder sets the embedding function used by indexing and querying.
func (p *Paragrafen) SetEmbedder(embed pipeline.EmbedFunc) {
	p.Embed = embed
}

// UseDefaultEmbedder loads the default Swedish sentence transformer
// (768 dimensions) through hugot.
func (p *Paragrafen) UseDefaultEmbedder() error {
	embed, err := pipeline.DefaultEmbedder("")
	if err != nil {
		return helper.NewError("create default embedder", err)
	}
	p.Embed = embed
	return nil
}

// NewFetcher creates a Riksdagen fetcher over this instance's document
// store. Pass an empty baseURL for the production API.
func (p *Paragrafen) NewFetcher(baseURL string) *ingest.Fetcher {
	client := ingest.NewRiksdagenClient(baseURL, p.log)
	return ingest.NewFetcher(client, p.Documents, p.log)
}

// NewIndexer creates an indexer writing to this instance's chunk store.
// The embedder must be set first.
func (p *Paragrafen) NewIndexer() (*ingest.Indexer, error) {
	if p.Embed == nil {
		return nil, helper.NewError("create indexer", fmt.Errorf("embedder not set, use UseDefaultEmbedder() first"))
	}
	return ingest.NewIndexer(p.Chunks, p.References, p.Embed, "", nil, p.log)
}

// NewRunner creates an ingestion runner processing stored documents in
// parallel with the given concurrency.
func (p *Paragrafen) NewRunner(concurrency int) (*ingest.Runner, error) {
	indexer, err := p.NewIndexer()
	if err != nil {
		return nil, err
	}
	return ingest.NewRunner(p.Documents, p.Normalizer, indexer, concurrency, p.log)
}

// RelatedChunks walks the citation graph from one indexed chunk and
// returns the namespaces of chunks citing the same statutes.
func (p *Paragrafen) RelatedChunks(ctx context.Context, namespace string, maxHops int) ([]string, error) {
	return graph.RelatedChunks(ctx, p.References, namespace, maxHops)
}

// NewQueryPipeline creates the question-answering pipeline using the
// named retrieval strategy ("vector" or "authority").
func (p *Paragrafen) NewQueryPipeline(llm rag.LLM, strategyName string) (*rag.Pipeline, error) {
	if p.Embed == nil {
		return nil, helper.NewError("create query pipeline", fmt.Errorf("embedder not set, use UseDefaultEmbedder() first"))
	}
	if strategyName == "" {
		strategyName = "authority"
	}

	strategy, err := retrieval.NewStrategy(strategyName, p.Engine)
	if err != nil {
		return nil, err
	}
	return rag.NewPipeline(p.Embed, strategy, llm, nil, nil, nil, p.log)
}
