package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/eliassondavid/paragrafen-ai/core/normalize"
	"github.com/eliassondavid/paragrafen-ai/core/parse"
	"github.com/eliassondavid/paragrafen-ai/core/pipeline"
	"github.com/eliassondavid/paragrafen-ai/database"
	"github.com/eliassondavid/paragrafen-ai/helper"
	"github.com/eliassondavid/paragrafen-ai/model"
)

const (
	// The run aborts once this many documents have failed. A broken corpus
	// should stop the pipeline instead of grinding through it.
	maxIngestFailures = 100

	defaultConcurrency = 4
	documentPageSize   = 100
)

// SourceID derives the deterministic document identifier used across the
// whole pipeline: the same statute always maps to the same UUID.
func SourceID(sourceType model.SourceType, key string) string {
	return uuid.NewSHA1(uuid.NameSpaceDNS, []byte(string(sourceType)+":"+key)).String()
}

// RunStats summarizes one ingestion run.
type RunStats struct {
	Documents     int      `json:"documents"`
	Failed        int      `json:"failed"`
	ChunksIndexed int      `json:"chunks_indexed"`
	ChunksSkipped int      `json:"chunks_skipped"`
	ChunksFailed  int      `json:"chunks_failed"`
	Rejected      int      `json:"rejected"`
	Errors        []string `json:"errors,omitempty"`
}

// Runner drives stored raw documents through parse, chunk, normalize and
// index. Documents are processed in parallel; failures are accumulated and
// the run aborts hard once they pass the ceiling.
type Runner struct {
	documents  database.DocumentsDBHandlerFunctions
	normalizer *normalize.Normalizer
	indexer    *Indexer

	sfsChunker       *pipeline.SfsChunker
	forarbeteChunker *pipeline.ForarbeteChunker

	concurrency int
	log         *slog.Logger
}

// NewRunner creates an ingestion runner. Concurrency below 1 falls back to
// the default.
func NewRunner(documents database.DocumentsDBHandlerFunctions, normalizer *normalize.Normalizer, indexer *Indexer, concurrency int, logger *slog.Logger) (*Runner, error) {
	if documents == nil {
		return nil, helper.NewError("runner validation", fmt.Errorf("documents handler is nil"))
	}
	if indexer == nil {
		return nil, helper.NewError("runner validation", fmt.Errorf("indexer is nil"))
	}
	if normalizer == nil {
		normalizer = normalize.NewNormalizer(nil, nil, nil, logger)
	}
	if concurrency < 1 {
		concurrency = defaultConcurrency
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Runner{
		documents:        documents,
		normalizer:       normalizer,
		indexer:          indexer,
		sfsChunker:       pipeline.NewSfsChunker(0, 0, logger),
		forarbeteChunker: pipeline.NewForarbeteChunker(0, 0, logger),
		concurrency:      concurrency,
		log:              logger,
	}, nil
}

// Run processes every stored document of one source type. It returns both
// the stats and an error when the failure ceiling was hit; partial stats
// are always returned.
func (r *Runner) Run(ctx context.Context, sourceType model.SourceType) (*RunStats, error) {
	stats := &RunStats{}
	var mu sync.Mutex

	after, afterDokID := "", ""
	for {
		docs, err := r.documents.SelectDocumentsByType(sourceType, after, afterDokID, documentPageSize)
		if err != nil {
			return stats, helper.NewError("page documents", err)
		}
		if len(docs) == 0 {
			break
		}
		last := docs[len(docs)-1]
		after, afterDokID = last.Systemdatum, last.DokID

		group, groupCtx := errgroup.WithContext(ctx)
		group.SetLimit(r.concurrency)

		for _, doc := range docs {
			doc := doc
			group.Go(func() error {
				indexStats, rejected, err := r.processDocument(groupCtx, doc, sourceType)

				mu.Lock()
				defer mu.Unlock()

				if err != nil {
					stats.Failed++
					stats.Errors = append(stats.Errors, fmt.Sprintf("%s: %v", doc.DokID, err))
					r.log.Error(fmt.Sprintf("Dokument %v misslyckades", doc.DokID), slog.Any("error", err))
					if stats.Failed > maxIngestFailures {
						return helper.NewError("ingest run", fmt.Errorf("aborting after %d failed documents", stats.Failed))
					}
					return nil
				}

				stats.Documents++
				stats.Rejected += rejected
				if indexStats != nil {
					stats.ChunksIndexed += indexStats.Indexed
					stats.ChunksSkipped += indexStats.Skipped
					stats.ChunksFailed += indexStats.Failed
				}
				return nil
			})
		}

		err = group.Wait()
		if err != nil {
			return stats, err
		}
	}

	r.log.Info(fmt.Sprintf("Ingest klar: %d dokument, %d misslyckade, %d chunkar indexerade", stats.Documents, stats.Failed, stats.ChunksIndexed))
	return stats, nil
}

func (r *Runner) processDocument(ctx context.Context, doc *model.RawDocument, sourceType model.SourceType) (*IndexStats, int, error) {
	switch sourceType {
	case model.SourceTypeSfs:
		return r.processSfs(ctx, doc)
	case model.SourceTypeForarbete:
		return r.processForarbete(ctx, doc)
	default:
		return nil, 0, helper.NewError("process document", fmt.Errorf("unsupported source type: %s", sourceType))
	}
}

func (r *Runner) processSfs(ctx context.Context, doc *model.RawDocument) (*IndexStats, int, error) {
	if doc.SfsNr == "" {
		return nil, 0, fmt.Errorf("document %s has no sfs_nr", doc.DokID)
	}
	if doc.HTML == "" {
		return nil, 0, fmt.Errorf("document %s has no html", doc.DokID)
	}

	// The detector keeps per-statute warning state, so every document gets
	// its own parser instead of sharing one across goroutines.
	detector := parse.NewDetector(parse.DefaultSingleChapterThreshold, r.normalizer.NumberingOverrides(), r.log)
	parser := parse.NewSfsParser(detector, r.log)

	paragraphs := parser.Parse(doc.HTML, doc.SfsNr)
	if len(paragraphs) == 0 {
		return nil, 0, fmt.Errorf("no paragraphs parsed from %s", doc.DokID)
	}

	legalArea, confidence := r.normalizer.ClassifyLegalArea(doc.SfsNr, doc.Organ)
	meta := pipeline.SfsMeta{
		SourceID:            SourceID(model.SourceTypeSfs, doc.SfsNr),
		Rubrik:              doc.Titel,
		Kortnamn:            r.normalizer.Kortnamn(doc.SfsNr),
		NormType:            r.normalizer.ClassifyNormType(doc.SfsNr, doc.Titel),
		LegalArea:           legalArea,
		LegalAreaConfidence: confidence,
	}

	chunks := r.sfsChunker.Chunk(doc.SfsNr, paragraphs, meta)
	normalized, rejects := r.normalizer.NormalizeChunks(chunks, normalize.SourceInfo{
		SfsNr:       doc.SfsNr,
		Rubrik:      doc.Titel,
		Departement: doc.Organ,
	})

	indexStats, err := r.indexer.IndexChunks(ctx, normalized, true)
	return indexStats, len(rejects), err
}

func (r *Runner) processForarbete(ctx context.Context, doc *model.RawDocument) (*IndexStats, int, error) {
	if doc.Beteckning == "" {
		return nil, 0, fmt.Errorf("document %s has no beteckning", doc.DokID)
	}
	if doc.HTML == "" {
		return nil, 0, fmt.Errorf("document %s has no html", doc.DokID)
	}

	parser := parse.NewForarbeteParser(r.log)
	sections := parser.Parse(doc.HTML, doc.Beteckning)
	if len(sections) == 0 {
		return nil, 0, fmt.Errorf("no sections parsed from %s", doc.DokID)
	}

	legalArea, confidence := r.normalizer.ClassifyLegalArea("", doc.Organ)
	meta := pipeline.ForarbeteMeta{
		SourceID:            SourceID(model.SourceTypeForarbete, doc.Beteckning),
		Titel:               doc.Titel,
		LegalArea:           legalArea,
		LegalAreaConfidence: confidence,
	}

	chunks := r.forarbeteChunker.Chunk(doc.Beteckning, sections, meta)
	normalized, rejects := r.normalizer.NormalizeChunks(chunks, normalize.SourceInfo{
		Rubrik:      doc.Titel,
		Departement: doc.Organ,
	})

	indexStats, err := r.indexer.IndexChunks(ctx, normalized, true)
	return indexStats, len(rejects), err
}
