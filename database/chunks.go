package database

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"

	"github.com/eliassondavid/paragrafen-ai/helper"
	"github.com/eliassondavid/paragrafen-ai/model"
	loadSql "github.com/eliassondavid/paragrafen-ai/sql"
)

// SearchFilter narrows a similarity search. Empty fields match everything.
type SearchFilter struct {
	Collection string
	SourceType model.SourceType
	LegalArea  string
}

// ChunksDBHandlerFunctions defines the interface for chunk database operations.
type ChunksDBHandlerFunctions interface {
	UpsertChunk(chunk *model.Chunk, collection string, embedding []float32) error
	ChunkExists(namespace string) (bool, error)
	SelectChunk(namespace string) (*model.Chunk, error)
	SelectChunksBySource(sourceID string) ([]*model.Chunk, error)
	SelectChunksBySimilarity(embedding []float32, limit int, filter SearchFilter) ([]model.RetrievedChunk, error)
	DeleteChunksBySource(sourceID string) (int, error)
	CountChunks(collection string) (int, error)
}

// ChunksDBHandler handles chunk-related database operations
type ChunksDBHandler struct {
	db *helper.Database
}

// NewChunksDBHandler creates a new chunks database handler.
// It loads the chunk-related SQL functions and creates the chunks table
// with an embedding column of the given dimension.
// If force is true, it will reload the SQL functions even if they already exist.
func NewChunksDBHandler(db *helper.Database, embeddingDim int, force bool) (*ChunksDBHandler, error) {
	if db == nil {
		return nil, helper.NewError("database connection validation", fmt.Errorf("database connection is nil"))
	}
	if embeddingDim <= 0 {
		return nil, helper.NewError("embedding dimension validation", fmt.Errorf("embedding dimension must be positive, got %d", embeddingDim))
	}

	chunksDbHandler := &ChunksDBHandler{
		db: db,
	}

	err := loadSql.LoadChunksSql(chunksDbHandler.db.Instance, force)
	if err != nil {
		return nil, helper.NewError("load chunks sql", err)
	}

	err = chunksDbHandler.CreateTable(embeddingDim)
	if err != nil {
		return nil, helper.NewError("create table", err)
	}

	db.Logger.Info("Initialized ChunksDBHandler")

	return chunksDbHandler, nil
}

// CreateTable creates the 'chunks' table in the database.
// If the table already exists, it does not create it again.
// It also creates all necessary indexes, including the vector index.
func (h *ChunksDBHandler) CreateTable(embeddingDim int) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := h.db.Instance.ExecContext(ctx, `SELECT init_chunks($1);`, embeddingDim)
	if err != nil {
		log.Panicf("error initializing chunks table: %#v", err)
	}

	h.db.Logger.Info("Checked/created table chunks")

	return nil
}

// UpsertChunk inserts a chunk or overwrites the existing row with the same
// namespace. The embedding may be nil for chunks stored before indexing.
func (h *ChunksDBHandler) UpsertChunk(chunk *model.Chunk, collection string, embedding []float32) error {
	detail, err := json.Marshal(detailFromChunk(chunk))
	if err != nil {
		return helper.NewError("marshal detail", err)
	}

	var embeddingParam interface{}
	if len(embedding) > 0 {
		embeddingParam = pgvector.NewVector(embedding)
	}

	indexedAt := chunk.IndexedAt
	if indexedAt.IsZero() {
		indexedAt = time.Now()
	}

	row := h.db.Instance.QueryRow(
		`SELECT * FROM upsert_chunk($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		chunk.Namespace,
		chunk.SourceID,
		chunk.SourceType,
		collection,
		chunk.AuthorityLevel,
		pq.Array(chunk.LegalArea),
		chunk.ChunkIndex,
		chunk.ChunkTotal,
		chunk.Text,
		detail,
		embeddingParam,
		chunk.EmbeddingModel,
		indexedAt,
	)

	_, err = scanChunk(row)
	if err != nil {
		return err
	}

	return nil
}

// ChunkExists reports whether a chunk with the given namespace is already
// stored. Used by the indexer to skip re-embedding on re-ingestion.
func (h *ChunksDBHandler) ChunkExists(namespace string) (bool, error) {
	var exists bool
	err := h.db.Instance.QueryRow(
		`SELECT chunk_exists($1)`,
		namespace,
	).Scan(&exists)
	if err != nil {
		return false, helper.NewError("scan", err)
	}

	return exists, nil
}

// SelectChunk retrieves a chunk by namespace.
func (h *ChunksDBHandler) SelectChunk(namespace string) (*model.Chunk, error) {
	row := h.db.Instance.QueryRow(
		`SELECT * FROM select_chunk($1)`,
		namespace,
	)

	return scanChunk(row)
}

// SelectChunksBySource retrieves all chunks of one source document,
// ordered by namespace.
func (h *ChunksDBHandler) SelectChunksBySource(sourceID string) ([]*model.Chunk, error) {
	rows, err := h.db.Instance.Query(
		`SELECT * FROM select_chunks_by_source($1)`,
		sourceID,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	var results []*model.Chunk
	for rows.Next() {
		chunk, err := scanChunk(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, chunk)
	}

	err = rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return results, nil
}

// SelectChunksBySimilarity performs a cosine-distance vector search,
// optionally filtered by collection, source type and legal area.
func (h *ChunksDBHandler) SelectChunksBySimilarity(embedding []float32, limit int, filter SearchFilter) ([]model.RetrievedChunk, error) {
	embeddingVector := pgvector.NewVector(embedding)

	rows, err := h.db.Instance.Query(
		`SELECT * FROM select_chunks_by_similarity($1, $2, $3, $4, $5)`,
		embeddingVector,
		limit,
		filter.Collection,
		string(filter.SourceType),
		filter.LegalArea,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	var results []model.RetrievedChunk
	for rows.Next() {
		var (
			id         int
			collection string
			detail     []byte
			distance   float64
			createdAt  time.Time
		)
		retrieved := model.RetrievedChunk{}
		err := rows.Scan(
			&id,
			&retrieved.Namespace,
			&retrieved.SourceID,
			&retrieved.SourceType,
			&collection,
			&retrieved.AuthorityLevel,
			pq.Array(&retrieved.LegalArea),
			&retrieved.ChunkIndex,
			&retrieved.ChunkTotal,
			&retrieved.Text,
			&detail,
			&retrieved.EmbeddingModel,
			&retrieved.IndexedAt,
			&createdAt,
			&distance,
		)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}

		err = applyDetail(&retrieved.Chunk, detail)
		if err != nil {
			return nil, err
		}

		retrieved.Distance = model.DistanceOf(distance)
		results = append(results, retrieved)
	}

	err = rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return results, nil
}

// DeleteChunksBySource removes all chunks of one source document and
// returns the number of deleted rows.
func (h *ChunksDBHandler) DeleteChunksBySource(sourceID string) (int, error) {
	var deleted int
	err := h.db.Instance.QueryRow(
		`SELECT delete_chunks_by_source($1)`,
		sourceID,
	).Scan(&deleted)
	if err != nil {
		return 0, helper.NewError("scan", err)
	}

	return deleted, nil
}

// CountChunks counts stored chunks, optionally restricted to one collection.
func (h *ChunksDBHandler) CountChunks(collection string) (int, error) {
	var count int
	err := h.db.Instance.QueryRow(
		`SELECT count_chunks($1)`,
		collection,
	).Scan(&count)
	if err != nil {
		return 0, helper.NewError("scan", err)
	}

	return count, nil
}

// chunkDetail is the JSONB payload holding the source-specific chunk
// metadata that has no dedicated column.
type chunkDetail struct {
	SfsNr                  string              `json:"sfs_nr,omitempty"`
	Rubrik                 string              `json:"rubrik,omitempty"`
	Kortnamn               string              `json:"kortnamn,omitempty"`
	Kapitel                string              `json:"kapitel,omitempty"`
	Kapitelrubrik          string              `json:"kapitelrubrik,omitempty"`
	Paragraf               string              `json:"paragraf,omitempty"`
	Stycke                 string              `json:"stycke,omitempty"`
	NormType               model.NormType      `json:"norm_type,omitempty"`
	NumberingType          model.NumberingType `json:"numbering_type,omitempty"`
	Beteckning             string              `json:"beteckning,omitempty"`
	SectionTitle           string              `json:"section_title,omitempty"`
	Pinpoint               string              `json:"pinpoint,omitempty"`
	Citation               string              `json:"citation,omitempty"`
	IsDefinition           bool                `json:"is_definition,omitempty"`
	IsOvergangsbestammelse bool                `json:"is_overgangsbestammelse,omitempty"`
	HasTable               bool                `json:"has_table,omitempty"`
	ReferencesTo           []model.Reference   `json:"references_to,omitempty"`
	LegalAreaConfidence    string              `json:"legal_area_confidence,omitempty"`
}

func detailFromChunk(chunk *model.Chunk) chunkDetail {
	return chunkDetail{
		SfsNr:                  chunk.SfsNr,
		Rubrik:                 chunk.Rubrik,
		Kortnamn:               chunk.Kortnamn,
		Kapitel:                chunk.Kapitel,
		Kapitelrubrik:          chunk.Kapitelrubrik,
		Paragraf:               chunk.Paragraf,
		Stycke:                 chunk.Stycke,
		NormType:               chunk.NormType,
		NumberingType:          chunk.NumberingType,
		Beteckning:             chunk.Beteckning,
		SectionTitle:           chunk.SectionTitle,
		Pinpoint:               chunk.Pinpoint,
		Citation:               chunk.Citation,
		IsDefinition:           chunk.IsDefinition,
		IsOvergangsbestammelse: chunk.IsOvergangsbestammelse,
		HasTable:               chunk.HasTable,
		ReferencesTo:           chunk.ReferencesTo,
		LegalAreaConfidence:    chunk.LegalAreaConfidence,
	}
}

func applyDetail(chunk *model.Chunk, payload []byte) error {
	detail := chunkDetail{}
	err := json.Unmarshal(payload, &detail)
	if err != nil {
		return helper.NewError("unmarshal detail", err)
	}

	chunk.SfsNr = detail.SfsNr
	chunk.Rubrik = detail.Rubrik
	chunk.Kortnamn = detail.Kortnamn
	chunk.Kapitel = detail.Kapitel
	chunk.Kapitelrubrik = detail.Kapitelrubrik
	chunk.Paragraf = detail.Paragraf
	chunk.Stycke = detail.Stycke
	chunk.NormType = detail.NormType
	chunk.NumberingType = detail.NumberingType
	chunk.Beteckning = detail.Beteckning
	chunk.SectionTitle = detail.SectionTitle
	chunk.Pinpoint = detail.Pinpoint
	chunk.Citation = detail.Citation
	chunk.IsDefinition = detail.IsDefinition
	chunk.IsOvergangsbestammelse = detail.IsOvergangsbestammelse
	chunk.HasTable = detail.HasTable
	chunk.ReferencesTo = detail.ReferencesTo
	chunk.LegalAreaConfidence = detail.LegalAreaConfidence

	return nil
}

// scanChunk scans one chunk row in the column order shared by all
// chunk-returning SQL functions.
func scanChunk(row interface{ Scan(dest ...any) error }) (*model.Chunk, error) {
	var (
		id         int
		collection string
		detail     []byte
		createdAt  time.Time
	)
	chunk := &model.Chunk{}

	err := row.Scan(
		&id,
		&chunk.Namespace,
		&chunk.SourceID,
		&chunk.SourceType,
		&collection,
		&chunk.AuthorityLevel,
		pq.Array(&chunk.LegalArea),
		&chunk.ChunkIndex,
		&chunk.ChunkTotal,
		&chunk.Text,
		&detail,
		&chunk.EmbeddingModel,
		&chunk.IndexedAt,
		&createdAt,
	)
	if err != nil {
		return nil, helper.NewError("scan", err)
	}

	err = applyDetail(chunk, detail)
	if err != nil {
		return nil, err
	}

	return chunk, nil
}
