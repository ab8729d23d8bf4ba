package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/eliassondavid/paragrafen-ai/helper"
	"github.com/eliassondavid/paragrafen-ai/model"
	loadSql "github.com/eliassondavid/paragrafen-ai/sql"
)

// DocumentsDBHandlerFunctions defines the interface for document database operations.
type DocumentsDBHandlerFunctions interface {
	InsertDocument(doc *model.RawDocument, sourceType model.SourceType) error
	DocumentExists(dokID string) (bool, error)
	SelectDocument(dokID string) (*model.RawDocument, error)
	SelectDocumentsByType(sourceType model.SourceType, afterSystemdatum string, afterDokID string, limit int) ([]*model.RawDocument, error)
	LatestSystemdatum(sourceType model.SourceType) (string, error)
	CountDocuments(sourceType model.SourceType) (int, error)
	DeleteDocument(dokID string) error
}

// DocumentsDBHandler handles document-related database operations
type DocumentsDBHandler struct {
	db *helper.Database
}

// NewDocumentsDBHandler creates a new documents database handler.
// It initializes the database connection and loads document-related SQL functions.
// If force is true, it will reload the SQL functions even if they already exist.
func NewDocumentsDBHandler(db *helper.Database, force bool) (*DocumentsDBHandler, error) {
	if db == nil {
		return nil, helper.NewError("database connection validation", fmt.Errorf("database connection is nil"))
	}

	documentsDbHandler := &DocumentsDBHandler{
		db: db,
	}

	err := loadSql.LoadDocumentsSql(documentsDbHandler.db.Instance, force)
	if err != nil {
		return nil, helper.NewError("load documents sql", err)
	}

	err = documentsDbHandler.CreateTable()
	if err != nil {
		return nil, helper.NewError("create table", err)
	}

	db.Logger.Info("Initialized DocumentsDBHandler")

	return documentsDbHandler, nil
}

// CreateTable creates the 'documents' table in the database.
// If the table already exists, it does not create it again.
func (h *DocumentsDBHandler) CreateTable() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := h.db.Instance.ExecContext(ctx, `SELECT init_documents();`)
	if err != nil {
		log.Panicf("error initializing documents table: %#v", err)
	}

	h.db.Logger.Info("Checked/created table documents")

	return nil
}

// InsertDocument stores a fetched document, overwriting any previous row
// with the same dok_id so refetches stay idempotent.
func (h *DocumentsDBHandler) InsertDocument(doc *model.RawDocument, sourceType model.SourceType) error {
	fetchedAt := doc.FetchedAt
	if fetchedAt.IsZero() {
		fetchedAt = time.Now()
	}

	row := h.db.Instance.QueryRow(
		`SELECT * FROM insert_document($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		doc.DokID,
		sourceType,
		doc.SfsNr,
		doc.Beteckning,
		doc.Titel,
		doc.Organ,
		doc.HTML,
		doc.Utfardad,
		doc.Systemdatum,
		fetchedAt,
	)

	_, _, err := scanDocument(row)
	if err != nil {
		return err
	}

	return nil
}

// DocumentExists reports whether a document with the given dok_id is stored.
// Used by the fetcher to skip already-crawled documents.
func (h *DocumentsDBHandler) DocumentExists(dokID string) (bool, error) {
	var exists bool
	err := h.db.Instance.QueryRow(
		`SELECT document_exists($1)`,
		dokID,
	).Scan(&exists)
	if err != nil {
		return false, helper.NewError("scan", err)
	}

	return exists, nil
}

// SelectDocument retrieves a document by its Riksdagen dok_id.
func (h *DocumentsDBHandler) SelectDocument(dokID string) (*model.RawDocument, error) {
	row := h.db.Instance.QueryRow(
		`SELECT * FROM select_document($1)`,
		dokID,
	)

	doc, _, err := scanDocument(row)
	return doc, err
}

// SelectDocumentsByType pages through the documents of one source type,
// ordered by (systemdatum, dok_id). Pass two empty strings to start from the
// beginning; pass the Systemdatum and DokID of the last returned document to
// continue. The composite cursor keeps paging stable even when many documents
// share one systemdatum, including the empty one.
func (h *DocumentsDBHandler) SelectDocumentsByType(sourceType model.SourceType, afterSystemdatum string, afterDokID string, limit int) ([]*model.RawDocument, error) {
	rows, err := h.db.Instance.Query(
		`SELECT * FROM select_documents_by_type($1, $2, $3, $4)`,
		sourceType,
		afterSystemdatum,
		afterDokID,
		limit,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	var results []*model.RawDocument
	for rows.Next() {
		doc, _, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, doc)
	}

	err = rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return results, nil
}

// LatestSystemdatum returns the crawl watermark for one source type:
// the highest stored systemdatum, or an empty string when nothing is stored.
func (h *DocumentsDBHandler) LatestSystemdatum(sourceType model.SourceType) (string, error) {
	var watermark string
	err := h.db.Instance.QueryRow(
		`SELECT latest_systemdatum($1)`,
		sourceType,
	).Scan(&watermark)
	if err != nil {
		return "", helper.NewError("scan", err)
	}

	return watermark, nil
}

// CountDocuments counts stored documents, optionally restricted to one
// source type (pass an empty source type to count everything).
func (h *DocumentsDBHandler) CountDocuments(sourceType model.SourceType) (int, error) {
	var count int
	err := h.db.Instance.QueryRow(
		`SELECT count_documents($1)`,
		sourceType,
	).Scan(&count)
	if err != nil {
		return 0, helper.NewError("scan", err)
	}

	return count, nil
}

// DeleteDocument removes a document by dok_id.
func (h *DocumentsDBHandler) DeleteDocument(dokID string) error {
	_, err := h.db.Instance.Exec(
		`SELECT delete_document($1)`,
		dokID,
	)
	if err != nil {
		return helper.NewError("exec", err)
	}

	return nil
}

// scanDocument scans one documents row. The source type is returned
// separately because RawDocument does not carry it.
func scanDocument(row interface{ Scan(dest ...any) error }) (*model.RawDocument, model.SourceType, error) {
	var (
		id         int
		rid        uuid.UUID
		sourceType model.SourceType
		createdAt  time.Time
		updatedAt  time.Time
	)
	doc := &model.RawDocument{}

	err := row.Scan(
		&id,
		&rid,
		&doc.DokID,
		&sourceType,
		&doc.SfsNr,
		&doc.Beteckning,
		&doc.Titel,
		&doc.Organ,
		&doc.HTML,
		&doc.Utfardad,
		&doc.Systemdatum,
		&doc.FetchedAt,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, "", helper.NewError("scan", err)
	}

	return doc, sourceType, nil
}
