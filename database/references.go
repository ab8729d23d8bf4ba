package database

import (
	"fmt"
	"time"

	"github.com/eliassondavid/paragrafen-ai/helper"
	"github.com/eliassondavid/paragrafen-ai/model"
	loadSql "github.com/eliassondavid/paragrafen-ai/sql"
)

// ReferencesDBHandlerFunctions defines the interface for statute-reference
// database operations.
type ReferencesDBHandlerFunctions interface {
	InsertReferences(fromNamespace string, refs []model.Reference) error
	SelectReferencesFrom(namespace string) ([]model.Reference, error)
	SelectCitingChunks(target string) ([]string, error)
	DeleteReferencesFrom(namespace string) error
}

// ReferencesDBHandler handles the citation edges between indexed chunks
// and the statutes they reference.
type ReferencesDBHandler struct {
	db *helper.Database
}

// NewReferencesDBHandler creates a new references database handler.
// The chunks table must exist first: reference rows carry a foreign key
// to chunks.namespace.
func NewReferencesDBHandler(db *helper.Database, force bool) (*ReferencesDBHandler, error) {
	if db == nil {
		return nil, helper.NewError("database connection validation", fmt.Errorf("database connection is nil"))
	}

	referencesDbHandler := &ReferencesDBHandler{
		db: db,
	}

	err := loadSql.LoadReferencesSql(referencesDbHandler.db.Instance, force)
	if err != nil {
		return nil, helper.NewError("load references sql", err)
	}

	err = referencesDbHandler.CreateTable()
	if err != nil {
		return nil, helper.NewError("create table", err)
	}

	db.Logger.Info("Initialized ReferencesDBHandler")

	return referencesDbHandler, nil
}

// CreateTable creates the 'statute_references' table in the database.
// If the table already exists, it does not create it again.
func (h *ReferencesDBHandler) CreateTable() error {
	_, err := h.db.Instance.Exec(`SELECT init_references();`)
	if err != nil {
		return helper.NewError("init references table", err)
	}

	h.db.Logger.Info("Checked/created table statute_references")

	return nil
}

// InsertReferences stores all outgoing references of one chunk.
// Duplicate edges are upserted, so re-indexing is idempotent.
func (h *ReferencesDBHandler) InsertReferences(fromNamespace string, refs []model.Reference) error {
	for _, ref := range refs {
		var (
			id           int
			from, target string
			relationType string
			createdAt    time.Time
		)
		err := h.db.Instance.QueryRow(
			`SELECT * FROM insert_reference($1, $2, $3)`,
			fromNamespace,
			ref.Target,
			ref.RelationType,
		).Scan(&id, &from, &target, &relationType, &createdAt)
		if err != nil {
			return helper.NewError("scan", err)
		}
	}

	return nil
}

// SelectReferencesFrom retrieves the outgoing references of one chunk,
// ordered by target.
func (h *ReferencesDBHandler) SelectReferencesFrom(namespace string) ([]model.Reference, error) {
	rows, err := h.db.Instance.Query(
		`SELECT * FROM select_references_from($1)`,
		namespace,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	var results []model.Reference
	for rows.Next() {
		var (
			id        int
			from      string
			createdAt time.Time
		)
		ref := model.Reference{}
		err := rows.Scan(&id, &from, &ref.Target, &ref.RelationType, &createdAt)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}
		results = append(results, ref)
	}

	err = rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return results, nil
}

// SelectCitingChunks returns the namespaces of all chunks citing the given
// statute key (e.g. "sfs::1915:218").
func (h *ReferencesDBHandler) SelectCitingChunks(target string) ([]string, error) {
	rows, err := h.db.Instance.Query(
		`SELECT * FROM select_citing_chunks($1)`,
		target,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	var results []string
	for rows.Next() {
		var namespace string
		err := rows.Scan(&namespace)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}
		results = append(results, namespace)
	}

	err = rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return results, nil
}

// DeleteReferencesFrom removes all outgoing references of one chunk.
func (h *ReferencesDBHandler) DeleteReferencesFrom(namespace string) error {
	_, err := h.db.Instance.Exec(
		`SELECT delete_references_from($1)`,
		namespace,
	)
	if err != nil {
		return helper.NewError("exec", err)
	}

	return nil
}
