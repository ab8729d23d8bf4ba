package database

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eliassondavid/paragrafen-ai/model"
)

func testRawDocument(dokID string) *model.RawDocument {
	return &model.RawDocument{
		DokID:       dokID,
		SfsNr:       "2017:900",
		Titel:       "Förvaltningslag (2017:900)",
		Organ:       "Justitiedepartementet L6",
		HTML:        "<div><p>1 § Denna lag gäller för handläggning av ärenden.</p></div>",
		Utfardad:    "2017-09-28",
		Systemdatum: "2024-01-15 10:30:00",
		FetchedAt:   time.Now(),
	}
}

func TestDocumentsNewDocumentsDBHandler(t *testing.T) {
	database := initDB(t)

	t.Run("Valid call NewDocumentsDBHandler", func(t *testing.T) {
		documentsDbHandler, err := NewDocumentsDBHandler(database, true)
		assert.NoError(t, err, "Expected NewDocumentsDBHandler to not return an error")
		require.NotNil(t, documentsDbHandler, "Expected NewDocumentsDBHandler to return a non-nil instance")
		require.NotNil(t, documentsDbHandler.db, "Expected NewDocumentsDBHandler to have a non-nil database instance")
	})

	t.Run("Invalid call NewDocumentsDBHandler with nil database", func(t *testing.T) {
		_, err := NewDocumentsDBHandler(nil, false)
		assert.Error(t, err, "Expected error when creating DocumentsDBHandler with nil database")
		assert.Contains(t, err.Error(), "database connection is nil", "Expected specific error message for nil database connection")
	})
}

func TestDocumentsInsert(t *testing.T) {
	database := initDB(t)

	documentsDbHandler, err := NewDocumentsDBHandler(database, true)
	require.NoError(t, err, "Expected NewDocumentsDBHandler to not return an error")
	truncateDocuments(t, database)

	t.Run("Insert document", func(t *testing.T) {
		doc := testRawDocument("sfs-2017-900")
		err := documentsDbHandler.InsertDocument(doc, model.SourceTypeSfs)
		assert.NoError(t, err, "Expected InsertDocument to not return an error")

		stored, err := documentsDbHandler.SelectDocument("sfs-2017-900")
		require.NoError(t, err)
		assert.Equal(t, doc.DokID, stored.DokID)
		assert.Equal(t, doc.SfsNr, stored.SfsNr)
		assert.Equal(t, doc.Titel, stored.Titel)
		assert.Equal(t, doc.Organ, stored.Organ)
		assert.Equal(t, doc.HTML, stored.HTML)
		assert.Equal(t, doc.Utfardad, stored.Utfardad)
		assert.Equal(t, doc.Systemdatum, stored.Systemdatum)
		assert.False(t, stored.FetchedAt.IsZero())
	})

	t.Run("Insert on same dok_id updates instead of duplicating", func(t *testing.T) {
		doc := testRawDocument("sfs-2017-900")
		doc.Systemdatum = "2024-02-01 08:00:00"
		err := documentsDbHandler.InsertDocument(doc, model.SourceTypeSfs)
		require.NoError(t, err)

		count, err := documentsDbHandler.CountDocuments(model.SourceTypeSfs)
		require.NoError(t, err)
		assert.Equal(t, 1, count, "Expected refetch to overwrite, not duplicate")

		stored, err := documentsDbHandler.SelectDocument("sfs-2017-900")
		require.NoError(t, err)
		assert.Equal(t, "2024-02-01 08:00:00", stored.Systemdatum)
	})

	t.Run("Document exists", func(t *testing.T) {
		exists, err := documentsDbHandler.DocumentExists("sfs-2017-900")
		require.NoError(t, err)
		assert.True(t, exists)

		exists, err = documentsDbHandler.DocumentExists("unknown-dok-id")
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("Select unknown document returns error", func(t *testing.T) {
		_, err := documentsDbHandler.SelectDocument("unknown-dok-id")
		assert.Error(t, err, "Expected error for unknown dok_id")
	})
}

func TestDocumentsPaging(t *testing.T) {
	database := initDB(t)

	documentsDbHandler, err := NewDocumentsDBHandler(database, true)
	require.NoError(t, err, "Expected NewDocumentsDBHandler to not return an error")
	truncateDocuments(t, database)

	dates := []string{
		"2024-01-10 00:00:00",
		"2024-01-20 00:00:00",
		"2024-01-30 00:00:00",
	}
	for i, date := range dates {
		doc := testRawDocument("sfs-doc-" + string(rune('a'+i)))
		doc.Systemdatum = date
		require.NoError(t, documentsDbHandler.InsertDocument(doc, model.SourceTypeSfs))
	}

	prop := testRawDocument("prop-2016-17-180")
	prop.SfsNr = ""
	prop.Beteckning = "Prop. 2016/17:180"
	prop.Systemdatum = "2024-03-01 00:00:00"
	require.NoError(t, documentsDbHandler.InsertDocument(prop, model.SourceTypeForarbete))

	t.Run("Select documents by type in systemdatum order", func(t *testing.T) {
		docs, err := documentsDbHandler.SelectDocumentsByType(model.SourceTypeSfs, "", "", 10)
		require.NoError(t, err)
		require.Len(t, docs, 3, "Expected only the sfs documents")
		assert.Equal(t, "2024-01-10 00:00:00", docs[0].Systemdatum)
		assert.Equal(t, "2024-01-30 00:00:00", docs[2].Systemdatum)
	})

	t.Run("Select documents by type continues after the cursor", func(t *testing.T) {
		docs, err := documentsDbHandler.SelectDocumentsByType(model.SourceTypeSfs, "2024-01-10 00:00:00", "sfs-doc-a", 10)
		require.NoError(t, err)
		require.Len(t, docs, 2, "Expected only documents after the cursor")
		assert.Equal(t, "2024-01-20 00:00:00", docs[0].Systemdatum)
	})

	t.Run("Select documents by type respects the limit", func(t *testing.T) {
		docs, err := documentsDbHandler.SelectDocumentsByType(model.SourceTypeSfs, "", "", 2)
		require.NoError(t, err)
		assert.Len(t, docs, 2)
	})

	t.Run("Cursor splits a shared systemdatum without skipping", func(t *testing.T) {
		for _, dokID := range []string{"sfs-same-a", "sfs-same-b", "sfs-same-c"} {
			doc := testRawDocument(dokID)
			doc.Systemdatum = "2024-04-01 00:00:00"
			require.NoError(t, documentsDbHandler.InsertDocument(doc, model.SourceTypeSfs))
		}
		defer func() {
			for _, dokID := range []string{"sfs-same-a", "sfs-same-b", "sfs-same-c"} {
				require.NoError(t, documentsDbHandler.DeleteDocument(dokID))
			}
		}()

		page, err := documentsDbHandler.SelectDocumentsByType(model.SourceTypeSfs, "2024-01-30 00:00:00", "sfs-doc-c", 2)
		require.NoError(t, err)
		require.Len(t, page, 2)
		assert.Equal(t, "sfs-same-a", page[0].DokID)
		assert.Equal(t, "sfs-same-b", page[1].DokID)

		page, err = documentsDbHandler.SelectDocumentsByType(model.SourceTypeSfs, page[1].Systemdatum, page[1].DokID, 2)
		require.NoError(t, err)
		require.Len(t, page, 1, "Expected the rest of the shared-systemdatum group on the next page")
		assert.Equal(t, "sfs-same-c", page[0].DokID)
	})

	t.Run("Cursor advances past documents with empty systemdatum", func(t *testing.T) {
		doc := testRawDocument("sfs-no-datum")
		doc.Systemdatum = ""
		require.NoError(t, documentsDbHandler.InsertDocument(doc, model.SourceTypeSfs))
		defer func() {
			require.NoError(t, documentsDbHandler.DeleteDocument("sfs-no-datum"))
		}()

		page, err := documentsDbHandler.SelectDocumentsByType(model.SourceTypeSfs, "", "", 1)
		require.NoError(t, err)
		require.Len(t, page, 1)
		assert.Equal(t, "sfs-no-datum", page[0].DokID, "Empty systemdatum sorts first")

		page, err = documentsDbHandler.SelectDocumentsByType(model.SourceTypeSfs, page[0].Systemdatum, page[0].DokID, 1)
		require.NoError(t, err)
		require.Len(t, page, 1)
		assert.NotEqual(t, "sfs-no-datum", page[0].DokID, "Expected the cursor to move past the empty systemdatum")
	})

	t.Run("Latest systemdatum per source type", func(t *testing.T) {
		watermark, err := documentsDbHandler.LatestSystemdatum(model.SourceTypeSfs)
		require.NoError(t, err)
		assert.Equal(t, "2024-01-30 00:00:00", watermark)

		watermark, err = documentsDbHandler.LatestSystemdatum(model.SourceTypeForarbete)
		require.NoError(t, err)
		assert.Equal(t, "2024-03-01 00:00:00", watermark)
	})

	t.Run("Latest systemdatum is empty without documents", func(t *testing.T) {
		watermark, err := documentsDbHandler.LatestSystemdatum(model.SourceTypePraxis)
		require.NoError(t, err)
		assert.Equal(t, "", watermark, "Expected empty watermark for empty source type")
	})

	t.Run("Count documents across all source types", func(t *testing.T) {
		count, err := documentsDbHandler.CountDocuments("")
		require.NoError(t, err)
		assert.Equal(t, 4, count)
	})
}

func TestDocumentsDelete(t *testing.T) {
	database := initDB(t)

	documentsDbHandler, err := NewDocumentsDBHandler(database, true)
	require.NoError(t, err, "Expected NewDocumentsDBHandler to not return an error")
	truncateDocuments(t, database)

	doc := testRawDocument("sfs-to-delete")
	require.NoError(t, documentsDbHandler.InsertDocument(doc, model.SourceTypeSfs))

	t.Run("Delete document", func(t *testing.T) {
		err := documentsDbHandler.DeleteDocument("sfs-to-delete")
		assert.NoError(t, err)

		_, err = documentsDbHandler.SelectDocument("sfs-to-delete")
		assert.Error(t, err, "Expected document to be gone after delete")
	})

	t.Run("Delete unknown document does not error", func(t *testing.T) {
		err := documentsDbHandler.DeleteDocument("never-existed")
		assert.NoError(t, err)
	})
}
