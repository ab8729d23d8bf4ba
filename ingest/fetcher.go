package ingest

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/eliassondavid/paragrafen-ai/database"
	"github.com/eliassondavid/paragrafen-ai/helper"
	"github.com/eliassondavid/paragrafen-ai/model"
)

// incremental updates scan at most this many list pages before giving up
// on finding the watermark.
const maxIncrementalPages = 10

// doktypSourceTypes maps Riksdagen document types to stored source types.
// Propositions and SOU reports both land in the preparatory-works corpus.
var doktypSourceTypes = map[string]model.SourceType{
	"sfs":  model.SourceTypeSfs,
	"prop": model.SourceTypeForarbete,
	"sou":  model.SourceTypeForarbete,
}

// SourceTypeForDoktyp resolves a Riksdagen doktyp to the stored source type.
func SourceTypeForDoktyp(doktyp string) (model.SourceType, error) {
	sourceType, ok := doktypSourceTypes[doktyp]
	if !ok {
		return "", helper.NewError("doktyp validation", fmt.Errorf("unknown doktyp: %s (use 'sfs', 'prop' or 'sou')", doktyp))
	}
	return sourceType, nil
}

// CrawlStats summarizes one full crawl run.
type CrawlStats struct {
	Fetched      int      `json:"fetched"`
	Skipped      int      `json:"skipped"`
	Errors       int      `json:"errors"`
	ErrorDetails []string `json:"error_details,omitempty"`
	TotalPages   int      `json:"total_pages"`
	TotalHits    int      `json:"total_documents_api"`
}

// UpdateStats summarizes one incremental update run.
type UpdateStats struct {
	New           int      `json:"new"`
	Updated       int      `json:"updated"`
	Errors        int      `json:"errors"`
	NewDokIDs     []string `json:"new_dok_ids,omitempty"`
	UpdatedDokIDs []string `json:"updated_dok_ids,omitempty"`
	Watermark     string   `json:"watermark"`
}

// VerifyReport compares local coverage with what the API reports.
type VerifyReport struct {
	LocalDocuments int     `json:"local_documents"`
	APITotal       int     `json:"api_total"`
	CoveragePct    float64 `json:"coverage_pct"`
	Missing        int     `json:"missing"`
}

// Fetcher crawls the Riksdagen API and persists raw documents. Fetched
// documents are stored verbatim; parsing happens later in the pipeline.
type Fetcher struct {
	client    *RiksdagenClient
	documents database.DocumentsDBHandlerFunctions
	log       *slog.Logger
}

// NewFetcher creates a fetcher over the given client and document store.
func NewFetcher(client *RiksdagenClient, documents database.DocumentsDBHandlerFunctions, logger *slog.Logger) *Fetcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Fetcher{
		client:    client,
		documents: documents,
		log:       logger,
	}
}

// FullCrawl fetches every document of one doktyp, page by page. Documents
// already stored are skipped when skipExisting is set. Individual document
// failures are counted and reported; only list-page failures of the first
// page abort the crawl.
func (f *Fetcher) FullCrawl(ctx context.Context, doktyp string, startPage int, maxPages int, skipExisting bool) (*CrawlStats, error) {
	sourceType, err := SourceTypeForDoktyp(doktyp)
	if err != nil {
		return nil, err
	}
	if startPage < 1 {
		startPage = 1
	}

	stats := &CrawlStats{}

	f.log.Info(fmt.Sprintf("Hämtar dokumentlista för %v, sida %d", doktyp, startPage))
	first, err := f.client.FetchDocumentList(ctx, doktyp, startPage)
	if err != nil {
		return nil, helper.NewError("fetch first list page", err)
	}

	stats.TotalPages = first.TotalPages()
	stats.TotalHits = first.TotalHits()

	endPage := stats.TotalPages
	if maxPages > 0 && startPage+maxPages-1 < endPage {
		endPage = startPage + maxPages - 1
	}
	f.log.Info(fmt.Sprintf("Totalt %d dokument på %d sidor, hämtar sida %d–%d", stats.TotalHits, stats.TotalPages, startPage, endPage))

	for page := startPage; page <= endPage; page++ {
		if err := ctx.Err(); err != nil {
			return stats, helper.NewError("full crawl", err)
		}

		list := first
		if page != startPage {
			list, err = f.client.FetchDocumentList(ctx, doktyp, page)
			if err != nil {
				f.log.Error(fmt.Sprintf("Sida %d misslyckades", page), slog.Any("error", err))
				stats.Errors++
				stats.ErrorDetails = append(stats.ErrorDetails, fmt.Sprintf("page %d: %v", page, err))
				continue
			}
		}

		if len(list.Dokument) == 0 {
			f.log.Warn(fmt.Sprintf("Sida %d tom, avslutar", page))
			break
		}

		for _, entry := range list.Dokument {
			if entry.DokID == "" {
				continue
			}

			if skipExisting {
				exists, err := f.documents.DocumentExists(entry.DokID)
				if err != nil {
					return stats, helper.NewError("check document existence", err)
				}
				if exists {
					stats.Skipped++
					continue
				}
			}

			err = f.fetchAndStore(ctx, entry.DokID, sourceType)
			if err != nil {
				f.log.Error(fmt.Sprintf("%v misslyckades", entry.DokID), slog.Any("error", err))
				stats.Errors++
				stats.ErrorDetails = append(stats.ErrorDetails, fmt.Sprintf("%s: %v", entry.DokID, err))
				continue
			}

			stats.Fetched++
			if stats.Fetched%100 == 0 {
				f.log.Info(fmt.Sprintf("Framsteg: %d hämtade, %d hoppade, %d fel (sida %d/%d)", stats.Fetched, stats.Skipped, stats.Errors, page, endPage))
			}
		}
	}

	f.log.Info(fmt.Sprintf("Crawl klar: %d hämtade, %d hoppade, %d fel", stats.Fetched, stats.Skipped, stats.Errors))
	return stats, nil
}

// IncrementalUpdate fetches documents changed since the stored watermark
// (the highest systemdatum already in the store). The list is newest first,
// so scanning stops at the first entry at or below the watermark.
func (f *Fetcher) IncrementalUpdate(ctx context.Context, doktyp string) (*UpdateStats, error) {
	sourceType, err := SourceTypeForDoktyp(doktyp)
	if err != nil {
		return nil, err
	}

	watermark, err := f.documents.LatestSystemdatum(sourceType)
	if err != nil {
		return nil, helper.NewError("read watermark", err)
	}

	stats := &UpdateStats{Watermark: watermark}
	f.log.Info(fmt.Sprintf("Inkrementell uppdatering för %v, senast: %v", doktyp, watermark))

	for page := 1; page <= maxIncrementalPages; page++ {
		list, err := f.client.FetchDocumentList(ctx, doktyp, page)
		if err != nil {
			f.log.Error(fmt.Sprintf("Sida %d misslyckades", page), slog.Any("error", err))
			stats.Errors++
			break
		}

		if len(list.Dokument) == 0 {
			break
		}

		foundOld := false
		for _, entry := range list.Dokument {
			updatedAt := entry.UpdatedAt()
			if entry.DokID == "" || updatedAt == "" {
				continue
			}
			if watermark != "" && updatedAt <= watermark {
				foundOld = true
				break
			}

			existed, err := f.documents.DocumentExists(entry.DokID)
			if err != nil {
				return stats, helper.NewError("check document existence", err)
			}

			err = f.fetchAndStore(ctx, entry.DokID, sourceType)
			if err != nil {
				f.log.Error(fmt.Sprintf("%v misslyckades", entry.DokID), slog.Any("error", err))
				stats.Errors++
				continue
			}

			if existed {
				stats.Updated++
				stats.UpdatedDokIDs = append(stats.UpdatedDokIDs, entry.DokID)
			} else {
				stats.New++
				stats.NewDokIDs = append(stats.NewDokIDs, entry.DokID)
			}
		}

		if foundOld {
			break
		}
	}

	f.log.Info(fmt.Sprintf("Uppdatering klar: %d nya, %d uppdaterade, %d fel", stats.New, stats.Updated, stats.Errors))
	return stats, nil
}

// FetchSingle fetches and stores one document by dok_id.
func (f *Fetcher) FetchSingle(ctx context.Context, dokID string, doktyp string) (*model.RawDocument, error) {
	sourceType, err := SourceTypeForDoktyp(doktyp)
	if err != nil {
		return nil, err
	}

	status, err := f.client.FetchDocumentStatus(ctx, dokID)
	if err != nil {
		return nil, err
	}

	doc := status.ToRawDocument(sourceType)
	err = f.documents.InsertDocument(doc, sourceType)
	if err != nil {
		return nil, helper.NewError("store document", err)
	}

	f.log.Info(fmt.Sprintf("Sparade %v", dokID))
	return doc, nil
}

// VerifyCrawl compares the stored document count for one doktyp with the
// total the API reports.
func (f *Fetcher) VerifyCrawl(ctx context.Context, doktyp string) (*VerifyReport, error) {
	sourceType, err := SourceTypeForDoktyp(doktyp)
	if err != nil {
		return nil, err
	}

	local, err := f.documents.CountDocuments(sourceType)
	if err != nil {
		return nil, helper.NewError("count documents", err)
	}

	list, err := f.client.FetchDocumentList(ctx, doktyp, 1)
	if err != nil {
		return nil, err
	}

	report := &VerifyReport{
		LocalDocuments: local,
		APITotal:       list.TotalHits(),
		Missing:        list.TotalHits() - local,
	}
	if report.APITotal > 0 {
		report.CoveragePct = float64(report.LocalDocuments) / float64(report.APITotal) * 100
	}

	f.log.Info(fmt.Sprintf("Verifiering: %d/%d (%.1f%%)", report.LocalDocuments, report.APITotal, report.CoveragePct))
	return report, nil
}

func (f *Fetcher) fetchAndStore(ctx context.Context, dokID string, sourceType model.SourceType) error {
	status, err := f.client.FetchDocumentStatus(ctx, dokID)
	if err != nil {
		return err
	}

	return f.documents.InsertDocument(status.ToRawDocument(sourceType), sourceType)
}
