package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/eliassondavid/paragrafen-ai/helper"
	"github.com/eliassondavid/paragrafen-ai/model"
)

// DefaultBaseURL is the Riksdagen open-data API. Free to use with
// attribution; rate limited to one request per half second as a courtesy.
const DefaultBaseURL = "https://data.riksdagen.se"

const (
	defaultRequestDelay = 500 * time.Millisecond
	defaultMaxRetries   = 5
	userAgent           = "paragrafen-ai/1.0 (https://paragrafen.ai)"
)

// DocumentListEntry is one row of a dokumentlista page.
type DocumentListEntry struct {
	DokID       string `json:"dok_id"`
	Beteckning  string `json:"beteckning"`
	Titel       string `json:"titel"`
	Systemdatum string `json:"systemdatum"`
	Publicerad  string `json:"publicerad"`
}

// DocumentList is one page of the dokumentlista endpoint. The API reports
// totals as strings in @-prefixed keys.
type DocumentList struct {
	Pages    string              `json:"@sidor"`
	Hits     string              `json:"@traffar"`
	Dokument []DocumentListEntry `json:"dokument"`
}

// TotalPages parses @sidor, defaulting to 1.
func (l *DocumentList) TotalPages() int {
	pages, err := strconv.Atoi(l.Pages)
	if err != nil || pages < 1 {
		return 1
	}
	return pages
}

// TotalHits parses @traffar, defaulting to 0.
func (l *DocumentList) TotalHits() int {
	hits, err := strconv.Atoi(l.Hits)
	if err != nil {
		return 0
	}
	return hits
}

// UpdatedAt returns the entry's change timestamp, falling back to the
// publication date when systemdatum is missing.
func (e DocumentListEntry) UpdatedAt() string {
	if e.Systemdatum != "" {
		return e.Systemdatum
	}
	return e.Publicerad
}

// DocumentStatus is the full record of one document from the
// dokumentstatus endpoint.
type DocumentStatus struct {
	Dokument struct {
		DokID       string `json:"dok_id"`
		Beteckning  string `json:"beteckning"`
		Titel       string `json:"titel"`
		Organ       string `json:"organ"`
		Datum       string `json:"datum"`
		Systemdatum string `json:"systemdatum"`
		HTML        string `json:"html"`
	} `json:"dokument"`
}

// ToRawDocument converts an API record into the persisted document form.
// For statutes the beteckning carries the SFS number; preparatory works
// keep it as beteckning instead.
func (s *DocumentStatus) ToRawDocument(sourceType model.SourceType) *model.RawDocument {
	doc := &model.RawDocument{
		DokID:       s.Dokument.DokID,
		Titel:       s.Dokument.Titel,
		Organ:       s.Dokument.Organ,
		HTML:        s.Dokument.HTML,
		Utfardad:    s.Dokument.Datum,
		Systemdatum: s.Dokument.Systemdatum,
		FetchedAt:   time.Now().UTC(),
	}
	if sourceType == model.SourceTypeSfs {
		doc.SfsNr = s.Dokument.Beteckning
	} else {
		doc.Beteckning = s.Dokument.Beteckning
	}
	return doc
}

// RiksdagenClient fetches documents from the Riksdagen open-data API with
// a courtesy delay between requests and exponential backoff on transient
// failures (429 and 5xx).
type RiksdagenClient struct {
	baseURL    string
	client     *http.Client
	delay      time.Duration
	maxRetries uint64
	log        *slog.Logger

	lastRequest time.Time
}

// NewRiksdagenClient creates a client against the given base URL.
// Pass an empty baseURL for the production API.
func NewRiksdagenClient(baseURL string, logger *slog.Logger) *RiksdagenClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RiksdagenClient{
		baseURL:    baseURL,
		client:     &http.Client{Timeout: 30 * time.Second},
		delay:      defaultRequestDelay,
		maxRetries: defaultMaxRetries,
		log:        logger,
	}
}

// FetchDocumentList fetches one page of the document list for a doktyp
// ("sfs", "prop", "sou"), newest first.
func (c *RiksdagenClient) FetchDocumentList(ctx context.Context, doktyp string, page int) (*DocumentList, error) {
	params := url.Values{}
	params.Set("doktyp", doktyp)
	params.Set("sort", "datum")
	params.Set("sortorder", "desc")
	params.Set("utformat", "json")
	params.Set("a", "s")
	params.Set("p", strconv.Itoa(page))

	body, err := c.getJSON(ctx, fmt.Sprintf("%s/dokumentlista/?%s", c.baseURL, params.Encode()))
	if err != nil {
		return nil, helper.NewError("fetch document list", err)
	}

	envelope := struct {
		Dokumentlista DocumentList `json:"dokumentlista"`
	}{}
	err = json.Unmarshal(body, &envelope)
	if err != nil {
		return nil, helper.NewError("unmarshal document list", err)
	}

	return &envelope.Dokumentlista, nil
}

// FetchDocumentStatus fetches the full record of one document.
func (c *RiksdagenClient) FetchDocumentStatus(ctx context.Context, dokID string) (*DocumentStatus, error) {
	body, err := c.getJSON(ctx, fmt.Sprintf("%s/dokumentstatus/%s.json", c.baseURL, url.PathEscape(dokID)))
	if err != nil {
		return nil, helper.NewError("fetch document status", err)
	}

	envelope := struct {
		Dokumentstatus DocumentStatus `json:"dokumentstatus"`
	}{}
	err = json.Unmarshal(body, &envelope)
	if err != nil {
		return nil, helper.NewError("unmarshal document status", err)
	}

	return &envelope.Dokumentstatus, nil
}

// getJSON performs one GET with rate limiting and retry. Responses with
// status 429, 500, 502, 503 or 504 are retried with exponential backoff;
// other non-200 statuses fail immediately.
func (c *RiksdagenClient) getJSON(ctx context.Context, rawURL string) ([]byte, error) {
	c.throttle()

	var body []byte
	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("User-Agent", userAgent)
		req.Header.Set("Accept", "application/json")

		resp, err := c.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		switch resp.StatusCode {
		case http.StatusOK:
		case http.StatusTooManyRequests,
			http.StatusInternalServerError,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout:
			c.log.Warn(fmt.Sprintf("Riksdagen svarade %d, försöker igen", resp.StatusCode), slog.String("url", rawURL))
			return fmt.Errorf("transient status %d", resp.StatusCode)
		default:
			return backoff.Permanent(fmt.Errorf("unexpected status %d", resp.StatusCode))
		}

		body, err = io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		return nil
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), c.maxRetries),
		ctx,
	)
	err := backoff.Retry(operation, policy)
	if err != nil {
		return nil, err
	}

	return body, nil
}

// throttle enforces the courtesy delay between consecutive requests.
func (c *RiksdagenClient) throttle() {
	if !c.lastRequest.IsZero() {
		elapsed := time.Since(c.lastRequest)
		if elapsed < c.delay {
			time.Sleep(c.delay - elapsed)
		}
	}
	c.lastRequest = time.Now()
}
