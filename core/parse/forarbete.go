package parse

import (
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/eliassondavid/paragrafen-ai/model"
)

// ForarbeteParser extracts titled sections from preparatory-works HTML
// (propositions and SOU reports). Like the SFS parser it degrades through
// strategies instead of failing: heading structure first, then standalone
// paragraph tags, then blank-line blocks over the visible text.
type ForarbeteParser struct {
	log *slog.Logger
}

// NewForarbeteParser creates a preparatory-works parser.
func NewForarbeteParser(logger *slog.Logger) *ForarbeteParser {
	if logger == nil {
		logger = slog.Default()
	}
	return &ForarbeteParser{log: logger}
}

var (
	commentPageRe = regexp.MustCompile(`(?i)<!--\s*Page\s+(\d+)\s*-->`)
	pageSpanRe    = regexp.MustCompile(`(?is)<span[^>]*class=['"]?page['"]?[^>]*>\s*(\d+)\s*</span>`)
	pageWordRe    = regexp.MustCompile(`(?i)\bPage\s+(\d+)\b`)
	headerTagRe   = regexp.MustCompile(`(?is)<h[1-3][^>]*>(.*?)</h[1-3]>`)
	paraTagRe     = regexp.MustCompile(`(?is)<(?:p|li)[^>]*>(.*?)</(?:p|li)>`)

	// Navigation chrome carries no legal content and pollutes the raw
	// fallback, so it is cut before any strategy runs.
	chromeRe = regexp.MustCompile(`(?is)<(\w+)[^>]*class="[^"]*\b(?:nav|header|footer|breadcrumb|sidebar)\b[^"]*"[^>]*>.*?</\w+>`)
)

// Parse extracts sections from one document. The returned slice is empty
// when no strategy found anything.
func (p *ForarbeteParser) Parse(htmlText string, beteckning string) []model.ParsedSection {
	if strings.TrimSpace(htmlText) == "" {
		return nil
	}
	htmlText = scriptStyleRe.ReplaceAllString(htmlText, " ")
	htmlText = chromeRe.ReplaceAllString(htmlText, " ")

	for _, strat := range []struct {
		name    string
		extract func(string) []model.ParsedSection
	}{
		{"headers", extractHeaderSections},
		{"paragraphs", extractParagraphSections},
		{"raw", extractRawSections},
	} {
		sections := strat.extract(htmlText)
		if len(sections) > 0 {
			p.log.Info("Parser-strategi vald", "beteckning", beteckning, "strategy", strat.name, "sections", len(sections))
			return sections
		}
	}

	p.log.Error("Kunde inte extrahera avsnitt", "beteckning", beteckning)
	return nil
}

// sectionMarker is one structural position: a heading, a content paragraph,
// or a page indicator.
type sectionMarker struct {
	pos  int
	kind int // 0 page, 1 header, 2 paragraph
	text string
	page int
}

func collectSectionMarkers(htmlText string) []sectionMarker {
	var markers []sectionMarker

	for _, re := range []*regexp.Regexp{commentPageRe, pageSpanRe} {
		for _, idx := range re.FindAllStringSubmatchIndex(htmlText, -1) {
			page, err := strconv.Atoi(htmlText[idx[2]:idx[3]])
			if err != nil {
				continue
			}
			markers = append(markers, sectionMarker{pos: idx[0], kind: 0, page: page})
		}
	}
	for _, idx := range headerTagRe.FindAllStringSubmatchIndex(htmlText, -1) {
		markers = append(markers, sectionMarker{pos: idx[0], kind: 1, text: inlineText(htmlText[idx[2]:idx[3]])})
	}
	for _, idx := range paraTagRe.FindAllStringSubmatchIndex(htmlText, -1) {
		markers = append(markers, sectionMarker{pos: idx[0], kind: 2, text: inlineText(htmlText[idx[2]:idx[3]])})
	}

	sort.Slice(markers, func(i, j int) bool { return markers[i].pos < markers[j].pos })
	return markers
}

func extractHeaderSections(htmlText string) []model.ParsedSection {
	markers := collectSectionMarkers(htmlText)

	var sections []model.ParsedSection
	var current *model.ParsedSection
	var currentPage *int

	flush := func() {
		if current != nil && len(current.Paragraphs) > 0 {
			sections = append(sections, *current)
		}
	}

	for _, m := range markers {
		switch m.kind {
		case 0:
			page := m.page
			currentPage = &page
		case 1:
			if m.text == "" {
				continue
			}
			flush()
			current = &model.ParsedSection{Title: m.text, Page: currentPage}
		case 2:
			if current == nil || m.text == "" {
				continue
			}
			current.Paragraphs = append(current.Paragraphs, m.text)
			if current.Page == nil && currentPage != nil {
				current.Page = currentPage
			}
		}
	}
	flush()
	return sections
}

func extractParagraphSections(htmlText string) []model.ParsedSection {
	markers := collectSectionMarkers(htmlText)

	var sections []model.ParsedSection
	var currentPage *int

	for _, m := range markers {
		switch m.kind {
		case 0:
			page := m.page
			currentPage = &page
		case 2:
			if m.text == "" {
				continue
			}
			title := m.text
			if len([]rune(title)) > 60 {
				title = strings.TrimRight(string([]rune(title)[:60]), " ") + "..."
			}
			sections = append(sections, model.ParsedSection{
				Title:      title,
				Paragraphs: []string{m.text},
				Page:       currentPage,
			})
		}
	}
	return sections
}

func extractRawSections(htmlText string) []model.ParsedSection {
	text := visibleText(htmlText)
	if text == "" {
		return nil
	}

	firstPage := extractPageFromText(htmlText)

	var sections []model.ParsedSection
	for _, block := range blankLineRe.Split(text, -1) {
		block = strings.TrimSpace(spaceRunRe.ReplaceAllString(strings.ReplaceAll(block, "\n", " "), " "))
		if block == "" {
			continue
		}
		sections = append(sections, model.ParsedSection{
			Title:      fmt.Sprintf("Avsnitt %d", len(sections)+1),
			Paragraphs: []string{block},
			Page:       firstPage,
		})
	}
	return sections
}

// extractPageFromText finds the first page indicator in raw text.
func extractPageFromText(text string) *int {
	for _, re := range []*regexp.Regexp{commentPageRe, pageSpanRe, pageWordRe} {
		if m := re.FindStringSubmatch(text); m != nil {
			if page, err := strconv.Atoi(m[1]); err == nil {
				return &page
			}
		}
	}
	return nil
}
