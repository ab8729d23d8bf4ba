package parse

import (
	"log/slog"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/eliassondavid/paragrafen-ai/model"
)

// SfsParser converts one raw Riksdagen HTML document into an ordered list of
// parsed paragraphs. It never fails on malformed HTML: strategies are tried
// in order and a document that defeats all of them simply yields zero
// paragraphs, which the caller skips.
//
// Three document shapes occur in the corpus:
//  1. <h3 name="K{n}"> chapter headings with K{n}P{m} paragraph anchors
//  2. the same anchors but globally numbered paragraphs
//  3. no chapters at all, bare P{n} anchors or plain "N §" markers
type SfsParser struct {
	Detector *Detector

	log        *slog.Logger
	strategies []sfsStrategy
}

// NewSfsParser creates an SFS parser using the given numbering detector.
func NewSfsParser(detector *Detector, logger *slog.Logger) *SfsParser {
	if logger == nil {
		logger = slog.Default()
	}
	return &SfsParser{
		Detector: detector,
		log:      logger,
		strategies: []sfsStrategy{
			anchorStrategy{},
			markerStrategy{},
			blockStrategy{},
		},
	}
}

// rawParagraph is the uniform intermediate every strategy produces, before
// classification and reference extraction.
type rawParagraph struct {
	kapitel       string
	kapitelrubrik string
	paragraf      string
	stycken       []string
	hasTable      bool
}

// sfsStrategy is one isolated detection strategy. Strategies are tried in
// order; the first one returning a non-empty list wins.
type sfsStrategy interface {
	Name() string
	Extract(htmlText string) []rawParagraph
}

var (
	paraAnchorRe     = regexp.MustCompile(`(?i)<a[^>]+name="K(\d+)P(\d+)"[^>]*>`)
	bareAnchorRe     = regexp.MustCompile(`(?i)<a[^>]+name="P(\d+)"[^>]*>`)
	chapterHeadingRe = regexp.MustCompile(`(?is)<h3[^>]*\bname="K(\d+)"[^>]*>(.*?)</h3>`)

	paraMarkerRe     = regexp.MustCompile(`^(\d+\s*[a-z]?)\s*§\s*`)
	paraMarkerLineRe = regexp.MustCompile(`(?m)^(\d+\s*[a-z]?)\s*§\s*`)
	kapLineRe        = regexp.MustCompile(`(?im)^(\d+)\s*kap\.?\s*(.*)$`)

	sfsNumberRe = regexp.MustCompile(`\b(\d{4}:\d+)\b`)
)

// Swedish statutes open definition paragraphs with a small set of fixed
// phrases. Matched case-insensitively against the first part of the text.
var definitionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^i\s+denna\s+(lag|förordning|balk|stadga|föreskrift)`),
	regexp.MustCompile(`(?i)^med\s+\S+\s+avses\s+i\s+denna`),
	regexp.MustCompile(`(?i)^i\s+detta\s+kapitel\s+avses\s+med`),
	regexp.MustCompile(`(?i)^följande\s+ord\s+och\s+uttryck\s+har`),
	regexp.MustCompile(`(?i)^beteckningarna?\s+i\s+denna`),
	regexp.MustCompile(`(?i)^i\s+denna\s+lag\s+används?\s+följande\s+begrepp`),
}

var overgangsRe = regexp.MustCompile(`(?i)(övergångsbestämmelse|ikraftträdande|tillämpas?\s+första\s+gången)`)

// Parse converts one HTML document into parsed paragraphs. The returned
// slice is empty when no strategy could extract anything.
func (p *SfsParser) Parse(htmlText string, sfsNr string) []model.ParsedParagraph {
	if strings.TrimSpace(htmlText) == "" {
		return nil
	}

	chapters := collectChapterAnchors(htmlText)
	numbering := p.Detector.DetectFor(sfsNr, chapters)
	hasKapitel := len(chapters) > 0 && numbering == model.NumberingRelative

	var raw []rawParagraph
	for _, strat := range p.strategies {
		raw = strat.Extract(htmlText)
		if len(raw) > 0 {
			p.log.Debug("SFS parse strategy selected",
				"sfs_nr", sfsNr, "strategy", strat.Name(), "paragraphs", len(raw))
			break
		}
	}
	if len(raw) == 0 {
		p.log.Warn("No paragraphs extracted from document", "sfs_nr", sfsNr)
		return nil
	}

	paragraphs := make([]model.ParsedParagraph, 0, len(raw))
	for _, rp := range raw {
		text := strings.TrimSpace(strings.Join(rp.stycken, "\n"))
		if text == "" {
			continue
		}

		kapitel := rp.kapitel
		if numbering == model.NumberingSequential {
			kapitel = ""
		}

		paragraphs = append(paragraphs, model.ParsedParagraph{
			Kapitel:       kapitel,
			Kapitelrubrik: rp.kapitelrubrik,
			Paragraf:      rp.paragraf,
			Stycken:       rp.stycken,
			Text:          text,
			IsDefinition:  isDefinitionParagraph(text),
			IsOvergangs:   isOvergangsbestammelse(text),
			HasTable:      rp.hasTable,
			ReferencesTo:  ExtractReferences(text),
			NumberingType: numbering,
			HasKapitel:    hasKapitel,
		})
	}

	return paragraphs
}

// collectChapterAnchors builds the chapter-to-paragraph-numbers mapping the
// numbering detector works on, using only K{n}P{m} anchors.
func collectChapterAnchors(htmlText string) map[int][]int {
	chapters := map[int][]int{}
	for _, m := range paraAnchorRe.FindAllStringSubmatch(htmlText, -1) {
		k, err1 := strconv.Atoi(m[1])
		p, err2 := strconv.Atoi(m[2])
		if err1 != nil || err2 != nil {
			continue
		}
		chapters[k] = append(chapters[k], p)
	}
	return chapters
}

// isDefinitionParagraph checks the introductory phrase patterns against the
// first 500 characters.
func isDefinitionParagraph(text string) bool {
	head := firstRunes(text, 500)
	for _, re := range definitionPatterns {
		if re.MatchString(head) {
			return true
		}
	}
	return false
}

// isOvergangsbestammelse checks transition-provision keywords against the
// first 300 characters.
func isOvergangsbestammelse(text string) bool {
	return overgangsRe.MatchString(firstRunes(text, 300))
}

// ExtractReferences collects outgoing SFS-number citations from running
// text, de-duplicated by target.
func ExtractReferences(text string) []model.Reference {
	var refs []model.Reference
	seen := map[string]bool{}
	for _, m := range sfsNumberRe.FindAllStringSubmatch(text, -1) {
		target := "sfs::" + m[1]
		if seen[target] {
			continue
		}
		seen[target] = true
		refs = append(refs, model.Reference{Target: target, RelationType: "cites"})
	}
	return refs
}

func firstRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) > n {
		return string(runes[:n])
	}
	return s
}

// ---------------------------------------------------------------------------
// Strategy 1: heading/anchor structure
// ---------------------------------------------------------------------------

type anchorStrategy struct{}

func (anchorStrategy) Name() string { return "anchors" }

// docMarker is one structural position in the raw HTML: either a chapter
// heading or a paragraph anchor.
type docMarker struct {
	pos     int
	end     int
	kapitel string // set for chapter headings
	rubrik  string
	isPara  bool
	paraKap string // chapter part of a K{n}P{m} anchor, "" for bare P{n}
}

func (anchorStrategy) Extract(htmlText string) []rawParagraph {
	var markers []docMarker

	for _, idx := range chapterHeadingRe.FindAllStringSubmatchIndex(htmlText, -1) {
		kap := htmlText[idx[2]:idx[3]]
		title := inlineText(htmlText[idx[4]:idx[5]])
		markers = append(markers, docMarker{pos: idx[0], end: idx[1], kapitel: kap, rubrik: title})
	}
	for _, idx := range paraAnchorRe.FindAllStringSubmatchIndex(htmlText, -1) {
		markers = append(markers, docMarker{pos: idx[0], end: idx[1], isPara: true, paraKap: htmlText[idx[2]:idx[3]]})
	}
	for _, idx := range bareAnchorRe.FindAllStringSubmatchIndex(htmlText, -1) {
		markers = append(markers, docMarker{pos: idx[0], end: idx[1], isPara: true})
	}

	if len(markers) == 0 {
		return nil
	}
	sort.Slice(markers, func(i, j int) bool { return markers[i].pos < markers[j].pos })

	var out []rawParagraph
	currentKap := ""
	currentRubrik := ""

	for i, m := range markers {
		if !m.isPara {
			currentKap = m.kapitel
			currentRubrik = m.rubrik
			continue
		}

		segmentEnd := len(htmlText)
		if i+1 < len(markers) {
			segmentEnd = markers[i+1].pos
		}
		segment := htmlText[m.end:segmentEnd]

		kap := m.paraKap
		if kap == "" {
			kap = currentKap
		}

		rp := extractSegment(segment, kap, currentRubrik)
		if rp != nil {
			out = append(out, *rp)
		}
	}
	return out
}

// extractSegment turns the HTML between two anchors into one raw paragraph.
// Tables are flattened in place before tag stripping.
func extractSegment(segment string, kapitel string, kapitelrubrik string) *rawParagraph {
	hasTable := false
	segment = tableRe.ReplaceAllStringFunc(segment, func(t string) string {
		hasTable = true
		return "\n\n" + flattenTable(t) + "\n\n"
	})

	text := visibleText(segment)
	if text == "" {
		return nil
	}

	paragraf := ""
	if m := paraMarkerRe.FindStringSubmatch(text); m != nil {
		paragraf = strings.ReplaceAll(m[1], " ", "")
		text = strings.TrimSpace(text[len(m[0]):])
	}
	if text == "" {
		return nil
	}

	var stycken []string
	for _, block := range blankLineRe.Split(text, -1) {
		block = strings.TrimSpace(block)
		if block != "" {
			stycken = append(stycken, block)
		}
	}

	return &rawParagraph{
		kapitel:       kapitel,
		kapitelrubrik: kapitelrubrik,
		paragraf:      paragraf,
		stycken:       stycken,
		hasTable:      hasTable,
	}
}

// ---------------------------------------------------------------------------
// Strategy 2: paragraph markers over visible text
// ---------------------------------------------------------------------------

type markerStrategy struct{}

func (markerStrategy) Name() string { return "markers" }

func (markerStrategy) Extract(htmlText string) []rawParagraph {
	hasTableGlobal := tableRe.MatchString(htmlText)
	text := visibleText(tableRe.ReplaceAllStringFunc(htmlText, func(t string) string {
		return "\n\n" + flattenTable(t) + "\n\n"
	}))
	if text == "" {
		return nil
	}

	matches := paraMarkerLineRe.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return nil
	}

	var out []rawParagraph
	kapitel := ""
	kapitelrubrik := ""
	if km := kapLineRe.FindStringSubmatch(text[:matches[0][0]]); km != nil {
		kapitel = km[1]
		kapitelrubrik = strings.TrimSpace(km[2])
	}
	for i, idx := range matches {
		label := strings.ReplaceAll(strings.TrimSpace(text[idx[2]:idx[3]]), " ", "")

		bodyStart := idx[1]
		bodyEnd := len(text)
		if i+1 < len(matches) {
			bodyEnd = matches[i+1][0]
		}
		body := text[bodyStart:bodyEnd]

		// A chapter heading between markers opens a new chapter that holds
		// until the next heading; one inside the body belongs to the next
		// paragraph.
		if i > 0 {
			prevBodyStart := matches[i-1][1]
			if km := kapLineRe.FindStringSubmatch(text[prevBodyStart:idx[0]]); km != nil {
				kapitel = km[1]
				kapitelrubrik = strings.TrimSpace(km[2])
			}
		}
		if km := kapLineRe.FindStringSubmatch(body); km != nil {
			body = body[:strings.Index(body, km[0])]
		}

		var stycken []string
		for _, block := range blankLineRe.Split(strings.TrimSpace(body), -1) {
			block = strings.TrimSpace(block)
			if block != "" {
				stycken = append(stycken, block)
			}
		}
		if len(stycken) == 0 {
			continue
		}

		out = append(out, rawParagraph{
			kapitel:       kapitel,
			kapitelrubrik: kapitelrubrik,
			paragraf:      label,
			stycken:       stycken,
			hasTable:      hasTableGlobal,
		})
	}
	return out
}

// ---------------------------------------------------------------------------
// Strategy 3: blank-line blocks, unlabeled
// ---------------------------------------------------------------------------

type blockStrategy struct{}

func (blockStrategy) Name() string { return "blocks" }

func (blockStrategy) Extract(htmlText string) []rawParagraph {
	text := visibleText(htmlText)
	if text == "" {
		return nil
	}

	var out []rawParagraph
	for _, block := range blankLineRe.Split(text, -1) {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}
		out = append(out, rawParagraph{stycken: []string{block}})
	}
	return out
}
