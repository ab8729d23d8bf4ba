package guard

import (
	"log/slog"
	"regexp"
	"strings"

	"github.com/eliassondavid/paragrafen-ai/config"
)

// minKeywordLength guards against over-matching: two-letter triggers hit
// inside ordinary Swedish words far too often.
const minKeywordLength = 3

var kapSuffixRe = regexp.MustCompile(`_kap\d+$`)

// AreaBlocker refuses queries and statutes that fall in legally
// out-of-scope areas, before any retrieval happens. Areas are evaluated in
// configured order and the first match wins.
type AreaBlocker struct {
	areas    []config.ExcludedArea
	keywords [][]*regexp.Regexp // parallel to areas

	log *slog.Logger
}

// NewAreaBlocker builds a blocker over an already loaded area list.
// Keywords shorter than three letters are dropped with a warning.
func NewAreaBlocker(areas []config.ExcludedArea, logger *slog.Logger) *AreaBlocker {
	if logger == nil {
		logger = slog.Default()
	}

	keywords := make([][]*regexp.Regexp, len(areas))
	for i, area := range areas {
		for _, keyword := range area.Keywords {
			keyword = strings.TrimSpace(keyword)
			if len([]rune(keyword)) < minKeywordLength {
				logger.Warn("Skipping too-short exclusion keyword", "area", area.ID, "keyword", keyword)
				continue
			}
			keywords[i] = append(keywords[i], keywordPattern(keyword))
		}
	}
	return &AreaBlocker{areas: areas, keywords: keywords, log: logger}
}

// NewAreaBlockerFromFile loads the excluded-areas config, falling back to
// the built-in list when the file cannot be used.
func NewAreaBlockerFromFile(path string, logger *slog.Logger) *AreaBlocker {
	return NewAreaBlocker(config.MustLoadExcludedAreas(path, logger), logger)
}

// keywordPattern builds a case-insensitive whole-word matcher. Go's \b is
// ASCII-only and breaks on å/ä/ö, so the boundary is spelled out over
// Unicode letter and digit classes.
func keywordPattern(keyword string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)(?:^|[^\p{L}\p{N}])` + regexp.QuoteMeta(keyword) + `(?:$|[^\p{L}\p{N}])`)
}

// IsBlocked checks a user query against every area's keyword list. It
// returns the matching area's referral message.
func (b *AreaBlocker) IsBlocked(query string) (bool, string) {
	for i, area := range b.areas {
		for _, re := range b.keywords[i] {
			if re.MatchString(query) {
				b.log.Info("Query blocked by excluded area", "area", area.ID)
				return true, area.Message
			}
		}
	}
	return false, ""
}

// IsSfsBlocked checks whether a statute (optionally chapter-scoped, e.g.
// "1949:381_kap6") is itself excluded. A pattern with a chapter suffix
// blocks only that chapter, never the bare statute.
func (b *AreaBlocker) IsSfsBlocked(sfsNr string) (bool, string) {
	base := kapSuffixRe.ReplaceAllString(sfsNr, "")

	for _, area := range b.areas {
		for _, pattern := range area.SfsPatterns {
			if kapSuffixRe.MatchString(pattern) {
				if sfsNr == pattern {
					b.log.Info("Statute chapter blocked by excluded area", "area", area.ID, "sfs_nr", sfsNr)
					return true, area.Message
				}
				continue
			}
			if base == pattern {
				b.log.Info("Statute blocked by excluded area", "area", area.ID, "sfs_nr", sfsNr)
				return true, area.Message
			}
		}
	}
	return false, ""
}
