package pipeline

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/eliassondavid/paragrafen-ai/model"
)

// Namespaces are the idempotency keys of the whole index: the same input
// document must always chunk to the same namespaces, so re-ingestion
// overwrites instead of duplicating.

var (
	beteckningNrRe = regexp.MustCompile(`(\d{4})\s*:\s*(\d+)`)
	nonAlnumRe     = regexp.MustCompile(`[^A-Za-z0-9]+`)
	nonSlugRe      = regexp.MustCompile(`[^a-z0-9]+`)
)

// SfsNamespace builds the namespace for one statute chunk, for example
// "sfs::1962:700_8kap_1§_chunk_000". Sequential or chapterless statutes
// use "0kap".
func SfsNamespace(sfsNr string, kapitel string, paragraf string, numbering model.NumberingType, chunkIdx int) string {
	kapStr := "0kap"
	if numbering == model.NumberingRelative && kapitel != "" {
		kapStr = kapitel + "kap"
	}
	paragraf = strings.ReplaceAll(paragraf, " ", "")
	return fmt.Sprintf("sfs::%s_%s_%s§_chunk_%03d", sfsNr, kapStr, paragraf, chunkIdx)
}

// ForarbeteNamespace builds the namespace for one preparatory-works chunk,
// for example "forarbete::SOU_2020_035_sammanfattning_chunk_004".
func ForarbeteNamespace(beteckning string, sectionTitle string, chunkIdx int) string {
	return fmt.Sprintf("forarbete::%s_%s_chunk_%03d",
		NormalizeBeteckning(beteckning), sectionSlug(sectionTitle), chunkIdx)
}

// NormalizeBeteckning turns a document designation into a stable namespace
// component: "SOU 2020:35" becomes "SOU_2020_035". Designations without a
// year:number pair are sanitized verbatim.
func NormalizeBeteckning(beteckning string) string {
	if m := beteckningNrRe.FindStringSubmatch(beteckning); m != nil {
		year, _ := strconv.Atoi(m[1])
		number, _ := strconv.Atoi(m[2])
		prefix := strings.TrimSpace(beteckning[:strings.Index(beteckning, m[0])])
		prefix = strings.Trim(nonAlnumRe.ReplaceAllString(prefix, "_"), "_")
		if prefix == "" {
			prefix = "DOK"
		}
		return fmt.Sprintf("%s_%d_%03d", prefix, year, number)
	}
	sanitized := strings.Trim(nonAlnumRe.ReplaceAllString(beteckning, "_"), "_")
	if sanitized == "" {
		return "DOK_OKAND"
	}
	return sanitized
}

// sectionSlug lowercases and asciifies a section title. Slugs starting with
// a digit get an "avsnitt_" prefix so namespaces stay readable.
func sectionSlug(sectionTitle string) string {
	lowered := strings.ToLower(sectionTitle)
	replacer := strings.NewReplacer("å", "a", "ä", "a", "ö", "o", "é", "e")
	lowered = replacer.Replace(lowered)
	slug := strings.Trim(nonSlugRe.ReplaceAllString(lowered, "_"), "_")
	if slug == "" {
		return "avsnitt_okand"
	}
	if slug[0] >= '0' && slug[0] <= '9' {
		return "avsnitt_" + slug
	}
	return slug
}
