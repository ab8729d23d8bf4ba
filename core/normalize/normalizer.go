package normalize

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/eliassondavid/paragrafen-ai/config"
	"github.com/eliassondavid/paragrafen-ai/model"
)

// Grundlagar are classified by SFS number, never by title pattern.
var grundlagar = map[string]bool{
	"1974:152":  true, // regeringsformen
	"1974:713":  true, // riksdagsordningen (äldre)
	"1949:105":  true, // tryckfrihetsförordningen
	"1991:1469": true, // yttrandefrihetsgrundlagen
}

// Title patterns deciding norm type, checked in order.
var normTypePatterns = []struct {
	re       *regexp.Regexp
	normType model.NormType
}{
	{regexp.MustCompile(`(?i)\bförordning\b`), model.NormTypeForordning},
	{regexp.MustCompile(`(?i)\bkungörelse\b`), model.NormTypeForordning},
	{regexp.MustCompile(`(?i)\bföreskrift\b`), model.NormTypeForeskrift},
	{regexp.MustCompile(`(?i)\bstadga\b`), model.NormTypeForeskrift},
	{regexp.MustCompile(`(?i)\bbalk\b`), model.NormTypeLag},
	{regexp.MustCompile(`(?i)\blag\b`), model.NormTypeLag},
}

var sfsNamespaceRe = regexp.MustCompile(`^sfs::\d{4}:\d+_\d+kap_[\w§-]+_chunk_\d{3}$`)

// SourceInfo is the document-level metadata from the Riksdagen API that the
// normalizer enriches chunks with.
type SourceInfo struct {
	SfsNr       string
	Rubrik      string
	Departement string
}

// Normalizer populates harmonized metadata (norm type, legal area,
// kortnamn) on chunks and validates them before indexing. A chunk that
// fails validation is rejected alone; its siblings continue.
type Normalizer struct {
	priorityMap   map[string]config.PriorityEntry
	departmentMap map[string][]string
	validAreas    map[string]bool
	aliasToArea   map[string]string

	log *slog.Logger
}

// NewNormalizer builds a normalizer from the three configuration surfaces.
// Nil maps mean the built-in defaults.
func NewNormalizer(
	priorityMap map[string]config.PriorityEntry,
	departmentMap map[string][]string,
	areas []config.LegalArea,
	logger *slog.Logger,
) *Normalizer {
	if priorityMap == nil {
		priorityMap = config.DefaultPriorityMapping()
	}
	if departmentMap == nil {
		departmentMap = config.DefaultDepartmentAreaMapping()
	}
	if areas == nil {
		areas = config.DefaultLegalAreas()
	}
	if logger == nil {
		logger = slog.Default()
	}

	validAreas := map[string]bool{}
	aliasToArea := map[string]string{}
	for _, area := range areas {
		validAreas[area.ID] = true
		aliasToArea[strings.ToLower(area.ID)] = area.ID
		for _, alias := range area.Aliases {
			aliasToArea[strings.ToLower(alias)] = area.ID
		}
	}

	return &Normalizer{
		priorityMap:   priorityMap,
		departmentMap: departmentMap,
		validAreas:    validAreas,
		aliasToArea:   aliasToArea,
		log:           logger,
	}
}

// ClassifyNormType decides a statute's constitutional rank from its SFS
// number and title.
func (n *Normalizer) ClassifyNormType(sfsNr string, rubrik string) model.NormType {
	if grundlagar[sfsNr] {
		return model.NormTypeGrundlag
	}
	for _, p := range normTypePatterns {
		if p.re.MatchString(rubrik) {
			return p.normType
		}
	}
	return model.NormTypeLag
}

// ClassifyLegalArea returns the legal areas for a statute and the
// confidence of the classification. Manual mappings outrank the department
// layer, which outranks the fixed fallback.
func (n *Normalizer) ClassifyLegalArea(sfsNr string, departement string) ([]string, string) {
	if entry, ok := n.priorityMap[sfsNr]; ok {
		var valid []string
		for _, area := range entry.LegalArea {
			if n.validAreas[area] {
				valid = append(valid, area)
			}
		}
		if len(valid) > 0 {
			return valid, "manual"
		}
	}

	deptLower := strings.ToLower(departement)
	for deptKey, areas := range n.departmentMap {
		if !strings.Contains(deptLower, strings.ToLower(deptKey)) {
			continue
		}
		var valid []string
		for _, area := range areas {
			if n.validAreas[area] {
				valid = append(valid, area)
			}
		}
		if len(valid) > 0 {
			return valid, "department"
		}
	}

	return []string{"offentlig rätt"}, "department"
}

// Kortnamn returns the curated short name for a statute, or empty.
func (n *Normalizer) Kortnamn(sfsNr string) string {
	if entry, ok := n.priorityMap[sfsNr]; ok {
		return entry.Kortnamn
	}
	return ""
}

// NumberingOverrides returns the verified numbering types from the manual
// mapping, for the numbering detector.
func (n *Normalizer) NumberingOverrides() map[string]model.NumberingType {
	overrides := map[string]model.NumberingType{}
	for sfsNr, entry := range n.priorityMap {
		if entry.NumberingTypeVerified && entry.NumberingType != "" {
			overrides[sfsNr] = model.NumberingType(entry.NumberingType)
		}
	}
	return overrides
}

// NormalizeLegalAreas maps raw area values through the alias table,
// de-duplicated. Unknown values are kept but warned about; empty input
// becomes "okänt".
func (n *Normalizer) NormalizeLegalAreas(raw []string) []string {
	var normalized []string
	seen := map[string]bool{}
	for _, value := range raw {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		areaID, ok := n.aliasToArea[strings.ToLower(value)]
		if !ok {
			areaID = value
			n.log.Warn("Legal area not in taxonomy", "legal_area", value)
		}
		if !seen[areaID] {
			seen[areaID] = true
			normalized = append(normalized, areaID)
		}
	}
	if len(normalized) == 0 {
		return []string{"okänt"}
	}
	return normalized
}

// NormalizeChunks enriches and validates the chunks of one statute.
// Returns the accepted chunks and one error string per rejected chunk
// field problem.
func (n *Normalizer) NormalizeChunks(chunks []model.Chunk, info SourceInfo) ([]model.Chunk, []string) {
	normType := n.ClassifyNormType(info.SfsNr, info.Rubrik)
	legalArea, confidence := n.ClassifyLegalArea(info.SfsNr, info.Departement)
	kortnamn := n.Kortnamn(info.SfsNr)

	var errors []string
	normalized := make([]model.Chunk, 0, len(chunks))

	for _, chunk := range chunks {
		chunk.NormType = normType
		chunk.LegalArea = legalArea
		chunk.LegalAreaConfidence = confidence
		if kortnamn != "" {
			chunk.Kortnamn = kortnamn
		}

		if chunkErrors := ValidateChunk(chunk); len(chunkErrors) > 0 {
			errors = append(errors, chunkErrors...)
			continue
		}
		normalized = append(normalized, chunk)
	}

	return normalized, errors
}

// ValidateChunk checks the persisted chunk schema. An empty result means
// the chunk may be indexed.
func ValidateChunk(chunk model.Chunk) []string {
	var errors []string

	required := []struct {
		field string
		value string
	}{
		{"namespace", chunk.Namespace},
		{"source_id", chunk.SourceID},
		{"source_type", string(chunk.SourceType)},
		{"authority_level", string(chunk.AuthorityLevel)},
		{"text", chunk.Text},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			errors = append(errors, fmt.Sprintf("Saknar obligatoriskt fält: %s i %s", r.field, namespaceOrPlaceholder(chunk)))
		}
	}
	if chunk.ChunkTotal < 1 {
		errors = append(errors, fmt.Sprintf("Ogiltig chunk_total i %s", namespaceOrPlaceholder(chunk)))
	}

	switch chunk.SourceType {
	case model.SourceTypeSfs:
		if chunk.SfsNr == "" {
			errors = append(errors, fmt.Sprintf("Saknar obligatoriskt fält: sfs_nr i %s", namespaceOrPlaceholder(chunk)))
		}
		if chunk.Rubrik == "" {
			errors = append(errors, fmt.Sprintf("Saknar obligatoriskt fält: rubrik i %s", namespaceOrPlaceholder(chunk)))
		}
		if chunk.NormType == "" {
			errors = append(errors, fmt.Sprintf("Saknar obligatoriskt fält: norm_type i %s", namespaceOrPlaceholder(chunk)))
		}
		if chunk.NumberingType == "" {
			errors = append(errors, fmt.Sprintf("Saknar obligatoriskt fält: numbering_type i %s", namespaceOrPlaceholder(chunk)))
		}
		if chunk.Namespace != "" && !sfsNamespaceRe.MatchString(chunk.Namespace) {
			errors = append(errors, fmt.Sprintf("Ogiltigt namespace-format: %s", chunk.Namespace))
		}
	case model.SourceTypeForarbete:
		if chunk.Beteckning == "" {
			errors = append(errors, fmt.Sprintf("Saknar obligatoriskt fält: beteckning i %s", namespaceOrPlaceholder(chunk)))
		}
		if chunk.Namespace != "" && !strings.HasPrefix(chunk.Namespace, "forarbete::") {
			errors = append(errors, fmt.Sprintf("Ogiltigt namespace-format: %s", chunk.Namespace))
		}
	}

	return errors
}

func namespaceOrPlaceholder(chunk model.Chunk) string {
	if chunk.Namespace == "" {
		return "?"
	}
	return chunk.Namespace
}
