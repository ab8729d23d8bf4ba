package rag

import (
	"fmt"
	"strings"

	"github.com/eliassondavid/paragrafen-ai/model"
)

// SourceRef builds the human-readable citation for one chunk, per source
// type. Statutes are pinpointed to chapter and paragraph where known.
func SourceRef(chunk model.Chunk) string {
	switch chunk.SourceType {
	case model.SourceTypeSfs:
		switch {
		case chunk.Kapitel != "" && chunk.Paragraf != "":
			return fmt.Sprintf("SFS %s %s kap. %s §", chunk.SfsNr, chunk.Kapitel, chunk.Paragraf)
		case chunk.Paragraf != "":
			return fmt.Sprintf("SFS %s %s §", chunk.SfsNr, chunk.Paragraf)
		default:
			return "SFS " + chunk.SfsNr
		}
	case model.SourceTypePraxis, model.SourceTypeDoktrin:
		if chunk.Citation != "" {
			return chunk.Citation
		}
	case model.SourceTypeForarbete:
		if chunk.Beteckning != "" {
			return chunk.Beteckning
		}
	}
	return chunk.Namespace
}

// SourceRefs collects the distinct citations of a result set, first
// occurrence order preserved.
func SourceRefs(chunks []model.RetrievedChunk) []string {
	var refs []string
	seen := map[string]bool{}
	for _, chunk := range chunks {
		ref := SourceRef(chunk.Chunk)
		if ref == "" || seen[ref] {
			continue
		}
		seen[ref] = true
		refs = append(refs, ref)
	}
	return refs
}

// BuildContext renders the retrieved chunks as the numbered source list
// the LLM prompt is built from.
func BuildContext(chunks []model.RetrievedChunk) string {
	parts := make([]string, 0, len(chunks))
	for i, chunk := range chunks {
		ref := SourceRef(chunk.Chunk)
		if ref == "" {
			ref = fmt.Sprintf("källa %d", i+1)
		}
		parts = append(parts, fmt.Sprintf("[%d] %s\n%s", i+1, ref, strings.TrimSpace(chunk.Text)))
	}
	return strings.Join(parts, "\n\n")
}
