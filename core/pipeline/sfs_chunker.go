package pipeline

import (
	"log/slog"
	"strconv"
	"strings"

	"github.com/eliassondavid/paragrafen-ai/model"
)

// Default token bounds for statute chunks.
const (
	DefaultMinChunkTokens = 100
	DefaultMaxChunkTokens = 800
)

// SfsMeta carries document-level metadata shared by every chunk of one
// statute.
type SfsMeta struct {
	SourceID            string
	Rubrik              string
	Kortnamn            string
	NormType            model.NormType
	LegalArea           []string
	LegalAreaConfidence string
}

// SfsChunker turns parsed statute paragraphs into indexable chunks.
//
// Rules:
//   - MinTokens to MaxTokens: one chunk per paragraph.
//   - Below MinTokens: merge forward with following paragraphs of the same
//     chapter, labelled "first-last". Merging never crosses a definition or
//     transition provision and never exceeds MaxTokens.
//   - Above MaxTokens: split on stycke boundaries, packing stycken until
//     the limit.
//   - Definition paragraphs and transition provisions always stand alone.
type SfsChunker struct {
	MinTokens int
	MaxTokens int

	log *slog.Logger
}

// NewSfsChunker creates a statute chunker. Non-positive bounds fall back to
// the defaults.
func NewSfsChunker(minTokens int, maxTokens int, logger *slog.Logger) *SfsChunker {
	if minTokens <= 0 {
		minTokens = DefaultMinChunkTokens
	}
	if maxTokens <= 0 {
		maxTokens = DefaultMaxChunkTokens
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SfsChunker{MinTokens: minTokens, MaxTokens: maxTokens, log: logger}
}

// Chunk converts the ordered paragraphs of one statute into chunks.
func (c *SfsChunker) Chunk(sfsNr string, paragraphs []model.ParsedParagraph, meta SfsMeta) []model.Chunk {
	var chunks []model.Chunk

	i := 0
	for i < len(paragraphs) {
		para := paragraphs[i]
		text := strings.TrimSpace(para.Text)
		tokens := EstimateTokens(text)

		if para.IsDefinition {
			chunks = append(chunks, c.makeChunk(sfsNr, para, text, "", meta, 0, 1))
			i++
			continue
		}

		if tokens < c.MinTokens && !para.IsOvergangs {
			mergedText := text
			j := i + 1
			for j < len(paragraphs) && EstimateTokens(mergedText) < c.MinTokens {
				next := paragraphs[j]
				nextText := strings.TrimSpace(next.Text)
				wouldBe := EstimateTokens(mergedText + "\n\n" + nextText)
				if next.Kapitel != para.Kapitel || next.IsDefinition || next.IsOvergangs || wouldBe > c.MaxTokens {
					break
				}
				mergedText += "\n\n" + nextText
				j++
			}

			if j > i+1 {
				chunk := c.makeChunk(sfsNr, para, mergedText, "", meta, 0, 1)
				chunk.Paragraf = para.Paragraf + "-" + paragraphs[j-1].Paragraf
				chunk.Namespace = SfsNamespace(sfsNr, para.Kapitel, chunk.Paragraf, para.NumberingType, 0)
				chunks = append(chunks, chunk)
				i = j
				continue
			}
		}

		if tokens <= c.MaxTokens {
			chunks = append(chunks, c.makeChunk(sfsNr, para, text, "", meta, 0, 1))
			i++
			continue
		}

		chunks = append(chunks, c.splitOversized(sfsNr, para, text, meta)...)
		i++
	}

	return chunks
}

// splitOversized packs stycken into sub-chunks up to MaxTokens each.
func (c *SfsChunker) splitOversized(sfsNr string, para model.ParsedParagraph, text string, meta SfsMeta) []model.Chunk {
	stycken := para.Stycken
	if len(stycken) == 0 {
		stycken = []string{text}
	}

	var subTexts []string
	var currentParts []string
	currentTokens := 0

	for _, stycke := range stycken {
		stTokens := EstimateTokens(stycke)
		if currentTokens+stTokens > c.MaxTokens && len(currentParts) > 0 {
			subTexts = append(subTexts, strings.Join(currentParts, "\n"))
			currentParts = nil
			currentTokens = 0
		}
		currentParts = append(currentParts, stycke)
		currentTokens += stTokens
	}
	if len(currentParts) > 0 {
		subTexts = append(subTexts, strings.Join(currentParts, "\n"))
	}

	total := len(subTexts)
	if total > 1 {
		c.log.Debug("Paragraph split on stycke boundaries",
			"sfs_nr", sfsNr, "paragraf", para.Paragraf, "sub_chunks", total)
	}

	chunks := make([]model.Chunk, 0, total)
	for idx, subText := range subTexts {
		styckeNr := ""
		if total > 1 {
			styckeNr = strconv.Itoa(idx + 1)
		}
		chunks = append(chunks, c.makeChunk(sfsNr, para, subText, styckeNr, meta, idx, total))
	}
	return chunks
}

func (c *SfsChunker) makeChunk(sfsNr string, para model.ParsedParagraph, text string, stycke string, meta SfsMeta, chunkIdx int, chunkTotal int) model.Chunk {
	return model.Chunk{
		Namespace:      SfsNamespace(sfsNr, para.Kapitel, para.Paragraf, para.NumberingType, chunkIdx),
		SourceID:       meta.SourceID,
		SourceType:     model.SourceTypeSfs,
		AuthorityLevel: model.AuthorityBinding,
		LegalArea:      meta.LegalArea,
		ChunkIndex:     chunkIdx,
		ChunkTotal:     chunkTotal,
		Text:           strings.TrimSpace(text),

		SfsNr:         sfsNr,
		Rubrik:        meta.Rubrik,
		Kortnamn:      meta.Kortnamn,
		Kapitel:       para.Kapitel,
		Kapitelrubrik: para.Kapitelrubrik,
		Paragraf:      para.Paragraf,
		Stycke:        stycke,
		NormType:      meta.NormType,
		NumberingType: para.NumberingType,

		IsDefinition:           para.IsDefinition,
		IsOvergangsbestammelse: para.IsOvergangs,
		HasTable:               para.HasTable,
		ReferencesTo:           para.ReferencesTo,

		LegalAreaConfidence: meta.LegalAreaConfidence,
	}
}
