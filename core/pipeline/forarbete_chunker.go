package pipeline

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/eliassondavid/paragrafen-ai/model"
)

// Default token bounds for preparatory-works chunks. Section prose is less
// dense than statute text, so the floor sits lower.
const (
	DefaultForarbeteMinTokens = 50
	DefaultForarbeteMaxTokens = 800
)

// ForarbeteMeta carries document-level metadata shared by every chunk of
// one preparatory-works document.
type ForarbeteMeta struct {
	SourceID            string
	Titel               string
	LegalArea           []string
	LegalAreaConfidence string
}

// ForarbeteChunker turns parsed sections into indexable chunks. Paragraphs
// above MaxTokens are split on sentence boundaries first, then chunks are
// packed greedily per section.
//
// When a packed chunk took more than one paragraph, the next scan starts at
// the last packed paragraph again, so consecutive chunks overlap by one
// paragraph. Retrieval depends on that overlap for section context, so the
// behavior is pinned by a regression test.
type ForarbeteChunker struct {
	MinTokens int
	MaxTokens int

	log *slog.Logger
}

// NewForarbeteChunker creates a preparatory-works chunker. Non-positive
// bounds fall back to the defaults.
func NewForarbeteChunker(minTokens int, maxTokens int, logger *slog.Logger) *ForarbeteChunker {
	if minTokens <= 0 {
		minTokens = DefaultForarbeteMinTokens
	}
	if maxTokens <= 0 {
		maxTokens = DefaultForarbeteMaxTokens
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ForarbeteChunker{MinTokens: minTokens, MaxTokens: maxTokens, log: logger}
}

// Chunk converts the sections of one document into chunks with document
// wide chunk indices and namespaces.
func (c *ForarbeteChunker) Chunk(beteckning string, sections []model.ParsedSection, meta ForarbeteMeta) []model.Chunk {
	var chunks []model.Chunk
	for _, section := range sections {
		chunks = append(chunks, c.chunkSection(beteckning, section, meta)...)
	}

	for i := range chunks {
		chunks[i].ChunkIndex = i
		chunks[i].ChunkTotal = len(chunks)
		chunks[i].Namespace = ForarbeteNamespace(beteckning, chunks[i].SectionTitle, i)
	}
	return chunks
}

func (c *ForarbeteChunker) chunkSection(beteckning string, section model.ParsedSection, meta ForarbeteMeta) []model.Chunk {
	var paragraphs []string
	for _, paragraph := range section.Paragraphs {
		normalized := normalizeWhitespace(paragraph)
		if normalized == "" {
			continue
		}
		paragraphs = append(paragraphs, c.splitOverlong(normalized)...)
	}
	if len(paragraphs) == 0 {
		return nil
	}

	var chunks []model.Chunk
	idx := 0
	total := len(paragraphs)

	for idx < total {
		var selected []string
		selectedTokens := 0
		cursor := idx

		for cursor < total {
			candidate := paragraphs[cursor]
			candidateTokens := EstimateTokens(candidate)
			if len(selected) > 0 && selectedTokens+candidateTokens > c.MaxTokens {
				break
			}
			selected = append(selected, candidate)
			selectedTokens += candidateTokens
			cursor++

			if selectedTokens >= c.MaxTokens {
				break
			}
		}

		if len(selected) == 0 {
			selected = []string{paragraphs[idx]}
			cursor = idx + 1
		}

		chunks = append(chunks, c.makeChunk(beteckning, section, strings.Join(selected, "\n\n"), meta))

		if cursor >= total {
			break
		}

		// Multi-paragraph chunks restart at their last paragraph, which
		// overlaps consecutive chunks by one paragraph.
		nextIdx := cursor
		if len(selected) > 1 {
			nextIdx = cursor - 1
		}
		if nextIdx > idx {
			idx = nextIdx
		} else {
			idx = cursor
		}
	}

	var filtered []model.Chunk
	for _, chunk := range chunks {
		if EstimateTokens(chunk.Text) >= c.MinTokens {
			filtered = append(filtered, chunk)
		}
	}
	if len(filtered) > 0 {
		return filtered
	}

	c.log.Warn("Alla chunks under minimigräns, slår ihop till en",
		"beteckning", beteckning, "section", section.Title)
	return []model.Chunk{c.makeChunk(beteckning, section, strings.Join(paragraphs, "\n\n"), meta)}
}

// splitOverlong breaks one overlong paragraph into parts below MaxTokens,
// on sentence boundaries when possible, by word count otherwise.
func (c *ForarbeteChunker) splitOverlong(paragraph string) []string {
	if EstimateTokens(paragraph) <= c.MaxTokens {
		return []string{paragraph}
	}

	marked := strings.ReplaceAll(paragraph, "! ", "!|")
	marked = strings.ReplaceAll(marked, "? ", "?|")
	marked = strings.ReplaceAll(marked, ". ", ".|")

	var sentences []string
	for _, s := range strings.Split(marked, "|") {
		s = strings.TrimSpace(s)
		if s != "" {
			sentences = append(sentences, s)
		}
	}
	if len(sentences) <= 1 {
		return splitByWords(paragraph, c.MaxTokens)
	}

	var parts []string
	var current []string
	currentTokens := 0
	for _, sentence := range sentences {
		sentenceTokens := EstimateTokens(sentence)
		if len(current) > 0 && currentTokens+sentenceTokens > c.MaxTokens {
			parts = append(parts, strings.Join(current, " "))
			current = []string{sentence}
			currentTokens = sentenceTokens
		} else {
			current = append(current, sentence)
			currentTokens += sentenceTokens
		}
	}
	if len(current) > 0 {
		parts = append(parts, strings.Join(current, " "))
	}
	return parts
}

func splitByWords(text string, maxTokens int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	wordsPerChunk := int(float64(maxTokens) / 1.3)
	if wordsPerChunk < 1 {
		wordsPerChunk = 1
	}
	var parts []string
	for i := 0; i < len(words); i += wordsPerChunk {
		end := i + wordsPerChunk
		if end > len(words) {
			end = len(words)
		}
		parts = append(parts, strings.Join(words[i:end], " "))
	}
	return parts
}

func (c *ForarbeteChunker) makeChunk(beteckning string, section model.ParsedSection, text string, meta ForarbeteMeta) model.Chunk {
	return model.Chunk{
		SourceID:       meta.SourceID,
		SourceType:     model.SourceTypeForarbete,
		AuthorityLevel: model.AuthorityPreparatory,
		LegalArea:      meta.LegalArea,
		Text:           strings.TrimSpace(text),

		Beteckning:   beteckning,
		Rubrik:       meta.Titel,
		SectionTitle: section.Title,
		Pinpoint:     pinpoint(section),

		LegalAreaConfidence: meta.LegalAreaConfidence,
	}
}

// pinpoint renders the human-readable citation position: a page when known,
// otherwise a shortened section title.
func pinpoint(section model.ParsedSection) string {
	if section.Page != nil {
		return fmt.Sprintf("s. %d", *section.Page)
	}
	fallback := normalizeWhitespace(section.Title)
	if len([]rune(fallback)) > 30 {
		fallback = string([]rune(fallback)[:30])
	}
	if fallback == "" {
		return "Avsnitt"
	}
	return fallback
}

func normalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
