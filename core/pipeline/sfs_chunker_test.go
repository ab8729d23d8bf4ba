package pipeline

import (
	"strings"
	"testing"

	"github.com/eliassondavid/paragrafen-ai/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// words builds test text with an exact word count.
func words(n int, word string) string {
	return strings.TrimSpace(strings.Repeat(word+" ", n))
}

func testSfsMeta() SfsMeta {
	return SfsMeta{
		SourceID:            "11111111-1111-1111-1111-111111111111",
		Rubrik:              "Testlag (2000:1)",
		NormType:            model.NormTypeLag,
		LegalArea:           []string{"offentlig rätt"},
		LegalAreaConfidence: "department",
	}
}

func relativePara(kapitel string, paragraf string, text string) model.ParsedParagraph {
	return model.ParsedParagraph{
		Kapitel:       kapitel,
		Paragraf:      paragraf,
		Text:          text,
		NumberingType: model.NumberingRelative,
		HasKapitel:    true,
	}
}

func TestSfsChunkerSingleParagraph(t *testing.T) {
	chunker := NewSfsChunker(100, 800, nil)

	paragraphs := []model.ParsedParagraph{
		relativePara("1", "1", words(200, "bestämmelse")),
	}
	chunks := chunker.Chunk("2000:1", paragraphs, testSfsMeta())

	require.Len(t, chunks, 1, "Mid-size paragraph becomes exactly one chunk")
	chunk := chunks[0]
	assert.Equal(t, "sfs::2000:1_1kap_1§_chunk_000", chunk.Namespace)
	assert.Equal(t, model.SourceTypeSfs, chunk.SourceType)
	assert.Equal(t, model.AuthorityBinding, chunk.AuthorityLevel)
	assert.Equal(t, "1", chunk.Kapitel)
	assert.Equal(t, "1", chunk.Paragraf)
	assert.Equal(t, 0, chunk.ChunkIndex)
	assert.Equal(t, 1, chunk.ChunkTotal)
	assert.Equal(t, "Testlag (2000:1)", chunk.Rubrik)
}

func TestSfsChunkerMerging(t *testing.T) {
	chunker := NewSfsChunker(100, 800, nil)

	t.Run("Small paragraphs in the same chapter merge", func(t *testing.T) {
		paragraphs := []model.ParsedParagraph{
			relativePara("1", "1", words(30, "kort")),
			relativePara("1", "2", words(30, "kort")),
			relativePara("1", "3", words(60, "kort")),
		}
		chunks := chunker.Chunk("2000:1", paragraphs, testSfsMeta())

		require.Len(t, chunks, 1)
		assert.Equal(t, "1-3", chunks[0].Paragraf, "Merged label spans first to last paragraph")
		assert.Equal(t, "sfs::2000:1_1kap_1-3§_chunk_000", chunks[0].Namespace)
		assert.Equal(t, 3, strings.Count(chunks[0].Text, "\n\n")+1, "All three texts joined")
	})

	t.Run("Merging never crosses a chapter boundary", func(t *testing.T) {
		paragraphs := []model.ParsedParagraph{
			relativePara("1", "1", words(30, "kort")),
			relativePara("2", "1", words(30, "kort")),
		}
		chunks := chunker.Chunk("2000:1", paragraphs, testSfsMeta())

		require.Len(t, chunks, 2)
		assert.Equal(t, "1", chunks[0].Kapitel)
		assert.Equal(t, "2", chunks[1].Kapitel)
	})

	t.Run("Merging stops at a definition paragraph", func(t *testing.T) {
		definition := relativePara("1", "2", words(30, "definition"))
		definition.IsDefinition = true

		paragraphs := []model.ParsedParagraph{
			relativePara("1", "1", words(30, "kort")),
			definition,
			relativePara("1", "3", words(30, "kort")),
		}
		chunks := chunker.Chunk("2000:1", paragraphs, testSfsMeta())

		require.Len(t, chunks, 3, "Definition splits the statute into standalone chunks")
		assert.Equal(t, "1", chunks[0].Paragraf)
		assert.True(t, chunks[1].IsDefinition)
		assert.Equal(t, "3", chunks[2].Paragraf)
	})

	t.Run("Transition provisions stand alone", func(t *testing.T) {
		overgang := relativePara("1", "2", words(20, "ikraft"))
		overgang.IsOvergangs = true

		paragraphs := []model.ParsedParagraph{
			overgang,
			relativePara("1", "3", words(20, "kort")),
		}
		chunks := chunker.Chunk("2000:1", paragraphs, testSfsMeta())

		require.Len(t, chunks, 2)
		assert.True(t, chunks[0].IsOvergangsbestammelse)
		assert.Equal(t, "2", chunks[0].Paragraf)
	})
}

func TestSfsChunkerSplitting(t *testing.T) {
	chunker := NewSfsChunker(100, 800, nil)

	stycken := []string{
		words(400, "första"),
		words(400, "andra"),
		words(400, "tredje"),
	}
	para := relativePara("4", "7", strings.Join(stycken, "\n"))
	para.Stycken = stycken

	chunks := chunker.Chunk("2000:1", []model.ParsedParagraph{para}, testSfsMeta())

	require.Len(t, chunks, 3, "Each stycke exceeds half the budget, so none can pair up")
	for i, chunk := range chunks {
		assert.LessOrEqual(t, EstimateTokens(chunk.Text), 800, "Sub-chunk exceeds the token budget")
		assert.Equal(t, i, chunk.ChunkIndex)
		assert.Equal(t, 3, chunk.ChunkTotal)
		assert.Equal(t, "7", chunk.Paragraf)
	}
	assert.Equal(t, "1", chunks[0].Stycke)
	assert.Equal(t, "3", chunks[2].Stycke)
	assert.Equal(t, "sfs::2000:1_4kap_7§_chunk_002", chunks[2].Namespace)
}

func TestSfsChunkerNamespaceIdempotency(t *testing.T) {
	chunker := NewSfsChunker(100, 800, nil)
	paragraphs := []model.ParsedParagraph{
		relativePara("1", "1", words(30, "kort")),
		relativePara("1", "2", words(30, "kort")),
		relativePara("2", "1", words(150, "lagom")),
	}

	first := chunker.Chunk("2000:1", paragraphs, testSfsMeta())
	second := chunker.Chunk("2000:1", paragraphs, testSfsMeta())

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].Namespace, second[i].Namespace, "Namespaces must be stable across runs")
	}
}

func TestSfsChunkerEmptyInput(t *testing.T) {
	chunker := NewSfsChunker(100, 800, nil)
	assert.Empty(t, chunker.Chunk("2000:1", nil, testSfsMeta()))
	assert.Empty(t, chunker.Chunk("2000:1", []model.ParsedParagraph{}, testSfsMeta()))
}
