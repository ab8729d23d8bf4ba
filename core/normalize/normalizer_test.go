package normalize

import (
	"testing"

	"github.com/eliassondavid/paragrafen-ai/config"
	"github.com/eliassondavid/paragrafen-ai/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultNormalizer() *Normalizer {
	return NewNormalizer(nil, nil, nil, nil)
}

func TestClassifyNormType(t *testing.T) {
	normalizer := defaultNormalizer()

	t.Run("Grundlagar by SFS number regardless of title", func(t *testing.T) {
		assert.Equal(t, model.NormTypeGrundlag, normalizer.ClassifyNormType("1974:152", "Kungörelse (1974:152) om beslutad ny regeringsform"))
		assert.Equal(t, model.NormTypeGrundlag, normalizer.ClassifyNormType("1949:105", "Tryckfrihetsförordning (1949:105)"))
	})

	t.Run("Title patterns decide the rest", func(t *testing.T) {
		assert.Equal(t, model.NormTypeForordning, normalizer.ClassifyNormType("2007:515", "Förordning (2007:515) om myndighetsuppgifter"))
		assert.Equal(t, model.NormTypeForordning, normalizer.ClassifyNormType("1982:268", "Kungörelse (1982:268) om rikets vapen"))
		assert.Equal(t, model.NormTypeForeskrift, normalizer.ClassifyNormType("2011:1", "Föreskrift om teknisk kontroll"))
		assert.Equal(t, model.NormTypeLag, normalizer.ClassifyNormType("1962:700", "Brottsbalk (1962:700)"))
		assert.Equal(t, model.NormTypeLag, normalizer.ClassifyNormType("1982:80", "Lag (1982:80) om anställningsskydd"))
	})

	t.Run("Default is lag", func(t *testing.T) {
		assert.Equal(t, model.NormTypeLag, normalizer.ClassifyNormType("2005:716", "Utlänningslagen"))
	})
}

func TestClassifyLegalArea(t *testing.T) {
	normalizer := defaultNormalizer()

	t.Run("Manual mapping wins over department", func(t *testing.T) {
		areas, confidence := normalizer.ClassifyLegalArea("1982:80", "Arbetsmarknadsdepartementet")

		assert.Equal(t, []string{"arbetsrätt"}, areas)
		assert.Equal(t, "manual", confidence)
	})

	t.Run("Department layer when no manual entry", func(t *testing.T) {
		areas, confidence := normalizer.ClassifyLegalArea("2012:1", "Socialdepartementet S")

		assert.Equal(t, []string{"socialrätt"}, areas)
		assert.Equal(t, "department", confidence)
	})

	t.Run("Fallback to offentlig rätt", func(t *testing.T) {
		areas, confidence := normalizer.ClassifyLegalArea("2012:2", "Okänt departement")

		assert.Equal(t, []string{"offentlig rätt"}, areas)
		assert.Equal(t, "department", confidence)
	})

	t.Run("Manual entry with only invalid areas falls through", func(t *testing.T) {
		priority := map[string]config.PriorityEntry{
			"2012:3": {LegalArea: []string{"påhittat område"}},
		}
		normalizer := NewNormalizer(priority, nil, nil, nil)

		areas, confidence := normalizer.ClassifyLegalArea("2012:3", "Socialdepartementet")
		assert.Equal(t, []string{"socialrätt"}, areas)
		assert.Equal(t, "department", confidence)
	})
}

func TestKortnamnAndOverrides(t *testing.T) {
	normalizer := defaultNormalizer()

	t.Run("Curated short names", func(t *testing.T) {
		assert.Equal(t, "LAS", normalizer.Kortnamn("1982:80"))
		assert.Empty(t, normalizer.Kortnamn("2012:1"))
	})

	t.Run("Only verified numbering types become overrides", func(t *testing.T) {
		priority := map[string]config.PriorityEntry{
			"1982:80":  {NumberingType: "sequential", NumberingTypeVerified: true},
			"1990:932": {NumberingType: "relative"},
		}
		normalizer := NewNormalizer(priority, nil, nil, nil)

		overrides := normalizer.NumberingOverrides()
		assert.Equal(t, map[string]model.NumberingType{"1982:80": model.NumberingSequential}, overrides)
	})
}

func TestNormalizeLegalAreas(t *testing.T) {
	normalizer := defaultNormalizer()

	t.Run("Aliases map to area ids", func(t *testing.T) {
		got := normalizer.NormalizeLegalAreas([]string{"Anställningsskydd", "arbetsrätt"})
		assert.Equal(t, []string{"arbetsrätt"}, got)
	})

	t.Run("Unknown areas are kept", func(t *testing.T) {
		got := normalizer.NormalizeLegalAreas([]string{"rymdrätt"})
		assert.Equal(t, []string{"rymdrätt"}, got)
	})

	t.Run("Empty input becomes okänt", func(t *testing.T) {
		assert.Equal(t, []string{"okänt"}, normalizer.NormalizeLegalAreas(nil))
		assert.Equal(t, []string{"okänt"}, normalizer.NormalizeLegalAreas([]string{" ", ""}))
	})
}

func validSfsChunk() model.Chunk {
	return model.Chunk{
		Namespace:      "sfs::1982:80_0kap_7§_chunk_000",
		SourceID:       "33333333-3333-3333-3333-333333333333",
		SourceType:     model.SourceTypeSfs,
		AuthorityLevel: model.AuthorityBinding,
		ChunkIndex:     0,
		ChunkTotal:     1,
		Text:           "Uppsägning från arbetsgivarens sida skall vara sakligt grundad.",
		SfsNr:          "1982:80",
		Rubrik:         "Lag (1982:80) om anställningsskydd",
		NormType:       model.NormTypeLag,
		NumberingType:  model.NumberingSequential,
	}
}

func TestValidateChunk(t *testing.T) {
	t.Run("Valid SFS chunk passes", func(t *testing.T) {
		assert.Empty(t, ValidateChunk(validSfsChunk()))
	})

	t.Run("Merged paragraph namespaces are valid", func(t *testing.T) {
		chunk := validSfsChunk()
		chunk.Namespace = "sfs::1982:80_0kap_4-6§_chunk_000"
		assert.Empty(t, ValidateChunk(chunk))
	})

	t.Run("Missing text is rejected", func(t *testing.T) {
		chunk := validSfsChunk()
		chunk.Text = "   "
		errors := ValidateChunk(chunk)

		require.Len(t, errors, 1)
		assert.Contains(t, errors[0], "text")
	})

	t.Run("Malformed namespace is rejected", func(t *testing.T) {
		chunk := validSfsChunk()
		chunk.Namespace = "sfs::1982:80_7§_chunk_0"
		errors := ValidateChunk(chunk)

		require.Len(t, errors, 1)
		assert.Contains(t, errors[0], "Ogiltigt namespace-format")
	})

	t.Run("Forarbete chunk requires beteckning", func(t *testing.T) {
		chunk := model.Chunk{
			Namespace:      "forarbete::SOU_2020_035_sammanfattning_chunk_000",
			SourceID:       "44444444-4444-4444-4444-444444444444",
			SourceType:     model.SourceTypeForarbete,
			AuthorityLevel: model.AuthorityPreparatory,
			ChunkTotal:     1,
			Text:           "Utredningen föreslår.",
		}
		errors := ValidateChunk(chunk)
		require.Len(t, errors, 1)
		assert.Contains(t, errors[0], "beteckning")

		chunk.Beteckning = "SOU 2020:35"
		assert.Empty(t, ValidateChunk(chunk))
	})
}

func TestNormalizeChunks(t *testing.T) {
	normalizer := defaultNormalizer()
	info := SourceInfo{
		SfsNr:       "1982:80",
		Rubrik:      "Lag (1982:80) om anställningsskydd",
		Departement: "Arbetsmarknadsdepartementet",
	}

	t.Run("Metadata is populated on every chunk", func(t *testing.T) {
		chunk := validSfsChunk()
		chunk.NormType = ""
		chunk.LegalArea = nil
		chunk.Kortnamn = ""

		normalized, errors := normalizer.NormalizeChunks([]model.Chunk{chunk}, info)

		require.Empty(t, errors)
		require.Len(t, normalized, 1)
		assert.Equal(t, model.NormTypeLag, normalized[0].NormType)
		assert.Equal(t, []string{"arbetsrätt"}, normalized[0].LegalArea)
		assert.Equal(t, "manual", normalized[0].LegalAreaConfidence)
		assert.Equal(t, "LAS", normalized[0].Kortnamn)
	})

	t.Run("Invalid chunk is rejected alone", func(t *testing.T) {
		valid := validSfsChunk()
		broken := validSfsChunk()
		broken.Text = ""

		normalized, errors := normalizer.NormalizeChunks([]model.Chunk{broken, valid}, info)

		require.Len(t, normalized, 1, "Sibling chunks must survive a rejected chunk")
		assert.Equal(t, valid.Namespace, normalized[0].Namespace)
		require.Len(t, errors, 1)
		assert.Contains(t, errors[0], "text")
	})
}
