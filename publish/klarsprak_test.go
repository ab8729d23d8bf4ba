package publish

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/eliassondavid/paragrafen-ai/config"
)

func layerWith(terms map[string]string, patterns []config.PassivePattern) *KlarsprakLayer {
	return NewKlarsprakLayer(&config.KlarsprakConfig{
		LegalTerms:      terms,
		PassivePatterns: patterns,
	}, nil)
}

func TestKlarsprakTermExplanations(t *testing.T) {
	layer := layerWith(map[string]string{"laga kraft": "domen kan inte längre överklagas"}, nil)

	t.Run("Explains a term on first use only", func(t *testing.T) {
		result := layer.Process("Domen vinner laga kraft om tre veckor. Efter laga kraft kan den verkställas.", "")

		assert.Equal(t, 1, strings.Count(result, "(domen kan inte längre överklagas)"))
		assert.Contains(t, result, "laga kraft (domen kan inte längre överklagas) om tre veckor")
	})

	t.Run("Matches case insensitively", func(t *testing.T) {
		result := layer.Process("Laga kraft inträder efter överklagandetiden.", "")

		assert.Contains(t, result, "Laga kraft (domen kan inte längre överklagas)")
	})

	t.Run("Respects word boundaries with Swedish letters", func(t *testing.T) {
		layer := layerWith(map[string]string{"arv": "kvarlåtenskap efter en avliden"}, nil)
		result := layer.Process("Arvsskatten är avskaffad.", "")

		assert.NotContains(t, result, "(kvarlåtenskap", "Term inside a longer word must not match")
	})
}

func TestKlarsprakSentenceSplitting(t *testing.T) {
	layer := layerWith(nil, nil)

	t.Run("Splits an overlong sentence at a clause boundary", func(t *testing.T) {
		long := strings.Repeat("myndigheten prövar ärendet enligt gällande rätt ", 5) +
			"och beslutet expedieras, och " +
			strings.Repeat("den enskilde får del av beslutet med besvärshänvisning ", 3) + "."
		result := layer.Process(long, "")

		assert.Greater(t, strings.Count(result, "."), strings.Count(long, "."), "Expected an extra sentence break")
	})

	t.Run("Leaves short sentences alone", func(t *testing.T) {
		text := "Lagen gäller. Beslut kan överklagas."
		assert.Equal(t, text, layer.Process(text, ""))
	})

	t.Run("Never splits inside parentheses", func(t *testing.T) {
		words := strings.Repeat("ordet ", 45)
		text := words + "(" + "bisats, och mer text" + ") slutet."
		result := layer.Process(text, "")

		assert.Contains(t, result, "(bisats, och mer text)")
	})
}

func TestKlarsprakPassiveRewrites(t *testing.T) {
	layer := layerWith(nil, []config.PassivePattern{
		{Pattern: "det åligger dig att", Replacement: "du måste"},
		{Pattern: "erlägga", Replacement: "betala"},
	})

	t.Run("Rewrites passive phrases to active voice", func(t *testing.T) {
		result := layer.Process("Det åligger dig att erlägga avgiften.", "")

		assert.Equal(t, "Du måste betala avgiften.", result)
	})

	t.Run("Preserves capitalization of the original", func(t *testing.T) {
		result := layer.Process("Avgiften ska du erlägga, det åligger dig att göra det.", "")

		assert.Contains(t, result, "ska du betala")
		assert.Contains(t, result, "du måste göra det")
	})
}

func TestKlarsprakHeading(t *testing.T) {
	layer := layerWith(nil, nil)

	t.Run("Adds a heading to long answers", func(t *testing.T) {
		long := strings.TrimSpace(strings.Repeat("Detta stycke beskriver vad som gäller. ", 40))
		result := layer.Process(long, "hyresrätt")

		assert.True(t, strings.HasPrefix(result, "## Vad lagen säger om hyresrätt\n\n"))
	})

	t.Run("Uses the generic heading without a legal area", func(t *testing.T) {
		long := strings.TrimSpace(strings.Repeat("Detta stycke beskriver vad som gäller. ", 40))
		result := layer.Process(long, "")

		assert.True(t, strings.HasPrefix(result, "## Vad lagen säger\n\n"))
	})

	t.Run("Keeps answers with an existing heading untouched", func(t *testing.T) {
		long := "## Rubrik\n\n" + strings.Repeat("text ", 250)
		result := layer.Process(long, "hyresrätt")

		assert.False(t, strings.HasPrefix(result, "## Vad lagen säger"))
	})

	t.Run("Skips the heading for short answers", func(t *testing.T) {
		assert.Equal(t, "Kort svar.", layer.Process("Kort svar.", "hyresrätt"))
	})
}

func TestKlarsprakDefaults(t *testing.T) {
	layer := NewKlarsprakLayer(nil, nil)

	result := layer.Process("Beslutet vinner laga kraft.", "")
	assert.Contains(t, result, "laga kraft (domen kan inte längre överklagas)")
}
