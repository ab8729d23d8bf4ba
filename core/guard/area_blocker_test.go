package guard

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/eliassondavid/paragrafen-ai/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultBlocker() *AreaBlocker {
	return NewAreaBlocker(config.DefaultExcludedAreas(), nil)
}

func TestAreaBlockerIsBlocked(t *testing.T) {
	blocker := defaultBlocker()

	t.Run("Criminal law keyword blocks with referral message", func(t *testing.T) {
		blocked, message := blocker.IsBlocked("Jag riskerar åtal för stöld, vad gäller?")

		assert.True(t, blocked)
		assert.NotEmpty(t, message, "Blocked queries must carry a referral message")
	})

	t.Run("In-scope query passes", func(t *testing.T) {
		blocked, message := blocker.IsBlocked("Hur begär jag ut en allmän handling?")

		assert.False(t, blocked)
		assert.Empty(t, message)
	})

	t.Run("Matching is case-insensitive", func(t *testing.T) {
		blocked, _ := blocker.IsBlocked("STÖLD av cykel")
		assert.True(t, blocked)
	})

	t.Run("Keywords match whole words only", func(t *testing.T) {
		// "skattning" contains "skatt" but is a different word.
		blocked, _ := blocker.IsBlocked("Hur görs en skattning av underlaget?")
		assert.False(t, blocked)
	})

	t.Run("Configured referral message is returned verbatim", func(t *testing.T) {
		blocked, message := blocker.IsBlocked("Jag behöver hjälp med min asylansökan.")

		assert.True(t, blocked)
		assert.Equal(t, "Asylrättsliga frågor kräver juridiskt ombud. Kontakta Advokatjouren eller Rådgivningsbyrån för asylsökande.", message)
	})

	t.Run("First matching area in config order wins", func(t *testing.T) {
		areas := []config.ExcludedArea{
			{ID: "a", Keywords: []string{"ord"}, Message: "första"},
			{ID: "b", Keywords: []string{"ord"}, Message: "andra"},
		}
		blocker := NewAreaBlocker(areas, nil)

		blocked, message := blocker.IsBlocked("Ett ord till.")
		require.True(t, blocked)
		assert.Equal(t, "första", message)
	})

	t.Run("Too-short keywords are ignored", func(t *testing.T) {
		areas := []config.ExcludedArea{
			{ID: "a", Keywords: []string{"om"}, Message: "aldrig"},
		}
		blocker := NewAreaBlocker(areas, nil)

		blocked, _ := blocker.IsBlocked("En fråga om handlingar.")
		assert.False(t, blocked)
	})
}

func TestAreaBlockerIsSfsBlocked(t *testing.T) {
	blocker := defaultBlocker()

	t.Run("Excluded statute is blocked", func(t *testing.T) {
		blocked, message := blocker.IsSfsBlocked("1962:700")

		assert.True(t, blocked)
		assert.NotEmpty(t, message)
	})

	t.Run("Chapter-scoped pattern does not block the bare statute", func(t *testing.T) {
		blocked, message := blocker.IsSfsBlocked("1949:381")

		assert.False(t, blocked)
		assert.Empty(t, message)
	})

	t.Run("Chapter-scoped pattern blocks exactly that chapter", func(t *testing.T) {
		blocked, _ := blocker.IsSfsBlocked("1949:381_kap6")
		assert.True(t, blocked)

		blocked, _ = blocker.IsSfsBlocked("1949:381_kap7")
		assert.False(t, blocked)
	})

	t.Run("Chapter citation of a fully excluded statute is blocked", func(t *testing.T) {
		blocked, _ := blocker.IsSfsBlocked("1962:700_kap3")
		assert.True(t, blocked)
	})

	t.Run("Unknown statute passes", func(t *testing.T) {
		blocked, message := blocker.IsSfsBlocked("2000:100")

		assert.False(t, blocked)
		assert.Empty(t, message)
	})
}

func TestNewAreaBlockerFromFile(t *testing.T) {
	t.Run("Valid config is used", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "excluded_areas.yaml")
		content := `excluded_areas:
  - id: testområde
    label: "Testområde"
    keywords: ["provord"]
    sfs_patterns: ["1915:218"]
    message: "Kontakta en jurist."
`
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))

		blocker := NewAreaBlockerFromFile(path, nil)

		blocked, message := blocker.IsBlocked("Ett provord i frågan.")
		assert.True(t, blocked)
		assert.Equal(t, "Kontakta en jurist.", message)

		blocked, _ = blocker.IsSfsBlocked("1915:218")
		assert.True(t, blocked)
	})

	t.Run("Missing config falls back to built-in areas", func(t *testing.T) {
		blocker := NewAreaBlockerFromFile(filepath.Join(t.TempDir(), "saknas.yaml"), nil)

		blocked, message := blocker.IsBlocked("Fråga om stöld.")
		assert.True(t, blocked, "Built-in fallback must still block excluded areas")
		assert.NotEmpty(t, message)
	})

	t.Run("Invalid config falls back to built-in areas", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "trasig.yaml")
		require.NoError(t, os.WriteFile(path, []byte("excluded_areas: 42"), 0644))

		blocker := NewAreaBlockerFromFile(path, nil)

		blocked, _ := blocker.IsBlocked("Fråga om stöld.")
		assert.True(t, blocked)
	})
}
