package publish

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"unicode"

	"github.com/eliassondavid/paragrafen-ai/config"
)

const (
	// Sentences longer than this many words are split at the first clause
	// boundary outside parentheses and quotes.
	longSentenceWords = 40

	// Answers longer than this without a heading get one prepended.
	headingWordThreshold = 200

	maxSplitPasses = 3
)

var sentenceRe = regexp.MustCompile(`[^.!?]+[.!?]*`)

var clauseDelimiters = []string{", och ", ", men ", "; "}

// KlarsprakLayer applies plain-language post-processing to LLM answers:
// inline explanations for legal terms on first use, long-sentence
// splitting, passive-phrase rewrites and a heading for long answers.
type KlarsprakLayer struct {
	terms    []termEntry
	patterns []patternEntry
	log      *slog.Logger
}

type termEntry struct {
	term        string
	explanation string
	re          *regexp.Regexp
}

type patternEntry struct {
	replacement string
	re          *regexp.Regexp
}

// NewKlarsprakLayer creates the layer from a rule config. A nil config
// uses the built-in defaults.
func NewKlarsprakLayer(cfg *config.KlarsprakConfig, logger *slog.Logger) *KlarsprakLayer {
	if cfg == nil {
		cfg = config.DefaultKlarsprakConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}

	layer := &KlarsprakLayer{log: logger}
	for term, explanation := range cfg.LegalTerms {
		term = strings.TrimSpace(term)
		explanation = strings.TrimSpace(explanation)
		if term == "" || explanation == "" {
			continue
		}
		layer.terms = append(layer.terms, termEntry{
			term:        term,
			explanation: explanation,
			re:          wordBoundaryPattern(term),
		})
	}
	for _, p := range cfg.PassivePatterns {
		pattern := strings.TrimSpace(p.Pattern)
		replacement := strings.TrimSpace(p.Replacement)
		if pattern == "" || replacement == "" {
			continue
		}
		layer.patterns = append(layer.patterns, patternEntry{
			replacement: replacement,
			re:          regexp.MustCompile(`(?i)` + regexp.QuoteMeta(pattern)),
		})
	}
	return layer
}

// \b is ASCII-only and breaks on å/ä/ö, so the boundary is spelled out
// over Unicode letter and digit classes.
func wordBoundaryPattern(term string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)(^|[^\p{L}\p{N}])(` + regexp.QuoteMeta(term) + `)($|[^\p{L}\p{N}])`)
}

// Process runs all transformations in a fixed order. legalArea feeds the
// heading for long answers and may be empty.
func (k *KlarsprakLayer) Process(answer string, legalArea string) string {
	processed := k.explainTerms(answer)
	processed = k.splitLongSentences(processed)
	processed = k.rewritePassives(processed)
	processed = k.injectHeading(processed, legalArea)
	return processed
}

// explainTerms appends the glossary explanation to the first occurrence
// of each legal term.
func (k *KlarsprakLayer) explainTerms(text string) string {
	for _, entry := range k.terms {
		replaced := false
		text = entry.re.ReplaceAllStringFunc(text, func(match string) string {
			if replaced {
				return match
			}
			replaced = true
			groups := entry.re.FindStringSubmatch(match)
			return groups[1] + groups[2] + " (" + entry.explanation + ")" + groups[3]
		})
	}
	return text
}

func (k *KlarsprakLayer) splitLongSentences(text string) string {
	current := text
	for i := 0; i < maxSplitPasses; i++ {
		next := k.splitPassOnce(current)
		if next == current {
			break
		}
		current = next
	}
	return current
}

func (k *KlarsprakLayer) splitPassOnce(text string) string {
	sentences := sentenceRe.FindAllString(text, -1)
	if len(sentences) == 0 {
		return text
	}

	var sb strings.Builder
	for _, sentence := range sentences {
		sb.WriteString(k.splitSentence(sentence))
	}
	return sb.String()
}

func (k *KlarsprakLayer) splitSentence(sentence string) string {
	trimmed := strings.TrimLeft(sentence, " \t\n")
	leading := sentence[:len(sentence)-len(trimmed)]
	body := strings.TrimRight(trimmed, ".!?")
	punct := trimmed[len(body):]

	if len(strings.Fields(body)) <= longSentenceWords {
		return sentence
	}

	idx, delimiter := findSplitPoint(body)
	if idx < 0 {
		return sentence
	}

	left := strings.TrimRight(body[:idx], " ,;")
	right := strings.TrimLeft(body[idx+len(delimiter):], " ")
	if left == "" || right == "" {
		return sentence
	}

	return fmt.Sprintf("%s%s. %s%s", leading, left, right, punct)
}

// findSplitPoint returns the first clause delimiter outside parentheses
// and quotes, trying delimiters in priority order.
func findSplitPoint(text string) (int, string) {
	for _, delimiter := range clauseDelimiters {
		if idx := indexOutsideGroups(text, delimiter); idx >= 0 {
			return idx, delimiter
		}
	}
	return -1, ""
}

func indexOutsideGroups(text string, delimiter string) int {
	parenDepth := 0
	inQuotes := false

	for idx, char := range text {
		switch {
		case char == '"':
			inQuotes = !inQuotes
		case !inQuotes && char == '(':
			parenDepth++
		case !inQuotes && char == ')' && parenDepth > 0:
			parenDepth--
		}

		if parenDepth == 0 && !inQuotes && strings.HasPrefix(text[idx:], delimiter) {
			return idx
		}
	}
	return -1
}

func (k *KlarsprakLayer) rewritePassives(text string) string {
	for _, entry := range k.patterns {
		text = entry.re.ReplaceAllStringFunc(text, func(match string) string {
			return preserveCapitalization(match, entry.replacement)
		})
	}
	return text
}

func preserveCapitalization(original string, replacement string) string {
	if original == strings.ToUpper(original) && strings.ToLower(original) != original {
		return strings.ToUpper(replacement)
	}
	runes := []rune(original)
	if len(runes) > 0 && unicode.IsUpper(runes[0]) {
		replRunes := []rune(replacement)
		if len(replRunes) > 0 {
			return string(unicode.ToUpper(replRunes[0])) + string(replRunes[1:])
		}
	}
	return replacement
}

// injectHeading prepends a heading to long answers that have none.
func (k *KlarsprakLayer) injectHeading(text string, legalArea string) string {
	for _, line := range strings.Split(text, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "#") {
			return text
		}
	}
	if len(strings.Fields(text)) <= headingWordThreshold {
		return text
	}

	heading := "## Vad lagen säger"
	if legalArea != "" {
		heading = "## Vad lagen säger om " + legalArea
	}
	return heading + "\n\n" + text
}
