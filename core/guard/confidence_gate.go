package guard

import (
	"math"
	"strings"

	"github.com/eliassondavid/paragrafen-ai/model"
)

// Default gate tuning. All of it is overridable through the struct fields.
const (
	DefaultPassThreshold        = 0.5
	DefaultLowDistanceThreshold = 0.4

	penaltyOnlyPersuasive   = 0.3
	penaltyConflictingAuth  = 0.2
	penaltySparseResults    = 0.15
	penaltySingleSourceType = 0.1
)

// Gate flags, also used verbatim as the failure reason.
const (
	FlagNoResults        = "no_results"
	FlagOnlyPersuasive   = "only_persuasive"
	FlagConflictingAuth  = "conflicting_authority"
	FlagSparseResults    = "sparse_results"
	FlagSingleSourceType = "single_source_type"
)

// ConfidenceGate decides whether a retrieved evidence set is strong enough
// to answer from. It starts at 1.0 and deducts a fixed penalty per
// weakness; a failing score suppresses generation entirely.
type ConfidenceGate struct {
	// PassThreshold is the minimum score that still allows generation.
	PassThreshold float64
	// LowDistanceThreshold bounds which chunks count as close matches for
	// the conflicting-authority check.
	LowDistanceThreshold float64
}

// NewConfidenceGate creates a gate with the given thresholds. Non-positive
// values fall back to the defaults.
func NewConfidenceGate(passThreshold float64, lowDistanceThreshold float64) *ConfidenceGate {
	if passThreshold <= 0 {
		passThreshold = DefaultPassThreshold
	}
	if lowDistanceThreshold <= 0 {
		lowDistanceThreshold = DefaultLowDistanceThreshold
	}
	return &ConfidenceGate{PassThreshold: passThreshold, LowDistanceThreshold: lowDistanceThreshold}
}

// Evaluate scores one retrieved chunk set. Penalties are independent and
// cumulative; the score is floored at zero and rounded to four decimals.
func (g *ConfidenceGate) Evaluate(chunks []model.RetrievedChunk) model.GateResult {
	if len(chunks) == 0 {
		return model.GateResult{
			Pass:   false,
			Score:  0.0,
			Reason: FlagNoResults,
			Flags:  []string{FlagNoResults},
		}
	}

	score := 1.0
	var flags []string

	if onlyPersuasive(chunks) {
		score -= penaltyOnlyPersuasive
		flags = append(flags, FlagOnlyPersuasive)
	}
	if g.conflictingAuthority(chunks) {
		score -= penaltyConflictingAuth
		flags = append(flags, FlagConflictingAuth)
	}
	if len(chunks) < 2 {
		score -= penaltySparseResults
		flags = append(flags, FlagSparseResults)
	}
	if singleSourceType(chunks) {
		score -= penaltySingleSourceType
		flags = append(flags, FlagSingleSourceType)
	}

	if score < 0 {
		score = 0
	}
	score = math.Round(score*10000) / 10000

	result := model.GateResult{
		Pass:  score >= g.PassThreshold,
		Score: score,
		Flags: flags,
	}
	if !result.Pass {
		result.Reason = strings.Join(flags, ",")
	}
	return result
}

func onlyPersuasive(chunks []model.RetrievedChunk) bool {
	for _, chunk := range chunks {
		if model.ParseAuthorityLevel(string(chunk.AuthorityLevel)) != model.AuthorityPersuasive {
			return false
		}
	}
	return true
}

// conflictingAuthority reports whether both binding and guiding sources
// appear among close matches. Preparatory conflicts are deliberately not
// checked here.
func (g *ConfidenceGate) conflictingAuthority(chunks []model.RetrievedChunk) bool {
	hasBinding := false
	hasGuiding := false
	for _, chunk := range chunks {
		if chunk.Distance == nil || *chunk.Distance > g.LowDistanceThreshold {
			continue
		}
		switch model.ParseAuthorityLevel(string(chunk.AuthorityLevel)) {
		case model.AuthorityBinding:
			hasBinding = true
		case model.AuthorityGuiding:
			hasGuiding = true
		}
	}
	return hasBinding && hasGuiding
}

func singleSourceType(chunks []model.RetrievedChunk) bool {
	first := chunks[0].SourceType
	for _, chunk := range chunks[1:] {
		if chunk.SourceType != first {
			return false
		}
	}
	return true
}
