package qa

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/eliassondavid/paragrafen-ai/helper"
	"github.com/eliassondavid/paragrafen-ai/model"
)

// Answerer is the pipeline surface the runner drives. Satisfied by
// rag.Pipeline.
type Answerer interface {
	Query(ctx context.Context, userQuery string, queryConfig *model.QueryConfig) (*model.QueryResult, error)
}

// TestCase is one gold-standard entry.
type TestCase struct {
	ID       string   `json:"id"`
	Query    string   `json:"query"`
	Category string   `json:"category"`
	Expected Expected `json:"expected"`
}

// Expected describes the checks run against one answer.
type Expected struct {
	Blocked            bool     `json:"blocked"`
	LowConfidence      bool     `json:"low_confidence"`
	AnswerLanguage     string   `json:"answer_language,omitempty"`
	DisclaimerPresent  bool     `json:"disclaimer_present,omitempty"`
	MustContainRefs    []string `json:"must_contain_refs,omitempty"`
	MustNotContain     []string `json:"must_not_contain,omitempty"`
	SourceTypesPresent []string `json:"source_types_present,omitempty"`
}

// CaseResult is the outcome of one test case.
type CaseResult struct {
	ID       string   `json:"id"`
	Query    string   `json:"query"`
	Category string   `json:"category"`
	Passed   bool     `json:"passed"`
	Failures []string `json:"failures,omitempty"`
}

// Report summarizes one full gold-standard run.
type Report struct {
	Total              int            `json:"total"`
	Passed             int            `json:"passed"`
	Failed             int            `json:"failed"`
	PassRate           float64        `json:"pass_rate"`
	Results            []CaseResult   `json:"results"`
	FailuresByCategory map[string]int `json:"failures_by_category,omitempty"`
}

// sourceTypeIndicators is the substring that proves a source type is
// present in the citation list.
var sourceTypeIndicators = map[string]string{
	"sfs":       "SFS",
	"forarbete": "rop.",
	"praxis":    "NJA",
	"doktrin":   ",",
}

var swedishMarkers = map[string]bool{
	"och": true, "att": true, "det": true, "som": true, "är": true,
	"inte": true, "jag": true, "du": true, "för": true, "med": true,
	"på": true, "till": true, "kan": true, "ska": true, "vad": true,
	"hur": true, "om": true, "den": true, "denna": true, "en": true,
	"ett": true,
}

var wordRe = regexp.MustCompile(`[A-Za-zÅÄÖåäö]+`)

// Runner drives the gold-standard cases through the pipeline.
type Runner struct {
	cases    []TestCase
	answerer Answerer
	log      *slog.Logger
}

// NewRunner creates a runner over loaded test cases.
func NewRunner(cases []TestCase, answerer Answerer, logger *slog.Logger) (*Runner, error) {
	if answerer == nil {
		return nil, helper.NewError("qa runner validation", fmt.Errorf("answerer is nil"))
	}
	if len(cases) == 0 {
		return nil, helper.NewError("qa runner validation", fmt.Errorf("no test cases"))
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{cases: cases, answerer: answerer, log: logger}, nil
}

// LoadGoldStandard reads the test cases from a JSON file holding a list.
func LoadGoldStandard(path string) ([]TestCase, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, helper.NewError("reading gold standard", err)
	}

	var cases []TestCase
	if err := json.Unmarshal(data, &cases); err != nil {
		return nil, helper.NewError("parsing gold standard", err)
	}
	return cases, nil
}

// RunAll runs every case and aggregates the report. A pipeline error
// fails the case instead of aborting the run.
func (r *Runner) RunAll(ctx context.Context) (*Report, error) {
	report := &Report{FailuresByCategory: map[string]int{}}

	for _, tc := range r.cases {
		if err := ctx.Err(); err != nil {
			return report, helper.NewError("qa run", err)
		}

		result := r.runOne(ctx, tc)
		report.Results = append(report.Results, result)
		report.Total++
		if result.Passed {
			report.Passed++
		} else {
			report.Failed++
			report.FailuresByCategory[tc.Category]++
			r.log.Warn(fmt.Sprintf("Testfall %v underkänt", tc.ID), slog.Any("failures", result.Failures))
		}
	}

	if report.Total > 0 {
		report.PassRate = float64(report.Passed) / float64(report.Total)
	}
	r.log.Info(fmt.Sprintf("QA klar: %d/%d godkända", report.Passed, report.Total))
	return report, nil
}

func (r *Runner) runOne(ctx context.Context, tc TestCase) CaseResult {
	result := CaseResult{ID: tc.ID, Query: tc.Query, Category: tc.Category}

	response, err := r.answerer.Query(ctx, tc.Query, nil)
	if err != nil {
		result.Failures = append(result.Failures, fmt.Sprintf("pipeline error: %v", err))
		return result
	}

	result.Failures = checkExpectations(tc.Expected, response)
	result.Passed = len(result.Failures) == 0
	return result
}

func checkExpectations(exp Expected, response *model.QueryResult) []string {
	var failures []string

	if response.Blocked != exp.Blocked {
		failures = append(failures, fmt.Sprintf("blocked: got %t, expected %t", response.Blocked, exp.Blocked))
	}
	if !exp.Blocked && response.LowConfidence != exp.LowConfidence {
		failures = append(failures, fmt.Sprintf("low_confidence: got %t, expected %t", response.LowConfidence, exp.LowConfidence))
	}

	if exp.AnswerLanguage == "sv" && !isProbablySwedish(response.Answer) {
		failures = append(failures, "answer_language: expected sv")
	}
	if exp.DisclaimerPresent && !exp.Blocked && !strings.Contains(response.Answer, "⚠️") {
		failures = append(failures, "disclaimer saknas i svaret")
	}

	for _, ref := range exp.MustContainRefs {
		if !anyContains(response.Sources, ref) {
			failures = append(failures, fmt.Sprintf("källreferens saknas: %s", ref))
		}
	}
	for _, forbidden := range exp.MustNotContain {
		if strings.Contains(response.Answer, forbidden) {
			failures = append(failures, fmt.Sprintf("förbjuden sträng i svar: %s", forbidden))
		}
	}

	if !exp.Blocked && !exp.LowConfidence {
		for _, sourceType := range exp.SourceTypesPresent {
			indicator, ok := sourceTypeIndicators[sourceType]
			if !ok {
				indicator = sourceType
			}
			if !anyContains(response.Sources, indicator) {
				failures = append(failures, fmt.Sprintf("source_type saknas: %s (letar efter %q i källorna)", sourceType, indicator))
			}
		}
	}

	return failures
}

func anyContains(values []string, substring string) bool {
	for _, value := range values {
		if strings.Contains(value, substring) {
			return true
		}
	}
	return false
}

// isProbablySwedish accepts text with Swedish function words or å/ä/ö.
func isProbablySwedish(text string) bool {
	tokens := wordRe.FindAllString(strings.ToLower(text), -1)
	if len(tokens) == 0 {
		return false
	}

	markerCount := 0
	for _, token := range tokens {
		if swedishMarkers[token] {
			markerCount++
		}
	}
	return markerCount >= 2 || strings.ContainsAny(strings.ToLower(text), "åäö")
}

// Categories lists the categories of the loaded cases, sorted.
func (r *Runner) Categories() []string {
	seen := map[string]bool{}
	var categories []string
	for _, tc := range r.cases {
		if !seen[tc.Category] {
			seen[tc.Category] = true
			categories = append(categories, tc.Category)
		}
	}
	sort.Strings(categories)
	return categories
}
