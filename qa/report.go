package qa

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"
)

// WriteReport renders a run report for the terminal.
func WriteReport(w io.Writer, report *Report) {
	fmt.Fprintln(w, "§AI QA — golden standard")
	fmt.Fprintln(w, strings.Repeat("=", 24))
	fmt.Fprintf(w, "Kör %d testfall mot pipelinen...\n\n", report.Total)

	for _, result := range report.Results {
		label := fmt.Sprintf("%s [%s]", result.ID, result.Category)
		if result.Passed {
			fmt.Fprintf(w, "%-30s %s\n", label, color.GreenString("PASS"))
		} else {
			fmt.Fprintf(w, "%-30s %s — %s\n", label, color.RedString("FAIL"), strings.Join(result.Failures, "; "))
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "SAMMANFATTNING")
	fmt.Fprintln(w, strings.Repeat("=", 24))
	fmt.Fprintf(w, "Totalt:    %d\n", report.Total)
	fmt.Fprintf(w, "Godkänt:   %d (%.1f%%)\n", report.Passed, report.PassRate*100)
	fmt.Fprintf(w, "Underkänt: %d\n", report.Failed)

	if len(report.FailuresByCategory) > 0 {
		fmt.Fprintln(w, "\nMisslyckanden per kategori:")
		for _, category := range sortedKeys(report.FailuresByCategory) {
			fmt.Fprintf(w, "  %s: %d\n", category, report.FailuresByCategory[category])
		}
	}
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
