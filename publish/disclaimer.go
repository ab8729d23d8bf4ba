package publish

import (
	"fmt"
	"strings"
	"time"
)

const (
	disclaimerTemplate = "⚠️ *Detta är juridisk information, inte juridisk rådgivning. " +
		"Kontrollera alltid mot primärkällan. Uppdaterad per %s.*"
	sourcesTemplate     = "*Källor: %s*"
	disclaimerSeparator = "\n\n---\n"
)

// DisclaimerInjector appends the fixed legal disclaimer to every answer.
type DisclaimerInjector struct {
	now func() time.Time
}

func NewDisclaimerInjector() *DisclaimerInjector {
	return &DisclaimerInjector{now: time.Now}
}

// Inject appends the disclaimer footnote to an answer. An empty date uses
// today. An answer that already ends in a "---" rule gets the disclaimer
// body attached to that rule instead of a second one.
func (d *DisclaimerInjector) Inject(text string, sources []string, date string) string {
	if date == "" {
		date = d.now().Format("2006-01-02")
	}

	lines := []string{fmt.Sprintf(disclaimerTemplate, date)}
	if len(sources) > 0 {
		lines = append(lines, fmt.Sprintf(sourcesTemplate, strings.Join(sources, " · ")))
	}
	body := strings.Join(lines, "\n")

	if text == "" {
		return "---\n" + body
	}
	if strings.HasSuffix(strings.TrimRight(text, " \t\n"), "---") {
		return strings.TrimRight(text, " \t\n") + "\n" + body
	}
	return text + disclaimerSeparator + body
}
