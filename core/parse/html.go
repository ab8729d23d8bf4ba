package parse

import (
	"html"
	"regexp"
	"strings"
)

// Shared rule-based HTML helpers. The Riksdagen corpus is old, hand-edited
// HTML; a lenient tag stripper over regular expressions holds up better here
// than a strict parser, and every strategy can be tested in isolation.

var (
	scriptStyleRe = regexp.MustCompile(`(?is)<(script|style)[^>]*>.*?</(script|style)>`)
	commentRe     = regexp.MustCompile(`(?s)<!--.*?-->`)
	blockCloseRe  = regexp.MustCompile(`(?i)</?(p|div|h1|h2|h3|h4|h5|h6|li|tr|table|br)\b[^>]*>`)
	anyTagRe      = regexp.MustCompile(`(?s)<[^>]*>`)
	spaceRunRe    = regexp.MustCompile(`[ \t\x{00a0}]+`)
	blankLineRe   = regexp.MustCompile(`\n\s*\n+`)

	tableRe = regexp.MustCompile(`(?is)<table\b.*?</table>`)
	rowRe   = regexp.MustCompile(`(?is)<tr\b.*?</tr>`)
	cellRe  = regexp.MustCompile(`(?is)<t[dh]\b[^>]*>(.*?)</t[dh]>`)
)

// visibleText strips markup and returns plain text with block boundaries
// rendered as newlines.
func visibleText(htmlText string) string {
	s := scriptStyleRe.ReplaceAllString(htmlText, " ")
	s = commentRe.ReplaceAllString(s, " ")
	s = blockCloseRe.ReplaceAllString(s, "\n")
	s = anyTagRe.ReplaceAllString(s, " ")
	s = html.UnescapeString(s)
	s = spaceRunRe.ReplaceAllString(s, " ")

	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	s = strings.Join(lines, "\n")
	return strings.TrimSpace(blankLineRe.ReplaceAllString(s, "\n\n"))
}

// inlineText strips markup without inserting line breaks, for headings and
// table cells.
func inlineText(htmlText string) string {
	s := anyTagRe.ReplaceAllString(htmlText, " ")
	s = html.UnescapeString(s)
	return strings.TrimSpace(spaceRunRe.ReplaceAllString(s, " "))
}

// flattenTable renders an HTML table as pipe-separated rows.
func flattenTable(tableHTML string) string {
	var rows []string
	for _, row := range rowRe.FindAllString(tableHTML, -1) {
		var cells []string
		for _, cell := range cellRe.FindAllStringSubmatch(row, -1) {
			cells = append(cells, inlineText(cell[1]))
		}
		if len(cells) > 0 {
			rows = append(rows, strings.Join(cells, " | "))
		}
	}
	return strings.Join(rows, "\n")
}
