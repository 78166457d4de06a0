package textclean

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	// numericRunLimit is the run length at which consecutive numeric-like
	// lines are treated as a data block and suppressed in full.
	numericRunLimit = 3

	// numericRatioThreshold is the share of digit-like characters above
	// which a line counts as numeric-like.
	numericRatioThreshold = 0.5

	// tabularTabLimit is the tab count at which a line counts as tabular.
	tabularTabLimit = 2
)

var (
	// Author tokens use explicit Unicode classes because Go's \w and \b
	// are ASCII-only; accented names like "Müller" must still match in
	// full rather than leave a partial fragment behind.
	reBracketCitation = regexp.MustCompile(
		`\[\s*[\p{L}\p{N}_\-]+ et al\., \d{4}(;\s*[\p{L}\p{N}_\-]+ et al\., \d{4})*\s*\]`,
	)
	reBareCitation = regexp.MustCompile(
		`(^|[^\p{L}\p{N}_])[\p{L}\p{N}_]+ et al\.,? \d{4}\b`,
	)
	reEtAlFragment     = regexp.MustCompile(`\b[A-Z][a-z]+ et al\.\b`)
	reLink             = regexp.MustCompile(`http\S+|www\.\S+|doi:\S+`)
	reEmail            = regexp.MustCompile(`\S+@\S+`)
	reCaption          = regexp.MustCompile(`(Table|Figure|Fig\.)\s*\d+.*`)
	reNumericLine      = regexp.MustCompile(`^\s*[\d.,]+(\s+[\d.,%±]+)*\s*$`)
	reTabularGap       = regexp.MustCompile(`\s{3,}`)
	rePageMarker       = regexp.MustCompile(`(?i)\bPage \d+(\s+of \d+)?\b`)
	rePunctOnlyLine    = regexp.MustCompile(`(?m)^[\s.\-—_]{3,}$`)
	reBlankRun         = regexp.MustCompile(`\n{3,}`)
	reHorizontalSpaces = regexp.MustCompile(`[ \t]{2,}`)

	// Manuscript and journal boilerplate that repeats on every page of the
	// affected corpora. Matched through the end of the line.
	reBoilerplateLines = []*regexp.Regexp{
		regexp.MustCompile(`Author manuscript; available in PMC[^\n]*\n`),
		regexp.MustCompile(`J Autism Dev Disord[^\n]*\n`),
		regexp.MustCompile(`(?i)bioRxiv[^\n]*\n`),
		regexp.MustCompile(`(?i)medRxiv[^\n]*\n`),
		regexp.MustCompile(`(?i)Scientific Reports[^\n]*\n`),
		regexp.MustCompile(`(?i)Copyright[^\n]*\n`),
		regexp.MustCompile(`(?i)All rights reserved[^\n]*\n`),
	}
)

// RemoveCitations strips bracketed citation groups, then bare
// "Author et al., YEAR" occurrences, then lone "Author et al." fragments.
func RemoveCitations(text string) string {
	text = reBracketCitation.ReplaceAllString(text, "")
	// $1 restores the single boundary character consumed before the author
	// token.
	text = reBareCitation.ReplaceAllString(text, "$1")

	return reEtAlFragment.ReplaceAllString(text, "")
}

// RemoveLinks strips URL, www and DOI tokens, then email-like tokens.
func RemoveLinks(text string) string {
	text = reLink.ReplaceAllString(text, "")

	return reEmail.ReplaceAllString(text, "")
}

// RemoveCaptions strips table and figure captions from the keyword through
// the end of the line.
func RemoveCaptions(text string) string {
	return reCaption.ReplaceAllString(text, "")
}

// RemoveNumericBlocks drops runs of three or more consecutive numeric-like
// lines in full. Runs of one or two numeric-like lines are retained.
func RemoveNumericBlocks(text string) string {
	lines := strings.Split(text, "\n")
	kept := make([]string, 0, len(lines))

	var pending []string

	suppressing := false

	for _, line := range lines {
		if isNumericLike(line) {
			if suppressing {
				continue
			}

			pending = append(pending, line)
			if len(pending) >= numericRunLimit {
				pending = pending[:0]
				suppressing = true
			}

			continue
		}

		kept = append(kept, pending...)
		pending = pending[:0]
		suppressing = false

		kept = append(kept, line)
	}

	kept = append(kept, pending...)

	return strings.Join(kept, "\n")
}

// isNumericLike reports whether a line is dominated by digits and numeric
// punctuation, or consists of nothing else.
func isNumericLike(line string) bool {
	total := utf8.RuneCountInString(line)
	if total == 0 {
		return false
	}

	numeric := 0

	for _, char := range line {
		if unicode.IsDigit(char) || char == '.' || char == '%' || char == '±' {
			numeric++
		}
	}

	if float64(numeric)/float64(total) > numericRatioThreshold {
		return true
	}

	return reNumericLine.MatchString(line)
}

// RemoveTabularBlocks drops lines whose whitespace pattern indicates columnar
// layout: a run of three or more whitespace characters, or two or more tabs.
func RemoveTabularBlocks(text string) string {
	lines := strings.Split(text, "\n")
	kept := make([]string, 0, len(lines))

	for _, line := range lines {
		if reTabularGap.MatchString(line) ||
			strings.Count(line, "\t") >= tabularTabLimit {
			continue
		}

		kept = append(kept, line)
	}

	return strings.Join(kept, "\n")
}

// RemoveHeadersFooters strips page-number markers, known manuscript and
// journal boilerplate lines, and lines consisting solely of punctuation.
func RemoveHeadersFooters(text string) string {
	text = rePageMarker.ReplaceAllString(text, "")
	text = strings.ReplaceAll(text, "NIH-PA Author Manuscript", "")

	for _, pattern := range reBoilerplateLines {
		text = pattern.ReplaceAllString(text, "")
	}

	return rePunctOnlyLine.ReplaceAllString(text, "")
}

// CollapseDuplicateLines drops any line whose trimmed form equals the trimmed
// form of the immediately preceding original line. Only adjacent duplicates
// collapse; repeats elsewhere in the document are preserved.
func CollapseDuplicateLines(text string) string {
	lines := strings.Split(text, "\n")
	kept := make([]string, 0, len(lines))

	previous := ""

	for _, line := range lines {
		if strings.TrimSpace(line) != strings.TrimSpace(previous) {
			kept = append(kept, line)
		}

		previous = line
	}

	return strings.Join(kept, "\n")
}

// NormalizeWhitespace collapses runs of three or more newlines to two, runs
// of horizontal whitespace to a single space, and trims the result.
func NormalizeWhitespace(text string) string {
	text = reBlankRun.ReplaceAllString(text, "\n\n")
	text = reHorizontalSpaces.ReplaceAllString(text, " ")

	return strings.TrimSpace(text)
}
