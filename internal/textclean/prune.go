// Package textclean normalizes raw extracted document text into plain prose
// suitable for chunking and retrieval. It prunes boilerplate surrounding the
// main content and applies an ordered sequence of noise filters.
package textclean

import "regexp"

const (
	// headSkipRunes is how much leading front matter (title, author list,
	// affiliations) is skipped when no content anchor is found. Counted in
	// characters so the cut never lands inside a multibyte rune.
	headSkipRunes = 1000
)

var (
	reAbstract     = regexp.MustCompile(`(?i)\babstract\b`)
	reIntroduction = regexp.MustCompile(`(?i)\b(1\.\s*)?introduction\b`)
	reTrailing     = regexp.MustCompile(`(?is)\b(references|acknowledgements|appendix)\b.*`)
)

// FindMainStart returns the suffix of text beginning at the main content.
// It anchors on the first case-insensitive "abstract", then on "introduction"
// (optionally preceded by a numbering token such as "1. Introduction"), and
// falls back to skipping the leading front matter. Inputs shorter than the
// skip window are returned whole.
func FindMainStart(text string) string {
	loc := reAbstract.FindStringIndex(text)
	if loc != nil {
		return text[loc[0]:]
	}

	loc = reIntroduction.FindStringIndex(text)
	if loc != nil {
		return text[loc[0]:]
	}

	runes := []rune(text)
	if len(runes) < headSkipRunes {
		return text
	}

	return string(runes[headSkipRunes:])
}

// TruncateTrailingSections removes everything from the first standalone
// "references", "acknowledgements" or "appendix" token through the end of the
// text, including the token itself.
func TruncateTrailingSections(text string) string {
	return reTrailing.ReplaceAllString(text, "")
}
