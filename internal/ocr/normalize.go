package ocr

import (
	"regexp"
	"strings"
)

// Normalizer fixes character-level artifacts Tesseract leaves in recognized
// text: ligature glyphs, typographic dashes, carriage returns, hyphenated
// line breaks, and diagnostic tokens the engine prints into its output.
// Whitespace layout is left untouched so later layout-sensitive filters
// still see the original spacing.
type Normalizer struct {
	reHyphenJoin     *regexp.Regexp
	reDiacriticsNote *regexp.Regexp
	reNoBestWords    *regexp.Regexp
	charReplacer     *strings.Replacer
}

// NewNormalizer creates a normalizer with all expressions precompiled.
func NewNormalizer() *Normalizer {
	return &Normalizer{
		reHyphenJoin: regexp.MustCompile(`([a-z])-\s*\n\s*([a-z])`),
		reDiacriticsNote: regexp.MustCompile(
			`(?i)\bdetected\s+\d+\s+diacritics\b`,
		),
		reNoBestWords: regexp.MustCompile(`(?i)no\s+best\s+words!+`),
		charReplacer: strings.NewReplacer(
			"ﬁ", "fi",
			"ﬂ", "fl",
			"ﬀ", "ff",
			"ﬃ", "ffi",
			"ﬄ", "ffl",
			"—", "--",
			"–", "--",
			"…", "...",
			"\r", "",
		),
	}
}

// Normalize applies character replacements, strips engine diagnostics, and
// rejoins words hyphenated across line breaks.
func (n *Normalizer) Normalize(text string) string {
	if text == "" {
		return text
	}

	text = n.charReplacer.Replace(text)
	text = n.reDiacriticsNote.ReplaceAllString(text, "")
	text = n.reNoBestWords.ReplaceAllString(text, "")

	return n.reHyphenJoin.ReplaceAllString(text, "$1$2")
}
