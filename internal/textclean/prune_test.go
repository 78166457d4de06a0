package textclean_test

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/require"

	"github.com/book-expert/pdf-clean-service/internal/textclean"
)

func TestFindMainStart(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "anchors on abstract with original casing preserved",
			input:    "Journal of Examples junk Abstract real content",
			expected: "Abstract real content",
		},
		{
			name:     "anchors on lowercase abstract",
			input:    "title page abstract follows here",
			expected: "abstract follows here",
		},
		{
			name:     "falls back to numbered introduction",
			input:    "title and authors 1. Introduction begins here",
			expected: "1. Introduction begins here",
		},
		{
			name:     "falls back to bare introduction",
			input:    "title and authors Introduction begins here",
			expected: "Introduction begins here",
		},
		{
			name:     "short input without anchors is returned whole",
			input:    "no anchors at all in this text",
			expected: "no anchors at all in this text",
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			result := textclean.FindMainStart(testCase.input)
			require.Equal(t, testCase.expected, result)
		})
	}
}

func TestFindMainStart_LongInputWithoutAnchors(t *testing.T) {
	t.Parallel()

	head := strings.Repeat("x", 1000)
	tail := "the remaining body"

	result := textclean.FindMainStart(head + tail)
	require.Equal(t, tail, result)
}

func TestFindMainStart_SkipWindowCountsCharacters(t *testing.T) {
	t.Parallel()

	// 600 two-byte runes: under the character window even though the byte
	// length exceeds it, so the text comes back whole.
	short := strings.Repeat("é", 600)
	require.Equal(t, short, textclean.FindMainStart(short))

	// Three-byte runes: the window boundary must land between runes so the
	// suffix stays valid UTF-8.
	long := strings.Repeat("✓", 1200)
	result := textclean.FindMainStart(long)
	require.True(t, utf8.ValidString(result))
	require.Equal(t, strings.Repeat("✓", 200), result)
}

func TestTruncateTrailingSections(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "removes references through end of text",
			input:    "body text References [1] Smith 2020",
			expected: "body text ",
		},
		{
			name:     "removes acknowledgements case-insensitively",
			input:    "body text\nACKNOWLEDGEMENTS\nWe thank everyone.",
			expected: "body text\n",
		},
		{
			name:     "removes appendix across newlines",
			input:    "body\nAppendix A\nextra tables\nmore",
			expected: "body\n",
		},
		{
			name:     "ignores tokens inside longer words",
			input:    "the appendixes of the book",
			expected: "the appendixes of the book",
		},
		{
			name:     "no trailing section leaves text unchanged",
			input:    "just body text here",
			expected: "just body text here",
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			result := textclean.TruncateTrailingSections(testCase.input)
			require.Equal(t, testCase.expected, result)
		})
	}
}
