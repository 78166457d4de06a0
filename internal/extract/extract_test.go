package extract_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/book-expert/pdf-clean-service/internal/extract"
)

func TestOpen_RejectsNonPDFExtension(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "document.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0o600))

	_, err := extract.Open(path)

	require.ErrorIs(t, err, extract.ErrDocumentUnreadable)
	require.ErrorIs(t, err, extract.ErrInvalidExtension)
}

func TestOpen_RejectsMissingFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "missing.pdf")

	_, err := extract.Open(path)

	require.ErrorIs(t, err, extract.ErrDocumentUnreadable)
}

func TestOpen_RejectsDirectory(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "dir.pdf")
	require.NoError(t, os.Mkdir(path, 0o750))

	_, err := extract.Open(path)

	require.ErrorIs(t, err, extract.ErrDocumentUnreadable)
	require.ErrorIs(t, err, extract.ErrPathIsDirectory)
}

func TestOpen_RejectsEmptyFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "empty.pdf")
	require.NoError(t, os.WriteFile(path, nil, 0o600))

	_, err := extract.Open(path)

	require.ErrorIs(t, err, extract.ErrDocumentUnreadable)
	require.ErrorIs(t, err, extract.ErrFileEmpty)
}

func TestOpen_RejectsUnparsableFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "garbage.pdf")
	require.NoError(t, os.WriteFile(path, []byte("not a pdf at all"), 0o600))

	_, err := extract.Open(path)

	require.ErrorIs(t, err, extract.ErrDocumentUnreadable)
}

func TestAllWhitespace(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		pages    []string
		expected bool
	}{
		{
			name:     "no pages",
			pages:    nil,
			expected: true,
		},
		{
			name:     "empty and whitespace pages",
			pages:    []string{"", "   ", "\n\t"},
			expected: true,
		},
		{
			name:     "any non-empty page",
			pages:    []string{"", "some text", ""},
			expected: false,
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			result := extract.AllWhitespace(testCase.pages)
			require.Equal(t, testCase.expected, result)
		})
	}
}
