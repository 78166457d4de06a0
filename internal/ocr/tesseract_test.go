package ocr_test

import (
	"context"
	"errors"
	"testing"

	"github.com/book-expert/logger"
	"github.com/stretchr/testify/require"

	"github.com/book-expert/pdf-clean-service/internal/ocr"
)

var errRender = errors.New("render error")

// mockRenderer is a mock implementation of the PageRenderer interface.
type mockRenderer struct {
	pages     int
	renderErr error
}

func (m *mockRenderer) PageCount() int {
	return m.pages
}

func (m *mockRenderer) RenderPNG(_ int, _ float64) ([]byte, error) {
	if m.renderErr != nil {
		return nil, m.renderErr
	}

	return []byte("png-bytes"), nil
}

func newTestLogger(t *testing.T) *logger.Logger {
	t.Helper()

	log, err := logger.New(t.TempDir(), "test.log")
	require.NoError(t, err)

	return log
}

func newTestProcessor(t *testing.T) *ocr.Processor {
	t.Helper()

	cfg := ocr.TesseractConfig{
		Language:       "eng",
		OEM:            3,
		PSM:            3,
		DPI:            300,
		TimeoutSeconds: 5,
	}

	return ocr.NewProcessor(cfg, newTestLogger(t))
}

func TestProcessDocument_NoPages(t *testing.T) {
	t.Parallel()

	processor := newTestProcessor(t)

	_, err := processor.ProcessDocument(context.Background(), &mockRenderer{pages: 0})

	require.ErrorIs(t, err, ocr.ErrNoPages)
}

func TestProcessDocument_AllPagesFailRendering(t *testing.T) {
	t.Parallel()

	processor := newTestProcessor(t)
	renderer := &mockRenderer{pages: 2, renderErr: errRender}

	_, err := processor.ProcessDocument(context.Background(), renderer)

	require.ErrorIs(t, err, ocr.ErrOCRResultEmpty)
}

func TestProcessDocument_CanceledContext(t *testing.T) {
	t.Parallel()

	processor := newTestProcessor(t)
	renderer := &mockRenderer{pages: 1}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := processor.ProcessDocument(ctx, renderer)

	require.Error(t, err)
	require.ErrorIs(t, err, context.Canceled)
}

func TestNormalizer(t *testing.T) {
	t.Parallel()

	normalizer := ocr.NewNormalizer()

	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "empty input returns empty",
			input:    "",
			expected: "",
		},
		{
			name:     "ligatures unfolded",
			input:    "ﬁle ﬂow traﬃc",
			expected: "file flow traffic",
		},
		{
			name:     "typographic dashes and ellipsis normalized",
			input:    "one—two–three…",
			expected: "one--two--three...",
		},
		{
			name:     "carriage returns removed",
			input:    "line one\r\nline two",
			expected: "line one\nline two",
		},
		{
			name:     "hyphenated line break rejoined",
			input:    "infor-\n mation",
			expected: "information",
		},
		{
			name:     "diacritics diagnostic stripped",
			input:    "before Detected 12 diacritics after",
			expected: "before  after",
		},
		{
			name:     "no best words diagnostic stripped",
			input:    "before no best words!! after",
			expected: "before  after",
		},
		{
			name:     "spacing is otherwise preserved",
			input:    "col1   col2",
			expected: "col1   col2",
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			result := normalizer.Normalize(testCase.input)
			require.Equal(t, testCase.expected, result)
		})
	}
}
