// Package ocr recovers text from image-based PDF documents by rasterizing
// pages and running the Tesseract OCR engine on each one.
package ocr

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/book-expert/logger"
)

const retryPSM = "6"

var (
	// ErrNoPages indicates that the document has no pages to rasterize.
	ErrNoPages = errors.New("document has no pages")
	// ErrOCRResultEmpty indicates that OCR produced no text for any page.
	ErrOCRResultEmpty = errors.New("empty OCR result")
)

// PageRenderer provides rasterized pages at a requested resolution. It is the
// only capability the OCR fallback needs from the document reader.
type PageRenderer interface {
	PageCount() int
	RenderPNG(pageNumber int, dpi float64) ([]byte, error)
}

// TesseractConfig holds configuration parameters for the Tesseract OCR engine.
type TesseractConfig struct {
	// Language specifies the OCR language model to use (e.g., "eng", "fra").
	// Multiple languages can be specified with "+" separator.
	Language string

	// OEM (OCR Engine Mode) controls which OCR engine to use:
	// 0 = Legacy engine only
	// 1 = Neural nets LSTM engine only
	// 2 = Legacy + LSTM engines
	// 3 = Default (based on what is available)
	OEM int

	// PSM (Page Segmentation Mode) determines how Tesseract segments the page.
	PSM int

	// DPI is the resolution pages are rasterized and recognized at.
	// Common values: 150 (fast), 300 (standard), 600 (high quality)
	DPI int

	// TimeoutSeconds bounds OCR processing per page image.
	TimeoutSeconds int
}

// Processor runs Tesseract over rasterized PDF pages.
//
// All recognition is performed by the external tesseract binary, which must
// be installed and accessible via PATH. Recognition failures on individual
// pages degrade to empty text for that page; only a document with no
// recoverable text at all is an error.
type Processor struct {
	logger     *logger.Logger
	normalizer *Normalizer
	config     TesseractConfig
}

// NewProcessor creates a new Tesseract OCR processor with the specified
// configuration.
func NewProcessor(config TesseractConfig, log *logger.Logger) *Processor {
	return &Processor{
		config:     config,
		normalizer: NewNormalizer(),
		logger:     log,
	}
}

// ProcessDocument rasterizes every page of the document at the configured
// DPI, recognizes each page, and returns the page texts concatenated in page
// order, each prefixed with a "--- Page N ---" marker (1-based) so page
// boundaries survive downstream processing.
func (p *Processor) ProcessDocument(
	ctx context.Context,
	renderer PageRenderer,
) (string, error) {
	pageCount := renderer.PageCount()
	if pageCount == 0 {
		return "", ErrNoPages
	}

	var builder strings.Builder

	recognized := false

	for pageNumber := range pageCount {
		text, err := p.processPage(ctx, renderer, pageNumber)
		if err != nil {
			if ctx.Err() != nil {
				return "", fmt.Errorf("OCR canceled: %w", ctx.Err())
			}

			p.logger.Warn(
				"OCR failed for page %d, keeping empty text: %v",
				pageNumber+1,
				err,
			)

			text = ""
		}

		if strings.TrimSpace(text) != "" {
			recognized = true
		}

		builder.WriteString(pageMarker(pageNumber + 1))
		builder.WriteString(text)
	}

	if !recognized {
		return "", fmt.Errorf("no page produced text: %w", ErrOCRResultEmpty)
	}

	return builder.String(), nil
}

// processPage rasterizes and recognizes a single page.
func (p *Processor) processPage(
	ctx context.Context,
	renderer PageRenderer,
	pageNumber int,
) (string, error) {
	data, err := renderer.RenderPNG(pageNumber, float64(p.config.DPI))
	if err != nil {
		return "", fmt.Errorf("rasterize: %w", err)
	}

	imagePath, cleanup, err := writeTempImage(data)
	if err != nil {
		return "", fmt.Errorf("write page image: %w", err)
	}
	defer cleanup()

	text, err := p.runTesseract(ctx, imagePath, strconv.Itoa(p.config.PSM))
	if err != nil {
		return "", fmt.Errorf("run tesseract: %w", err)
	}

	return p.normalizer.Normalize(text), nil
}

// pageMarker renders the literal page boundary marker for a 1-based page.
func pageMarker(pageNumber int) string {
	return fmt.Sprintf("\n\n--- Page %d ---\n\n", pageNumber)
}

// writeTempImage persists PNG bytes to a temporary file for the tesseract
// binary and returns the path together with a cleanup function.
func writeTempImage(data []byte) (string, func(), error) {
	file, err := os.CreateTemp("", "ocr-page-*.png")
	if err != nil {
		return "", nil, fmt.Errorf("create temp file: %w", err)
	}

	path := file.Name()

	_, writeErr := file.Write(data)
	closeErr := file.Close()

	if writeErr != nil || closeErr != nil {
		_ = os.Remove(path)

		return "", nil, fmt.Errorf(
			"write temp file: %w",
			errors.Join(writeErr, closeErr),
		)
	}

	cleanup := func() { _ = os.Remove(path) }

	return path, cleanup, nil
}

// runTesseract executes Tesseract OCR on the specified PNG file.
func (p *Processor) runTesseract(
	ctx context.Context,
	imagePath, psm string,
) (string, error) {
	timeout := time.Duration(p.config.TimeoutSeconds) * time.Second

	tesseractCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cleanedPath := filepath.Clean(imagePath)

	cmd := exec.CommandContext(tesseractCtx, "tesseract")
	cmd.Args = append(cmd.Args, cleanedPath)
	cmd.Args = append(cmd.Args, "stdout")
	cmd.Args = append(cmd.Args, "-l", p.config.Language)
	cmd.Args = append(cmd.Args, "--dpi", strconv.Itoa(p.config.DPI))
	cmd.Args = append(cmd.Args, "--oem", strconv.Itoa(p.config.OEM))
	cmd.Args = append(cmd.Args, "--psm", psm)

	// Limit threading so parallel document workers do not oversubscribe.
	cmd.Env = append(os.Environ(),
		"OMP_NUM_THREADS=1",
		"OPENBLAS_NUM_THREADS=1",
		"MKL_NUM_THREADS=1",
		"NUMEXPR_NUM_THREADS=1",
	)

	var stdout, stderr bytes.Buffer

	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err != nil {
		// Retry once with a more permissive PSM on timeout.
		if errors.Is(tesseractCtx.Err(), context.DeadlineExceeded) &&
			psm != retryPSM {
			p.logger.Warn(
				"Tesseract timeout for %s, retrying with PSM=%s",
				filepath.Base(imagePath),
				retryPSM,
			)

			return p.runTesseract(ctx, imagePath, retryPSM)
		}

		return "", fmt.Errorf(
			"tesseract execution failed: %w (stderr: %s)",
			err,
			stderr.String(),
		)
	}

	return stdout.String(), nil
}
