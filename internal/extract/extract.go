// Package extract reads PDF documents: per-page text from the text layer,
// image-based classification, and page rasterization for the OCR fallback.
package extract

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/gen2brain/go-fitz"
)

var (
	// ErrDocumentUnreadable indicates that the input cannot be opened or
	// parsed as a PDF document.
	ErrDocumentUnreadable = errors.New("document unreadable")
	// ErrInvalidExtension indicates that the file does not have a .pdf extension.
	ErrInvalidExtension = errors.New("file must have .pdf extension")
	// ErrPathIsDirectory indicates that the provided path is a directory, not a file.
	ErrPathIsDirectory = errors.New("path is a directory")
	// ErrFileEmpty indicates that the file is empty.
	ErrFileEmpty = errors.New("file is empty")
)

// Document is an open, immutable handle to a PDF file.
type Document struct {
	doc  *fitz.Document
	path string
}

// Open validates and opens a PDF document. All failures wrap
// ErrDocumentUnreadable so callers can isolate bad documents without
// aborting a batch.
func Open(path string) (*Document, error) {
	err := validatePath(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDocumentUnreadable, err)
	}

	doc, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", ErrDocumentUnreadable, path, err)
	}

	return &Document{doc: doc, path: path}, nil
}

// validatePath checks that the path points at a readable, non-empty PDF file.
func validatePath(path string) error {
	if !strings.HasSuffix(strings.ToLower(path), ".pdf") {
		return fmt.Errorf("%s: %w", path, ErrInvalidExtension)
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("access file: %w", err)
	}

	if info.IsDir() {
		return fmt.Errorf("%s: %w", path, ErrPathIsDirectory)
	}

	if info.Size() == 0 {
		return fmt.Errorf("%s: %w", path, ErrFileEmpty)
	}

	return nil
}

// Close releases the underlying document handle.
func (d *Document) Close() error {
	err := d.doc.Close()
	if err != nil {
		return fmt.Errorf("close %s: %w", d.path, err)
	}

	return nil
}

// Path returns the filesystem path the document was opened from.
func (d *Document) Path() string {
	return d.path
}

// PageCount returns the number of pages in the document.
func (d *Document) PageCount() int {
	return d.doc.NumPage()
}

// Pages returns the ordered per-page text of the document. Pages whose text
// layer is missing or unreadable contribute an empty entry; no page is
// dropped, so order and count are preserved.
func (d *Document) Pages() []string {
	pages := make([]string, 0, d.doc.NumPage())

	for pageNumber := range d.doc.NumPage() {
		text, err := d.doc.Text(pageNumber)
		if err != nil {
			text = ""
		}

		pages = append(pages, text)
	}

	return pages
}

// IsImageBased inspects up to the first checkPages pages and reports whether
// every inspected page yields empty or whitespace-only text. Documents with
// no extractable text layer must go through the OCR fallback.
func (d *Document) IsImageBased(checkPages int) bool {
	inspect := min(d.doc.NumPage(), checkPages)

	pages := make([]string, 0, inspect)

	for pageNumber := range inspect {
		text, err := d.doc.Text(pageNumber)
		if err != nil {
			text = ""
		}

		pages = append(pages, text)
	}

	return AllWhitespace(pages)
}

// RenderPNG rasterizes a single zero-based page to PNG bytes at the given
// resolution.
func (d *Document) RenderPNG(pageNumber int, dpi float64) ([]byte, error) {
	data, err := d.doc.ImagePNG(pageNumber, dpi)
	if err != nil {
		return nil, fmt.Errorf("render page %d of %s: %w", pageNumber+1, d.path, err)
	}

	return data, nil
}

// AllWhitespace reports whether every page text is empty or whitespace-only.
func AllWhitespace(pages []string) bool {
	for _, page := range pages {
		if strings.TrimSpace(page) != "" {
			return false
		}
	}

	return true
}
