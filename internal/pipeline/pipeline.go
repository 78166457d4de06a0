// Package pipeline orchestrates the PDF → text → cleaning → output flow.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/book-expert/logger"

	"github.com/book-expert/pdf-clean-service/internal/ocr"
)

const (
	// File permissions.
	defaultFilePermission = 0o600
	defaultDirPermission  = 0o750

	// pageSeparator joins text-layer pages in the raw concatenation.
	pageSeparator = "\n\n"

	// outputSuffix is appended to the document basename for the artifact.
	outputSuffix = "_cleaned.txt"
)

// Document is an open input document. It supplies both collaborator
// capabilities: ordered per-page text and page rasterization.
type Document interface {
	ocr.PageRenderer

	Pages() []string
	IsImageBased(checkPages int) bool
	Close() error
}

// OpenFunc opens a document by path. Failures are per-document and never
// abort the batch.
type OpenFunc func(path string) (Document, error)

// OCRProcessor defines the OCR fallback for image-based documents.
type OCRProcessor interface {
	ProcessDocument(ctx context.Context, renderer ocr.PageRenderer) (string, error)
}

// TextCleaner defines the cleaning stage applied to raw extracted text.
type TextCleaner interface {
	Clean(text string) string
}

// Options holds the explicit pipeline parameters.
type Options struct {
	// CheckPages is how many leading pages decide the image-based
	// classification.
	CheckPages int

	// Workers is the number of documents processed concurrently.
	Workers int

	// SkipExisting short-circuits documents whose output file exists.
	SkipExisting bool

	// DocumentTimeout bounds one document's processing, OCR included.
	DocumentTimeout time.Duration
}

// Pipeline turns a directory of PDF files into cleaned text artifacts, one
// document at a time, with no shared state across documents.
type Pipeline struct {
	open         OpenFunc
	ocrProcessor OCRProcessor
	cleaner      TextCleaner
	logger       *logger.Logger
	options      Options
}

// ProcessingResult represents the outcome for a single document.
type ProcessingResult struct {
	ProcessedAt time.Time
	Error       error
	PDFPath     string
	OutputPath  string
	Success     bool
}

// New creates a processing pipeline.
func New(
	open OpenFunc,
	ocrProcessor OCRProcessor,
	cleaner TextCleaner,
	options Options,
	log *logger.Logger,
) *Pipeline {
	return &Pipeline{
		open:         open,
		ocrProcessor: ocrProcessor,
		cleaner:      cleaner,
		options:      options,
		logger:       log,
	}
}

// ProcessDirectory processes every PDF file under inputDir, writing one
// cleaned text file per document into outputDir. Per-document failures are
// logged and do not abort the batch.
func (p *Pipeline) ProcessDirectory(
	ctx context.Context,
	inputDir, outputDir string,
) error {
	startTime := time.Now()

	p.logger.Info(
		"Starting directory processing: input=%s output=%s workers=%d",
		inputDir,
		outputDir,
		p.options.Workers,
	)

	pdfFiles, err := p.findPDFFiles(inputDir)
	if err != nil {
		return fmt.Errorf("find PDF files: %w", err)
	}

	if len(pdfFiles) == 0 {
		p.logger.Info("No PDF files found in %s", inputDir)

		return nil
	}

	p.logger.Info("Found %d PDF files to process", len(pdfFiles))

	mkdirErr := os.MkdirAll(outputDir, defaultDirPermission)
	if mkdirErr != nil {
		return fmt.Errorf("create output directory: %w", mkdirErr)
	}

	results := p.processFilesParallel(ctx, pdfFiles, outputDir)

	p.reportResults(results, startTime)

	return nil
}

// ProcessFile processes a single PDF document and returns the path of the
// written artifact.
func (p *Pipeline) ProcessFile(
	ctx context.Context,
	pdfPath, outputDir string,
) (string, error) {
	outputPath := OutputPath(pdfPath, outputDir)

	if p.shouldSkipExistingFile(outputPath) {
		return outputPath, nil
	}

	if p.options.DocumentTimeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, p.options.DocumentTimeout)
		defer cancel()
	}

	rawText, err := p.extractRawText(ctx, pdfPath)
	if err != nil {
		return "", err
	}

	cleanedText := p.cleaner.Clean(rawText)

	err = p.writeOutput(outputPath, cleanedText)
	if err != nil {
		return "", fmt.Errorf("write output: %w", err)
	}

	return outputPath, nil
}

// OutputPath derives the artifact path for a document: the document basename
// without extension, suffixed with "_cleaned.txt", under outputDir.
func OutputPath(pdfPath, outputDir string) string {
	base := filepath.Base(pdfPath)
	name := strings.TrimSuffix(base, filepath.Ext(base))

	return filepath.Join(outputDir, name+outputSuffix)
}

// extractRawText classifies the document and produces its raw concatenated
// text, through OCR when the text layer is absent.
func (p *Pipeline) extractRawText(ctx context.Context, pdfPath string) (string, error) {
	document, err := p.open(pdfPath)
	if err != nil {
		return "", fmt.Errorf("open document: %w", err)
	}

	defer func() {
		closeErr := document.Close()
		if closeErr != nil {
			p.logger.Warn("Close %s: %v", filepath.Base(pdfPath), closeErr)
		}
	}()

	if document.IsImageBased(p.options.CheckPages) {
		p.logger.Info(
			"No text layer in %s, falling back to OCR",
			filepath.Base(pdfPath),
		)

		text, ocrErr := p.ocrProcessor.ProcessDocument(ctx, document)
		if ocrErr != nil {
			return "", fmt.Errorf("OCR fallback: %w", ocrErr)
		}

		return text, nil
	}

	return strings.Join(document.Pages(), pageSeparator), nil
}

// findPDFFiles recursively finds all PDF files under a directory.
func (p *Pipeline) findPDFFiles(dir string) ([]string, error) {
	var pdfFiles []string

	err := filepath.WalkDir(
		dir,
		func(path string, dirEntry os.DirEntry, err error) error {
			if err != nil {
				return err
			}

			if dirEntry.IsDir() {
				return nil
			}

			if isPDFFile(dirEntry.Name()) {
				pdfFiles = append(pdfFiles, path)
			}

			return nil
		},
	)
	if err != nil {
		return nil, fmt.Errorf("walking directory %s: %w", dir, err)
	}

	sort.Strings(pdfFiles)

	return pdfFiles, nil
}

// isPDFFile checks if a filename is a PDF file.
func isPDFFile(filename string) bool {
	return strings.HasSuffix(strings.ToLower(filename), ".pdf")
}

// processFilesParallel processes multiple documents using a worker pool.
func (p *Pipeline) processFilesParallel(
	ctx context.Context,
	pdfFiles []string,
	outputDir string,
) []ProcessingResult {
	jobs := make(chan string, len(pdfFiles))
	results := make(chan ProcessingResult, len(pdfFiles))

	var waitGroup sync.WaitGroup
	for range p.options.Workers {
		waitGroup.Add(1)

		go p.worker(ctx, &waitGroup, jobs, results, outputDir)
	}

	for _, pdfFile := range pdfFiles {
		jobs <- pdfFile
	}

	close(jobs)

	go func() {
		waitGroup.Wait()
		close(results)
	}()

	allResults := make([]ProcessingResult, 0, len(pdfFiles))
	for result := range results {
		allResults = append(allResults, result)
	}

	return allResults
}

// worker processes documents from the jobs channel until it is drained.
func (p *Pipeline) worker(
	ctx context.Context,
	waitGroup *sync.WaitGroup,
	jobs <-chan string,
	results chan<- ProcessingResult,
	outputDir string,
) {
	defer waitGroup.Done()

	for pdfPath := range jobs {
		select {
		case <-ctx.Done():
			results <- ProcessingResult{
				ProcessedAt: time.Now(),
				Error:       ctx.Err(),
				PDFPath:     pdfPath,
				OutputPath:  "",
				Success:     false,
			}

			return
		default:
		}

		result := ProcessingResult{
			ProcessedAt: time.Now(),
			Error:       nil,
			PDFPath:     pdfPath,
			OutputPath:  "",
			Success:     false,
		}

		outputPath, err := p.ProcessFile(ctx, pdfPath, outputDir)
		if err != nil {
			result.Error = err
		} else {
			result.OutputPath = outputPath
			result.Success = true

			p.logger.Info(
				"Successfully processed %s -> %s",
				filepath.Base(pdfPath),
				filepath.Base(outputPath),
			)
		}

		results <- result
	}
}

// shouldSkipExistingFile checks if an existing artifact short-circuits the
// document.
func (p *Pipeline) shouldSkipExistingFile(outputPath string) bool {
	if !p.options.SkipExisting {
		return false
	}

	_, err := os.Stat(outputPath)
	if err == nil {
		p.logger.Info("Skipping existing file: %s", filepath.Base(outputPath))

		return true
	}

	return false
}

// writeOutput writes the cleaned text, overwriting any previous artifact.
func (p *Pipeline) writeOutput(outputPath, text string) error {
	err := os.MkdirAll(filepath.Dir(outputPath), defaultDirPermission)
	if err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	err = os.WriteFile(outputPath, []byte(text), defaultFilePermission)
	if err != nil {
		return fmt.Errorf("write file: %w", err)
	}

	return nil
}

// reportResults logs summary statistics about the processing results.
func (p *Pipeline) reportResults(results []ProcessingResult, startTime time.Time) {
	duration := time.Since(startTime)

	successful := 0
	failed := 0

	for i := range results {
		result := &results[i]
		if result.Success {
			successful++

			continue
		}

		failed++

		if result.Error != nil {
			p.logger.Error(
				"Failed %s: %v",
				filepath.Base(result.PDFPath),
				result.Error,
			)
		}
	}

	p.logger.Success(
		"Processing complete: %d/%d successful, %d failed in %v",
		successful,
		len(results),
		failed,
		duration,
	)

	if successful > 0 {
		p.logger.Info(
			"Average time per successful file: %v",
			duration/time.Duration(successful),
		)
	}
}
