// Package config loads and validates the service configuration from a TOML
// file. The core pipeline receives every parameter explicitly; nothing in
// this package reads ambient environment state.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/book-expert/logger"
	"github.com/pelletier/go-toml/v2"
)

// DefaultConfigFilename is the config file looked up when no path is given.
const DefaultConfigFilename = "project.toml"

const (
	defaultCheckPages     = 3
	defaultDPI            = 300
	defaultOEM            = 3
	defaultPSM            = 3
	defaultOCRTimeout     = 120
	defaultWorkers        = 4
	defaultDocTimeoutSecs = 600
	defaultLanguage       = "eng"
)

var (
	// ErrMissingInputDir indicates that [paths].input_dir is not set.
	ErrMissingInputDir = errors.New("paths.input_dir is required")
	// ErrMissingOutputDir indicates that [paths].output_dir is not set.
	ErrMissingOutputDir = errors.New("paths.output_dir is required")
	// ErrInvalidWorkers indicates a non-positive worker count.
	ErrInvalidWorkers = errors.New("pipeline.workers must be positive")
	// ErrInvalidDPI indicates a non-positive rasterization resolution.
	ErrInvalidDPI = errors.New("tesseract.dpi must be positive")
)

// Config is the root of the TOML configuration.
type Config struct {
	Paths     PathsSettings     `toml:"paths"`
	Extractor ExtractorSettings `toml:"extractor"`
	Tesseract TesseractSettings `toml:"tesseract"`
	Pipeline  PipelineSettings  `toml:"pipeline"`
	NATS      NATSSettings      `toml:"nats"`
}

// PathsSettings locates the input corpus, the output directory and the logs.
type PathsSettings struct {
	InputDir  string `toml:"input_dir"`
	OutputDir string `toml:"output_dir"`
	LogDir    string `toml:"log_dir"`
}

// ExtractorSettings controls document classification.
type ExtractorSettings struct {
	// CheckPages is how many leading pages are inspected when deciding
	// whether a document has a usable text layer.
	CheckPages int `toml:"check_pages"`
}

// TesseractSettings configures the OCR fallback.
type TesseractSettings struct {
	Language       string `toml:"language"`
	OEM            int    `toml:"oem"`
	PSM            int    `toml:"psm"`
	DPI            int    `toml:"dpi"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// PipelineSettings controls batch processing behavior.
type PipelineSettings struct {
	Workers                int  `toml:"workers"`
	SkipExisting           bool `toml:"skip_existing"`
	DocumentTimeoutSeconds int  `toml:"document_timeout_seconds"`
}

// NATSSettings configures the optional event-driven mode. An empty URL
// disables it.
type NATSSettings struct {
	URL         string              `toml:"url"`
	DLQSubject  string              `toml:"dlq_subject"`
	Consumer    ConsumerSettings    `toml:"consumer"`
	Producer    ProducerSettings    `toml:"producer"`
	ObjectStore ObjectStoreSettings `toml:"object_store"`
}

// ConsumerSettings binds the worker to its JetStream consumer.
type ConsumerSettings struct {
	Stream  string `toml:"stream"`
	Subject string `toml:"subject"`
	Durable string `toml:"durable"`
}

// ProducerSettings names the subject cleaned-text events are published to.
type ProducerSettings struct {
	Subject string `toml:"subject"`
}

// ObjectStoreSettings names the buckets PDFs are read from and cleaned text
// is written to.
type ObjectStoreSettings struct {
	PDFBucket  string `toml:"pdf_bucket"`
	TextBucket string `toml:"text_bucket"`
}

// Load reads and decodes the TOML configuration, applying defaults for
// optional fields.
func Load(filePath string, loggerInstance *logger.Logger) (*Config, error) {
	if filePath == "" {
		filePath = DefaultConfigFilename
	}

	configFile, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open config file '%s': %w", filePath, err)
	}

	defer func() {
		closeErr := configFile.Close()
		if closeErr != nil && loggerInstance != nil {
			loggerInstance.Warn("Failed to close config file: %v", closeErr)
		}
	}()

	var configuration Config

	decoder := toml.NewDecoder(configFile)

	err = decoder.Decode(&configuration)
	if err != nil {
		return nil, fmt.Errorf("decode TOML configuration: %w", err)
	}

	configuration.applyDefaults()

	return &configuration, nil
}

// applyDefaults fills optional fields that were left unset.
func (c *Config) applyDefaults() {
	if c.Extractor.CheckPages <= 0 {
		c.Extractor.CheckPages = defaultCheckPages
	}

	if c.Tesseract.Language == "" {
		c.Tesseract.Language = defaultLanguage
	}

	if c.Tesseract.OEM <= 0 {
		c.Tesseract.OEM = defaultOEM
	}

	if c.Tesseract.PSM <= 0 {
		c.Tesseract.PSM = defaultPSM
	}

	if c.Tesseract.DPI == 0 {
		c.Tesseract.DPI = defaultDPI
	}

	if c.Tesseract.TimeoutSeconds <= 0 {
		c.Tesseract.TimeoutSeconds = defaultOCRTimeout
	}

	if c.Pipeline.Workers == 0 {
		c.Pipeline.Workers = defaultWorkers
	}

	if c.Pipeline.DocumentTimeoutSeconds <= 0 {
		c.Pipeline.DocumentTimeoutSeconds = defaultDocTimeoutSecs
	}
}

// Validate checks the fields the pipeline cannot run without.
func (c *Config) Validate() error {
	if c.Paths.InputDir == "" {
		return ErrMissingInputDir
	}

	if c.Paths.OutputDir == "" {
		return ErrMissingOutputDir
	}

	if c.Pipeline.Workers <= 0 {
		return ErrInvalidWorkers
	}

	if c.Tesseract.DPI <= 0 {
		return ErrInvalidDPI
	}

	return nil
}

// WorkerModeEnabled reports whether the event-driven NATS mode is configured.
func (c *Config) WorkerModeEnabled() bool {
	return c.NATS.URL != ""
}

// GetLogFilePath returns the path of a log file under the configured log
// directory.
func (c *Config) GetLogFilePath(filename string) string {
	return filepath.Join(c.Paths.LogDir, filename)
}
