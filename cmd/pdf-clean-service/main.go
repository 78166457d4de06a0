// ./cmd/pdf-clean-service/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/book-expert/logger"
	"github.com/joho/godotenv"

	"github.com/book-expert/pdf-clean-service/internal/config"
	"github.com/book-expert/pdf-clean-service/internal/extract"
	"github.com/book-expert/pdf-clean-service/internal/ocr"
	"github.com/book-expert/pdf-clean-service/internal/pipeline"
	"github.com/book-expert/pdf-clean-service/internal/textclean"
	"github.com/book-expert/pdf-clean-service/internal/worker"
)

const shutdownGracePeriod = 2 * time.Second

func main() {
	// A temporary logger for the bootstrap process.
	log, err := logger.New(os.TempDir(), "pdf-clean-bootstrap.log")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create bootstrap logger: %v\n", err)
		os.Exit(1)
	}

	// Secrets and the NATS URL may come from a local .env file.
	_ = godotenv.Load()

	configPath := ""
	if len(os.Args) > 1 {
		configPath = os.Args[1]
	}

	cfg, err := config.Load(configPath, log)
	if err != nil {
		log.Fatal("Failed to load configuration: %v", err)
	}

	err = cfg.Validate()
	if err != nil {
		log.Fatal("Invalid configuration: %v", err)
	}

	// Initialize the final logger based on the loaded configuration.
	log, err = logger.New(cfg.Paths.LogDir, "pdf-clean-service.log")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create final logger: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	mainPipeline := buildPipeline(cfg, log)

	if cfg.WorkerModeEnabled() {
		runWorkerMode(ctx, cancel, sigChan, cfg, mainPipeline, log)

		return
	}

	runBatchMode(ctx, cancel, sigChan, cfg, mainPipeline, log)
}

// buildPipeline wires the document reader, the OCR fallback and the cleaner
// into a processing pipeline.
func buildPipeline(cfg *config.Config, log *logger.Logger) *pipeline.Pipeline {
	ocrProcessor := ocr.NewProcessor(ocr.TesseractConfig{
		Language:       cfg.Tesseract.Language,
		OEM:            cfg.Tesseract.OEM,
		PSM:            cfg.Tesseract.PSM,
		DPI:            cfg.Tesseract.DPI,
		TimeoutSeconds: cfg.Tesseract.TimeoutSeconds,
	}, log)

	openDocument := func(path string) (pipeline.Document, error) {
		return extract.Open(path)
	}

	options := pipeline.Options{
		CheckPages:   cfg.Extractor.CheckPages,
		Workers:      cfg.Pipeline.Workers,
		SkipExisting: cfg.Pipeline.SkipExisting,
		DocumentTimeout: time.Duration(
			cfg.Pipeline.DocumentTimeoutSeconds,
		) * time.Second,
	}

	return pipeline.New(
		openDocument,
		ocrProcessor,
		textclean.NewCleaner(),
		options,
		log,
	)
}

// runBatchMode processes the configured input directory once and exits.
func runBatchMode(
	ctx context.Context,
	cancel context.CancelFunc,
	sigChan chan os.Signal,
	cfg *config.Config,
	mainPipeline *pipeline.Pipeline,
	log *logger.Logger,
) {
	go func() {
		<-sigChan
		log.Info("Shutdown signal received, canceling batch...")
		cancel()
	}()

	err := mainPipeline.ProcessDirectory(
		ctx,
		cfg.Paths.InputDir,
		cfg.Paths.OutputDir,
	)
	if err != nil {
		log.Fatal("Batch processing failed: %v", err)
	}
}

// runWorkerMode consumes document events from NATS until shut down.
func runWorkerMode(
	ctx context.Context,
	cancel context.CancelFunc,
	sigChan chan os.Signal,
	cfg *config.Config,
	mainPipeline *pipeline.Pipeline,
	log *logger.Logger,
) {
	natsWorker, err := worker.New(worker.Config{
		URL:               cfg.NATS.URL,
		StreamName:        cfg.NATS.Consumer.Stream,
		Subject:           cfg.NATS.Consumer.Subject,
		Consumer:          cfg.NATS.Consumer.Durable,
		OutputSubject:     cfg.NATS.Producer.Subject,
		DeadLetterSubject: cfg.NATS.DLQSubject,
		PDFBucket:         cfg.NATS.ObjectStore.PDFBucket,
		TextBucket:        cfg.NATS.ObjectStore.TextBucket,
	}, mainPipeline, log)
	if err != nil {
		log.Fatal("Failed to initialize NATS worker: %v", err)
	}
	defer natsWorker.Close()

	go func() {
		log.Info("Starting NATS worker...")

		runErr := natsWorker.Run(ctx)
		if runErr != nil {
			log.Error("NATS worker stopped with error: %v", runErr)
			cancel()
		}
	}()

	<-sigChan
	log.Info("Shutdown signal received, gracefully shutting down...")
	cancel()
	time.Sleep(shutdownGracePeriod)
	log.Info("Shutdown complete.")
}
