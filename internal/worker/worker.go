// Package worker provides a NATS worker for event-driven document cleaning.
package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/book-expert/logger"
	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"github.com/book-expert/pdf-clean-service/internal/events"
)

const (
	// NatsConnectTimeoutSeconds defines the timeout for NATS connection attempts.
	NatsConnectTimeoutSeconds = 10
	// NatsMaxReconnectAttempts defines the maximum number of reconnect attempts.
	NatsMaxReconnectAttempts = 5
	// NatsFetchMaxWaitSeconds defines the maximum wait during a fetch operation.
	NatsFetchMaxWaitSeconds = 5

	tempFilePermission = 0o600
)

// Pipeline defines the document-cleaning logic the worker drives.
type Pipeline interface {
	ProcessFile(ctx context.Context, pdfPath, outputDir string) (string, error)
}

// Config holds the worker's NATS wiring.
type Config struct {
	URL               string
	StreamName        string
	Subject           string
	Consumer          string
	OutputSubject     string
	DeadLetterSubject string
	PDFBucket         string
	TextBucket        string
}

// NatsWorker consumes PDF-created events, cleans each document, stores the
// resulting text, and publishes a cleaned event.
type NatsWorker struct {
	jetstream nats.JetStreamContext
	pdfStore  nats.ObjectStore
	textStore nats.ObjectStore
	pipeline  Pipeline
	nc        *nats.Conn
	logger    *logger.Logger
	config    Config
}

// New connects to NATS, binds the object stores, and returns a worker ready
// to run.
func New(config Config, pipeline Pipeline, log *logger.Logger) (*NatsWorker, error) {
	natsConn, err := nats.Connect(
		config.URL,
		nats.Timeout(NatsConnectTimeoutSeconds*time.Second),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(NatsMaxReconnectAttempts),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}

	log.Info("Connected to NATS server at %s", config.URL)

	jetstream, err := natsConn.JetStream()
	if err != nil {
		natsConn.Close()

		return nil, fmt.Errorf("get JetStream context: %w", err)
	}

	_, streamInfoErr := jetstream.StreamInfo(config.StreamName)
	if streamInfoErr != nil {
		natsConn.Close()

		return nil, fmt.Errorf(
			"stream '%s' not found: %w",
			config.StreamName,
			streamInfoErr,
		)
	}

	pdfStore, err := jetstream.ObjectStore(config.PDFBucket)
	if err != nil {
		natsConn.Close()

		return nil, fmt.Errorf(
			"bind object store '%s': %w",
			config.PDFBucket,
			err,
		)
	}

	textStore, err := jetstream.ObjectStore(config.TextBucket)
	if err != nil {
		natsConn.Close()

		return nil, fmt.Errorf(
			"bind object store '%s': %w",
			config.TextBucket,
			err,
		)
	}

	return &NatsWorker{
		nc:        natsConn,
		jetstream: jetstream,
		pdfStore:  pdfStore,
		textStore: textStore,
		pipeline:  pipeline,
		logger:    log,
		config:    config,
	}, nil
}

// Run starts the worker's message processing loop.
func (w *NatsWorker) Run(ctx context.Context) error {
	sub, err := w.jetstream.PullSubscribe(
		w.config.Subject,
		w.config.Consumer,
		nats.BindStream(w.config.StreamName),
	)
	if err != nil {
		return fmt.Errorf("pull subscribe: %w", err)
	}

	w.logger.Info("Consumer '%s' is ready.", w.config.Consumer)
	w.logger.Info("Worker is running, listening for jobs on '%s'...", w.config.Subject)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Context canceled, worker shutting down.")

			return nil
		default:
			msgs, err := sub.Fetch(
				1,
				nats.MaxWait(NatsFetchMaxWaitSeconds*time.Second),
			)
			if err != nil {
				if errors.Is(err, nats.ErrTimeout) {
					continue // No messages, just loop again.
				}

				w.logger.Error("Fetch messages: %v", err)

				continue
			}

			if len(msgs) > 0 {
				w.handleMsg(ctx, msgs[0])
			}
		}
	}
}

// Close drains the NATS connection.
func (w *NatsWorker) Close() {
	w.nc.Close()
}

func (w *NatsWorker) handleMsg(ctx context.Context, msg *nats.Msg) {
	startTime := time.Now()

	var event events.PDFCreatedEvent

	err := json.Unmarshal(msg.Data, &event)
	if err != nil {
		w.discardMalformedMessage(msg, err)

		return
	}

	w.logger.Info("Processing job for object: %s", event.PDFKey)

	textKey, processErr := w.cleanAndPublish(ctx, &event)
	if processErr != nil {
		w.handlePipelineError(msg, event.PDFKey, processErr)

		return
	}

	w.logger.Success(
		"Cleaned %s and published TextCleanedEvent with TextKey %s in %s",
		event.PDFKey, textKey, time.Since(startTime),
	)

	ackErr := msg.Ack()
	if ackErr != nil {
		w.logger.Error(
			"failed to acknowledge successful message for object %s: %v",
			event.PDFKey,
			ackErr,
		)
	}
}

// cleanAndPublish downloads the PDF, runs the cleaning pipeline on it, uploads
// the cleaned text, and publishes the resulting event.
func (w *NatsWorker) cleanAndPublish(
	ctx context.Context,
	event *events.PDFCreatedEvent,
) (string, error) {
	workDir, err := os.MkdirTemp("", "pdf-clean-job-*")
	if err != nil {
		return "", fmt.Errorf("create work directory: %w", err)
	}

	defer func() {
		removeErr := os.RemoveAll(workDir)
		if removeErr != nil {
			w.logger.Warn("failed to remove work directory: %v", removeErr)
		}
	}()

	pdfPath, err := w.downloadPDF(event.PDFKey, workDir)
	if err != nil {
		return "", err
	}

	outputPath, err := w.pipeline.ProcessFile(ctx, pdfPath, workDir)
	if err != nil {
		return "", fmt.Errorf("pipeline failed for '%s': %w", event.PDFKey, err)
	}

	cleanedText, err := os.ReadFile(outputPath)
	if err != nil {
		return "", fmt.Errorf("read cleaned artifact: %w", err)
	}

	textKey := fmt.Sprintf(
		"%s/%s/cleaned_%s.txt",
		event.Header.TenantID,
		event.Header.WorkflowID,
		uuid.NewString(),
	)

	_, uploadErr := w.textStore.PutBytes(textKey, cleanedText)
	if uploadErr != nil {
		return "", fmt.Errorf(
			"upload cleaned text to object store: %w",
			uploadErr,
		)
	}

	cleanedEvent := events.TextCleanedEvent{
		Header:  event.Header,
		PDFKey:  event.PDFKey,
		TextKey: textKey,
	}

	eventJSON, marshalErr := json.Marshal(cleanedEvent)
	if marshalErr != nil {
		return "", fmt.Errorf("marshal TextCleanedEvent: %w", marshalErr)
	}

	_, publishErr := w.jetstream.Publish(w.config.OutputSubject, eventJSON)
	if publishErr != nil {
		return "", fmt.Errorf("publish TextCleanedEvent: %w", publishErr)
	}

	return textKey, nil
}

// downloadPDF fetches the PDF object into the job's work directory.
func (w *NatsWorker) downloadPDF(pdfKey, workDir string) (string, error) {
	object, err := w.pdfStore.Get(pdfKey)
	if err != nil {
		return "", fmt.Errorf(
			"get PDF '%s' from object store: %w",
			pdfKey,
			err,
		)
	}

	defer func() {
		closeErr := object.Close()
		if closeErr != nil {
			w.logger.Error("failed to close object reader: %v", closeErr)
		}
	}()

	data, err := io.ReadAll(object)
	if err != nil {
		return "", fmt.Errorf("read PDF data for '%s': %w", pdfKey, err)
	}

	pdfPath := filepath.Join(workDir, filepath.Base(pdfKey))
	if filepath.Ext(pdfPath) == "" {
		pdfPath += ".pdf"
	}

	err = os.WriteFile(pdfPath, data, tempFilePermission)
	if err != nil {
		return "", fmt.Errorf("write PDF to work directory: %w", err)
	}

	return pdfPath, nil
}

func (w *NatsWorker) discardMalformedMessage(msg *nats.Msg, unmarshalErr error) {
	w.logger.Error(
		"Failed to unmarshal PDFCreatedEvent: %v. Acknowledging to discard.",
		unmarshalErr,
	)

	ackErr := msg.Ack()
	if ackErr != nil {
		w.logger.Error("failed to acknowledge message: %v", ackErr)
	}
}

func (w *NatsWorker) handlePipelineError(msg *nats.Msg, objectID string, pipelineErr error) {
	w.logger.Error("Pipeline failed for '%s': %v", objectID, pipelineErr)

	_, pubErr := w.jetstream.Publish(w.config.DeadLetterSubject, msg.Data)
	if pubErr != nil {
		w.logger.Error(
			"Failed to publish message to dead-letter subject for object %s: %v",
			objectID,
			pubErr,
		)
	}

	ackErr := msg.Ack()
	if ackErr != nil {
		w.logger.Error(
			"failed to acknowledge failed message for object %s: %v",
			objectID,
			ackErr,
		)
	}
}
