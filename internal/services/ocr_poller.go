package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/Lllllllleong/documentexplorer/internal/extract"
	"github.com/Lllllllleong/documentexplorer/internal/gcp"
	"github.com/Lllllllleong/documentexplorer/internal/models"
	"github.com/Lllllllleong/documentexplorer/internal/queue"
	"go.uber.org/multierr"
)

// Error categories reported to the workflow when an OCR step fails.
const (
	ErrorOCRFailed      = "OCRFailed"
	ErrorPollingError   = "PollingError"
	ErrorPollingTimeout = "PollingTimeout"
)

// UnknownOCRError is the failure cause when the OCR service gives no status message.
const UnknownOCRError = "Unknown error"

// OCRPollerConfig bounds the poll loop. MaxPolls of 0 polls until the workflow's own
// timeout fires.
type OCRPollerConfig struct {
	PollDelay time.Duration
	MaxPolls  int
}

// OCRPoller handles one poll tick per queue delivery: it checks the job once and
// either reports the outcome to the workflow or schedules the next tick.
type OCRPoller struct {
	detector TextDetector
	records  RecordStore
	queue    PollQueue
	signaler TaskSignaler
	ledger   SignalLedger
	config   OCRPollerConfig
	closers  []io.Closer
}

// OCRPollerDeps are the clients an OCRPoller works with.
type OCRPollerDeps struct {
	Detector TextDetector
	Records  RecordStore
	Queue    PollQueue
	Signaler TaskSignaler
	Ledger   SignalLedger
}

// NewOCRPoller creates the poller and every client it owns from the environment.
func NewOCRPoller(ctx context.Context) (*OCRPoller, error) {
	storeConfig, err := loadStoreConfig()
	if err != nil {
		return nil, err
	}
	docAIConfig, err := loadDocumentAIConfig()
	if err != nil {
		return nil, err
	}
	endpoint, err := gcp.RequireEnv("QUEUE_ENDPOINT")
	if err != nil {
		return nil, err
	}
	pollDelay, err := gcp.DurationEnv("OCR_POLL_DELAY", 10*time.Second)
	if err != nil {
		return nil, err
	}
	maxPolls, err := gcp.IntEnv("OCR_MAX_POLLS", 180)
	if err != nil {
		return nil, err
	}

	objects, err := gcp.NewObjectStore(ctx)
	if err != nil {
		return nil, err
	}
	detector, err := gcp.NewDocumentAIClient(ctx, docAIConfig, objects)
	if err != nil {
		return nil, err
	}
	firestoreClient, err := gcp.NewFirestoreClient(ctx, storeConfig.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to create firestore client: %w", err)
	}
	pollQueue, err := queue.NewClient(endpoint)
	if err != nil {
		return nil, err
	}
	signaler, err := gcp.NewCallbackSignaler(ctx)
	if err != nil {
		return nil, err
	}

	p := NewOCRPollerWith(OCRPollerDeps{
		Detector: detector,
		Records:  gcp.NewRecordStore(firestoreClient, storeConfig.CollectionName),
		Queue:    pollQueue,
		Signaler: signaler,
		Ledger:   gcp.NewSignalLedger(firestoreClient, signalCollection(storeConfig.CollectionName)),
	}, OCRPollerConfig{PollDelay: pollDelay, MaxPolls: maxPolls})
	p.closers = []io.Closer{pollQueue, detector, firestoreClient, objects}
	return p, nil
}

// NewOCRPollerWith builds the poller around existing clients.
func NewOCRPollerWith(deps OCRPollerDeps, config OCRPollerConfig) *OCRPoller {
	return &OCRPoller{
		detector: deps.Detector,
		records:  deps.Records,
		queue:    deps.Queue,
		signaler: deps.Signaler,
		ledger:   deps.Ledger,
		config:   config,
	}
}

// Config returns the poll loop bounds in effect.
func (p *OCRPoller) Config() OCRPollerConfig {
	return p.config
}

// HandlePoll runs one tick for msg. It only returns an error when the outcome could not
// be delivered anywhere: neither a callback nor a re-enqueued poll.
func (p *OCRPoller) HandlePoll(ctx context.Context, msg *models.PollMessage) error {
	logCtx := slog.With("jobId", msg.JobID, "bucket", msg.Bucket, "key", msg.Key, "attempt", msg.Attempt)

	result, err := p.detector.GetTextDetection(ctx, msg.JobID)
	if err != nil {
		logCtx.Error("Failed to check OCR job status", "error", err)
		return p.fail(ctx, logCtx, msg, ErrorPollingError, err.Error())
	}

	switch result.Status {
	case models.OCRSucceeded:
		return p.succeed(ctx, logCtx, msg, result)
	case models.OCRFailed:
		cause := result.StatusMessage
		if cause == "" {
			cause = UnknownOCRError
		}
		logCtx.Warn("OCR job failed.", "cause", cause)
		return p.fail(ctx, logCtx, msg, ErrorOCRFailed, cause)
	}

	if p.config.MaxPolls > 0 && msg.Attempt+1 >= p.config.MaxPolls {
		cause := fmt.Sprintf("OCR job still %s after %d status checks", result.Status, msg.Attempt+1)
		logCtx.Warn("Giving up on OCR job.", "status", result.Status)
		return p.fail(ctx, logCtx, msg, ErrorPollingTimeout, cause)
	}

	next := *msg
	next.Attempt++
	if err := p.queue.EnqueuePoll(ctx, &next, p.config.PollDelay); err != nil {
		logCtx.Error("Failed to re-enqueue poll", "error", err)
		return p.fail(ctx, logCtx, msg, ErrorPollingError, err.Error())
	}
	logCtx.Info("OCR job not finished, poll re-enqueued.", "status", result.Status, "delay", p.config.PollDelay.String())
	return nil
}

func (p *OCRPoller) succeed(ctx context.Context, logCtx *slog.Logger, msg *models.PollMessage, result *models.OCRResult) error {
	text := ocrPlaintext(result.Lines)
	output := &models.TextResponse{Bucket: msg.Bucket, Key: msg.Key, WordCount: extract.WordCount(text)}

	// Plaintext is written under the claim, so a redelivered tick writes nothing.
	delivered, err := p.signal(ctx, logCtx, msg, models.CallbackSuccess, func(ctx context.Context) error {
		if err := p.records.Update(ctx, msg.DocumentKey(), map[string]interface{}{models.FieldPlaintext: text}); err != nil {
			logCtx.Error("Failed to store OCR plaintext", "error", err)
			return err
		}
		return p.signaler.SendTaskSuccess(ctx, msg.TaskToken, output)
	})
	if err != nil {
		return p.fail(ctx, logCtx, msg, ErrorPollingError, err.Error())
	}
	if delivered {
		logCtx.Info("OCR job succeeded, workflow resumed.", "lines", len(result.Lines), "wordCount", output.WordCount)
	}
	return nil
}

func (p *OCRPoller) fail(ctx context.Context, logCtx *slog.Logger, msg *models.PollMessage, errorName, cause string) error {
	_, err := p.signal(ctx, logCtx, msg, models.CallbackFailure+":"+errorName, func(ctx context.Context) error {
		return p.signaler.SendTaskFailure(ctx, msg.TaskToken, errorName, cause)
	})
	if err != nil {
		return fmt.Errorf("could not report %s for job %s: %w", errorName, msg.JobID, err)
	}
	return nil
}

// signal runs deliver at most once per job. A job already claimed in the ledger was
// reported by an earlier delivery and is dropped. When the claim cannot be recorded
// deliver runs anyway; when deliver fails the claim is released so a later attempt
// can report.
func (p *OCRPoller) signal(ctx context.Context, logCtx *slog.Logger, msg *models.PollMessage, outcome string, deliver func(context.Context) error) (bool, error) {
	claimed, claimErr := p.ledger.Claim(ctx, msg.JobID, outcome)
	if claimErr != nil {
		logCtx.Warn("Could not record signal claim, signalling anyway.", "error", claimErr)
	} else if !claimed {
		logCtx.Info("Outcome already reported for this job, dropping redelivered poll.")
		return false, nil
	}

	if err := deliver(ctx); err != nil {
		logCtx.Error("Failed to report outcome", "outcome", outcome, "error", err)
		if claimErr == nil {
			if rerr := p.ledger.Release(ctx, msg.JobID); rerr != nil {
				logCtx.Error("Failed to release signal claim", "error", rerr)
			}
		}
		return false, err
	}
	return true, nil
}

// Close releases the clients created by NewOCRPoller.
func (p *OCRPoller) Close() error {
	var err error
	for _, c := range p.closers {
		err = multierr.Append(err, c.Close())
	}
	return err
}

// ocrPlaintext joins detected lines one per line and trims the result.
func ocrPlaintext(lines []string) string {
	var b strings.Builder
	for _, line := range lines {
		b.WriteString(line)
		b.WriteString("\n")
	}
	return strings.TrimSpace(b.String())
}
