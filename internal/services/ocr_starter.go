package services

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Lllllllleong/documentexplorer/internal/extract"
	"github.com/Lllllllleong/documentexplorer/internal/gcp"
	"github.com/Lllllllleong/documentexplorer/internal/models"
	"github.com/Lllllllleong/documentexplorer/internal/queue"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// OCRStarterConfig holds configuration for the ocr-starter function.
type OCRStarterConfig struct {
	PollDelay time.Duration
	// MaxPages rejects larger PDFs before a job is submitted. 0 disables the check.
	MaxPages int
}

// OCRStarterFunction submits OCR jobs and schedules their first poll.
type OCRStarterFunction struct {
	objects  ObjectStore
	detector TextDetector
	queue    PollQueue
	config   OCRStarterConfig
}

func NewOCRStarter(ctx context.Context) (*OCRStarterFunction, error) {
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
	maxPages, err := gcp.IntEnv("OCR_MAX_PAGES", 500)
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
	pollQueue, err := queue.NewClient(endpoint)
	if err != nil {
		return nil, err
	}

	slog.Info("OCR starter initialized.", "processorId", docAIConfig.ProcessorID, "pollDelay", pollDelay.String())
	return NewOCRStarterWith(objects, detector, pollQueue, OCRStarterConfig{PollDelay: pollDelay, MaxPages: maxPages}), nil
}

// NewOCRStarterWith builds the function around existing clients.
func NewOCRStarterWith(objects ObjectStore, detector TextDetector, pollQueue PollQueue, config OCRStarterConfig) *OCRStarterFunction {
	return &OCRStarterFunction{objects: objects, detector: detector, queue: pollQueue, config: config}
}

// loadDocumentAIConfig reads the processor settings shared by the starter and poller.
func loadDocumentAIConfig() (gcp.DocumentAIConfig, error) {
	projectID, err := gcp.RequireEnv("PROJECT_ID")
	if err != nil {
		return gcp.DocumentAIConfig{}, err
	}
	processorID, err := gcp.RequireEnv("DOCUMENTAI_PROCESSOR_ID")
	if err != nil {
		return gcp.DocumentAIConfig{}, err
	}
	outputBucket, err := gcp.RequireEnv("OCR_OUTPUT_BUCKET")
	if err != nil {
		return gcp.DocumentAIConfig{}, err
	}
	return gcp.DocumentAIConfig{
		ProjectID:    projectID,
		Location:     gcp.GetEnv("DOCUMENTAI_LOCATION", "us"),
		ProcessorID:  processorID,
		OutputBucket: outputBucket,
		OutputPrefix: gcp.GetEnv("OCR_OUTPUT_PREFIX", "ocr-output"),
	}, nil
}

// Process starts the job and returns without waiting for it. The continuation token
// travels with the poll message and is only used once the job is terminal.
func (f *OCRStarterFunction) Process(ctx context.Context, req *models.StartOCRRequest) (*models.StartOCRResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	logCtx := slog.With("bucket", req.Bucket, "key", req.Key)
	res := &models.StartOCRResponse{Bucket: req.Bucket, Key: req.Key}

	fileType := extract.FileType(req.Key)
	mimeType, ok := extract.OCRMIMEType(fileType)
	if !ok {
		res.Error = fmt.Sprintf("file type %q cannot be sent to OCR", fileType)
		logCtx.Warn("Rejected OCR request.", "fileType", fileType)
		return res, nil
	}
	if fileType == "pdf" && f.config.MaxPages > 0 {
		if err := f.checkPageCount(ctx, req); err != nil {
			logCtx.Error("PDF pre-flight failed", "error", err)
			res.Error = err.Error()
			return res, nil
		}
	}

	jobID, err := f.detector.StartTextDetection(ctx, req.Bucket, req.Key, mimeType)
	if err != nil {
		logCtx.Error("Failed to start OCR job", "error", err)
		res.Error = err.Error()
		return res, nil
	}
	logCtx = logCtx.With("jobId", jobID)

	msg := &models.PollMessage{JobID: jobID, Bucket: req.Bucket, Key: req.Key, TaskToken: req.TaskToken}
	if err := f.queue.EnqueuePoll(ctx, msg, f.config.PollDelay); err != nil {
		logCtx.Error("Failed to enqueue first poll", "error", err)
		res.Error = err.Error()
		return res, nil
	}

	res.JobID = jobID
	logCtx.Info("OCR job submitted.", "mimeType", mimeType)
	return res, nil
}

func (f *OCRStarterFunction) checkPageCount(ctx context.Context, req *models.StartOCRRequest) error {
	content, err := f.objects.Read(ctx, req.Bucket, req.Key)
	if err != nil {
		return err
	}
	pageCount, err := pdfPageCount(content)
	if err != nil {
		return fmt.Errorf("failed to read PDF: %w", err)
	}
	if pageCount > f.config.MaxPages {
		return fmt.Errorf("PDF has %d pages, the OCR limit is %d", pageCount, f.config.MaxPages)
	}
	return nil
}

func pdfPageCount(content []byte) (int, error) {
	cfg := model.NewDefaultConfiguration()
	cfg.ValidationMode = model.ValidationRelaxed
	return api.PageCount(bytes.NewReader(content), cfg)
}
