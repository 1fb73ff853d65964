package services

import (
	"context"
	"time"

	"cloud.google.com/go/storage"
	"github.com/Lllllllleong/documentexplorer/internal/models"
)

// The stages depend on these narrow interfaces rather than on the gcp and queue
// types directly, so tests can substitute in-memory fakes.

// ObjectStore reads uploaded objects.
type ObjectStore interface {
	Read(ctx context.Context, bucket, name string) ([]byte, error)
	Attrs(ctx context.Context, bucket, name string) (*storage.ObjectAttrs, error)
}

// RecordStore is the metadata table.
type RecordStore interface {
	Get(ctx context.Context, key models.DocumentKey) (*models.Document, error)
	Put(ctx context.Context, d *models.Document) error
	Update(ctx context.Context, key models.DocumentKey, fields map[string]interface{}) error
}

// TextDetector is the asynchronous OCR job service.
type TextDetector interface {
	StartTextDetection(ctx context.Context, bucket, name, mimeType string) (string, error)
	GetTextDetection(ctx context.Context, jobID string) (*models.OCRResult, error)
}

// PollQueue schedules delayed poll ticks.
type PollQueue interface {
	EnqueuePoll(ctx context.Context, msg *models.PollMessage, delay time.Duration) error
}

// TaskSignaler resumes a workflow step that waits on a continuation token.
type TaskSignaler interface {
	SendTaskSuccess(ctx context.Context, taskToken string, output *models.TextResponse) error
	SendTaskFailure(ctx context.Context, taskToken, errorName, cause string) error
}

// SignalLedger remembers which OCR jobs already reported their outcome.
type SignalLedger interface {
	Claim(ctx context.Context, jobID, outcome string) (bool, error)
	Release(ctx context.Context, jobID string) error
}

// KeyPhraseDetector returns key phrases in the service's order.
type KeyPhraseDetector interface {
	DetectKeyPhrases(ctx context.Context, text string) ([]string, error)
}

// LabelDetector returns image labels in the service's ranking order.
type LabelDetector interface {
	DetectLabels(ctx context.Context, bucket, name string, maxLabels int, minConfidence float32) ([]string, error)
}

// WorkflowLauncher starts one workflow execution per upload.
type WorkflowLauncher interface {
	Start(ctx context.Context, argument interface{}) (string, error)
}
