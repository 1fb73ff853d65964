package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Lllllllleong/documentexplorer/internal/extract"
	"github.com/Lllllllleong/documentexplorer/internal/gcp"
	"github.com/Lllllllleong/documentexplorer/internal/models"
)

// Label detection parameters.
const (
	MaxLabels          = 10
	MinLabelConfidence = float32(0.70)
	SummaryLabels      = 5
)

// NoLabelsText is written as Plaintext when an image yields no labels.
const NoLabelsText = "No objects detected"

// LabelFunction describes an image by its labels. It always writes Plaintext, even
// when detection fails, since nothing else will extract text for images.
type LabelFunction struct {
	labels  LabelDetector
	records RecordStore
}

func NewLabelDetector(ctx context.Context) (*LabelFunction, error) {
	config, err := loadStoreConfig()
	if err != nil {
		return nil, err
	}
	records, err := newRecordStore(ctx, config)
	if err != nil {
		return nil, err
	}
	visionClient, err := gcp.NewVisionClient(ctx)
	if err != nil {
		return nil, err
	}
	return NewLabelDetectorWith(visionClient, records), nil
}

// NewLabelDetectorWith builds the function around existing clients.
func NewLabelDetectorWith(labels LabelDetector, records RecordStore) *LabelFunction {
	return &LabelFunction{labels: labels, records: records}
}

func (f *LabelFunction) Process(ctx context.Context, req *models.StageRequest) (*models.TextResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	logCtx := slog.With("bucket", req.Bucket, "key", req.Key)
	res := &models.TextResponse{Bucket: req.Bucket, Key: req.Key}

	var plaintext string
	names, err := f.labels.DetectLabels(ctx, req.Bucket, req.Key, MaxLabels, MinLabelConfidence)
	if err != nil {
		logCtx.Error("Label detection failed", "error", err)
		plaintext = fmt.Sprintf("Error detecting objects: %v", err)
	} else {
		plaintext = labelText(names)
		res.WordCount = extract.WordCount(plaintext)
	}

	if err := f.records.Update(ctx, req.DocumentKey(), map[string]interface{}{models.FieldPlaintext: plaintext}); err != nil {
		logCtx.Error("Failed to store labels", "error", err)
		res.Error = err.Error()
		res.WordCount = 0
		return res, nil
	}
	logCtx.Info("Stored image labels.", "labels", len(names))
	return res, nil
}

func labelText(names []string) string {
	if len(names) > SummaryLabels {
		names = names[:SummaryLabels]
	}
	if len(names) == 0 {
		return NoLabelsText
	}
	return strings.Join(names, ", ")
}
