package services

import (
	"context"
	"log/slog"
	"strings"

	"github.com/Lllllllleong/documentexplorer/internal/extract"
	"github.com/Lllllllleong/documentexplorer/internal/gcp"
	"github.com/Lllllllleong/documentexplorer/internal/models"
)

// ExtractorFunction turns a text-like object into Plaintext.
type ExtractorFunction struct {
	objects ObjectStore
	records RecordStore
}

func NewTextExtractor(ctx context.Context) (*ExtractorFunction, error) {
	config, err := loadStoreConfig()
	if err != nil {
		return nil, err
	}
	objects, err := gcp.NewObjectStore(ctx)
	if err != nil {
		return nil, err
	}
	records, err := newRecordStore(ctx, config)
	if err != nil {
		return nil, err
	}
	return NewTextExtractorWith(objects, records), nil
}

// NewTextExtractorWith builds the function around existing clients.
func NewTextExtractorWith(objects ObjectStore, records RecordStore) *ExtractorFunction {
	return &ExtractorFunction{objects: objects, records: records}
}

// Process writes the extracted text to the record before returning its word count.
// Read and write failures leave Plaintext unset and are reported in the response.
func (f *ExtractorFunction) Process(ctx context.Context, req *models.StageRequest) (*models.TextResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	logCtx := slog.With("bucket", req.Bucket, "key", req.Key)
	res := &models.TextResponse{Bucket: req.Bucket, Key: req.Key}

	content, err := f.objects.Read(ctx, req.Bucket, req.Key)
	if err != nil {
		logCtx.Error("Failed to read object", "error", err)
		res.Error = err.Error()
		return res, nil
	}

	text := strings.TrimSpace(extract.Extract(req.Key, content))
	if err := f.records.Update(ctx, req.DocumentKey(), map[string]interface{}{models.FieldPlaintext: text}); err != nil {
		logCtx.Error("Failed to store plaintext", "error", err)
		res.Error = err.Error()
		return res, nil
	}

	res.WordCount = extract.WordCount(text)
	logCtx.Info("Stored plaintext.", "bytes", len(content), "wordCount", res.WordCount)
	return res, nil
}
