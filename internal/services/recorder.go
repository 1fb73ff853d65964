package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/Lllllllleong/documentexplorer/internal/models"
)

// RecordStoreFunction is the last workflow step. It stores the final summary, or
// logs the failure the workflow hands it when there is no file to attach it to.
type RecordStoreFunction struct {
	records RecordStore
}

func NewRecordStoreStage(ctx context.Context) (*RecordStoreFunction, error) {
	config, err := loadStoreConfig()
	if err != nil {
		return nil, err
	}
	records, err := newRecordStore(ctx, config)
	if err != nil {
		return nil, err
	}
	return NewRecordStoreStageWith(records), nil
}

// NewRecordStoreStageWith builds the function around an existing record store.
func NewRecordStoreStageWith(records RecordStore) *RecordStoreFunction {
	return &RecordStoreFunction{records: records}
}

func (f *RecordStoreFunction) Process(ctx context.Context, req *models.StoreRecordRequest) (*models.StatusResponse, error) {
	if req.Bucket == "" || req.Key == "" {
		slog.Error("Workflow failed without file context.", "workflowError", orDefault(req.Error, "Unknown"), "cause", orDefault(req.Cause, "No cause"))
		return &models.StatusResponse{StatusCode: 200, Message: "Error logged - no file context available"}, nil
	}
	logCtx := slog.With("bucket", req.Bucket, "key", req.Key)
	if req.Error != "" {
		logCtx.Error("Workflow failed for document.", "workflowError", req.Error, "cause", orDefault(req.Cause, "No cause"))
		return &models.StatusResponse{StatusCode: 200, Message: "Error logged"}, nil
	}

	key := models.DocumentKey{Name: req.Key, Bucket: req.Bucket}
	_, err := f.records.Get(ctx, key)
	switch {
	case errors.Is(err, models.ErrRecordNotFound):
		err = f.records.Put(ctx, &models.Document{Name: req.Key, Bucket: req.Bucket, Summary: req.Summary})
	case err != nil:
	case req.Summary != nil:
		err = f.records.Update(ctx, key, map[string]interface{}{models.FieldSummary: *req.Summary})
	}
	if err != nil {
		logCtx.Error("Failed to store record", "error", err)
		return &models.StatusResponse{StatusCode: 500, Error: err.Error()}, nil
	}
	logCtx.Info("Stored final record.")
	return &models.StatusResponse{StatusCode: 200, Message: "Data stored successfully"}, nil
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
