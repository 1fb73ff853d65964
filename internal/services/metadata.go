package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/Lllllllleong/documentexplorer/internal/extract"
	"github.com/Lllllllleong/documentexplorer/internal/gcp"
	"github.com/Lllllllleong/documentexplorer/internal/models"
)

// MetadataFunction records the file attributes of a new upload and decides which
// extraction path the workflow takes.
type MetadataFunction struct {
	objects ObjectStore
	records RecordStore
	now     func() time.Time
}

func NewMetadataExtractor(ctx context.Context) (*MetadataFunction, error) {
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
	return NewMetadataExtractorWith(objects, records), nil
}

// NewMetadataExtractorWith builds the function around existing clients.
func NewMetadataExtractorWith(objects ObjectStore, records RecordStore) *MetadataFunction {
	return &MetadataFunction{objects: objects, records: records, now: time.Now}
}

func (f *MetadataFunction) Process(ctx context.Context, req *models.StageRequest) (*models.MetadataResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	logCtx := slog.With("bucket", req.Bucket, "key", req.Key)
	res := &models.MetadataResponse{Bucket: req.Bucket, Key: req.Key}

	attrs, err := f.objects.Attrs(ctx, req.Bucket, req.Key)
	if err != nil {
		logCtx.Error("Failed to read object attributes", "error", err)
		res.Error = err.Error()
		return res, nil
	}

	fileType := extract.FileType(req.Key)
	fields := map[string]interface{}{
		models.FieldFileType:     fileType,
		models.FieldFileSize:     attrs.Size,
		models.FieldTimeUploaded: f.now().UTC().Format(models.TimeUploadedLayout),
	}
	if err := f.records.Update(ctx, req.DocumentKey(), fields); err != nil {
		logCtx.Error("Failed to store file metadata", "error", err)
		res.Error = err.Error()
		return res, nil
	}

	res.Metadata = "stored"
	res.FileType = fileType
	res.Route = string(extract.RouteFor(fileType))
	logCtx.Info("Stored file metadata.", "fileType", fileType, "fileSize", attrs.Size, "route", res.Route)
	return res, nil
}
