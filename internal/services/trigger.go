package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Lllllllleong/documentexplorer/internal/gcp"
	"github.com/Lllllllleong/documentexplorer/internal/models"
)

type PipelineTriggerConfig struct {
	ProjectID        string
	WorkflowID       string
	WorkflowLocation string
	// IgnorePrefix is where OCR results are written; those objects are not documents.
	IgnorePrefix string
}

// PipelineTriggerFunction starts the document workflow for every finalized upload.
type PipelineTriggerFunction struct {
	launcher WorkflowLauncher
	config   PipelineTriggerConfig
}

// GCSEvent is the payload of a GCS event.
type GCSEvent struct {
	Bucket      string `json:"bucket"`
	Name        string `json:"name"`
	ContentType string `json:"contentType"`
	Size        string `json:"size"`
}

func NewPipelineTrigger(ctx context.Context) (*PipelineTriggerFunction, error) {
	projectID, err := gcp.RequireEnv("PROJECT_ID")
	if err != nil {
		return nil, err
	}
	workflowID, err := gcp.RequireEnv("WORKFLOW_ID")
	if err != nil {
		return nil, err
	}
	config := PipelineTriggerConfig{
		ProjectID:        projectID,
		WorkflowID:       workflowID,
		WorkflowLocation: gcp.GetEnv("WORKFLOW_LOCATION", "us-central1"),
		IgnorePrefix:     strings.Trim(gcp.GetEnv("OCR_OUTPUT_PREFIX", "ocr-output"), "/") + "/",
	}

	launcher, err := gcp.NewWorkflowLauncher(ctx, config.ProjectID, config.WorkflowLocation, config.WorkflowID)
	if err != nil {
		return nil, err
	}
	slog.Info("Pipeline trigger initialized.", "workflowId", config.WorkflowID)
	return NewPipelineTriggerWith(launcher, config), nil
}

// NewPipelineTriggerWith builds the function around an existing launcher.
func NewPipelineTriggerWith(launcher WorkflowLauncher, config PipelineTriggerConfig) *PipelineTriggerFunction {
	return &PipelineTriggerFunction{launcher: launcher, config: config}
}

// Process starts one workflow execution for the uploaded object. Folder placeholders
// and OCR output objects are skipped.
func (f *PipelineTriggerFunction) Process(ctx context.Context, e GCSEvent) error {
	logCtx := slog.With("bucket", e.Bucket, "key", e.Name)
	if e.Bucket == "" || e.Name == "" {
		logCtx.Warn("Ignoring storage event without bucket or object name.")
		return nil
	}
	if strings.HasSuffix(e.Name, "/") {
		logCtx.Info("Ignoring folder placeholder.")
		return nil
	}
	if f.config.IgnorePrefix != "/" && strings.HasPrefix(e.Name, f.config.IgnorePrefix) {
		logCtx.Info("Ignoring OCR output object.")
		return nil
	}

	logCtx.Info("Triggering workflow.")
	execution, err := f.launcher.Start(ctx, models.StageRequest{Bucket: e.Bucket, Key: e.Name})
	if err != nil {
		logCtx.Error("Failed to trigger workflow execution", "error", err)
		return fmt.Errorf("failed to start pipeline for gs://%s/%s: %w", e.Bucket, e.Name, err)
	}
	logCtx.Info("Hand-off to workflow complete.", "execution", execution)
	return nil
}
