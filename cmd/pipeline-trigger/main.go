package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"
	"github.com/Lllllllleong/documentexplorer/internal/services"
	"github.com/cloudevents/sdk-go/v2/event"
)

var (
	triggerInstance *services.PipelineTriggerFunction
	once            sync.Once
	initErr         error
)

func init() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Fired by google.cloud.storage.object.v1.finalized on the upload bucket.
	functions.CloudEvent("StartPipeline", startPipeline)
}

// main is required by the Go Functions Framework.
func main() {}

func startPipeline(ctx context.Context, e event.Event) error {
	once.Do(func() {
		triggerInstance, initErr = services.NewPipelineTrigger(context.Background())
	})
	if initErr != nil {
		slog.Error("Critical error during function initialization", "error", initErr)
		return initErr
	}

	var gcsEvent services.GCSEvent
	if err := e.DataAs(&gcsEvent); err != nil {
		slog.Error("Failed to unmarshal event data", "error", err, "eventId", e.ID())
		return fmt.Errorf("event.DataAs: %w", err)
	}
	return triggerInstance.Process(ctx, gcsEvent)
}
