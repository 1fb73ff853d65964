package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"
	"github.com/Lllllllleong/documentexplorer/internal/models"
	"github.com/Lllllllleong/documentexplorer/internal/services"
	"github.com/Lllllllleong/documentexplorer/internal/stage"
)

func init() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Called by the workflow with a callback URL as the task token. The poll loop runs in
	// the ocr-poller worker.
	functions.HTTP("StartOCR", stage.Handler[models.StartOCRRequest, models.StartOCRResponse]("ocr-starter", newOCRStarter))
}

// main is required by the Go Functions Framework.
func main() {}

func newOCRStarter(ctx context.Context) (stage.ProcessFunc[models.StartOCRRequest, models.StartOCRResponse], error) {
	f, err := services.NewOCRStarter(ctx)
	if err != nil {
		return nil, err
	}
	return f.Process, nil
}
