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

	// Copies short plaintext or image labels into the Summary field.
	functions.HTTP("UpdateSummary", stage.Handler[models.StageRequest, models.StatusResponse]("summary-updater", newSummaryUpdater))
}

// main is required by the Go Functions Framework.
func main() {}

func newSummaryUpdater(ctx context.Context) (stage.ProcessFunc[models.StageRequest, models.StatusResponse], error) {
	f, err := services.NewSummaryUpdater(ctx)
	if err != nil {
		return nil, err
	}
	return f.Process, nil
}
