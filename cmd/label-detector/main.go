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

	functions.HTTP("DetectLabels", stage.Handler[models.StageRequest, models.TextResponse]("label-detector", newLabelDetector))
}

// main is required by the Go Functions Framework.
func main() {}

func newLabelDetector(ctx context.Context) (stage.ProcessFunc[models.StageRequest, models.TextResponse], error) {
	f, err := services.NewLabelDetector(ctx)
	if err != nil {
		return nil, err
	}
	return f.Process, nil
}
