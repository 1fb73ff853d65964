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

	// Records name, size, type and upload time, and returns the route for the file type.
	functions.HTTP("ExtractMetadata", stage.Handler[models.StageRequest, models.MetadataResponse]("metadata-extractor", newMetadataExtractor))
}

// main is required by the Go Functions Framework.
func main() {}

func newMetadataExtractor(ctx context.Context) (stage.ProcessFunc[models.StageRequest, models.MetadataResponse], error) {
	f, err := services.NewMetadataExtractor(ctx)
	if err != nil {
		return nil, err
	}
	return f.Process, nil
}
