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

	functions.HTTP("SummarizeKeyPhrases", stage.Handler[models.StageRequest, models.SummaryResponse]("keyphrase-summarizer", newKeyPhraseSummarizer))
}

// main is required by the Go Functions Framework.
func main() {}

func newKeyPhraseSummarizer(ctx context.Context) (stage.ProcessFunc[models.StageRequest, models.SummaryResponse], error) {
	f, err := services.NewKeyPhraseSummarizer(ctx)
	if err != nil {
		return nil, err
	}
	return f.Process, nil
}
