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

	functions.HTTP("StoreRecord", stage.Handler[models.StoreRecordRequest, models.StatusResponse]("record-store", newRecordStore))
}

// main is required by the Go Functions Framework.
func main() {}

func newRecordStore(ctx context.Context) (stage.ProcessFunc[models.StoreRecordRequest, models.StatusResponse], error) {
	f, err := services.NewRecordStoreStage(ctx)
	if err != nil {
		return nil, err
	}
	return f.Process, nil
}
