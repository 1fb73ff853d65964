package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"
	"github.com/Lllllllleong/documentexplorer/internal/api"
	"github.com/Lllllllleong/documentexplorer/internal/gcp"
)

var (
	appHandler http.Handler
	once       sync.Once
	initErr    error
)

func init() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	functions.HTTP("HandleAPI", handleAPI)
}

// main is required by the Go Functions Framework.
func main() {}

func handleAPI(w http.ResponseWriter, r *http.Request) {
	once.Do(func() {
		appHandler, initErr = newAppHandler(context.Background())
	})
	if initErr != nil {
		slog.Error("Critical: API initialization failed", "error", initErr)
		http.Error(w, "Internal Server Error: failed to initialize service", http.StatusInternalServerError)
		return
	}
	appHandler.ServeHTTP(w, r)
}

func newAppHandler(ctx context.Context) (http.Handler, error) {
	projectID, err := gcp.RequireEnv("PROJECT_ID")
	if err != nil {
		return nil, err
	}
	collection, err := gcp.RequireEnv("FIRESTORE_COLLECTION")
	if err != nil {
		return nil, err
	}
	bucket, err := gcp.RequireEnv("BUCKET_NAME")
	if err != nil {
		return nil, err
	}

	objects, err := gcp.NewObjectStore(ctx)
	if err != nil {
		return nil, err
	}
	firestoreClient, err := gcp.NewFirestoreClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to create firestore client: %w", err)
	}

	slog.Info("API initialized.", "bucket", bucket, "collection", collection)
	return api.NewAppHandler(api.AppDeps{
		Objects:  objects,
		Records:  gcp.NewRecordStore(firestoreClient, collection),
		Bucket:   bucket,
		BasePath: gcp.GetEnv("API_BASE_PATH", ""),
	}), nil
}
