package services

import (
	"context"
	"fmt"

	"github.com/Lllllllleong/documentexplorer/internal/gcp"
)

// StoreConfig is the configuration shared by every function that touches the
// metadata table.
type StoreConfig struct {
	ProjectID      string
	CollectionName string
}

// loadStoreConfig loads and validates the metadata table settings.
func loadStoreConfig() (StoreConfig, error) {
	projectID, err := gcp.RequireEnv("PROJECT_ID")
	if err != nil {
		return StoreConfig{}, err
	}
	collection, err := gcp.RequireEnv("FIRESTORE_COLLECTION")
	if err != nil {
		return StoreConfig{}, err
	}
	return StoreConfig{ProjectID: projectID, CollectionName: collection}, nil
}

// newRecordStore creates the Firestore-backed record store for config.
func newRecordStore(ctx context.Context, config StoreConfig) (*gcp.RecordStore, error) {
	client, err := gcp.NewFirestoreClient(ctx, config.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to create firestore client: %w", err)
	}
	return gcp.NewRecordStore(client, config.CollectionName), nil
}

// signalCollection names the side collection holding OCR signal claims.
func signalCollection(collection string) string {
	return collection + "_ocr_signals"
}
