package gcp

import (
	"context"
	"encoding/base64"
	"fmt"

	"cloud.google.com/go/firestore"
	"github.com/Lllllllleong/documentexplorer/internal/models"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// NewFirestoreClient creates and returns a new Firestore client for the given project ID.
// It centralizes client creation for all services.
func NewFirestoreClient(ctx context.Context, projectID string) (*firestore.Client, error) {
	if projectID == "" {
		return nil, fmt.Errorf("projectID must be provided to create a firestore client")
	}

	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to create Firestore client: %w", err)
	}

	return client, nil
}

// RecordStore keeps one Document per (name, bucket) in a Firestore collection. Writes
// are last-write-wins; there are no transactions.
type RecordStore struct {
	client     *firestore.Client
	collection string
}

// NewRecordStore wraps a Firestore client for the named collection.
func NewRecordStore(client *firestore.Client, collection string) *RecordStore {
	return &RecordStore{client: client, collection: collection}
}

func (s *RecordStore) doc(key models.DocumentKey) *firestore.DocumentRef {
	return s.client.Collection(s.collection).Doc(key.ID())
}

// Get returns the record for key, or models.ErrRecordNotFound.
func (s *RecordStore) Get(ctx context.Context, key models.DocumentKey) (*models.Document, error) {
	snap, err := s.doc(key).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, models.ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get record %s/%s: %w", key.Bucket, key.Name, err)
	}
	var d models.Document
	if err := snap.DataTo(&d); err != nil {
		return nil, fmt.Errorf("failed to decode record %s/%s: %w", key.Bucket, key.Name, err)
	}
	return &d, nil
}

// Put replaces the whole record.
func (s *RecordStore) Put(ctx context.Context, d *models.Document) error {
	if _, err := s.doc(d.Key()).Set(ctx, d); err != nil {
		return fmt.Errorf("failed to put record %s/%s: %w", d.Bucket, d.Name, err)
	}
	return nil
}

// Update sets the named fields and leaves the others untouched, creating the record
// if needed. The key fields are always written so a created record is complete.
func (s *RecordStore) Update(ctx context.Context, key models.DocumentKey, fields map[string]interface{}) error {
	data := make(map[string]interface{}, len(fields)+2)
	for k, v := range fields {
		data[k] = v
	}
	data[models.FieldName] = key.Name
	data[models.FieldBucket] = key.Bucket

	if _, err := s.doc(key).Set(ctx, data, firestore.MergeAll); err != nil {
		return fmt.Errorf("failed to update record %s/%s: %w", key.Bucket, key.Name, err)
	}
	return nil
}

// Delete removes the record. Deleting a missing record is not an error.
func (s *RecordStore) Delete(ctx context.Context, key models.DocumentKey) error {
	if _, err := s.doc(key).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete record %s/%s: %w", key.Bucket, key.Name, err)
	}
	return nil
}

// Scan returns every record in the collection, in no particular order.
func (s *RecordStore) Scan(ctx context.Context) ([]*models.Document, error) {
	it := s.client.Collection(s.collection).Documents(ctx)
	defer it.Stop()

	var docs []*models.Document
	for {
		snap, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", s.collection, err)
		}
		var d models.Document
		if err := snap.DataTo(&d); err != nil {
			return nil, fmt.Errorf("failed to decode record %s: %w", snap.Ref.ID, err)
		}
		docs = append(docs, &d)
	}
	return docs, nil
}

// SignalLedger records which OCR jobs already had their terminal outcome reported to
// the workflow, so a redelivered poll message does not report it twice.
type SignalLedger struct {
	client     *firestore.Client
	collection string
}

// NewSignalLedger stores claims in the named collection.
func NewSignalLedger(client *firestore.Client, collection string) *SignalLedger {
	return &SignalLedger{client: client, collection: collection}
}

func (l *SignalLedger) doc(jobID string) *firestore.DocumentRef {
	return l.client.Collection(l.collection).Doc(base64.RawURLEncoding.EncodeToString([]byte(jobID)))
}

// Claim records the outcome for jobID. It returns false when the job was already
// claimed.
func (l *SignalLedger) Claim(ctx context.Context, jobID, outcome string) (bool, error) {
	_, err := l.doc(jobID).Create(ctx, map[string]interface{}{
		"jobId":     jobID,
		"outcome":   outcome,
		"claimedAt": firestore.ServerTimestamp,
	})
	if status.Code(err) == codes.AlreadyExists {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to claim signal for job %s: %w", jobID, err)
	}
	return true, nil
}

// Release drops a claim so a later delivery may report the outcome again.
func (l *SignalLedger) Release(ctx context.Context, jobID string) error {
	if _, err := l.doc(jobID).Delete(ctx); err != nil {
		return fmt.Errorf("failed to release signal for job %s: %w", jobID, err)
	}
	return nil
}
