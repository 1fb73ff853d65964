package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"cloud.google.com/go/storage"
	"github.com/Lllllllleong/documentexplorer/internal/models"
)

var errBoom = errors.New("boom")

type fakeObjects struct {
	content map[string][]byte
	err     error
}

func newFakeObjects() *fakeObjects {
	return &fakeObjects{content: map[string][]byte{}}
}

func (f *fakeObjects) put(bucket, name string, content []byte) {
	f.content[bucket+"/"+name] = content
}

func (f *fakeObjects) Read(ctx context.Context, bucket, name string) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	c, ok := f.content[bucket+"/"+name]
	if !ok {
		return nil, storage.ErrObjectNotExist
	}
	return c, nil
}

func (f *fakeObjects) Attrs(ctx context.Context, bucket, name string) (*storage.ObjectAttrs, error) {
	c, err := f.Read(ctx, bucket, name)
	if err != nil {
		return nil, err
	}
	return &storage.ObjectAttrs{Bucket: bucket, Name: name, Size: int64(len(c))}, nil
}

type fakeRecords struct {
	mu       sync.Mutex
	docs     map[models.DocumentKey]*models.Document
	updates  int
	puts     int
	getErr   error
	writeErr error
}

func newFakeRecords() *fakeRecords {
	return &fakeRecords{docs: map[models.DocumentKey]*models.Document{}}
}

func (f *fakeRecords) Get(ctx context.Context, key models.DocumentKey) (*models.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	d, ok := f.docs[key]
	if !ok {
		return nil, models.ErrRecordNotFound
	}
	cp := *d
	return &cp, nil
}

func (f *fakeRecords) Put(ctx context.Context, d *models.Document) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return f.writeErr
	}
	f.puts++
	cp := *d
	f.docs[d.Key()] = &cp
	return nil
}

func (f *fakeRecords) Update(ctx context.Context, key models.DocumentKey, fields map[string]interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return f.writeErr
	}
	f.updates++
	d, ok := f.docs[key]
	if !ok {
		d = &models.Document{Name: key.Name, Bucket: key.Bucket}
		f.docs[key] = d
	}
	for k, v := range fields {
		switch k {
		case models.FieldFileType:
			d.FileType = v.(string)
		case models.FieldFileSize:
			d.FileSize = v.(int64)
		case models.FieldTimeUploaded:
			d.TimeUploaded = v.(string)
		case models.FieldPlaintext:
			s := v.(string)
			d.Plaintext = &s
		case models.FieldSummary:
			s := v.(string)
			d.Summary = &s
		}
	}
	return nil
}

func (f *fakeRecords) doc(bucket, name string) *models.Document {
	return f.docs[models.DocumentKey{Name: name, Bucket: bucket}]
}

type fakeDetector struct {
	results  []*models.OCRResult
	err      error
	startErr error
	started  []string
	checks   int
}

func (f *fakeDetector) StartTextDetection(ctx context.Context, bucket, name, mimeType string) (string, error) {
	if f.startErr != nil {
		return "", f.startErr
	}
	f.started = append(f.started, mimeType)
	return "projects/p/locations/us/operations/1", nil
}

func (f *fakeDetector) GetTextDetection(ctx context.Context, jobID string) (*models.OCRResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	r := f.results[f.checks]
	f.checks++
	return r, nil
}

type enqueued struct {
	msg   models.PollMessage
	delay time.Duration
}

type fakeQueue struct {
	sent []enqueued
	err  error
}

func (f *fakeQueue) EnqueuePoll(ctx context.Context, msg *models.PollMessage, delay time.Duration) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, enqueued{msg: *msg, delay: delay})
	return nil
}

type failure struct {
	token, name, cause string
}

type fakeSignaler struct {
	successes  []*models.TextResponse
	failures   []failure
	successErr error
	failureErr error
}

func (f *fakeSignaler) SendTaskSuccess(ctx context.Context, taskToken string, output *models.TextResponse) error {
	if f.successErr != nil {
		return f.successErr
	}
	f.successes = append(f.successes, output)
	return nil
}

func (f *fakeSignaler) SendTaskFailure(ctx context.Context, taskToken, errorName, cause string) error {
	if f.failureErr != nil {
		return f.failureErr
	}
	f.failures = append(f.failures, failure{token: taskToken, name: errorName, cause: cause})
	return nil
}

type fakeLedger struct {
	claims   map[string]string
	released []string
	err      error
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{claims: map[string]string{}}
}

func (f *fakeLedger) Claim(ctx context.Context, jobID, outcome string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	if _, ok := f.claims[jobID]; ok {
		return false, nil
	}
	f.claims[jobID] = outcome
	return true, nil
}

func (f *fakeLedger) Release(ctx context.Context, jobID string) error {
	f.released = append(f.released, jobID)
	delete(f.claims, jobID)
	return nil
}

type fakeKeyPhrases struct {
	phrases []string
	err     error
	input   string
}

func (f *fakeKeyPhrases) DetectKeyPhrases(ctx context.Context, text string) ([]string, error) {
	f.input = text
	return f.phrases, f.err
}

type fakeLabels struct {
	names []string
	err   error
}

func (f *fakeLabels) DetectLabels(ctx context.Context, bucket, name string, maxLabels int, minConfidence float32) ([]string, error) {
	return f.names, f.err
}

type fakeLauncher struct {
	args []interface{}
	err  error
}

func (f *fakeLauncher) Start(ctx context.Context, argument interface{}) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.args = append(f.args, argument)
	return "executions/1", nil
}
