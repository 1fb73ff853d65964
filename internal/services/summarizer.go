package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Lllllllleong/documentexplorer/internal/extract"
	"github.com/Lllllllleong/documentexplorer/internal/gcp"
	"github.com/Lllllllleong/documentexplorer/internal/models"
)

// Summary limits.
const (
	MaxSummaryPhrases = 15
	MaxSummaryWords   = 15
)

// UnsupportedFileText is copied into Summary when a record has no Plaintext.
const UnsupportedFileText = "Unsupported file type"

// KeyPhraseSummarizerFunction summarizes long texts as a list of key phrases.
type KeyPhraseSummarizerFunction struct {
	records       RecordStore
	phrases       KeyPhraseDetector
	maxInputBytes int
}

func NewKeyPhraseSummarizer(ctx context.Context) (*KeyPhraseSummarizerFunction, error) {
	config, err := loadStoreConfig()
	if err != nil {
		return nil, err
	}
	maxInput, err := gcp.IntEnv("KEYPHRASE_MAX_INPUT_BYTES", 100000)
	if err != nil {
		return nil, err
	}
	records, err := newRecordStore(ctx, config)
	if err != nil {
		return nil, err
	}
	vertexClient, err := gcp.NewVertexClient(ctx, config.ProjectID,
		gcp.GetEnv("VERTEX_AI_REGION", "us-central1"),
		gcp.GetEnv("VERTEX_AI_MODEL", "gemini-1.5-pro"))
	if err != nil {
		return nil, fmt.Errorf("failed to create vertex client: %w", err)
	}
	return NewKeyPhraseSummarizerWith(records, vertexClient, maxInput), nil
}

// NewKeyPhraseSummarizerWith builds the function around existing clients. A
// maxInputBytes of 0 sends the whole text.
func NewKeyPhraseSummarizerWith(records RecordStore, phrases KeyPhraseDetector, maxInputBytes int) *KeyPhraseSummarizerFunction {
	return &KeyPhraseSummarizerFunction{records: records, phrases: phrases, maxInputBytes: maxInputBytes}
}

// Process requires a record with Plaintext; a missing one is reported, not defaulted.
func (f *KeyPhraseSummarizerFunction) Process(ctx context.Context, req *models.StageRequest) (*models.SummaryResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	logCtx := slog.With("bucket", req.Bucket, "key", req.Key)
	res := &models.SummaryResponse{Bucket: req.Bucket, Key: req.Key}

	doc, err := f.records.Get(ctx, req.DocumentKey())
	if errors.Is(err, models.ErrRecordNotFound) {
		res.Error = fmt.Sprintf("no record for %s/%s", req.Bucket, req.Key)
		logCtx.Error("Cannot summarize a missing record.")
		return res, nil
	}
	if err != nil {
		logCtx.Error("Failed to read record", "error", err)
		res.Error = err.Error()
		return res, nil
	}
	if doc.Plaintext == nil {
		res.Error = fmt.Sprintf("record %s/%s has no Plaintext", req.Bucket, req.Key)
		logCtx.Error("Cannot summarize a record without plaintext.")
		return res, nil
	}

	var phrases []string
	if text := strings.TrimSpace(*doc.Plaintext); text != "" {
		phrases, err = f.phrases.DetectKeyPhrases(ctx, extract.TruncateUTF8(text, f.maxInputBytes))
		if err != nil {
			logCtx.Error("Key phrase detection failed", "error", err)
			res.Error = err.Error()
			return res, nil
		}
	}

	summary := keyPhraseSummary(phrases)
	if err := f.records.Update(ctx, req.DocumentKey(), map[string]interface{}{models.FieldSummary: summary}); err != nil {
		logCtx.Error("Failed to store summary", "error", err)
		res.Error = err.Error()
		return res, nil
	}
	res.Summary = summary
	logCtx.Info("Stored key phrase summary.", "phrases", len(phrases))
	return res, nil
}

// keyPhraseSummary joins the leading phrases and caps the result in words.
func keyPhraseSummary(phrases []string) string {
	if len(phrases) > MaxSummaryPhrases {
		phrases = phrases[:MaxSummaryPhrases]
	}
	return extract.FirstWords(strings.Join(phrases, ", "), MaxSummaryWords)
}

// SummaryUpdaterFunction copies short texts into Summary unchanged.
type SummaryUpdaterFunction struct {
	records RecordStore
}

func NewSummaryUpdater(ctx context.Context) (*SummaryUpdaterFunction, error) {
	config, err := loadStoreConfig()
	if err != nil {
		return nil, err
	}
	records, err := newRecordStore(ctx, config)
	if err != nil {
		return nil, err
	}
	return NewSummaryUpdaterWith(records), nil
}

// NewSummaryUpdaterWith builds the function around an existing record store.
func NewSummaryUpdaterWith(records RecordStore) *SummaryUpdaterFunction {
	return &SummaryUpdaterFunction{records: records}
}

func (f *SummaryUpdaterFunction) Process(ctx context.Context, req *models.StageRequest) (*models.StatusResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	logCtx := slog.With("bucket", req.Bucket, "key", req.Key)

	doc, err := f.records.Get(ctx, req.DocumentKey())
	if err != nil && !errors.Is(err, models.ErrRecordNotFound) {
		logCtx.Error("Failed to read record", "error", err)
		return &models.StatusResponse{StatusCode: 500, Error: err.Error()}, nil
	}

	summary := doc.PlaintextOr(UnsupportedFileText)
	if err := f.records.Update(ctx, req.DocumentKey(), map[string]interface{}{models.FieldSummary: summary}); err != nil {
		logCtx.Error("Failed to store summary", "error", err)
		return &models.StatusResponse{StatusCode: 500, Error: err.Error()}, nil
	}
	logCtx.Info("Copied plaintext into summary.")
	return &models.StatusResponse{StatusCode: 200, Message: "Summary updated successfully"}, nil
}
