package gcp

import (
	"context"
	"fmt"
	"sort"
	"strings"

	documentai "cloud.google.com/go/documentai/apiv1"
	"cloud.google.com/go/documentai/apiv1/documentaipb"
	"github.com/Lllllllleong/documentexplorer/internal/models"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"google.golang.org/api/option"
	"google.golang.org/protobuf/encoding/protojson"
)

// DocumentAIConfig locates the OCR processor and the bucket it writes results to.
type DocumentAIConfig struct {
	ProjectID    string
	Location     string
	ProcessorID  string
	OutputBucket string
	OutputPrefix string
}

func (c DocumentAIConfig) processorName() string {
	return fmt.Sprintf("projects/%s/locations/%s/processors/%s", c.ProjectID, c.Location, c.ProcessorID)
}

// DocumentAIClient runs OCR as Document AI batch jobs. The job ID handed out is the
// name of the long-running operation; results are JSON shards in Cloud Storage.
type DocumentAIClient struct {
	client  *documentai.DocumentProcessorClient
	objects shardStore
	config  DocumentAIConfig
}

// shardStore is the part of ObjectStore that reads OCR output.
type shardStore interface {
	List(ctx context.Context, bucket, prefix string) ([]string, error)
	Read(ctx context.Context, bucket, name string) ([]byte, error)
}

var shardUnmarshal = protojson.UnmarshalOptions{DiscardUnknown: true}

// NewDocumentAIClient creates a processor client on the regional endpoint.
func NewDocumentAIClient(ctx context.Context, config DocumentAIConfig, objects *ObjectStore) (*DocumentAIClient, error) {
	if config.ProjectID == "" || config.Location == "" || config.ProcessorID == "" {
		return nil, fmt.Errorf("NewDocumentAIClient: projectID, location and processorID cannot be empty")
	}
	endpoint := fmt.Sprintf("%s-documentai.googleapis.com:443", config.Location)
	client, err := documentai.NewDocumentProcessorClient(ctx, option.WithEndpoint(endpoint))
	if err != nil {
		return nil, fmt.Errorf("documentai.NewDocumentProcessorClient: %w", err)
	}
	return &DocumentAIClient{client: client, objects: objects, config: config}, nil
}

// StartTextDetection submits one object for OCR and returns without waiting.
func (c *DocumentAIClient) StartTextDetection(ctx context.Context, bucket, name, mimeType string) (string, error) {
	outputURI := fmt.Sprintf("gs://%s/%s/%s/", c.config.OutputBucket, strings.Trim(c.config.OutputPrefix, "/"), uuid.NewString())
	req := &documentaipb.BatchProcessRequest{
		Name: c.config.processorName(),
		InputDocuments: &documentaipb.BatchDocumentsInputConfig{
			Source: &documentaipb.BatchDocumentsInputConfig_GcsDocuments{
				GcsDocuments: &documentaipb.GcsDocuments{
					Documents: []*documentaipb.GcsDocument{
						{GcsUri: fmt.Sprintf("gs://%s/%s", bucket, name), MimeType: mimeType},
					},
				},
			},
		},
		DocumentOutputConfig: &documentaipb.DocumentOutputConfig{
			Destination: &documentaipb.DocumentOutputConfig_GcsOutputConfig_{
				GcsOutputConfig: &documentaipb.DocumentOutputConfig_GcsOutputConfig{GcsUri: outputURI},
			},
		},
	}
	op, err := c.client.BatchProcessDocuments(ctx, req)
	if err != nil {
		return "", fmt.Errorf("failed to start batch OCR for gs://%s/%s: %w", bucket, name, err)
	}
	return op.Name(), nil
}

// GetTextDetection checks a job once. Lines are only fetched for succeeded jobs.
func (c *DocumentAIClient) GetTextDetection(ctx context.Context, jobID string) (*models.OCRResult, error) {
	op := c.client.BatchProcessDocumentsOperation(jobID)
	_, pollErr := op.Poll(ctx)
	if pollErr != nil && !op.Done() {
		return nil, fmt.Errorf("failed to poll operation %s: %w", jobID, pollErr)
	}
	md, err := op.Metadata()
	if err != nil {
		return nil, fmt.Errorf("failed to read metadata of operation %s: %w", jobID, err)
	}

	result := batchStatus(op.Done(), pollErr, md)
	if result.Status != models.OCRSucceeded {
		return result, nil
	}
	for _, st := range md.GetIndividualProcessStatuses() {
		docs, err := c.readShards(ctx, st.GetOutputGcsDestination())
		if err != nil {
			return nil, err
		}
		for _, doc := range docs {
			result.Lines = append(result.Lines, documentLines(doc)...)
		}
	}
	return result, nil
}

// readShards loads every JSON shard written for one input document, in shard order.
func (c *DocumentAIClient) readShards(ctx context.Context, destination string) ([]*documentaipb.Document, error) {
	bucket, prefix, err := ParseGCSURI(destination)
	if err != nil {
		return nil, fmt.Errorf("bad OCR output destination: %w", err)
	}
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	names, err := c.objects.List(ctx, bucket, prefix)
	if err != nil {
		return nil, err
	}
	var shards []string
	for _, name := range names {
		if strings.HasSuffix(name, ".json") {
			shards = append(shards, name)
		}
	}

	docs := make([]*documentaipb.Document, len(shards))
	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(4)
	for i, name := range shards {
		eg.Go(func() error {
			data, err := c.objects.Read(gctx, bucket, name)
			if err != nil {
				return err
			}
			doc := &documentaipb.Document{}
			if err := shardUnmarshal.Unmarshal(data, doc); err != nil {
				return fmt.Errorf("failed to decode OCR shard gs://%s/%s: %w", bucket, name, err)
			}
			docs[i] = doc
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return sortShards(docs), nil
}

// sortShards orders the shards of one document by shard index, in place.
func sortShards(docs []*documentaipb.Document) []*documentaipb.Document {
	sort.SliceStable(docs, func(a, b int) bool {
		return docs[a].GetShardInfo().GetShardIndex() < docs[b].GetShardInfo().GetShardIndex()
	})
	return docs
}

// Close releases the processor client.
func (c *DocumentAIClient) Close() error {
	return c.client.Close()
}

// batchStatus maps a batch operation onto the OCR job states. opErr is the error the
// operation completed with, if any.
func batchStatus(done bool, opErr error, md *documentaipb.BatchProcessMetadata) *models.OCRResult {
	if !done {
		switch md.GetState() {
		case documentaipb.BatchProcessMetadata_RUNNING, documentaipb.BatchProcessMetadata_CANCELLING:
			return &models.OCRResult{Status: models.OCRInProgress}
		default:
			return &models.OCRResult{Status: models.OCRSubmitted}
		}
	}
	if opErr != nil {
		msg := md.GetStateMessage()
		if msg == "" {
			msg = opErr.Error()
		}
		return &models.OCRResult{Status: models.OCRFailed, StatusMessage: msg}
	}
	switch md.GetState() {
	case documentaipb.BatchProcessMetadata_FAILED, documentaipb.BatchProcessMetadata_CANCELLED:
		return &models.OCRResult{Status: models.OCRFailed, StatusMessage: md.GetStateMessage()}
	}
	for _, st := range md.GetIndividualProcessStatuses() {
		if st.GetStatus().GetCode() != 0 {
			return &models.OCRResult{Status: models.OCRFailed, StatusMessage: st.GetStatus().GetMessage()}
		}
	}
	return &models.OCRResult{Status: models.OCRSucceeded}
}

// documentLines returns the text of every detected line, page by page. Text anchors
// index code points of the whole document; a shard's Text starts at its TextOffset.
func documentLines(doc *documentaipb.Document) []string {
	text := []rune(doc.GetText())
	offset := doc.GetShardInfo().GetTextOffset()
	clamp := func(i int64) int {
		i -= offset
		if i < 0 {
			return 0
		}
		if i > int64(len(text)) {
			return len(text)
		}
		return int(i)
	}

	var lines []string
	for _, page := range doc.GetPages() {
		for _, line := range page.GetLines() {
			var b strings.Builder
			for _, seg := range line.GetLayout().GetTextAnchor().GetTextSegments() {
				start, end := clamp(seg.GetStartIndex()), clamp(seg.GetEndIndex())
				if start < end {
					b.WriteString(string(text[start:end]))
				}
			}
			if s := strings.TrimRight(b.String(), "\r\n"); s != "" {
				lines = append(lines, s)
			}
		}
	}
	return lines
}
