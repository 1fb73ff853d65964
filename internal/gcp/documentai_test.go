package gcp

import (
	"context"
	"errors"
	"strings"
	"testing"

	"cloud.google.com/go/documentai/apiv1/documentaipb"
	"github.com/Lllllllleong/documentexplorer/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	statuspb "google.golang.org/genproto/googleapis/rpc/status"
	"google.golang.org/protobuf/encoding/protojson"
)

func anchoredLine(segments ...[2]int64) *documentaipb.Document_Page_Line {
	anchor := &documentaipb.Document_TextAnchor{}
	for _, s := range segments {
		anchor.TextSegments = append(anchor.TextSegments, &documentaipb.Document_TextAnchor_TextSegment{
			StartIndex: s[0],
			EndIndex:   s[1],
		})
	}
	return &documentaipb.Document_Page_Line{
		Layout: &documentaipb.Document_Page_Layout{TextAnchor: anchor},
	}
}

func TestDocumentLines(t *testing.T) {
	doc := &documentaipb.Document{
		Text: "Hello\nWorld\nCafé au lait\n",
		Pages: []*documentaipb.Document_Page{
			{Lines: []*documentaipb.Document_Page_Line{
				anchoredLine([2]int64{0, 6}),
				anchoredLine([2]int64{6, 12}),
			}},
			{Lines: []*documentaipb.Document_Page_Line{
				anchoredLine([2]int64{12, 17}, [2]int64{17, 25}),
				anchoredLine([2]int64{25, 25}),
				anchoredLine([2]int64{20, 400}),
			}},
		},
	}

	assert.Equal(t, []string{"Hello", "World", "Café au lait", "lait"}, documentLines(doc))
	assert.Empty(t, documentLines(&documentaipb.Document{}))
}

func TestDocumentLinesAcrossShards(t *testing.T) {
	shards := []*documentaipb.Document{
		{
			ShardInfo: &documentaipb.Document_ShardInfo{ShardIndex: 0, ShardCount: 2, TextOffset: 0},
			Text:      "Hello\n",
			Pages: []*documentaipb.Document_Page{
				{Lines: []*documentaipb.Document_Page_Line{anchoredLine([2]int64{0, 6})}},
			},
		},
		{
			ShardInfo: &documentaipb.Document_ShardInfo{ShardIndex: 1, ShardCount: 2, TextOffset: 6},
			Text:      "World\nCafé\n",
			Pages: []*documentaipb.Document_Page{
				{Lines: []*documentaipb.Document_Page_Line{
					anchoredLine([2]int64{6, 12}),
					anchoredLine([2]int64{12, 17}),
					anchoredLine([2]int64{0, 6}),
				}},
			},
		},
	}

	var lines []string
	for _, doc := range sortShards([]*documentaipb.Document{shards[1], shards[0]}) {
		lines = append(lines, documentLines(doc)...)
	}
	assert.Equal(t, []string{"Hello", "World", "Café"}, lines)
}

type fakeShardStore struct {
	objects map[string][]byte
	listed  string
}

func (f *fakeShardStore) List(ctx context.Context, bucket, prefix string) ([]string, error) {
	f.listed = bucket + "/" + prefix
	var names []string
	for name := range f.objects {
		if strings.HasPrefix(name, prefix) {
			names = append(names, name)
		}
	}
	return names, nil
}

func (f *fakeShardStore) Read(ctx context.Context, bucket, name string) ([]byte, error) {
	data, ok := f.objects[name]
	if !ok {
		return nil, errors.New("no such object")
	}
	return data, nil
}

func shardJSON(t *testing.T, doc *documentaipb.Document) []byte {
	t.Helper()
	data, err := protojson.Marshal(doc)
	require.NoError(t, err)
	return data
}

func TestReadShardsOrdersByShardIndex(t *testing.T) {
	first := &documentaipb.Document{
		ShardInfo: &documentaipb.Document_ShardInfo{ShardIndex: 0, ShardCount: 2},
		Text:      "Hello\n",
		Pages: []*documentaipb.Document_Page{
			{Lines: []*documentaipb.Document_Page_Line{anchoredLine([2]int64{0, 6})}},
		},
	}
	second := &documentaipb.Document{
		ShardInfo: &documentaipb.Document_ShardInfo{ShardIndex: 1, ShardCount: 2, TextOffset: 6},
		Text:      "World\n",
		Pages: []*documentaipb.Document_Page{
			{Lines: []*documentaipb.Document_Page_Line{anchoredLine([2]int64{6, 12})}},
		},
	}
	store := &fakeShardStore{objects: map[string][]byte{
		"ocr-output/job/0/scan-1.json":  shardJSON(t, second),
		"ocr-output/job/0/scan-0.json":  shardJSON(t, first),
		"ocr-output/job/0/manifest.txt": []byte("not a shard"),
		"ocr-output/other/0/x-0.json":   []byte("{"),
	}}
	c := &DocumentAIClient{objects: store}

	docs, err := c.readShards(context.Background(), "gs://out-bucket/ocr-output/job/0")
	require.NoError(t, err)
	assert.Equal(t, "out-bucket/ocr-output/job/0/", store.listed)
	require.Len(t, docs, 2)

	var lines []string
	for _, doc := range docs {
		lines = append(lines, documentLines(doc)...)
	}
	assert.Equal(t, []string{"Hello", "World"}, lines)
}

func TestReadShardsRejectsBadShard(t *testing.T) {
	store := &fakeShardStore{objects: map[string][]byte{"out/a-0.json": []byte("{")}}
	c := &DocumentAIClient{objects: store}

	_, err := c.readShards(context.Background(), "gs://b/out/")
	assert.ErrorContains(t, err, "failed to decode OCR shard")
}

func TestBatchStatus(t *testing.T) {
	tests := []struct {
		name    string
		done    bool
		opErr   error
		md      *documentaipb.BatchProcessMetadata
		status  models.OCRJobStatus
		message string
	}{
		{
			name:   "waiting",
			md:     &documentaipb.BatchProcessMetadata{State: documentaipb.BatchProcessMetadata_WAITING},
			status: models.OCRSubmitted,
		},
		{
			name:   "no metadata yet",
			status: models.OCRSubmitted,
		},
		{
			name:   "running",
			md:     &documentaipb.BatchProcessMetadata{State: documentaipb.BatchProcessMetadata_RUNNING},
			status: models.OCRInProgress,
		},
		{
			name:   "succeeded",
			done:   true,
			md:     &documentaipb.BatchProcessMetadata{State: documentaipb.BatchProcessMetadata_SUCCEEDED},
			status: models.OCRSucceeded,
		},
		{
			name:    "operation error prefers state message",
			done:    true,
			opErr:   errors.New("rpc error"),
			md:      &documentaipb.BatchProcessMetadata{State: documentaipb.BatchProcessMetadata_FAILED, StateMessage: "Unsupported input file format."},
			status:  models.OCRFailed,
			message: "Unsupported input file format.",
		},
		{
			name:    "operation error without state message",
			done:    true,
			opErr:   errors.New("rpc error"),
			status:  models.OCRFailed,
			message: "rpc error",
		},
		{
			name:   "cancelled",
			done:   true,
			md:     &documentaipb.BatchProcessMetadata{State: documentaipb.BatchProcessMetadata_CANCELLED},
			status: models.OCRFailed,
		},
		{
			name: "failed document",
			done: true,
			md: &documentaipb.BatchProcessMetadata{
				State: documentaipb.BatchProcessMetadata_SUCCEEDED,
				IndividualProcessStatuses: []*documentaipb.BatchProcessMetadata_IndividualProcessStatus{
					{Status: &statuspb.Status{Code: 3, Message: "Document is encrypted."}},
				},
			},
			status:  models.OCRFailed,
			message: "Document is encrypted.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := batchStatus(tt.done, tt.opErr, tt.md)
			assert.Equal(t, tt.status, got.Status)
			assert.Equal(t, tt.message, got.StatusMessage)
			assert.Empty(t, got.Lines)
		})
	}
}
