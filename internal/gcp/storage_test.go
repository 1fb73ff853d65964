package gcp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseGCSURI(t *testing.T) {
	tests := []struct {
		uri    string
		bucket string
		object string
	}{
		{"gs://docs/ocr-output/123/0/", "docs", "ocr-output/123/0/"},
		{"gs://docs/scan.pdf", "docs", "scan.pdf"},
		{"gs://docs", "docs", ""},
	}
	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			bucket, object, err := ParseGCSURI(tt.uri)
			require.NoError(t, err)
			assert.Equal(t, tt.bucket, bucket)
			assert.Equal(t, tt.object, object)
		})
	}

	for _, bad := range []string{"s3://docs/a", "gs:///a", ""} {
		_, _, err := ParseGCSURI(bad)
		assert.Error(t, err, bad)
	}
}
