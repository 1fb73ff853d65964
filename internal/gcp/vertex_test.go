package gcp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKeyPhrases(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{"plain", `["quarterly report", "revenue growth"]`, []string{"quarterly report", "revenue growth"}},
		{"fenced", "```json\n[\"invoice\", \" \", \"due date\"]\n```", []string{"invoice", "due date"}},
		{"empty array", "[]", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseKeyPhrases(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseKeyPhrasesRejectsNonArrays(t *testing.T) {
	for _, raw := range []string{"", "```json\n```", `{"phrases": []}`, "quarterly report"} {
		_, err := parseKeyPhrases(raw)
		assert.Error(t, err, raw)
	}
}
