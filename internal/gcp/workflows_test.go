package gcp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Lllllllleong/documentexplorer/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCallbackSignaler(t *testing.T) {
	var got []models.CallbackPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var p models.CallbackPayload
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&p))
		got = append(got, p)
	}))
	defer srv.Close()

	s := NewCallbackSignalerWithClient(srv.Client())
	ctx := context.Background()

	out := &models.TextResponse{Bucket: "docs", Key: "scan.pdf", WordCount: 2}
	require.NoError(t, s.SendTaskSuccess(ctx, srv.URL+"/callbacks/abc", out))
	require.NoError(t, s.SendTaskFailure(ctx, srv.URL+"/callbacks/abc", "OCRFailed", "Unknown error"))

	require.Len(t, got, 2)
	assert.Equal(t, models.CallbackSuccess, got[0].Status)
	assert.Equal(t, out, got[0].Output)
	assert.Equal(t, models.CallbackPayload{Status: models.CallbackFailure, Error: "OCRFailed", Cause: "Unknown error"}, got[1])
}

func TestCallbackSignalerReportsRejectedCallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "callback expired", http.StatusNotFound)
	}))
	defer srv.Close()

	s := NewCallbackSignalerWithClient(srv.Client())
	err := s.SendTaskFailure(context.Background(), srv.URL, "PollingError", "boom")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "callback expired")
}

func TestCallbackSignalerRejectsNonURLTokens(t *testing.T) {
	s := NewCallbackSignalerWithClient(http.DefaultClient)
	for _, token := range []string{"", "AAAA-token", "ftp://host/cb"} {
		assert.Error(t, s.SendTaskFailure(context.Background(), token, "OCRFailed", "x"), token)
	}
}
