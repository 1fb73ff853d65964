package stage

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Lllllllleong/documentexplorer/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func echoStage(ctx context.Context) (ProcessFunc[models.StageRequest, models.TextResponse], error) {
	return func(ctx context.Context, req *models.StageRequest) (*models.TextResponse, error) {
		if err := req.Validate(); err != nil {
			return nil, err
		}
		if req.Key == "fail.txt" {
			return nil, errors.New("unexpected")
		}
		return &models.TextResponse{Bucket: req.Bucket, Key: req.Key, WordCount: len(req.Key)}, nil
	}, nil
}

func post(h http.Handler, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body)))
	return rec
}

func TestHandler(t *testing.T) {
	h := Handler("echo", echoStage)

	rec := post(h, `{"bucket":"docs","key":"a.txt"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"bucket":"docs","key":"a.txt","wordCount":5}`, rec.Body.String())

	assert.Equal(t, http.StatusBadRequest, post(h, `{"bucket":`).Code)
	assert.Equal(t, http.StatusBadRequest, post(h, `{"bucket":"docs"}`).Code)
	assert.Equal(t, http.StatusInternalServerError, post(h, `{"bucket":"docs","key":"fail.txt"}`).Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHandlerInitializesOnce(t *testing.T) {
	calls := 0
	h := Handler("broken", func(ctx context.Context) (ProcessFunc[models.StageRequest, models.TextResponse], error) {
		calls++
		return nil, fmt.Errorf("PROJECT_ID environment variable must be set")
	})

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusInternalServerError, post(h, `{"bucket":"docs","key":"a.txt"}`).Code)
	}
	assert.Equal(t, 1, calls)
}
