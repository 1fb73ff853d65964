package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/Lllllllleong/documentexplorer/internal/models"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
)

// NoPlaintext is returned for documents without extracted text.
const NoPlaintext = "No text available"

type presignRequest struct {
	Filename    string `json:"filename"`
	ContentType string `json:"contentType"`
}

type presignResponse struct {
	UploadURL   string `json:"uploadUrl"`
	Filename    string `json:"filename"`
	ContentType string `json:"contentType"`
}

func handleListFiles(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		docs, err := deps.Records.Scan(r.Context())
		if err != nil {
			slog.Error("Failed to list files", "error", err)
			httpError(w, http.StatusInternalServerError, "%v", err)
			return
		}
		if docs == nil {
			docs = []*models.Document{}
		}
		writeJSON(w, http.StatusOK, map[string]any{"files": docs})
	}
}

func handlePresignedURL(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := presignRequest{}
		if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			httpError(w, http.StatusBadRequest, "invalid request body: %v", err)
			return
		}
		if req.Filename == "" {
			req.Filename = "uploaded_file"
		}
		if req.ContentType == "" {
			req.ContentType = "application/octet-stream"
		}

		uploadURL, err := deps.Objects.SignedURL(deps.Bucket, req.Filename, http.MethodPut, req.ContentType, signedURLExpiry)
		if err != nil {
			slog.Error("Presigned URL error", "filename", req.Filename, "error", err)
			httpError(w, http.StatusInternalServerError, "%v", err)
			return
		}
		writeJSON(w, http.StatusOK, presignResponse{UploadURL: uploadURL, Filename: req.Filename, ContentType: req.ContentType})
	}
}

// handleDelete removes the object and its record. Both deletes are always attempted
// and neither fails when its target is already gone.
func handleDelete(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name, err := fileName(r, "/delete/")
		if err != nil {
			httpError(w, http.StatusBadRequest, "%v", err)
			return
		}
		logCtx := slog.With("bucket", deps.Bucket, "key", name)

		var objectErr, recordErr error
		var g errgroup.Group
		g.Go(func() error {
			objectErr = deps.Objects.Delete(r.Context(), deps.Bucket, name)
			return objectErr
		})
		g.Go(func() error {
			recordErr = deps.Records.Delete(r.Context(), models.DocumentKey{Name: name, Bucket: deps.Bucket})
			return recordErr
		})

		// Wait reports only the first failure; both are returned to the caller.
		if g.Wait() != nil {
			err := multierr.Combine(objectErr, recordErr)
			logCtx.Error("Delete error", "error", err)
			httpError(w, http.StatusInternalServerError, "%v", err)
			return
		}
		logCtx.Info("Deleted file.")
		writeJSON(w, http.StatusOK, map[string]string{"message": fmt.Sprintf("File %s deleted successfully", name)})
	}
}

func handleDownload(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name, err := fileName(r, "/download/")
		if err != nil {
			httpError(w, http.StatusBadRequest, "%v", err)
			return
		}
		downloadURL, err := deps.Objects.SignedURL(deps.Bucket, name, http.MethodGet, "", signedURLExpiry)
		if err != nil {
			slog.Error("Download error", "key", name, "error", err)
			httpError(w, http.StatusInternalServerError, "%v", err)
			return
		}
		http.Redirect(w, r, downloadURL, http.StatusFound)
	}
}

func handlePlaintext(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name, err := fileName(r, "/plaintext/")
		if err != nil {
			httpError(w, http.StatusBadRequest, "%v", err)
			return
		}
		doc, err := deps.Records.Get(r.Context(), models.DocumentKey{Name: name, Bucket: deps.Bucket})
		if err != nil && !errors.Is(err, models.ErrRecordNotFound) {
			slog.Error("Plaintext error", "key", name, "error", err)
			httpError(w, http.StatusInternalServerError, "%v", err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"plaintext": doc.PlaintextOr(NoPlaintext)})
	}
}
