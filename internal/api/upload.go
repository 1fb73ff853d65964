package api

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"mime/multipart"
	"net/http"
)

// handleUpload is the legacy direct upload. It stores the first file part that has a
// name and content; browsers use signed URLs instead.
func handleUpload(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.ContentLength == 0 {
			httpError(w, http.StatusBadRequest, "No file data received")
			return
		}
		contentType := r.Header.Get("Content-Type")
		_, params, err := mime.ParseMediaType(contentType)
		if err != nil || params["boundary"] == "" {
			httpError(w, http.StatusBadRequest, "No boundary found in content-type: %s", contentType)
			return
		}

		body := http.MaxBytesReader(w, r.Body, maxUploadBodySize)
		defer body.Close()
		mr := multipart.NewReader(body, params["boundary"])
		for {
			part, err := mr.NextPart()
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				slog.Warn("Upload error", "error", err)
				httpError(w, http.StatusBadRequest, "Upload failed: %v", err)
				return
			}

			if part.FileName() == "" {
				continue
			}
			filename := rawFileName(part)
			content, err := io.ReadAll(part)
			if err != nil {
				httpError(w, http.StatusBadRequest, "Upload failed: %v", err)
				return
			}
			if len(content) == 0 {
				continue
			}

			partType := part.Header.Get("Content-Type")
			if partType == "" {
				partType = "application/octet-stream"
			}
			if err := deps.Objects.Write(r.Context(), deps.Bucket, filename, content, partType); err != nil {
				slog.Error("Upload error", "key", filename, "error", err)
				httpError(w, http.StatusInternalServerError, "Upload failed: %v", err)
				return
			}
			slog.Info("File uploaded.", "bucket", deps.Bucket, "key", filename, "bytes", len(content))
			writeJSON(w, http.StatusOK, map[string]string{"message": fmt.Sprintf("File %s uploaded successfully", filename)})
			return
		}
		httpError(w, http.StatusBadRequest, "No valid files found in request")
	}
}

// rawFileName returns the filename parameter as sent. Part.FileName keeps only the
// last path element, but uploads may name objects under a prefix.
func rawFileName(part *multipart.Part) string {
	_, params, err := mime.ParseMediaType(part.Header.Get("Content-Disposition"))
	if err != nil || params["filename"] == "" {
		return part.FileName()
	}
	return params["filename"]
}
