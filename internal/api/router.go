// Package api is the HTTP front end of the document explorer: the dashboard, the
// file listing and the signed-URL upload and download endpoints.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Lllllllleong/documentexplorer/internal/models"
	"github.com/go-chi/chi/v5"
)

// signedURLExpiry bounds upload and download credentials.
const signedURLExpiry = time.Hour

const maxUploadBodySize = 32 << 20 // 32MB

// Objects is the storage surface the API needs.
type Objects interface {
	Write(ctx context.Context, bucket, name string, content []byte, contentType string) error
	Delete(ctx context.Context, bucket, name string) error
	SignedURL(bucket, name, method, contentType string, expiry time.Duration) (string, error)
}

// Records is the metadata table surface the API needs.
type Records interface {
	Get(ctx context.Context, key models.DocumentKey) (*models.Document, error)
	Delete(ctx context.Context, key models.DocumentKey) error
	Scan(ctx context.Context) ([]*models.Document, error)
}

type AppDeps struct {
	Objects Objects
	Records Records
	// Bucket holds every uploaded document.
	Bucket string
	// BasePath prefixes the API links the dashboard's scripts call.
	BasePath string
}

func NewAppHandler(deps AppDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(cors, recoverJSON)

	r.Get("/", handleDashboard(deps))
	r.Get("/home", handleHome())
	r.Post("/upload", handleUpload(deps))
	r.Get("/files", handleListFiles(deps))
	r.Post("/presigned-url", handlePresignedURL(deps))
	r.Delete("/delete/*", handleDelete(deps))
	r.Get("/download/*", handleDownload(deps))
	r.Get("/plaintext/*", handlePlaintext(deps))

	r.NotFound(handleNotFound)
	r.MethodNotAllowed(handleNotFound)
	return r
}

// cors adds the CORS headers to every response and answers preflight requests.
func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Headers", "Content-Type")
		h.Set("Access-Control-Allow-Methods", "GET,POST,DELETE,OPTIONS")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// recoverJSON turns a handler panic into a JSON 500.
func recoverJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				slog.Error("Handler panicked.", "method", r.Method, "path", r.URL.Path, "panic", rec)
				httpError(w, http.StatusInternalServerError, "%v", rec)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func handleNotFound(w http.ResponseWriter, r *http.Request) {
	slog.Warn("No route found.", "method", r.Method, "path", r.URL.Path)
	writeJSON(w, http.StatusNotFound, map[string]any{
		"error": fmt.Sprintf("Not found: %s %s", r.Method, r.URL.Path),
		"debug": map[string]any{
			"method":   r.Method,
			"path":     r.URL.Path,
			"resource": r.URL.EscapedPath(),
		},
	})
}

// fileName returns the URL-decoded object name that follows prefix in the request
// path. Names may contain "/".
func fileName(r *http.Request, prefix string) (string, error) {
	escaped := r.URL.EscapedPath()
	i := strings.Index(escaped, prefix)
	if i < 0 {
		return "", fmt.Errorf("invalid path %s", r.URL.Path)
	}
	name, err := url.PathUnescape(escaped[i+len(prefix):])
	if err != nil {
		return "", fmt.Errorf("invalid file name: %w", err)
	}
	if name == "" {
		return "", fmt.Errorf("missing file name")
	}
	return name, nil
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to write response", "error", err)
	}
}

func httpError(w http.ResponseWriter, code int, format string, args ...any) {
	writeJSON(w, code, map[string]string{"error": fmt.Sprintf(format, args...)})
}
