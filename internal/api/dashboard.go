package api

import (
	"bytes"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"sort"
	"strings"

	"github.com/Lllllllleong/documentexplorer/internal/models"
)

const homeHTML = `<html><head><title>Home</title></head><body><h1>Document Processing System</h1><p><a href="/">View Dashboard</a></p><p><a href="/files">View Files API</a></p></body></html>`

type fileCard struct {
	Name     string
	FileType string
	Size     string
	Uploaded string
	Summary  string
}

type dashboardData struct {
	Files    []fileCard
	BasePath string
}

var dashboardTemplate = template.Must(template.New("dashboard").Parse(dashboardHTML))

func handleHome() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(homeHTML))
	}
}

func handleDashboard(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		docs, err := deps.Records.Scan(r.Context())
		if err != nil {
			slog.Error("Failed to load dashboard", "error", err)
			htmlError(w, err)
			return
		}

		var buf bytes.Buffer
		if err := dashboardTemplate.Execute(&buf, dashboardData{Files: fileCards(docs), BasePath: deps.BasePath}); err != nil {
			slog.Error("Failed to render dashboard", "error", err)
			htmlError(w, err)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		_, _ = buf.WriteTo(w)
	}
}

func htmlError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "text/html")
	w.WriteHeader(http.StatusInternalServerError)
	fmt.Fprintf(w, "<html><body><h1>Error</h1><p>%s</p></body></html>", template.HTMLEscapeString(err.Error()))
}

// fileCards orders records newest first and formats them for display.
func fileCards(docs []*models.Document) []fileCard {
	sorted := make([]*models.Document, len(docs))
	copy(sorted, docs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].TimeUploaded > sorted[j].TimeUploaded
	})

	cards := make([]fileCard, 0, len(sorted))
	for _, d := range sorted {
		cards = append(cards, fileCard{
			Name:     orUnknown(d.Name),
			FileType: strings.ToUpper(orUnknown(d.FileType)),
			Size:     formatSize(d.FileSize),
			Uploaded: formatUploaded(d.TimeUploaded),
			Summary:  d.SummaryOr("Processing..."),
		})
	}
	return cards
}

func formatSize(bytes int64) string {
	if bytes < 1024*1024 {
		return fmt.Sprintf("%.1fKB", float64(bytes)/1024)
	}
	return fmt.Sprintf("%.1fMB", float64(bytes)/1024/1024)
}

// formatUploaded shows a TimeUploaded value to the second, as "YYYY-MM-DD HH:MM:SS".
func formatUploaded(ts string) string {
	if ts == "" {
		return "Unknown"
	}
	if len(ts) > 19 {
		ts = ts[:19]
	}
	return strings.Replace(ts, "T", " ", 1)
}

func orUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}

const dashboardHTML = `<html><head><meta charset="UTF-8"><title>Intelligent Document Explorer</title>
<style>
* { margin: 0; padding: 0; box-sizing: border-box; }
body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; background: #f5f7fa; color: #2c3e50; }
.container { max-width: 1200px; margin: 0 auto; padding: 20px; }
.header { text-align: center; margin-bottom: 40px; }
.header h1 { font-size: 2.5rem; margin-bottom: 10px; }
.header p { color: #7f8c8d; font-size: 1.1rem; }
.panel { background: white; border-radius: 12px; padding: 30px; margin-bottom: 30px; box-shadow: 0 2px 10px rgba(0,0,0,0.1); }
.upload-area { border: 3px dashed #3498db; border-radius: 8px; padding: 40px; text-align: center; }
.btn { padding: 12px 24px; border: none; border-radius: 6px; cursor: pointer; font-size: 1rem; }
.btn-icon { margin-right: 5px; padding: 6px 12px; width: 32px; }
.btn-primary { background: #3498db; color: white; }
.btn-secondary { background: #6c757d; color: white; }
.btn-danger { background: #e74c3c; color: white; }
.file-grid { display: grid; gap: 15px; }
.file-card { background: #f8f9fa; border: 1px solid #e9ecef; border-radius: 6px; padding: 12px 16px; }
.file-row, .file-header { display: flex; justify-content: space-between; align-items: center; }
.file-info { flex: 1; }
.file-name { font-weight: 600; }
.file-meta { display: flex; gap: 15px; color: #7f8c8d; font-size: 0.85rem; margin-right: 10px; }
.file-summary { color: #666; font-size: 0.9rem; font-style: italic; margin-top: 4px; }
.modal { display: none; position: fixed; z-index: 1000; left: 0; top: 0; width: 100%; height: 100%; background: rgba(0,0,0,0.5); }
.modal-content { background: white; margin: 5% auto; padding: 20px; border-radius: 8px; width: 80%; max-width: 800px; max-height: 80%; overflow-y: auto; }
.close { float: right; font-size: 28px; cursor: pointer; }
.success { background: #d4edda; color: #155724; padding: 12px; margin-top: 15px; border-radius: 6px; }
.error { background: #f8d7da; color: #721c24; padding: 12px; margin-top: 15px; border-radius: 6px; }
.empty-state { text-align: center; padding: 60px 20px; color: #7f8c8d; }
</style></head>
<body>
<div class="container">
  <div class="header">
    <h1>Intelligent Document Explorer</h1>
    <p>Upload and analyze your documents with AI-powered text extraction</p>
  </div>

  <div class="panel">
    <div class="upload-area">
      <h3>Upload Documents</h3>
      <input type="file" id="fileInput" multiple style="margin: 20px 0;">
      <br>
      <button class="btn btn-primary" onclick="uploadFiles()">Upload Files</button>
      <div id="uploadStatus"></div>
    </div>
  </div>

  <div class="panel">
    <h3>Processed Files ({{len .Files}})</h3>
    <div class="file-grid" id="filesList">
    {{range .Files}}
      <div class="file-card">
        <div class="file-row">
          <div class="file-info">
            <div class="file-header">
              <div class="file-name">{{.Name}}</div>
              <div class="file-meta">
                <span class="meta-type">{{.FileType}}</span>
                <span class="meta-size">{{.Size}}</span>
                <span class="meta-date">{{.Uploaded}}</span>
              </div>
            </div>
            <div class="file-summary">{{.Summary}}</div>
          </div>
          <div>
            <button class="btn btn-secondary btn-icon" onclick="showPlaintext({{.Name}})">T</button>
            <button class="btn btn-primary btn-icon" onclick="downloadFile({{.Name}})">&darr;</button>
            <button class="btn btn-danger btn-icon" onclick="deleteFile({{.Name}})">&times;</button>
          </div>
        </div>
      </div>
    {{else}}
      <div class="empty-state"><h3>No files yet</h3><p>Upload some documents to get started</p></div>
    {{end}}
    </div>
  </div>
</div>

<div id="plaintextModal" class="modal">
  <div class="modal-content">
    <span class="close" onclick="closeModal()">&times;</span>
    <h3 id="modalTitle">Extracted Text</h3>
    <pre id="modalText" style="white-space: pre-wrap; font-family: monospace; background: #f8f9fa; padding: 15px; border-radius: 4px;"></pre>
  </div>
</div>

<script>
const basePath = {{.BasePath}};

function downloadFile(filename) {
  window.open(basePath + '/download/' + encodeURIComponent(filename), '_blank');
}

async function showPlaintext(filename) {
  try {
    const response = await fetch(basePath + '/plaintext/' + encodeURIComponent(filename));
    const data = await response.json();
    document.getElementById('modalTitle').textContent = 'Extracted Text - ' + filename;
    document.getElementById('modalText').textContent = data.plaintext || 'No text available';
    document.getElementById('plaintextModal').style.display = 'block';
  } catch (error) {
    alert('Error loading plaintext: ' + error.message);
  }
}

function closeModal() {
  document.getElementById('plaintextModal').style.display = 'none';
}

async function deleteFile(filename) {
  if (!confirm('Are you sure you want to delete ' + filename + '?')) return;
  try {
    const response = await fetch(basePath + '/delete/' + encodeURIComponent(filename), { method: 'DELETE' });
    if (response.ok) {
      window.location.reload();
    } else {
      alert('Failed to delete file');
    }
  } catch (error) {
    alert('Error deleting file: ' + error.message);
  }
}

async function uploadFiles() {
  const files = document.getElementById('fileInput').files;
  const status = document.getElementById('uploadStatus');
  if (files.length === 0) {
    status.innerHTML = '<div class="error">Please select files to upload</div>';
    return;
  }
  status.innerHTML = '<div>Uploading ' + files.length + ' files...</div>';
  let successCount = 0;
  for (const file of files) {
    try {
      const contentType = file.type || 'application/octet-stream';
      const urlResponse = await fetch(basePath + '/presigned-url', {
        method: 'POST',
        headers: { 'Content-Type': 'application/json' },
        body: JSON.stringify({ filename: file.name, contentType: contentType })
      });
      if (!urlResponse.ok) {
        console.error('Failed to get upload URL for:', file.name);
        continue;
      }
      const urlData = await urlResponse.json();
      const uploadResponse = await fetch(urlData.uploadUrl, {
        method: 'PUT',
        body: file,
        headers: { 'Content-Type': contentType }
      });
      if (uploadResponse.ok) {
        successCount++;
      } else {
        console.error('Upload failed for:', file.name, 'Status:', uploadResponse.status);
      }
    } catch (error) {
      console.error('Upload error for', file.name, ':', error);
    }
  }
  status.innerHTML = '<div class="success">Uploaded ' + successCount + ' of ' + files.length + ' files. Processing... refreshing in 3 seconds.</div>';
  document.getElementById('fileInput').value = '';
  setTimeout(() => window.location.reload(), 3000);
}
</script>
</body></html>`
