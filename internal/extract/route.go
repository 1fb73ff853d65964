package extract

import (
	"path"
	"strings"
)

// Route names the workflow branch that produces plaintext for a file type.
type Route string

const (
	RouteText        Route = "text"
	RouteOCR         Route = "ocr"
	RouteLabels      Route = "labels"
	RouteUnsupported Route = "unsupported"
)

// UnknownFileType is recorded for object names without an extension.
const UnknownFileType = "unknown"

var routes = map[string]Route{
	"txt":  RouteText,
	"text": RouteText,
	"md":   RouteText,
	"csv":  RouteText,
	"tsv":  RouteText,
	"json": RouteText,
	"log":  RouteText,
	"xml":  RouteText,
	"html": RouteText,
	"htm":  RouteText,
	"yaml": RouteText,
	"yml":  RouteText,
	"rtf":  RouteText,
	"docx": RouteText,
	"xlsx": RouteText,
	"pdf":  RouteOCR,
	"tif":  RouteOCR,
	"tiff": RouteOCR,
	"png":  RouteLabels,
	"jpg":  RouteLabels,
	"jpeg": RouteLabels,
	"gif":  RouteLabels,
	"bmp":  RouteLabels,
	"webp": RouteLabels,
}

var ocrMIMETypes = map[string]string{
	"pdf":  "application/pdf",
	"tif":  "image/tiff",
	"tiff": "image/tiff",
	"png":  "image/png",
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"gif":  "image/gif",
	"bmp":  "image/bmp",
	"webp": "image/webp",
}

// FileType returns the lower-cased extension of an object name, or UnknownFileType.
func FileType(name string) string {
	base := path.Base(name)
	i := strings.LastIndex(base, ".")
	if i < 0 || i == len(base)-1 {
		return UnknownFileType
	}
	return strings.ToLower(base[i+1:])
}

// RouteFor returns the workflow branch for a file type.
func RouteFor(fileType string) Route {
	if r, ok := routes[fileType]; ok {
		return r
	}
	return RouteUnsupported
}

// OCRMIMEType returns the MIME type the OCR service expects for a file type, and
// whether the type can be OCR'd at all.
func OCRMIMEType(fileType string) (string, bool) {
	mime, ok := ocrMIMETypes[fileType]
	return mime, ok
}
