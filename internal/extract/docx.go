package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

const (
	docxMainPart     = "word/document.xml"
	wordprocessingNS = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
)

// DocxText returns the text of every run in a .docx package, one run per line, in
// document order.
func DocxText(content []byte) string {
	text, err := docxRuns(content)
	if err != nil {
		return fmt.Sprintf("Error extracting .docx text: %v", err)
	}
	if text == "" {
		return EmptyDocxText
	}
	return text
}

func docxRuns(content []byte) (string, error) {
	archive, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", err
	}
	part, err := archive.Open(docxMainPart)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", docxMainPart, err)
	}
	defer part.Close()

	decoder := xml.NewDecoder(part)
	var runs []string
	var current *strings.Builder
	for {
		tok, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("parse %s: %w", docxMainPart, err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Space == wordprocessingNS && t.Name.Local == "t" {
				current = &strings.Builder{}
			}
		case xml.CharData:
			if current != nil {
				current.Write(t)
			}
		case xml.EndElement:
			if current != nil && t.Name.Space == wordprocessingNS && t.Name.Local == "t" {
				if current.Len() > 0 {
					runs = append(runs, current.String())
				}
				current = nil
			}
		}
	}
	return strings.Join(runs, "\n"), nil
}
