package models

import (
	"encoding/base64"
	"errors"
)

// Field names of a Document record in Firestore. Stages update records field by field
// using these names, so they must stay in sync with the struct tags below.
const (
	FieldName         = "Name"
	FieldBucket       = "Bucket"
	FieldFileType     = "FileType"
	FieldFileSize     = "FileSize"
	FieldTimeUploaded = "TimeUploaded"
	FieldPlaintext    = "Plaintext"
	FieldSummary      = "Summary"
)

// TimeUploadedLayout is the ISO-8601 layout used for the TimeUploaded field.
const TimeUploadedLayout = "2006-01-02T15:04:05.000000Z"

// ErrRecordNotFound is returned by record stores when no document exists for a key.
var ErrRecordNotFound = errors.New("record not found")

// DocumentKey identifies one uploaded object and its metadata record.
type DocumentKey struct {
	Name   string
	Bucket string
}

// ID returns the Firestore document ID for the key. Object names may contain "/",
// which Firestore forbids in IDs, so the pair is base64url encoded. Bucket names
// cannot contain "/", which keeps the encoding unambiguous.
func (k DocumentKey) ID() string {
	return base64.RawURLEncoding.EncodeToString([]byte(k.Bucket + "/" + k.Name))
}

// Document is the metadata record kept for every uploaded file. Every field besides
// the key is filled in incrementally as the pipeline stages complete.
type Document struct {
	Name         string  `firestore:"Name" json:"Name"`
	Bucket       string  `firestore:"Bucket" json:"Bucket"`
	FileType     string  `firestore:"FileType,omitempty" json:"FileType,omitempty"`
	FileSize     int64   `firestore:"FileSize,omitempty" json:"FileSize,omitempty"`
	TimeUploaded string  `firestore:"TimeUploaded,omitempty" json:"TimeUploaded,omitempty"`
	Plaintext    *string `firestore:"Plaintext,omitempty" json:"Plaintext,omitempty"`
	Summary      *string `firestore:"Summary,omitempty" json:"Summary,omitempty"`
}

// Key returns the record's composite key.
func (d *Document) Key() DocumentKey {
	return DocumentKey{Name: d.Name, Bucket: d.Bucket}
}

// PlaintextOr returns the extracted text, or fallback when it has not been written yet.
func (d *Document) PlaintextOr(fallback string) string {
	if d == nil || d.Plaintext == nil {
		return fallback
	}
	return *d.Plaintext
}

// SummaryOr returns the summary, or fallback when it has not been written yet.
func (d *Document) SummaryOr(fallback string) string {
	if d == nil || d.Summary == nil {
		return fallback
	}
	return *d.Summary
}
