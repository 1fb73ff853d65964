package models

import (
	"errors"
	"fmt"
)

// These structs define the JSON payloads exchanged between the Cloud Workflow and the
// stage functions. Upstream failures are reported in the Error field with a 200
// status so the workflow can branch on them.

// ErrInvalidRequest marks a stage request that is missing required fields.
var ErrInvalidRequest = errors.New("invalid request")

// StageRequest is the input of every per-document stage function.
type StageRequest struct {
	Bucket string `json:"bucket"`
	Key    string `json:"key"`
}

// Validate reports whether the request names an object.
func (r *StageRequest) Validate() error {
	if r.Bucket == "" || r.Key == "" {
		return fmt.Errorf("%w: bucket and key are required", ErrInvalidRequest)
	}
	return nil
}

// DocumentKey returns the record key addressed by the request.
func (r *StageRequest) DocumentKey() DocumentKey {
	return DocumentKey{Name: r.Key, Bucket: r.Bucket}
}

// MetadataResponse is the output of the metadata-extractor function.
type MetadataResponse struct {
	Bucket   string `json:"bucket"`
	Key      string `json:"key"`
	Metadata string `json:"metadata,omitempty"`
	FileType string `json:"fileType,omitempty"`
	Route    string `json:"route,omitempty"`
	Error    string `json:"error,omitempty"`
}

// TextResponse is the output of the text-extractor and label-detector functions and
// of a successful OCR callback.
type TextResponse struct {
	Bucket    string `json:"bucket"`
	Key       string `json:"key"`
	WordCount int    `json:"wordCount"`
	Error     string `json:"error,omitempty"`
}

// StartOCRRequest is the input of the ocr-starter function. TaskToken is the
// workflow callback URL the poll loop reports to.
type StartOCRRequest struct {
	StageRequest
	TaskToken string `json:"taskToken"`
}

// Validate reports whether the request names an object and a callback.
func (r *StartOCRRequest) Validate() error {
	if err := r.StageRequest.Validate(); err != nil {
		return err
	}
	if r.TaskToken == "" {
		return fmt.Errorf("%w: taskToken is required", ErrInvalidRequest)
	}
	return nil
}

// StartOCRResponse is the output of the ocr-starter function.
type StartOCRResponse struct {
	JobID  string `json:"jobId,omitempty"`
	Bucket string `json:"bucket"`
	Key    string `json:"key"`
	Error  string `json:"error,omitempty"`
}

// SummaryResponse is the output of the keyphrase-summarizer function.
type SummaryResponse struct {
	Bucket  string `json:"bucket"`
	Key     string `json:"key"`
	Summary string `json:"summary,omitempty"`
	Error   string `json:"error,omitempty"`
}

// StatusResponse is the output of the summary-updater and record-store functions.
type StatusResponse struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message,omitempty"`
	Error      string `json:"error,omitempty"`
}

// StoreRecordRequest is the input of the record-store function. The workflow sends
// either a document summary or, from its error handler, an error and cause.
type StoreRecordRequest struct {
	Bucket  string  `json:"bucket,omitempty"`
	Key     string  `json:"key,omitempty"`
	Summary *string `json:"summary,omitempty"`
	Error   string  `json:"error,omitempty"`
	Cause   string  `json:"cause,omitempty"`
}

// PollMessage is the queued unit of work for one outstanding OCR job.
type PollMessage struct {
	JobID     string `json:"jobId"`
	Bucket    string `json:"bucket"`
	Key       string `json:"key"`
	TaskToken string `json:"taskToken"`
	Attempt   int    `json:"attempt"`
}

// DocumentKey returns the record key addressed by the message.
func (m *PollMessage) DocumentKey() DocumentKey {
	return DocumentKey{Name: m.Key, Bucket: m.Bucket}
}

// CallbackPayload is the body posted to a workflow callback URL.
type CallbackPayload struct {
	Status string        `json:"status"`
	Output *TextResponse `json:"output,omitempty"`
	Error  string        `json:"error,omitempty"`
	Cause  string        `json:"cause,omitempty"`
}

// Callback statuses understood by the workflow definition.
const (
	CallbackSuccess = "success"
	CallbackFailure = "failure"
)
