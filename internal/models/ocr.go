package models

// OCRJobStatus is the state of an asynchronous text-detection job.
type OCRJobStatus string

const (
	OCRSubmitted  OCRJobStatus = "SUBMITTED"
	OCRInProgress OCRJobStatus = "IN_PROGRESS"
	OCRSucceeded  OCRJobStatus = "SUCCEEDED"
	OCRFailed     OCRJobStatus = "FAILED"
)

// Terminal reports whether no further transitions can occur.
func (s OCRJobStatus) Terminal() bool {
	return s == OCRSucceeded || s == OCRFailed
}

// OCRResult is one status check of a text-detection job. Lines holds the detected
// line-level text, in service order, and is only set once the job has succeeded.
type OCRResult struct {
	Status        OCRJobStatus
	StatusMessage string
	Lines         []string
}
