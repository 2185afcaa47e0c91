package meshy

import (
	"fmt"
	"strings"
)

// TaskStatus is the provider task state collapsed to three values.
type TaskStatus string

const (
	TaskPending   TaskStatus = "pending"
	TaskSucceeded TaskStatus = "succeeded"
	TaskFailed    TaskStatus = "failed"
)

// ParseTaskStatus maps the provider's status strings onto TaskStatus. Unknown
// values are treated as still pending.
func ParseTaskStatus(raw string) TaskStatus {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "SUCCEEDED":
		return TaskSucceeded
	case "FAILED", "CANCELED", "CANCELLED", "EXPIRED":
		return TaskFailed
	default:
		return TaskPending
	}
}

type PreviewRequest struct {
	Prompt            string
	ReferenceImageURL string
}

type ModelURLs struct {
	GLB string
	OBJ string
}

type Task struct {
	ID           string
	Status       TaskStatus
	Progress     int
	HasProgress  bool
	Message      string
	ImageURLs    []string
	ModelURLs    ModelURLs
	ErrorMessage string
}

// Done reports whether the task finished and reached 100 percent. The
// provider occasionally reports SUCCEEDED before progress reaches 100.
func (t *Task) Done() bool {
	return t.Status == TaskSucceeded && (!t.HasProgress || t.Progress >= 100)
}

// FirstImageURL returns the first result image or "".
func (t *Task) FirstImageURL() string {
	if len(t.ImageURLs) == 0 {
		return ""
	}
	return t.ImageURLs[0]
}

// APIError is returned for non-2xx responses.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("meshy api error: status %d: %s", e.StatusCode, e.Message)
}
