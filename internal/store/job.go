/**
 * Job model.
 *
 * A Job is the sole persisted entity. Rows move PENDING -> PROCESSING ->
 * COMPLETED or FAILED; the admin reset puts any row back to PENDING.
 */

package store

import "time"

type Status string

const (
	StatusPending    Status = "PENDING"
	StatusProcessing Status = "PROCESSING"
	StatusCompleted  Status = "COMPLETED"
	StatusFailed     Status = "FAILED"
)

// ValidStatus reports whether s is one of the four job states.
func ValidStatus(s Status) bool {
	switch s {
	case StatusPending, StatusProcessing, StatusCompleted, StatusFailed:
		return true
	}
	return false
}

// Job is a stored OCR job. FileData is only populated on the claim path;
// read paths carry FileSizeBytes instead so result payloads never embed the
// original bytes.
type Job struct {
	ID              string
	Status          Status
	DocumentType    string
	Email           string
	CallbackWebhook string
	FileData        []byte
	FileName        string
	MimeType        string
	OCRResult       *string
	ErrorMessage    *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
	ProcessedAt     *time.Time
	FileSizeBytes   int64
}

// NewJob carries the fields of a job to be created.
type NewJob struct {
	DocumentType    string
	Email           string
	CallbackWebhook string
	FileData        []byte
	FileName        string
	MimeType        string
}

// StuckJob is a PROCESSING row whose updatedAt has not advanced within the
// stuck threshold.
type StuckJob struct {
	ID        string
	FileName  string
	UpdatedAt time.Time
	StuckFor  time.Duration
}

// Stats aggregates the admin dashboard numbers.
type Stats struct {
	CountsByStatus      map[Status]int
	LastHourCount       int
	StuckJobs           []StuckJob
	AvgProcessingTimeMs int64
}
