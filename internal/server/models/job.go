package models

import "time"

// Fine-tune job statuses. A job starts pending and moves to running, then to
// one of the terminal states.
const (
	JobStatusPending   = "pending"
	JobStatusRunning   = "running"
	JobStatusCompleted = "completed"
	JobStatusFailed    = "failed"
	JobStatusCancelled = "cancelled"
)

type FineTuneJob struct {
	ID                  string
	ModelName           string
	BaseModel           string
	Status              string
	Progress            int
	Epochs              int
	LearningRate        float64
	TrainingImagesCount int
	CreatedBy           string
	CreatedAt           time.Time
	StartedAt           *time.Time
	CompletedAt         *time.Time
	Error               *string
}

// Cancellable reports whether the job may still be cancelled.
func (j *FineTuneJob) Cancellable() bool {
	return j.Status == JobStatusPending || j.Status == JobStatusRunning
}
