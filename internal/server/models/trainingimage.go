package models

import "time"

// TrainingImage is one labelled example for fine-tuning: an uploaded image
// plus the prompt it should be shown with and the expected model output.
// The image bytes live in object storage under StorageKey.
type TrainingImage struct {
	ID             string
	Filename       string
	StorageKey     string
	Prompt         string
	ExpectedOutput string
	SizeBytes      int64
	Format         string
	UploadedBy     string
	CreatedAt      time.Time
}
