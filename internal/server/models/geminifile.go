package models

import "time"

// GeminiFile records an image pushed to the Gemini File API. The file bytes
// live with Google; only the metadata is kept here. Deleting a record does
// not touch the remote file, which expires on its own.
type GeminiFile struct {
	ID               string
	GeminiName       string
	GeminiURI        string
	OriginalFilename string
	MimeType         string
	SizeBytes        int64
	SHA256Hash       *string
	State            string
	Source           string
	ExpirationTime   *string
	UploadedBy       string
	UpdatedBy        string
	UploadedAt       time.Time
	UpdatedAt        time.Time
}
