package domain

import (
	"io"
	"time"
)

// Upload is what the transport layer hands to intake.
type Upload struct {
	Filename string
	Size     int64
	Body     io.Reader
}

// UploadedDocument is owned by exactly one pipeline run between acquire and release.
type UploadedDocument struct {
	ID           string    `json:"id"`
	Key          string    `json:"key"`
	Path         string    `json:"path"`
	Size         int64     `json:"size"`
	Extension    string    `json:"extension"`
	OriginalName string    `json:"original_name"`
	AcceptedAt   time.Time `json:"accepted_at"`
}

type Submission struct {
	RunID      string    `json:"run_id"`
	AcceptedAt time.Time `json:"accepted_at"`
}

type Preview struct {
	Domain     *Domain `json:"domain"`
	TextLength int     `json:"text_length"`
	Preview    string  `json:"preview"`
}
