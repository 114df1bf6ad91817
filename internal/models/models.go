package models

import (
	"time"
)

// Document status values. A document starts at StatusProcessing and moves to
// exactly one of the terminal states; terminal states never change again.
const (
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusError      = "error"
)

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// User represents an authenticated user of the system.
type User struct {
	ID           string    `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Avatar       string    `db:"avatar" json:"avatar,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// Document represents a user-uploaded file and the text extracted from it.
// ExtractedText and Summary stay empty until the ingestion pipeline reaches a
// terminal state; a completed document carries both, possibly as placeholder
// content when extraction or the AI call degraded.
type Document struct {
	ID            string    `db:"id" json:"id"`
	UserID        string    `db:"user_id" json:"user_id"`
	Title         string    `db:"title" json:"title"`
	FileName      string    `db:"file_name" json:"filename"`
	OriginalName  string    `db:"original_name" json:"original_name"`
	StoragePath   string    `db:"storage_path" json:"-"`
	FileSize      int64     `db:"file_size" json:"file_size"`
	ContentType   string    `db:"content_type" json:"mime_type"`
	Status        string    `db:"status" json:"status"` // processing | completed | error
	ExtractedText string    `db:"extracted_text" json:"extracted_text,omitempty"`
	Summary       string    `db:"summary" json:"summary,omitempty"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// ChatSession represents one conversation bound to a single document.
type ChatSession struct {
	ID         string    `db:"id" json:"id"`
	UserID     string    `db:"user_id" json:"user_id"`
	DocumentID string    `db:"document_id" json:"document_id"`
	Title      string    `db:"title" json:"title"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// ChatMessage represents an individual chat message (user or assistant).
// Messages are append-only and ordered by CreatedAt ascending.
type ChatMessage struct {
	ID         string    `db:"id" json:"id"`
	SessionID  string    `db:"session_id" json:"session_id"`
	Role       string    `db:"role" json:"role"` // "user" or "assistant"
	Content    string    `db:"content" json:"content"`
	Sources    []string  `db:"sources" json:"sources"`
	Confidence float64   `db:"confidence" json:"confidence"`
	CreatedAt  time.Time `db:"created_at" json:"timestamp"`
}

// IngestJob is the durable pending-work record for the ingestion pipeline.
// A row exists from upload until the document reaches a terminal status, so a
// restarted process can pick up documents left at "processing".
type IngestJob struct {
	DocumentID string    `db:"document_id" json:"document_id"`
	EnqueuedAt time.Time `db:"enqueued_at" json:"enqueued_at"`
}
