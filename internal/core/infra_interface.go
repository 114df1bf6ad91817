package core

import (
	"context"

	"knowledgescout/internal/models"
)

// DbClient defines all persistence operations the services need. It abstracts
// Postgres so higher layers never depend on a specific DB; lookups that miss
// return (nil, nil) rather than an error.
type DbClient interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)

	CreateDocument(ctx context.Context, doc *models.Document) error
	GetDocumentByID(ctx context.Context, id string) (*models.Document, error)
	ListDocumentsByUser(ctx context.Context, userID string) ([]models.Document, error)
	// UpdateDocumentStatus moves a still-processing document to status. It is
	// a no-op once the document reached a terminal status.
	UpdateDocumentStatus(ctx context.Context, id string, status string) error
	// UpdateDocumentContent writes the terminal result of ingestion: status,
	// extracted text and summary. Same terminal-state guard as above.
	UpdateDocumentContent(ctx context.Context, id, status, extractedText, summary string) error
	// UpdateDocumentSummary replaces the summary of an already-processed document.
	UpdateDocumentSummary(ctx context.Context, id, summary string) error
	DeleteDocument(ctx context.Context, id string) error

	CreateChatSession(ctx context.Context, session *models.ChatSession) error
	GetChatSessionByID(ctx context.Context, id string) (*models.ChatSession, error)
	ListChatSessionsByUser(ctx context.Context, userID string) ([]models.ChatSession, error)
	DeleteChatSession(ctx context.Context, id string) error

	AddChatMessage(ctx context.Context, message *models.ChatMessage) error
	GetMessagesBySession(ctx context.Context, sessionID string) ([]models.ChatMessage, error)

	CreateIngestJob(ctx context.Context, job *models.IngestJob) error
	DeleteIngestJob(ctx context.Context, documentID string) error
	ListIngestJobs(ctx context.Context) ([]models.IngestJob, error)

	Close() error
}

// ObjectClient defines interactions with file storage. It's abstract so the
// S3 backend can be swapped for the local-disk one (dev, tests).
type ObjectClient interface {
	UploadFile(ctx context.Context, bucket, key string, data []byte, contentType string) (path string, err error)
	GetFile(ctx context.Context, bucket, key string) ([]byte, error)
	DeleteFile(ctx context.Context, bucket, key string) error
	FileExists(ctx context.Context, bucket, key string) (bool, error)
}

// LLMProvider generates text from a system prompt and user prompt. The
// Responder is its only caller.
type LLMProvider interface {
	Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// DocumentExtractor turns raw file bytes into plain text. Total: every
// failure is converted to placeholder content, never an error.
type DocumentExtractor interface {
	ExtractText(data []byte, contentType string) string
}
