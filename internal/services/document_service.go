package services

import (
	"context"
	"log"

	"knowledgescout/internal/core"
	"knowledgescout/internal/core/ingest"
	"knowledgescout/internal/core/responder"
	"knowledgescout/internal/models"
)

// DocumentService covers reads, deletion and the on-demand AI operations for
// documents a user owns. Ownership misses fold into core.ErrNotFound.
type DocumentService struct {
	db      core.DbClient
	storage core.ObjectClient
	ai      *responder.Responder
	bucket  string
}

func NewDocumentService(db core.DbClient, storage core.ObjectClient, ai *responder.Responder, bucket string) *DocumentService {
	return &DocumentService{db: db, storage: storage, ai: ai, bucket: bucket}
}

func (s *DocumentService) Get(ctx context.Context, userID, docID string) (*models.Document, error) {
	doc, err := s.db.GetDocumentByID(ctx, docID)
	if err != nil {
		return nil, err
	}
	if doc == nil || doc.UserID != userID {
		return nil, core.ErrNotFound
	}
	return doc, nil
}

func (s *DocumentService) ListByUser(ctx context.Context, userID string) ([]models.Document, error) {
	return s.db.ListDocumentsByUser(ctx, userID)
}

// Delete removes the stored file best-effort, then the row; sessions,
// messages and any pending job cascade with it.
func (s *DocumentService) Delete(ctx context.Context, userID, docID string) error {
	doc, err := s.Get(ctx, userID, docID)
	if err != nil {
		return err
	}
	if err := s.storage.DeleteFile(ctx, s.bucket, doc.StoragePath); err != nil {
		log.Printf("DocumentService: file delete for %s failed: %v", docID, err)
	}
	return s.db.DeleteDocument(ctx, docID)
}

// RegenerateSummary re-runs summarization over the extracted text and
// persists the result. An unavailable model degrades to the fixed placeholder
// without overwriting the stored summary.
func (s *DocumentService) RegenerateSummary(ctx context.Context, userID, docID string) (string, error) {
	doc, err := s.Get(ctx, userID, docID)
	if err != nil {
		return "", err
	}
	if doc.ExtractedText == "" {
		return "", core.ErrDocumentNotReady
	}

	summary, err := s.ai.Summarize(ctx, doc.ExtractedText)
	if err != nil {
		log.Printf("DocumentService: summary regeneration for %s failed: %v", docID, err)
		return ingest.SummaryUnavailableMessage, nil
	}
	if err := s.db.UpdateDocumentSummary(ctx, docID, summary); err != nil {
		return "", err
	}
	return summary, nil
}

// SuggestQuestions returns suggested questions for a processed document.
func (s *DocumentService) SuggestQuestions(ctx context.Context, userID, docID string) ([]string, error) {
	doc, err := s.Get(ctx, userID, docID)
	if err != nil {
		return nil, err
	}
	if doc.ExtractedText == "" {
		return nil, core.ErrDocumentNotReady
	}
	return s.ai.GenerateQuestions(ctx, doc.ExtractedText), nil
}
