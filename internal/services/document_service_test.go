package services

import (
	"context"
	"errors"
	"testing"

	"knowledgescout/internal/core"
	db "knowledgescout/internal/core/database"
	"knowledgescout/internal/core/ingest"
	objectclient "knowledgescout/internal/core/object-client"
	"knowledgescout/internal/core/responder"
	"knowledgescout/internal/models"
)

func newDocumentService(t *testing.T, store *db.MemoryClient, ai *responder.Responder) (*DocumentService, *objectclient.LocalClient) {
	t.Helper()
	obj, err := objectclient.NewLocalClient(t.TempDir())
	if err != nil {
		t.Fatalf("local object client: %v", err)
	}
	return NewDocumentService(store, obj, ai, "test-bucket"), obj
}

func TestGetHidesOtherUsersDocuments(t *testing.T) {
	store := db.NewMemoryClient()
	svc, _ := newDocumentService(t, store, responder.New(nil))
	doc := seedDocument(t, store, "user-1", models.StatusCompleted, "Hello world")

	if _, err := svc.Get(context.Background(), "user-1", doc.ID); err != nil {
		t.Fatalf("owner Get() error: %v", err)
	}
	if _, err := svc.Get(context.Background(), "user-2", doc.ID); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("non-owner Get() error = %v, want ErrNotFound", err)
	}
	if _, err := svc.Get(context.Background(), "user-1", "missing"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("missing Get() error = %v, want ErrNotFound", err)
	}
}

func TestDeleteRemovesFileAndCascades(t *testing.T) {
	store := db.NewMemoryClient()
	svc, obj := newDocumentService(t, store, responder.New(nil))
	doc := seedDocument(t, store, "user-1", models.StatusCompleted, "Hello world")
	if _, err := obj.UploadFile(context.Background(), "test-bucket", doc.StoragePath, []byte("Hello world"), "text/plain"); err != nil {
		t.Fatalf("seed file: %v", err)
	}

	conv := NewConversationService(store, responder.New(nil))
	session, err := conv.CreateSession(context.Background(), "user-1", doc.ID, "")
	if err != nil {
		t.Fatalf("CreateSession() error: %v", err)
	}

	if err := svc.Delete(context.Background(), "user-1", doc.ID); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}

	if got, _ := store.GetDocumentByID(context.Background(), doc.ID); got != nil {
		t.Fatalf("document still present after delete")
	}
	if got, _ := store.GetChatSessionByID(context.Background(), session.ID); got != nil {
		t.Fatalf("session survived document delete")
	}
	exists, err := obj.FileExists(context.Background(), "test-bucket", doc.StoragePath)
	if err != nil {
		t.Fatalf("FileExists() error: %v", err)
	}
	if exists {
		t.Fatalf("stored file survived document delete")
	}
}

func TestSuggestQuestionsRequiresExtractedText(t *testing.T) {
	store := db.NewMemoryClient()
	svc, _ := newDocumentService(t, store, responder.New(nil))
	doc := seedDocument(t, store, "user-1", models.StatusProcessing, "")

	_, err := svc.SuggestQuestions(context.Background(), "user-1", doc.ID)
	if !errors.Is(err, core.ErrDocumentNotReady) {
		t.Fatalf("SuggestQuestions() error = %v, want ErrDocumentNotReady", err)
	}
}

func TestSuggestQuestionsDisabledFallback(t *testing.T) {
	store := db.NewMemoryClient()
	svc, _ := newDocumentService(t, store, responder.New(nil))
	doc := seedDocument(t, store, "user-1", models.StatusCompleted, "Hello world")

	questions, err := svc.SuggestQuestions(context.Background(), "user-1", doc.ID)
	if err != nil {
		t.Fatalf("SuggestQuestions() error: %v", err)
	}
	if len(questions) != 1 || questions[0] != responder.DisabledQuestionsMessage {
		t.Fatalf("SuggestQuestions() = %v, want disabled fallback", questions)
	}
}

func TestRegenerateSummaryDegradesWithoutPersisting(t *testing.T) {
	store := db.NewMemoryClient()
	svc, _ := newDocumentService(t, store, responder.New(&stubLLM{err: errors.New("boom")}))
	doc := seedDocument(t, store, "user-1", models.StatusCompleted, "Hello world")
	if err := store.UpdateDocumentSummary(context.Background(), doc.ID, "original summary"); err != nil {
		t.Fatalf("seed summary: %v", err)
	}

	summary, err := svc.RegenerateSummary(context.Background(), "user-1", doc.ID)
	if err != nil {
		t.Fatalf("RegenerateSummary() error: %v", err)
	}
	if summary != ingest.SummaryUnavailableMessage {
		t.Fatalf("RegenerateSummary() = %q, want unavailable placeholder", summary)
	}

	got, _ := store.GetDocumentByID(context.Background(), doc.ID)
	if got.Summary != "original summary" {
		t.Fatalf("degraded regeneration overwrote stored summary: %q", got.Summary)
	}
}
