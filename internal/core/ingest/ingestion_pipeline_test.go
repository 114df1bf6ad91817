package ingest

import (
	"context"
	"errors"
	"testing"
	"time"

	"knowledgescout/internal/core"
	db "knowledgescout/internal/core/database"
	"knowledgescout/internal/core/extract"
	objectclient "knowledgescout/internal/core/object-client"
	"knowledgescout/internal/core/responder"
	"knowledgescout/internal/models"
)

func newTestIngestor(t *testing.T) (*DocumentIngestor, *db.MemoryClient) {
	t.Helper()
	store := db.NewMemoryClient()
	obj, err := objectclient.NewLocalClient(t.TempDir())
	if err != nil {
		t.Fatalf("local object client: %v", err)
	}
	ing := NewDocumentIngestor(store, obj, extract.NewDocconvExtractor(), responder.New(nil), "test-bucket")
	return ing, store
}

func TestSubmitReturnsProcessingImmediately(t *testing.T) {
	ing, store := newTestIngestor(t)
	ctx := context.Background()

	doc, err := ing.Submit(ctx, "user-1", "notes.txt", "text/plain", []byte("Hello world"))
	if err != nil {
		t.Fatalf("Submit() error: %v", err)
	}
	if doc.Status != models.StatusProcessing {
		t.Fatalf("Submit() status = %q, want processing", doc.Status)
	}
	if doc.ID == "" {
		t.Fatalf("Submit() returned empty document id")
	}

	stored, err := store.GetDocumentByID(ctx, doc.ID)
	if err != nil || stored == nil {
		t.Fatalf("document not persisted: %v", err)
	}
	if stored.ExtractedText != "" || stored.Summary != "" {
		t.Fatalf("text/summary should be empty before processing, got %q / %q", stored.ExtractedText, stored.Summary)
	}

	jobs, err := store.ListIngestJobs(ctx)
	if err != nil {
		t.Fatalf("ListIngestJobs() error: %v", err)
	}
	if len(jobs) != 1 || jobs[0].DocumentID != doc.ID {
		t.Fatalf("expected one pending job for %s, got %v", doc.ID, jobs)
	}
}

func TestSubmitRejectsDisallowedType(t *testing.T) {
	ing, store := newTestIngestor(t)
	ctx := context.Background()

	_, err := ing.Submit(ctx, "user-1", "movie.mp4", "video/mp4", []byte("data"))
	var ve *core.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("Submit() error = %v, want ValidationError", err)
	}

	docs, _ := store.ListDocumentsByUser(ctx, "user-1")
	if len(docs) != 0 {
		t.Fatalf("rejected upload must not create a document, got %d", len(docs))
	}
}

func TestSubmitRejectsOversizeFile(t *testing.T) {
	ing, store := newTestIngestor(t)
	ctx := context.Background()

	_, err := ing.Submit(ctx, "user-1", "big.txt", "text/plain", make([]byte, MaxUploadBytes+1))
	var ve *core.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("Submit() error = %v, want ValidationError", err)
	}

	docs, _ := store.ListDocumentsByUser(ctx, "user-1")
	if len(docs) != 0 {
		t.Fatalf("rejected upload must not create a document, got %d", len(docs))
	}
}

func TestProcessOneCompletesPlainText(t *testing.T) {
	ing, store := newTestIngestor(t)
	ctx := context.Background()

	doc, err := ing.Submit(ctx, "user-1", "notes.txt", "text/plain", []byte("Hello world"))
	if err != nil {
		t.Fatalf("Submit() error: %v", err)
	}

	if err := ing.ProcessOne(ctx, doc.ID); err != nil {
		t.Fatalf("ProcessOne() error: %v", err)
	}

	got, _ := store.GetDocumentByID(ctx, doc.ID)
	if got.Status != models.StatusCompleted {
		t.Fatalf("status = %q, want completed", got.Status)
	}
	if got.ExtractedText != "Hello world" {
		t.Fatalf("extracted text = %q, want verbatim content", got.ExtractedText)
	}
	if got.Summary != responder.DisabledSummaryMessage {
		t.Fatalf("summary = %q, want disabled-mode message", got.Summary)
	}

	jobs, _ := store.ListIngestJobs(ctx)
	if len(jobs) != 0 {
		t.Fatalf("job ledger should be empty after completion, got %v", jobs)
	}
}

func TestProcessOneUnsupportedTypeStillCompletes(t *testing.T) {
	ing, store := newTestIngestor(t)
	ctx := context.Background()

	doc, err := ing.Submit(ctx, "user-1", "paper.docx",
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document", []byte("binary"))
	if err != nil {
		t.Fatalf("Submit() error: %v", err)
	}
	if err := ing.ProcessOne(ctx, doc.ID); err != nil {
		t.Fatalf("ProcessOne() error: %v", err)
	}

	got, _ := store.GetDocumentByID(ctx, doc.ID)
	if got.Status != models.StatusCompleted {
		t.Fatalf("status = %q, want completed", got.Status)
	}
	if got.ExtractedText != extract.PlaceholderUnsupported {
		t.Fatalf("extracted text = %q, want unsupported placeholder", got.ExtractedText)
	}
}

func TestTerminalStatusIsImmutable(t *testing.T) {
	ing, store := newTestIngestor(t)
	ctx := context.Background()

	doc, _ := ing.Submit(ctx, "user-1", "notes.txt", "text/plain", []byte("Hello world"))
	if err := ing.ProcessOne(ctx, doc.ID); err != nil {
		t.Fatalf("ProcessOne() error: %v", err)
	}

	// Re-delivery of an already-finished job is a no-op.
	if err := ing.ProcessOne(ctx, doc.ID); err != nil {
		t.Fatalf("ProcessOne() on terminal document errored: %v", err)
	}
	if err := store.UpdateDocumentStatus(ctx, doc.ID, models.StatusError); err != nil {
		t.Fatalf("UpdateDocumentStatus() error: %v", err)
	}

	got, _ := store.GetDocumentByID(ctx, doc.ID)
	if got.Status != models.StatusCompleted {
		t.Fatalf("terminal status changed to %q", got.Status)
	}
}

type failingContentDB struct {
	core.DbClient
}

func (f *failingContentDB) UpdateDocumentContent(context.Context, string, string, string, string) error {
	return errors.New("write failed")
}

func TestPersistenceFailureFlipsStatusToError(t *testing.T) {
	store := db.NewMemoryClient()
	obj, err := objectclient.NewLocalClient(t.TempDir())
	if err != nil {
		t.Fatalf("local object client: %v", err)
	}
	ing := NewDocumentIngestor(&failingContentDB{DbClient: store}, obj,
		extract.NewDocconvExtractor(), responder.New(nil), "test-bucket")

	doc, err := ing.Submit(context.Background(), "user-1", "notes.txt", "text/plain", []byte("Hello world"))
	if err != nil {
		t.Fatalf("Submit() error: %v", err)
	}
	if err := ing.ProcessOne(context.Background(), doc.ID); err == nil {
		t.Fatalf("ProcessOne() should report the failed terminal write")
	}

	got, _ := store.GetDocumentByID(context.Background(), doc.ID)
	if got.Status != models.StatusError {
		t.Fatalf("status = %q, want error after failed persistence", got.Status)
	}
}

func TestResumePicksUpPendingJobs(t *testing.T) {
	ing, store := newTestIngestor(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	doc, err := ing.Submit(ctx, "user-1", "notes.txt", "text/plain", []byte("Hello world"))
	if err != nil {
		t.Fatalf("Submit() error: %v", err)
	}

	// Drain the in-memory enqueue from Submit; the durable row remains, as
	// after a crash.
	<-ing.jobs

	if err := ing.Resume(ctx); err != nil {
		t.Fatalf("Resume() error: %v", err)
	}
	ing.Start(ctx, 1)

	deadline := time.After(2 * time.Second)
	for {
		got, _ := store.GetDocumentByID(ctx, doc.ID)
		if got != nil && got.Status == models.StatusCompleted {
			return
		}
		select {
		case <-deadline:
			t.Fatalf("resumed document never completed, status = %q", got.Status)
		case <-time.After(10 * time.Millisecond):
		}
	}
}
