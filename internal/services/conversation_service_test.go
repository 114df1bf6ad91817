package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"knowledgescout/internal/core"
	db "knowledgescout/internal/core/database"
	"knowledgescout/internal/core/responder"
	"knowledgescout/internal/models"
)

type stubLLM struct {
	reply string
	err   error
}

func (s *stubLLM) Generate(_ context.Context, _, _ string) (string, error) {
	return s.reply, s.err
}

func seedDocument(t *testing.T, store *db.MemoryClient, userID, status, extractedText string) *models.Document {
	t.Helper()
	now := time.Now()
	doc := &models.Document{
		ID:            uuid.NewString(),
		UserID:        userID,
		Title:         "report.txt",
		FileName:      "report.txt",
		OriginalName:  "report.txt",
		StoragePath:   "users/" + userID + "/report.txt",
		FileSize:      11,
		ContentType:   "text/plain",
		Status:        status,
		ExtractedText: extractedText,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := store.CreateDocument(context.Background(), doc); err != nil {
		t.Fatalf("seed document: %v", err)
	}
	return doc
}

func TestCreateSessionDefaultTitle(t *testing.T) {
	store := db.NewMemoryClient()
	svc := NewConversationService(store, responder.New(nil))
	doc := seedDocument(t, store, "user-1", models.StatusCompleted, "Hello world")

	session, err := svc.CreateSession(context.Background(), "user-1", doc.ID, "")
	if err != nil {
		t.Fatalf("CreateSession() error: %v", err)
	}
	if session.Title != "Chat about report.txt" {
		t.Fatalf("default title = %q", session.Title)
	}
	if session.DocumentID != doc.ID {
		t.Fatalf("session bound to %q, want %q", session.DocumentID, doc.ID)
	}
}

func TestCreateSessionNotOwnedDocument(t *testing.T) {
	store := db.NewMemoryClient()
	svc := NewConversationService(store, responder.New(nil))
	doc := seedDocument(t, store, "user-1", models.StatusCompleted, "Hello world")

	_, err := svc.CreateSession(context.Background(), "user-2", doc.ID, "")
	if !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("CreateSession() error = %v, want ErrNotFound", err)
	}
}

func TestPostMessageRoundTrip(t *testing.T) {
	store := db.NewMemoryClient()
	svc := NewConversationService(store, responder.New(&stubLLM{reply: "It says hello."}))
	doc := seedDocument(t, store, "user-1", models.StatusCompleted, "Hello world")

	session, err := svc.CreateSession(context.Background(), "user-1", doc.ID, "")
	if err != nil {
		t.Fatalf("CreateSession() error: %v", err)
	}

	userMsg, assistantMsg, err := svc.PostMessage(context.Background(), "user-1", session.ID, "What does it say?")
	if err != nil {
		t.Fatalf("PostMessage() error: %v", err)
	}
	if userMsg.Role != models.RoleUser || assistantMsg.Role != models.RoleAssistant {
		t.Fatalf("roles = %q / %q", userMsg.Role, assistantMsg.Role)
	}
	if !assistantMsg.CreatedAt.After(userMsg.CreatedAt) {
		t.Fatalf("assistant timestamp %v not after user timestamp %v", assistantMsg.CreatedAt, userMsg.CreatedAt)
	}
	if assistantMsg.Content != "It says hello." {
		t.Fatalf("assistant content = %q", assistantMsg.Content)
	}
	if assistantMsg.Confidence != responder.DefaultConfidence {
		t.Fatalf("assistant confidence = %v, want %v", assistantMsg.Confidence, responder.DefaultConfidence)
	}

	messages, err := svc.ListMessages(context.Background(), "user-1", session.ID)
	if err != nil {
		t.Fatalf("ListMessages() error: %v", err)
	}
	if len(messages) != 2 {
		t.Fatalf("message count = %d, want 2", len(messages))
	}
	if messages[0].Role != models.RoleUser || messages[1].Role != models.RoleAssistant {
		t.Fatalf("message order wrong: %q then %q", messages[0].Role, messages[1].Role)
	}
}

func TestPostMessageBeforeProcessingDone(t *testing.T) {
	store := db.NewMemoryClient()
	svc := NewConversationService(store, responder.New(nil))
	doc := seedDocument(t, store, "user-1", models.StatusProcessing, "")

	session, err := svc.CreateSession(context.Background(), "user-1", doc.ID, "")
	if err != nil {
		t.Fatalf("CreateSession() error: %v", err)
	}

	_, _, err = svc.PostMessage(context.Background(), "user-1", session.ID, "Too early?")
	if !errors.Is(err, core.ErrDocumentNotReady) {
		t.Fatalf("PostMessage() error = %v, want ErrDocumentNotReady", err)
	}

	messages, _ := svc.ListMessages(context.Background(), "user-1", session.ID)
	if len(messages) != 0 {
		t.Fatalf("precondition failure must not append messages, got %d", len(messages))
	}
}

func TestPostMessageOwnershipHidesSession(t *testing.T) {
	store := db.NewMemoryClient()
	svc := NewConversationService(store, responder.New(nil))
	doc := seedDocument(t, store, "user-1", models.StatusCompleted, "Hello world")

	session, err := svc.CreateSession(context.Background(), "user-1", doc.ID, "")
	if err != nil {
		t.Fatalf("CreateSession() error: %v", err)
	}

	_, _, err = svc.PostMessage(context.Background(), "user-2", session.ID, "mine now")
	if !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("PostMessage() error = %v, want ErrNotFound", err)
	}
	if _, err := svc.ListMessages(context.Background(), "user-2", session.ID); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("ListMessages() error = %v, want ErrNotFound", err)
	}
}

func TestPostMessageBoundedHistoryWindow(t *testing.T) {
	store := db.NewMemoryClient()
	llm := &countingLLM{reply: "ok"}
	svc := NewConversationService(store, responder.New(llm))
	doc := seedDocument(t, store, "user-1", models.StatusCompleted, "Hello world")

	session, err := svc.CreateSession(context.Background(), "user-1", doc.ID, "")
	if err != nil {
		t.Fatalf("CreateSession() error: %v", err)
	}

	for i := 0; i < 4; i++ {
		if _, _, err := svc.PostMessage(context.Background(), "user-1", session.ID, "question"); err != nil {
			t.Fatalf("PostMessage() error: %v", err)
		}
	}

	// 4 exchanges = 8 stored messages; the prompt must only carry the
	// trailing window.
	if llm.lastHistoryLines > historyWindow {
		t.Fatalf("prompt carried %d history lines, want at most %d", llm.lastHistoryLines, historyWindow)
	}
	messages, _ := svc.ListMessages(context.Background(), "user-1", session.ID)
	if len(messages) != 8 {
		t.Fatalf("stored message count = %d, want 8", len(messages))
	}
}

type countingLLM struct {
	reply            string
	lastHistoryLines int
}

func (c *countingLLM) Generate(_ context.Context, _, userPrompt string) (string, error) {
	c.lastHistoryLines = countRoleLines(userPrompt)
	return c.reply, nil
}

func countRoleLines(prompt string) int {
	n := 0
	for _, line := range strings.Split(prompt, "\n") {
		if strings.HasPrefix(line, "user:") || strings.HasPrefix(line, "assistant:") {
			n++
		}
	}
	return n
}
