package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"knowledgescout/internal/core"
	"knowledgescout/internal/core/responder"
	"knowledgescout/internal/models"
)

// historyWindow bounds how many trailing messages are replayed to the model
// per question. The full transcript stays in the store; only the prompt is
// bounded.
const historyWindow = 5

// ConversationService manages chat sessions bound 1:1 to a document and the
// user/assistant message exchange within them.
type ConversationService struct {
	db core.DbClient
	ai *responder.Responder
}

func NewConversationService(db core.DbClient, ai *responder.Responder) *ConversationService {
	return &ConversationService{db: db, ai: ai}
}

// CreateSession opens a session on a document the user owns. The title
// defaults to one derived from the document title.
func (s *ConversationService) CreateSession(ctx context.Context, userID, documentID, title string) (*models.ChatSession, error) {
	if documentID == "" {
		return nil, core.Validationf("document ID is required")
	}

	doc, err := s.db.GetDocumentByID(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if doc == nil || doc.UserID != userID {
		return nil, core.ErrNotFound
	}

	if title == "" {
		title = "Chat about " + doc.Title
	}

	now := time.Now()
	session := &models.ChatSession{
		ID:         uuid.NewString(),
		UserID:     userID,
		DocumentID: documentID,
		Title:      title,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.db.CreateChatSession(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// GetSession returns an owned session together with its document.
func (s *ConversationService) GetSession(ctx context.Context, userID, sessionID string) (*models.ChatSession, *models.Document, error) {
	session, err := s.db.GetChatSessionByID(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}
	if session == nil || session.UserID != userID {
		return nil, nil, core.ErrNotFound
	}
	doc, err := s.db.GetDocumentByID(ctx, session.DocumentID)
	if err != nil {
		return nil, nil, err
	}
	if doc == nil {
		return nil, nil, core.ErrNotFound
	}
	return session, doc, nil
}

func (s *ConversationService) ListSessions(ctx context.Context, userID string) ([]models.ChatSession, error) {
	return s.db.ListChatSessionsByUser(ctx, userID)
}

func (s *ConversationService) DeleteSession(ctx context.Context, userID, sessionID string) error {
	session, err := s.db.GetChatSessionByID(ctx, sessionID)
	if err != nil {
		return err
	}
	if session == nil || session.UserID != userID {
		return core.ErrNotFound
	}
	return s.db.DeleteChatSession(ctx, sessionID)
}

// PostMessage appends the user message, asks the model with a bounded
// trailing history window, then appends the assistant message. The two
// appends are independent durable writes; there is no rollback of the first
// if the second fails.
func (s *ConversationService) PostMessage(ctx context.Context, userID, sessionID, content string) (*models.ChatMessage, *models.ChatMessage, error) {
	if content == "" {
		return nil, nil, core.Validationf("message is required")
	}

	session, doc, err := s.GetSession(ctx, userID, sessionID)
	if err != nil {
		return nil, nil, err
	}
	if doc.ExtractedText == "" {
		return nil, nil, core.ErrDocumentNotReady
	}

	userMsg := &models.ChatMessage{
		ID:        uuid.NewString(),
		SessionID: session.ID,
		Role:      models.RoleUser,
		Content:   content,
		Sources:   []string{},
		CreatedAt: time.Now(),
	}
	if err := s.db.AddChatMessage(ctx, userMsg); err != nil {
		return nil, nil, err
	}

	history, err := s.db.GetMessagesBySession(ctx, session.ID)
	if err != nil {
		return nil, nil, err
	}
	if len(history) > historyWindow {
		history = history[len(history)-historyWindow:]
	}

	ans := s.ai.AnswerQuestion(ctx, content, doc.ExtractedText, history)

	assistantAt := time.Now()
	if !assistantAt.After(userMsg.CreatedAt) {
		// Coarse clocks: keep message order strictly increasing.
		assistantAt = userMsg.CreatedAt.Add(time.Millisecond)
	}
	assistantMsg := &models.ChatMessage{
		ID:         uuid.NewString(),
		SessionID:  session.ID,
		Role:       models.RoleAssistant,
		Content:    ans.Answer,
		Sources:    ans.Sources,
		Confidence: ans.Confidence,
		CreatedAt:  assistantAt,
	}
	if err := s.db.AddChatMessage(ctx, assistantMsg); err != nil {
		return nil, nil, err
	}

	return userMsg, assistantMsg, nil
}

// ListMessages returns the session transcript in insertion order.
func (s *ConversationService) ListMessages(ctx context.Context, userID, sessionID string) ([]models.ChatMessage, error) {
	session, err := s.db.GetChatSessionByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil || session.UserID != userID {
		return nil, core.ErrNotFound
	}
	return s.db.GetMessagesBySession(ctx, sessionID)
}
