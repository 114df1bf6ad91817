package db

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"knowledgescout/internal/core"
	"knowledgescout/internal/models"
)

// MemoryClient is an in-memory core.DbClient. It backs dev mode when no
// DATABASE_URL is configured and doubles as the test store. Semantics mirror
// the Postgres client: missing lookups return (nil, nil), terminal document
// statuses are immutable, deletes cascade.
type MemoryClient struct {
	mu sync.Mutex

	users    map[string]*models.User
	docs     map[string]*models.Document
	sessions map[string]*models.ChatSession
	messages map[string][]models.ChatMessage // keyed by session id, insertion order
	jobs     map[string]*models.IngestJob
}

func NewMemoryClient() *MemoryClient {
	return &MemoryClient{
		users:    make(map[string]*models.User),
		docs:     make(map[string]*models.Document),
		sessions: make(map[string]*models.ChatSession),
		messages: make(map[string][]models.ChatMessage),
		jobs:     make(map[string]*models.IngestJob),
	}
}

func (c *MemoryClient) Close() error { return nil }

func (c *MemoryClient) CreateUser(_ context.Context, user *models.User) error {
	if user == nil {
		return errors.New("nil user")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, u := range c.users {
		if u.Email == user.Email {
			return errors.New("duplicate email")
		}
	}
	cp := *user
	c.users[cp.ID] = &cp
	return nil
}

func (c *MemoryClient) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, u := range c.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (c *MemoryClient) GetUserByID(_ context.Context, id string) (*models.User, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if u, ok := c.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (c *MemoryClient) CreateDocument(_ context.Context, doc *models.Document) error {
	if doc == nil {
		return errors.New("nil document")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	cp := *doc
	c.docs[cp.ID] = &cp
	return nil
}

func (c *MemoryClient) GetDocumentByID(_ context.Context, id string) (*models.Document, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if d, ok := c.docs[id]; ok {
		cp := *d
		return &cp, nil
	}
	return nil, nil
}

func (c *MemoryClient) ListDocumentsByUser(_ context.Context, userID string) ([]models.Document, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []models.Document
	for _, d := range c.docs {
		if d.UserID == userID {
			out = append(out, *d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (c *MemoryClient) UpdateDocumentStatus(_ context.Context, id string, status string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	d, ok := c.docs[id]
	if !ok || d.Status != models.StatusProcessing {
		return nil
	}
	d.Status = status
	d.UpdatedAt = time.Now()
	return nil
}

func (c *MemoryClient) UpdateDocumentContent(_ context.Context, id, status, extractedText, summary string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	d, ok := c.docs[id]
	if !ok || d.Status != models.StatusProcessing {
		return nil
	}
	d.Status = status
	d.ExtractedText = extractedText
	d.Summary = summary
	d.UpdatedAt = time.Now()
	return nil
}

func (c *MemoryClient) UpdateDocumentSummary(_ context.Context, id, summary string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	d, ok := c.docs[id]
	if !ok {
		return errors.New("document not found: " + id)
	}
	d.Summary = summary
	d.UpdatedAt = time.Now()
	return nil
}

func (c *MemoryClient) DeleteDocument(_ context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.docs, id)
	delete(c.jobs, id)
	for sid, s := range c.sessions {
		if s.DocumentID == id {
			delete(c.sessions, sid)
			delete(c.messages, sid)
		}
	}
	return nil
}

func (c *MemoryClient) CreateChatSession(_ context.Context, session *models.ChatSession) error {
	if session == nil {
		return errors.New("nil session")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	cp := *session
	c.sessions[cp.ID] = &cp
	return nil
}

func (c *MemoryClient) GetChatSessionByID(_ context.Context, id string) (*models.ChatSession, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if s, ok := c.sessions[id]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, nil
}

func (c *MemoryClient) ListChatSessionsByUser(_ context.Context, userID string) ([]models.ChatSession, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []models.ChatSession
	for _, s := range c.sessions {
		if s.UserID == userID {
			out = append(out, *s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (c *MemoryClient) DeleteChatSession(_ context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.sessions, id)
	delete(c.messages, id)
	return nil
}

func (c *MemoryClient) AddChatMessage(_ context.Context, message *models.ChatMessage) error {
	if message == nil {
		return errors.New("nil message")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	cp := *message
	if cp.Sources == nil {
		cp.Sources = []string{}
	}
	c.messages[cp.SessionID] = append(c.messages[cp.SessionID], cp)
	return nil
}

func (c *MemoryClient) GetMessagesBySession(_ context.Context, sessionID string) ([]models.ChatMessage, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	msgs := c.messages[sessionID]
	out := make([]models.ChatMessage, len(msgs))
	copy(out, msgs)
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (c *MemoryClient) CreateIngestJob(_ context.Context, job *models.IngestJob) error {
	if job == nil {
		return errors.New("nil job")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.jobs[job.DocumentID]; ok {
		return nil
	}
	cp := *job
	c.jobs[cp.DocumentID] = &cp
	return nil
}

func (c *MemoryClient) DeleteIngestJob(_ context.Context, documentID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.jobs, documentID)
	return nil
}

func (c *MemoryClient) ListIngestJobs(_ context.Context) ([]models.IngestJob, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []models.IngestJob
	for _, j := range c.jobs {
		out = append(out, *j)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EnqueuedAt.Before(out[j].EnqueuedAt) })
	return out, nil
}

var _ core.DbClient = (*MemoryClient)(nil)
