package responder

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"knowledgescout/internal/core"
	"knowledgescout/internal/models"
)

// Fixed fallback content. Every AI operation degrades to one of these instead
// of surfacing a remote failure to the HTTP layer.
const (
	DisabledSummaryMessage   = "AI summary generation is not available. Please check your API configuration."
	DisabledAnswerMessage    = "AI Q&A is not available. Please check your API configuration."
	DisabledQuestionsMessage = "AI question generation is not available. Please check your API configuration."
	FailedAnswerMessage      = "I apologize, but I encountered an error while processing your question. Please try again."
	FallbackQuestion         = "What is the main topic of this document?"
)

// DefaultConfidence is reported whenever the model answered but supplied no
// confidence of its own.
const DefaultConfidence = 0.8

// Answer is the result of a question answered against a document. Sources
// defaults to empty and Confidence to DefaultConfidence on the conversational
// path; both are zero when the call degraded.
type Answer struct {
	Answer     string   `json:"answer"`
	Sources    []string `json:"sources"`
	Confidence float64  `json:"confidence"`
}

// Responder wraps the generative model behind three degradable operations.
// A nil LLM provider puts it permanently in disabled mode; that is a valid
// configuration, not an error.
type Responder struct {
	llm core.LLMProvider
}

func New(llm core.LLMProvider) *Responder {
	return &Responder{llm: llm}
}

// Enabled reports whether a model credential was configured.
func (r *Responder) Enabled() bool {
	return r.llm != nil
}

// Summarize produces a prose summary of text. It is the only operation that
// returns an error: a credentialed call that fails yields ErrAIUnavailable,
// which the ingestion pipeline converts to placeholder content.
func (r *Responder) Summarize(ctx context.Context, text string) (string, error) {
	if r.llm == nil {
		return DisabledSummaryMessage, nil
	}

	userPrompt := fmt.Sprintf(
		"Please provide a comprehensive summary of the following document. "+
			"Focus on the main points, key concepts, and important information. "+
			"Keep the summary concise but informative (2-3 paragraphs).\n\nDocument content:\n%s",
		text)

	out, err := r.llm.Generate(ctx, "You are a document analysis assistant.", userPrompt)
	if err != nil {
		return "", fmt.Errorf("%w: %v", core.ErrAIUnavailable, err)
	}
	return out, nil
}

// AnswerQuestion answers a question against the full document text plus a
// trailing window of chat history. Total: remote failure degrades to a fixed
// apologetic answer with confidence 0.
func (r *Responder) AnswerQuestion(ctx context.Context, question, documentText string, history []models.ChatMessage) Answer {
	if r.llm == nil {
		return Answer{Answer: DisabledAnswerMessage, Sources: []string{}, Confidence: 0}
	}

	systemPrompt := "You are an intelligent document analysis assistant. " +
		"Answer the user's question based on the provided document content. " +
		"Quote relevant sections from the document to support your answer. " +
		"If the answer is not found in the document, clearly state this. " +
		"Be concise but comprehensive. Respond in a natural, conversational way. Do not use JSON format."

	var b strings.Builder
	fmt.Fprintf(&b, "Document content:\n%s\n", documentText)
	if len(history) > 0 {
		b.WriteString("\nPrevious conversation context:\n")
		for _, msg := range history {
			fmt.Fprintf(&b, "%s: %s\n", msg.Role, msg.Content)
		}
	}
	fmt.Fprintf(&b, "\nUser question: %s", question)

	out, err := r.llm.Generate(ctx, systemPrompt, b.String())
	if err != nil {
		log.Printf("responder: answer failed: %v", err)
		return Answer{Answer: FailedAnswerMessage, Sources: []string{}, Confidence: 0}
	}

	// The conversational route takes the reply verbatim; no structured
	// extraction is attempted here.
	return Answer{Answer: out, Sources: []string{}, Confidence: DefaultConfidence}
}

// GenerateQuestions asks the model for five suggested questions as a JSON
// array. Total: a reply that fails to parse is returned as a single-element
// list, a remote failure falls back to one generic question.
func (r *Responder) GenerateQuestions(ctx context.Context, text string) []string {
	if r.llm == nil {
		return []string{DisabledQuestionsMessage}
	}

	userPrompt := fmt.Sprintf(
		"Based on the following document content, generate 5 relevant questions that someone might ask about this document. "+
			"Make the questions specific and answerable from the document content. "+
			"Return them as a JSON array of strings.\n\nDocument content:\n%s",
		text)

	out, err := r.llm.Generate(ctx, "You are a document analysis assistant.", userPrompt)
	if err != nil {
		log.Printf("responder: question generation failed: %v", err)
		return []string{FallbackQuestion}
	}

	var questions []string
	if err := json.Unmarshal([]byte(stripCodeFence(out)), &questions); err != nil || len(questions) == 0 {
		return []string{out}
	}
	return questions
}

// stripCodeFence removes a ```json ... ``` wrapper the model sometimes adds
// around its array reply.
func stripCodeFence(s string) string {
	t := strings.TrimSpace(s)
	if !strings.HasPrefix(t, "```") {
		return t
	}
	t = strings.TrimPrefix(t, "```json")
	t = strings.TrimPrefix(t, "```")
	t = strings.TrimSuffix(strings.TrimSpace(t), "```")
	return strings.TrimSpace(t)
}
