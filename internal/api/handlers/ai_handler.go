package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"knowledgescout/internal/services"
)

// AIHandler exposes the on-demand AI operations on a processed document.
type AIHandler struct {
	docs *services.DocumentService
}

func NewAIHandler(docs *services.DocumentService) *AIHandler {
	return &AIHandler{docs: docs}
}

func (h *AIHandler) RegenerateSummary(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(r)
	if !ok {
		http.Error(w, "user_id not found in context", http.StatusUnauthorized)
		return
	}

	summary, err := h.docs.RegenerateSummary(r.Context(), userID, chi.URLParam(r, "documentID"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Summary generated successfully",
		"summary": summary,
	})
}

func (h *AIHandler) SuggestQuestions(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(r)
	if !ok {
		http.Error(w, "user_id not found in context", http.StatusUnauthorized)
		return
	}

	questions, err := h.docs.SuggestQuestions(r.Context(), userID, chi.URLParam(r, "documentID"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message":   "Questions generated successfully",
		"questions": questions,
	})
}
