package handlers

import (
	"errors"
	"net/http"

	"talkcoach/internal/models"
	"talkcoach/internal/service"
	"talkcoach/internal/validation"
)

// FeedbackHandler serves the feedback write side: recording details and
// finalizing sessions into reports
type FeedbackHandler struct {
	feedbackService *service.FeedbackService
}

// NewFeedbackHandler creates a new feedback handler
func NewFeedbackHandler(feedbackService *service.FeedbackService) *FeedbackHandler {
	return &FeedbackHandler{feedbackService: feedbackService}
}

type addDetailRequest struct {
	SessionID            string   `json:"sessionId"`
	UserMessage          string   `json:"userMessage"`
	GrammarFeedback      string   `json:"grammarFeedback"`
	VocabularyFeedback   string   `json:"vocabularyFeedback"`
	ConversationFeedback string   `json:"conversationFeedback"`
	Score                int      `json:"score"`
	Level                string   `json:"level"`
	Categories           []string `json:"categories"`
}

// AddDetail handles POST /api/feedback/details
func (h *FeedbackHandler) AddDetail(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Not authenticated", "", nil)
		return
	}

	var req addDetailRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", "", err)
		return
	}

	cats := make([]models.FeedbackCategory, 0, len(req.Categories))
	for _, raw := range req.Categories {
		c, err := models.ParseCategory(raw)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Unknown feedback category: "+raw, "", nil)
			return
		}
		cats = append(cats, c)
	}

	detail := &models.FeedbackDetail{
		UserID:               userID,
		SessionID:            req.SessionID,
		UserMessage:          req.UserMessage,
		GrammarFeedback:      req.GrammarFeedback,
		VocabularyFeedback:   req.VocabularyFeedback,
		ConversationFeedback: req.ConversationFeedback,
		Score:                req.Score,
		Level:                req.Level,
		Categories:           cats,
	}

	if _, err := h.feedbackService.AddDetail(detail); err != nil {
		var vErr validation.ValidationError
		if errors.As(err, &vErr) {
			respondWithError(w, http.StatusBadRequest, vErr.Error(), "", nil)
		} else {
			respondWithError(w, http.StatusInternalServerError, "Failed to record feedback", "add detail failed", err)
		}
		return
	}

	writeJSON(w, http.StatusCreated, detail)
}

type finalizeRequest struct {
	SessionID string `json:"sessionId"`
	Topic     string `json:"topic"`
}

type finalizeResponse struct {
	ReportID int64 `json:"reportId"`
}

// Finalize handles POST /api/feedback/finalize. A session with no feedback
// yields 204 No Content; losing a concurrent finalize twice yields 409
func (h *FeedbackHandler) Finalize(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Not authenticated", "", nil)
		return
	}

	var req finalizeRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", "", err)
		return
	}

	reportID, err := h.feedbackService.Finalize(userID, req.SessionID, req.Topic)
	if err != nil {
		var vErr validation.ValidationError
		switch {
		case errors.As(err, &vErr):
			respondWithError(w, http.StatusBadRequest, vErr.Error(), "", nil)
		case errors.Is(err, service.ErrNoDetails):
			w.WriteHeader(http.StatusNoContent)
		case errors.Is(err, service.ErrFinalizeConflict):
			respondWithError(w, http.StatusConflict, "Session was finalized concurrently, please retry", "", nil)
		default:
			respondWithError(w, http.StatusInternalServerError, "Failed to finalize session", "finalize failed", err)
		}
		return
	}

	writeJSON(w, http.StatusOK, finalizeResponse{ReportID: reportID})
}
