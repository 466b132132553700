package handlers

import (
	"errors"
	"net/http"

	"talkcoach/internal/service"
	"talkcoach/internal/validation"
)

// ChatHandler serves the tutor conversation endpoints
type ChatHandler struct {
	chatService *service.ChatService
}

// NewChatHandler creates a new chat handler
func NewChatHandler(chatService *service.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

type startChatRequest struct {
	Topic string `json:"topic"`
}

type startChatResponse struct {
	SessionID string `json:"sessionId"`
	Greeting  string `json:"greeting"`
}

// Start handles POST /api/chat/start
func (h *ChatHandler) Start(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Not authenticated", "", nil)
		return
	}

	var req startChatRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", "", err)
		return
	}

	sessionID, greeting, err := h.chatService.StartSession(userID, req.Topic)
	if err != nil {
		respondWithError(w, http.StatusBadGateway, "Tutor service unavailable", "chat start failed", err)
		return
	}

	writeJSON(w, http.StatusOK, startChatResponse{SessionID: sessionID, Greeting: greeting})
}

type sendChatRequest struct {
	SessionID string `json:"sessionId"`
	Message   string `json:"message"`
}

// Send handles POST /api/chat/send
func (h *ChatHandler) Send(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Not authenticated", "", nil)
		return
	}

	var req sendChatRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", "", err)
		return
	}
	if req.Message == "" {
		respondWithError(w, http.StatusBadRequest, "message is required", "", nil)
		return
	}

	turn, err := h.chatService.SendMessage(userID, req.SessionID, req.Message)
	if err != nil {
		var vErr validation.ValidationError
		if errors.As(err, &vErr) {
			respondWithError(w, http.StatusBadRequest, vErr.Error(), "", nil)
		} else {
			respondWithError(w, http.StatusBadGateway, "Tutor service unavailable", "chat send failed", err)
		}
		return
	}

	writeJSON(w, http.StatusOK, turn)
}

type endChatRequest struct {
	SessionID string `json:"sessionId"`
	Topic     string `json:"topic"`
}

// End handles POST /api/chat/end, finalizing the session's feedback
func (h *ChatHandler) End(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Not authenticated", "", nil)
		return
	}

	var req endChatRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", "", err)
		return
	}

	reportID, err := h.chatService.EndSession(userID, req.SessionID, req.Topic)
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
			respondWithError(w, http.StatusInternalServerError, "Failed to end session", "chat end failed", err)
		}
		return
	}

	writeJSON(w, http.StatusOK, finalizeResponse{ReportID: reportID})
}
