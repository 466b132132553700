package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"talkcoach/internal/service"
	"talkcoach/internal/validation"
)

// VocabHandler serves the learner's vocabulary notebook
type VocabHandler struct {
	vocabService *service.VocabService
}

// NewVocabHandler creates a new vocabulary handler
func NewVocabHandler(vocabService *service.VocabService) *VocabHandler {
	return &VocabHandler{vocabService: vocabService}
}

// List handles GET /api/vocabulary
func (h *VocabHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Not authenticated", "", nil)
		return
	}

	entries, err := h.vocabService.List(userID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load vocabulary", "vocabulary query failed", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"vocabulary": entries})
}

type saveVocabRequest struct {
	Word    string `json:"word"`
	Meaning string `json:"meaning"`
	Example string `json:"example"`
}

// Save handles POST /api/vocabulary
func (h *VocabHandler) Save(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Not authenticated", "", nil)
		return
	}

	var req saveVocabRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", "", err)
		return
	}

	entry, err := h.vocabService.Save(userID, req.Word, req.Meaning, req.Example)
	if err != nil {
		var vErr validation.ValidationError
		switch {
		case errors.As(err, &vErr):
			respondWithError(w, http.StatusBadRequest, vErr.Error(), "", nil)
		case errors.Is(err, service.ErrWordExists):
			respondWithError(w, http.StatusConflict, "Word already saved", "", nil)
		default:
			respondWithError(w, http.StatusInternalServerError, "Failed to save word", "vocabulary save failed", err)
		}
		return
	}

	writeJSON(w, http.StatusCreated, entry)
}

type markKnownRequest struct {
	Known bool `json:"known"`
}

// MarkKnown handles PUT /api/vocabulary/{vocaId}
func (h *VocabHandler) MarkKnown(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Not authenticated", "", nil)
		return
	}

	vocaID, err := strconv.ParseInt(r.PathValue("vocaId"), 10, 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid vocabulary id", "", nil)
		return
	}

	var req markKnownRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", "", err)
		return
	}

	entry, err := h.vocabService.MarkKnown(userID, vocaID, req.Known)
	if err != nil {
		if errors.Is(err, service.ErrVocabNotFound) {
			respondWithError(w, http.StatusNotFound, "Vocabulary entry not found", "", nil)
		} else {
			respondWithError(w, http.StatusInternalServerError, "Failed to update word", "vocabulary update failed", err)
		}
		return
	}

	writeJSON(w, http.StatusOK, entry)
}

// Delete handles DELETE /api/vocabulary/{vocaId}
func (h *VocabHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Not authenticated", "", nil)
		return
	}

	vocaID, err := strconv.ParseInt(r.PathValue("vocaId"), 10, 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid vocabulary id", "", nil)
		return
	}

	if err := h.vocabService.Delete(userID, vocaID); err != nil {
		if errors.Is(err, service.ErrVocabNotFound) {
			respondWithError(w, http.StatusNotFound, "Vocabulary entry not found", "", nil)
		} else {
			respondWithError(w, http.StatusInternalServerError, "Failed to delete word", "vocabulary delete failed", err)
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
