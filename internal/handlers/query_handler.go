package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"talkcoach/internal/service"
	"talkcoach/internal/validation"
)

// QueryHandler serves the feedback read side: report history and details
type QueryHandler struct {
	queryService *service.FeedbackQueryService
}

// NewQueryHandler creates a new query handler
func NewQueryHandler(queryService *service.FeedbackQueryService) *QueryHandler {
	return &QueryHandler{queryService: queryService}
}

// ListReportDates handles GET /api/feedback/report-dates
func (h *QueryHandler) ListReportDates(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Not authenticated", "", nil)
		return
	}

	dates, err := h.queryService.ListReportDates(userID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load report dates", "report dates query failed", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"dates": dates})
}

// ListReports handles GET /api/feedback/reports?date=YYYY-MM-DD
func (h *QueryHandler) ListReports(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Not authenticated", "", nil)
		return
	}

	reports, err := h.queryService.ListReports(userID, r.URL.Query().Get("date"))
	if err != nil {
		var vErr validation.ValidationError
		if errors.As(err, &vErr) {
			respondWithError(w, http.StatusBadRequest, vErr.Error(), "", nil)
		} else {
			respondWithError(w, http.StatusInternalServerError, "Failed to load reports", "reports query failed", err)
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"reports": reports})
}

// ListDetails handles GET /api/feedback/reports/{reportId}/details
func (h *QueryHandler) ListDetails(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Not authenticated", "", nil)
		return
	}

	reportID, err := strconv.ParseInt(r.PathValue("reportId"), 10, 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid report id", "", nil)
		return
	}

	details, err := h.queryService.ListDetails(userID, reportID)
	if err != nil {
		var vErr validation.ValidationError
		switch {
		case errors.As(err, &vErr):
			respondWithError(w, http.StatusBadRequest, vErr.Error(), "", nil)
		case errors.Is(err, service.ErrReportNotFound):
			respondWithError(w, http.StatusNotFound, "Report not found", "", nil)
		default:
			respondWithError(w, http.StatusInternalServerError, "Failed to load details", "details query failed", err)
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"details": details})
}
