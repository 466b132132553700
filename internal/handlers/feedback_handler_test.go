package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"talkcoach/internal/database"
	"talkcoach/internal/models"
	"talkcoach/internal/repository"
	"talkcoach/internal/service"
)

type handlerTestEnv struct {
	user     *models.User
	other    *models.User
	feedback *FeedbackHandler
	query    *QueryHandler
}

func newHandlerTestEnv(t *testing.T) *handlerTestEnv {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping database test in short mode")
	}

	db, err := database.Initialize(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to initialize database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.RunMigrations("../../migrations"); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	users := repository.NewUserRepository(db)
	user, err := users.CreateUser("learner@example.com", "hash", "Learner")
	if err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	other, err := users.CreateUser("other@example.com", "hash", "Other")
	if err != nil {
		t.Fatalf("failed to create second user: %v", err)
	}

	detailRepo := repository.NewDetailRepository(db)
	reportRepo := repository.NewReportRepository(db)

	feedbackService, err := service.NewFeedbackService(db, detailRepo, reportRepo, "Asia/Seoul")
	if err != nil {
		t.Fatalf("failed to create feedback service: %v", err)
	}

	return &handlerTestEnv{
		user:     user,
		other:    other,
		feedback: NewFeedbackHandler(feedbackService),
		query:    NewQueryHandler(service.NewFeedbackQueryService(detailRepo, reportRepo)),
	}
}

// authedRequest builds a request whose context carries the user id, as
// RequireAuth would after verifying a token
func authedRequest(t *testing.T, userID int64, method, target, body string) *http.Request {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	ctx := context.WithValue(req.Context(), UserIDContextKey, userID)
	return req.WithContext(ctx)
}

func TestAddDetailEndpoint(t *testing.T) {
	env := newHandlerTestEnv(t)

	req := authedRequest(t, env.user.ID, "POST", "/api/feedback/details",
		`{"sessionId":"s1","userMessage":"I goed there","grammarFeedback":"went","score":88,"categories":["GRAMMAR"]}`)
	recorder := httptest.NewRecorder()

	env.feedback.AddDetail(recorder, req)

	if recorder.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", recorder.Code, recorder.Body.String())
	}

	var detail models.FeedbackDetail
	if err := json.NewDecoder(recorder.Body).Decode(&detail); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if detail.Level != "excellent" {
		t.Errorf("expected derived level excellent, got %q", detail.Level)
	}
}

func TestAddDetailRejectsUnknownCategory(t *testing.T) {
	env := newHandlerTestEnv(t)

	req := authedRequest(t, env.user.ID, "POST", "/api/feedback/details",
		`{"sessionId":"s1","score":50,"categories":["SPELLING"]}`)
	recorder := httptest.NewRecorder()

	env.feedback.AddDetail(recorder, req)

	if recorder.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", recorder.Code)
	}
}

func TestFinalizeEndpointStatusMapping(t *testing.T) {
	env := newHandlerTestEnv(t)

	// No details yet: 204
	recorder := httptest.NewRecorder()
	env.feedback.Finalize(recorder, authedRequest(t, env.user.ID, "POST", "/api/feedback/finalize",
		`{"sessionId":"s1","topic":"travel"}`))
	if recorder.Code != http.StatusNoContent {
		t.Fatalf("expected 204 for empty session, got %d", recorder.Code)
	}

	// Record a turn, then finalize: 200 with a report id
	recorder = httptest.NewRecorder()
	env.feedback.AddDetail(recorder, authedRequest(t, env.user.ID, "POST", "/api/feedback/details",
		`{"sessionId":"s1","score":80,"categories":["VOCABULARY"]}`))
	if recorder.Code != http.StatusCreated {
		t.Fatalf("add detail failed: %d", recorder.Code)
	}

	recorder = httptest.NewRecorder()
	env.feedback.Finalize(recorder, authedRequest(t, env.user.ID, "POST", "/api/feedback/finalize",
		`{"sessionId":"s1","topic":"travel"}`))
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", recorder.Code, recorder.Body.String())
	}

	var resp struct {
		ReportID int64 `json:"reportId"`
	}
	if err := json.NewDecoder(recorder.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.ReportID == 0 {
		t.Fatal("expected a report id")
	}

	// Draining finalize again: 204
	recorder = httptest.NewRecorder()
	env.feedback.Finalize(recorder, authedRequest(t, env.user.ID, "POST", "/api/feedback/finalize",
		`{"sessionId":"s1"}`))
	if recorder.Code != http.StatusNoContent {
		t.Errorf("expected 204 for drained session, got %d", recorder.Code)
	}

	// Foreign user asking for the report's details: 404
	recorder = httptest.NewRecorder()
	req := authedRequest(t, env.other.ID, "GET", "/api/feedback/reports/1/details", "")
	req.SetPathValue("reportId", "1")
	env.query.ListDetails(recorder, req)
	if recorder.Code != http.StatusNotFound {
		t.Errorf("expected 404 for foreign report, got %d", recorder.Code)
	}
}

func TestReportDatesEndpoint(t *testing.T) {
	env := newHandlerTestEnv(t)

	recorder := httptest.NewRecorder()
	env.feedback.AddDetail(recorder, authedRequest(t, env.user.ID, "POST", "/api/feedback/details",
		`{"sessionId":"s1","score":70,"categories":["GRAMMAR"]}`))
	recorder = httptest.NewRecorder()
	env.feedback.Finalize(recorder, authedRequest(t, env.user.ID, "POST", "/api/feedback/finalize",
		`{"sessionId":"s1"}`))

	recorder = httptest.NewRecorder()
	env.query.ListReportDates(recorder, authedRequest(t, env.user.ID, "GET", "/api/feedback/report-dates", ""))
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", recorder.Code)
	}

	var resp struct {
		Dates []string `json:"dates"`
	}
	if err := json.NewDecoder(recorder.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Dates) != 1 {
		t.Errorf("expected 1 date, got %d", len(resp.Dates))
	}

	// The other user sees nothing
	recorder = httptest.NewRecorder()
	env.query.ListReportDates(recorder, authedRequest(t, env.other.ID, "GET", "/api/feedback/report-dates", ""))
	var otherResp struct {
		Dates []string `json:"dates"`
	}
	if err := json.NewDecoder(recorder.Body).Decode(&otherResp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(otherResp.Dates) != 0 {
		t.Errorf("expected no dates for other user, got %d", len(otherResp.Dates))
	}
}
