package service

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"talkcoach/internal/models"
)

func newFakeTutor(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("POST /text/start", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			UserID    int64  `json:"user_id"`
			SessionID string `json:"session_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID <= 0 {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"greeting": "Hello! What shall we talk about?"})
	})
	mux.HandleFunc("POST /text/send", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			UserID    int64  `json:"user_id"`
			SessionID string `json:"session_id"`
			Message   string `json:"message"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID <= 0 {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"reply": "Nice! Try saying 'I went' instead.",
			"feedback": map[string]interface{}{
				"grammar":    "past tense of go is went",
				"score":      72,
				"categories": []string{"GRAMMAR", "NOT_A_CATEGORY"},
			},
		})
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestChatSessionRoundTrip(t *testing.T) {
	env := newFeedbackTestEnv(t)
	tutor := newFakeTutor(t)
	chat := NewChatService(tutor.URL, env.svc)

	sessionID, greeting, err := chat.StartSession(env.user.ID, "travel")
	if err != nil {
		t.Fatalf("failed to start session: %v", err)
	}
	if sessionID == "" {
		t.Fatal("expected a session id")
	}
	if greeting == "" {
		t.Fatal("expected a greeting")
	}

	turn, err := chat.SendMessage(env.user.ID, sessionID, "I goed to Paris")
	if err != nil {
		t.Fatalf("failed to send message: %v", err)
	}
	if turn.Reply == "" {
		t.Error("expected a tutor reply")
	}
	if turn.Score != 72 {
		t.Errorf("expected score 72, got %d", turn.Score)
	}
	if turn.Level != "good" {
		t.Errorf("expected derived level good, got %q", turn.Level)
	}

	details, err := env.details.ListUnattached(env.user.ID, sessionID)
	if err != nil {
		t.Fatalf("failed to list details: %v", err)
	}
	if len(details) != 1 {
		t.Fatalf("expected 1 recorded detail, got %d", len(details))
	}
	if !details[0].HasCategory(models.CategoryGrammar) {
		t.Error("expected grammar category on recorded detail")
	}
	if details[0].HasCategory(models.CategoryVocabulary) {
		t.Error("unknown tutor categories must be dropped")
	}

	reportID, err := chat.EndSession(env.user.ID, sessionID, "travel")
	if err != nil {
		t.Fatalf("failed to end session: %v", err)
	}

	report, err := env.reports.FindByIDAndUser(reportID, env.user.ID)
	if err != nil {
		t.Fatalf("failed to fetch report: %v", err)
	}
	if report == nil {
		t.Fatal("report not found after end of session")
	}
	if report.AvgGrammar == nil || *report.AvgGrammar != 72 {
		t.Errorf("expected grammar average 72, got %v", report.AvgGrammar)
	}
}

func TestChatTutorUnreachable(t *testing.T) {
	env := newFeedbackTestEnv(t)
	chat := NewChatService("http://127.0.0.1:1", env.svc)

	if _, _, err := chat.StartSession(env.user.ID, ""); err == nil {
		t.Error("expected error when tutor service is down")
	}
}
