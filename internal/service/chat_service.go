package service

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"talkcoach/internal/models"
	"talkcoach/internal/security"
)

// ChatService brokers conversation turns between the learner and the external
// tutor service, recording the tutor's per-turn feedback as details
type ChatService struct {
	tutorURL string
	client   *http.Client
	feedback *FeedbackService
}

// NewChatService creates a new chat service pointed at the tutor base URL
func NewChatService(tutorURL string, feedback *FeedbackService) *ChatService {
	return &ChatService{
		tutorURL: tutorURL,
		client:   &http.Client{Timeout: 30 * time.Second},
		feedback: feedback,
	}
}

// ChatTurn is one exchange: the tutor's reply plus its assessment of the
// learner's message
type ChatTurn struct {
	SessionID string `json:"sessionId"`
	Reply     string `json:"reply"`
	DetailID  int64  `json:"detailId,omitempty"`
	Score     int    `json:"score"`
	Level     string `json:"level"`
}

type tutorStartRequest struct {
	UserID    int64  `json:"user_id"`
	SessionID string `json:"session_id"`
	Topic     string `json:"topic,omitempty"`
}

type tutorStartResponse struct {
	Greeting string `json:"greeting"`
}

type tutorSendRequest struct {
	UserID    int64  `json:"user_id"`
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

type tutorSendResponse struct {
	Reply    string `json:"reply"`
	Feedback struct {
		Grammar      string   `json:"grammar"`
		Vocabulary   string   `json:"vocabulary"`
		Conversation string   `json:"conversation"`
		Score        int      `json:"score"`
		Categories   []string `json:"categories"`
	} `json:"feedback"`
}

// StartSession opens a new tutor conversation and returns its id with the
// tutor's opening message
func (s *ChatService) StartSession(userID int64, topic string) (string, string, error) {
	sessionID := security.GenerateSessionID()

	var resp tutorStartResponse
	err := s.post("/text/start", tutorStartRequest{UserID: userID, SessionID: sessionID, Topic: topic}, &resp)
	if err != nil {
		return "", "", err
	}

	return sessionID, resp.Greeting, nil
}

// SendMessage forwards one learner message to the tutor and records the
// returned feedback as an unattached detail for the session
func (s *ChatService) SendMessage(userID int64, sessionID, message string) (*ChatTurn, error) {
	var resp tutorSendResponse
	if err := s.post("/text/send", tutorSendRequest{UserID: userID, SessionID: sessionID, Message: message}, &resp); err != nil {
		return nil, err
	}

	detail := &models.FeedbackDetail{
		UserID:               userID,
		SessionID:            sessionID,
		UserMessage:          message,
		GrammarFeedback:      resp.Feedback.Grammar,
		VocabularyFeedback:   resp.Feedback.Vocabulary,
		ConversationFeedback: resp.Feedback.Conversation,
		Score:                resp.Feedback.Score,
		Categories:           parseCategories(resp.Feedback.Categories),
	}

	detailID, err := s.feedback.AddDetail(detail)
	if err != nil {
		return nil, fmt.Errorf("failed to record feedback: %w", err)
	}

	return &ChatTurn{
		SessionID: sessionID,
		Reply:     resp.Reply,
		DetailID:  detailID,
		Score:     detail.Score,
		Level:     detail.Level,
	}, nil
}

// EndSession finalizes the session's accumulated feedback into a report
func (s *ChatService) EndSession(userID int64, sessionID, topic string) (int64, error) {
	return s.feedback.Finalize(userID, sessionID, topic)
}

func (s *ChatService) post(path string, payload interface{}, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode tutor request: %w", err)
	}

	resp, err := s.client.Post(s.tutorURL+path, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("tutor service unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("tutor service returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode tutor response: %w", err)
	}
	return nil
}

// parseCategories keeps only recognized category tags
func parseCategories(raw []string) []models.FeedbackCategory {
	cats := make([]models.FeedbackCategory, 0, len(raw))
	for _, r := range raw {
		if c, err := models.ParseCategory(r); err == nil {
			cats = append(cats, c)
		}
	}
	return cats
}
