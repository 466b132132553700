package models

import "fmt"

// FeedbackCategory tags a conversation turn with the feedback dimension it received
type FeedbackCategory string

const (
	CategoryGrammar      FeedbackCategory = "GRAMMAR"
	CategoryVocabulary   FeedbackCategory = "VOCABULARY"
	CategoryConversation FeedbackCategory = "CONVERSATION"
)

// Categories lists all known feedback categories
var Categories = []FeedbackCategory{CategoryGrammar, CategoryVocabulary, CategoryConversation}

// ParseCategory converts a string into a FeedbackCategory
func ParseCategory(s string) (FeedbackCategory, error) {
	for _, c := range Categories {
		if FeedbackCategory(s) == c {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown feedback category: %q", s)
}

// FeedbackDetail represents one scored, annotated conversation turn.
// A detail starts unattached (ReportID == nil) and is bound to exactly one
// report when its session is finalized; from that point on it is immutable.
type FeedbackDetail struct {
	ID                   int64              `json:"detailId"`
	UserID               int64              `json:"userId"`
	SessionID            string             `json:"sessionId"`
	ReportID             *int64             `json:"reportId"`
	UserMessage          string             `json:"userMessage"`
	GrammarFeedback      string             `json:"grammarFeedback,omitempty"`
	VocabularyFeedback   string             `json:"vocabularyFeedback,omitempty"`
	ConversationFeedback string             `json:"conversationFeedback,omitempty"`
	Score                int                `json:"score"`
	Level                string             `json:"level"`
	Categories           []FeedbackCategory `json:"categories"`
}

// HasCategory reports whether the detail is tagged with the given category
func (d *FeedbackDetail) HasCategory(cat FeedbackCategory) bool {
	for _, c := range d.Categories {
		if c == cat {
			return true
		}
	}
	return false
}

// FeedbackReport is the consolidated, immutable summary of one finalized session.
// A nil average means no detail in that category contributed, not zero.
type FeedbackReport struct {
	ID              int64    `json:"reportId"`
	UserID          int64    `json:"userId"`
	Date            string   `json:"date"` // YYYY-MM-DD in the reference timezone
	Topic           string   `json:"topic,omitempty"`
	AvgGrammar      *float64 `json:"avgGrammar"`
	AvgVocabulary   *float64 `json:"avgVocabulary"`
	AvgConversation *float64 `json:"avgConversation"`
}

// LevelForScore derives the display level from a numeric score
func LevelForScore(score int) string {
	switch {
	case score >= 85:
		return "excellent"
	case score >= 70:
		return "good"
	default:
		return "needs-work"
	}
}
