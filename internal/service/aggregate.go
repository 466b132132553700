package service

import (
	"talkcoach/internal/models"
)

// Averages holds the per-category mean scores of a set of details.
// A nil field means no detail in that category contributed, not zero
type Averages struct {
	Grammar      *float64
	Vocabulary   *float64
	Conversation *float64
}

// aggregate computes per-category average scores over a set of details.
// A detail tagged with several categories contributes its full score to each
// of them. Deterministic for a given input set regardless of order
func aggregate(details []models.FeedbackDetail) Averages {
	return Averages{
		Grammar:      averageFor(details, models.CategoryGrammar),
		Vocabulary:   averageFor(details, models.CategoryVocabulary),
		Conversation: averageFor(details, models.CategoryConversation),
	}
}

// averageFor returns the arithmetic mean of the scores of details tagged
// with the given category, or nil when none are
func averageFor(details []models.FeedbackDetail, cat models.FeedbackCategory) *float64 {
	sum := 0
	count := 0
	for i := range details {
		if details[i].HasCategory(cat) {
			sum += details[i].Score
			count++
		}
	}

	if count == 0 {
		return nil
	}

	avg := float64(sum) / float64(count)
	return &avg
}
