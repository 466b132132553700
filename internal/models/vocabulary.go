package models

import "time"

// Vocabulary is one entry in a learner's personal vocabulary notebook
type Vocabulary struct {
	ID        int64     `json:"vocaId"`
	UserID    int64     `json:"userId"`
	Word      string    `json:"word"`
	Meaning   string    `json:"meaning"`
	Example   string    `json:"example,omitempty"`
	Known     bool      `json:"known"`
	CreatedAt time.Time `json:"createdAt"`
}
