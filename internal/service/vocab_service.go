package service

import (
	"errors"
	"fmt"
	"strings"

	"talkcoach/internal/models"
	"talkcoach/internal/repository"
	"talkcoach/internal/validation"
)

var (
	ErrWordExists    = errors.New("word already saved")
	ErrVocabNotFound = errors.New("vocabulary entry not found")
)

// VocabService manages a learner's personal vocabulary notebook
type VocabService struct {
	vocabRepo *repository.VocabRepository
}

// NewVocabService creates a new vocabulary service
func NewVocabService(vocabRepo *repository.VocabRepository) *VocabService {
	return &VocabService{vocabRepo: vocabRepo}
}

// List returns all of a user's entries, newest first
func (s *VocabService) List(userID int64) ([]models.Vocabulary, error) {
	if err := validation.ValidateUserID(userID); err != nil {
		return nil, err
	}

	entries, err := s.vocabRepo.ListByUser(userID)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []models.Vocabulary{}
	}
	return entries, nil
}

// Save stores a new word for the user. The same word may not be saved twice
func (s *VocabService) Save(userID int64, word, meaning, example string) (*models.Vocabulary, error) {
	if err := validation.ValidateUserID(userID); err != nil {
		return nil, err
	}
	word = strings.TrimSpace(word)
	if err := validation.ValidateWord(word); err != nil {
		return nil, err
	}
	if strings.TrimSpace(meaning) == "" {
		return nil, validation.ValidationError{Field: "meaning", Message: "meaning is required"}
	}

	exists, err := s.vocabRepo.ExistsByUserAndWord(userID, word)
	if err != nil {
		return nil, fmt.Errorf("failed to check word: %w", err)
	}
	if exists {
		return nil, ErrWordExists
	}

	entry := &models.Vocabulary{
		UserID:  userID,
		Word:    word,
		Meaning: meaning,
		Example: example,
	}
	if _, err := s.vocabRepo.Create(entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// MarkKnown flips whether the learner considers a word memorized
func (s *VocabService) MarkKnown(userID, vocaID int64, known bool) (*models.Vocabulary, error) {
	entry, err := s.vocabRepo.FindByIDAndUser(vocaID, userID)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, ErrVocabNotFound
	}

	entry.Known = known
	if err := s.vocabRepo.Update(entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// Delete removes one of the user's entries
func (s *VocabService) Delete(userID, vocaID int64) error {
	entry, err := s.vocabRepo.FindByIDAndUser(vocaID, userID)
	if err != nil {
		return err
	}
	if entry == nil {
		return ErrVocabNotFound
	}
	return s.vocabRepo.Delete(vocaID, userID)
}
