package repository

import (
	"database/sql"
	"fmt"
	"time"

	"talkcoach/internal/database"
	"talkcoach/internal/models"
)

// VocabRepository handles database operations for the vocabulary notebook
type VocabRepository struct {
	db database.DBTX
}

// NewVocabRepository creates a new vocabulary repository
func NewVocabRepository(db database.DBTX) *VocabRepository {
	return &VocabRepository{db: db}
}

// Create inserts a new vocabulary entry
func (r *VocabRepository) Create(v *models.Vocabulary) (int64, error) {
	query := `
		INSERT INTO vocabulary (user_id, word, meaning, example, known)
		VALUES (?, ?, ?, ?, ?)
	`
	id, err := r.db.ExecReturningID(query, v.UserID, v.Word, v.Meaning, v.Example, v.Known)
	if err != nil {
		return 0, fmt.Errorf("failed to create vocabulary entry: %w", err)
	}
	v.ID = id
	v.CreatedAt = time.Now()
	return id, nil
}

// ListByUser returns a user's vocabulary entries, newest first
func (r *VocabRepository) ListByUser(userID int64) ([]models.Vocabulary, error) {
	query := `
		SELECT id, user_id, word, meaning, example, known, created_at
		FROM vocabulary
		WHERE user_id = ?
		ORDER BY id DESC
	`
	rows, err := r.db.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query vocabulary: %w", err)
	}
	defer rows.Close()

	var entries []models.Vocabulary
	for rows.Next() {
		var v models.Vocabulary
		err := rows.Scan(&v.ID, &v.UserID, &v.Word, &v.Meaning, &v.Example, &v.Known, &v.CreatedAt)
		if err != nil {
			return nil, err
		}
		entries = append(entries, v)
	}

	return entries, rows.Err()
}

// FindByIDAndUser fetches an entry only if it is owned by the given user
func (r *VocabRepository) FindByIDAndUser(vocaID, userID int64) (*models.Vocabulary, error) {
	query := `
		SELECT id, user_id, word, meaning, example, known, created_at
		FROM vocabulary
		WHERE id = ? AND user_id = ?
	`

	v := &models.Vocabulary{}
	err := r.db.QueryRow(query, vocaID, userID).Scan(
		&v.ID, &v.UserID, &v.Word, &v.Meaning, &v.Example, &v.Known, &v.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch vocabulary entry: %w", err)
	}
	return v, nil
}

// ExistsByUserAndWord checks whether a user already saved a word (case-insensitive)
func (r *VocabRepository) ExistsByUserAndWord(userID int64, word string) (bool, error) {
	var count int
	query := "SELECT COUNT(*) FROM vocabulary WHERE user_id = ? AND LOWER(word) = LOWER(?)"
	if err := r.db.QueryRow(query, userID, word).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check vocabulary word: %w", err)
	}
	return count > 0, nil
}

// Update rewrites an entry's mutable fields
func (r *VocabRepository) Update(v *models.Vocabulary) error {
	query := `
		UPDATE vocabulary
		SET word = ?, meaning = ?, example = ?, known = ?
		WHERE id = ? AND user_id = ?
	`
	_, err := r.db.Exec(query, v.Word, v.Meaning, v.Example, v.Known, v.ID, v.UserID)
	if err != nil {
		return fmt.Errorf("failed to update vocabulary entry: %w", err)
	}
	return nil
}

// Delete removes an entry
func (r *VocabRepository) Delete(vocaID, userID int64) error {
	query := "DELETE FROM vocabulary WHERE id = ? AND user_id = ?"
	_, err := r.db.Exec(query, vocaID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete vocabulary entry: %w", err)
	}
	return nil
}
