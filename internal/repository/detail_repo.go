package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"talkcoach/internal/database"
	"talkcoach/internal/models"
)

// ErrAlreadyAttached is returned by Attach when any target detail already
// belongs to a report. The caller must roll back its transaction: a partial
// attach means a concurrent finalize won the session.
var ErrAlreadyAttached = errors.New("feedback detail already attached to a report")

// DetailRepository handles database operations for per-turn feedback details
type DetailRepository struct {
	db database.DBTX
}

// NewDetailRepository creates a new detail repository
func NewDetailRepository(db database.DBTX) *DetailRepository {
	return &DetailRepository{db: db}
}

// WithTx returns a repository bound to the given transaction
func (r *DetailRepository) WithTx(tx *database.Tx) *DetailRepository {
	return &DetailRepository{db: tx}
}

// Append inserts a new unattached detail and its category tags, and returns its id
func (r *DetailRepository) Append(d *models.FeedbackDetail) (int64, error) {
	query := `
		INSERT INTO feedback_details
			(user_id, session_id, report_id, user_message, grammar_feedback, vocabulary_feedback, conversation_feedback, score, level)
		VALUES (?, ?, NULL, ?, ?, ?, ?, ?, ?)
	`
	id, err := r.db.ExecReturningID(query,
		d.UserID, d.SessionID, d.UserMessage,
		d.GrammarFeedback, d.VocabularyFeedback, d.ConversationFeedback,
		d.Score, d.Level,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert feedback detail: %w", err)
	}

	for _, cat := range d.Categories {
		_, err := r.db.Exec("INSERT INTO feedback_detail_categories (detail_id, category) VALUES (?, ?)", id, string(cat))
		if err != nil {
			return 0, fmt.Errorf("failed to insert detail category: %w", err)
		}
	}

	d.ID = id
	return id, nil
}

// ListUnattached returns all details for a user+session that are not yet
// bound to a report, in insertion order
func (r *DetailRepository) ListUnattached(userID int64, sessionID string) ([]models.FeedbackDetail, error) {
	query := `
		SELECT id, user_id, session_id, report_id, user_message,
		       grammar_feedback, vocabulary_feedback, conversation_feedback, score, level
		FROM feedback_details
		WHERE user_id = ? AND session_id = ? AND report_id IS NULL
		ORDER BY id ASC
	`
	return r.queryDetails(query, userID, sessionID)
}

// ListByReport returns all details attached to a report, in insertion order
func (r *DetailRepository) ListByReport(reportID int64) ([]models.FeedbackDetail, error) {
	query := `
		SELECT id, user_id, session_id, report_id, user_message,
		       grammar_feedback, vocabulary_feedback, conversation_feedback, score, level
		FROM feedback_details
		WHERE report_id = ?
		ORDER BY id ASC
	`
	return r.queryDetails(query, reportID)
}

// ExistsForSession reports whether any detail was ever recorded for the session
func (r *DetailRepository) ExistsForSession(userID int64, sessionID string) (bool, error) {
	var count int
	query := "SELECT COUNT(*) FROM feedback_details WHERE user_id = ? AND session_id = ?"
	if err := r.db.QueryRow(query, userID, sessionID).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check session details: %w", err)
	}
	return count > 0, nil
}

// Attach binds exactly the given details to a report. Every target row must
// still be unattached; otherwise nothing is kept and ErrAlreadyAttached is
// returned so the surrounding transaction can roll back
func (r *DetailRepository) Attach(ids []int64, reportID int64) error {
	if len(ids) == 0 {
		return nil
	}

	query := fmt.Sprintf(
		"UPDATE feedback_details SET report_id = ? WHERE report_id IS NULL AND id IN (%s)",
		placeholders(len(ids)),
	)

	args := make([]interface{}, 0, len(ids)+1)
	args = append(args, reportID)
	for _, id := range ids {
		args = append(args, id)
	}

	result, err := r.db.Exec(query, args...)
	if err != nil {
		return fmt.Errorf("failed to attach details: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read attach result: %w", err)
	}
	if affected != int64(len(ids)) {
		return ErrAlreadyAttached
	}

	return nil
}

// queryDetails runs a detail SELECT and loads category tags for the result set
func (r *DetailRepository) queryDetails(query string, args ...interface{}) ([]models.FeedbackDetail, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query details: %w", err)
	}
	defer rows.Close()

	var details []models.FeedbackDetail
	for rows.Next() {
		var d models.FeedbackDetail
		var reportID sql.NullInt64

		err := rows.Scan(
			&d.ID,
			&d.UserID,
			&d.SessionID,
			&reportID,
			&d.UserMessage,
			&d.GrammarFeedback,
			&d.VocabularyFeedback,
			&d.ConversationFeedback,
			&d.Score,
			&d.Level,
		)
		if err != nil {
			return nil, err
		}

		if reportID.Valid {
			d.ReportID = &reportID.Int64
		}
		d.Categories = []models.FeedbackCategory{}

		details = append(details, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.loadCategories(details); err != nil {
		return nil, err
	}

	return details, nil
}

// loadCategories fills the category sets of the given details
func (r *DetailRepository) loadCategories(details []models.FeedbackDetail) error {
	if len(details) == 0 {
		return nil
	}

	byID := make(map[int64]*models.FeedbackDetail, len(details))
	args := make([]interface{}, 0, len(details))
	for i := range details {
		byID[details[i].ID] = &details[i]
		args = append(args, details[i].ID)
	}

	query := fmt.Sprintf(
		"SELECT detail_id, category FROM feedback_detail_categories WHERE detail_id IN (%s) ORDER BY detail_id, category",
		placeholders(len(args)),
	)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return fmt.Errorf("failed to query detail categories: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var detailID int64
		var category string
		if err := rows.Scan(&detailID, &category); err != nil {
			return err
		}
		if d, ok := byID[detailID]; ok {
			d.Categories = append(d.Categories, models.FeedbackCategory(category))
		}
	}

	return rows.Err()
}

// placeholders builds a "?, ?, ?" list of the given length
func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
