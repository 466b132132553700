package repository

import (
	"database/sql"
	"fmt"

	"talkcoach/internal/database"
	"talkcoach/internal/models"
)

// ReportRepository handles database operations for finalized session reports
type ReportRepository struct {
	db database.DBTX
}

// NewReportRepository creates a new report repository
func NewReportRepository(db database.DBTX) *ReportRepository {
	return &ReportRepository{db: db}
}

// WithTx returns a repository bound to the given transaction
func (r *ReportRepository) WithTx(tx *database.Tx) *ReportRepository {
	return &ReportRepository{db: tx}
}

// Create inserts a new report and returns its id
func (r *ReportRepository) Create(report *models.FeedbackReport) (int64, error) {
	query := `
		INSERT INTO feedback_reports (user_id, report_date, topic, avg_grammar, avg_vocabulary, avg_conversation)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	id, err := r.db.ExecReturningID(query,
		report.UserID, report.Date, report.Topic,
		report.AvgGrammar, report.AvgVocabulary, report.AvgConversation,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to create report: %w", err)
	}

	report.ID = id
	return id, nil
}

// FindByUserOrderByDateDesc returns all reports of a user, newest date first
func (r *ReportRepository) FindByUserOrderByDateDesc(userID int64) ([]models.FeedbackReport, error) {
	query := `
		SELECT id, user_id, report_date, topic, avg_grammar, avg_vocabulary, avg_conversation
		FROM feedback_reports
		WHERE user_id = ?
		ORDER BY report_date DESC, id DESC
	`
	return r.queryReports(query, userID)
}

// FindByUserAndDate returns the reports of a user on a calendar date, in creation order
func (r *ReportRepository) FindByUserAndDate(userID int64, date string) ([]models.FeedbackReport, error) {
	query := `
		SELECT id, user_id, report_date, topic, avg_grammar, avg_vocabulary, avg_conversation
		FROM feedback_reports
		WHERE user_id = ? AND report_date = ?
		ORDER BY id ASC
	`
	return r.queryReports(query, userID, date)
}

// FindByIDAndUser fetches a report only if it is owned by the given user.
// Returns (nil, nil) when the report does not exist or belongs to someone else;
// callers must not distinguish the two cases
func (r *ReportRepository) FindByIDAndUser(reportID, userID int64) (*models.FeedbackReport, error) {
	query := `
		SELECT id, user_id, report_date, topic, avg_grammar, avg_vocabulary, avg_conversation
		FROM feedback_reports
		WHERE id = ? AND user_id = ?
	`

	report := &models.FeedbackReport{}
	var avgGrammar, avgVocabulary, avgConversation sql.NullFloat64

	err := r.db.QueryRow(query, reportID, userID).Scan(
		&report.ID,
		&report.UserID,
		&report.Date,
		&report.Topic,
		&avgGrammar,
		&avgVocabulary,
		&avgConversation,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch report: %w", err)
	}

	report.AvgGrammar = nullableFloat(avgGrammar)
	report.AvgVocabulary = nullableFloat(avgVocabulary)
	report.AvgConversation = nullableFloat(avgConversation)
	return report, nil
}

func (r *ReportRepository) queryReports(query string, args ...interface{}) ([]models.FeedbackReport, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query reports: %w", err)
	}
	defer rows.Close()

	var reports []models.FeedbackReport
	for rows.Next() {
		var report models.FeedbackReport
		var avgGrammar, avgVocabulary, avgConversation sql.NullFloat64

		err := rows.Scan(
			&report.ID,
			&report.UserID,
			&report.Date,
			&report.Topic,
			&avgGrammar,
			&avgVocabulary,
			&avgConversation,
		)
		if err != nil {
			return nil, err
		}

		report.AvgGrammar = nullableFloat(avgGrammar)
		report.AvgVocabulary = nullableFloat(avgVocabulary)
		report.AvgConversation = nullableFloat(avgConversation)

		reports = append(reports, report)
	}

	return reports, rows.Err()
}

func nullableFloat(f sql.NullFloat64) *float64 {
	if !f.Valid {
		return nil
	}
	v := f.Float64
	return &v
}
