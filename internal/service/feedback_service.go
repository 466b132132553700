package service

import (
	"errors"
	"fmt"
	"time"

	"talkcoach/internal/database"
	"talkcoach/internal/models"
	"talkcoach/internal/repository"
	"talkcoach/internal/validation"
)

var (
	// ErrNoDetails means the session had no recorded feedback to consolidate.
	// It is a defined outcome, not a failure; callers map it to an empty response
	ErrNoDetails = errors.New("no feedback recorded for session")

	// ErrFinalizeConflict means a finalize lost the attach race twice for the
	// same session; the caller may surface it as a transient failure
	ErrFinalizeConflict = errors.New("session was finalized concurrently")
)

// FeedbackService records per-turn feedback and consolidates a session's
// accumulated feedback into a report when the session ends
type FeedbackService struct {
	db       *database.DB
	details  *repository.DetailRepository
	reports  *repository.ReportRepository
	location *time.Location
}

// NewFeedbackService creates a new feedback service. Report dates are stamped
// in the given reference timezone
func NewFeedbackService(db *database.DB, details *repository.DetailRepository, reports *repository.ReportRepository, timezone string) (*FeedbackService, error) {
	location, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid report timezone %q: %w", timezone, err)
	}

	return &FeedbackService{
		db:       db,
		details:  details,
		reports:  reports,
		location: location,
	}, nil
}

// AddDetail validates and records one scored conversation turn. The detail
// starts unattached and stays mutable only until its session is finalized.
// When no level is supplied it is derived from the score
func (s *FeedbackService) AddDetail(d *models.FeedbackDetail) (int64, error) {
	if err := validation.ValidateUserID(d.UserID); err != nil {
		return 0, err
	}
	if err := validation.ValidateSessionID(d.SessionID); err != nil {
		return 0, err
	}
	if err := validation.ValidateScore(d.Score); err != nil {
		return 0, err
	}

	if d.Level == "" {
		d.Level = models.LevelForScore(d.Score)
	}
	d.Categories = dedupeCategories(d.Categories)

	// Detail row and category tags land together or not at all
	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	id, err := s.details.WithTx(tx).Append(d)
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit detail: %w", err)
	}

	return id, nil
}

// Finalize consolidates every currently unattached detail of (userID,
// sessionID) into a single immutable report and returns the report id.
//
// The snapshot read, aggregation, report creation and attach all run in one
// transaction. If a concurrent finalize wins the attach, the transaction is
// rolled back (the tentative report is never observable) and the whole
// operation is retried once against the new state of the session. Details
// appended after the snapshot stay unattached for a future finalize; session
// id reuse after a finalize is permitted
func (s *FeedbackService) Finalize(userID int64, sessionID, topic string) (int64, error) {
	if err := validation.ValidateUserID(userID); err != nil {
		return 0, err
	}
	if err := validation.ValidateSessionID(sessionID); err != nil {
		return 0, err
	}

	exists, err := s.details.ExistsForSession(userID, sessionID)
	if err != nil {
		return 0, err
	}
	if !exists {
		return 0, ErrNoDetails
	}

	reportID, err := s.finalizeOnce(userID, sessionID, topic)
	if errors.Is(err, repository.ErrAlreadyAttached) {
		reportID, err = s.finalizeOnce(userID, sessionID, topic)
	}
	if errors.Is(err, repository.ErrAlreadyAttached) {
		return 0, ErrFinalizeConflict
	}
	return reportID, err
}

// finalizeOnce runs one transactional snapshot-aggregate-create-attach attempt
func (s *FeedbackService) finalizeOnce(userID int64, sessionID, topic string) (int64, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	details := s.details.WithTx(tx)
	reports := s.reports.WithTx(tx)

	snapshot, err := details.ListUnattached(userID, sessionID)
	if err != nil {
		return 0, err
	}
	if len(snapshot) == 0 {
		// Everything already consolidated by an earlier finalize
		return 0, ErrNoDetails
	}

	averages := aggregate(snapshot)

	report := &models.FeedbackReport{
		UserID:          userID,
		Date:            time.Now().In(s.location).Format("2006-01-02"),
		Topic:           topic,
		AvgGrammar:      averages.Grammar,
		AvgVocabulary:   averages.Vocabulary,
		AvgConversation: averages.Conversation,
	}

	reportID, err := reports.Create(report)
	if err != nil {
		return 0, err
	}

	ids := make([]int64, len(snapshot))
	for i, d := range snapshot {
		ids[i] = d.ID
	}

	if err := details.Attach(ids, reportID); err != nil {
		// Rolled back by the deferred Rollback; the report is discarded
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit finalize: %w", err)
	}

	return reportID, nil
}

// dedupeCategories drops duplicate tags while keeping first-seen order
func dedupeCategories(cats []models.FeedbackCategory) []models.FeedbackCategory {
	seen := make(map[models.FeedbackCategory]bool, len(cats))
	out := cats[:0]
	for _, c := range cats {
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	return out
}
