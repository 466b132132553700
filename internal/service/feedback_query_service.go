package service

import (
	"errors"

	"talkcoach/internal/models"
	"talkcoach/internal/repository"
	"talkcoach/internal/validation"
)

// ErrReportNotFound means the report does not exist or is owned by another
// user; the two cases are deliberately indistinguishable
var ErrReportNotFound = errors.New("report not found")

// FeedbackQueryService serves the read side of feedback: report date history,
// reports per date, and the details behind a report
type FeedbackQueryService struct {
	details *repository.DetailRepository
	reports *repository.ReportRepository
}

// NewFeedbackQueryService creates a new feedback query service
func NewFeedbackQueryService(details *repository.DetailRepository, reports *repository.ReportRepository) *FeedbackQueryService {
	return &FeedbackQueryService{details: details, reports: reports}
}

// ListReportDates returns the distinct calendar dates on which the user has
// reports, newest first. Several reports on one date yield a single entry
func (s *FeedbackQueryService) ListReportDates(userID int64) ([]string, error) {
	if err := validation.ValidateUserID(userID); err != nil {
		return nil, err
	}

	reports, err := s.reports.FindByUserOrderByDateDesc(userID)
	if err != nil {
		return nil, err
	}

	dates := make([]string, 0, len(reports))
	for _, r := range reports {
		if len(dates) == 0 || dates[len(dates)-1] != r.Date {
			dates = append(dates, r.Date)
		}
	}
	return dates, nil
}

// ListReports returns the user's reports for one calendar date, in creation
// order. An unknown date yields an empty list, not an error
func (s *FeedbackQueryService) ListReports(userID int64, date string) ([]models.FeedbackReport, error) {
	if err := validation.ValidateUserID(userID); err != nil {
		return nil, err
	}
	if date == "" {
		return nil, validation.ValidationError{Field: "date", Message: "date is required"}
	}

	reports, err := s.reports.FindByUserAndDate(userID, date)
	if err != nil {
		return nil, err
	}
	if reports == nil {
		reports = []models.FeedbackReport{}
	}
	return reports, nil
}

// ListDetails returns the details attached to one of the user's reports, in
// insertion order. Requests for another user's report report not-found
func (s *FeedbackQueryService) ListDetails(userID, reportID int64) ([]models.FeedbackDetail, error) {
	if err := validation.ValidateUserID(userID); err != nil {
		return nil, err
	}
	if reportID <= 0 {
		return nil, validation.ValidationError{Field: "reportId", Message: "reportId is required"}
	}

	report, err := s.reports.FindByIDAndUser(reportID, userID)
	if err != nil {
		return nil, err
	}
	if report == nil {
		return nil, ErrReportNotFound
	}

	details, err := s.details.ListByReport(reportID)
	if err != nil {
		return nil, err
	}

	for i := range details {
		if details[i].Level == "" {
			details[i].Level = models.LevelForScore(details[i].Score)
		}
	}
	if details == nil {
		details = []models.FeedbackDetail{}
	}
	return details, nil
}
