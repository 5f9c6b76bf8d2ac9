package services

import (
	"math"
	"time"

	"github.com/iolph/wpr/internal/models"
	"github.com/iolph/wpr/internal/validator"
	"github.com/iolph/wpr/pkg/logger"
	"gorm.io/gorm"
)

// AnalysisService computes derived metrics for report submissions and keeps
// the append-only analysis history.
type AnalysisService struct {
	db     *gorm.DB
	config *SystemConfigService
}

func NewAnalysisService(db *gorm.DB, config *SystemConfigService) *AnalysisService {
	return &AnalysisService{db: db, config: config}
}

// CompletionRate is completed over (completed + pending + dropped) as a
// percentage, rounded to two decimals. Zero when no tasks were reported.
func CompletionRate(completed, pending, dropped int) float64 {
	total := completed + pending + dropped
	if total == 0 {
		return 0
	}
	return round2(float64(completed) / float64(total) * 100)
}

// MeanProjectCompletion averages the project percentages, zero when no
// projects were reported.
func MeanProjectCompletion(projects []models.Project) float64 {
	if len(projects) == 0 {
		return 0
	}
	var sum float64
	for _, p := range projects {
		sum += p.Completion
	}
	return round2(sum / float64(len(projects)))
}

// MeanPeerRating averages the ratings given to this employee by peers.
// An employee no one rated gets the neutral score instead of zero so the
// leaderboard does not punish absence of data.
func MeanPeerRating(ratings []int, neutral float64) float64 {
	if len(ratings) == 0 {
		return round2(neutral)
	}
	var sum int
	for _, r := range ratings {
		sum += r
	}
	return round2(float64(sum) / float64(len(ratings)))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Analyze builds and persists the analysis row for a saved report. The
// narrative and model name come from the AI step and may be empty or carry
// an error when that step failed.
func (s *AnalysisService) Analyze(record *ReportRecord, narrative, modelUsed, errMessage string) (*models.Analysis, error) {
	neutral := 3.0
	if s.config != nil {
		neutral = s.config.NeutralPeerRating()
	}

	received := s.peerRatingsFor(record.Name, record.WeekNumber, record.Year)

	row := &models.Analysis{
		ReportID:           record.ID,
		EmployeeName:       record.Name,
		Team:               record.Team,
		WeekNumber:         record.WeekNumber,
		Year:               record.Year,
		TaskCompletionRate: CompletionRate(len(record.CompletedTasks), len(record.PendingTasks), len(record.DroppedTasks)),
		ProjectCompletion:  MeanProjectCompletion(record.Projects),
		PeerRatingAverage:  MeanPeerRating(received, neutral),
		Narrative:          narrative,
		AIModelUsed:        modelUsed,
		ErrorMessage:       errMessage,
		AnalyzedAt:         time.Now(),
	}

	if err := s.db.Create(row).Error; err != nil {
		logger.Error().Err(err).Str("employee", record.Name).Msg("failed to save analysis")
		return nil, err
	}
	return row, nil
}

// peerRatingsFor collects the ratings other employees gave this one in the
// same week, scanning the stored peer evaluation maps.
func (s *AnalysisService) peerRatingsFor(employee string, week, year int) []int {
	var rows []models.Report
	if err := s.db.Where("week_number = ? AND year = ?", week, year).Find(&rows).Error; err != nil {
		logger.Error().Err(err).Msg("failed to scan peer evaluations")
		return nil
	}

	bare := validator.StripTeamSuffix(employee)
	var ratings []int
	for i := range rows {
		if rows[i].Name == bare {
			continue
		}
		peers := decodePeers(rows[i].PeerEvaluations, rows[i].ID)
		for peer, rating := range peers {
			if validator.StripTeamSuffix(peer) == bare {
				ratings = append(ratings, rating)
			}
		}
	}
	return ratings
}

// HistoryFor returns the analysis rows for an employee, most recent first.
// limit <= 0 means no limit.
func (s *AnalysisService) HistoryFor(employee string, limit int) []models.Analysis {
	query := s.db.
		Where("employee_name = ?", validator.StripTeamSuffix(employee)).
		Order("year DESC, week_number DESC, analyzed_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var rows []models.Analysis
	if err := query.Find(&rows).Error; err != nil {
		logger.Error().Err(err).Str("employee", employee).Msg("failed to list analyses")
		return []models.Analysis{}
	}
	return rows
}

// ListByWeek returns all analysis rows for one week.
func (s *AnalysisService) ListByWeek(week, year int) []models.Analysis {
	var rows []models.Analysis
	if err := s.db.Where("week_number = ? AND year = ?", week, year).
		Order("employee_name ASC").Find(&rows).Error; err != nil {
		logger.Error().Err(err).Msg("failed to list analyses for week")
		return []models.Analysis{}
	}
	return rows
}
