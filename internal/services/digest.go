package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/iolph/wpr/internal/models"
	"github.com/iolph/wpr/pkg/logger"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// DigestService builds the weekly per-team digest and mails it to managers.
// Runs on a cron schedule; the digest covers the previous ISO week so late
// Friday submissions are included.
type DigestService struct {
	db      *gorm.DB
	reports *ReportService
	roster  *RosterService
	email   *EmailService
	config  *SystemConfigService

	cronScheduler  *cron.Cron
	currentEntryID cron.EntryID
}

func NewDigestService(db *gorm.DB, reports *ReportService, roster *RosterService, email *EmailService, config *SystemConfigService) *DigestService {
	return &DigestService{
		db:      db,
		reports: reports,
		roster:  roster,
		email:   email,
		config:  config,
	}
}

func (s *DigestService) StartScheduler() {
	s.cronScheduler = cron.New()
	s.updateSchedule()
	s.cronScheduler.Start()
	logger.Info().Msg("digest scheduler started")
}

func (s *DigestService) StopScheduler() {
	if s.cronScheduler != nil {
		s.cronScheduler.Stop()
	}
}

func (s *DigestService) updateSchedule() {
	if s.currentEntryID != 0 {
		s.cronScheduler.Remove(s.currentEntryID)
	}

	expr := s.config.DigestSchedule()
	entryID, err := s.cronScheduler.AddFunc(expr, func() {
		if !s.config.DigestEnabled() {
			return
		}
		week, year := previousWeek()
		if err := s.GenerateAndSend(week, year); err != nil {
			logger.Error().Err(err).Msg("weekly digest run failed")
		}
	})
	if err != nil {
		logger.Error().Err(err).Str("schedule", expr).Msg("failed to schedule digest")
		return
	}

	s.currentEntryID = entryID
	logger.Info().Str("schedule", expr).Msg("weekly digest scheduled")
}

// previousWeek returns the ISO week before the current one, rolling the
// year back when the current week is week 1.
func previousWeek() (int, int) {
	year, week := time.Now().ISOWeek()
	if week > 1 {
		return week - 1, year
	}
	_, lastWeek := time.Date(year-1, 12, 28, 0, 0, 0, 0, time.UTC).ISOWeek()
	return lastWeek, year - 1
}

// GenerateAndSend builds digests for every team for one week and emails
// them to the configured recipients.
func (s *DigestService) GenerateAndSend(week, year int) error {
	digests, err := s.Generate(week, year)
	if err != nil {
		return err
	}

	recipients := splitRecipients(s.config.DigestRecipients())
	if len(recipients) == 0 {
		logger.Warn().Msg("no digest recipients configured, skipping email")
		return nil
	}

	subject := fmt.Sprintf("WPR Team Digest - Week %d, %d", week, year)
	html := s.buildDigestHTML(week, year, digests)

	if err := s.email.SendDigest(recipients, subject, html); err != nil {
		for _, d := range digests {
			d.NotifyError = err.Error()
			s.db.Save(d)
		}
		return err
	}

	now := time.Now()
	for _, d := range digests {
		d.NotifiedAt = &now
		d.NotifyError = ""
		s.db.Save(d)
	}
	logger.Info().Int("week", week).Int("year", year).Int("teams", len(digests)).Msg("weekly digest sent")
	return nil
}

// Generate builds (or refreshes) one digest row per roster team for the
// given week.
func (s *DigestService) Generate(week, year int) ([]*models.TeamDigest, error) {
	var digests []*models.TeamDigest

	for _, team := range s.roster.Teams() {
		digest := s.buildTeamDigest(team, week, year)

		var existing models.TeamDigest
		err := s.db.Where("team = ? AND week_number = ? AND year = ?", team, week, year).First(&existing).Error
		if err == nil {
			digest.ID = existing.ID
			digest.CreatedAt = existing.CreatedAt
			digest.NotifiedAt = existing.NotifiedAt
			if err := s.db.Save(digest).Error; err != nil {
				return nil, err
			}
		} else if err == gorm.ErrRecordNotFound {
			if err := s.db.Create(digest).Error; err != nil {
				return nil, err
			}
		} else {
			return nil, err
		}

		digests = append(digests, digest)
	}

	return digests, nil
}

func (s *DigestService) buildTeamDigest(team string, week, year int) *models.TeamDigest {
	digest := &models.TeamDigest{
		Team:       team,
		WeekNumber: week,
		Year:       year,
	}

	submitted := map[string]bool{}
	var ratings []int
	for _, r := range s.reports.ListByTeam(team, week) {
		if r.Year != year {
			continue
		}
		digest.ReportCount++
		digest.CompletedTasks += r.CompletedCount
		digest.PendingTasks += r.PendingCount
		digest.DroppedTasks += r.DroppedCount
		submitted[r.Name] = true
		if rating, ok := ratingScore(r.ProductivityRating); ok {
			ratings = append(ratings, rating)
		}
	}
	digest.AvgRating = meanInt(ratings)

	var missing []string
	for _, member := range s.roster.teams[team] {
		if !submitted[member] {
			missing = append(missing, member)
		}
	}
	digest.Missing = strings.Join(missing, ", ")

	return digest
}

func (s *DigestService) buildDigestHTML(week, year int, digests []*models.TeamDigest) string {
	var sb strings.Builder

	sb.WriteString("<html><body style=\"font-family: Arial, sans-serif; color: #333;\">")
	fmt.Fprintf(&sb, "<h1 style=\"color: #2E86C1;\">Weekly Team Digest - Week %d, %d</h1>", week, year)
	fmt.Fprintf(&sb, "<p>Covering %s</p>", WeekDateRange(week, year))

	for _, d := range digests {
		fmt.Fprintf(&sb, "<h2 style=\"color: #2471A3;\">%s</h2>", d.Team)
		sb.WriteString("<ul>")
		fmt.Fprintf(&sb, "<li>Reports submitted: %d</li>", d.ReportCount)
		fmt.Fprintf(&sb, "<li>Tasks: %d completed, %d pending, %d dropped</li>",
			d.CompletedTasks, d.PendingTasks, d.DroppedTasks)
		fmt.Fprintf(&sb, "<li>Average productivity rating: %.2f</li>", d.AvgRating)
		sb.WriteString("</ul>")
		if d.Missing != "" {
			fmt.Fprintf(&sb, "<p style=\"color: #C0392B;\">Missing reports: %s</p>", d.Missing)
		}
	}

	sb.WriteString("<p style=\"color: #666;\">Best regards,<br>IOL Inc.</p>")
	sb.WriteString("</body></html>")
	return sb.String()
}

// ListDigests returns stored digests, most recent week first.
func (s *DigestService) ListDigests(limit int) []models.TeamDigest {
	query := s.db.Order("year DESC, week_number DESC, team ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var digests []models.TeamDigest
	if err := query.Find(&digests).Error; err != nil {
		logger.Error().Err(err).Msg("failed to list digests")
		return []models.TeamDigest{}
	}
	return digests
}

func splitRecipients(value string) []string {
	var recipients []string
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			recipients = append(recipients, part)
		}
	}
	return recipients
}
