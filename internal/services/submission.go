package services

import (
	"context"

	"github.com/iolph/wpr/internal/validator"
	"github.com/iolph/wpr/pkg/logger"
)

// SummaryGenerator produces the coaching summary for a saved report.
type SummaryGenerator interface {
	GenerateSummary(ctx context.Context, record *ReportRecord) SummaryResult
}

// ConfirmationSender delivers the post-submission email.
type ConfirmationSender interface {
	SendConfirmation(toEmail, toName string, week, year int, summary string) bool
}

// SubmissionInput is a validated, normalized weekly report ready to submit,
// plus the address the confirmation goes to.
type SubmissionInput struct {
	Record ReportRecord
	Email  string
}

// SubmissionOutcome reports what happened at each step. Saved false means
// the whole submission failed; the soft steps carry their own flags.
type SubmissionOutcome struct {
	Saved     bool     `json:"saved"`
	Duplicate bool     `json:"duplicate"`
	Reference string   `json:"reference,omitempty"`
	ReportID  uint     `json:"report_id,omitempty"`
	Summary   string   `json:"summary,omitempty"`
	AIFailed  bool     `json:"ai_failed"`
	EmailSent bool     `json:"email_sent"`
	Warnings  []string `json:"warnings,omitempty"`
}

// SubmissionService runs the submission workflow: persist, summarize,
// notify, and hand off analysis. Persistence failure aborts; the AI and
// email steps degrade softly because the report is already durable.
type SubmissionService struct {
	reports *ReportService
	roster  *RosterService
	ai      SummaryGenerator
	email   ConfirmationSender
	queue   TaskQueue
}

func NewSubmissionService(reports *ReportService, roster *RosterService, ai SummaryGenerator, email ConfirmationSender, queue TaskQueue) *SubmissionService {
	return &SubmissionService{
		reports: reports,
		roster:  roster,
		ai:      ai,
		email:   email,
		queue:   queue,
	}
}

// filterPeers drops self-evaluations always, and cross-team evaluations
// when the roster knows the submitter. Submitters outside the roster keep
// their map untouched; there is no team to check against.
func (s *SubmissionService) filterPeers(record *ReportRecord) []string {
	if len(record.PeerEvaluations) == 0 {
		return nil
	}

	rosterKnown := s.roster != nil && s.roster.IsMember(record.Name)
	var warnings []string
	kept := make(map[string]int, len(record.PeerEvaluations))
	for peer, rating := range record.PeerEvaluations {
		bare := validator.StripTeamSuffix(peer)
		switch {
		case bare == record.Name:
			warnings = append(warnings, "self evaluation dropped")
		case rosterKnown && !s.roster.SameTeam(record.Name, bare):
			warnings = append(warnings, "peer evaluation for "+bare+" dropped: not a teammate")
		default:
			kept[peer] = rating
		}
	}
	record.PeerEvaluations = kept
	return warnings
}

// followUp runs the soft post-persistence steps: summary, confirmation
// email, and the analysis hand-off.
func (s *SubmissionService) followUp(ctx context.Context, record *ReportRecord, email string, outcome *SubmissionOutcome) {
	summary := s.ai.GenerateSummary(ctx, record)
	outcome.Summary = summary.Text
	outcome.AIFailed = summary.Failed
	if summary.Failed {
		outcome.Warnings = append(outcome.Warnings, "summary generation failed")
	}

	if email != "" {
		outcome.EmailSent = s.email.SendConfirmation(email, record.Name, record.WeekNumber, record.Year, summary.Text)
		if !outcome.EmailSent {
			outcome.Warnings = append(outcome.Warnings, "confirmation email not delivered")
		}
	}

	if s.queue != nil {
		task := &AnalysisTask{
			ReportID:     record.ID,
			EmployeeName: record.Name,
			Narrative:    summary.Text,
			ModelUsed:    summary.ModelUsed,
			ErrorMessage: summary.Err,
		}
		if err := s.queue.Enqueue(task); err != nil {
			logger.Error().Err(err).Uint("report_id", record.ID).Msg("failed to enqueue analysis task")
			outcome.Warnings = append(outcome.Warnings, "analysis deferred")
		}
	}
}

// Submit runs the full workflow for one weekly report.
func (s *SubmissionService) Submit(ctx context.Context, input *SubmissionInput) *SubmissionOutcome {
	outcome := &SubmissionOutcome{}
	record := &input.Record

	record.Name = validator.StripTeamSuffix(record.Name)
	if record.Team == "" && s.roster != nil {
		record.Team = s.roster.TeamFor(record.Name)
	}
	outcome.Warnings = append(outcome.Warnings, s.filterPeers(record)...)

	if s.reports.Exists(record.Name, record.WeekNumber, record.Year) {
		outcome.Duplicate = true
		logger.Info().
			Str("employee", record.Name).
			Int("week", record.WeekNumber).
			Int("year", record.Year).
			Msg("duplicate submission rejected")
		return outcome
	}

	if !s.reports.Save(record) {
		outcome.Warnings = append(outcome.Warnings, "failed to save report")
		return outcome
	}
	outcome.Saved = true
	outcome.Reference = record.Reference
	outcome.ReportID = record.ID

	s.followUp(ctx, record, input.Email, outcome)

	LogInfo("submission", "submit", "weekly report submitted", map[string]interface{}{
		"employee": record.Name, "week": record.WeekNumber, "year": record.Year,
		"reference": record.Reference, "ai_failed": outcome.AIFailed, "email_sent": outcome.EmailSent,
	})
	return outcome
}

// Edit replaces a saved report in place and re-runs the follow-up steps:
// a fresh summary, an optional confirmation, and one more analysis row on
// top of the existing history.
func (s *SubmissionService) Edit(ctx context.Context, id uint, input *SubmissionInput) *SubmissionOutcome {
	outcome := &SubmissionOutcome{}
	record := &input.Record

	record.Name = validator.StripTeamSuffix(record.Name)
	if record.Team == "" && s.roster != nil {
		record.Team = s.roster.TeamFor(record.Name)
	}
	outcome.Warnings = append(outcome.Warnings, s.filterPeers(record)...)

	if !s.reports.Update(record, id) {
		outcome.Warnings = append(outcome.Warnings, "failed to update report")
		return outcome
	}
	outcome.Saved = true
	outcome.Reference = record.Reference
	outcome.ReportID = record.ID

	s.followUp(ctx, record, input.Email, outcome)

	LogInfo("submission", "edit", "weekly report edited", map[string]interface{}{
		"employee": record.Name, "week": record.WeekNumber, "year": record.Year,
		"reference": record.Reference, "ai_failed": outcome.AIFailed, "email_sent": outcome.EmailSent,
	})
	return outcome
}

// ProcessAnalysisTask builds the analysis row for a completed submission.
// Wired as the queue/worker processor.
func ProcessAnalysisTask(reports *ReportService, analyses *AnalysisService) func(context.Context, *AnalysisTask) error {
	return func(ctx context.Context, task *AnalysisTask) error {
		record, err := reports.GetByID(task.ReportID)
		if err != nil {
			logger.Error().Err(err).Uint("report_id", task.ReportID).Msg("report for analysis not found")
			return err
		}

		narrative := task.Narrative
		if task.ErrorMessage != "" {
			narrative = ""
		}
		_, err = analyses.Analyze(record, narrative, task.ModelUsed, task.ErrorMessage)
		return err
	}
}
