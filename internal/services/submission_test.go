package services

import (
	"context"
	"testing"

	"github.com/iolph/wpr/internal/config"
	"github.com/iolph/wpr/internal/validator"
)

type stubSummary struct {
	result SummaryResult
	calls  int
}

func (s *stubSummary) GenerateSummary(ctx context.Context, record *ReportRecord) SummaryResult {
	s.calls++
	return s.result
}

type stubEmail struct {
	sent     bool
	deliver  bool
	lastBody string
}

func (s *stubEmail) SendConfirmation(toEmail, toName string, week, year int, summary string) bool {
	s.sent = true
	s.lastBody = summary
	return s.deliver
}

type recordingQueue struct {
	tasks []*AnalysisTask
}

func (q *recordingQueue) Enqueue(task *AnalysisTask) error {
	q.tasks = append(q.tasks, task)
	return nil
}
func (q *recordingQueue) IsAsync() bool { return false }
func (q *recordingQueue) Close() error  { return nil }

func newSubmissionHarness(t *testing.T, ai SummaryGenerator, email ConfirmationSender) (*SubmissionService, *ReportService, *recordingQueue) {
	t.Helper()
	db := newTestDB(t)
	reports := NewReportService(db)
	rosterCfg := config.DefaultRoster()
	roster := NewRosterService(&rosterCfg)
	queue := &recordingQueue{}
	return NewSubmissionService(reports, roster, ai, email, queue), reports, queue
}

func TestSubmitStoresCountsAndRate(t *testing.T) {
	ai := &stubSummary{result: SummaryResult{Text: "<h3>Achievement Highlights</h3>fine week", ModelUsed: "test-model"}}
	email := &stubEmail{deliver: true}
	svc, reports, queue := newSubmissionHarness(t, ai, email)

	input := &SubmissionInput{
		Record: ReportRecord{
			Name:           "Ana (Frontend Team)",
			Team:           "Frontend Team",
			WeekNumber:     10,
			Year:           2024,
			CompletedTasks: []string{"Landing page", "Bug triage"},
			PendingTasks:   []string{"Design review"},
			DroppedTasks:   []string{},
		},
		Email: "ana@iol.ph",
	}

	outcome := svc.Submit(context.Background(), input)
	if !outcome.Saved || outcome.Duplicate {
		t.Fatalf("expected saved outcome, got %+v", outcome)
	}
	if outcome.Reference == "" {
		t.Error("expected a submission reference")
	}
	if !outcome.EmailSent {
		t.Error("expected email to be delivered")
	}

	stored, err := reports.GetByID(outcome.ReportID)
	if err != nil {
		t.Fatalf("stored report lookup: %v", err)
	}
	if stored.Name != "Ana" {
		t.Errorf("display suffix should be stripped before storage, got %q", stored.Name)
	}
	if stored.CompletedCount != 2 || stored.PendingCount != 1 || stored.DroppedCount != 0 {
		t.Errorf("counts = (%d,%d,%d), want (2,1,0)", stored.CompletedCount, stored.PendingCount, stored.DroppedCount)
	}
	if rate := CompletionRate(stored.CompletedCount, stored.PendingCount, stored.DroppedCount); rate != 66.67 {
		t.Errorf("completion rate = %v, want 66.67", rate)
	}

	if len(queue.tasks) != 1 {
		t.Fatalf("expected one analysis task, got %d", len(queue.tasks))
	}
	if queue.tasks[0].ReportID != outcome.ReportID || queue.tasks[0].ModelUsed != "test-model" {
		t.Errorf("analysis task payload wrong: %+v", queue.tasks[0])
	}
}

func TestSubmitDuplicateRejected(t *testing.T) {
	ai := &stubSummary{result: SummaryResult{Text: "summary"}}
	email := &stubEmail{deliver: true}
	svc, reports, _ := newSubmissionHarness(t, ai, email)

	input := &SubmissionInput{
		Record: ReportRecord{
			Name:           "Ana",
			Team:           "Frontend Team",
			WeekNumber:     10,
			Year:           2024,
			CompletedTasks: []string{"Landing page"},
		},
		Email: "ana@iol.ph",
	}
	if outcome := svc.Submit(context.Background(), input); !outcome.Saved {
		t.Fatal("first submission should save")
	}

	second := &SubmissionInput{
		Record: ReportRecord{
			Name:           "Ana (Frontend Team)",
			WeekNumber:     10,
			Year:           2024,
			CompletedTasks: []string{"Different tasks entirely"},
		},
		Email: "ana@iol.ph",
	}
	outcome := svc.Submit(context.Background(), second)
	if outcome.Saved || !outcome.Duplicate {
		t.Fatalf("second submission should be rejected as duplicate, got %+v", outcome)
	}

	if got := len(reports.ListByEmployee("Ana", 0)); got != 1 {
		t.Errorf("expected a single stored row, got %d", got)
	}
}

func TestSubmitAIFailureIsSoft(t *testing.T) {
	ai := &stubSummary{result: SummaryResult{
		Text:   summaryFailurePlaceholder,
		Failed: true,
		Err:    "all retries exhausted",
	}}
	email := &stubEmail{deliver: true}
	svc, _, queue := newSubmissionHarness(t, ai, email)

	input := &SubmissionInput{
		Record: ReportRecord{
			Name:           "Ben",
			Team:           "Backend Team",
			WeekNumber:     11,
			Year:           2024,
			CompletedTasks: []string{"API work"},
		},
		Email: "ben@iol.ph",
	}
	outcome := svc.Submit(context.Background(), input)
	if !outcome.Saved {
		t.Fatal("AI failure must not block persistence")
	}
	if !outcome.AIFailed {
		t.Error("outcome should flag the AI failure")
	}
	if email.lastBody != summaryFailurePlaceholder {
		t.Error("email should carry the explicit placeholder, not a narrative")
	}
	if len(queue.tasks) != 1 || queue.tasks[0].ErrorMessage == "" {
		t.Error("analysis task should record the AI error")
	}
}

func TestSubmitEmailFailureIsSoft(t *testing.T) {
	ai := &stubSummary{result: SummaryResult{Text: "summary"}}
	email := &stubEmail{deliver: false}
	svc, _, _ := newSubmissionHarness(t, ai, email)

	input := &SubmissionInput{
		Record: ReportRecord{
			Name:           "Carla",
			Team:           "Backend Team",
			WeekNumber:     11,
			Year:           2024,
			CompletedTasks: []string{"Schema migration"},
		},
		Email: "carla@iol.ph",
	}
	outcome := svc.Submit(context.Background(), input)
	if !outcome.Saved {
		t.Fatal("email failure must not block persistence")
	}
	if outcome.EmailSent {
		t.Error("outcome should flag the failed delivery")
	}
	if len(outcome.Warnings) == 0 {
		t.Error("expected a warning about undelivered email")
	}
}

func TestSubmitPeerRatingValidation(t *testing.T) {
	ratings, warnings := validator.NormalizePeerRatings(map[string]string{
		"Dana":  "5 (Invalid)",
		"Elena": "3 (Satisfactory)",
	})
	if _, ok := ratings["Dana"]; ok {
		t.Error(`rating "5 (Invalid)" should be dropped`)
	}
	if ratings["Elena"] != 3 {
		t.Errorf(`rating "3 (Satisfactory)" = %d, want 3`, ratings["Elena"])
	}
	if len(warnings) != 1 {
		t.Errorf("expected one warning for the dropped rating, got %d", len(warnings))
	}

	ai := &stubSummary{result: SummaryResult{Text: "summary"}}
	svc, reports, _ := newSubmissionHarness(t, ai, &stubEmail{deliver: true})

	input := &SubmissionInput{
		Record: ReportRecord{
			Name:            "Dana",
			Team:            "Business Services Team",
			WeekNumber:      12,
			Year:            2024,
			CompletedTasks:  []string{"Payroll run"},
			PeerEvaluations: ratings,
		},
	}
	outcome := svc.Submit(context.Background(), input)
	if !outcome.Saved {
		t.Fatal("submission should save")
	}
	stored, err := reports.GetByID(outcome.ReportID)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if len(stored.PeerEvaluations) != 1 || stored.PeerEvaluations["Elena"] != 3 {
		t.Errorf("stored peer map = %v, want only Elena: 3", stored.PeerEvaluations)
	}
}

func TestSubmitDropsSelfAndCrossTeamPeers(t *testing.T) {
	ai := &stubSummary{result: SummaryResult{Text: "summary"}}
	svc, reports, _ := newSubmissionHarness(t, ai, &stubEmail{deliver: true})

	// George is on the Frontend Team; Katrina is Backend Team.
	input := &SubmissionInput{
		Record: ReportRecord{
			Name:           "George Libatique",
			WeekNumber:     14,
			Year:           2024,
			CompletedTasks: []string{"Component library"},
			PeerEvaluations: map[string]int{
				"George Libatique": 4,
				"Katrina Gayao":    4,
				"Joshua Aficial":   3,
			},
		},
	}
	outcome := svc.Submit(context.Background(), input)
	if !outcome.Saved {
		t.Fatal("submission should save")
	}
	if input.Record.Team != "Frontend Team" {
		t.Errorf("roster should resolve the team, got %q", input.Record.Team)
	}

	stored, err := reports.GetByID(outcome.ReportID)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if len(stored.PeerEvaluations) != 1 || stored.PeerEvaluations["Joshua Aficial"] != 3 {
		t.Errorf("stored peer map = %v, want only Joshua Aficial: 3", stored.PeerEvaluations)
	}
	if len(outcome.Warnings) != 2 {
		t.Errorf("expected warnings for the self and cross-team ratings, got %v", outcome.Warnings)
	}
}

func TestEditAppendsAnalysisRow(t *testing.T) {
	ai := &stubSummary{result: SummaryResult{Text: "summary", ModelUsed: "test-model"}}
	email := &stubEmail{deliver: true}
	db := newTestDB(t)
	reports := NewReportService(db)
	analyses := NewAnalysisService(db, NewSystemConfigService(db))
	rosterCfg := config.DefaultRoster()
	roster := NewRosterService(&rosterCfg)
	queue := &recordingQueue{}
	svc := NewSubmissionService(reports, roster, ai, email, queue)
	process := ProcessAnalysisTask(reports, analyses)

	outcome := svc.Submit(context.Background(), &SubmissionInput{
		Record: ReportRecord{
			Name:           "Renzo Ducusin",
			WeekNumber:     15,
			Year:           2024,
			CompletedTasks: []string{"Query tuning"},
			PendingTasks:   []string{"Index rebuild"},
		},
		Email: "renzo@iol.ph",
	})
	if !outcome.Saved {
		t.Fatal("submission should save")
	}

	edited := svc.Edit(context.Background(), outcome.ReportID, &SubmissionInput{
		Record: ReportRecord{
			Name:           "Renzo Ducusin",
			WeekNumber:     15,
			Year:           2024,
			CompletedTasks: []string{"Query tuning", "Index rebuild"},
		},
		Email: "renzo@iol.ph",
	})
	if !edited.Saved {
		t.Fatalf("edit should save, got %+v", edited)
	}
	if edited.ReportID != outcome.ReportID {
		t.Errorf("edit should keep the report id, got %d and %d", edited.ReportID, outcome.ReportID)
	}
	if edited.Reference != outcome.Reference {
		t.Errorf("edit should keep the reference, got %q and %q", edited.Reference, outcome.Reference)
	}

	if len(queue.tasks) != 2 {
		t.Fatalf("expected one analysis task per write, got %d", len(queue.tasks))
	}
	for _, task := range queue.tasks {
		if err := process(context.Background(), task); err != nil {
			t.Fatalf("process task: %v", err)
		}
	}

	history := analyses.HistoryFor("Renzo Ducusin", 0)
	if len(history) != 2 {
		t.Fatalf("expected 2 analysis rows after an edit, got %d", len(history))
	}
	var editedRate bool
	for _, row := range history {
		if row.TaskCompletionRate == 100 {
			editedRate = true
		}
	}
	if !editedRate {
		t.Error("no analysis row carries the 100 rate from the edited lists")
	}

	stored, err := reports.GetByID(outcome.ReportID)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if stored.CompletedCount != 2 || stored.PendingCount != 0 {
		t.Errorf("edited counts = (%d,%d), want (2,0)", stored.CompletedCount, stored.PendingCount)
	}

	// A missing id fails without touching the queue.
	missing := svc.Edit(context.Background(), 99999, &SubmissionInput{
		Record: ReportRecord{Name: "Renzo Ducusin", WeekNumber: 15, Year: 2024},
	})
	if missing.Saved {
		t.Error("editing a missing report should fail")
	}
	if len(queue.tasks) != 2 {
		t.Errorf("failed edit must not enqueue, got %d tasks", len(queue.tasks))
	}
}
