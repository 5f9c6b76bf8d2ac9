package services

import (
	"testing"

	"github.com/iolph/wpr/internal/models"
)

func TestCompletionRate(t *testing.T) {
	tests := []struct {
		name                        string
		completed, pending, dropped int
		want                        float64
	}{
		{"no tasks at all", 0, 0, 0, 0},
		{"all completed", 5, 0, 0, 100},
		{"two of three", 2, 1, 0, 66.67},
		{"dropped counts against", 1, 0, 3, 25},
		{"nothing completed", 0, 4, 2, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CompletionRate(tt.completed, tt.pending, tt.dropped); got != tt.want {
				t.Errorf("CompletionRate(%d, %d, %d) = %v, want %v",
					tt.completed, tt.pending, tt.dropped, got, tt.want)
			}
		})
	}
}

func TestMeanProjectCompletion(t *testing.T) {
	if got := MeanProjectCompletion(nil); got != 0 {
		t.Errorf("no projects should yield 0, got %v", got)
	}

	projects := []models.Project{
		{Name: "Billing", Completion: 80},
		{Name: "Archive", Completion: 25},
		{Name: "Portal", Completion: 50},
	}
	if got := MeanProjectCompletion(projects); got != 51.67 {
		t.Errorf("MeanProjectCompletion = %v, want 51.67", got)
	}
}

func TestMeanPeerRating(t *testing.T) {
	if got := MeanPeerRating(nil, 3.0); got != 3.0 {
		t.Errorf("unrated employee should get the neutral score, got %v", got)
	}
	if got := MeanPeerRating([]int{4, 3, 2}, 3.0); got != 3.0 {
		t.Errorf("MeanPeerRating = %v, want 3.0", got)
	}
	if got := MeanPeerRating([]int{4, 3}, 3.0); got != 3.5 {
		t.Errorf("MeanPeerRating = %v, want 3.5", got)
	}
}

func TestAnalyzePersistsRowAndCollectsPeerRatings(t *testing.T) {
	db := newTestDB(t)
	reports := NewReportService(db)
	analyses := NewAnalysisService(db, NewSystemConfigService(db))

	alice := sampleRecord()
	if !reports.Save(alice) {
		t.Fatal("save alice failed")
	}

	// Ben rates Alice this week; his own map carries a decorated name.
	ben := sampleRecord()
	ben.Name = "Ben Cruz"
	ben.PeerEvaluations = map[string]int{"Alice Reyes (Backend Team)": 4}
	if !reports.Save(ben) {
		t.Fatal("save ben failed")
	}

	carla := sampleRecord()
	carla.Name = "Carla Diaz"
	carla.PeerEvaluations = map[string]int{"Alice Reyes": 2}
	if !reports.Save(carla) {
		t.Fatal("save carla failed")
	}

	// Stale caller-supplied counts must not leak into the metrics; the
	// lists are the source of truth.
	alice.CompletedCount = 99
	alice.PendingCount = 0
	alice.DroppedCount = 0

	row, err := analyses.Analyze(alice, "narrative text", "test-model", "")
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if row.TaskCompletionRate != 66.67 {
		t.Errorf("task completion rate = %v, want 66.67", row.TaskCompletionRate)
	}
	if row.ProjectCompletion != 52.5 {
		t.Errorf("project completion = %v, want 52.5", row.ProjectCompletion)
	}
	if row.PeerRatingAverage != 3.0 {
		t.Errorf("peer rating average = %v, want 3.0 from ratings 4 and 2", row.PeerRatingAverage)
	}

	// A second analysis for the same report appends, never replaces.
	if _, err := analyses.Analyze(alice, "revised narrative", "test-model", ""); err != nil {
		t.Fatalf("second analyze: %v", err)
	}
	history := analyses.HistoryFor("Alice Reyes (Backend Team)", 0)
	if len(history) != 2 {
		t.Fatalf("expected 2 history rows, got %d", len(history))
	}
}

func TestAnalyzeUnratedEmployeeGetsNeutralScore(t *testing.T) {
	db := newTestDB(t)
	reports := NewReportService(db)
	analyses := NewAnalysisService(db, NewSystemConfigService(db))

	record := sampleRecord()
	if !reports.Save(record) {
		t.Fatal("save failed")
	}

	row, err := analyses.Analyze(record, "", "", "summary generation failed")
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if row.PeerRatingAverage != 3.0 {
		t.Errorf("expected neutral score 3.0, got %v", row.PeerRatingAverage)
	}
	if row.ErrorMessage != "summary generation failed" {
		t.Errorf("error message not persisted: %q", row.ErrorMessage)
	}
}
