package services

import (
	"strings"
	"testing"

	"github.com/iolph/wpr/internal/config"
	"github.com/iolph/wpr/internal/models"
)

func TestDigestGenerate(t *testing.T) {
	db := newTestDB(t)
	reports := NewReportService(db)
	rosterCfg := config.RosterConfig{Teams: map[string][]string{
		"Frontend Team": {"Ana", "Bea"},
		"Backend Team":  {"Ben"},
	}}
	roster := NewRosterService(&rosterCfg)
	svc := NewDigestService(db, reports, roster, NewEmailService(&config.EmailConfig{}), NewSystemConfigService(db))

	record := &ReportRecord{
		Name: "Ana", Team: "Frontend Team", WeekNumber: 20, Year: 2026,
		CompletedTasks:     []string{"a", "b"},
		PendingTasks:       []string{"c"},
		ProductivityRating: "4 - Very Productive",
	}
	if !reports.Save(record) {
		t.Fatal("save failed")
	}

	digests, err := svc.Generate(20, 2026)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(digests) != 2 {
		t.Fatalf("expected a digest per team, got %d", len(digests))
	}

	byTeam := map[string]*models.TeamDigest{}
	for _, d := range digests {
		byTeam[d.Team] = d
	}

	fe := byTeam["Frontend Team"]
	if fe == nil || fe.ReportCount != 1 || fe.CompletedTasks != 2 || fe.PendingTasks != 1 {
		t.Errorf("frontend digest wrong: %+v", fe)
	}
	if fe.AvgRating != 4 {
		t.Errorf("frontend avg rating = %v, want 4", fe.AvgRating)
	}
	if fe.Missing != "Bea" {
		t.Errorf("frontend missing = %q, want Bea", fe.Missing)
	}

	be := byTeam["Backend Team"]
	if be == nil || be.ReportCount != 0 || be.Missing != "Ben" {
		t.Errorf("backend digest wrong: %+v", be)
	}
}

func TestDigestGenerateIsIdempotentPerWeek(t *testing.T) {
	db := newTestDB(t)
	reports := NewReportService(db)
	rosterCfg := config.RosterConfig{Teams: map[string][]string{"Frontend Team": {"Ana"}}}
	roster := NewRosterService(&rosterCfg)
	svc := NewDigestService(db, reports, roster, NewEmailService(&config.EmailConfig{}), NewSystemConfigService(db))

	if _, err := svc.Generate(21, 2026); err != nil {
		t.Fatalf("first generate: %v", err)
	}
	if _, err := svc.Generate(21, 2026); err != nil {
		t.Fatalf("second generate: %v", err)
	}

	var count int64
	db.Model(&models.TeamDigest{}).Where("week_number = ? AND year = ?", 21, 2026).Count(&count)
	if count != 1 {
		t.Errorf("expected one digest row per (team, week, year), got %d", count)
	}
}

func TestDigestHTMLListsTeams(t *testing.T) {
	svc := &DigestService{}
	digests := []*models.TeamDigest{
		{Team: "Frontend Team", WeekNumber: 20, Year: 2026, ReportCount: 1, CompletedTasks: 2, AvgRating: 4, Missing: "Bea"},
	}
	html := svc.buildDigestHTML(20, 2026, digests)
	for _, want := range []string{"Week 20, 2026", "Frontend Team", "Missing reports: Bea"} {
		if !strings.Contains(html, want) {
			t.Errorf("digest html missing %q", want)
		}
	}
}

func TestSplitRecipients(t *testing.T) {
	got := splitRecipients(" a@iol.ph, b@iol.ph ,, ")
	if len(got) != 2 || got[0] != "a@iol.ph" || got[1] != "b@iol.ph" {
		t.Errorf("splitRecipients = %v", got)
	}
	if got := splitRecipients(""); len(got) != 0 {
		t.Errorf("empty input should yield no recipients, got %v", got)
	}
}
