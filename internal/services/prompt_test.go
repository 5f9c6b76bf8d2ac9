package services

import (
	"strings"
	"testing"
)

func TestBuildSystemPromptIsDeterministic(t *testing.T) {
	a := BuildSystemPrompt(12)
	b := BuildSystemPrompt(12)
	if a != b {
		t.Error("same week should produce an identical prompt")
	}
	if !strings.Contains(a, "Week 12") {
		t.Error("prompt should name the current week")
	}
	if !strings.Contains(a, "Week 13") {
		t.Error("prompt should name the following week for strategies")
	}
	for _, section := range summarySections {
		if !strings.Contains(a, section) {
			t.Errorf("prompt missing section %q", section)
		}
	}
}

func TestBuildSubmissionTextRendersFields(t *testing.T) {
	record := sampleRecord()
	text := BuildSubmissionText(record)

	for _, want := range []string{
		"Name: Alice Reyes",
		"Team: Backend Team",
		"Week Number: 12",
		"Shipped billing export",
		"Billing (80% complete)",
		"Ben Cruz: 4",
		"Most Productive Time: 8am - 12nn",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("submission text missing %q", want)
		}
	}
}

func TestBuildSubmissionTextEmptyFieldsRenderNone(t *testing.T) {
	record := sampleRecord()
	record.CompletedTasks = nil
	record.Projects = nil
	record.PeerEvaluations = nil
	record.ProductivityDetails = "   "

	text := BuildSubmissionText(record)
	for _, want := range []string{
		"Completed Tasks: None",
		"Projects: None",
		"Peer Evaluations: None",
		"Productivity Details: None",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("submission text missing %q", want)
		}
	}
}

func TestValidateSummary(t *testing.T) {
	full := BuildSystemPrompt(10)
	if !ValidateSummary(full) {
		t.Error("text containing all sections should validate")
	}
	if ValidateSummary("just a short reply with no structure") {
		t.Error("unstructured text should not validate")
	}

	// Headings alone, with no body under them, are too short to pass.
	bare := strings.Join(summarySections, " ")
	if ValidateSummary(bare) {
		t.Error("bare section headings should not validate")
	}
	if !ValidateSummary(bare + strings.Repeat(" detailed coaching feedback", 10)) {
		t.Error("headings with substantive body text should validate")
	}
}
