package services

import (
	"fmt"
	"sort"
	"strings"
)

// minSummaryLength is the shortest text accepted by the soft summary
// check. Section headings alone run shorter than this.
const minSummaryLength = 200

// summarySections are the headings a well-formed summary is expected to
// contain. Used for soft validation of AI output only.
var summarySections = []string{
	"Achievement Highlights",
	"Performance Metrics",
	"Growth Opportunities",
	"Action Plan",
	"Team Collaboration",
	"Productivity Optimization",
	"Motivation & Recognition",
	"Success Strategies",
}

// BuildSystemPrompt returns the coaching persona and output structure for
// the summary model. Deterministic for a given week number.
func BuildSystemPrompt(week int) string {
	var b strings.Builder
	b.WriteString("You are an empathetic HR productivity expert and career coach for IOL Inc., ")
	b.WriteString("a dynamic systems development startup. Your role is to analyze Weekly ")
	b.WriteString("Productivity Reports (WPR) and provide personalized, actionable feedback.\n\n")

	b.WriteString("Guidelines for Analysis:\n\n")
	b.WriteString("1. TONE AND APPROACH:\n")
	b.WriteString("- Maintain a supportive, encouraging, and professional tone\n")
	b.WriteString("- Balance praise with constructive feedback\n")
	b.WriteString("- Use the employee's name naturally throughout the response\n")
	b.WriteString("- Frame challenges as growth opportunities\n\n")

	b.WriteString("2. STRUCTURE YOUR RESPONSE AS HTML WITH THESE SECTIONS:\n\n")
	fmt.Fprintf(&b, "<h2>Weekly Performance Analysis - Week %d</h2>\n\n", week)
	b.WriteString("<h3>Achievement Highlights</h3>\n")
	b.WriteString("Celebrate task completion rate, project progress, and notable accomplishments.\n\n")
	b.WriteString("<h3>Performance Metrics</h3>\n")
	b.WriteString("Give specific metrics: task completion ratio, project completion percentages, productivity rating analysis.\n\n")
	b.WriteString("<h3>Growth Opportunities</h3>\n")
	b.WriteString("Offer constructive feedback: areas for improvement, skill development, time management.\n\n")
	b.WriteString("<h3>Action Plan for Next Week</h3>\n")
	b.WriteString("List 3-5 specific, actionable recommendations based on current task status and project priorities.\n\n")
	b.WriteString("<h3>Team Collaboration Insights</h3>\n")
	b.WriteString("Analyze peer evaluation patterns and collaboration opportunities.\n\n")
	b.WriteString("<h3>Productivity Optimization</h3>\n")
	b.WriteString("Suggest improvements based on reported productive hours, preferred work location, and challenges.\n\n")
	b.WriteString("<h3>Motivation & Recognition</h3>\n")
	b.WriteString("Recognize achievements, encourage through challenges, connect to company goals.\n\n")
	fmt.Fprintf(&b, "<h3>Success Strategies for Week %d</h3>\n", week+1)
	b.WriteString("List 3-5 specific, actionable strategies, plus recommended tools, training, or resources.\n\n")

	b.WriteString("IMPORTANT GUIDELINES:\n")
	b.WriteString("1. Provide specific, actionable feedback rather than generic advice\n")
	b.WriteString("2. Address both technical and soft skills development\n")
	b.WriteString("3. Consider team dynamics and collaboration patterns\n")
	b.WriteString("4. Focus on both immediate improvements and long-term growth\n")
	b.WriteString("5. Consider the employee's preferred working style and environment\n")
	b.WriteString("6. Address concerns while maintaining a positive, solution-focused approach\n")
	return b.String()
}

// BuildSubmissionText renders the report fields verbatim for the model.
// Empty lists render as "None" so the model never guesses at missing data.
func BuildSubmissionText(record *ReportRecord) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Name: %s\n", record.Name)
	fmt.Fprintf(&b, "Team: %s\n", record.Team)
	fmt.Fprintf(&b, "Week Number: %d\n", record.WeekNumber)
	fmt.Fprintf(&b, "Year: %d\n", record.Year)
	fmt.Fprintf(&b, "Week Covered: %s\n\n", WeekDateRange(record.WeekNumber, record.Year))

	fmt.Fprintf(&b, "Completed Tasks: %s\n", renderList(record.CompletedTasks))
	fmt.Fprintf(&b, "Pending Tasks: %s\n", renderList(record.PendingTasks))
	fmt.Fprintf(&b, "Dropped Tasks: %s\n\n", renderList(record.DroppedTasks))

	b.WriteString("Projects: ")
	if len(record.Projects) == 0 {
		b.WriteString("None")
	} else {
		parts := make([]string, 0, len(record.Projects))
		for _, p := range record.Projects {
			parts = append(parts, fmt.Sprintf("%s (%g%% complete)", p.Name, p.Completion))
		}
		b.WriteString(strings.Join(parts, "; "))
	}
	b.WriteString("\n\n")

	fmt.Fprintf(&b, "Productivity Rating: %s\n", orNone(record.ProductivityRating))
	fmt.Fprintf(&b, "Productivity Suggestions: %s\n", renderList(record.ProductivitySuggestions))
	fmt.Fprintf(&b, "Productivity Details: %s\n\n", orNone(record.ProductivityDetails))

	fmt.Fprintf(&b, "Most Productive Time: %s\n", orNone(record.ProductiveTime))
	fmt.Fprintf(&b, "Preferred Work Location: %s\n\n", orNone(record.ProductivePlace))

	b.WriteString("Peer Evaluations: ")
	if len(record.PeerEvaluations) == 0 {
		b.WriteString("None")
	} else {
		names := make([]string, 0, len(record.PeerEvaluations))
		for name := range record.PeerEvaluations {
			names = append(names, name)
		}
		sort.Strings(names)
		parts := make([]string, 0, len(names))
		for _, name := range names {
			parts = append(parts, fmt.Sprintf("%s: %d", name, record.PeerEvaluations[name]))
		}
		b.WriteString(strings.Join(parts, "; "))
	}
	b.WriteString("\n")

	return b.String()
}

// ValidateSummary reports whether the generated text is non-trivially long
// and contains at least half of the expected section headings. Advisory
// only; a thin summary is still delivered.
func ValidateSummary(text string) bool {
	if len(strings.TrimSpace(text)) < minSummaryLength {
		return false
	}
	found := 0
	for _, section := range summarySections {
		if strings.Contains(text, section) {
			found++
		}
	}
	return found*2 >= len(summarySections)
}

func renderList(items []string) string {
	if len(items) == 0 {
		return "None"
	}
	return strings.Join(items, "; ")
}

func orNone(s string) string {
	if strings.TrimSpace(s) == "" {
		return "None"
	}
	return s
}
