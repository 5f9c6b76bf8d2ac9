// Package validator normalizes the free-text weekly-report form input into
// typed values. Everything here is pure; nothing touches the database.
package validator

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/iolph/wpr/internal/models"
)

var emailPattern = regexp.MustCompile(`^[\w.+-]+@[\w-]+(\.[\w-]+)+$`)

// Fixed catalogs. The form offers exactly these choices; anything else is
// rejected at the edge.
var (
	ProductivityRatings = []string{
		"1 - Not Productive",
		"2 - Somewhat Productive",
		"3 - Productive",
		"4 - Very Productive",
	}

	ProductivitySuggestions = []string{
		"More Tools or Resources",
		"More Supervision/Instruction/Guidance",
		"Scheduled Time for Self/Recreation/Rest",
		"Monetary Incentives",
		"Better Time Management",
		"More Teammates",
		"Better Working Environment",
		"More Training",
		"Non-monetary",
		"Workload Balancing",
		"Better Health",
	}

	TimeSlots = []string{"8am - 12nn", "12nn - 4pm", "4pm - 8pm", "8pm - 12mn"}

	WorkLocations = []string{"Office", "Home"}
)

// NormalizeTaskList splits a free-text block into one task per line,
// trimming whitespace and dropping empty lines. Empty input yields an
// empty list; there is no error case. Idempotent: normalizing the joined
// result again yields the same list.
func NormalizeTaskList(text string) []string {
	tasks := []string{}
	for _, line := range strings.Split(text, "\n") {
		if task := strings.TrimSpace(line); task != "" {
			tasks = append(tasks, task)
		}
	}
	return tasks
}

// NormalizeProjects parses "name, completion" lines into typed projects.
// The completion percentage is taken after the last comma and must be a
// number in [0,100]. Malformed lines are skipped and reported back as
// warnings; they do not fail the batch.
func NormalizeProjects(text string) ([]models.Project, []string) {
	projects := []models.Project{}
	var warnings []string

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		idx := strings.LastIndex(line, ",")
		if idx <= 0 {
			warnings = append(warnings, fmt.Sprintf("invalid project format: %q", line))
			continue
		}

		name := strings.TrimSpace(line[:idx])
		completion, err := strconv.ParseFloat(strings.TrimSpace(line[idx+1:]), 64)
		if err != nil || completion < 0 || completion > 100 || name == "" {
			warnings = append(warnings, fmt.Sprintf("invalid project format: %q", line))
			continue
		}

		projects = append(projects, models.Project{Name: name, Completion: completion})
	}

	return projects, warnings
}

// NormalizePeerRatings extracts the numeric rating from strings like
// "3 (Satisfactory)". Ratings outside [1,4] or with no leading integer are
// dropped with a warning.
func NormalizePeerRatings(ratings map[string]string) (map[string]int, []string) {
	validated := make(map[string]int)
	var warnings []string

	for peer, rating := range ratings {
		fields := strings.Fields(rating)
		if len(fields) == 0 {
			warnings = append(warnings, fmt.Sprintf("invalid rating for %s: %q", peer, rating))
			continue
		}

		n, err := strconv.Atoi(fields[0])
		if err != nil || n < 1 || n > 4 {
			warnings = append(warnings, fmt.Sprintf("invalid rating for %s: %q", peer, rating))
			continue
		}

		validated[peer] = n
	}

	return validated, warnings
}

// ValidateEmail is the one hard validation gate before persistence:
// a local@domain.tld shape check that fails closed.
func ValidateEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// ValidRating reports whether rating is one of the four fixed levels.
func ValidRating(rating string) bool {
	return contains(ProductivityRatings, rating)
}

// ValidTimeSlot reports whether slot is one of the four fixed slots.
func ValidTimeSlot(slot string) bool {
	return contains(TimeSlots, slot)
}

// ValidLocation reports whether loc is one of the two fixed locations.
func ValidLocation(loc string) bool {
	return contains(WorkLocations, loc)
}

// FilterSuggestions keeps only suggestions that belong to the fixed catalog.
func FilterSuggestions(suggestions []string) []string {
	filtered := []string{}
	for _, s := range suggestions {
		if contains(ProductivitySuggestions, s) {
			filtered = append(filtered, s)
		}
	}
	return filtered
}

func contains(list []string, value string) bool {
	for _, v := range list {
		if v == value {
			return true
		}
	}
	return false
}

// StripTeamSuffix removes a trailing "(Team Name)" display decoration from
// an employee name: "Ana (Frontend Team)" -> "Ana".
func StripTeamSuffix(name string) string {
	if idx := strings.Index(name, " ("); idx != -1 && strings.HasSuffix(name, ")") {
		return strings.TrimSpace(name[:idx])
	}
	return strings.TrimSpace(name)
}

// TeamFromSuffix extracts the "(Team Name)" decoration if present.
func TeamFromSuffix(name string) string {
	start := strings.Index(name, "(")
	if start == -1 || !strings.HasSuffix(name, ")") {
		return ""
	}
	return strings.TrimSpace(name[start+1 : len(name)-1])
}
