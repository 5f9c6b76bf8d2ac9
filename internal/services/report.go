package services

import (
	"encoding/json"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/iolph/wpr/internal/models"
	"github.com/iolph/wpr/internal/validator"
	"github.com/iolph/wpr/pkg/logger"
	"gorm.io/gorm"
)

// ReportRecord is a weekly report with its structured fields decoded. The
// rest of the system works with this type; only ReportService touches the
// JSON-encoded row columns.
type ReportRecord struct {
	ID        uint   `json:"id"`
	Reference string `json:"reference"`

	Name       string `json:"name"`
	Team       string `json:"team"`
	WeekNumber int    `json:"week_number"`
	Year       int    `json:"year"`

	CompletedTasks []string `json:"completed_tasks"`
	PendingTasks   []string `json:"pending_tasks"`
	DroppedTasks   []string `json:"dropped_tasks"`
	CompletedCount int      `json:"completed_count"`
	PendingCount   int      `json:"pending_count"`
	DroppedCount   int      `json:"dropped_count"`

	Projects []models.Project `json:"projects"`

	ProductivityRating      string   `json:"productivity_rating"`
	ProductivitySuggestions []string `json:"productivity_suggestions"`
	ProductivityDetails     string   `json:"productivity_details"`
	ProductiveTime          string   `json:"productive_time"`
	ProductivePlace         string   `json:"productive_place"`

	PeerEvaluations map[string]int `json:"peer_evaluations"`

	CreatedAt time.Time `json:"created_at"`
}

// ReportService is the persistence gateway for weekly reports. It owns the
// JSON encode/decode boundary and the one-report-per-employee-per-week
// uniqueness rule.
type ReportService struct {
	db *gorm.DB
}

func NewReportService(db *gorm.DB) *ReportService {
	return &ReportService{db: db}
}

// Exists is the pre-write guard: true when a report already exists for the
// (employee, week, year) triple. The name is compared after stripping any
// "(Team)" display suffix.
func (s *ReportService) Exists(employee string, week, year int) bool {
	var count int64
	s.db.Model(&models.Report{}).
		Where("name = ? AND week_number = ? AND year = ?", validator.StripTeamSuffix(employee), week, year).
		Count(&count)
	return count > 0
}

// Save inserts a new report. The uniqueness guard is checked here and
// honored: a duplicate triple is rejected, never overwritten. Derived
// counts are recomputed from list lengths. Returns false on any failure,
// with detail logged internally.
func (s *ReportService) Save(record *ReportRecord) bool {
	record.Name = validator.StripTeamSuffix(record.Name)

	if s.Exists(record.Name, record.WeekNumber, record.Year) {
		logger.Warn().
			Str("employee", record.Name).
			Int("week", record.WeekNumber).
			Int("year", record.Year).
			Msg("duplicate weekly report rejected")
		return false
	}

	row, err := s.encode(record)
	if err != nil {
		logger.Error().Err(err).Msg("failed to encode report")
		return false
	}
	row.Reference = uuid.NewString()

	if err := s.db.Create(row).Error; err != nil {
		logger.Error().Err(err).Str("employee", record.Name).Msg("failed to save report")
		LogError("report", "save", err.Error(), map[string]interface{}{
			"employee": record.Name, "week": record.WeekNumber, "year": record.Year,
		})
		return false
	}

	record.ID = row.ID
	record.Reference = row.Reference
	record.CreatedAt = row.CreatedAt
	return true
}

// Update replaces an existing report by id (the explicit edit path, which
// bypasses the uniqueness guard). Counts are recomputed from the possibly
// edited lists.
func (s *ReportService) Update(record *ReportRecord, id uint) bool {
	var existing models.Report
	if err := s.db.First(&existing, id).Error; err != nil {
		logger.Warn().Uint("id", id).Err(err).Msg("report to update not found")
		return false
	}

	record.Name = validator.StripTeamSuffix(record.Name)
	row, err := s.encode(record)
	if err != nil {
		logger.Error().Err(err).Msg("failed to encode report")
		return false
	}

	row.ID = existing.ID
	row.Reference = existing.Reference
	row.CreatedAt = existing.CreatedAt

	if err := s.db.Save(row).Error; err != nil {
		logger.Error().Err(err).Uint("id", id).Msg("failed to update report")
		return false
	}

	record.ID = row.ID
	record.Reference = row.Reference
	return true
}

// GetByID returns a single decoded report.
func (s *ReportService) GetByID(id uint) (*ReportRecord, error) {
	var row models.Report
	if err := s.db.First(&row, id).Error; err != nil {
		return nil, err
	}
	record := s.decode(&row)
	return &record, nil
}

// ListByEmployee returns all reports for an employee, most recent first by
// (year, week). A "(Team)" display suffix on the name is stripped before
// matching. limit <= 0 means no limit.
func (s *ReportService) ListByEmployee(name string, limit int) []ReportRecord {
	query := s.db.
		Where("name = ?", validator.StripTeamSuffix(name)).
		Order("year DESC, week_number DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var rows []models.Report
	if err := query.Find(&rows).Error; err != nil {
		logger.Error().Err(err).Str("employee", name).Msg("failed to list reports")
		return []ReportRecord{}
	}
	return s.decodeAll(rows)
}

// ListByTeam returns reports for a team, optionally filtered to one week
// (week 0 means all weeks).
func (s *ReportService) ListByTeam(team string, week int) []ReportRecord {
	query := s.db.Where("team = ?", team)
	if week > 0 {
		query = query.Where("week_number = ?", week)
	}

	var rows []models.Report
	if err := query.Order("year DESC, week_number DESC").Find(&rows).Error; err != nil {
		logger.Error().Err(err).Str("team", team).Msg("failed to list team reports")
		return []ReportRecord{}
	}
	return s.decodeAll(rows)
}

// ListAll returns every report, most recent first. Used by the dashboard.
func (s *ReportService) ListAll() []ReportRecord {
	var rows []models.Report
	if err := s.db.Order("year DESC, week_number DESC").Find(&rows).Error; err != nil {
		logger.Error().Err(err).Msg("failed to list reports")
		return []ReportRecord{}
	}

	records := s.decodeAll(rows)
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].Year != records[j].Year {
			return records[i].Year > records[j].Year
		}
		return records[i].WeekNumber > records[j].WeekNumber
	})
	return records
}

// encode serializes the structured fields to JSON text columns and derives
// the counts from list lengths. Nil slices encode as empty JSON containers
// so a round trip yields empty, never null.
func (s *ReportService) encode(record *ReportRecord) (*models.Report, error) {
	completed, err := encodeStrings(record.CompletedTasks)
	if err != nil {
		return nil, err
	}
	pending, err := encodeStrings(record.PendingTasks)
	if err != nil {
		return nil, err
	}
	dropped, err := encodeStrings(record.DroppedTasks)
	if err != nil {
		return nil, err
	}
	suggestions, err := encodeStrings(record.ProductivitySuggestions)
	if err != nil {
		return nil, err
	}

	projects := record.Projects
	if projects == nil {
		projects = []models.Project{}
	}
	projectsJSON, err := json.Marshal(projects)
	if err != nil {
		return nil, err
	}

	peers := record.PeerEvaluations
	if peers == nil {
		peers = map[string]int{}
	}
	peersJSON, err := json.Marshal(peers)
	if err != nil {
		return nil, err
	}

	// The derived counts flow back so callers holding the record see the
	// same numbers the row carries.
	record.CompletedCount = len(record.CompletedTasks)
	record.PendingCount = len(record.PendingTasks)
	record.DroppedCount = len(record.DroppedTasks)

	return &models.Report{
		Name:                    record.Name,
		Team:                    record.Team,
		WeekNumber:              record.WeekNumber,
		Year:                    record.Year,
		CompletedTasks:          completed,
		PendingTasks:            pending,
		DroppedTasks:            dropped,
		CompletedCount:          len(record.CompletedTasks),
		PendingCount:            len(record.PendingTasks),
		DroppedCount:            len(record.DroppedTasks),
		Projects:                string(projectsJSON),
		ProductivityRating:      record.ProductivityRating,
		ProductivitySuggestions: suggestions,
		ProductivityDetails:     record.ProductivityDetails,
		ProductiveTime:          record.ProductiveTime,
		ProductivePlace:         record.ProductivePlace,
		PeerEvaluations:         string(peersJSON),
	}, nil
}

// decode rebuilds the structured fields from the stored JSON. Malformed
// stored text decodes to an empty container with a warning, never an error:
// a broken row must not take the dashboard down.
func (s *ReportService) decode(row *models.Report) ReportRecord {
	return ReportRecord{
		ID:                      row.ID,
		Reference:               row.Reference,
		Name:                    row.Name,
		Team:                    row.Team,
		WeekNumber:              row.WeekNumber,
		Year:                    row.Year,
		CompletedTasks:          decodeStrings(row.CompletedTasks, "completed_tasks", row.ID),
		PendingTasks:            decodeStrings(row.PendingTasks, "pending_tasks", row.ID),
		DroppedTasks:            decodeStrings(row.DroppedTasks, "dropped_tasks", row.ID),
		CompletedCount:          row.CompletedCount,
		PendingCount:            row.PendingCount,
		DroppedCount:            row.DroppedCount,
		Projects:                decodeProjects(row.Projects, row.ID),
		ProductivityRating:      row.ProductivityRating,
		ProductivitySuggestions: decodeStrings(row.ProductivitySuggestions, "productivity_suggestions", row.ID),
		ProductivityDetails:     row.ProductivityDetails,
		ProductiveTime:          row.ProductiveTime,
		ProductivePlace:         row.ProductivePlace,
		PeerEvaluations:         decodePeers(row.PeerEvaluations, row.ID),
		CreatedAt:               row.CreatedAt,
	}
}

func (s *ReportService) decodeAll(rows []models.Report) []ReportRecord {
	records := make([]ReportRecord, 0, len(rows))
	for i := range rows {
		records = append(records, s.decode(&rows[i]))
	}
	return records
}

func encodeStrings(list []string) (string, error) {
	if list == nil {
		list = []string{}
	}
	data, err := json.Marshal(list)
	return string(data), err
}

func decodeStrings(text, field string, rowID uint) []string {
	if text == "" {
		return []string{}
	}
	var list []string
	if err := json.Unmarshal([]byte(text), &list); err != nil {
		logger.Warn().Uint("report_id", rowID).Str("field", field).Msg("malformed stored JSON, treating as empty")
		return []string{}
	}
	if list == nil {
		return []string{}
	}
	return list
}

func decodeProjects(text string, rowID uint) []models.Project {
	if text == "" {
		return []models.Project{}
	}
	var projects []models.Project
	if err := json.Unmarshal([]byte(text), &projects); err != nil {
		logger.Warn().Uint("report_id", rowID).Str("field", "projects").Msg("malformed stored JSON, treating as empty")
		return []models.Project{}
	}
	if projects == nil {
		return []models.Project{}
	}
	return projects
}

func decodePeers(text string, rowID uint) map[string]int {
	if text == "" {
		return map[string]int{}
	}
	var peers map[string]int
	if err := json.Unmarshal([]byte(text), &peers); err != nil {
		logger.Warn().Uint("report_id", rowID).Str("field", "peer_evaluations").Msg("malformed stored JSON, treating as empty")
		return map[string]int{}
	}
	if peers == nil {
		return map[string]int{}
	}
	return peers
}
