package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/iolph/wpr/internal/services"
	"github.com/iolph/wpr/internal/validator"
	"github.com/iolph/wpr/pkg/response"
)

type ReportHandler struct {
	submissions *services.SubmissionService
	reports     *services.ReportService
	roster      *services.RosterService
	dashboard   *services.DashboardService
}

func NewReportHandler(submissions *services.SubmissionService, reports *services.ReportService, roster *services.RosterService, dashboard *services.DashboardService) *ReportHandler {
	return &ReportHandler{
		submissions: submissions,
		reports:     reports,
		roster:      roster,
		dashboard:   dashboard,
	}
}

// SubmitRequest carries the raw form fields. Multiline text fields are
// normalized server-side; the client sends them as typed.
type SubmitRequest struct {
	Name       string `json:"name" binding:"required"`
	Email      string `json:"email" binding:"required"`
	Team       string `json:"team"`
	WeekNumber int    `json:"week_number" binding:"required,min=1,max=52"`
	Year       int    `json:"year" binding:"required,min=2020"`

	CompletedTasks string `json:"completed_tasks"`
	PendingTasks   string `json:"pending_tasks"`
	DroppedTasks   string `json:"dropped_tasks"`
	Projects       string `json:"projects"`

	ProductivityRating      string   `json:"productivity_rating"`
	ProductivitySuggestions []string `json:"productivity_suggestions"`
	ProductivityDetails     string   `json:"productivity_details"`
	ProductiveTime          string   `json:"productive_time"`
	ProductivePlace         string   `json:"productive_place"`

	PeerEvaluations map[string]string `json:"peer_evaluations"`
}

// buildRecord validates the catalog fields and normalizes the free-text
// ones. Writes the error response and returns false on invalid input.
func (h *ReportHandler) buildRecord(c *gin.Context, req *SubmitRequest) (services.ReportRecord, []string, bool) {
	if !validator.ValidateEmail(req.Email) {
		response.BadRequest(c, "invalid email address")
		return services.ReportRecord{}, nil, false
	}
	if req.ProductivityRating != "" && !validator.ValidRating(req.ProductivityRating) {
		response.BadRequest(c, "unknown productivity rating")
		return services.ReportRecord{}, nil, false
	}
	if req.ProductiveTime != "" && !validator.ValidTimeSlot(req.ProductiveTime) {
		response.BadRequest(c, "unknown productive time slot")
		return services.ReportRecord{}, nil, false
	}
	if req.ProductivePlace != "" && !validator.ValidLocation(req.ProductivePlace) {
		response.BadRequest(c, "unknown work location")
		return services.ReportRecord{}, nil, false
	}

	projects, projectWarnings := validator.NormalizeProjects(req.Projects)
	peers, peerWarnings := validator.NormalizePeerRatings(req.PeerEvaluations)
	warnings := append(projectWarnings, peerWarnings...)

	record := services.ReportRecord{
		Name:                    req.Name,
		Team:                    req.Team,
		WeekNumber:              req.WeekNumber,
		Year:                    req.Year,
		CompletedTasks:          validator.NormalizeTaskList(req.CompletedTasks),
		PendingTasks:            validator.NormalizeTaskList(req.PendingTasks),
		DroppedTasks:            validator.NormalizeTaskList(req.DroppedTasks),
		Projects:                projects,
		ProductivityRating:      req.ProductivityRating,
		ProductivitySuggestions: validator.FilterSuggestions(req.ProductivitySuggestions),
		ProductivityDetails:     req.ProductivityDetails,
		ProductiveTime:          req.ProductiveTime,
		ProductivePlace:         req.ProductivePlace,
		PeerEvaluations:         peers,
	}
	return record, warnings, true
}

// Submit handles POST /api/reports.
func (h *ReportHandler) Submit(c *gin.Context) {
	var req SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	record, warnings, ok := h.buildRecord(c, &req)
	if !ok {
		return
	}

	outcome := h.submissions.Submit(c.Request.Context(), &services.SubmissionInput{
		Record: record,
		Email:  req.Email,
	})
	outcome.Warnings = append(outcome.Warnings, warnings...)

	if outcome.Duplicate {
		response.Conflict(c, "report already submitted for this week")
		return
	}
	if !outcome.Saved {
		response.ServerError(c, "failed to save report")
		return
	}

	h.dashboard.Invalidate()
	response.Created(c, outcome)
}

// Update handles PUT /api/reports/:id, the explicit edit path. It bypasses
// the duplicate guard but runs the same validation as Submit, and the edit
// regenerates the summary and appends a fresh analysis row.
func (h *ReportHandler) Update(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid report id")
		return
	}

	var req SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	record, warnings, ok := h.buildRecord(c, &req)
	if !ok {
		return
	}

	outcome := h.submissions.Edit(c.Request.Context(), uint(id), &services.SubmissionInput{
		Record: record,
		Email:  req.Email,
	})
	outcome.Warnings = append(outcome.Warnings, warnings...)

	if !outcome.Saved {
		response.NotFound(c, "report not found")
		return
	}

	h.dashboard.Invalidate()
	response.Success(c, outcome)
}

// Get handles GET /api/reports/:id.
func (h *ReportHandler) Get(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid report id")
		return
	}

	record, err := h.reports.GetByID(uint(id))
	if err != nil {
		response.NotFound(c, "report not found")
		return
	}
	response.Success(c, record)
}

// List handles GET /api/reports. Optional team and week queries narrow the
// result; with no filters every report is returned.
func (h *ReportHandler) List(c *gin.Context) {
	team := c.Query("team")
	if team != "" {
		week, _ := strconv.Atoi(c.DefaultQuery("week", "0"))
		response.Success(c, h.reports.ListByTeam(team, week))
		return
	}
	response.Success(c, h.reports.ListAll())
}

// ListByEmployee handles GET /api/reports/employee/:name.
func (h *ReportHandler) ListByEmployee(c *gin.Context) {
	name := c.Param("name")
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
	response.Success(c, h.reports.ListByEmployee(name, limit))
}

// Exists handles GET /api/reports/exists. Used by the form to warn before
// the user fills everything in.
func (h *ReportHandler) Exists(c *gin.Context) {
	name := c.Query("name")
	week, _ := strconv.Atoi(c.Query("week"))
	year, _ := strconv.Atoi(c.Query("year"))
	if name == "" || week == 0 || year == 0 {
		response.BadRequest(c, "name, week and year are required")
		return
	}
	response.Success(c, gin.H{"exists": h.reports.Exists(name, week, year)})
}

// Catalogs handles GET /api/reports/catalogs: the fixed choices the form
// renders (ratings, suggestions, time slots, locations) plus week helpers.
func (h *ReportHandler) Catalogs(c *gin.Context) {
	week, year := services.CurrentWeek()
	response.Success(c, gin.H{
		"ratings":      validator.ProductivityRatings,
		"suggestions":  validator.ProductivitySuggestions,
		"time_slots":   validator.TimeSlots,
		"locations":    validator.WorkLocations,
		"teams":        h.roster.Teams(),
		"members":      h.roster.AllMembers(),
		"current_week": week,
		"current_year": year,
		"week_range":   services.WeekDateRange(week, year),
	})
}

// Teammates handles GET /api/reports/teammates: the peer-evaluation
// candidates for one employee.
func (h *ReportHandler) Teammates(c *gin.Context) {
	name := c.Query("name")
	if name == "" {
		response.BadRequest(c, "name is required")
		return
	}
	response.Success(c, h.roster.Teammates(name))
}
