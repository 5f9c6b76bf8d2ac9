package models

import "time"

// Project is one project line in a weekly report: a name and a completion
// percentage in [0,100]. Stored JSON-encoded inside Report.Projects.
type Project struct {
	Name       string  `json:"name"`
	Completion float64 `json:"completion"`
}

// Report is one weekly productivity report row. At most one row may exist
// per (name, week_number, year); list and map fields are stored as JSON text
// and only the report service encodes or decodes them. The *_count columns
// are always recomputed from list lengths on write, never trusted from the
// caller.
type Report struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	Reference string `gorm:"size:36;index" json:"reference"`

	Name       string `gorm:"size:200;not null;index;uniqueIndex:idx_report_employee_week" json:"name"`
	Team       string `gorm:"size:100;index" json:"team"`
	WeekNumber int    `gorm:"not null;uniqueIndex:idx_report_employee_week" json:"week_number"`
	Year       int    `gorm:"not null;uniqueIndex:idx_report_employee_week" json:"year"`

	CompletedTasks string `gorm:"type:text" json:"completed_tasks"`
	PendingTasks   string `gorm:"type:text" json:"pending_tasks"`
	DroppedTasks   string `gorm:"type:text" json:"dropped_tasks"`
	CompletedCount int    `json:"completed_count"`
	PendingCount   int    `json:"pending_count"`
	DroppedCount   int    `json:"dropped_count"`

	Projects string `gorm:"type:text" json:"projects"`

	ProductivityRating      string `gorm:"size:50" json:"productivity_rating"`
	ProductivitySuggestions string `gorm:"type:text" json:"productivity_suggestions"`
	ProductivityDetails     string `gorm:"type:text" json:"productivity_details"`
	ProductiveTime          string `gorm:"size:50" json:"productive_time"`
	ProductivePlace         string `gorm:"size:50" json:"productive_place"`

	PeerEvaluations string `gorm:"type:text" json:"peer_evaluations"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Report) TableName() string { return "wpr_reports" }
