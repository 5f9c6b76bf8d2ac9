package models

import "time"

// Analysis is one derived analysis row for a report submission. Rows are
// written once and never mutated; an edited report produces a new row, so
// the history per employee is append-only.
type Analysis struct {
	ID       uint    `gorm:"primaryKey" json:"id"`
	ReportID uint    `gorm:"index" json:"report_id"`
	Report   *Report `gorm:"foreignKey:ReportID" json:"report,omitempty"`

	EmployeeName string `gorm:"size:200;index;not null" json:"employee_name"`
	Team         string `gorm:"size:100" json:"team"`
	WeekNumber   int    `gorm:"not null" json:"week_number"`
	Year         int    `gorm:"not null" json:"year"`

	TaskCompletionRate float64 `json:"task_completion_rate"`
	ProjectCompletion  float64 `json:"project_completion"`
	PeerRatingAverage  float64 `json:"peer_rating_average"`

	Narrative    string `gorm:"type:text" json:"narrative"`
	AIModelUsed  string `gorm:"size:100" json:"ai_model_used"`
	ErrorMessage string `gorm:"size:500" json:"error_message,omitempty"`

	AnalyzedAt time.Time `gorm:"index;not null" json:"analyzed_at"`
	CreatedAt  time.Time `json:"created_at"`
}

func (Analysis) TableName() string { return "wpr_analyses" }
