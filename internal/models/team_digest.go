package models

import "time"

// TeamDigest is one weekly aggregate per team, generated by the digest
// scheduler and mailed to managers.
type TeamDigest struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	Team       string `gorm:"size:100;not null;uniqueIndex:idx_digest_team_week" json:"team"`
	WeekNumber int    `gorm:"not null;uniqueIndex:idx_digest_team_week" json:"week_number"`
	Year       int    `gorm:"not null;uniqueIndex:idx_digest_team_week" json:"year"`

	ReportCount    int     `json:"report_count"`
	CompletedTasks int     `json:"completed_tasks"`
	PendingTasks   int     `json:"pending_tasks"`
	DroppedTasks   int     `json:"dropped_tasks"`
	AvgRating      float64 `json:"avg_rating"`
	Missing        string  `gorm:"type:text" json:"missing"` // members without a report, comma-separated

	NotifiedAt  *time.Time `json:"notified_at"`
	NotifyError string     `gorm:"type:text" json:"notify_error"`

	CreatedAt time.Time `json:"created_at"`
}

func (TeamDigest) TableName() string { return "wpr_team_digests" }
