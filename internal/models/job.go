package models

import "time"

// JobDescription is maintained by the job management screens; the analysis
// pipeline only reads it.
type JobDescription struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"not null;index" json:"user_id"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	Company     string    `gorm:"size:255" json:"company"`
	Description string    `gorm:"not null" json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

func (JobDescription) TableName() string {
	return "job_descriptions"
}
