package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

const (
	FeedbackPositive    = "positive"
	FeedbackImprovement = "improvement"
	FeedbackTip         = "tip"
)

// MatchResult is the persisted outcome of one analysis run. FeedbackPayload
// is the source of truth; the score columns are a projection of it written in
// the same insert.
type MatchResult struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	UploadID        uint           `gorm:"not null;index" json:"upload_id"`
	JobID           *uint          `gorm:"index" json:"job_id"`
	OverallScore    float64        `gorm:"not null" json:"overall_score"`
	SkillsScore     *float64       `json:"skills_score"`
	ExperienceScore *float64       `json:"experience_score"`
	EducationScore  *float64       `json:"education_score"`
	FeedbackPayload datatypes.JSON `gorm:"not null" json:"feedback_payload"`
	AnalyzedAt      time.Time      `gorm:"not null;index" json:"analyzed_at"`

	Upload Upload          `gorm:"foreignKey:UploadID" json:"-"`
	Job    *JobDescription `gorm:"foreignKey:JobID" json:"-"`
}

func (MatchResult) TableName() string {
	return "match_results"
}

type FeedbackItem struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// MatchDraft is a validated model answer that has not been persisted yet.
type MatchDraft struct {
	OverallScore    float64
	SkillsScore     *float64
	ExperienceScore *float64
	EducationScore  *float64
	MatchingSkills  []string
	MissingSkills   []string
	Feedback        []FeedbackItem

	// Payload is the model's JSON exactly as received, minus code fences.
	Payload json.RawMessage
}

// MatchReport is the structured view of a stored payload. Missing arrays
// decode to empty slices so consumers never see null lists.
type MatchReport struct {
	OverallScore    float64        `json:"overall_score"`
	SkillsScore     *float64       `json:"skills_score"`
	ExperienceScore *float64       `json:"experience_score"`
	EducationScore  *float64       `json:"education_score"`
	MatchingSkills  []string       `json:"matching_skills"`
	MissingSkills   []string       `json:"missing_skills"`
	Feedback        []FeedbackItem `json:"feedback"`
}

// Report decodes the payload. Score fields always come from the columns,
// lists from the payload; an unreadable payload yields empty lists.
func (m *MatchResult) Report() MatchReport {
	report := MatchReport{
		OverallScore:    m.OverallScore,
		SkillsScore:     m.SkillsScore,
		ExperienceScore: m.ExperienceScore,
		EducationScore:  m.EducationScore,
	}

	var payload struct {
		MatchingSkills []string       `json:"matching_skills"`
		MissingSkills  []string       `json:"missing_skills"`
		Feedback       []FeedbackItem `json:"feedback"`
	}
	if len(m.FeedbackPayload) > 0 {
		_ = json.Unmarshal(m.FeedbackPayload, &payload)
	}

	report.MatchingSkills = nonNilStrings(payload.MatchingSkills)
	report.MissingSkills = nonNilStrings(payload.MissingSkills)
	report.Feedback = payload.Feedback
	if report.Feedback == nil {
		report.Feedback = []FeedbackItem{}
	}

	return report
}

func nonNilStrings(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
