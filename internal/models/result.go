package models

import "time"

type UploadResponse struct {
	ID           uint      `json:"id"`
	OriginalName string    `json:"original_name"`
	FileType     string    `json:"file_type"`
	FileSize     int64     `json:"file_size"`
	CreatedAt    time.Time `json:"created_at"`
}

func NewUploadResponse(u *Upload) UploadResponse {
	return UploadResponse{
		ID:           u.ID,
		OriginalName: u.OriginalFilename,
		FileType:     u.FileType,
		FileSize:     u.FileSize,
		CreatedAt:    u.CreatedAt,
	}
}

// AnalyzeRequest selects a stored resume and either a saved job or an ad-hoc
// job description.
type AnalyzeRequest struct {
	UploadID       uint   `json:"upload_id" validate:"required"`
	JobID          *uint  `json:"job_id" validate:"required_without=JobDescription"`
	JobDescription string `json:"job_description" validate:"required_without=JobID"`
}

type AnalysisResponse struct {
	ID         uint        `json:"id"`
	UploadID   uint        `json:"upload_id"`
	JobID      *uint       `json:"job_id"`
	ResumeName string      `json:"resume_name,omitempty"`
	JobTitle   string      `json:"job_title"`
	JobCompany string      `json:"job_company,omitempty"`
	AnalyzedAt time.Time   `json:"analyzed_at"`
	Report     MatchReport `json:"report"`
}

// CustomJobTitle labels analyses run against pasted job text.
const CustomJobTitle = "Custom Job"

// NewAnalysisResponse expects Upload and Job to be loaded.
func NewAnalysisResponse(m *MatchResult) AnalysisResponse {
	resp := AnalysisResponse{
		ID:         m.ID,
		UploadID:   m.UploadID,
		JobID:      m.JobID,
		ResumeName: m.Upload.OriginalFilename,
		JobTitle:   CustomJobTitle,
		AnalyzedAt: m.AnalyzedAt,
		Report:     m.Report(),
	}
	if m.Job != nil {
		resp.JobTitle = m.Job.Title
		resp.JobCompany = m.Job.Company
	}
	return resp
}

// HistoryItem is one row of the analysis history listing.
type HistoryItem struct {
	ID           uint      `json:"id"`
	OverallScore float64   `json:"overall_score"`
	AnalyzedAt   time.Time `json:"analyzed_at"`
	ResumeName   string    `json:"resume_name"`
	JobTitle     *string   `json:"job_title"`
	JobCompany   *string   `json:"job_company"`
}

type HistoryResponse struct {
	Items      []HistoryItem `json:"items"`
	Total      int64         `json:"total"`
	Page       int           `json:"page"`
	PageSize   int           `json:"page_size"`
	TotalPages int           `json:"total_pages"`
}

type Stats struct {
	ResumeCount   int64    `json:"resume_count"`
	JobCount      int64    `json:"job_count"`
	AnalysisCount int64    `json:"analysis_count"`
	AvgScore      *float64 `json:"avg_score"`
}

type TrendPoint struct {
	AnalyzedAt time.Time `json:"analyzed_at"`
	Label      string    `json:"label"`
	Score      float64   `json:"score"`
	JobTitle   *string   `json:"job_title"`
}
