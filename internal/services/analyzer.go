package services

import (
	"context"
	"log"
	"strings"

	"alfredoptarigan/resume-matcher/internal/apperrors"
	"alfredoptarigan/resume-matcher/internal/models"
	"alfredoptarigan/resume-matcher/internal/repositories"
)

// AnalyzeInput selects the resume and the job to score it against. A saved
// job wins over pasted text when both are given.
type AnalyzeInput struct {
	UploadID       uint
	JobID          *uint
	JobDescription string
}

type AnalysisService interface {
	Analyze(ctx context.Context, ownerID uint, input AnalyzeInput) (*models.AnalysisResponse, error)
}

type analysisService struct {
	uploadRepo    repositories.UploadRepository
	jobRepo       repositories.JobRepository
	matchRepo     repositories.MatchResultRepository
	geminiService GeminiService
	validator     *ResponseValidator
	index         AnalysisIndex
	promptBuilder *PromptBuilder
}

// NewAnalysisService wires the analysis chain. index may be nil when no
// vector store is configured.
func NewAnalysisService(
	uploadRepo repositories.UploadRepository,
	jobRepo repositories.JobRepository,
	matchRepo repositories.MatchResultRepository,
	geminiService GeminiService,
	validator *ResponseValidator,
	index AnalysisIndex,
) AnalysisService {
	return &analysisService{
		uploadRepo:    uploadRepo,
		jobRepo:       jobRepo,
		matchRepo:     matchRepo,
		geminiService: geminiService,
		validator:     validator,
		index:         index,
		promptBuilder: NewPromptBuilder(),
	}
}

// Analyze runs one synchronous analysis. Nothing is written unless the
// model output validates; the index update after commit is best-effort.
func (a *analysisService) Analyze(ctx context.Context, ownerID uint, input AnalyzeInput) (*models.AnalysisResponse, error) {
	if input.UploadID == 0 {
		return nil, apperrors.Validation("upload_id", "Please select a resume to analyze.")
	}

	upload, resumeText, err := a.uploadRepo.FindResumeText(ctx, ownerID, input.UploadID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(resumeText) == "" {
		return nil, apperrors.Validation("upload_id", "Resume data not found or is empty. Please re-upload the resume.")
	}

	var (
		job     *models.JobDescription
		jobText string
	)
	switch {
	case input.JobID != nil:
		job, err = a.jobRepo.FindOwned(ctx, ownerID, *input.JobID)
		if err != nil {
			return nil, err
		}
		jobText = job.Description
	case strings.TrimSpace(input.JobDescription) != "":
		jobText = input.JobDescription
	default:
		return nil, apperrors.Validation("job_description", "Please select a job description or enter a custom one.")
	}

	log.Printf("🤖 Analyzing resume %d for user %d", upload.ID, ownerID)
	raw, err := a.geminiService.GenerateText(ctx, a.promptBuilder.BuildMatchPrompt(jobText, resumeText))
	if err != nil {
		return nil, err
	}

	draft, err := a.validator.Validate(raw)
	if err != nil {
		log.Printf("❌ Unusable analysis output for resume %d: %v", upload.ID, err)
		return nil, err
	}

	var jobID *uint
	if job != nil {
		jobID = &job.ID
	}

	result, err := a.matchRepo.Record(ctx, ownerID, upload.ID, jobID, draft)
	if err != nil {
		return nil, err
	}
	result.Upload = *upload
	result.Job = job

	log.Printf("✅ Analysis %d recorded (score %.0f)", result.ID, result.OverallScore)

	if a.index != nil {
		if err := a.index.Index(ctx, ownerID, result.ID, jobText); err != nil {
			log.Printf("⚠️  Failed to index analysis %d: %v", result.ID, err)
		}
	}

	resp := models.NewAnalysisResponse(result)
	return &resp, nil
}
