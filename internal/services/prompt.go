package services

import (
	"fmt"
)

type PromptBuilder struct{}

func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

const matchSchemaInstructions = `You are an expert recruitment assistant. Analyze the provided resume against the job description.
Provide a detailed analysis in JSON format. The JSON object must have the following structure:
{
  "overall_score": <A percentage score from 0 to 100 representing the overall match>,
  "skills_score": <A percentage score from 0 to 100 for skills match>,
  "experience_score": <A percentage score from 0 to 100 for experience match>,
  "education_score": <A percentage score from 0 to 100 for education match>,
  "matching_skills": [<An array of strings of skills present in both the resume and job description>],
  "missing_skills": [<An array of strings of important skills from the job description that are missing from the resume>],
  "feedback": [
    {"type": "positive", "message": "<A positive feedback message>"},
    {"type": "improvement", "message": "<A message about an area for improvement>"},
    {"type": "tip", "message": "<A general tip for the candidate>"}
  ]
}`

// BuildMatchPrompt creates the resume/job match prompt. The schema comes
// first so that long inputs cannot push it out of the model's context.
func (pb *PromptBuilder) BuildMatchPrompt(jobText, resumeText string) string {
	return fmt.Sprintf(`%s

Job Description:
---
%s
---

Resume Text:
---
%s
---

Provide the JSON analysis. Return only the JSON object, without markdown formatting or commentary.`,
		matchSchemaInstructions, jobText, resumeText)
}
