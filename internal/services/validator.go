package services

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"alfredoptarigan/resume-matcher/internal/apperrors"
	"alfredoptarigan/resume-matcher/internal/models"
)

// matchOutputSchema is the minimum the rest of the pipeline relies on. The
// remaining fields are optional and decoded leniently.
const matchOutputSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["overall_score"],
  "properties": {
    "overall_score": {"type": ["number", "string"]}
  }
}`

type ResponseValidator struct {
	schema *gojsonschema.Schema
}

func NewResponseValidator() (*ResponseValidator, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(matchOutputSchema))
	if err != nil {
		return nil, fmt.Errorf("failed to compile match output schema: %w", err)
	}
	return &ResponseValidator{schema: schema}, nil
}

// Validate turns raw model output into a draft. Any failure is reported as a
// MalformedOutputError carrying raw so the caller can show what came back.
func (v *ResponseValidator) Validate(raw string) (*models.MatchDraft, error) {
	cleaned := StripCodeFences(raw)
	malformed := func(err error) error {
		return &apperrors.MalformedOutputError{Raw: raw, Err: err}
	}

	if !json.Valid([]byte(cleaned)) {
		return nil, malformed(errors.New("response is not valid JSON"))
	}

	result, err := v.schema.Validate(gojsonschema.NewStringLoader(cleaned))
	if err != nil {
		return nil, malformed(err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			msgs = append(msgs, desc.String())
		}
		return nil, malformed(errors.New(strings.Join(msgs, "; ")))
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(cleaned), &fields); err != nil {
		return nil, malformed(err)
	}

	overall, ok := parseScore(fields["overall_score"])
	if !ok {
		return nil, malformed(errors.New("overall_score is not numeric"))
	}

	draft := &models.MatchDraft{
		OverallScore:    *overall,
		SkillsScore:     optionalScore(fields["skills_score"]),
		ExperienceScore: optionalScore(fields["experience_score"]),
		EducationScore:  optionalScore(fields["education_score"]),
		MatchingSkills:  stringList(fields["matching_skills"]),
		MissingSkills:   stringList(fields["missing_skills"]),
		Feedback:        feedbackList(fields["feedback"]),
		Payload:         json.RawMessage(cleaned),
	}

	return draft, nil
}

// StripCodeFences removes a leading ``` or ```json line and a trailing ```.
func StripCodeFences(raw string) string {
	text := strings.TrimSpace(raw)
	if !strings.HasPrefix(text, "```") {
		return text
	}

	if nl := strings.IndexByte(text, '\n'); nl >= 0 {
		text = text[nl+1:]
	} else {
		text = strings.TrimPrefix(strings.TrimPrefix(text, "```json"), "```")
	}

	text = strings.TrimSpace(text)
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}

func parseScore(raw json.RawMessage) (*float64, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, false
	}

	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return &n, true
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, false
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "%")
	n, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return nil, false
	}
	return &n, true
}

func optionalScore(raw json.RawMessage) *float64 {
	score, _ := parseScore(raw)
	return score
}

func stringList(raw json.RawMessage) []string {
	var items []any
	if err := json.Unmarshal(raw, &items); err != nil {
		return []string{}
	}

	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func feedbackList(raw json.RawMessage) []models.FeedbackItem {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return []models.FeedbackItem{}
	}

	out := make([]models.FeedbackItem, 0, len(items))
	for _, item := range items {
		var fb models.FeedbackItem
		if err := json.Unmarshal(item, &fb); err != nil || fb.Message == "" {
			continue
		}
		out = append(out, fb)
	}
	return out
}
