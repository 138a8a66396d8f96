package analysis

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Request is the input of one analysis. It is never persisted on its own.
type Request struct {
	ResumeText     string `json:"resume_text" validate:"required"`
	JobDescription string `json:"job_description" validate:"required"`
}

var validate = validator.New()

// Validate rejects blank inputs. Whitespace-only text counts as empty.
func (r Request) Validate() error {
	trimmed := Request{
		ResumeText:     strings.TrimSpace(r.ResumeText),
		JobDescription: strings.TrimSpace(r.JobDescription),
	}
	if err := validate.Struct(trimmed); err != nil {
		if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
			return &ValidationError{
				Field:   fieldName(errs[0].Field()),
				Message: "Both resume and job description are required",
			}
		}
		return &ValidationError{Message: err.Error()}
	}
	return nil
}

func fieldName(structField string) string {
	switch structField {
	case "ResumeText":
		return "resume_text"
	case "JobDescription":
		return "job_description"
	default:
		return structField
	}
}

// Result is the normalized AI analysis
type Result struct {
	MatchScore    int      `json:"match_score"`
	MatchedSkills []string `json:"matched_skills"`
	MissingSkills []string `json:"missing_skills"`
	Suggestions   []string `json:"suggestions"`
	Insights      []string `json:"insights"`
}

// Record is a persisted analysis. It carries no store identifier.
type Record struct {
	ResumeText     string    `json:"resume_text"`
	JobDescription string    `json:"job_description"`
	Analysis       Result    `json:"analysis"`
	CreatedAt      time.Time `json:"created_at"`
}

// ErrorPayload is the uniform error body returned at the boundary.
type ErrorPayload struct {
	Error         string `json:"error"`
	RawResponse   string `json:"raw_response,omitempty"`
	ExtractedJSON string `json:"extracted_json,omitempty"`
}
