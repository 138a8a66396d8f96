package analysis

import "context"

// Client asks the language model to compare a resume with a job description
// and returns the reply text untouched.
type Client interface {
	Analyze(ctx context.Context, resumeText, jobDescription string) (string, error)
}

// Repository port for persisting and querying analyses
type Repository interface {
	Save(ctx context.Context, r *Record) error
	Recent(ctx context.Context, limit int) ([]Record, error)
}
